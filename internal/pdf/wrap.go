package pdf

import (
	"strings"
)

const ellipsis = "..."

// Measurer reports the rendered width of s in points.
type Measurer interface {
	Width(f FontSpec, s string) float64
}

// Wrap breaks text into lines no wider than width. Words longer than a line
// are split. When maxLines > 0 the output is capped and the last kept line
// ends with an ellipsis.
func Wrap(m Measurer, f FontSpec, text string, width float64, maxLines int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(m, f, para, width)...)
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = withEllipsis(m, f, lines[maxLines-1], width)
	}
	return lines
}

func wrapParagraph(m Measurer, f FontSpec, para string, width float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := ""
	for _, w := range words {
		candidate := w
		if line != "" {
			candidate = line + " " + w
		}
		if m.Width(f, candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		// Hard-break words that do not fit on their own.
		for m.Width(f, w) > width {
			head, tail := splitToWidth(m, f, w, width)
			lines = append(lines, head)
			w = tail
		}
		line = w
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// splitToWidth returns the longest prefix of w that fits, at least one rune.
func splitToWidth(m Measurer, f FontSpec, w string, width float64) (string, string) {
	rs := []rune(w)
	n := 1
	for n < len(rs) && m.Width(f, string(rs[:n+1])) <= width {
		n++
	}
	return string(rs[:n]), string(rs[n:])
}

func withEllipsis(m Measurer, f FontSpec, line string, width float64) string {
	rs := []rune(strings.TrimSpace(line))
	for len(rs) > 0 && m.Width(f, string(rs)+ellipsis) > width {
		rs = rs[:len(rs)-1]
	}
	return strings.TrimRight(string(rs), " ") + ellipsis
}
