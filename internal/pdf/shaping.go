package pdf

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/bidi"
)

// Shaper turns logical-order Arabic text into the visual glyph sequence
// drawn left to right.
type Shaper interface {
	Shape(s string) (string, error)
}

// ArabicShaper joins letters into their contextual presentation forms and
// reorders the result for a right-to-left paragraph.
type ArabicShaper struct{}

var errInvalidText = errors.New("text is not valid UTF-8")

// Shape implements Shaper.
func (ArabicShaper) Shape(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", errInvalidText
	}
	if !IsArabic(s) {
		return s, nil
	}
	return Reorder(Reshape(s))
}

type joining uint8

const (
	joinNone  joining = iota // never joins (hamza)
	joinRight                // joins the preceding letter only
	joinDual                 // joins on both sides
)

type letterForms struct {
	join joining
	// isolated, final, initial, medial
	forms [4]rune
}

const (
	formIsolated = iota
	formFinal
	formInitial
	formMedial
)

const (
	lam     = 'ل'
	tatweel = '\u0640'
)

// Presentation forms B start: isolated form of each letter, followed by
// final (and initial, medial for dual-joining letters).
var letterTable = []struct {
	r        rune
	isolated rune
	join     joining
}{
	{'ء', '\uFE80', joinNone},
	{'آ', '\uFE81', joinRight},
	{'أ', '\uFE83', joinRight},
	{'ؤ', '\uFE85', joinRight},
	{'إ', '\uFE87', joinRight},
	{'ئ', '\uFE89', joinDual},
	{'ا', '\uFE8D', joinRight},
	{'ب', '\uFE8F', joinDual},
	{'ة', '\uFE93', joinRight},
	{'ت', '\uFE95', joinDual},
	{'ث', '\uFE99', joinDual},
	{'ج', '\uFE9D', joinDual},
	{'ح', '\uFEA1', joinDual},
	{'خ', '\uFEA5', joinDual},
	{'د', '\uFEA9', joinRight},
	{'ذ', '\uFEAB', joinRight},
	{'ر', '\uFEAD', joinRight},
	{'ز', '\uFEAF', joinRight},
	{'س', '\uFEB1', joinDual},
	{'ش', '\uFEB5', joinDual},
	{'ص', '\uFEB9', joinDual},
	{'ض', '\uFEBD', joinDual},
	{'ط', '\uFEC1', joinDual},
	{'ظ', '\uFEC5', joinDual},
	{'ع', '\uFEC9', joinDual},
	{'غ', '\uFECD', joinDual},
	{'ف', '\uFED1', joinDual},
	{'ق', '\uFED5', joinDual},
	{'ك', '\uFED9', joinDual},
	{'ل', '\uFEDD', joinDual},
	{'م', '\uFEE1', joinDual},
	{'ن', '\uFEE5', joinDual},
	{'ه', '\uFEE9', joinDual},
	{'و', '\uFEED', joinRight},
	{'ى', '\uFEEF', joinRight},
	{'ي', '\uFEF1', joinDual},
}

var letters = buildLetters()

func buildLetters() map[rune]letterForms {
	m := make(map[rune]letterForms, len(letterTable)+1)
	for _, l := range letterTable {
		f := letterForms{join: l.join}
		for i := range f.forms {
			f.forms[i] = l.isolated
		}
		if l.join != joinNone {
			f.forms[formFinal] = l.isolated + 1
		}
		if l.join == joinDual {
			f.forms[formInitial] = l.isolated + 2
			f.forms[formMedial] = l.isolated + 3
		}
		m[l.r] = f
	}
	m[tatweel] = letterForms{join: joinDual, forms: [4]rune{tatweel, tatweel, tatweel, tatweel}}
	return m
}

// Isolated lam-alef ligatures; the final form is the next code point.
var lamAlef = map[rune]rune{
	'آ': '\uFEF5',
	'أ': '\uFEF7',
	'إ': '\uFEF9',
	'ا': '\uFEFB',
}

func isTransparent(r rune) bool {
	return (r >= '\u064B' && r <= '\u065F') || r == '\u0670'
}

// Reshape replaces Arabic letters with their contextual presentation forms.
// The result is still in logical order.
func Reshape(s string) string {
	rs := []rune(s)
	out := make([]rune, 0, len(rs))
	for i := 0; i < len(rs); i++ {
		f, ok := letters[rs[i]]
		if !ok {
			out = append(out, rs[i])
			continue
		}
		joinPrev := joinsForward(rs, i)

		if rs[i] == lam {
			if j := nextLetter(rs, i); j >= 0 {
				if lig, ok := lamAlef[rs[j]]; ok {
					if joinPrev {
						lig++
					}
					out = append(out, lig)
					out = append(out, rs[i+1:j]...)
					i = j
					continue
				}
			}
		}

		joinNext := false
		if f.join == joinDual {
			if j := nextLetter(rs, i); j >= 0 {
				joinNext = letters[rs[j]].join != joinNone
			}
		}
		switch {
		case joinPrev && joinNext:
			out = append(out, f.forms[formMedial])
		case joinPrev:
			out = append(out, f.forms[formFinal])
		case joinNext:
			out = append(out, f.forms[formInitial])
		default:
			out = append(out, f.forms[formIsolated])
		}
	}
	return string(out)
}

// joinsForward reports whether the letter before i connects to it.
func joinsForward(rs []rune, i int) bool {
	if f, ok := letters[rs[i]]; !ok || f.join == joinNone {
		return false
	}
	for j := i - 1; j >= 0; j-- {
		if isTransparent(rs[j]) {
			continue
		}
		f, ok := letters[rs[j]]
		return ok && f.join == joinDual
	}
	return false
}

// nextLetter returns the index of the next non-transparent rune after i
// when it is an Arabic letter, or -1.
func nextLetter(rs []rune, i int) int {
	for j := i + 1; j < len(rs); j++ {
		if isTransparent(rs[j]) {
			continue
		}
		if _, ok := letters[rs[j]]; ok {
			return j
		}
		return -1
	}
	return -1
}

// Reorder converts logical order to visual order for a right-to-left
// paragraph. Left-to-right runs (Latin words, digits) keep their internal
// order; right-to-left runs are reversed and their brackets mirrored.
func Reorder(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	var p bidi.Paragraph
	if _, err := p.SetString(s, bidi.DefaultDirection(bidi.RightToLeft)); err != nil {
		return "", fmt.Errorf("bidi paragraph: %w", err)
	}
	o, err := p.Order()
	if err != nil {
		return "", fmt.Errorf("bidi order: %w", err)
	}
	var b strings.Builder
	b.Grow(len(s))
	// Runs come in logical order; the paragraph reads right to left.
	for i := o.NumRuns() - 1; i >= 0; i-- {
		run := o.Run(i)
		if run.Direction() == bidi.RightToLeft {
			b.WriteString(bidi.ReverseString(run.String()))
		} else {
			b.WriteString(run.String())
		}
	}
	return b.String(), nil
}

// IsArabic reports whether s contains any Arabic letter.
func IsArabic(s string) bool {
	for _, r := range s {
		if (r >= '\u0600' && r <= '\u06FF') || (r >= '\uFB50' && r <= '\uFEFC') {
			return true
		}
	}
	return false
}
