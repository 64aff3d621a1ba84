package pdf

import (
	"bytes"
	"unicode/utf8"

	"github.com/phpdave11/gofpdf"
)

const (
	latinFamily  = "Helvetica"
	arabicFamily = "Amiri"
)

var pngOptions = gofpdf.ImageOptions{ImageType: "PNG"}

// painter draws primitives on a gofpdf document. It is also the Measurer
// used by section builders so wrapping matches the drawn text.
type painter struct {
	doc    *gofpdf.Fpdf
	arabic bool
	latin  func(string) string
}

func newPainter(doc *gofpdf.Fpdf, arabic bool) *painter {
	return &painter{
		doc:    doc,
		arabic: arabic,
		latin:  doc.UnicodeTranslatorFromDescriptor(""),
	}
}

func (p *painter) setFont(f FontSpec) {
	if f.Arabic && p.arabic {
		p.doc.SetFont(arabicFamily, "", f.Size)
		return
	}
	style := ""
	if f.Bold {
		style = "B"
	}
	p.doc.SetFont(latinFamily, style, f.Size)
}

// encode converts s to what the selected font expects: UTF-8 for the
// embedded font, cp1252 for the core font.
func (p *painter) encode(f FontSpec, s string) string {
	if f.Arabic && p.arabic {
		return bmpOnly(s)
	}
	return p.latin(s)
}

// Width implements Measurer.
func (p *painter) Width(f FontSpec, s string) (w float64) {
	if f.Arabic && p.arabic {
		// gofpdf indexes the UTF-8 width table without a bounds check.
		defer func() {
			if recover() != nil {
				w = float64(utf8.RuneCountInString(s)) * f.Size * 0.5
			}
		}()
	}
	p.setFont(f)
	return p.doc.GetStringWidth(p.encode(f, s))
}

// register embeds img in the document. It returns nil when gofpdf rejects it.
func (p *painter) register(img *ImageAsset) *ImageAsset {
	if img == nil {
		return nil
	}
	p.doc.RegisterImageOptionsReader(img.Name, pngOptions, bytes.NewReader(img.PNG))
	if !p.doc.Ok() {
		p.doc.ClearError()
		return nil
	}
	return img
}

func (p *painter) paint(pages []Page) {
	for _, pg := range pages {
		p.doc.AddPage()
		for _, it := range pg.Items {
			switch v := it.(type) {
			case Rect:
				p.rect(v)
			case Line:
				p.doc.SetDrawColor(v.Color.R, v.Color.G, v.Color.B)
				p.doc.SetLineWidth(v.Width)
				p.doc.Line(v.X1, v.Y1, v.X2, v.Y2)
			case Text:
				p.setFont(v.Font)
				p.doc.SetTextColor(v.Color.R, v.Color.G, v.Color.B)
				p.doc.SetXY(v.X, v.Y)
				p.doc.CellFormat(v.W, v.H, p.encode(v.Font, v.S), "", 0, v.Align, false, 0, "")
			case Image:
				p.doc.ImageOptions(v.Asset.Name, v.X, v.Y, v.W, v.H, false, pngOptions, 0, "")
			}
		}
	}
}

func (p *painter) rect(r Rect) {
	style := ""
	if r.Fill != nil {
		p.doc.SetFillColor(r.Fill.R, r.Fill.G, r.Fill.B)
		style += "F"
	}
	if r.Stroke != nil {
		p.doc.SetDrawColor(r.Stroke.R, r.Stroke.G, r.Stroke.B)
		p.doc.SetLineWidth(max(r.LineWidth, 0.1))
		style += "D"
	}
	if style == "" {
		return
	}
	p.doc.Rect(r.X, r.Y, r.W, r.H, style)
}

// bmpOnly replaces runes outside the basic multilingual plane.
func bmpOnly(s string) string {
	for _, r := range s {
		if r > 0xFFFF {
			b := []rune(s)
			for i, r := range b {
				if r > 0xFFFF {
					b[i] = '?'
				}
			}
			return string(b)
		}
	}
	return s
}
