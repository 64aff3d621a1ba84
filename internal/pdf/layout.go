package pdf

// Page geometry in points (A4).
const (
	pageWidth    = 595.28
	pageHeight   = 841.89
	margin       = 40.0
	contentWidth = pageWidth - 2*margin
	sectionGap   = 14.0
)

// Color is an RGB color with 0-255 components.
type Color struct {
	R, G, B int
}

var (
	colorRed       = Color{237, 28, 36}
	colorWhite     = Color{255, 255, 255}
	colorBlack     = Color{0, 0, 0}
	colorLightRed  = Color{255, 245, 245}
	colorBorder    = Color{204, 204, 204}
	colorTextGray  = Color{102, 102, 102}
	colorTermsText = Color{85, 85, 85}
	colorLightGray = Color{245, 245, 245}
	colorGreenBg   = Color{232, 245, 233}
	colorGreen     = Color{46, 125, 50}
)

// FontSpec selects the font of a text primitive.
type FontSpec struct {
	Arabic bool
	Bold   bool
	Size   float64
}

// Primitive is one drawing operation. Coordinates are in points, x absolute
// and y relative to the top of the enclosing Block until the page flow
// places it.
type Primitive interface {
	translate(dy float64) Primitive
}

// Rect draws a rectangle. A nil Fill or Stroke skips that part.
type Rect struct {
	X, Y, W, H float64
	Fill       *Color
	Stroke     *Color
	LineWidth  float64
}

// Line draws a straight line.
type Line struct {
	X1, Y1, X2, Y2 float64
	Color          Color
	Width          float64
}

// Text draws a single line of text inside the box X, Y, W, H.
// Align is "L", "C" or "R".
type Text struct {
	X, Y, W, H float64
	S          string
	Font       FontSpec
	Color      Color
	Align      string
}

// Image draws a registered image scaled into the box X, Y, W, H.
type Image struct {
	X, Y, W, H float64
	Asset      *ImageAsset
}

func (r Rect) translate(dy float64) Primitive  { r.Y += dy; return r }
func (l Line) translate(dy float64) Primitive  { l.Y1 += dy; l.Y2 += dy; return l }
func (t Text) translate(dy float64) Primitive  { t.Y += dy; return t }
func (i Image) translate(dy float64) Primitive { i.Y += dy; return i }

// Block is the output of a section builder: a list of primitives with a
// total height. Blocks are never split across pages.
type Block struct {
	Name   string
	Height float64
	Items  []Primitive
}

func (b *Block) add(p ...Primitive) {
	b.Items = append(b.Items, p...)
}

// Page is a list of primitives in page coordinates.
type Page struct {
	Items []Primitive
}

// flow stacks blocks top to bottom, opening a new page when a block does not
// fit in the remaining space.
func flow(blocks []Block, top, bottom, gap float64) []Page {
	pages := []Page{{}}
	y := top
	for _, b := range blocks {
		cur := &pages[len(pages)-1]
		if y+b.Height > bottom && len(cur.Items) > 0 {
			pages = append(pages, Page{})
			cur = &pages[len(pages)-1]
			y = top
		}
		for _, it := range b.Items {
			cur.Items = append(cur.Items, it.translate(y))
		}
		y += b.Height + gap
	}
	return pages
}

// fitBox returns the largest w×h box with the aspect ratio of an iw×ih image
// centered inside the box x, y, bw, bh.
func fitBox(x, y, bw, bh float64, iw, ih int) (float64, float64, float64, float64) {
	if iw <= 0 || ih <= 0 {
		return x, y, bw, bh
	}
	scale := bw / float64(iw)
	if s := bh / float64(ih); s < scale {
		scale = s
	}
	w, h := float64(iw)*scale, float64(ih)*scale
	return x + (bw-w)/2, y + (bh-h)/2, w, h
}

func colorPtr(c Color) *Color { return &c }
