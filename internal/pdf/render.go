package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/go-contracts/internal/assets"
	"github.com/diewo77/go-contracts/internal/i18n"
	"github.com/diewo77/go-contracts/internal/logging"
	"github.com/phpdave11/gofpdf"
)

// ErrRender is wrapped by every error Render and Persist return.
var ErrRender = errors.New("contract render failed")

// Default logical names of the static assets.
const (
	DefaultLogoName = "images/djezzy_logo.png"
	DefaultFontName = "fonts/Amiri-Regular.ttf"
)

// Options configures a Renderer.
type Options struct {
	Lang     string // label language, see i18n
	Compress bool   // compress content streams
	Verify   bool   // validate output with pdfcpu before returning it

	// Shaper prepares Arabic fields. Nil renders them unshaped.
	Shaper Shaper

	// Resolver locates LogoName and FontName. Nil disables both.
	Resolver *assets.Resolver
	LogoName string
	FontName string

	Logger *slog.Logger
}

// DefaultOptions returns French labels, compression, Arabic shaping and the
// static directories static/ and staticfiles/ under the working directory.
func DefaultOptions() Options {
	return Options{
		Lang:     i18n.DefaultLang,
		Compress: true,
		Shaper:   ArabicShaper{},
		Resolver: assets.NewResolver(".", "static", "staticfiles"),
		LogoName: DefaultLogoName,
		FontName: DefaultFontName,
	}
}

// Renderer produces contract documents. It holds no per-render state and is
// safe for concurrent use.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer using opts.
func NewRenderer(opts Options) *Renderer {
	if opts.Lang == "" {
		opts.Lang = i18n.DefaultLang
	}
	return &Renderer{opts: opts}
}

// ContractPDF renders d with DefaultOptions.
func ContractPDF(d ContractData) ([]byte, error) {
	return NewRenderer(DefaultOptions()).Render(d)
}

func (r *Renderer) logger() *slog.Logger {
	if r.opts.Logger != nil {
		return r.opts.Logger
	}
	return logging.Logger()
}

// Render returns the complete document for d. Optional data that is missing
// or cannot be decoded is drawn as a placeholder; only a failure to assemble
// or write the document is returned.
func (r *Renderer) Render(d ContractData) (out []byte, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("%w: %s: %v", ErrRender, d.Number, rec)
		}
	}()

	log := r.logger().With("contract", d.Number)
	doc := r.newDocument(d)
	p := newPainter(doc, r.loadArabicFont(doc, log))

	res := resolvedAssets{
		Logo:      p.register(r.loadLogo(log)),
		Photo:     p.register(loadPhoto(d, log)),
		Signature: p.register(loadSignature(d.SignatureBase64, log)),
	}

	b := &builder{m: p, tr: i18n.Translator(r.opts.Lang), shape: r.shapeFunc(log)}
	blocks := make([]Block, 0, len(sectionBuilders))
	for _, build := range sectionBuilders {
		blocks = append(blocks, build(d, res, b))
	}
	p.paint(flow(blocks, margin, pageHeight-margin, sectionGap))

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, d.Number, err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %s: write: %w", ErrRender, d.Number, err)
	}
	if r.opts.Verify {
		if err := Verify(buf.Bytes()); err != nil {
			return nil, fmt.Errorf("%w: %s: verify: %w", ErrRender, d.Number, err)
		}
	}
	log.Debug("contract rendered", "bytes", buf.Len(), "blocks", len(blocks))
	return buf.Bytes(), nil
}

// Persist renders d and stores it under contracts/<number>/contract_<number>.pdf.
// Callers serialize Persist calls for the same contract number.
func (r *Renderer) Persist(ctx context.Context, store assets.Store, d ContractData) (assets.Object, error) {
	doc, err := r.Render(d)
	if err != nil {
		return assets.Object{}, err
	}
	key := assets.ContractPDFKey(d.Number)
	obj, err := store.Put(ctx, key, bytes.NewReader(doc), int64(len(doc)), "application/pdf")
	if err != nil {
		return assets.Object{}, fmt.Errorf("%w: store %s: %w", ErrRender, key, err)
	}
	r.logger().Info("contract document stored", "contract", d.Number, "key", obj.Key, "size", obj.Size)
	return obj, nil
}

func (r *Renderer) newDocument(d ContractData) *gofpdf.Fpdf {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCompression(r.opts.Compress)
	doc.SetCatalogSort(true)
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Unix(0, 0)
	}
	doc.SetCreationDate(created.UTC())
	doc.SetTitle("Contrat "+d.Number, true)
	doc.SetAuthor("Djezzy", false)
	doc.SetCreator("go-contracts", false)
	return doc
}

// loadArabicFont embeds the Arabic font. False means Arabic text falls back
// to the core Latin font.
func (r *Renderer) loadArabicFont(doc *gofpdf.Fpdf, log *slog.Logger) bool {
	path, ok := r.find(r.opts.FontName)
	if !ok {
		log.Warn("arabic font not found, using core font", "font", r.opts.FontName)
		return false
	}
	data, err := LoadArabicFont(path)
	if err != nil {
		log.Warn("arabic font unusable, using core font", "path", path, "err", err)
		return false
	}
	doc.AddUTF8FontFromBytes(arabicFamily, "", data)
	if !doc.Ok() {
		log.Warn("arabic font rejected, using core font", "path", path, "err", doc.Error())
		doc.ClearError()
		return false
	}
	return true
}

func (r *Renderer) loadLogo(log *slog.Logger) *ImageAsset {
	img, err := firstOf(func() (*ImageAsset, error) {
		path, ok := r.find(r.opts.LogoName)
		if !ok {
			return nil, errNoCandidate
		}
		return LoadImageFile(path)
	})
	if err != nil && !errors.Is(err, errNoCandidate) {
		log.Warn("logo unusable, using text", "err", err)
	}
	return orDefault(img, err, nil)
}

func (r *Renderer) find(logical string) (string, bool) {
	if r.opts.Resolver == nil || logical == "" {
		return "", false
	}
	return r.opts.Resolver.FindStatic(logical)
}

func loadPhoto(d ContractData, log *slog.Logger) *ImageAsset {
	img, err := firstOf(
		func() (*ImageAsset, error) { return LoadImage(d.Photo) },
		func() (*ImageAsset, error) { return LoadImageFile(d.PhotoPath) },
	)
	if err != nil && (len(d.Photo) > 0 || d.PhotoPath != "") {
		log.Warn("customer photo unusable, using placeholder", "err", err)
	}
	return orDefault(img, err, nil)
}

func loadSignature(encoded string, log *slog.Logger) *ImageAsset {
	img, err := firstOf(func() (*ImageAsset, error) {
		raw, err := DecodeSignature(encoded)
		if err != nil {
			return nil, err
		}
		return LoadImage(raw)
	})
	if err != nil && !errors.Is(err, errEmptyPayload) {
		log.Warn("signature unusable, using placeholder", "err", err)
	}
	return orDefault(img, err, nil)
}

// shapeFunc returns the Arabic field transform; shaping failures fall back
// to the raw text.
func (r *Renderer) shapeFunc(log *slog.Logger) func(string) string {
	return func(s string) string {
		if r.opts.Shaper == nil {
			log.Warn("arabic shaping unavailable, using raw text")
			return s
		}
		out, err := r.opts.Shaper.Shape(s)
		if err != nil {
			log.Warn("arabic shaping failed, using raw text", "err", err)
			return s
		}
		return out
	}
}
