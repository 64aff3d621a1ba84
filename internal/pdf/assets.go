package pdf

import (
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"sync"

	// Registered image decoders.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/sfnt"
)

// maxImageSide bounds embedded images; larger inputs are downscaled.
const maxImageSide = 1200

var (
	errNoCandidate   = errors.New("no candidate")
	errEmptyPayload  = errors.New("empty payload")
	errNoArabicGlyph = errors.New("font has no Arabic glyphs")
)

// ImageAsset is a decoded image re-encoded as an opaque PNG, ready to embed.
type ImageAsset struct {
	Name   string
	PNG    []byte
	Width  int
	Height int
}

// firstOf returns the result of the first attempt that succeeds, or the last
// error when all fail.
func firstOf[T any](attempts ...func() (T, error)) (T, error) {
	var zero T
	err := errNoCandidate
	for _, try := range attempts {
		v, e := try()
		if e == nil {
			return v, nil
		}
		err = e
	}
	return zero, err
}

// orDefault returns v, or def when err is non-nil.
func orDefault[T any](v T, err error, def T) T {
	if err != nil {
		return def
	}
	return v
}

// DecodeSignature strips an optional data URL prefix and decodes the base64
// payload. Standard, raw, and URL-safe alphabets are accepted.
func DecodeSignature(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, errEmptyPayload
	}
	var attempts []func() ([]byte, error)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		attempts = append(attempts, func() ([]byte, error) { return enc.DecodeString(s) })
	}
	b, err := firstOf(attempts...)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	if len(b) == 0 {
		return nil, errEmptyPayload
	}
	return b, nil
}

// LoadImage decodes PNG, JPEG, GIF, WebP, BMP or TIFF data, downscales it
// when needed and flattens it onto white.
func LoadImage(data []byte) (*ImageAsset, error) {
	if len(data) == 0 {
		return nil, errEmptyPayload
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("decode image: empty bounds")
	}
	if w > maxImageSide || h > maxImageSide {
		if w >= h {
			h = max(1, h*maxImageSide/w)
			w = maxImageSide
		} else {
			w = max(1, w*maxImageSide/h)
			h = maxImageSide
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	sum := sha1.Sum(buf.Bytes())
	return &ImageAsset{
		Name:   "img-" + hex.EncodeToString(sum[:8]),
		PNG:    buf.Bytes(),
		Width:  w,
		Height: h,
	}, nil
}

// LoadImageFile reads and decodes the image at path.
func LoadImageFile(path string) (*ImageAsset, error) {
	if path == "" {
		return nil, errEmptyPayload
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadImage(data)
}

type fontEntry struct {
	once sync.Once
	data []byte
	err  error
}

// fonts caches font files by path. Each path is read and checked at most
// once per process.
var fonts sync.Map

// LoadArabicFont returns the TrueType font at path after checking it covers
// Arabic letters and their presentation forms.
func LoadArabicFont(path string) ([]byte, error) {
	v, _ := fonts.LoadOrStore(path, &fontEntry{})
	e := v.(*fontEntry)
	e.once.Do(func() {
		e.data, e.err = readArabicFont(path)
	})
	return e.data, e.err
}

func readArabicFont(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	var buf sfnt.Buffer
	for _, r := range []rune{'\u0628', '\uFE91'} {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", path, err)
		}
		if idx == 0 {
			return nil, fmt.Errorf("font %s: %w", path, errNoArabicGlyph)
		}
	}
	return data, nil
}
