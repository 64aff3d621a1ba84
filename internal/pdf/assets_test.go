package pdf

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// testPNG returns a w×h PNG with a transparent background and a dark stroke.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{10, 10, 80, 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeSignature(t *testing.T) {
	raw := []byte("signature-bytes")
	std := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain", std, false},
		{"data url", "data:image/png;base64," + std, false},
		{"surrounding blanks", "  " + std + "\n", false},
		{"wrapped lines", std[:8] + "\n" + std[8:], false},
		{"no padding", base64.RawStdEncoding.EncodeToString(raw), false},
		{"url alphabet", base64.URLEncoding.EncodeToString(raw), false},
		{"empty", "", true},
		{"prefix only", "data:image/png;base64,", true},
		{"malformed", "data:image/png;base64,@@not base64@@", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSignature(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, raw) {
				t.Errorf("decoded %q, want %q", got, raw)
			}
		})
	}
}

func TestFirstOf(t *testing.T) {
	boom := errors.New("boom")
	v, err := firstOf(
		func() (int, error) { return 0, boom },
		func() (int, error) { return 7, nil },
		func() (int, error) { t.Fatal("should not be called"); return 0, nil },
	)
	if err != nil || v != 7 {
		t.Fatalf("firstOf = %d, %v", v, err)
	}

	_, err = firstOf(func() (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := firstOf[int](); !errors.Is(err, errNoCandidate) {
		t.Fatalf("err = %v, want errNoCandidate", err)
	}
	if got := orDefault(3, boom, 9); got != 9 {
		t.Errorf("orDefault = %d, want 9", got)
	}
}

func TestLoadImage(t *testing.T) {
	img, err := LoadImage(testPNG(t, 120, 40))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 120 || img.Height != 40 {
		t.Errorf("size = %dx%d, want 120x40", img.Width, img.Height)
	}
	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		t.Fatalf("re-encoded PNG does not decode: %v", err)
	}
	// Transparent pixels are flattened onto white.
	if r, g, b, a := decoded.At(0, 0).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff || a != 0xffff {
		t.Errorf("background = %v %v %v %v, want opaque white", r, g, b, a)
	}

	again, _ := LoadImage(testPNG(t, 120, 40))
	if again.Name != img.Name {
		t.Error("identical input should produce the same image name")
	}
}

func TestLoadImageDownscales(t *testing.T) {
	img, err := LoadImage(testPNG(t, 2400, 600))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != maxImageSide || img.Height != 300 {
		t.Errorf("size = %dx%d, want %dx300", img.Width, img.Height, maxImageSide)
	}
}

func TestLoadImageJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 30, 20))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadImage(buf.Bytes()); err != nil {
		t.Fatalf("LoadImage(jpeg): %v", err)
	}
}

func TestLoadImageRejectsGarbage(t *testing.T) {
	if _, err := LoadImage(nil); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := LoadImage([]byte("not an image")); err == nil {
		t.Error("expected error for garbage input")
	}
	if _, err := LoadImageFile(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadArabicFontCachesResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(path, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = LoadArabicFont(path)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err == nil {
			t.Fatalf("call %d: expected error for invalid font", i)
		}
		if err != errs[0] {
			t.Fatalf("call %d returned a different error; font was loaded more than once", i)
		}
	}

	// The file is read once; later calls reuse the cached outcome.
	os.Remove(path)
	if _, err := LoadArabicFont(path); err != errs[0] {
		t.Fatalf("expected cached error, got %v", err)
	}
}
