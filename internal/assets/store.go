// Package assets locates static brand files and stores per-contract binary
// objects (uploaded photos, generated documents).
package assets

import (
	"context"
	"errors"
	"io"
	"path"
	"regexp"
	"strings"
)

// ErrNotFound is returned by Store.Get for a missing key.
var ErrNotFound = errors.New("asset not found")

// Object references a stored asset.
type Object struct {
	Key      string // store-relative key, slash separated
	Location string // file path or object URL
	Size     int64
}

// Store persists binary objects under slash separated keys.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeKeyPart makes s usable as a single key segment.
func SanitizeKeyPart(s string) string {
	s = unsafeKeyChars.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "._")
	if s == "" {
		return "unnamed"
	}
	return s
}

// ContractPDFKey returns contracts/<number>/contract_<number>.pdf.
func ContractPDFKey(number string) string {
	n := SanitizeKeyPart(number)
	return path.Join("contracts", n, "contract_"+n+".pdf")
}

// ContractPhotoKey returns contracts/<number>/photo<ext>.
func ContractPhotoKey(number, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join("contracts", SanitizeKeyPart(number), "photo"+strings.ToLower(ext))
}

// ReadAll fetches the whole object stored under key.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", errors.New("empty asset key")
	}
	return k, nil
}
