package assets

import (
	"os"
	"path/filepath"
)

// Resolver finds static files by trying candidate directories in order.
type Resolver struct {
	BaseDir string
	Dirs    []string
}

// NewResolver returns a resolver over dirs rooted at base.
func NewResolver(base string, dirs ...string) *Resolver {
	return &Resolver{BaseDir: base, Dirs: dirs}
}

// Candidates lists the paths FindStatic tries for logical, in order.
func (r *Resolver) Candidates(logical string) []string {
	rel := filepath.FromSlash(logical)
	if r == nil {
		return []string{rel}
	}
	out := make([]string, 0, len(r.Dirs)+1)
	for _, d := range r.Dirs {
		out = append(out, filepath.Join(r.BaseDir, d, rel))
	}
	return append(out, filepath.Join(r.BaseDir, rel))
}

// FindStatic returns the first existing regular file for logical.
func (r *Resolver) FindStatic(logical string) (string, bool) {
	if logical == "" {
		return "", false
	}
	if filepath.IsAbs(logical) {
		return logical, isFile(logical)
	}
	for _, p := range r.Candidates(logical) {
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}
