// Package fs provides file-based storage for harvested fragments and the
// target list.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/codeharvest"
)

// Ensure Writer implements codeharvest.FragmentWriter at compile time.
var _ codeharvest.FragmentWriter = (*Writer)(nil)

// Writer writes fragments as plain files below a base directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that resolves paths against baseDir.
// An empty baseDir means the current working directory.
func NewWriter(baseDir string) *Writer {
	if baseDir == "" {
		baseDir = "."
	}
	return &Writer{baseDir: baseDir}
}

// Path returns the location a relative destination path is written to.
func (w *Writer) Path(path string) string {
	return filepath.Join(w.baseDir, filepath.FromSlash(path))
}

// WriteFragment creates or truncates the file at path and writes the
// fragment text to it. Missing parent directories are created.
func (w *Writer) WriteFragment(ctx context.Context, path string, frag *codeharvest.Fragment) error {
	if path == "" {
		return codeharvest.Errorf(codeharvest.EINVALID, "destination path required")
	}
	if !filepath.IsLocal(filepath.FromSlash(path)) {
		return codeharvest.Errorf(codeharvest.EINVALID, "destination path %q escapes the output directory", path)
	}

	fullPath := w.Path(path)

	// Create parent directories
	if dir := filepath.Dir(fullPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return codeharvest.WrapError(codeharvest.EFILESYSTEM, err, "failed to create directory for %s", path)
		}
	}

	if err := os.WriteFile(fullPath, []byte(frag.Text), 0644); err != nil {
		return codeharvest.WrapError(codeharvest.EFILESYSTEM, err, "failed to write %s", path)
	}
	return nil
}
