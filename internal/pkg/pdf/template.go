// Package pdf implements the document side of the generation pipeline:
// reading the fixed template, rendering the per-student overlay, and merging
// the two into the finished diploma.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

// TemplateReader resolves the template document and reports its page size.
type TemplateReader struct{}

// NewTemplateReader creates a TemplateReader.
func NewTemplateReader() *TemplateReader {
	return &TemplateReader{}
}

// Resolve locates the template file. Deployments differ in working
// directory, so besides the configured path it probes the executable's
// directory and the parent directory before giving up.
func (r *TemplateReader) Resolve(path string) (string, error) {
	candidates := []string{path}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), path))
	}
	candidates = append(candidates, filepath.Join("..", path))

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s", apperrors.ErrTemplateNotFound, path)
}

// Dims returns the width and height of the template's first page in points
// (1/72 inch).
func (r *TemplateReader) Dims(path string) (float64, float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, 0, fmt.Errorf("%w: %s", apperrors.ErrTemplateNotFound, path)
	}

	dims, err := api.PageDimsFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("error reading template page dimensions: %w", err)
	}
	if len(dims) == 0 {
		return 0, 0, fmt.Errorf("template %s has no pages", path)
	}
	return dims[0].Width, dims[0].Height, nil
}
