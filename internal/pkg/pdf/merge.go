package pdf

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

// dimTolerance absorbs sub-point rounding between producers.
const dimTolerance = 0.5

// Merger composites an overlay page strictly on top of the template's first
// page. Dimensions must match exactly; mismatches are rejected rather than
// rescaled, because the overlay coordinates are calibrated to the template
// and silent rescaling would shift every element.
type Merger struct{}

// NewMerger creates a Merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge stamps overlay onto the first page of the template at templatePath
// and returns the finished single-page document. The template file is never
// modified.
func (m *Merger) Merge(templatePath string, overlay []byte) ([]byte, error) {
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTemplateNotFound, templatePath)
		}
		return nil, fmt.Errorf("error reading template: %w", err)
	}

	tDims, err := api.PageDims(bytes.NewReader(tmpl), nil)
	if err != nil {
		return nil, fmt.Errorf("error reading template dimensions: %w", err)
	}
	oDims, err := api.PageDims(bytes.NewReader(overlay), nil)
	if err != nil {
		return nil, fmt.Errorf("error reading overlay dimensions: %w", err)
	}
	if len(tDims) == 0 || len(oDims) == 0 {
		return nil, fmt.Errorf("%w: empty document", apperrors.ErrPageSizeMismatch)
	}
	if math.Abs(tDims[0].Width-oDims[0].Width) > dimTolerance ||
		math.Abs(tDims[0].Height-oDims[0].Height) > dimTolerance {
		return nil, fmt.Errorf("%w: template %.1fx%.1f, overlay %.1fx%.1f",
			apperrors.ErrPageSizeMismatch,
			tDims[0].Width, tDims[0].Height, oDims[0].Width, oDims[0].Height)
	}

	// The watermark parser wants a file path for PDF stamps.
	tmp, err := os.CreateTemp("", "diploma-overlay-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("error creating overlay temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(overlay); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("error writing overlay temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("error closing overlay temp file: %w", err)
	}

	// Keep only the template's first page, then stamp the overlay on top of it.
	var firstPage bytes.Buffer
	if err := api.Trim(bytes.NewReader(tmpl), &firstPage, []string{"1"}, nil); err != nil {
		return nil, fmt.Errorf("error extracting template page: %w", err)
	}

	wm, err := api.PDFWatermark(tmp.Name(), "pos:c, scale:1 abs, rot:0", true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("error preparing overlay stamp: %w", err)
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(firstPage.Bytes()), &out, []string{"1"}, wm, nil); err != nil {
		return nil, fmt.Errorf("error merging overlay onto template: %w", err)
	}

	return out.Bytes(), nil
}
