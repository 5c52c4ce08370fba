package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
)

// Layout holds the drawing coordinates calibrated to the template's design.
// Coordinates are in points with a bottom-left origin, matching how the
// template was measured. They are configuration, not computed layout.
type Layout struct {
	NameX, NameY float64 // center of the student name
	NameSize     float64

	// White band painted under the name to cover the template's placeholder.
	MaskX, MaskY, MaskW, MaskH float64

	QRX, QRY, QRSize float64 // bottom-left corner and edge of the QR code

	FolioInset, FolioY float64 // right inset and baseline of the folio line
	FolioSize          float64

	DateX, DateY float64 // optional issuance date line
	IssuerY      float64 // optional issuer line, same X as the date
}

// DefaultLayout returns the coordinates calibrated to RECONOCIMIENTOv2.
func DefaultLayout() Layout {
	return Layout{
		NameX: 421, NameY: 315, NameSize: 34,
		MaskX: 110, MaskY: 302, MaskW: 620, MaskH: 34,
		QRX: 710, QRY: 60, QRSize: 120,
		FolioInset: 24, FolioY: 18, FolioSize: 8,
		DateX: 70, DateY: 140, IssuerY: 158,
	}
}

// OverlaySpec is the value set drawn onto one overlay page.
type OverlaySpec struct {
	PageWidth  float64
	PageHeight float64

	StudentName     string
	Folio           string
	VerificationURL string

	// Optional fields; zero values are not drawn.
	IssuedOn   time.Time
	IssuerName string
}

// OverlayRenderer produces the transparent page carrying only the dynamic
// content: student name, QR code, folio and optional issuer/date lines.
type OverlayRenderer struct {
	layout Layout
}

// NewOverlayRenderer creates a renderer with the given layout.
func NewOverlayRenderer(layout Layout) *OverlayRenderer {
	return &OverlayRenderer{layout: layout}
}

// Render draws the overlay page and returns it as PDF bytes. The page is
// blank except for the drawn elements; no background is assumed. No I/O.
func (o *OverlayRenderer) Render(spec OverlaySpec) ([]byte, error) {
	if spec.PageWidth <= 0 || spec.PageHeight <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive", apperrors.ErrValidationFailed)
	}
	if spec.StudentName == "" || spec.Folio == "" || spec.VerificationURL == "" {
		return nil, fmt.Errorf("%w: student name, folio and verification URL are required", apperrors.ErrValidationFailed)
	}

	l := o.layout
	w, h := spec.PageWidth, spec.PageHeight

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	// Core fonts are cp1252; names carry accented characters.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	// gofpdf uses a top-left origin; the layout is measured bottom-left.
	flip := func(y float64) float64 { return h - y }

	// Mask band under the name.
	doc.SetFillColor(255, 255, 255)
	doc.Rect(l.MaskX, flip(l.MaskY+l.MaskH), l.MaskW, l.MaskH, "F")

	// Student name, bold, centered at the calibrated point.
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "B", l.NameSize)
	name := tr(spec.StudentName)
	doc.Text(l.NameX-doc.GetStringWidth(name)/2, flip(l.NameY), name)

	// QR code encoding the verification URL.
	png, err := qrcode.Encode(spec.VerificationURL, qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("error encoding QR code: %w", err)
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	doc.ImageOptions("qr", l.QRX, flip(l.QRY+l.QRSize), l.QRSize, l.QRSize, false, opts, 0, "")

	// Folio, small, right-aligned near the bottom edge.
	doc.SetFont("Helvetica", "", l.FolioSize)
	folio := tr("Folio: " + spec.Folio)
	doc.Text(w-l.FolioInset-doc.GetStringWidth(folio), flip(l.FolioY), folio)

	if !spec.IssuedOn.IsZero() {
		doc.SetFont("Helvetica", "", 12)
		doc.Text(l.DateX, flip(l.DateY), tr("Fecha de emisión: "+spec.IssuedOn.Format("2006-01-02")))
	}
	if spec.IssuerName != "" {
		doc.SetFont("Helvetica", "", 12)
		doc.Text(l.DateX, flip(l.IssuerY), tr(spec.IssuerName))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("error writing overlay page: %w", err)
	}
	return buf.Bytes(), nil
}
