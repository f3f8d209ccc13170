package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/jonwraymond/coverforge/cover"
)

// Page geometry in points.
const (
	pdfMarginTop   = 50
	pdfMarginSide  = 72
	pdfLogoWidth   = 100
	pdfLogoGap     = 12
	pdfFontFamily  = "Helvetica"
	pdfLogoImageID = "logo"
)

// PDFRenderer draws layouts onto a single A4 page with fpdf.
//
// Text is set in the core Helvetica font through a cp1252 translator, so
// only Western European characters survive. Any other rune is written as
// "." (a Bengali name keeps its Latin part only). DOCXRenderer keeps the
// full UTF-8 text.
type PDFRenderer struct {
	opts Options
}

// NewPDF creates a PDF renderer.
func NewPDF(opts Options) *PDFRenderer {
	return &PDFRenderer{opts: opts.withDefaults()}
}

// Format returns FormatPDF.
func (r *PDFRenderer) Format() Format {
	return FormatPDF
}

// Render returns the complete PDF document.
func (r *PDFRenderer) Render(_ context.Context, rec *cover.Record, v Variant) ([]byte, error) {
	layout, stamp, err := plan(rec, v, r.opts)
	if err != nil {
		return nil, err
	}

	logo, _, err := r.opts.Assets.Logo()
	if err != nil {
		return nil, r.fail(v, err)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCreator("coverforge", false)
	pdf.SetTitle(fmt.Sprintf("Assignment %s cover sheet", rec.AssignmentNo), true)
	pdf.SetMargins(pdfMarginSide, pdfMarginTop, pdfMarginSide)
	pdf.SetAutoPageBreak(false, pdfMarginTop)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if logo != nil {
		drawLogo(pdf, logo)
	}
	for _, line := range layout.Lines {
		drawLine(pdf, tr, line)
	}

	if err := pdf.Error(); err != nil {
		return nil, r.fail(v, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, r.fail(v, err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) fail(v Variant, err error) error {
	return &RenderError{Format: FormatPDF, Variant: v.Name, Err: err}
}

func drawLogo(pdf *fpdf.Fpdf, logo *Logo) {
	opts := fpdf.ImageOptions{ImageType: logo.Type}
	pdf.RegisterImageOptionsReader(pdfLogoImageID, opts, bytes.NewReader(logo.Data))
	if pdf.Err() {
		return
	}
	pageW, _ := pdf.GetPageSize()
	h := pdfLogoWidth * float64(logo.Height) / float64(logo.Width)
	pdf.ImageOptions(pdfLogoImageID, (pageW-pdfLogoWidth)/2, pdfMarginTop, pdfLogoWidth, h, false, opts, 0, "")
	pdf.SetY(pdfMarginTop + h + pdfLogoGap)
}

func drawLine(pdf *fpdf.Fpdf, tr func(string) string, line Line) {
	h := line.Height()
	align := "L"
	if line.Align == AlignCenter {
		align = "C"
	}

	if len(line.Runs) == 1 {
		pdf.SetFont(pdfFontFamily, fontStyle(line.Runs[0]), line.Size)
		pdf.MultiCell(0, h, tr(line.Runs[0].Text), "", align, false)
	} else {
		// Mixed emphasis flows left to right; labelled rows are left-aligned.
		for _, run := range line.Runs {
			pdf.SetFont(pdfFontFamily, fontStyle(run), line.Size)
			pdf.Write(h, tr(run.Text))
		}
		pdf.Ln(h)
	}

	if gap := line.GapPoints(); gap > 0 {
		pdf.Ln(gap)
	}
}

func fontStyle(r Run) string {
	switch {
	case r.Bold && r.Italic:
		return "BI"
	case r.Bold:
		return "B"
	case r.Italic:
		return "I"
	default:
		return ""
	}
}
