package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/jonwraymond/coverforge/cover"
)

// Page geometry in twips (1/20 pt) and EMU (1/12700 pt).
const (
	twipsPerPoint = 20
	emuPerPoint   = 12700

	docxPageWidth  = 11906
	docxPageHeight = 16838
	docxMarginTop  = pdfMarginTop * twipsPerPoint
	docxMarginSide = pdfMarginSide * twipsPerPoint
	docxLogoGap    = pdfLogoGap * twipsPerPoint
	docxFontFamily = "Arial"
)

// Package part names.
const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partStyles       = "word/styles.xml"
	partMediaPrefix  = "word/media/logo."
)

const (
	nsMain    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsRel     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPkgRel  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsWP      = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic     = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	relDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// DOCXRenderer writes layouts as a minimal WordprocessingML package.
type DOCXRenderer struct {
	opts Options
}

// NewDOCX creates a DOCX renderer.
func NewDOCX(opts Options) *DOCXRenderer {
	return &DOCXRenderer{opts: opts.withDefaults()}
}

// Format returns FormatDOCX.
func (r *DOCXRenderer) Format() Format {
	return FormatDOCX
}

// Render returns the complete DOCX package.
func (r *DOCXRenderer) Render(_ context.Context, rec *cover.Record, v Variant) ([]byte, error) {
	layout, stamp, err := plan(rec, v, r.opts)
	if err != nil {
		return nil, err
	}

	logo, _, err := r.opts.Assets.Logo()
	if err != nil {
		return nil, r.fail(v, err)
	}

	parts := []struct {
		name string
		data []byte
	}{
		{partContentTypes, contentTypesXML(logo)},
		{partRootRels, []byte(rootRelsXML)},
		{partDocument, documentXML(layout, logo)},
		{partDocumentRels, documentRelsXML(logo)},
		{partStyles, []byte(stylesXML)},
	}
	if logo != nil {
		parts = append(parts, struct {
			name string
			data []byte
		}{partMediaPrefix + logo.Ext(), logo.Data})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: stamp,
		})
		if err != nil {
			return nil, r.fail(v, fmt.Errorf("create %s: %w", p.name, err))
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, r.fail(v, fmt.Errorf("write %s: %w", p.name, err))
		}
	}
	if err := zw.Close(); err != nil {
		return nil, r.fail(v, err)
	}
	return buf.Bytes(), nil
}

func (r *DOCXRenderer) fail(v Variant, err error) error {
	return &RenderError{Format: FormatDOCX, Variant: v.Name, Err: err}
}

const rootRelsXML = xml.Header + `<Relationships xmlns="` + nsPkgRel + `">` +
	`<Relationship Id="rId1" Type="` + relDoc + `" Target="word/document.xml"/>` +
	`</Relationships>`

const stylesXML = xml.Header + `<w:styles xmlns:w="` + nsMain + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr>` +
	`<w:rFonts w:ascii="` + docxFontFamily + `" w:hAnsi="` + docxFontFamily + `" w:cs="` + docxFontFamily + `"/>` +
	`<w:sz w:val="22"/><w:szCs w:val="22"/>` +
	`</w:rPr></w:rPrDefault>` +
	`<w:pPrDefault><w:pPr><w:spacing w:before="0" w:after="0" w:line="276" w:lineRule="auto"/></w:pPr></w:pPrDefault>` +
	`</w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`</w:styles>`

func contentTypesXML(logo *Logo) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	if logo != nil {
		fmt.Fprintf(&b, `<Default Extension="%s" ContentType="%s"/>`, logo.Ext(), logo.MIME)
	}
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>`)
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func documentRelsXML(logo *Logo) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="` + nsPkgRel + `">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relStyles + `" Target="styles.xml"/>`)
	if logo != nil {
		fmt.Fprintf(&b, `<Relationship Id="rId2" Type="%s" Target="media/logo.%s"/>`, relImage, logo.Ext())
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}

func documentXML(layout Layout, logo *Logo) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s" xmlns:wp="%s" xmlns:a="%s" xmlns:pic="%s"><w:body>`,
		nsMain, nsRel, nsWP, nsA, nsPic)

	if logo != nil {
		writeLogo(&b, logo)
	}
	for _, line := range layout.Lines {
		writeParagraph(&b, line)
	}

	fmt.Fprintf(&b, `<w:sectPr><w:pgSz w:w="%d" w:h="%d"/>`, docxPageWidth, docxPageHeight)
	fmt.Fprintf(&b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		docxMarginTop, docxMarginSide, docxMarginTop, docxMarginSide)
	b.WriteString(`</w:sectPr></w:body></w:document>`)
	return b.Bytes()
}

func writeParagraph(b *bytes.Buffer, line Line) {
	jc := "left"
	if line.Align == AlignCenter {
		jc = "center"
	}
	after := int(math.Round(line.GapPoints() * twipsPerPoint))
	halfPoints := int(math.Round(line.Size * 2))

	fmt.Fprintf(b, `<w:p><w:pPr><w:jc w:val="%s"/><w:spacing w:after="%d"/></w:pPr>`, jc, after)
	for _, run := range line.Runs {
		b.WriteString(`<w:r><w:rPr>`)
		if run.Bold {
			b.WriteString(`<w:b/>`)
		}
		if run.Italic {
			b.WriteString(`<w:i/>`)
		}
		fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr>`, halfPoints, halfPoints)
		b.WriteString(`<w:t xml:space="preserve">`)
		// Writes to a bytes.Buffer cannot fail.
		_ = xml.EscapeText(b, []byte(run.Text))
		b.WriteString(`</w:t></w:r>`)
	}
	b.WriteString(`</w:p>`)
}

func writeLogo(b *bytes.Buffer, logo *Logo) {
	cx := int64(pdfLogoWidth * emuPerPoint)
	cy := int64(math.Round(pdfLogoWidth * float64(logo.Height) / float64(logo.Width) * emuPerPoint))
	name := "logo." + logo.Ext()

	fmt.Fprintf(b, `<w:p><w:pPr><w:jc w:val="center"/><w:spacing w:after="%d"/></w:pPr><w:r><w:drawing>`, docxLogoGap)
	fmt.Fprintf(b, `<wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%d" cy="%d"/>`, cx, cy)
	fmt.Fprintf(b, `<wp:docPr id="1" name="%s"/>`, name)
	fmt.Fprintf(b, `<a:graphic><a:graphicData uri="%s"><pic:pic>`, nsPic)
	fmt.Fprintf(b, `<pic:nvPicPr><pic:cNvPr id="0" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`, name)
	b.WriteString(`<pic:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`)
	fmt.Fprintf(b, `<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`, cx, cy)
	b.WriteString(`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>`)
}
