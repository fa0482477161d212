package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/fleetops/distance-report/internal/model"
)

const (
	logoImage = "logo"
	qrImage   = "verification-qr"
	fontName  = "Helvetica"
)

type Generator struct {
	logo LogoSource
	qr   QREncoder
}

func NewGenerator(logo LogoSource, qr QREncoder) (*Generator, error) {
	if logo == nil {
		return nil, fmt.Errorf("logo source is required")
	}
	if qr == nil {
		return nil, fmt.Errorf("qr encoder is required")
	}
	return &Generator{logo: logo, qr: qr}, nil
}

// Generate renders the daily distance report. Any asset or drawing failure
// fails the whole document; no partial output is returned.
func (g *Generator) Generate(req model.ReportRequest) ([]byte, error) {
	logo, err := g.logo.Logo()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	qrPNG, err := g.qr.Encode(req.VerificationURL)
	if err != nil {
		return nil, fmt.Errorf("%w: qr code: %v", ErrAssetUnavailable, err)
	}

	header := newHeaderGeometry(logo)
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(req.Title, true)
	doc.SetAuthor(req.GeneratedBy, true)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader(logoImage, imageOpts, bytes.NewReader(logo.PNG))
	doc.RegisterImageOptionsReader(qrImage, imageOpts, bytes.NewReader(qrPNG))
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("%w: register images: %v", ErrAssetUnavailable, err)
	}

	pages := Paginate(req.Rows)
	c := &cursor{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}
	for _, page := range pages {
		height := pageHeight
		if page.IsFirstPage {
			height = header.firstPageHeight()
			doc.AddPageFormat("P", gofpdf.SizeType{Wd: pageWidth, Ht: height})
		} else {
			doc.AddPage()
		}
		c.y = margin

		if page.IsFirstPage {
			c.drawHeader(header, titleLine(req))
		}
		c.drawTableHeader()
		if page.IncludesSummary {
			c.drawSummary(summarize(req))
		}
		for i, row := range page.Rows {
			global := page.Offset + i
			c.drawRow(global, rowCells(global+1, row))
		}
		c.drawFooter(height, footerLine(req), page.Index+1, len(pages))

		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("draw page %d: %w", page.Index+1, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cursor owns the vertical position for one document. Every draw call
// starts at y and leaves y below what it drew.
type cursor struct {
	doc *gofpdf.Fpdf
	tr  func(string) string
	y   float64
}

func (c *cursor) drawHeader(g headerGeometry, title string) {
	top := c.y

	leftTop := top + g.height - g.leftHeight
	c.doc.ImageOptions(logoImage, margin, leftTop, logoWidth, g.logoHeight, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	titleWidth := pageWidth - 2*margin - qrSize - 20
	c.doc.SetFont(fontName, "B", 12)
	setText(c.doc, bodyText)
	c.clippedCell(margin, leftTop+g.logoHeight+titleGap, titleWidth, titleHeight, title, "L")

	rightTop := top + g.height - g.rightHeight
	qrX := pageWidth - margin - qrSize
	c.doc.ImageOptions(qrImage, qrX, rightTop, qrSize, qrSize, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	c.doc.SetFont(fontName, "", 7)
	setText(c.doc, headerCaption)
	c.doc.SetXY(qrX-10, rightTop+qrSize)
	c.doc.CellFormat(qrSize+20, captionHeight, "Scan for report details", "", 0, "C", false, 0, "")

	c.y = top + g.height + headerGap
}

func (c *cursor) drawTableHeader() {
	c.doc.SetFont(fontName, "B", 8)
	c.band(columnTitles, bandHeight, accentFill, accentText, "C")
}

func (c *cursor) drawSummary(s summaryBand) {
	c.doc.SetFont(fontName, "B", 8)
	c.band(s.cells, bandHeight, summaryFill, bodyText, "L")
}

func (c *cursor) drawRow(globalIndex int, cells [8]string) {
	c.doc.SetFont(fontName, "", 8)
	c.band(cells, rowHeight, rowFill(globalIndex), bodyText, "L")
}

func (c *cursor) drawFooter(height float64, line string, page, total int) {
	y := height - footerOffset
	width := pageWidth - 2*margin

	c.doc.SetFont(fontName, "", 8)
	setText(c.doc, footerText)
	c.doc.SetXY(margin, y)
	c.doc.CellFormat(width, 12, c.tr(line), "", 0, "L", false, 0, "")
	c.doc.SetXY(margin, y)
	c.doc.CellFormat(width, 12, fmt.Sprintf("Page %d of %d", page, total), "", 0, "R", false, 0, "")
}

// band fills a full-width strip and writes one clipped cell per column.
func (c *cursor) band(cells [8]string, height float64, fill, text rgb, align string) {
	c.doc.SetFillColor(fill.r, fill.g, fill.b)
	c.doc.Rect(margin, c.y, tableWidth(), height, "F")
	setText(c.doc, text)

	x := margin
	for i, value := range cells {
		c.clippedCell(x, c.y, columnWidths[i], height, value, align)
		x += columnWidths[i]
	}
	c.y += height
}

// clippedCell writes text on a single line; anything wider than w is cut.
func (c *cursor) clippedCell(x, y, w, h float64, text, align string) {
	c.doc.ClipRect(x, y, w, h, false)
	c.doc.SetXY(x, y)
	c.doc.CellFormat(w, h, c.tr(text), "", 0, align, false, 0, "")
	c.doc.ClipEnd()
}

func setText(doc *gofpdf.Fpdf, color rgb) {
	doc.SetTextColor(color.r, color.g, color.b)
}

func tableWidth() float64 {
	total := 0.0
	for _, w := range columnWidths {
		total += w
	}
	return total
}
