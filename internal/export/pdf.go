package export

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"github.com/cardview-dev/cardview/internal/filter"
	"github.com/cardview-dev/cardview/internal/txtable"
)

// Column widths in mm, in txtable.Header order.
var pdfColumns = []float64{35, 25, 55, 35, 35}

// PDFExporter writes the page as an A4 table.
type PDFExporter struct {
	// Title overrides the document heading.
	Title string
}

func (e *PDFExporter) Format() string      { return "pdf" }
func (e *PDFExporter) ContentType() string { return "application/pdf" }

func (e *PDFExporter) Export(w io.Writer, p filter.Page) error {
	title := e.Title
	if title == "" {
		title = "Transactions"
	}
	t := txtable.New(p)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(0xf9, 0xfa, 0xfb)
	pdf.SetTextColor(0x6b, 0x72, 0x80)
	for i, h := range txtable.Header {
		pdf.CellFormat(pdfColumns[i], 8, h, "B", 0, "L", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range t.Rows {
		for i, c := range r.Cells() {
			if i == txtable.StatusColumn {
				pdf.SetFillColor(int(r.Badge.Bg.R), int(r.Badge.Bg.G), int(r.Badge.Bg.B))
				pdf.SetTextColor(int(r.Badge.Fg.R), int(r.Badge.Fg.G), int(r.Badge.Fg.B))
				pdf.CellFormat(pdfColumns[i], 7, tr(c), "B", 0, "L", true, 0, "")
				continue
			}
			pdf.SetTextColor(0x11, 0x18, 0x27)
			pdf.CellFormat(pdfColumns[i], 7, tr(c), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetTextColor(0x6b, 0x72, 0x80)
	pdf.Cell(0, 7, t.Summary)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
