package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Document is a single proposal rendered as a labeled field sheet: the
// proposal title on top, then one row per field with the value wrapped.
type Document struct {
	Title  string
	Fields []Field
}

// Field is one labeled line of the sheet.
type Field struct {
	Label string
	Value string
}

// PDFExporter renders a Document into a one-page A4 handout.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	labelWidth = 45.0
	valueWidth = 145.0
	lineHeight = 7.0
)

// Render creates the PDF document.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("pdf requires at least one field")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, doc.Title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	for _, field := range doc.Fields {
		value := field.Value
		if value == "" {
			value = "-"
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(labelWidth, lineHeight, field.Label, "1", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		// MultiCell wraps long values (contents, expected effects) and
		// advances to the next line itself.
		pdf.MultiCell(valueWidth, lineHeight, value, "1", "", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
