// Package pdf turns an aggregated shopping list into a downloadable PDF
// document. Rendering is a pure transformation: it performs no I/O and any
// failure indicates a programming defect, not a transient condition.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"recipe-box/internal/shopping"
)

// Page layout, in millimeters on A4 paper.
const (
	titleY     = 25.0
	firstRowY  = 40.0
	rowStep    = 8.0
	bottomY    = 275.0
	numberX    = 20.0
	lineX      = 32.0
	titleFontSize = 18.0
	rowFontSize   = 12.0
)

// RenderError reports a document generation failure. It is not retryable.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render shopping list: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Render produces a PDF with one numbered row per aggregated line, in the
// order given. An empty list renders a valid document with just the header.
func Render(lines []shopping.AggregatedLine) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", titleFontSize)
	doc.Text(70, titleY, tr("Shopping list"))

	doc.SetFont("Helvetica", "", rowFontSize)
	y := firstRowY
	for i, line := range lines {
		doc.Text(numberX, y, fmt.Sprintf("%d.", i+1))
		doc.Text(lineX, y, tr(fmt.Sprintf("%s: %d %s.", line.Name, line.Total, line.Unit)))
		y += rowStep
		if y > bottomY {
			doc.AddPage()
			doc.SetFont("Helvetica", "", rowFontSize)
			y = firstRowY
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return buf.Bytes(), nil
}
