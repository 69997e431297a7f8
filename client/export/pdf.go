package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 20.0
	pdfTitleY     = 40.0
	pdfTableY     = 60.0
	pdfPadding    = 4.0
	pdfMinRowH    = 18.0
	pdfLineFactor = 1.15
	pdfHeadSize   = 10.0
	pdfBodySize   = 9.0
)

// RenderPDF writes t as an A4 landscape table.
func RenderPDF(t Table, w io.Writer) error {
	_, err := renderPDF(t, w)
	return err
}

// renderPDF returns the number of body rows drawn.
func renderPDF(t Table, w io.Writer) (int, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("table %q has no columns", t.Title)
	}

	pdf := fpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	widths := fitWidths(t.Columns, pageW-2*pdfMargin)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	title := tr(t.Title)
	pdf.Text((pageW-pdf.GetStringWidth(title))/2, pdfTitleY, title)

	y := drawHeader(pdf, tr, t.Columns, widths, pdfTableY)
	drawn := 0
	for i, row := range t.Rows {
		pdf.SetFont("Helvetica", "", pdfBodySize)
		cells, height := layoutRow(pdf, tr, row, widths)
		if y+height > pageH-pdfMargin {
			pdf.AddPage()
			y = drawHeader(pdf, tr, t.Columns, widths, pdfMargin)
			pdf.SetFont("Helvetica", "", pdfBodySize)
		}
		var fill []int
		if i%2 == 1 {
			fill = []int{240, 240, 240}
		}
		drawRow(pdf, cells, widths, y, height, fill, "L")
		y += height
		drawn++
	}

	if pdf.Err() {
		return drawn, pdf.Error()
	}
	return drawn, pdf.Output(w)
}

// fitWidths scales column widths down proportionally when they exceed avail.
func fitWidths(cols []Column, avail float64) []float64 {
	total := 0.0
	for _, c := range cols {
		total += c.Width
	}
	scale := 1.0
	if total > avail {
		scale = avail / total
	}
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = c.Width * scale
	}
	return out
}

func drawHeader(pdf *fpdf.Fpdf, tr func(string) string, cols []Column, widths []float64, y float64) float64 {
	pdf.SetFont("Helvetica", "B", pdfHeadSize)
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c.Header
	}
	cells, height := layoutRow(pdf, tr, row, widths)
	pdf.SetTextColor(255, 255, 255)
	drawRow(pdf, cells, widths, y, height, []int{54, 169, 225}, "C")
	pdf.SetTextColor(0, 0, 0)
	return y + height
}

// layoutRow wraps every cell to its column and returns the row height.
func layoutRow(pdf *fpdf.Fpdf, tr func(string) string, row []interface{}, widths []float64) ([][]string, float64) {
	size, _ := pdf.GetFontSize()
	lineH := size * pdfLineFactor
	cells := make([][]string, len(widths))
	maxLines := 1
	for i := range widths {
		text := ""
		if i < len(row) && row[i] != nil {
			text = fmt.Sprint(row[i])
		}
		lines := pdf.SplitText(tr(text), widths[i]-2*pdfPadding)
		if len(lines) == 0 {
			lines = []string{""}
		}
		cells[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	height := float64(maxLines)*lineH + 2*pdfPadding
	if height < pdfMinRowH {
		height = pdfMinRowH
	}
	return cells, height
}

func drawRow(pdf *fpdf.Fpdf, cells [][]string, widths []float64, y, height float64, fill []int, align string) {
	size, _ := pdf.GetFontSize()
	lineH := size * pdfLineFactor
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.5)

	x := pdfMargin
	for i, lines := range cells {
		style := "D"
		if fill != nil {
			pdf.SetFillColor(fill[0], fill[1], fill[2])
			style = "FD"
		}
		pdf.Rect(x, y, widths[i], height, style)

		textY := y + (height-float64(len(lines))*lineH)/2
		for _, line := range lines {
			pdf.SetXY(x+pdfPadding, textY)
			pdf.CellFormat(widths[i]-2*pdfPadding, lineH, line, "", 0, align+"M", false, 0, "")
			textY += lineH
		}
		x += widths[i]
	}
}
