// Package pdf builds the printable documents (invoices, payslips, tax
// reports) on top of gofpdf.
package pdf

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"c2ms/internal/platform/config"
)

const (
	font       = "Helvetica"
	lineHeight = 7.0
)

type Column struct {
	Title string
	Width float64
	Align string
}

type Document struct {
	pdf *gofpdf.Fpdf
}

// New starts an A4 document with the company letterhead and a title.
func New(profile config.Profile, title string) *Document {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(title, true)
	p.SetAuthor(profile.CompanyName, true)
	p.AddPage()

	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetFont(font, "B", 14)
	p.Cell(0, 8, tr(profile.CompanyName))
	p.Ln(7)
	p.SetFont(font, "", 9)
	if profile.Address != "" {
		p.Cell(0, 5, tr(profile.Address))
		p.Ln(5)
	}
	if profile.Phone != "" {
		p.Cell(0, 5, "Telp. "+profile.Phone)
		p.Ln(5)
	}
	if profile.NPWP != "" {
		status := "Non-PKP"
		if profile.PKP {
			status = "PKP"
		}
		p.Cell(0, 5, "NPWP "+profile.NPWP+" ("+status+")")
		p.Ln(5)
	}
	p.Ln(4)
	p.SetFont(font, "B", 16)
	p.Cell(0, 10, tr(title))
	p.Ln(12)
	return &Document{pdf: p}
}

// Field prints a label and value on one line.
func (d *Document) Field(label, value string) {
	d.pdf.SetFont(font, "B", 10)
	d.pdf.Cell(45, lineHeight, label)
	d.pdf.SetFont(font, "", 10)
	d.pdf.Cell(0, lineHeight, value)
	d.pdf.Ln(lineHeight)
}

func (d *Document) Gap() {
	d.pdf.Ln(4)
}

func (d *Document) Heading(text string) {
	d.pdf.Ln(2)
	d.pdf.SetFont(font, "B", 12)
	d.pdf.Cell(0, 8, text)
	d.pdf.Ln(9)
}

// Table prints a header row followed by rows; cells beyond the column list are dropped.
func (d *Document) Table(columns []Column, rows [][]string) {
	d.pdf.SetFont(font, "B", 9)
	d.pdf.SetFillColor(230, 230, 230)
	for _, col := range columns {
		d.pdf.CellFormat(col.Width, lineHeight, col.Title, "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(font, "", 9)
	for _, row := range rows {
		for i, col := range columns {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			align := col.Align
			if align == "" {
				align = "L"
			}
			d.pdf.CellFormat(col.Width, lineHeight, value, "1", 0, align, false, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

// Total prints a right-aligned summary line.
func (d *Document) Total(label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	d.pdf.SetFont(font, style, 10)
	d.pdf.CellFormat(140, lineHeight, label, "", 0, "R", false, 0, "")
	d.pdf.CellFormat(50, lineHeight, value, "", 0, "R", false, 0, "")
	d.pdf.Ln(lineHeight)
}

func (d *Document) Note(text string) {
	d.pdf.SetFont(font, "I", 8)
	d.pdf.MultiCell(0, 5, text, "", "L", false)
}

func (d *Document) WriteTo(w io.Writer) error {
	return d.pdf.Output(w)
}
