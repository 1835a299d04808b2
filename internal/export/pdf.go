package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/alexiusacademia/gobulb/internal/report"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/phpdave11/gofpdf"
)

// Figure is a PNG image appended to a PDF report.
type Figure struct {
	Title string
	PNG   []byte
}

// PDFOptions tune WritePDF.
type PDFOptions struct {
	Title   string
	Project string
	Units   units.System
	Figures []Figure
}

// WritePDF renders r as an A4 technical report.
func WritePDF(w io.Writer, r report.Report, opts PDFOptions) error {
	u := opts.Units
	if u == "" {
		u = units.SI
	}
	title := opts.Title
	if title == "" {
		title = "Technical Report - Stress Bulb (Boussinesq)"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 10)
	if opts.Project != "" {
		pdf.Cell(0, 6, tr("Project: "+opts.Project))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", r.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	fd := r.Foundation
	heading(pdf, "Analysis parameters")
	rows := [][2]string{
		{"Applied pressure q", u.Format(units.Pressure, fd.Pressure(), 1)},
		{"Width B", u.Format(units.Length, fd.Width(), 2)},
		{"Length L", u.Format(units.Length, fd.Length(), 2)},
		{"Contact area", u.Format(units.Area, fd.Area(), 2)},
		{"Total load", u.Format(units.Force, fd.TotalLoad(), 0)},
		{"Method", string(r.Method)},
	}
	if r.Soil != nil {
		rows = append(rows, [2]string{"Soil", fmt.Sprintf("%s (Poisson ratio %.2f)", r.Soil.Name, r.Soil.PoissonRatio)})
	}
	if fs := r.Field; fs != nil {
		rows = append(rows, [2]string{"Grid", fmt.Sprintf("%d³ = %d points", fs.Resolution, fs.Points)})
	}
	for _, row := range rows {
		pdf.CellFormat(70, 6, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	heading(pdf, "Influence depths")
	for _, d := range r.Influence {
		pdf.CellFormat(70, 6, fmt.Sprintf("Down to %.0f%% of q", 100*d.Threshold), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%.1f B)", u.Format(units.Length, d.Depth, 2), d.Depth/fd.Width())), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	heading(pdf, "Boussinesq vs 2:1 method at the centre")
	widths := []float64{30, 20, 40, 40, 30}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"z", "z/B", "Boussinesq", "2:1", "Diff."} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, p := range r.Comparison {
		cells := []string{
			u.Format(units.Length, p.Depth, 2),
			fmt.Sprintf("%.1f", p.Depth/fd.Width()),
			u.Format(units.Pressure, p.Stress, 1),
			u.Format(units.Pressure, p.TwoToOne, 1),
			fmt.Sprintf("%+.1f%%", p.Difference()),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	heading(pdf, "Recommendations")
	for i, rec := range r.Recommendations() {
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s %s", i+1, rec.Topic, u.Format(units.Length, rec.Depth, 1))), "", "L", false)
	}
	pdf.Ln(4)

	heading(pdf, "Assumptions and limitations")
	for _, l := range report.Limitations {
		pdf.MultiCell(0, 6, tr("- "+l), "", "L", false)
	}

	for i, fig := range opts.Figures {
		pdf.AddPage()
		heading(pdf, fig.Title)
		name := fmt.Sprintf("figure-%d", i)
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(fig.PNG))
		pdf.ImageOptions(name, 15, pdf.GetY()+2, 180, 0, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, text)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
}
