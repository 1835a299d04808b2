package export

import (
	"fmt"
	"io"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/report"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by WriteXLSX.
const (
	SummarySheet = "Summary"
	FieldSheet   = "Field"
	ProfileSheet = "Centerline"
)

// WriteXLSX writes a workbook with the report summary, the centerline
// profile and every grid point of the field.
func WriteXLSX(w io.Writer, f *bulb.StressField, r report.Report) (err error) {
	x := excelize.NewFile()
	defer func() {
		if cerr := x.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := x.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	bold, err := x.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	if err := writeSummary(x, r, bold); err != nil {
		return err
	}
	if err := writeCenterline(x, f, bold); err != nil {
		return err
	}
	if err := writeField(x, f); err != nil {
		return err
	}

	x.SetActiveSheet(0)
	if err := x.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSummary(x *excelize.File, r report.Report, bold int) error {
	fd := r.Foundation
	rows := [][]any{
		{"Parameter", "Value", "Unit"},
		{"Applied pressure q", fd.Pressure(), "kPa"},
		{"Width B", fd.Width(), "m"},
		{"Length L", fd.Length(), "m"},
		{"Area", fd.Area(), "m²"},
		{"Total load", fd.TotalLoad(), "kN"},
		{"Method", string(r.Method), ""},
		{},
		{"Influence depth", "z (m)", "z/B"},
	}
	for _, d := range r.Influence {
		rows = append(rows, []any{fmt.Sprintf("%.0f%% of q", 100*d.Threshold), d.Depth, d.Depth / fd.Width()})
	}
	rows = append(rows, []any{}, []any{"z (m)", "Boussinesq (kPa)", "2:1 (kPa)", "Difference (%)"})
	for _, p := range r.Comparison {
		rows = append(rows, []any{p.Depth, p.Stress, p.TwoToOne, p.Difference()})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := x.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx summary row %d: %w", i+1, err)
		}
	}
	for _, span := range [][2]string{{"A1", "C1"}, {"A9", "C9"}} {
		if err := x.SetCellStyle(SummarySheet, span[0], span[1], bold); err != nil {
			return err
		}
	}
	return x.SetColWidth(SummarySheet, "A", "D", 20)
}

func writeCenterline(x *excelize.File, f *bulb.StressField, bold int) error {
	if _, err := x.NewSheet(ProfileSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	col := f.ColumnAt(0, 0)
	q := f.Foundation().Pressure()
	header := []any{"z (m)", "stress (kPa)", "stress (% of q)"}
	if err := x.SetSheetRow(ProfileSheet, "A1", &header); err != nil {
		return err
	}
	for k, z := range col.Z {
		pct := 0.0
		if q > 0 {
			pct = 100 * col.Stress[k] / q
		}
		row := []any{z, col.Stress[k], pct}
		cell, _ := excelize.CoordinatesToCellName(1, k+2)
		if err := x.SetSheetRow(ProfileSheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx centerline row %d: %w", k+2, err)
		}
	}
	return x.SetCellStyle(ProfileSheet, "A1", "C1", bold)
}

// writeField streams the grid, which can hold up to a million rows.
func writeField(x *excelize.File, f *bulb.StressField) error {
	if _, err := x.NewSheet(FieldSheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	sw, err := x.NewStreamWriter(FieldSheet)
	if err != nil {
		return fmt.Errorf("xlsx stream: %w", err)
	}
	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	pts := f.Coordinates()
	vals := f.Stresses()
	pct := f.Percent()
	for i, p := range pts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []any{p.X, p.Y, p.Z, vals[i], pct[i]}); err != nil {
			return fmt.Errorf("xlsx field row %d: %w", i+2, err)
		}
	}
	return sw.Flush()
}
