package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alexiusacademia/gobulb/internal/bulb"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"x", "y", "z", "stress_kpa", "stress_percent"}

// WriteCSV writes one row per grid point: coordinates in metres, the stress
// in kPa and the stress as a percentage of the applied pressure.
func WriteCSV(w io.Writer, f *bulb.StressField) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	pts := f.Coordinates()
	vals := f.Stresses()
	pct := f.Percent()
	row := make([]string, len(CSVHeader))
	for i, p := range pts {
		row[0] = formatFloat(p.X)
		row[1] = formatFloat(p.Y)
		row[2] = formatFloat(p.Z)
		row[3] = formatFloat(vals[i])
		row[4] = formatFloat(pct[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
