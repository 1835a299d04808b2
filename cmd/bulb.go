package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/diagram"
	"github.com/alexiusacademia/gobulb/internal/export"
	"github.com/alexiusacademia/gobulb/internal/report"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/spf13/cobra"
)

var (
	// Bulb inputs
	bulbFoundation foundationFlags
	bulbSoil       soilFlags
	bulbDepthRatio float64
	bulbResolution int
	bulbMethod     string

	// Output options
	bulbNoDiagram bool
	bulbCols      int
	bulbRows      int
	bulbCSV       string
	bulbXLSX      string
	bulbImage     string
)

var bulbCmd = &cobra.Command{
	Use:   "bulb",
	Short: "Compute the stress bulb below a rectangular foundation",
	Long: `Compute the vertical stress increment Δσz on a 3D grid below a
uniformly loaded rectangular foundation and draw the isobars of the
section through the footing centre.

The grid spans max(2·max(B,L), 3) m either side of the centre in plan and
from 0.01 m down to depth-ratio·max(B,L). Results are cached: repeating a
computation with the same footing and grid returns the stored field.

Examples:
  # 2 x 2 m footing with q = 150 kPa
  gobulb bulb --width 2 --pressure 150

  # 1.5 x 3 m footing, finer grid, exports
  gobulb bulb -b 1.5 -l 3 -q 200 --resolution 60 --csv field.csv --xlsx out/ -o isobars.png`,
	RunE: runBulb,
}

func init() {
	rootCmd.AddCommand(bulbCmd)

	bulbFoundation.register(bulbCmd)
	bulbSoil.register(bulbCmd)

	// Grid flags
	bulbCmd.Flags().Float64VarP(&bulbDepthRatio, "depth-ratio", "d", stress.DefaultDepthRatio, "Analysed depth as a multiple of max(B, L)")
	bulbCmd.Flags().IntVarP(&bulbResolution, "resolution", "n", stress.DefaultResolution, "Grid samples per axis")
	registerMethod(bulbCmd, &bulbMethod)

	// Output flags
	bulbCmd.Flags().BoolVar(&bulbNoDiagram, "no-diagram", false, "Do not draw the ASCII isobar section")
	bulbCmd.Flags().IntVar(&bulbCols, "cols", 61, "Width of the ASCII section (characters)")
	bulbCmd.Flags().IntVar(&bulbRows, "rows", 24, "Height of the ASCII section (lines)")
	bulbCmd.Flags().StringVar(&bulbCSV, "csv", "", "Export every grid point to CSV (file or directory)")
	bulbCmd.Flags().StringVar(&bulbXLSX, "xlsx", "", "Export the field and summary to XLSX (file or directory)")
	bulbCmd.Flags().StringVarP(&bulbImage, "output", "o", "", "Export the isobar plot (png, svg, pdf)")
}

func runBulb(cmd *cobra.Command, args []string) error {
	f, err := bulbFoundation.foundation()
	if err != nil {
		return err
	}
	sl, hasSoil, err := bulbSoil.soil()
	if err != nil {
		return err
	}
	method, err := methodOf(bulbMethod)
	if err != nil {
		return err
	}
	spec := stress.GridSpec{DepthRatio: bulbDepthRatio, Resolution: bulbResolution, Method: method}

	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	field, err := engine.Compute(cmd.Context(), f, sl, spec)
	if err != nil {
		return err
	}
	meta := field.Metadata()
	u := system

	printHeader("STRESS BULB - BOUSSINESQ")

	printSection("INPUT DATA:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Foundation (B × L):\t%s × %s\n", u.Format(units.Length, f.Width(), 2), u.Format(units.Length, f.Length(), 2))
	fmt.Fprintf(w, "  Applied pressure (q):\t%s\n", u.Format(units.Pressure, f.Pressure(), 1))
	fmt.Fprintf(w, "  Total load (Q):\t%s\n", u.Format(units.Force, f.TotalLoad(), 1))
	if meta.Soil.Name != "" {
		fmt.Fprintf(w, "  Soil:\t%s (γ = %s, ν = %.2f)\n", meta.Soil.Name,
			u.Format(units.UnitWeight, meta.Soil.UnitWeight, 1), meta.Soil.PoissonRatio)
	}
	w.Flush()
	fmt.Println()

	printSection("GRID:")
	nx, ny, nz := field.Shape()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Method:\t%s\n", meta.Spec.Method)
	fmt.Fprintf(w, "  Points:\t%d × %d × %d = %d\n", nx, ny, nz, field.Len())
	fmt.Fprintf(w, "  Depth analysed:\t%s\n", u.Format(units.Length, meta.Spec.DepthRatio*f.MaxDimension(), 2))
	fmt.Fprintf(w, "  Smoothed:\t%t\n", meta.Smoothed)
	if meta.Fallbacks > 0 {
		fmt.Fprintf(w, "  Integration fallbacks:\t%d ⚠\n", meta.Fallbacks)
	}
	fmt.Fprintf(w, "  Computed in:\t%s\n", meta.Duration.Round(time.Millisecond))
	w.Flush()
	fmt.Println()

	slice := field.CenterSlice()
	if !bulbNoDiagram {
		fmt.Println(diagram.DrawBulbSection(slice, f.Width(), bulbCols, bulbRows))
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Δσ max = %s", u.Format(units.Pressure, field.Max(), 1)))
	for _, pct := range []float64{80, 50, 20, 10} {
		z := field.IsobarDepth(pct)
		if math.IsNaN(z) {
			lines = append(lines, fmt.Sprintf("%3.0f%% isobar: not reached", pct))
			continue
		}
		lines = append(lines, fmt.Sprintf("%3.0f%% isobar to z = %s", pct, u.Format(units.Length, z, 2)))
	}
	fmt.Println(diagram.DrawSummaryBox("STRESS BULB SUMMARY", lines))

	var opts []report.Option
	if hasSoil {
		opts = append(opts, report.WithSoil(sl))
	}
	return exportBulb(field, slice, opts...)
}

func exportBulb(field *bulb.StressField, slice bulb.Slice, opts ...report.Option) error {
	now := time.Now()
	f := field.Foundation()

	if bulbCSV != "" {
		path := outputPath(bulbCSV, "stress_bulb", "csv", now)
		if err := export.WriteFile(path, func(w io.Writer) error { return export.WriteCSV(w, field) }); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
		fmt.Printf("Field exported to: %s\n", path)
	}

	if bulbXLSX != "" {
		opts = append(opts, report.WithField(field), report.At(now))
		rep, err := report.Build(f, opts...)
		if err != nil {
			return err
		}
		path := outputPath(bulbXLSX, "stress_bulb", "xlsx", now)
		if err := export.WriteFile(path, func(w io.Writer) error { return export.WriteXLSX(w, field, rep) }); err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		fmt.Printf("Workbook exported to: %s\n", path)
	}

	if bulbImage != "" {
		if err := diagram.ExportIsobars(slice, f, bulbImage); err != nil {
			return fmt.Errorf("export isobars: %w", err)
		}
		fmt.Printf("Isobars exported to: %s\n", bulbImage)
	}
	return nil
}
