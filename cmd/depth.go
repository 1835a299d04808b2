package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alexiusacademia/gobulb/internal/report"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/spf13/cobra"
)

var (
	depthFoundation foundationFlags
	depthTargets    []float64
)

var depthCmd = &cobra.Command{
	Use:   "depth",
	Short: "Influence depths below the foundation centre",
	Long: `Find the depth at which the centerline stress falls below a fraction
of the applied pressure. By default the 20%, 10% and 5% depths are
reported; the 10% depth is the usual settlement calculation depth.

When a ratio is not reached within 5·max(B, L), 2·B is reported.

Examples:
  gobulb depth --width 1.5 --pressure 200
  gobulb depth -b 2 -l 4 -q 150 --target 0.1 --target 0.02`,
	RunE: runDepth,
}

func init() {
	rootCmd.AddCommand(depthCmd)

	depthFoundation.register(depthCmd)
	depthCmd.Flags().Float64SliceVarP(&depthTargets, "target", "t", nil, "Stress ratio Δσ/q to solve for, repeatable (default 0.2, 0.1, 0.05)")
}

func runDepth(cmd *cobra.Command, args []string) error {
	f, err := depthFoundation.foundation()
	if err != nil {
		return err
	}
	targets := depthTargets
	if len(targets) == 0 {
		targets = report.Thresholds
	}
	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	u := system
	printHeader("INFLUENCE DEPTHS - BOUSSINESQ")

	printSection("INPUT DATA:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Foundation (B × L):\t%s × %s\n", u.Format(units.Length, f.Width(), 2), u.Format(units.Length, f.Length(), 2))
	fmt.Fprintf(w, "  Applied pressure (q):\t%s\n", u.Format(units.Pressure, f.Pressure(), 1))
	w.Flush()
	fmt.Println()

	printSection("DEPTHS BELOW CENTRE:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  Δσ/q\tΔσ\tDepth z\tz/B")
	for _, t := range targets {
		z, err := engine.InfluenceDepth(f, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %.0f%%\t%s\t%s\t%.2f\n", 100*t,
			u.Format(units.Pressure, t*f.Pressure(), 1), u.Format(units.Length, z, 2), z/f.Width())
	}
	w.Flush()
	fmt.Println()
	return nil
}
