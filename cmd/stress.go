package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/spf13/cobra"
)

var (
	stressFoundation foundationFlags
	stressX          float64
	stressY          float64
	stressZ          float64
	stressMethod     string
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Vertical stress increment at a single point",
	Long: `Calculate Δσz at one point (x, y, z) below a uniformly loaded
rectangular foundation centred at the origin, with x along B and y
along L. The 2:1 approximation at the same point is shown for comparison.

Examples:
  # Below the centre of a 1 x 1 m footing, 1 m deep
  gobulb stress --width 1 --pressure 100 --z 1

  # Below a corner, using numerical integration
  gobulb stress -b 2 -l 3 -q 150 --x 1 --y 1.5 --z 2 --method integration`,
	RunE: runStress,
}

func init() {
	rootCmd.AddCommand(stressCmd)

	stressFoundation.register(stressCmd)
	stressCmd.Flags().Float64Var(&stressX, "x", 0, "Point x coordinate (m)")
	stressCmd.Flags().Float64Var(&stressY, "y", 0, "Point y coordinate (m)")
	stressCmd.Flags().Float64Var(&stressZ, "z", 0, "Point depth z (m) [required]")
	registerMethod(stressCmd, &stressMethod)

	stressCmd.MarkFlagRequired("z")
}

func runStress(cmd *cobra.Command, args []string) error {
	f, err := stressFoundation.foundation()
	if err != nil {
		return err
	}
	method, err := methodOf(stressMethod)
	if err != nil {
		return err
	}
	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.StressAt(f, stressX, stressY, stressZ, method)
	if err != nil {
		return err
	}
	twoToOne := stress.TwoToOne(f.Pressure(), f.Width(), f.Length(), stressX, stressY, stressZ)
	u := system

	printHeader("POINT STRESS - BOUSSINESQ")

	printSection("INPUT DATA:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Foundation (B × L):\t%s × %s\n", u.Format(units.Length, f.Width(), 2), u.Format(units.Length, f.Length(), 2))
	fmt.Fprintf(w, "  Applied pressure (q):\t%s\n", u.Format(units.Pressure, f.Pressure(), 1))
	fmt.Fprintf(w, "  Point (x, y, z):\t(%s, %s, %s)\n",
		u.Format(units.Length, stressX, 2), u.Format(units.Length, stressY, 2), u.Format(units.Length, stressZ, 2))
	fmt.Fprintf(w, "  Method:\t%s\n", method)
	w.Flush()
	fmt.Println()

	printSection("RESULTS:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Δσz (Boussinesq):\t%s\t%.2f%% of q", u.Format(units.Pressure, res.Value, 2), percentOf(res.Value, f.Pressure()))
	if res.FallbackUsed {
		fmt.Fprintf(w, " ⚠ (integration fell back to Newmark)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Δσz (2:1 method):\t%s\t%.2f%% of q\n", u.Format(units.Pressure, twoToOne, 2), percentOf(twoToOne, f.Pressure()))
	w.Flush()
	fmt.Println()
	return nil
}

func percentOf(v, q float64) float64 {
	if q == 0 {
		return 0
	}
	return 100 * v / q
}
