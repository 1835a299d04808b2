package cmd

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/spf13/cobra"
)

var (
	pointLoad float64
	pointX    float64
	pointY    float64
	pointZ    float64
)

var pointLoadCmd = &cobra.Command{
	Use:   "point-load",
	Short: "Vertical stress increment under a concentrated load",
	Long: `Calculate Δσz at one point (x, y, z) below a vertical point load Q
applied at the origin, using the Boussinesq solution

  Δσz = 3·Q·z³ / (2π·R⁵),  R = √(x² + y² + z²)

The stress is unbounded at the point of application itself, which is
reported as an error.

Examples:
  gobulb point-load --load 500 --z 2
  gobulb point-load -P 500 --x 1 --y 0.5 --z 1.5`,
	RunE: runPointLoad,
}

func init() {
	rootCmd.AddCommand(pointLoadCmd)

	pointLoadCmd.Flags().Float64VarP(&pointLoad, "load", "P", 0, "Point load Q (kN) [required]")
	pointLoadCmd.Flags().Float64Var(&pointX, "x", 0, "Point x coordinate (m)")
	pointLoadCmd.Flags().Float64Var(&pointY, "y", 0, "Point y coordinate (m)")
	pointLoadCmd.Flags().Float64Var(&pointZ, "z", 0, "Point depth z (m) [required]")

	pointLoadCmd.MarkFlagRequired("load")
	pointLoadCmd.MarkFlagRequired("z")
}

func runPointLoad(cmd *cobra.Command, args []string) error {
	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	v, err := engine.PointLoadAt(pointLoad, pointX, pointY, pointZ)
	if err != nil {
		return err
	}
	u := system
	r := math.Sqrt(pointX*pointX + pointY*pointY + pointZ*pointZ)

	printHeader("POINT LOAD STRESS - BOUSSINESQ")

	printSection("INPUT DATA:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Point load (Q):\t%s\n", u.Format(units.Force, pointLoad, 1))
	fmt.Fprintf(w, "  Point (x, y, z):\t(%s, %s, %s)\n",
		u.Format(units.Length, pointX, 2), u.Format(units.Length, pointY, 2), u.Format(units.Length, pointZ, 2))
	fmt.Fprintf(w, "  Distance (R):\t%s\n", u.Format(units.Length, r, 3))
	w.Flush()
	fmt.Println()

	printSection("RESULTS:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Δσz:\t%s\n", u.Format(units.Pressure, v, 3))
	if pointLoad != 0 {
		fmt.Fprintf(w, "  Influence (Δσz/Q):\t%.5f 1/m²\n", v/pointLoad)
	}
	w.Flush()
	fmt.Println()
	return nil
}
