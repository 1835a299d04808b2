package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alexiusacademia/gobulb/internal/diagram"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/spf13/cobra"
)

var (
	profileFoundation foundationFlags
	profileDepth      float64
	profileSamples    int
	profileMethod     string
	profileHeight     int
	profileImage      string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Stress profiles with depth at characteristic points",
	Long: `Evaluate Δσz against depth below the centre, the middle of each
edge and a point one width outside the footing, and chart the profiles.

Examples:
  gobulb profile --width 2 --pressure 150
  gobulb profile -b 2 -l 3 -q 150 --depth 8 --samples 80 -o profiles.png`,
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileFoundation.register(profileCmd)
	profileCmd.Flags().Float64VarP(&profileDepth, "depth", "z", 0, "Deepest depth (m), defaults to 3·max(B, L)")
	profileCmd.Flags().IntVarP(&profileSamples, "samples", "n", 50, "Number of depths")
	registerMethod(profileCmd, &profileMethod)
	profileCmd.Flags().IntVar(&profileHeight, "height", 15, "Height of the ASCII chart (lines)")
	profileCmd.Flags().StringVarP(&profileImage, "output", "o", "", "Export the profile plot (png, svg, pdf)")
}

func runProfile(cmd *cobra.Command, args []string) error {
	f, err := profileFoundation.foundation()
	if err != nil {
		return err
	}
	method, err := methodOf(profileMethod)
	if err != nil {
		return err
	}
	zMax := profileDepth
	if zMax == 0 {
		zMax = 3 * f.MaxDimension()
	}
	engine, err := openEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	profiles, err := engine.Profiles(f, zMax, profileSamples, method)
	if err != nil {
		return err
	}
	u := system

	printHeader("STRESS PROFILES - BOUSSINESQ")
	fmt.Println(diagram.DrawProfileChart(profiles, f.Pressure(), profileHeight))
	fmt.Println()

	printSection("Δσz AT SELECTED DEPTHS:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "  z")
	for _, p := range profiles {
		fmt.Fprintf(w, "\t%s (%s, %s)", p.Point.Name, u.Format(units.Length, p.Point.X, 2), u.Format(units.Length, p.Point.Y, 2))
	}
	fmt.Fprintln(w)
	depths := profiles[0].Depths
	step := max(1, len(depths)/10)
	for k := 0; k < len(depths); k += step {
		fmt.Fprintf(w, "  %s", u.Format(units.Length, depths[k], 2))
		for _, p := range profiles {
			fmt.Fprintf(w, "\t%s", u.Format(units.Pressure, p.Results[k].Value, 1))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	fmt.Println()

	if profileImage != "" {
		if err := diagram.ExportProfiles(profiles, f.Pressure(), profileImage); err != nil {
			return fmt.Errorf("export profiles: %w", err)
		}
		fmt.Printf("Profiles exported to: %s\n", profileImage)
	}
	return nil
}
