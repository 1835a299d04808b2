package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/export"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/spf13/cobra"
)

const rule = "───────────────────────────────────────────────────────────────"

// foundationFlags are the footing inputs shared by every analysis command.
type foundationFlags struct {
	width    float64
	length   float64
	pressure float64
}

func (f *foundationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.width, "width", "b", 0, "Foundation width B (m) [required]")
	cmd.Flags().Float64VarP(&f.length, "length", "l", 0, "Foundation length L (m), defaults to B")
	cmd.Flags().Float64VarP(&f.pressure, "pressure", "q", 0, "Applied pressure q (kPa) [required]")

	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("pressure")
}

// foundation builds the footing, treating an omitted length as a square.
func (f *foundationFlags) foundation() (soil.Foundation, error) {
	length := f.length
	if length == 0 {
		length = f.width
	}
	return soil.NewFoundation(f.width, length, f.pressure)
}

// soilFlags describe the soil recorded with a computation.
type soilFlags struct {
	name    string
	gamma   float64
	poisson float64

	cmd *cobra.Command
}

func (s *soilFlags) register(cmd *cobra.Command) {
	s.cmd = cmd
	cmd.Flags().StringVar(&s.name, "soil", "", "Soil description")
	cmd.Flags().Float64Var(&s.gamma, "gamma", 18, "Soil unit weight γ (kN/m³)")
	cmd.Flags().Float64Var(&s.poisson, "poisson", soil.DefaultPoissonRatio, "Poisson ratio ν")
}

// given reports whether any soil flag was set.
func (s *soilFlags) given() bool {
	if s.name != "" {
		return true
	}
	if s.cmd == nil {
		return false
	}
	fs := s.cmd.Flags()
	return fs.Changed("soil") || fs.Changed("gamma") || fs.Changed("poisson")
}

// soil returns the zero Soil when no soil flag was given.
func (s *soilFlags) soil() (soil.Soil, bool, error) {
	if !s.given() {
		return soil.Soil{}, false, nil
	}
	sl, err := soil.NewSoil(s.name, s.gamma, soil.WithPoissonRatio(s.poisson))
	return sl, err == nil, err
}

func registerMethod(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "method", "m", "", "Rectangle integration method (newmark, integration); defaults to the configured one")
}

// methodOf resolves the --method flag against the configured default.
func methodOf(name string) (stress.Method, error) {
	if strings.TrimSpace(name) == "" {
		name = cfg.Engine.DefaultMethod
	}
	return stress.ParseMethod(name)
}

func openEngine() (*bulb.Engine, error) {
	return bulb.Open(cfg.Engine, logger)
}

// outputPath resolves an export flag. A directory (existing, or written with
// a trailing separator) receives a timestamped file name.
func outputPath(path, prefix, ext string, t time.Time) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return filepath.Join(path, export.Filename(prefix, ext, t))
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, export.Filename(prefix, ext, t))
	}
	return path
}

func printHeader(title string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("     %s\n", title)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
}

func printSection(title string) {
	fmt.Println(title)
	fmt.Println(rule)
}
