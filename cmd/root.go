package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alexiusacademia/gobulb/internal/config"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/alexiusacademia/gobulb/internal/version"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
	unitsFlag  string

	// Set up before every command runs
	cfg    = config.Default()
	logger = slog.New(slog.DiscardHandler)
	system = units.SI
)

var rootCmd = &cobra.Command{
	Use:   "gobulb",
	Short: "Stress bulb analysis under rectangular foundations",
	Long: `gobulb - Go Stress Bulb Analyzer

A CLI tool for the vertical stress increment below uniformly loaded
rectangular foundations, based on Boussinesq's elastic half-space solution.

This tool helps geotechnical engineers perform:
  - Stress bulb (isobar) computation on a 3D grid
  - Point stress checks with the Newmark or numerical integration methods
  - Influence depths at 20%, 10% and 5% of the applied pressure
  - Depth profiles below the centre, edges and outside the footing
  - Technical reports with a 2:1 method comparison (text, PDF, XLSX, CSV)

Results are computed in SI units (kN, m, kPa) and can be reported in
SI, MKS or Imperial units.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.ErrOrStderr())
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   gobulb v%-48s║\n", version.Version)
		fmt.Println("  ║   Go Stress Bulb Analyzer (Boussinesq)                    ║")
		fmt.Printf("  ║   %s ©  %-36s║\n", version.Author, version.Year)
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  A CLI tool for the vertical stress increment below")
		fmt.Println("  uniformly loaded rectangular foundations.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Stress bulb computation with cached results")
		fmt.Println("    • Newmark and numerical integration methods")
		fmt.Println("    • Influence depths and depth profiles")
		fmt.Println("    • Technical reports with 2:1 method comparison")
		fmt.Println("    • HTTP API with rate limiting and Prometheus metrics")
		fmt.Println()
		fmt.Println("  Use 'gobulb --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&unitsFlag, "units", "u", "si", "Unit system for output (si, mks, imperial)")
}

// setup loads the configuration and installs the logger.
func setup(stderr io.Writer) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	sys, err := units.Parse(unitsFlag)
	if err != nil {
		return err
	}
	l, err := newLogger(c.Log, verbose, stderr)
	if err != nil {
		return err
	}
	cfg, system, logger = c, sys, l
	slog.SetDefault(logger)
	return nil
}

func newLogger(c config.LogConfig, debug bool, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
