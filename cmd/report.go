package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alexiusacademia/gobulb/internal/diagram"
	"github.com/alexiusacademia/gobulb/internal/export"
	"github.com/alexiusacademia/gobulb/internal/report"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/spf13/cobra"
)

var (
	reportFoundation foundationFlags
	reportSoil       soilFlags
	reportMethod     string
	reportResolution int
	reportDepthRatio float64
	reportPDF        string
	reportProject    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Technical report of the stress distribution",
	Long: `Print a technical report with the analysis parameters, influence
depths, stresses at z = B and z = 2B, a comparison with the 2:1 method,
design recommendations and the assumptions of the analysis.

With --resolution the stress bulb is computed as well; the PDF report then
includes the isobar plot of the centre section.

Examples:
  gobulb report --width 1.5 --pressure 200 --soil "stiff clay" --gamma 19
  gobulb report -b 2 -l 3 -q 150 --units imperial
  gobulb report -b 2 -q 150 --resolution 40 --pdf reports/ --project "Warehouse A"`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportFoundation.register(reportCmd)
	reportSoil.register(reportCmd)
	registerMethod(reportCmd, &reportMethod)
	reportCmd.Flags().IntVarP(&reportResolution, "resolution", "n", 0, "Also compute the stress bulb with this many samples per axis")
	reportCmd.Flags().Float64VarP(&reportDepthRatio, "depth-ratio", "d", stress.DefaultDepthRatio, "Analysed depth of the stress bulb as a multiple of max(B, L)")
	reportCmd.Flags().StringVar(&reportPDF, "pdf", "", "Write the report to PDF (file or directory)")
	reportCmd.Flags().StringVar(&reportProject, "project", "", "Project name printed on the PDF")
}

func runReport(cmd *cobra.Command, args []string) error {
	f, err := reportFoundation.foundation()
	if err != nil {
		return err
	}
	sl, hasSoil, err := reportSoil.soil()
	if err != nil {
		return err
	}
	method, err := methodOf(reportMethod)
	if err != nil {
		return err
	}

	now := time.Now()
	opts := []report.Option{report.WithMethod(method), report.At(now)}
	if hasSoil {
		opts = append(opts, report.WithSoil(sl))
	}

	var figures []export.Figure
	if reportResolution > 0 {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		spec := stress.GridSpec{DepthRatio: reportDepthRatio, Resolution: reportResolution, Method: method}
		field, err := engine.Compute(cmd.Context(), f, sl, spec)
		if err != nil {
			return err
		}
		opts = append(opts, report.WithField(field))

		if reportPDF != "" {
			png, err := diagram.RenderIsobars(field.CenterSlice(), f, "png")
			if err != nil {
				return fmt.Errorf("render isobars: %w", err)
			}
			figures = append(figures, export.Figure{Title: "Isobars, section y = 0", PNG: png})
		}
	}

	rep, err := report.Build(f, opts...)
	if err != nil {
		return err
	}
	if err := (report.Formatter{Units: system}).WriteText(os.Stdout, rep); err != nil {
		return err
	}

	if reportPDF != "" {
		path := outputPath(reportPDF, "stress_bulb_report", "pdf", now)
		pdfOpts := export.PDFOptions{Project: reportProject, Units: system, Figures: figures}
		if err := export.WriteFile(path, func(w io.Writer) error { return export.WritePDF(w, rep, pdfOpts) }); err != nil {
			return fmt.Errorf("export pdf: %w", err)
		}
		fmt.Printf("Report exported to: %s\n", path)
	}
	return nil
}
