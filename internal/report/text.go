package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alexiusacademia/gobulb/internal/units"
)

const (
	banner = "═══════════════════════════════════════════════════════════════"
	rule   = "───────────────────────────────────────────────────────────────"
)

// Formatter renders reports as plain text.
type Formatter struct {
	Units units.System
}

// Text renders r.
func (f Formatter) Text(r Report) string {
	var sb strings.Builder
	_ = f.WriteText(&sb, r)
	return sb.String()
}

// WriteText renders r to w.
func (f Formatter) WriteText(w io.Writer, r Report) error {
	u := f.Units
	if u == "" {
		u = units.SI
	}
	fd := r.Foundation
	q := fd.Pressure()
	b := fd.Width()
	length := func(v float64) string { return u.Format(units.Length, v, 2) }
	pressure := func(v float64) string { return u.Format(units.Pressure, v, 1) }

	var sb strings.Builder
	sb.WriteString("\n" + banner + "\n")
	sb.WriteString("     TECHNICAL REPORT - STRESS BULB (BOUSSINESQ)\n")
	sb.WriteString(banner + "\n\n")

	section(&sb, "ANALYSIS PARAMETERS:", func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "  Applied pressure (q):\t%s\n", pressure(q))
		fmt.Fprintf(tw, "  Footing width (B):\t%s\n", length(b))
		fmt.Fprintf(tw, "  Footing length (L):\t%s\n", length(fd.Length()))
		fmt.Fprintf(tw, "  Contact area:\t%s\n", u.Format(units.Area, fd.Area(), 2))
		fmt.Fprintf(tw, "  Total load:\t%s\n", u.Format(units.Force, fd.TotalLoad(), 0))
		fmt.Fprintf(tw, "  Method:\t%s\n", r.Method)
		if r.Soil != nil {
			fmt.Fprintf(tw, "  Soil:\t%s (γ = %s, ν = %.2f)\n", r.Soil.Name,
				u.Format(units.UnitWeight, r.Soil.UnitWeight, 1), r.Soil.PoissonRatio)
		}
	})

	if fs := r.Field; fs != nil {
		section(&sb, "COMPUTED FIELD:", func(tw *tabwriter.Writer) {
			fmt.Fprintf(tw, "  Grid:\t%d³ = %d points\n", fs.Resolution, fs.Points)
			fmt.Fprintf(tw, "  Depth analysed:\t%.1f × max(B, L)\n", fs.DepthRatio)
			fmt.Fprintf(tw, "  Maximum Δσ:\t%s\n", pressure(fs.MaxStress))
			fmt.Fprintf(tw, "  Computation time:\t%.2f s\n", fs.Duration.Seconds())
			if fs.Smoothed {
				fmt.Fprintf(tw, "  Post-processing:\tGaussian smoothing\n")
			}
			if fs.Fallbacks > 0 {
				fmt.Fprintf(tw, "  Integration fallbacks:\t%d points ⚠\n", fs.Fallbacks)
			}
			fmt.Fprintf(tw, "  Field ID:\t%s\n", fs.ID)
		})
	}

	section(&sb, "INFLUENCE DEPTHS:", func(tw *tabwriter.Writer) {
		for _, d := range r.Influence {
			fmt.Fprintf(tw, "  Down to %.0f%% of q:\tz ≈ %s\t(%.1f×B)\n", 100*d.Threshold, length(d.Depth), d.Depth/b)
		}
	})

	section(&sb, "STRESSES AT CHARACTERISTIC POINTS:", func(tw *tabwriter.Writer) {
		for _, p := range []struct {
			label string
			ps    PointStress
		}{{"Centre, z = B:", r.AtB}, {"Centre, z = 2B:", r.At2B}} {
			fmt.Fprintf(tw, "  %s\tΔσ = %s\t(%.1f%% of q)\n", p.label, pressure(p.ps.Stress), p.ps.Percent(q))
		}
	})

	section(&sb, "BOUSSINESQ vs 2:1 METHOD (centre):", func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "  z\tz/B\tBoussinesq\t2:1\tDiff.\n")
		for _, p := range r.Comparison {
			fmt.Fprintf(tw, "  %s\t%.1f\t%s\t%s\t%+.1f%%\n", length(p.Depth), p.Depth/b,
				pressure(p.Stress), pressure(p.TwoToOne), p.Difference())
		}
	})

	sb.WriteString("TECHNICAL RECOMMENDATIONS:\n")
	sb.WriteString(rule + "\n")
	for i, rec := range r.Recommendations() {
		fmt.Fprintf(&sb, "  %d. %s %s\n", i+1, rec.Topic, u.Format(units.Length, rec.Depth, 1))
	}
	sb.WriteString("\n")

	sb.WriteString("ASSUMPTIONS AND LIMITATIONS:\n")
	sb.WriteString(rule + "\n")
	for _, l := range Limitations {
		fmt.Fprintf(&sb, "  • %s\n", l)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "ANALYSIS DATE: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	_, err := io.WriteString(w, sb.String())
	return err
}

func section(sb *strings.Builder, title string, body func(tw *tabwriter.Writer)) {
	sb.WriteString(title + "\n")
	sb.WriteString(rule + "\n")
	tw := tabwriter.NewWriter(sb, 0, 0, 2, ' ', 0)
	body(tw)
	tw.Flush()
	sb.WriteString("\n")
}
