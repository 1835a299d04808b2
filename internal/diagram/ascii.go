package diagram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/guptarohit/asciigraph"
)

// shades maps a stress percentage to a fill character, darkest first.
var shades = []struct {
	min  float64
	char string
}{
	{80, "█"},
	{60, "▓"},
	{40, "▒"},
	{20, "░"},
	{10, "·"},
}

func shade(pct float64) string {
	for _, s := range shades {
		if pct >= s.min {
			return s.char
		}
	}
	return " "
}

// DrawBulbSection creates an ASCII view of an x–z section, shaded by stress
// level, with the footing drawn above the ground line.
func DrawBulbSection(s bulb.Slice, footingWidth float64, cols, rows int) string {
	var sb strings.Builder
	if len(s.X) == 0 || len(s.Z) == 0 {
		return ""
	}
	cols = max(cols, 10)
	rows = max(rows, 5)

	xMin, xMax := s.X[0], s.X[len(s.X)-1]
	zMax := s.Z[len(s.Z)-1]
	col := func(x float64) int {
		return int(float64(cols-1) * (x - xMin) / (xMax - xMin))
	}

	sb.WriteString("\n")
	sb.WriteString("  STRESS BULB (vertical section)\n")
	sb.WriteString("  ──────────────────────────────\n\n")

	// footing
	left, right := col(-footingWidth/2), col(footingWidth/2)
	sb.WriteString("   ")
	for c := 0; c < cols; c++ {
		if c >= left && c <= right {
			sb.WriteString("▄")
		} else {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")
	sb.WriteString("  ┌" + strings.Repeat("─", cols) + "┐ z = 0\n")

	for r := 0; r < rows; r++ {
		z := zMax * (float64(r) + 0.5) / float64(rows)
		k := nearestIndex(s.Z, z)
		sb.WriteString("  │")
		for c := 0; c < cols; c++ {
			x := xMin + (xMax-xMin)*float64(c)/float64(cols-1)
			sb.WriteString(shade(s.Percent[nearestIndex(s.X, x)][k]))
		}
		sb.WriteString("│")
		if r == rows-1 {
			fmt.Fprintf(&sb, " z = %.1f m", zMax)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  └" + strings.Repeat("─", cols) + "┘\n")
	fmt.Fprintf(&sb, "   x = %.1f m%s x = %.1f m\n", xMin, strings.Repeat(" ", max(cols-18, 1)), xMax)

	sb.WriteString("\n")
	sb.WriteString("  Legend (% of q):\n")
	sb.WriteString("  █ ≥ 80   ▓ ≥ 60   ▒ ≥ 40   ░ ≥ 20   · ≥ 10\n")
	return sb.String()
}

func nearestIndex(axis []float64, v float64) int {
	best := 0
	for i, a := range axis {
		if abs(a-v) < abs(axis[best]-v) {
			best = i
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// DrawProfileChart plots the stress (% of q) below each characteristic point
// against depth sample.
func DrawProfileChart(profiles []bulb.Profile, pressure float64, height int) string {
	if len(profiles) == 0 || pressure <= 0 {
		return ""
	}
	series := make([][]float64, len(profiles))
	legends := make([]string, len(profiles))
	for i, p := range profiles {
		pct := make([]float64, len(p.Results))
		for k, r := range p.Results {
			pct[k] = 100 * r.Value / pressure
		}
		series[i] = pct
		legends[i] = p.Point.Name
	}
	depths := profiles[0].Depths
	caption := fmt.Sprintf("Δσ/q (%%) from z = %.2f m (left) to z = %.2f m (right)", depths[0], depths[len(depths)-1])

	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green, asciigraph.Goldenrod),
		asciigraph.SeriesLegends(legends...),
	)
}

// DrawSummaryBox creates a summary box for results.
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		maxLen = max(maxLen, utf8.RuneCountInString(line))
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	pad := func(s string) string {
		return s + strings.Repeat(" ", maxLen-4-utf8.RuneCountInString(s))
	}
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}
