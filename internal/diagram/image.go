package diagram

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// IsobarLevels are the contour levels drawn on the section, in % of q.
var IsobarLevels = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90}

// sectionGrid adapts a slice to plotter.GridXYZ with elevation (−z) on the
// vertical axis, rows ordered bottom to top.
type sectionGrid struct {
	s bulb.Slice
}

func (g sectionGrid) Dims() (c, r int) { return len(g.s.X), len(g.s.Z) }
func (g sectionGrid) X(c int) float64  { return g.s.X[c] }
func (g sectionGrid) Y(r int) float64  { return -g.s.Z[len(g.s.Z)-1-r] }
func (g sectionGrid) Z(c, r int) float64 {
	return g.s.Percent[c][len(g.s.Z)-1-r]
}
func (g sectionGrid) Min() float64 { return 0 }
func (g sectionGrid) Max() float64 { return 100 }

// IsobarPlot builds a heat map of an x–z section with isobar contours and
// the footing outline.
func IsobarPlot(s bulb.Slice, f soil.Foundation) (*plot.Plot, error) {
	if len(s.X) < 2 || len(s.Z) < 2 {
		return nil, fmt.Errorf("isobar plot needs at least a 2×2 section, got %d×%d", len(s.X), len(s.Z))
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Stress bulb, B = %.2f m, L = %.2f m, q = %.0f kPa (y = %.2f m)",
		f.Width(), f.Length(), f.Pressure(), s.Y)
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "Elevation, -z (m)"

	g := sectionGrid{s: s}
	heat := plotter.NewHeatMap(g, palette.Heat(20, 1))
	p.Add(heat)

	contour := plotter.NewContour(g, IsobarLevels, palette.Heat(len(IsobarLevels), 1))
	contour.LineStyles = []draw.LineStyle{{Color: color.Black, Width: vg.Points(0.8)}}
	p.Add(contour)

	footing, err := plotter.NewLine(plotter.XYs{
		{X: -f.Width() / 2, Y: 0},
		{X: f.Width() / 2, Y: 0},
	})
	if err != nil {
		return nil, err
	}
	footing.LineStyle.Width = vg.Points(5)
	footing.LineStyle.Color = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	p.Add(footing)

	// label each isobar where it crosses the centre column
	col := nearestIndex(s.X, 0)
	var xys []plotter.XY
	var labels []string
	for _, lvl := range IsobarLevels {
		for k := len(s.Z) - 1; k >= 0; k-- {
			if s.Percent[col][k] >= lvl {
				xys = append(xys, plotter.XY{X: s.X[col], Y: -s.Z[k]})
				labels = append(labels, fmt.Sprintf("%.0f%%", lvl))
				break
			}
		}
	}
	if len(xys) > 0 {
		l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}
	return p, nil
}

// ExportIsobars writes the isobar plot of a section to an image file. The
// format follows the extension (.png, .svg, .pdf); anything else gets .png.
func ExportIsobars(s bulb.Slice, f soil.Foundation, filename string) error {
	p, err := IsobarPlot(s, f)
	if err != nil {
		return err
	}
	return save(p, 8*vg.Inch, 6*vg.Inch, filename)
}

// RenderIsobars renders the isobar plot in memory, e.g. for embedding in a
// PDF report.
func RenderIsobars(s bulb.Slice, f soil.Foundation, format string) ([]byte, error) {
	p, err := IsobarPlot(s, f)
	if err != nil {
		return nil, err
	}
	return render(p, 8*vg.Inch, 6*vg.Inch, format)
}

var profileColors = []color.Color{
	color.RGBA{R: 200, A: 255},
	color.RGBA{B: 200, A: 255},
	color.RGBA{G: 140, A: 255},
	color.RGBA{R: 218, G: 165, B: 32, A: 255},
}

// ProfilePlot draws stress (% of q) against elevation for each profile.
func ProfilePlot(profiles []bulb.Profile, pressure float64) (*plot.Plot, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profiles to plot")
	}
	p := plot.New()
	p.Title.Text = "Vertical stress below characteristic points"
	p.X.Label.Text = "Δσ/q (%)"
	p.Y.Label.Text = "Elevation, -z (m)"
	p.X.Min = 0
	p.X.Max = 100
	p.Legend.Top = false
	p.Legend.Left = false

	for i, pr := range profiles {
		pts := make(plotter.XYs, len(pr.Results))
		for k, r := range pr.Results {
			pct := 0.0
			if pressure > 0 {
				pct = 100 * r.Value / pressure
			}
			pts[k] = plotter.XY{X: pct, Y: -pr.Depths[k]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = profileColors[i%len(profileColors)]
		p.Add(line)
		p.Legend.Add(pr.Point.Name, line)
	}
	return p, nil
}

// ExportProfiles writes the profile plot to an image file.
func ExportProfiles(profiles []bulb.Profile, pressure float64, filename string) error {
	p, err := ProfilePlot(profiles, pressure)
	if err != nil {
		return err
	}
	return save(p, 6*vg.Inch, 8*vg.Inch, filename)
}

func save(p *plot.Plot, w, h vg.Length, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg":
	default:
		filename += ".png"
	}

	// Create directory if needed
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return p.Save(w, h, filename)
}

func render(p *plot.Plot, w, h vg.Length, format string) ([]byte, error) {
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
