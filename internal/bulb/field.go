package bulb

import (
	"math"
	"slices"
	"time"

	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/google/uuid"
)

// SoilSummary is the part of a Soil recorded with a field.
type SoilSummary struct {
	Name         string  `json:"name"`
	UnitWeight   float64 `json:"unit_weight"`
	PoissonRatio float64 `json:"poisson_ratio"`
}

func summarize(s soil.Soil) SoilSummary {
	return SoilSummary{Name: s.Name(), UnitWeight: s.UnitWeight(), PoissonRatio: s.PoissonRatio()}
}

// Metadata describes how a StressField was produced.
type Metadata struct {
	Foundation soil.Foundation
	Soil       SoilSummary
	Spec       stress.GridSpec
	ComputedAt time.Time
	Duration   time.Duration
	// Fallbacks counts points where integration fell back to Newmark.
	Fallbacks int
	Smoothed  bool
}

// StressField is the vertical stress increment sampled on a grid.
//
// A field is immutable once returned by the engine and may be shared
// between callers. Every accessor that exposes a slice returns a copy.
type StressField struct {
	id       uuid.UUID
	grid     stress.Grid
	stresses []float64
	meta     Metadata
}

func newField(g stress.Grid, stresses []float64, meta Metadata) *StressField {
	return &StressField{id: uuid.New(), grid: g, stresses: stresses, meta: meta}
}

// ID identifies this computation.
func (f *StressField) ID() uuid.UUID { return f.id }

// Metadata returns the provenance of the field.
func (f *StressField) Metadata() Metadata { return f.meta }

// Foundation returns the loaded footprint.
func (f *StressField) Foundation() soil.Foundation { return f.meta.Foundation }

// Grid returns a copy of the sampling grid.
func (f *StressField) Grid() stress.Grid {
	return stress.Grid{X: slices.Clone(f.grid.X), Y: slices.Clone(f.grid.Y), Z: slices.Clone(f.grid.Z)}
}

// Shape returns the number of samples along x, y and z.
func (f *StressField) Shape() (nx, ny, nz int) { return f.grid.Shape() }

// Len returns the number of grid points.
func (f *StressField) Len() int { return len(f.stresses) }

// Index returns the flat index of point (i, j, k).
func (f *StressField) Index(i, j, k int) int { return f.grid.Index(i, j, k) }

// At returns the stress at point (i, j, k).
func (f *StressField) At(i, j, k int) float64 { return f.stresses[f.grid.Index(i, j, k)] }

// Point returns the coordinates of point (i, j, k).
func (f *StressField) Point(i, j, k int) stress.Point3 { return f.grid.At(i, j, k) }

// Coordinates returns one (x, y, z) triple per point, aligned with Stresses.
func (f *StressField) Coordinates() []stress.Point3 { return f.grid.Coordinates() }

// Stresses returns a copy of the stresses in index order.
func (f *StressField) Stresses() []float64 { return slices.Clone(f.stresses) }

// Percent returns the stresses as a percentage of the applied pressure.
// A field under zero pressure yields all zeros.
func (f *StressField) Percent() []float64 {
	out := make([]float64, len(f.stresses))
	q := f.meta.Foundation.Pressure()
	if q == 0 {
		return out
	}
	for i, v := range f.stresses {
		out[i] = 100 * v / q
	}
	return out
}

// Max returns the largest stress in the field.
func (f *StressField) Max() float64 {
	if len(f.stresses) == 0 {
		return 0
	}
	return slices.Max(f.stresses)
}

// Slice is a vertical x–z section through the field at a fixed y.
type Slice struct {
	Y float64
	X []float64
	Z []float64
	// Percent[i][k] is the stress at (X[i], Y, Z[k]) in % of pressure.
	Percent [][]float64
}

// SliceY extracts the x–z section at y index j, normalised to percent of the
// applied pressure.
func (f *StressField) SliceY(j int) Slice {
	nx, _, nz := f.grid.Shape()
	q := f.meta.Foundation.Pressure()
	s := Slice{
		Y:       f.grid.Y[j],
		X:       slices.Clone(f.grid.X),
		Z:       slices.Clone(f.grid.Z),
		Percent: make([][]float64, nx),
	}
	for i := 0; i < nx; i++ {
		row := make([]float64, nz)
		if q > 0 {
			for k := 0; k < nz; k++ {
				row[k] = 100 * f.At(i, j, k) / q
			}
		}
		s.Percent[i] = row
	}
	return s
}

// CenterSlice is the section through the middle y sample.
func (f *StressField) CenterSlice() Slice {
	_, ny, _ := f.grid.Shape()
	return f.SliceY(ny / 2)
}

// Column is the stress along one vertical line of the grid.
type Column struct {
	X, Y   float64
	Z      []float64
	Stress []float64
}

// ColumnAt returns the grid column nearest to plan position (x, y).
func (f *StressField) ColumnAt(x, y float64) Column {
	i := stress.Nearest(f.grid.X, x)
	j := stress.Nearest(f.grid.Y, y)
	_, _, nz := f.grid.Shape()
	c := Column{
		X:      f.grid.X[i],
		Y:      f.grid.Y[j],
		Z:      slices.Clone(f.grid.Z),
		Stress: make([]float64, nz),
	}
	copy(c.Stress, f.stresses[f.grid.Index(i, j, 0):f.grid.Index(i, j, 0)+nz])
	return c
}

// IsobarDepth returns the deepest grid level at which the centre column is
// still at or above pct percent of pressure, or NaN if none is.
func (f *StressField) IsobarDepth(pct float64) float64 {
	col := f.ColumnAt(0, 0)
	q := f.meta.Foundation.Pressure()
	depth := math.NaN()
	for k, v := range col.Stress {
		if q > 0 && 100*v/q >= pct {
			depth = col.Z[k]
		}
	}
	return depth
}
