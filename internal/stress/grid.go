package stress

import (
	"errors"
	"fmt"
	"math"

	"github.com/alexiusacademia/gobulb/internal/soil"
	"gonum.org/v1/gonum/floats"
)

const (
	// GridEpsilon is the shallowest sampled depth. Keeping the first level
	// below the surface avoids the discontinuity at z = 0.
	GridEpsilon = 0.01

	// MinHalfSpan is the smallest half-width of the plan view, so that tiny
	// footprints are still shown with some surrounding ground.
	MinHalfSpan = 3.0

	// MinResolution is the fewest samples per axis a grid may have.
	MinResolution = 2

	DefaultDepthRatio = 3.0
	DefaultResolution = 40
)

// ErrInvalidGrid is returned for a grid specification that cannot be built.
var ErrInvalidGrid = errors.New("invalid grid specification")

// GridSpec describes the analysed volume.
type GridSpec struct {
	// DepthRatio is the analysed depth as a multiple of max(B, L).
	DepthRatio float64 `json:"depth_ratio" yaml:"depth_ratio"`
	// Resolution is the number of samples along each axis.
	Resolution int `json:"resolution" yaml:"resolution"`
	// Method is the rectangle integrator used below the surface.
	Method Method `json:"method" yaml:"method"`
}

// DefaultGridSpec is the grid used when a caller does not choose one.
func DefaultGridSpec() GridSpec {
	return GridSpec{DepthRatio: DefaultDepthRatio, Resolution: DefaultResolution, Method: Newmark}
}

// Validate checks the specification against the structural limits of a grid.
// Resource limits are enforced by the caller.
func (s GridSpec) Validate() error {
	if !(s.DepthRatio > 0) || math.IsInf(s.DepthRatio, 0) {
		return fmt.Errorf("%w: depth ratio must be positive, got %g", ErrInvalidGrid, s.DepthRatio)
	}
	if s.Resolution < MinResolution {
		return fmt.Errorf("%w: resolution must be at least %d, got %d", ErrInvalidGrid, MinResolution, s.Resolution)
	}
	if s.Method != Newmark && s.Method != Integration {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidGrid, s.Method)
	}
	return nil
}

// Point3 is a position in the half-space.
type Point3 struct {
	X, Y, Z float64
}

// Grid is a rectilinear mesh given by its three axes. Points are ordered
// with x slowest and z fastest, so index (i, j, k) maps to (i·ny + j)·nz + k.
type Grid struct {
	X []float64
	Y []float64
	Z []float64
}

// BuildGrid samples the volume around a foundation: x and y span
// ±max(2·max(B, L), MinHalfSpan) and z runs from GridEpsilon to
// DepthRatio·max(B, L), each with Resolution linearly spaced samples.
func BuildGrid(f soil.Foundation, spec GridSpec) (Grid, error) {
	if err := spec.Validate(); err != nil {
		return Grid{}, err
	}
	maxDim := f.MaxDimension()
	half := math.Max(2*maxDim, MinHalfSpan)
	zMax := spec.DepthRatio * maxDim
	if zMax <= GridEpsilon {
		return Grid{}, fmt.Errorf("%w: analysed depth %.4g m is not below the first level %.4g m", ErrInvalidGrid, zMax, GridEpsilon)
	}

	n := spec.Resolution
	return Grid{
		X: floats.Span(make([]float64, n), -half, half),
		Y: floats.Span(make([]float64, n), -half, half),
		Z: floats.Span(make([]float64, n), GridEpsilon, zMax),
	}, nil
}

// Shape returns the number of samples along x, y and z.
func (g Grid) Shape() (nx, ny, nz int) {
	return len(g.X), len(g.Y), len(g.Z)
}

// Len returns the number of grid points.
func (g Grid) Len() int {
	return len(g.X) * len(g.Y) * len(g.Z)
}

// Index returns the flat index of point (i, j, k).
func (g Grid) Index(i, j, k int) int {
	return (i*len(g.Y)+j)*len(g.Z) + k
}

// At returns the coordinates of point (i, j, k).
func (g Grid) At(i, j, k int) Point3 {
	return Point3{X: g.X[i], Y: g.Y[j], Z: g.Z[k]}
}

// Coordinates expands the mesh into one triple per point, in index order.
func (g Grid) Coordinates() []Point3 {
	pts := make([]Point3, 0, g.Len())
	for _, x := range g.X {
		for _, y := range g.Y {
			for _, z := range g.Z {
				pts = append(pts, Point3{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}

// Nearest returns the index of the axis sample closest to v.
func Nearest(axis []float64, v float64) int {
	best, bestDist := 0, math.Inf(1)
	for i, a := range axis {
		if d := math.Abs(a - v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
