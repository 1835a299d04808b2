package stress

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/alexiusacademia/gobulb/internal/soil"
	"golang.org/x/sync/errgroup"
)

// Evaluator computes the stress at every point of a grid.
type Evaluator struct {
	// Workers bounds the number of x-slices evaluated concurrently.
	// Zero means GOMAXPROCS.
	Workers int

	// Smoothing is applied once, after evaluation, when every axis has more
	// than Smoothing.MinResolution samples.
	Smoothing Smoothing

	// Orders overrides the quadrature orders of the Integration method.
	Orders []int

	Logger *slog.Logger
}

// Smoothing configures the post-evaluation Gaussian filter.
type Smoothing struct {
	Sigma         float64 // standard deviation in grid cells; 0 disables
	MinResolution int
}

// DefaultSmoothing is a light blur that removes mesh artefacts near the
// footprint edges.
var DefaultSmoothing = Smoothing{Sigma: 0.8, MinResolution: 20}

// Evaluation is the output of Evaluate: one stress per grid point, aligned
// with Grid.Index.
type Evaluation struct {
	Stresses []float64
	// Fallbacks counts points where integration fell back to Newmark.
	Fallbacks int
	Smoothed  bool
}

// Evaluate computes the vertical stress increment at every point of g under
// foundation f.
//
// Surface levels (z < SurfaceTolerance) take q inside the footprint and 0
// outside. Deeper levels use the chosen method: Newmark slices are computed
// in parallel, Integration point by point. The context is checked between
// x-slices and, for Integration, before each quadrature.
func (e *Evaluator) Evaluate(ctx context.Context, g Grid, f soil.Foundation, method Method) (Evaluation, error) {
	nx, ny, nz := g.Shape()
	out := make([]float64, g.Len())
	fallbacks := make([]int, nx)

	surface := make([]bool, nz)
	for k, z := range g.Z {
		surface[k] = z < SurfaceTolerance
	}

	rect := Rectangle{Q: f.Pressure(), B: f.Width(), L: f.Length(), Orders: e.Orders}
	// Edge distances depend only on one axis; hoist them out of the point loop.
	x1, x2 := edgeOffsets(g.X, rect.B)
	y1, y2 := edgeOffsets(g.Y, rect.L)
	invZ := make([]float64, nz)
	for k, z := range g.Z {
		if !surface[k] {
			invZ[k] = 1 / z
		}
	}

	slice := func(ctx context.Context, i int) error {
		for j := 0; j < ny; j++ {
			base := g.Index(i, j, 0)
			inside := f.Contains(g.X[i], g.Y[j])
			for k := 0; k < nz; k++ {
				if surface[k] {
					if inside {
						out[base+k] = rect.Q
					}
					continue
				}
				if method == Integration {
					if err := ctx.Err(); err != nil {
						return err
					}
					r := rect.StressAt(g.X[i], g.Y[j], g.Z[k], Integration)
					out[base+k] = r.Value
					if r.FallbackUsed {
						fallbacks[i]++
					}
					continue
				}
				inv := invZ[k]
				v := signedCorner(x1[i], y1[j], inv) +
					signedCorner(x1[i], y2[j], inv) +
					signedCorner(x2[i], y1[j], inv) +
					signedCorner(x2[i], y2[j], inv)
				out[base+k] = clampPositive(rect.Q * v)
			}
		}
		return nil
	}

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i := 0; i < nx; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return slice(gctx, i)
		})
	}
	if err := grp.Wait(); err != nil {
		return Evaluation{}, err
	}
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}

	res := Evaluation{Stresses: out}
	for _, n := range fallbacks {
		res.Fallbacks += n
	}
	if res.Fallbacks > 0 && e.Logger != nil {
		e.Logger.Debug("integration fell back to newmark",
			slog.Int("points", res.Fallbacks),
			slog.Int("total", len(out)))
	}

	if e.Smoothing.Sigma > 0 && nx > e.Smoothing.MinResolution && ny > e.Smoothing.MinResolution && nz > e.Smoothing.MinResolution {
		gaussianFilter3D(out, nx, ny, nz, e.Smoothing.Sigma)
		for i := range out {
			out[i] = clampPositive(out[i])
		}
		restoreSurface(out, g, f, surface)
		res.Smoothed = true
	}
	return res, nil
}

// edgeOffsets returns, for each axis sample, the signed distances to the
// positive and negative edges of a footprint of the given size.
func edgeOffsets(axis []float64, size float64) (pos, neg []float64) {
	pos = make([]float64, len(axis))
	neg = make([]float64, len(axis))
	for i, v := range axis {
		pos[i] = size/2 - v
		neg[i] = size/2 + v
	}
	return pos, neg
}

func restoreSurface(out []float64, g Grid, f soil.Foundation, surface []bool) {
	for k, s := range surface {
		if !s {
			continue
		}
		for i, x := range g.X {
			for j, y := range g.Y {
				v := 0.0
				if f.Contains(x, y) {
					v = f.Pressure()
				}
				out[g.Index(i, j, k)] = v
			}
		}
	}
}
