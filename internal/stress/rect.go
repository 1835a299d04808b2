package stress

import (
	"fmt"
	"math"
	"strings"
)

// SurfaceTolerance is the depth below which a point is treated as lying on
// the loaded surface.
const SurfaceTolerance = 1e-6

// Method selects how the stress under a rectangle is computed.
type Method string

const (
	// Newmark evaluates the closed-form corner influence factor. O(1) per point.
	Newmark Method = "newmark"
	// Integration integrates the point-load kernel over the footprint
	// numerically. Slow; meant for small grids and point checks.
	Integration Method = "integration"
)

// ParseMethod converts a user-supplied name into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case Newmark, "":
		return Newmark, nil
	case Integration:
		return Integration, nil
	}
	return "", fmt.Errorf("unknown method %q (want %q or %q)", s, Newmark, Integration)
}

// Result is a stress value together with how it was obtained.
type Result struct {
	Value float64
	// FallbackUsed is set when numerical integration did not converge and the
	// value comes from the Newmark formula instead.
	FallbackUsed bool
}

// Rectangle is a uniformly loaded footprint B×L centered at the origin.
type Rectangle struct {
	Q float64 // uniform pressure (kPa)
	B float64 // width along x (m)
	L float64 // length along y (m)

	// Orders overrides the quadrature orders of the Integration method.
	Orders []int
}

// RectStress is shorthand for Rectangle{q, b, l}.StressAt(x, y, z, method).
func RectStress(q, b, l, x, y, z float64, method Method) Result {
	return Rectangle{Q: q, B: b, L: l}.StressAt(x, y, z, method)
}

// StressAt returns the vertical stress increment at (x, y, z). The value is
// never negative.
//
// On the surface (z within SurfaceTolerance of 0) the result is q inside the
// closed footprint and 0 outside, for both methods.
func (r Rectangle) StressAt(x, y, z float64, method Method) Result {
	if z < SurfaceTolerance {
		return Result{Value: r.surface(x, y)}
	}

	if method == Integration {
		if v, ok := integrateRect(r.Orders, r.B, r.L, x, y, z); ok {
			return Result{Value: clampPositive(r.Q * v)}
		}
		return Result{Value: clampPositive(r.Q * newmarkInfluence(r.B, r.L, x, y, z)), FallbackUsed: true}
	}
	return Result{Value: clampPositive(r.Q * newmarkInfluence(r.B, r.L, x, y, z))}
}

func (r Rectangle) surface(x, y float64) float64 {
	if math.Abs(x) <= r.B/2 && math.Abs(y) <= r.L/2 {
		return r.Q
	}
	return 0
}

// newmarkInfluence returns σz/q at (x, y, z) by superposing the corner
// solution over the four sub-rectangles that meet at the point's projection.
// Sub-rectangles lying on the far side of an edge enter with a negative sign,
// which covers points outside the footprint.
func newmarkInfluence(b, l, x, y, z float64) float64 {
	x1, x2 := b/2-x, b/2+x
	y1, y2 := l/2-y, l/2+y
	inv := 1 / z
	return signedCorner(x1, y1, inv) +
		signedCorner(x1, y2, inv) +
		signedCorner(x2, y1, inv) +
		signedCorner(x2, y2, inv)
}

func signedCorner(a, c, invZ float64) float64 {
	if a == 0 || c == 0 {
		return 0
	}
	f := CornerFactor(math.Abs(a)*invZ, math.Abs(c)*invZ)
	if (a < 0) != (c < 0) {
		return -f
	}
	return f
}

// CornerFactor is Newmark's influence factor for the stress beneath the
// corner of a uniformly loaded a×b rectangle at depth z, with m = a/z and
// n = b/z:
//
//	I = 1/4π · [ 2mn√V/(V + m²n²) · (V + 1)/V + atan(2mn√V / (V − m²n²)) ],  V = m² + n² + 1
//
// The arctangent is taken on the branch [0, π]: when V < m²n² the classical
// formula adds π, which atan2 does directly, and V = m²n² yields π/2.
func CornerFactor(m, n float64) float64 {
	if m <= 0 || n <= 0 {
		return 0
	}
	m2, n2 := m*m, n*n
	v := m2 + n2 + 1
	sv := math.Sqrt(v)
	mn2 := m2 * n2
	num := 2 * m * n * sv

	t1 := num / (v + mn2) * (v + 1) / v
	t2 := math.Atan2(num, v-mn2)
	return (t1 + t2) / (4 * math.Pi)
}

func clampPositive(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
