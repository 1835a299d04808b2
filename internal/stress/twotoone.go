package stress

import "math"

// TwoToOne returns the vertical stress from the 2V:1H load-spreading
// approximation: the load q·B·L is spread uniformly over (B+z)×(L+z) at depth
// z. Points outside the spread area receive nothing.
//
// It is a hand-calculation estimate kept for comparison with the elastic
// solution, not a field evaluation method.
func TwoToOne(q, b, l, x, y, z float64) float64 {
	if z < SurfaceTolerance {
		return Rectangle{Q: q, B: b, L: l}.surface(x, y)
	}
	bz, lz := b+z, l+z
	if math.Abs(x) > bz/2 || math.Abs(y) > lz/2 {
		return 0
	}
	return q * b * l / (bz * lz)
}
