package stress

import (
	"fmt"
	"math"
)

const (
	influenceSamples = 500
	influenceTol     = 1e-6
	// influenceRange is the scanned depth as a multiple of max(B, L).
	influenceRange = 5.0
)

// CenterlineRatio returns σz/q under the centre of a B×L footprint at depth z,
// using the Newmark formula.
func CenterlineRatio(b, l, z float64) float64 {
	return RectStress(1, b, l, 0, 0, z, Newmark).Value
}

// InfluenceDepth returns the depth at which the centerline stress ratio σz/q
// first drops below target.
//
// The ratio decreases monotonically with depth, so a coarse scan over
// (GridEpsilon, 5·max(B, L)] finds the first sample below the target and a
// bisection between it and the previous sample refines the crossing. If the
// ratio never drops below target within the range, 2·B is returned as a
// conservative default.
func InfluenceDepth(b, l, target float64) (float64, error) {
	if !(b > 0) || !(l > 0) {
		return 0, fmt.Errorf("influence depth: footprint must be positive, got %g×%g", b, l)
	}
	if !(target > 0 && target < 1) {
		return 0, fmt.Errorf("influence depth: target ratio must be in (0, 1), got %g", target)
	}

	zMax := influenceRange * math.Max(b, l)
	step := (zMax - GridEpsilon) / float64(influenceSamples-1)

	prev := GridEpsilon
	for s := 0; s < influenceSamples; s++ {
		z := GridEpsilon + float64(s)*step
		if CenterlineRatio(b, l, z) < target {
			if s == 0 {
				return z, nil
			}
			return bisectDepth(b, l, target, prev, z), nil
		}
		prev = z
	}
	return 2 * b, nil
}

// bisectDepth narrows [lo, hi], where the ratio is ≥ target at lo and below it
// at hi, and returns the upper end of the final bracket.
func bisectDepth(b, l, target, lo, hi float64) float64 {
	for hi-lo > influenceTol {
		mid := (lo + hi) / 2
		if CenterlineRatio(b, l, mid) < target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}
