package stress

import (
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/integrate/quad"
)

// DefaultIntegrationOrders are the Gauss-Legendre orders tried in turn until
// two successive estimates agree.
var DefaultIntegrationOrders = []int{16, 32, 64, 128}

const (
	integrationRelTol = 1e-6
	integrationAbsTol = 1e-12
)

type legendreRule struct {
	nodes   []float64 // on [-1, 1]
	weights []float64
}

var (
	rulesMu sync.RWMutex
	rules   = map[int]legendreRule{}
)

// ruleFor returns the n-point rule, building it on first use.
func ruleFor(n int) legendreRule {
	rulesMu.RLock()
	r, ok := rules[n]
	rulesMu.RUnlock()
	if ok {
		return r
	}

	rulesMu.Lock()
	defer rulesMu.Unlock()
	if r, ok := rules[n]; ok {
		return r
	}
	r = legendreRule{nodes: make([]float64, n), weights: make([]float64, n)}
	quad.Legendre{}.FixedLocations(r.nodes, r.weights, -1, 1)
	rules[n] = r
	return r
}

// integrateRect computes σz/q at (x, y, z) by integrating the point-load
// kernel over [-b/2, b/2]×[-l/2, l/2], raising the order through orders
// (DefaultIntegrationOrders when nil). ok is false when the quadrature does
// not converge or produces a non-finite value.
func integrateRect(orders []int, b, l, x, y, z float64) (v float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = 0, false
		}
	}()

	xs := breakpoints(-b/2, b/2, x, z)
	ys := breakpoints(-l/2, l/2, y, z)

	if orders == nil {
		orders = DefaultIntegrationOrders
	}
	if len(orders) == 0 {
		return 0, false
	}
	prev := integrateOrder(xs, ys, x, y, z, ruleFor(orders[0]))
	if !isFinite(prev) {
		return 0, false
	}
	for _, n := range orders[1:] {
		cur := integrateOrder(xs, ys, x, y, z, ruleFor(n))
		if !isFinite(cur) {
			return 0, false
		}
		if math.Abs(cur-prev) <= integrationRelTol*math.Abs(cur)+integrationAbsTol {
			return cur, true
		}
		prev = cur
	}
	return prev, false
}

func integrateOrder(xs, ys []float64, x, y, z float64, r legendreRule) float64 {
	z2 := z * z
	return composite(ys, r, func(eta float64) float64 {
		dy := y - eta
		base := dy*dy + z2
		return composite(xs, r, func(xi float64) float64 {
			dx := x - xi
			return pointInfluence(dx*dx+base, z)
		})
	})
}

// composite applies the rule on every sub-interval [pts[i], pts[i+1]].
func composite(pts []float64, r legendreRule, f func(float64) float64) float64 {
	var sum float64
	for s := 0; s+1 < len(pts); s++ {
		half := (pts[s+1] - pts[s]) / 2
		mid := (pts[s+1] + pts[s]) / 2
		var part float64
		for i, t := range r.nodes {
			part += r.weights[i] * f(mid+half*t)
		}
		sum += part * half
	}
	return sum
}

// breakpoints splits [lo, hi] into sub-intervals graded geometrically toward
// p, the projection of the evaluation point, where the kernel peaks with a
// width of order z. The first spacing is the distance from p to the
// interval's nearest point combined with z.
func breakpoints(lo, hi, p, z float64) []float64 {
	c := math.Min(math.Max(p, lo), hi)
	d := math.Hypot(z, p-c)
	pts := []float64{lo, hi, c}
	for h := d; h > 0 && h < hi-lo; h *= 4 {
		if c-h > lo {
			pts = append(pts, c-h)
		}
		if c+h < hi {
			pts = append(pts, c+h)
		}
	}
	slices.Sort(pts)
	return slices.Compact(pts)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
