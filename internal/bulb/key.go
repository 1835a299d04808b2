package bulb

import (
	"strconv"
	"strings"

	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
)

// Key identifies a cached field.
//
// The Poisson ratio is not part of the key: the Boussinesq vertical stress
// does not depend on it, so soils that differ only in ν share a field. The
// depth ratio is, since it changes the sampled volume, and so is the
// smoothing, since the persistent tier outlives a configuration change.
type Key struct {
	B, L, Q    float64
	DepthRatio float64
	Resolution int
	Method     stress.Method
	Smoothing  stress.Smoothing
	// Orders is set only when the quadrature orders were overridden.
	Orders []int
}

// KeyFor derives the cache key of a computation smoothed with sm.
func KeyFor(f soil.Foundation, spec stress.GridSpec, sm stress.Smoothing) Key {
	return Key{
		B:          f.Width(),
		L:          f.Length(),
		Q:          f.Pressure(),
		DepthRatio: spec.DepthRatio,
		Resolution: spec.Resolution,
		Method:     spec.Method,
		Smoothing:  sm,
	}
}

// String renders the key canonically. Floats use the shortest
// representation that round-trips, so equal inputs give equal strings.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString("v2|")
	for _, v := range []float64{k.B, k.L, k.Q, k.DepthRatio} {
		b.WriteString(formatFloat(v))
		b.WriteByte('|')
	}
	b.WriteString(strconv.Itoa(k.Resolution))
	b.WriteByte('|')
	b.WriteString(string(k.Method))
	b.WriteString("|s")
	b.WriteString(formatFloat(k.Smoothing.Sigma))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(k.Smoothing.MinResolution))
	if k.Orders != nil {
		b.WriteString("|o")
		for i, n := range k.Orders {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
