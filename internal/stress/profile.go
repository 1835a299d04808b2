package stress

import "gonum.org/v1/gonum/floats"

// ProfilePoint is a named plan position for a depth profile.
type ProfilePoint struct {
	Name string
	X, Y float64
}

// CharacteristicPoints returns the plan positions usually inspected under a
// footing: its centre, the middle of each edge and a point one width away
// from the centre along x.
func CharacteristicPoints(b, l float64) []ProfilePoint {
	return []ProfilePoint{
		{Name: "Center", X: 0, Y: 0},
		{Name: "Edge X", X: b / 2, Y: 0},
		{Name: "Edge Y", X: 0, Y: l / 2},
		{Name: "Outside X", X: b, Y: 0},
	}
}

// Depths returns n depths evenly spaced from GridEpsilon to zMax.
func Depths(zMax float64, n int) []float64 {
	if n < 2 {
		return []float64{zMax}
	}
	return floats.Span(make([]float64, n), GridEpsilon, zMax)
}

// Profile evaluates the stress below (x, y) at each depth.
func (r Rectangle) Profile(x, y float64, depths []float64, method Method) []Result {
	out := make([]Result, len(depths))
	for i, z := range depths {
		out[i] = r.StressAt(x, y, z, method)
	}
	return out
}
