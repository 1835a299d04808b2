package stress

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingular is returned when a stress is requested exactly at the point of
// application of a concentrated load, where the elastic solution is unbounded.
var ErrSingular = errors.New("singular point")

// SingularityError carries the coordinates of a singular evaluation.
type SingularityError struct {
	X, Y, Z float64
}

func (e *SingularityError) Error() string {
	return fmt.Sprintf("stress at (%g, %g, %g): %v", e.X, e.Y, e.Z, ErrSingular)
}

func (e *SingularityError) Unwrap() error { return ErrSingular }

// PointLoadStress returns the Boussinesq vertical stress increment at (x, y, z)
// caused by a vertical point load Q applied at the origin:
//
//	σz = 3·Q·z³ / (2π·R⁵),  R = √(x² + y² + z²)
//
// At R = 0 it returns a *SingularityError instead of an infinite value.
func PointLoadStress(load, x, y, z float64) (float64, error) {
	r2 := x*x + y*y + z*z
	if r2 == 0 {
		return 0, &SingularityError{X: x, Y: y, Z: z}
	}
	return load * pointInfluence(r2, z), nil
}

// pointInfluence is the kernel 3z³/(2πR⁵) given R². Callers guarantee R > 0.
func pointInfluence(r2, z float64) float64 {
	return 3 * z * z * z / (2 * math.Pi * r2 * r2 * math.Sqrt(r2))
}
