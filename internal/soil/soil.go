// Package soil holds the validated input value objects of a stress-bulb
// analysis: the soil half-space and the rectangular foundation loading it.
package soil

import (
	"fmt"
	"math"
)

// DefaultPoissonRatio is used when a soil is built without an explicit ν.
const DefaultPoissonRatio = 0.3

// Soil represents a homogeneous, isotropic elastic half-space.
//
// Only the Poisson ratio and the name reach the stress-bulb engine, and even
// then only as metadata: the Boussinesq vertical stress does not depend on ν.
// The strength and stiffness parameters are carried for the bearing capacity
// and settlement tools that consume the same soil description.
type Soil struct {
	name           string
	unitWeight     float64 // γ (kN/m³)
	poissonRatio   float64 // ν
	frictionAngle  float64 // φ (degrees), 0 if unknown
	cohesion       float64 // c (kPa), 0 if unknown
	elasticModulus float64 // E (MPa), 0 if unknown
}

// SoilOption sets an optional soil parameter.
type SoilOption func(*Soil)

// WithPoissonRatio overrides the default Poisson ratio.
func WithPoissonRatio(nu float64) SoilOption {
	return func(s *Soil) { s.poissonRatio = nu }
}

// WithFrictionAngle sets the friction angle in degrees.
func WithFrictionAngle(phi float64) SoilOption {
	return func(s *Soil) { s.frictionAngle = phi }
}

// WithCohesion sets the cohesion in kPa.
func WithCohesion(c float64) SoilOption {
	return func(s *Soil) { s.cohesion = c }
}

// WithElasticModulus sets the Young's modulus in MPa.
func WithElasticModulus(e float64) SoilOption {
	return func(s *Soil) { s.elasticModulus = e }
}

// NewSoil creates a validated soil. The unit weight must be positive and
// 0 ≤ ν < 0.5.
func NewSoil(name string, unitWeight float64, opts ...SoilOption) (Soil, error) {
	s := Soil{
		name:         name,
		unitWeight:   unitWeight,
		poissonRatio: DefaultPoissonRatio,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if !(s.unitWeight > 0) || math.IsInf(s.unitWeight, 0) {
		return Soil{}, newValidationError("unit_weight", "unit weight must be positive, got %g", s.unitWeight)
	}
	if !(s.poissonRatio >= 0 && s.poissonRatio < 0.5) {
		return Soil{}, newValidationError("poisson_ratio", "Poisson ratio must be in [0, 0.5), got %g", s.poissonRatio)
	}
	if s.frictionAngle < 0 || s.frictionAngle >= 90 {
		return Soil{}, newValidationError("friction_angle", "friction angle must be in [0, 90) degrees, got %g", s.frictionAngle)
	}
	if s.cohesion < 0 {
		return Soil{}, newValidationError("cohesion", "cohesion must not be negative, got %g", s.cohesion)
	}
	if s.elasticModulus < 0 {
		return Soil{}, newValidationError("elastic_modulus", "elastic modulus must not be negative, got %g", s.elasticModulus)
	}
	return s, nil
}

func (s Soil) Name() string { return s.name }
func (s Soil) UnitWeight() float64 { return s.unitWeight }
func (s Soil) PoissonRatio() float64 { return s.poissonRatio }
func (s Soil) FrictionAngle() float64 { return s.frictionAngle }
func (s Soil) Cohesion() float64 { return s.cohesion }
func (s Soil) ElasticModulus() float64 { return s.elasticModulus }

func (s Soil) String() string {
	name := s.name
	if name == "" {
		name = "soil"
	}
	return fmt.Sprintf("%s (γ=%.2f kN/m³, ν=%.2f)", name, s.unitWeight, s.poissonRatio)
}

// Foundation is a rectangular footprint B×L centered at the origin on the
// ground surface, loaded with a uniform pressure q.
type Foundation struct {
	width    float64 // B (m), along x
	length   float64 // L (m), along y
	pressure float64 // q (kPa)
}

// NewFoundation creates a validated foundation: B > 0, L > 0, q ≥ 0.
func NewFoundation(width, length, pressure float64) (Foundation, error) {
	if !(width > 0) || math.IsInf(width, 0) {
		return Foundation{}, newValidationError("width", "foundation width must be positive, got %g", width)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return Foundation{}, newValidationError("length", "foundation length must be positive, got %g", length)
	}
	if !(pressure >= 0) || math.IsInf(pressure, 0) {
		return Foundation{}, newValidationError("pressure", "foundation pressure must not be negative, got %g", pressure)
	}
	return Foundation{width: width, length: length, pressure: pressure}, nil
}

// MustFoundation is like NewFoundation but panics on invalid input.
// Intended for tests and literal examples.
func MustFoundation(width, length, pressure float64) Foundation {
	f, err := NewFoundation(width, length, pressure)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Foundation) Width() float64 { return f.width }
func (f Foundation) Length() float64 { return f.length }
func (f Foundation) Pressure() float64 { return f.pressure }

// Area returns B·L (m²).
func (f Foundation) Area() float64 { return f.width * f.length }

// TotalLoad returns q·B·L (kN).
func (f Foundation) TotalLoad() float64 { return f.pressure * f.Area() }

// MaxDimension returns max(B, L).
func (f Foundation) MaxDimension() float64 { return math.Max(f.width, f.length) }

// Contains reports whether (x, y) lies within the closed footprint.
func (f Foundation) Contains(x, y float64) bool {
	return math.Abs(x) <= f.width/2 && math.Abs(y) <= f.length/2
}
