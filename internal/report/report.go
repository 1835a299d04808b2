// Package report turns stress-bulb results into technical summaries.
package report

import (
	"fmt"
	"time"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
)

// Thresholds are the stress ratios reported as influence depths.
var Thresholds = []float64{0.20, 0.10, 0.05}

// comparisonDepths are multiples of B at which Boussinesq and 2:1 are compared.
var comparisonDepths = []float64{0.5, 1, 1.5, 2, 3, 4}

// InfluenceDepth is the depth where the centerline stress ratio falls below
// Threshold.
type InfluenceDepth struct {
	Threshold float64
	Depth     float64
}

// PointStress is the stress under the footing centre at one depth.
type PointStress struct {
	Depth    float64
	Stress   float64 // Boussinesq
	TwoToOne float64 // 2:1 approximation
}

// Percent returns the Boussinesq stress as a percentage of q.
func (p PointStress) Percent(q float64) float64 {
	if q == 0 {
		return 0
	}
	return 100 * p.Stress / q
}

// Difference is (2:1 − Boussinesq) relative to Boussinesq, in percent.
func (p PointStress) Difference() float64 {
	if p.Stress == 0 {
		return 0
	}
	return 100 * (p.TwoToOne - p.Stress) / p.Stress
}

// FieldSummary describes the computed grid a report was built from.
type FieldSummary struct {
	ID         string
	Resolution int
	Points     int
	DepthRatio float64
	MaxStress  float64
	Duration   time.Duration
	Fallbacks  int
	Smoothed   bool
}

// Report is the data behind a technical stress-bulb report.
type Report struct {
	Foundation  soil.Foundation
	Soil        *bulb.SoilSummary
	Method      stress.Method
	Influence   []InfluenceDepth
	AtB         PointStress
	At2B        PointStress
	Comparison  []PointStress
	Field       *FieldSummary
	GeneratedAt time.Time
}

// Depth returns the influence depth for threshold, or 0 if it was not
// computed.
func (r Report) Depth(threshold float64) float64 {
	for _, d := range r.Influence {
		if d.Threshold == threshold {
			return d.Depth
		}
	}
	return 0
}

// Option adds optional content to a report.
type Option func(*Report)

// WithSoil records the soil the analysis was run for.
func WithSoil(s soil.Soil) Option {
	return func(r *Report) {
		r.Soil = &bulb.SoilSummary{Name: s.Name(), UnitWeight: s.UnitWeight(), PoissonRatio: s.PoissonRatio()}
	}
}

// WithField summarises a computed field in the report.
func WithField(f *bulb.StressField) Option {
	return func(r *Report) {
		m := f.Metadata()
		r.Field = &FieldSummary{
			ID:         f.ID().String(),
			Resolution: m.Spec.Resolution,
			Points:     f.Len(),
			DepthRatio: m.Spec.DepthRatio,
			MaxStress:  f.Max(),
			Duration:   m.Duration,
			Fallbacks:  m.Fallbacks,
			Smoothed:   m.Smoothed,
		}
		r.Method = m.Spec.Method
	}
}

// WithMethod selects the integrator for the point stresses.
func WithMethod(m stress.Method) Option {
	return func(r *Report) { r.Method = m }
}

// At fixes the generation timestamp.
func At(t time.Time) Option {
	return func(r *Report) { r.GeneratedAt = t }
}

// Build computes the figures of a technical report for foundation f.
func Build(f soil.Foundation, opts ...Option) (Report, error) {
	r := Report{Foundation: f, Method: stress.Newmark, GeneratedAt: time.Now()}
	for _, opt := range opts {
		opt(&r)
	}

	b, l, q := f.Width(), f.Length(), f.Pressure()
	for _, t := range Thresholds {
		z, err := stress.InfluenceDepth(b, l, t)
		if err != nil {
			return Report{}, fmt.Errorf("report: %w", err)
		}
		r.Influence = append(r.Influence, InfluenceDepth{Threshold: t, Depth: z})
	}

	rect := stress.Rectangle{Q: q, B: b, L: l}
	at := func(z float64) PointStress {
		return PointStress{
			Depth:    z,
			Stress:   rect.StressAt(0, 0, z, r.Method).Value,
			TwoToOne: stress.TwoToOne(q, b, l, 0, 0, z),
		}
	}
	r.AtB = at(b)
	r.At2B = at(2 * b)
	for _, m := range comparisonDepths {
		r.Comparison = append(r.Comparison, at(m*b))
	}
	return r, nil
}

// Recommendation is one line of design guidance derived from the influence
// depths.
type Recommendation struct {
	Topic string
	Depth float64
}

// Recommendations returns the depths to use for settlement analysis,
// foundation interaction and site investigation.
func (r Report) Recommendations() []Recommendation {
	return []Recommendation{
		{Topic: "Settlement analysis: consider soil down to", Depth: r.Depth(0.10)},
		{Topic: "Interaction between foundations: influence zone", Depth: r.Depth(0.20)},
		{Topic: "Site investigation: explore down to", Depth: r.Depth(0.05)},
	}
}

// Limitations lists the assumptions of the analysis.
var Limitations = []string{
	"Boussinesq solution for a uniformly loaded rectangle on the surface",
	"Homogeneous, isotropic, linear elastic half-space",
	"Layering and non-linear soil behaviour are not considered",
	"Stresses are increments due to the foundation load only",
}
