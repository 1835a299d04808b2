// Package units converts SI results into the unit system used for display.
//
// Computation is always carried out in SI (kN, m, kPa). Conversion happens
// only at the formatting boundary.
package units

import (
	"fmt"
	"strings"
)

// System is a unit system for reports and exports.
type System string

const (
	SI       System = "si"       // kN, m, kPa
	MKS      System = "mks"      // tf, m, kgf/cm²
	Imperial System = "imperial" // kip, ft, psi
)

// Quantity is a physical dimension with a per-system conversion factor.
type Quantity int

const (
	Force Quantity = iota
	Length
	Pressure
	UnitWeight
	Area
)

type unitDef struct {
	factor float64 // multiply an SI value by factor
	symbol string
}

var table = map[System]map[Quantity]unitDef{
	SI: {
		Force:      {1, "kN"},
		Length:     {1, "m"},
		Pressure:   {1, "kPa"},
		UnitWeight: {1, "kN/m³"},
		Area:       {1, "m²"},
	},
	MKS: {
		Force:      {0.101971621, "tf"},
		Length:     {1, "m"},
		Pressure:   {0.0101972, "kgf/cm²"},
		UnitWeight: {0.101971621, "tf/m³"},
		Area:       {1, "m²"},
	},
	Imperial: {
		Force:      {0.224809, "kip"},
		Length:     {3.28084, "ft"},
		Pressure:   {0.145038, "psi"},
		UnitWeight: {6.36588, "pcf"},
		Area:       {3.28084 * 3.28084, "ft²"},
	},
}

// Systems lists the supported systems.
func Systems() []System { return []System{SI, MKS, Imperial} }

// Parse accepts a system name case-insensitively. "ingles", "english" and
// "us" are accepted as Imperial; empty means SI.
func Parse(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "si":
		return SI, nil
	case "mks":
		return MKS, nil
	case "imperial", "ingles", "english", "us":
		return Imperial, nil
	}
	return "", fmt.Errorf("unknown unit system %q (want si, mks or imperial)", s)
}

// FromSI converts an SI value of quantity q into system s.
func (s System) FromSI(q Quantity, v float64) float64 {
	return v * s.def(q).factor
}

// ToSI converts a value of quantity q in system s into SI.
func (s System) ToSI(q Quantity, v float64) float64 {
	return v / s.def(q).factor
}

// Symbol returns the unit symbol of quantity q in system s.
func (s System) Symbol(q Quantity) string {
	return s.def(q).symbol
}

// Format converts an SI value and renders it with prec decimals and its
// symbol.
func (s System) Format(q Quantity, v float64, prec int) string {
	return fmt.Sprintf("%.*f %s", prec, s.FromSI(q, v), s.Symbol(q))
}

func (s System) def(q Quantity) unitDef {
	if m, ok := table[s]; ok {
		if d, ok := m[q]; ok {
			return d
		}
	}
	return table[SI][q]
}

// Convert moves v of quantity q from one system to another, through SI.
func Convert(v float64, q Quantity, from, to System) float64 {
	if from == to {
		return v
	}
	return to.FromSI(q, from.ToSI(q, v))
}
