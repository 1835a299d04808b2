package bulb

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/google/uuid"
)

// fieldRecord is the persisted form of a StressField.
type fieldRecord struct {
	ID         uuid.UUID
	X, Y, Z    []float64
	Stresses   []float64
	B, L, Q    float64
	Soil       SoilSummary
	Spec       stress.GridSpec
	ComputedAt time.Time
	Duration   time.Duration
	Fallbacks  int
	Smoothed   bool
}

// gobCodec stores fields in the on-disk cache tier.
type gobCodec struct{}

func (gobCodec) Encode(f *StressField) ([]byte, error) {
	m := f.meta
	rec := fieldRecord{
		ID:         f.id,
		X:          f.grid.X,
		Y:          f.grid.Y,
		Z:          f.grid.Z,
		Stresses:   f.stresses,
		B:          m.Foundation.Width(),
		L:          m.Foundation.Length(),
		Q:          m.Foundation.Pressure(),
		Soil:       m.Soil,
		Spec:       m.Spec,
		ComputedAt: m.ComputedAt,
		Duration:   m.Duration,
		Fallbacks:  m.Fallbacks,
		Smoothed:   m.Smoothed,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode field: %w", err)
	}
	return buf.Bytes(), nil
}

func (gobCodec) Decode(data []byte) (*StressField, error) {
	var rec fieldRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode field: %w", err)
	}
	fd, err := soil.NewFoundation(rec.B, rec.L, rec.Q)
	if err != nil {
		return nil, fmt.Errorf("decode field: %w", err)
	}
	g := stress.Grid{X: rec.X, Y: rec.Y, Z: rec.Z}
	if g.Len() != len(rec.Stresses) {
		return nil, fmt.Errorf("decode field: %d stresses for a grid of %d points", len(rec.Stresses), g.Len())
	}
	return &StressField{
		id:       rec.ID,
		grid:     g,
		stresses: rec.Stresses,
		meta: Metadata{
			Foundation: fd,
			Soil:       rec.Soil,
			Spec:       rec.Spec,
			ComputedAt: rec.ComputedAt,
			Duration:   rec.Duration,
			Fallbacks:  rec.Fallbacks,
			Smoothed:   rec.Smoothed,
		},
	}, nil
}
