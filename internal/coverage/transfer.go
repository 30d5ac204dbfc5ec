package coverage

import "math"

// Transfer1D is the one-dimensional per-band transfer function relating
// packed sample values to converted (physically meaningful) values.
// Implementations must be pure and immutable.
type Transfer1D interface {
	// Apply maps a packed value to its converted value.
	Apply(v float64) float64

	// Inverse returns the converted→packed transfer.
	Inverse() Transfer1D

	// IsIdentity reports whether the transfer changes nothing.
	IsIdentity() bool
}

// IdentityTransfer is the no-op transfer used by bands whose packed and
// converted representations coincide.
type IdentityTransfer struct{}

func (IdentityTransfer) Apply(v float64) float64 { return v }
func (IdentityTransfer) Inverse() Transfer1D     { return IdentityTransfer{} }
func (IdentityTransfer) IsIdentity() bool        { return true }

// LinearTransfer is the affine transfer converted = packed·Scale + Offset,
// the common case for quantized physical quantities.
type LinearTransfer struct {
	Scale  float64
	Offset float64
}

func (t LinearTransfer) Apply(v float64) float64 { return v*t.Scale + t.Offset }

func (t LinearTransfer) Inverse() Transfer1D {
	return LinearTransfer{Scale: 1 / t.Scale, Offset: -t.Offset / t.Scale}
}

func (t LinearTransfer) IsIdentity() bool { return t.Scale == 1 && t.Offset == 0 }

// bandConverter applies one band's full packed→converted mapping,
// including no-data sentinel handling: sentinels become NaN in the
// converted view, and NaN maps back to the first sentinel.
type bandConverter struct {
	transfer Transfer1D
	noData   []float64
}

func (c bandConverter) toConverted(v float64) float64 {
	for _, nd := range c.noData {
		if v == nd {
			return math.NaN()
		}
	}
	return c.transfer.Apply(v)
}

func (c bandConverter) toPacked(v float64) float64 {
	if math.IsNaN(v) {
		if len(c.noData) > 0 {
			return c.noData[0]
		}
		return v
	}
	return c.transfer.Inverse().Apply(v)
}
