// Package grid implements the grid-referencing core: exact N-dimensional
// integer extents, the geometry aggregate relating an extent to "real
// world" coordinates through a possibly non-linear transform, and the
// derivation algebra that produces new, consistent coordinate spaces from
// existing ones.
package grid

import (
	"fmt"
	"math"
	"strings"

	"github.com/cartoset/gridref/internal/envelope"
)

// Extent is an immutable N-dimensional closed integer interval: an
// inclusive [low, high] range per axis, plus optional axis-kind tags.
//
// Sizes are unsigned: high−low+1 can exceed the signed 64-bit range, up to
// a full 2⁶⁴ span (reported as size 0 by unsignedSize and formatted
// unsigned by String).
type Extent struct {
	low, high []int64
	kinds     []AxisKind // nil, or interned and len == Dimension()
}

// NewExtent builds an extent from inclusive per-axis bounds. kinds may be
// nil. Fails with a BoundsError when low > high on some axis.
func NewExtent(low, high []int64, kinds []AxisKind) (*Extent, error) {
	if len(low) != len(high) {
		return nil, &DimensionsError{Reason: "low/high length mismatch", Got: len(high), Want: len(low)}
	}
	if len(low) == 0 {
		return nil, &DimensionsError{Reason: "extent needs at least one axis", Got: 0}
	}
	for i := range low {
		if low[i] > high[i] {
			return nil, &BoundsError{Axis: i, Low: low[i], High: high[i]}
		}
	}
	if err := validateKinds(kinds, len(low)); err != nil {
		return nil, err
	}
	return &Extent{
		low:   append([]int64(nil), low...),
		high:  append([]int64(nil), high...),
		kinds: internKinds(kinds),
	}, nil
}

// NewExtentSize builds a zero-based extent with the given per-axis sizes.
func NewExtentSize(sizes ...int64) (*Extent, error) {
	low := make([]int64, len(sizes))
	high := make([]int64, len(sizes))
	for i, s := range sizes {
		if s <= 0 {
			return nil, &BoundsError{Axis: i, Low: 0, High: s - 1}
		}
		high[i] = s - 1
	}
	return NewExtent(low, high, nil)
}

// MustExtent is NewExtent for statically valid bounds.
func MustExtent(low, high []int64, kinds []AxisKind) *Extent {
	e, err := NewExtent(low, high, kinds)
	if err != nil {
		panic(err)
	}
	return e
}

// Dimension returns the number of axes.
func (e *Extent) Dimension() int { return len(e.low) }

// Low returns the inclusive lower bound of an axis.
func (e *Extent) Low(i int) int64 { return e.low[i] }

// High returns the inclusive upper bound of an axis.
func (e *Extent) High(i int) int64 { return e.high[i] }

// Size returns high−low+1 for an axis as an unsigned quantity. A full
// 2⁶⁴ span is reported as 0.
func (e *Extent) Size(i int) uint64 { return unsignedSize(e.low[i], e.high[i]) }

// Kind returns the axis-kind tag of an axis; ok is false when the extent
// carries no tags.
func (e *Extent) Kind(i int) (kind AxisKind, ok bool) {
	if e.kinds == nil {
		return KindUnknown, false
	}
	return e.kinds[i], true
}

// Kinds returns the shared axis-kind list, or nil. Callers must not
// modify it.
func (e *Extent) Kinds() []AxisKind { return e.kinds }

// kindAt is Kind without the presence flag, for error reporting.
func (e *Extent) kindAt(i int) AxisKind {
	if e.kinds == nil {
		return KindUnknown
	}
	return e.kinds[i]
}

// Equal reports whether the two extents have identical bounds and kinds.
func (e *Extent) Equal(o *Extent) bool {
	if o == nil || len(e.low) != len(o.low) {
		return false
	}
	for i := range e.low {
		if e.low[i] != o.low[i] || e.high[i] != o.high[i] {
			return false
		}
	}
	return kindsEqual(e.kinds, o.kinds)
}

// Contains reports whether every rounded ordinate of the point lies within
// the extent. NaN ordinates are treated as "any".
func (e *Extent) Contains(point []float64) bool {
	if len(point) != len(e.low) {
		return false
	}
	for i, v := range point {
		if math.IsNaN(v) {
			continue
		}
		r := math.Round(v)
		if r < float64(e.low[i]) || r > float64(e.high[i]) {
			return false
		}
	}
	return true
}

// Envelope converts the extent to a floating-point envelope where each
// axis spans [low, high+1): the +1 makes the upper bound exclusive,
// matching continuous-space conventions. When high is the maximum int64
// the +1 saturates rather than overflowing.
func (e *Extent) Envelope() *envelope.Envelope {
	lower := make([]float64, len(e.low))
	upper := make([]float64, len(e.high))
	for i := range e.low {
		lower[i] = float64(e.low[i])
		if e.high[i] == math.MaxInt64 {
			upper[i] = float64(e.high[i])
		} else {
			upper[i] = float64(e.high[i]) + 1
		}
	}
	env, err := envelope.New(lower, upper, nil)
	if err != nil {
		// Unreachable: extent bounds are validated at construction.
		panic(err)
	}
	return env
}

// PointOfInterest returns the representative grid coordinate used for
// resolution and derivative estimation: per axis, the average of low and
// high, shifted by half a cell under the corner convention.
func (e *Extent) PointOfInterest(anchor Anchor) []float64 {
	poi := make([]float64, len(e.low))
	for i := range e.low {
		lo := float64(e.low[i])
		if anchor == AnchorCorner {
			lo++
		}
		poi[i] = lo/2 + float64(e.high[i])/2
	}
	return poi
}

func (e *Extent) String() string {
	var b strings.Builder
	b.WriteString("Extent{")
	for i := range e.low {
		if i > 0 {
			b.WriteString(", ")
		}
		if k := e.kindAt(i); k != KindUnknown {
			fmt.Fprintf(&b, "%s: ", k)
		}
		fmt.Fprintf(&b, "[%d … %d]", e.low[i], e.high[i])
	}
	b.WriteString("} size ")
	for i := range e.low {
		if i > 0 {
			b.WriteString("×")
		}
		if s := e.Size(i); s == 0 {
			b.WriteString("2⁶⁴")
		} else {
			fmt.Fprintf(&b, "%d", s)
		}
	}
	return b.String()
}
