// Package envelope provides the floating-point bounding box used on the
// "real world" side of a grid geometry: per-axis lower/upper bounds with an
// optional coordinate reference system attached.
package envelope

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"

	"github.com/cartoset/gridref/internal/crs"
)

// ErrDisjoint is returned by Intersect when the operands share no volume
// along some axis.
var ErrDisjoint = errors.New("envelope: disjoint")

// Envelope is an immutable axis-aligned box in continuous coordinate space.
// Bounds may be NaN to express "undefined along this axis".
type Envelope struct {
	lower, upper []float64
	crs          crs.CRS
}

// New builds an envelope from lower/upper bounds. The system may be nil.
// A finite lower bound greater than its upper bound is an error; NaN
// bounds are accepted.
func New(lower, upper []float64, system crs.CRS) (*Envelope, error) {
	if len(lower) != len(upper) {
		return nil, fmt.Errorf("envelope: %d lower bounds vs %d upper bounds", len(lower), len(upper))
	}
	if len(lower) == 0 {
		return nil, errors.New("envelope: zero dimensions")
	}
	if system != nil && system.Dimension() != len(lower) {
		return nil, fmt.Errorf("envelope: %d bounds for %d-dimensional CRS", len(lower), system.Dimension())
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return nil, fmt.Errorf("envelope: axis %d has lower %g > upper %g", i, lower[i], upper[i])
		}
	}
	e := &Envelope{
		lower: append([]float64(nil), lower...),
		upper: append([]float64(nil), upper...),
		crs:   system,
	}
	return e, nil
}

// Dimension returns the number of axes.
func (e *Envelope) Dimension() int { return len(e.lower) }

// CRS returns the attached reference system, possibly nil.
func (e *Envelope) CRS() crs.CRS { return e.crs }

// Lower returns the inclusive lower bound of an axis.
func (e *Envelope) Lower(i int) float64 { return e.lower[i] }

// Upper returns the exclusive upper bound of an axis.
func (e *Envelope) Upper(i int) float64 { return e.upper[i] }

// Span returns upper−lower for an axis.
func (e *Envelope) Span(i int) float64 { return e.upper[i] - e.lower[i] }

// Median returns the midpoint of an axis.
func (e *Envelope) Median(i int) float64 { return (e.lower[i] + e.upper[i]) / 2 }

// Bounds returns copies of the lower and upper bound slices.
func (e *Envelope) Bounds() (lower, upper []float64) {
	return append([]float64(nil), e.lower...), append([]float64(nil), e.upper...)
}

// WithCRS returns a copy of the envelope carrying the given system.
func (e *Envelope) WithCRS(system crs.CRS) (*Envelope, error) {
	return New(e.lower, e.upper, system)
}

// IsAllNaN reports whether every bound is NaN.
func (e *Envelope) IsAllNaN() bool {
	for i := range e.lower {
		if !math.IsNaN(e.lower[i]) || !math.IsNaN(e.upper[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether the point lies inside the envelope, inclusive
// of bounds. NaN envelope bounds accept any ordinate on that axis.
func (e *Envelope) Contains(point []float64) bool {
	if len(point) != len(e.lower) {
		return false
	}
	for i, v := range point {
		if math.IsNaN(e.lower[i]) || math.IsNaN(e.upper[i]) {
			continue
		}
		if v < e.lower[i] || v > e.upper[i] {
			return false
		}
	}
	return true
}

// Intersect returns the shared volume of the two envelopes. The result
// keeps e's CRS. Axes where either operand is NaN inherit the other
// operand's bounds. Fails with ErrDisjoint when some axis has no overlap.
func (e *Envelope) Intersect(o *Envelope) (*Envelope, error) {
	if o.Dimension() != e.Dimension() {
		return nil, fmt.Errorf("envelope: cannot intersect %d-D with %d-D", e.Dimension(), o.Dimension())
	}
	lower := make([]float64, len(e.lower))
	upper := make([]float64, len(e.upper))
	for i := range lower {
		lo := math.Max(nanAs(e.lower[i], math.Inf(-1)), nanAs(o.lower[i], math.Inf(-1)))
		hi := math.Min(nanAs(e.upper[i], math.Inf(1)), nanAs(o.upper[i], math.Inf(1)))
		if math.IsInf(lo, -1) {
			lo = math.NaN()
		}
		if math.IsInf(hi, 1) {
			hi = math.NaN()
		}
		if lo > hi {
			return nil, fmt.Errorf("%w: axis %d has [%g, %g] vs [%g, %g]",
				ErrDisjoint, i, e.lower[i], e.upper[i], o.lower[i], o.upper[i])
		}
		lower[i], upper[i] = lo, hi
	}
	return &Envelope{lower: lower, upper: upper, crs: e.crs}, nil
}

func nanAs(v, instead float64) float64 {
	if math.IsNaN(v) {
		return instead
	}
	return v
}

// GeographicBound projects the two leading axes as an orb.Bound. The
// second result is false when the envelope has fewer than two axes or its
// CRS is known to be non-geographic.
func (e *Envelope) GeographicBound() (orb.Bound, bool) {
	if len(e.lower) < 2 {
		return orb.Bound{}, false
	}
	if e.crs != nil && !e.crs.IsGeographic() {
		return orb.Bound{}, false
	}
	return orb.Bound{
		Min: orb.Point{e.lower[0], e.lower[1]},
		Max: orb.Point{e.upper[0], e.upper[1]},
	}, true
}

func (e *Envelope) String() string {
	var b strings.Builder
	b.WriteString("Envelope[")
	for i := range e.lower {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g … %g", e.lower[i], e.upper[i])
	}
	b.WriteString("]")
	return b.String()
}
