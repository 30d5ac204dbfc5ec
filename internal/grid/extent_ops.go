package grid

import (
	"fmt"
	"math"
)

// Derivation operations. All are pure: they return a new extent, or the
// receiver itself when the result would be identical. All arithmetic is
// overflow-checked and fails with an OverflowError instead of wrapping.

func (e *Extent) checkDim(n int, what string) error {
	if n != len(e.low) {
		return &DimensionsError{Reason: what, Got: n, Want: len(e.low)}
	}
	return nil
}

// Translate shifts every axis by its delta.
func (e *Extent) Translate(deltas ...int64) (*Extent, error) {
	if err := e.checkDim(len(deltas), "translate deltas"); err != nil {
		return nil, err
	}
	changed := false
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.high))
	for i, d := range deltas {
		var err error
		if low[i], err = addExact(e.low[i], d, "translate", i); err != nil {
			return nil, err
		}
		if high[i], err = addExact(e.high[i], d, "translate", i); err != nil {
			return nil, err
		}
		changed = changed || d != 0
	}
	if !changed {
		return e, nil
	}
	return &Extent{low: low, high: high, kinds: e.kinds}, nil
}

// Expand grows (or, for negative margins, shrinks) every axis
// symmetrically by its margin.
func (e *Extent) Expand(margins ...int64) (*Extent, error) {
	if err := e.checkDim(len(margins), "expand margins"); err != nil {
		return nil, err
	}
	changed := false
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.high))
	for i, m := range margins {
		var err error
		if low[i], err = subExact(e.low[i], m, "expand", i); err != nil {
			return nil, err
		}
		if high[i], err = addExact(e.high[i], m, "expand", i); err != nil {
			return nil, err
		}
		if low[i] > high[i] {
			return nil, &BoundsError{Axis: i, Low: low[i], High: high[i]}
		}
		changed = changed || m != 0
	}
	if !changed {
		return e, nil
	}
	return &Extent{low: low, high: high, kinds: e.kinds}, nil
}

// Resize rescales each axis to the requested size. The scaled low and high
// are rounded toward zero, then whichever endpoint is farther from zero
// absorbs the residual so the final size matches the request exactly.
// A size of 0 keeps the axis unchanged.
func (e *Extent) Resize(sizes ...int64) (*Extent, error) {
	if err := e.checkDim(len(sizes), "resize sizes"); err != nil {
		return nil, err
	}
	changed := false
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.high))
	copy(low, e.low)
	copy(high, e.high)
	for i, size := range sizes {
		if size == 0 {
			continue
		}
		if size < 0 {
			return nil, &BoundsError{Axis: i, Low: 0, High: size - 1}
		}
		oldSize := e.Size(i)
		if oldSize == uint64(size) {
			continue
		}
		ratio := float64(size) / float64(oldSize)
		lo, err := truncToZero(float64(e.low[i])*ratio, "resize", i)
		if err != nil {
			return nil, err
		}
		hi, err := truncToZero(float64(e.high[i])*ratio, "resize", i)
		if err != nil {
			return nil, err
		}
		residual := size - (hi - lo + 1)
		if residual != 0 {
			if absInt64(lo) > absInt64(hi) {
				if lo, err = subExact(lo, residual, "resize", i); err != nil {
					return nil, err
				}
			} else {
				if hi, err = addExact(hi, residual, "resize", i); err != nil {
					return nil, err
				}
			}
		}
		if lo > hi {
			return nil, &BoundsError{Axis: i, Low: lo, High: hi}
		}
		low[i], high[i] = lo, hi
		changed = true
	}
	if !changed {
		return e, nil
	}
	return &Extent{low: low, high: high, kinds: e.kinds}, nil
}

// Subsample keeps every period-th cell along each axis: low and size are
// divided by the period, the size rounding down (never below one cell).
// Size division uses the unsigned width since a size may represent 2⁶⁴.
func (e *Extent) Subsample(periods ...int64) (*Extent, error) {
	if err := e.checkDim(len(periods), "subsample periods"); err != nil {
		return nil, err
	}
	changed := false
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.high))
	for i, p := range periods {
		if p <= 0 {
			return nil, fmt.Errorf("grid: subsample period %d on axis %d is not positive", p, i)
		}
		if p == 1 {
			low[i], high[i] = e.low[i], e.high[i]
			continue
		}
		size := e.Size(i) / uint64(p) // unsigned: full-span sizes divide correctly
		if size == 0 && e.Size(i) != 0 {
			size = 1
		}
		if size > math.MaxInt64 {
			return nil, &OverflowError{Op: "subsample", Axis: i}
		}
		lo := floorDiv(e.low[i], p)
		hi, err := addExact(lo, int64(size)-1, "subsample", i)
		if err != nil {
			return nil, err
		}
		low[i], high[i] = lo, hi
		changed = true
	}
	if !changed {
		return e, nil
	}
	return &Extent{low: low, high: high, kinds: e.kinds}, nil
}

// SelectDims keeps only the listed axes. Indices must be strictly
// ascending: this operation reduces dimensionality, it never reorders.
func (e *Extent) SelectDims(indices []int) (*Extent, error) {
	if len(indices) == 0 {
		return nil, &DimensionsError{Reason: "extent needs at least one axis", Got: 0}
	}
	prev := -1
	for _, idx := range indices {
		if idx <= prev || idx >= len(e.low) {
			return nil, fmt.Errorf("grid: dimension indices must be strictly ascending and within [0, %d), got %v",
				len(e.low), indices)
		}
		prev = idx
	}
	if len(indices) == len(e.low) {
		return e, nil
	}
	low := make([]int64, len(indices))
	high := make([]int64, len(indices))
	var kinds []AxisKind
	if e.kinds != nil {
		kinds = make([]AxisKind, len(indices))
	}
	for i, idx := range indices {
		low[i], high[i] = e.low[idx], e.high[idx]
		if kinds != nil {
			kinds[i] = e.kinds[idx]
		}
	}
	return &Extent{low: low, high: high, kinds: internKinds(kinds)}, nil
}

// InsertDim adds one axis at the given position.
func (e *Extent) InsertDim(pos int, kind AxisKind, low, high int64) (*Extent, error) {
	if pos < 0 || pos > len(e.low) {
		return nil, fmt.Errorf("grid: insert position %d outside [0, %d]", pos, len(e.low))
	}
	if low > high {
		return nil, &BoundsError{Axis: pos, Low: low, High: high}
	}
	newLow := make([]int64, 0, len(e.low)+1)
	newLow = append(newLow, e.low[:pos]...)
	newLow = append(newLow, low)
	newLow = append(newLow, e.low[pos:]...)
	newHigh := make([]int64, 0, len(e.high)+1)
	newHigh = append(newHigh, e.high[:pos]...)
	newHigh = append(newHigh, high)
	newHigh = append(newHigh, e.high[pos:]...)

	var kinds []AxisKind
	if e.kinds != nil || kind != KindUnknown {
		kinds = make([]AxisKind, 0, len(e.low)+1)
		for i := 0; i <= len(e.low); i++ {
			switch {
			case i < pos:
				kinds = append(kinds, e.kindAt(i))
			case i == pos:
				kinds = append(kinds, kind)
			default:
				kinds = append(kinds, e.kindAt(i-1))
			}
		}
		if err := validateKinds(kinds, len(newLow)); err != nil {
			return nil, err
		}
	}
	return &Extent{low: newLow, high: newHigh, kinds: internKinds(kinds)}, nil
}

// Intersect returns the per-axis overlap of the two extents. The result
// keeps the receiver's axis kinds regardless of the operand's. Fails with
// a DisjointError when some axis has no overlap.
func (e *Extent) Intersect(o *Extent) (*Extent, error) {
	if err := e.checkDim(o.Dimension(), "intersect operand"); err != nil {
		return nil, err
	}
	changed := false
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.high))
	for i := range e.low {
		low[i] = max(e.low[i], o.low[i])
		high[i] = min(e.high[i], o.high[i])
		if low[i] > high[i] {
			return nil, &DisjointError{
				Axis: i, Kind: e.kindAt(i),
				ALow: e.low[i], AHigh: e.high[i],
				BLow: o.low[i], BHigh: o.high[i],
			}
		}
		changed = changed || low[i] != e.low[i] || high[i] != e.high[i]
	}
	if !changed {
		return e, nil
	}
	return &Extent{low: low, high: high, kinds: e.kinds}, nil
}

// Union returns the smallest extent covering both operands. The result
// keeps the receiver's axis kinds.
func (e *Extent) Union(o *Extent) (*Extent, error) {
	if err := e.checkDim(o.Dimension(), "union operand"); err != nil {
		return nil, err
	}
	changed := false
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.high))
	for i := range e.low {
		low[i] = min(e.low[i], o.low[i])
		high[i] = max(e.high[i], o.high[i])
		changed = changed || low[i] != e.low[i] || high[i] != e.high[i]
	}
	if !changed {
		return e, nil
	}
	return &Extent{low: low, high: high, kinds: e.kinds}, nil
}

// Slice collapses every axis where the point provides a finite coordinate
// to the single cell at that rounded coordinate. NaN ordinates leave their
// axis unchanged. mapping, when non-nil, gives the extent axis of each
// point ordinate; nil means ordinate i addresses axis i. Fails with an
// OutOfGridError when a finite coordinate lies outside the extent.
func (e *Extent) Slice(point []float64, mapping []int) (*Extent, error) {
	if mapping != nil && len(mapping) != len(point) {
		return nil, &DimensionsError{Reason: "slice mapping length mismatch", Got: len(mapping), Want: len(point)}
	}
	if mapping == nil && len(point) != len(e.low) {
		return nil, &DimensionsError{Reason: "slice point length mismatch", Got: len(point), Want: len(e.low)}
	}
	changed := false
	low := make([]int64, len(e.low))
	high := make([]int64, len(e.high))
	copy(low, e.low)
	copy(high, e.high)
	for i, v := range point {
		if math.IsNaN(v) {
			continue
		}
		axis := i
		if mapping != nil {
			axis = mapping[i]
			if axis < 0 || axis >= len(e.low) {
				return nil, fmt.Errorf("grid: slice mapping targets axis %d of %d", axis, len(e.low))
			}
		}
		c, err := roundHalfAway(v, "slice", axis)
		if err != nil {
			return nil, err
		}
		if c < e.low[axis] || c > e.high[axis] {
			return nil, &OutOfGridError{Axis: axis, Value: v, Low: e.low[axis], High: e.high[axis]}
		}
		if low[axis] != c || high[axis] != c {
			low[axis], high[axis] = c, c
			changed = true
		}
	}
	if !changed {
		return e, nil
	}
	return &Extent{low: low, high: high, kinds: e.kinds}, nil
}
