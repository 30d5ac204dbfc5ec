package grid

import "fmt"

// BoundsError reports an attempt to construct an extent axis whose lower
// bound exceeds its upper bound.
type BoundsError struct {
	Axis      int
	Low, High int64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("grid: axis %d has low %d > high %d", e.Axis, e.Low, e.High)
}

// DisjointError reports that clipping or intersecting two extents produced
// an empty range along one axis. It carries both conflicting ranges.
type DisjointError struct {
	Axis  int
	Kind  AxisKind
	ALow  int64
	AHigh int64
	BLow  int64
	BHigh int64
}

func (e *DisjointError) Error() string {
	axis := fmt.Sprintf("axis %d", e.Axis)
	if e.Kind != KindUnknown {
		axis = fmt.Sprintf("axis %d (%s)", e.Axis, e.Kind)
	}
	return fmt.Sprintf("grid: %s ranges [%d, %d] and [%d, %d] do not overlap",
		axis, e.ALow, e.AHigh, e.BLow, e.BHigh)
}

// OutOfGridError reports a slice or evaluation point falling outside the
// extent.
type OutOfGridError struct {
	Axis      int
	Value     float64
	Low, High int64
}

func (e *OutOfGridError) Error() string {
	return fmt.Sprintf("grid: coordinate %g on axis %d is outside [%d, %d]",
		e.Value, e.Axis, e.Low, e.High)
}

// OverflowError reports 64-bit overflow in derived-extent arithmetic. The
// operation fails rather than silently wrapping.
type OverflowError struct {
	Op   string
	Axis int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("grid: 64-bit overflow in %s on axis %d", e.Op, e.Axis)
}

// DimensionsError reports a dimensionality problem: mismatched dimensions
// between aggregated parts, or more dimensions than a 64-bit mask can hold.
type DimensionsError struct {
	Reason    string
	Got, Want int
}

func (e *DimensionsError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("grid: %s: got %d dimensions, want %d", e.Reason, e.Got, e.Want)
	}
	return fmt.Sprintf("grid: %s (%d dimensions)", e.Reason, e.Got)
}

// UndefinedError reports access to a geometry property group that was
// never defined. Callers are expected to guard optional properties with
// Geometry.Defined.
type UndefinedError struct {
	Property string
}

func (e *UndefinedError) Error() string {
	return "grid: geometry has no " + e.Property
}
