package grid

import "math"

// Overflow-checked int64 helpers. Extent arithmetic must fail loudly on
// wraparound, not produce a silently corrupted interval.

func addExact(a, b int64, op string, axis int) (int64, error) {
	s := a + b
	// Overflow iff both operands share a sign that the sum does not.
	if (a >= 0 && b >= 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		return 0, &OverflowError{Op: op, Axis: axis}
	}
	return s, nil
}

func subExact(a, b int64, op string, axis int) (int64, error) {
	if b == math.MinInt64 {
		if a >= 0 {
			return 0, &OverflowError{Op: op, Axis: axis}
		}
		return a - b, nil
	}
	return addExact(a, -b, op, axis)
}

func mulExact(a, b int64, op string, axis int) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if p/b != a || (a == math.MinInt64 && b == -1) {
		return 0, &OverflowError{Op: op, Axis: axis}
	}
	return p, nil
}

// floorDiv divides rounding toward negative infinity, matching how grid
// origins shift under subsampling and chunk snapping.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// unsignedSize returns high−low+1 as an unsigned quantity. The result may
// be 0, which encodes the full 2⁶⁴ span (low = MinInt64, high = MaxInt64).
func unsignedSize(low, high int64) uint64 {
	return uint64(high) - uint64(low) + 1
}

// roundHalfAway rounds to the nearest integer, halves away from zero, and
// reports values outside the int64 range as an overflow.
func roundHalfAway(v float64, op string, axis int) (int64, error) {
	r := math.Round(v)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, &OverflowError{Op: op, Axis: axis}
	}
	return int64(r), nil
}

func floorInt(v float64, op string, axis int) (int64, error) {
	r := math.Floor(v)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, &OverflowError{Op: op, Axis: axis}
	}
	return int64(r), nil
}

func ceilInt(v float64, op string, axis int) (int64, error) {
	r := math.Ceil(v)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, &OverflowError{Op: op, Axis: axis}
	}
	return int64(r), nil
}

// truncToZero rounds toward zero.
func truncToZero(v float64, op string, axis int) (int64, error) {
	r := math.Trunc(v)
	if math.IsNaN(r) || r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, &OverflowError{Op: op, Axis: axis}
	}
	return int64(r), nil
}

func absInt64(v int64) uint64 {
	if v < 0 {
		return uint64(-v) // MinInt64 wraps to its own magnitude, which is correct here
	}
	return uint64(v)
}
