package grid

import (
	"fmt"
	"math"

	"github.com/cartoset/gridref/internal/envelope"
)

// RoundingMode controls how a floating-point envelope is rounded into an
// integer extent.
type RoundingMode int

const (
	// Enclosing rounds outward: the grid covers at least the envelope.
	Enclosing RoundingMode = iota
	// Contained rounds inward: the grid covers at most the envelope, with
	// a single-cell fallback when the interval would invert.
	Contained
	// Nearest rounds each bound to the nearest integer, with a one-cell
	// correction when rounding error changes the span by ±1.
	Nearest
)

func (m RoundingMode) String() string {
	switch m {
	case Enclosing:
		return "enclosing"
	case Contained:
		return "contained"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
}

// RoundingOptions adjusts FromEnvelope beyond the rounding mode. All
// fields are optional.
type RoundingOptions struct {
	// Margin inflates (or, negative, deflates) each axis symmetrically,
	// applied after rounding and before chunk snapping and clipping.
	Margin []int64

	// ChunkSize snaps each axis outward to a multiple of a tile size.
	ChunkSize []int64

	// Enclosing clips the result to this extent, and supplies the bounds
	// inherited by axes whose envelope bounds are NaN.
	Enclosing *Extent

	// Kinds tags the axes of the result. When nil and Enclosing is set,
	// the enclosing extent's kinds are inherited.
	Kinds []AxisKind
}

// FromEnvelope rounds a floating-point envelope into an integer extent
// under the given mode. NaN bounds are tolerated only when opts.Enclosing
// is supplied, in which case the corresponding bound is inherited from it:
// this models a degenerate axis whose scale is unknown.
func FromEnvelope(env *envelope.Envelope, mode RoundingMode, opts *RoundingOptions) (*Extent, error) {
	dim := env.Dimension()
	if opts == nil {
		opts = &RoundingOptions{}
	}
	if opts.Margin != nil && len(opts.Margin) != dim {
		return nil, &DimensionsError{Reason: "margin length mismatch", Got: len(opts.Margin), Want: dim}
	}
	if opts.ChunkSize != nil && len(opts.ChunkSize) != dim {
		return nil, &DimensionsError{Reason: "chunk-size length mismatch", Got: len(opts.ChunkSize), Want: dim}
	}
	ref := opts.Enclosing
	if ref != nil && ref.Dimension() != dim {
		return nil, &DimensionsError{Reason: "enclosing extent dimension mismatch", Got: ref.Dimension(), Want: dim}
	}

	low := make([]int64, dim)
	high := make([]int64, dim)
	for i := 0; i < dim; i++ {
		lo, hi, err := roundAxis(env.Lower(i), env.Upper(i), mode, ref, i)
		if err != nil {
			return nil, err
		}

		if opts.Margin != nil && opts.Margin[i] != 0 {
			m := opts.Margin[i]
			if lo, err = subExact(lo, m, "margin", i); err != nil {
				return nil, err
			}
			if hi, err = addExact(hi, m, "margin", i); err != nil {
				return nil, err
			}
			if lo > hi {
				return nil, &BoundsError{Axis: i, Low: lo, High: hi}
			}
		}

		if opts.ChunkSize != nil && opts.ChunkSize[i] > 1 {
			cs := opts.ChunkSize[i]
			lo = floorDiv(lo, cs) * cs
			snapped, err := mulExact(floorDiv(hi, cs)+1, cs, "chunk snap", i)
			if err != nil {
				return nil, err
			}
			if hi, err = addExact(snapped, -1, "chunk snap", i); err != nil {
				return nil, err
			}
		}

		if ref != nil {
			clippedLo := max(lo, ref.Low(i))
			clippedHi := min(hi, ref.High(i))
			if clippedLo > clippedHi {
				return nil, &DisjointError{
					Axis: i, Kind: ref.kindAt(i),
					ALow: lo, AHigh: hi,
					BLow: ref.Low(i), BHigh: ref.High(i),
				}
			}
			lo, hi = clippedLo, clippedHi
		}

		low[i], high[i] = lo, hi
	}

	kinds := opts.Kinds
	if kinds == nil && ref != nil {
		kinds = ref.Kinds()
	}
	return NewExtent(low, high, kinds)
}

// roundAxis maps one floating [min, max) interval to an inclusive integer
// [lo, hi] pair under the given mode.
func roundAxis(minV, maxV float64, mode RoundingMode, ref *Extent, axis int) (int64, int64, error) {
	if math.IsNaN(minV) || math.IsNaN(maxV) {
		if ref == nil {
			return 0, 0, fmt.Errorf("grid: axis %d has NaN bounds [%g, %g] and no enclosing extent to inherit from",
				axis, minV, maxV)
		}
		lo, hi := ref.Low(axis), ref.High(axis)
		if !math.IsNaN(minV) {
			v, err := floorInt(minV, "round", axis)
			if err != nil {
				return 0, 0, err
			}
			lo = v
		}
		if !math.IsNaN(maxV) {
			v, err := ceilInt(maxV, "round", axis)
			if err != nil {
				return 0, 0, err
			}
			hi = v - 1
		}
		if lo > hi {
			return 0, 0, &BoundsError{Axis: axis, Low: lo, High: hi}
		}
		return lo, hi, nil
	}

	switch mode {
	case Enclosing:
		lo, err := floorInt(minV, "round", axis)
		if err != nil {
			return 0, 0, err
		}
		hi, err := ceilInt(maxV, "round", axis)
		if err != nil {
			return 0, 0, err
		}
		if hi, err = addExact(hi, -1, "round", axis); err != nil {
			return 0, 0, err
		}
		if hi < lo {
			hi = lo // zero-span envelope still occupies one cell
		}
		return lo, hi, nil

	case Contained:
		lo, err := ceilInt(minV, "round", axis)
		if err != nil {
			return 0, 0, err
		}
		hi, err := floorInt(maxV, "round", axis)
		if err != nil {
			return 0, 0, err
		}
		if hi, err = addExact(hi, -1, "round", axis); err != nil {
			return 0, 0, err
		}
		if lo > hi {
			// Inverted interval: fall back to the single cell at whichever
			// endpoint is nearest to an integer.
			dMin := math.Abs(minV - math.Round(minV))
			dMax := math.Abs(maxV - math.Round(maxV))
			var c int64
			if dMin <= dMax {
				if c, err = roundHalfAway(minV, "round", axis); err != nil {
					return 0, 0, err
				}
			} else {
				if c, err = roundHalfAway(maxV, "round", axis); err != nil {
					return 0, 0, err
				}
				if c, err = addExact(c, -1, "round", axis); err != nil {
					return 0, 0, err
				}
			}
			return c, c, nil
		}
		return lo, hi, nil

	case Nearest:
		lo, err := roundHalfAway(minV, "round", axis)
		if err != nil {
			return 0, 0, err
		}
		hi, err := roundHalfAway(maxV, "round", axis)
		if err != nil {
			return 0, 0, err
		}
		if hi, err = addExact(hi, -1, "round", axis); err != nil {
			return 0, 0, err
		}
		// Rounding both endpoints independently can inflate or deflate the
		// span by one cell relative to the true span; push the correction
		// onto whichever endpoint is farther from an integer.
		span := maxV - minV
		if trueSize := math.Round(span); !math.IsInf(span, 0) {
			size := float64(hi) - float64(lo) + 1
			if diff := size - trueSize; diff == 1 || diff == -1 {
				dMin := math.Abs(minV - math.Round(minV))
				dMax := math.Abs(maxV - math.Round(maxV))
				adj := int64(diff)
				if dMin > dMax {
					if lo, err = addExact(lo, adj, "round", axis); err != nil {
						return 0, 0, err
					}
				} else {
					if hi, err = addExact(hi, -adj, "round", axis); err != nil {
						return 0, 0, err
					}
				}
			}
		}
		if hi < lo {
			hi = lo
		}
		return lo, hi, nil

	default:
		return 0, 0, fmt.Errorf("grid: unknown rounding mode %d", int(mode))
	}
}
