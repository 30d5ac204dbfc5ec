package grid

import (
	"github.com/cartoset/gridref/internal/transform"
)

// maskCapacity is the fixed width of the non-linear-axis bitmask. A
// geometry whose transform targets more meaningful dimensions than this
// cannot be represented and fails at construction.
const maskCapacity = 64

// nonLinearDimensions walks the decomposition of tr into elementary steps
// and returns a bitmask of the target dimensions that are non-linearly
// related to grid indices. Bit i corresponds to target axis i.
//
// Linear steps remap already-flagged source dimensions through the
// matrix's non-zero coefficients, so axis swaps and combinations carry
// flags to the right place. Pass-through steps conservatively mark every
// dimension of the transformed block; under a dimension-count change the
// whole block between the untouched leading and trailing dimensions is
// assumed shifted. Opaque steps mark all their target dimensions.
func nonLinearDimensions(tr transform.Transform) (uint64, error) {
	if tr.TargetDim() > maskCapacity {
		return 0, &DimensionsError{Reason: "non-linear mask capacity exceeded", Got: tr.TargetDim(), Want: maskCapacity}
	}
	var mask uint64 // grid indices themselves are linear
	for _, elem := range transform.Steps(tr) {
		step := transform.Classify(elem)
		if step.TargetDim > maskCapacity {
			return 0, &DimensionsError{Reason: "non-linear mask capacity exceeded", Got: step.TargetDim, Want: maskCapacity}
		}
		switch step.Kind {
		case transform.StepLinear:
			mask = remapLinear(mask, step.Matrix)
		case transform.StepPassThrough:
			mask = remapPassThrough(mask, step)
		default:
			mask = allBits(step.TargetDim)
		}
	}
	return mask, nil
}

// remapLinear carries source flags to every target dimension that the
// matrix combines them into.
func remapLinear(mask uint64, m *transform.Matrix) uint64 {
	srcDim := m.Cols() - 1
	tgtDim := m.Rows() - 1
	var out uint64
	for j := 0; j < srcDim && j < maskCapacity; j++ {
		if mask&(1<<j) == 0 {
			continue
		}
		for i := 0; i < tgtDim; i++ {
			if m.At(i, j) != 0 {
				out |= 1 << i
			}
		}
	}
	return out
}

// remapPassThrough copies flags on the untouched leading and trailing
// dimensions and marks the whole transformed block as non-linear.
func remapPassThrough(mask uint64, step transform.Step) uint64 {
	first := step.FirstAffected
	innerTgt := step.Inner.TargetDim()
	innerSrc := step.Inner.SourceDim()
	trailing := step.SourceDim - first - innerSrc

	out := mask & allBits(first)
	out |= allBits(first+innerTgt) &^ allBits(first)
	// Trailing flags shift by the inner dimension-count change.
	for i := 0; i < trailing; i++ {
		srcBit := first + innerSrc + i
		tgtBit := first + innerTgt + i
		if srcBit < maskCapacity && tgtBit < maskCapacity && mask&(1<<srcBit) != 0 {
			out |= 1 << tgtBit
		}
	}
	return out & allBits(step.TargetDim)
}

func allBits(n int) uint64 {
	if n >= maskCapacity {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}
