package grid

import (
	"math"

	"github.com/cartoset/gridref/internal/transform"
)

// computeResolution estimates the real-world distance spanned by one grid
// step along each target axis. For an affine transform this is the
// Euclidean norm of each coefficient row, exact everywhere. For anything
// else it is the norm of the local Jacobian row evaluated at the extent's
// point of interest; without an extent there is no point to linearize at
// and the estimate is unavailable.
func computeResolution(tr transform.Transform, extent *Extent, anchor Anchor) []float64 {
	if tr == nil {
		return nil
	}
	if m, ok := transform.LinearMatrix(tr); ok {
		srcDim := m.Cols() - 1
		res := make([]float64, m.Rows()-1)
		for i := range res {
			res[i] = m.RowNorm(i, srcDim)
		}
		return res
	}
	if extent == nil {
		return nil
	}
	jac, err := tr.Derivative(extent.PointOfInterest(anchor))
	if err != nil {
		return nil
	}
	res := make([]float64, jac.Rows())
	for i := range res {
		res[i] = jac.RowNorm(i, jac.Cols())
	}
	return res
}

// maskedResolution returns a copy of the estimates with NaN substituted on
// the non-linear axes. This is the "raw" variant: a caller that did not
// opt into local estimates must not mistake one for an exact value.
func maskedResolution(res []float64, nonLinear uint64) []float64 {
	out := make([]float64, len(res))
	copy(out, res)
	for i := range out {
		if i < maskCapacity && nonLinear&(1<<i) != 0 {
			out[i] = math.NaN()
		}
	}
	return out
}
