package envelope

import (
	"fmt"
	"math"

	"github.com/cartoset/gridref/internal/crs"
	"github.com/cartoset/gridref/internal/transform"
)

// cornerCap is the largest source dimension for which all 2^N corners are
// transformed. Beyond it only the center and the 2N axis-extreme points are
// sampled, which is exact for transforms separable per axis and a lower
// bound otherwise.
const cornerCap = 20

// Transformed maps an envelope through a transform and returns the
// axis-aligned bounding box of the image, tagged with the given target
// system (may be nil).
//
// Affine transforms are mapped exactly per target axis from the matrix
// coefficients. Other transforms are mapped by evaluating the transform at
// the envelope corners and accumulating per-axis minima and maxima; for a
// curved transform the result can slightly underestimate the true image.
func Transformed(tr transform.Transform, e *Envelope, target crs.CRS) (*Envelope, error) {
	if tr.SourceDim() != e.Dimension() {
		return nil, fmt.Errorf("envelope: %d-D envelope through %d→%d transform",
			e.Dimension(), tr.SourceDim(), tr.TargetDim())
	}
	if m, ok := transform.LinearMatrix(tr); ok {
		return affineImage(m, e, target)
	}
	return sampledImage(tr, e, target)
}

// affineImage computes the exact image per target axis: each coefficient
// contributes its sign-selected bound, the translation column contributes
// directly. NaN source bounds or NaN coefficients propagate to the result.
func affineImage(m *transform.Matrix, e *Envelope, target crs.CRS) (*Envelope, error) {
	srcDim := m.Cols() - 1
	tgtDim := m.Rows() - 1
	lower := make([]float64, tgtDim)
	upper := make([]float64, tgtDim)
	for i := 0; i < tgtDim; i++ {
		lo := m.At(i, srcDim)
		hi := lo
		for j := 0; j < srcDim; j++ {
			c := m.At(i, j)
			if c == 0 {
				continue
			}
			a := c * e.lower[j]
			b := c * e.upper[j]
			lo += math.Min(a, b)
			hi += math.Max(a, b)
		}
		lower[i], upper[i] = lo, hi
	}
	return &Envelope{lower: lower, upper: upper, crs: target}, nil
}

func sampledImage(tr transform.Transform, e *Envelope, target crs.CRS) (*Envelope, error) {
	srcDim := tr.SourceDim()
	tgtDim := tr.TargetDim()
	lower := make([]float64, tgtDim)
	upper := make([]float64, tgtDim)
	for i := range lower {
		lower[i] = math.Inf(1)
		upper[i] = math.Inf(-1)
	}
	nan := make([]bool, tgtDim)

	accumulate := func(src []float64) error {
		dst, err := transform.Apply1(tr, src)
		if err != nil {
			return err
		}
		for i, v := range dst {
			if math.IsNaN(v) {
				nan[i] = true
				continue
			}
			if v < lower[i] {
				lower[i] = v
			}
			if v > upper[i] {
				upper[i] = v
			}
		}
		return nil
	}

	center := make([]float64, srcDim)
	for j := 0; j < srcDim; j++ {
		center[j] = e.Median(j)
	}
	if err := accumulate(center); err != nil {
		return nil, err
	}

	if srcDim <= cornerCap {
		corner := make([]float64, srcDim)
		for bits := uint64(0); bits < uint64(1)<<srcDim; bits++ {
			for j := 0; j < srcDim; j++ {
				if bits&(1<<j) != 0 {
					corner[j] = e.upper[j]
				} else {
					corner[j] = e.lower[j]
				}
			}
			if err := accumulate(corner); err != nil {
				return nil, err
			}
		}
	} else {
		point := make([]float64, srcDim)
		for j := 0; j < srcDim; j++ {
			copy(point, center)
			point[j] = e.lower[j]
			if err := accumulate(point); err != nil {
				return nil, err
			}
			point[j] = e.upper[j]
			if err := accumulate(point); err != nil {
				return nil, err
			}
		}
	}

	for i := range lower {
		if nan[i] || math.IsInf(lower[i], 1) {
			lower[i] = math.NaN()
			upper[i] = math.NaN()
		}
	}
	return &Envelope{lower: lower, upper: upper, crs: target}, nil
}
