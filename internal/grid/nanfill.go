package grid

import (
	"math"

	"github.com/cartoset/gridref/internal/envelope"
	"github.com/cartoset/gridref/internal/transform"
)

// backfillEnvelope repairs NaN envelope bounds left by degenerate grid
// axes (a [0, 0] range mapped through an unknown scale yields NaN).
//
// When the transform is affine, the translation term of the affected
// target axis is read directly: under the corner convention only a
// missing lower bound is filled from it; under the center convention both
// bounds are placed symmetrically around it, preserving the existing
// (possibly zero) span. Residual NaNs are filled from the caller-supplied
// fallback envelope, but only where doing so keeps lower ≤ upper.
func backfillEnvelope(env *envelope.Envelope, tr transform.Transform, anchor Anchor, fallback *envelope.Envelope) *envelope.Envelope {
	lower, upper := env.Bounds()
	changed := false

	if m, ok := transform.LinearMatrix(tr); ok && m.Rows()-1 == len(lower) {
		srcDim := m.Cols() - 1
		for i := range lower {
			loNaN := math.IsNaN(lower[i])
			hiNaN := math.IsNaN(upper[i])
			if !loNaN && !hiNaN {
				continue
			}
			term := m.At(i, srcDim)
			if math.IsNaN(term) {
				continue
			}
			if anchor == AnchorCorner {
				if loNaN {
					lower[i] = term
					changed = true
				}
			} else {
				// The term is the cell-center coordinate: place the missing
				// bound symmetrically around it, keeping a finite one as is.
				switch {
				case loNaN && hiNaN:
					lower[i], upper[i] = term, term
				case loNaN:
					lower[i] = 2*term - upper[i]
				default:
					upper[i] = 2*term - lower[i]
				}
				changed = true
			}
		}
	}

	if fallback != nil && fallback.Dimension() == len(lower) {
		for i := range lower {
			if math.IsNaN(lower[i]) {
				if v := fallback.Lower(i); !math.IsNaN(v) && !(v > upper[i]) {
					lower[i] = v
					changed = true
				}
			}
			if math.IsNaN(upper[i]) {
				if v := fallback.Upper(i); !math.IsNaN(v) && !(v < lower[i]) {
					upper[i] = v
					changed = true
				}
			}
		}
	}

	if !changed {
		return env
	}
	repaired, err := envelope.New(lower, upper, env.CRS())
	if err != nil {
		return env // a repair that would invert bounds is abandoned
	}
	return repaired
}
