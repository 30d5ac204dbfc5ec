// Package coverage implements the sample-conversion layer of the
// grid-referencing core: presenting either the packed (raw) or converted
// (physically meaningful) view of a coverage's samples, computed from the
// other view through a per-band one-dimensional transfer function, lazily
// and cacheably at tile granularity.
package coverage

import (
	"github.com/cartoset/gridref/internal/grid"
)

// Coverage is a grid of multi-band sample values referenced by a grid
// geometry. Implementations are immutable; rendering and evaluation never
// mutate the coverage.
type Coverage interface {
	// Geometry returns the grid geometry referencing the samples.
	Geometry() *grid.Geometry

	// SampleDimensions describes the bands, in band order.
	SampleDimensions() []SampleDimension

	// Render returns a raster view over the given extent (nil for the
	// full extent). The view reads lazily; no pixel is touched until a
	// tile is requested.
	Render(extent *grid.Extent) (*Raster, error)

	// Evaluator returns a single-point evaluator. Evaluators are not safe
	// for concurrent use: create one per goroutine.
	Evaluator() Evaluator

	// ForConvertedValues returns the view of this coverage presenting
	// converted (true) or packed (false) sample values. Toggling returns
	// an existing instance, never a new allocation per call.
	ForConvertedValues(converted bool) Coverage
}

// Evaluator samples a coverage at individual positions expressed in the
// coverage's CRS. Implementations hold scratch state and must not be
// shared across goroutines.
type Evaluator interface {
	// Apply returns one value per band at the given position, or an
	// OutOfGridError when the position falls outside the grid extent.
	Apply(pos []float64) ([]float64, error)
}
