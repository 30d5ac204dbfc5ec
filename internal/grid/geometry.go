package grid

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/cartoset/gridref/internal/crs"
	"github.com/cartoset/gridref/internal/envelope"
	"github.com/cartoset/gridref/internal/transform"
)

// Anchor selects where within a cell the grid-to-CRS transform maps
// integer coordinates: the cell center or its lower corner. The two
// conventions differ by a fixed half-cell offset.
type Anchor int

const (
	AnchorCenter Anchor = iota
	AnchorCorner
)

func (a Anchor) String() string {
	if a == AnchorCorner {
		return "corner"
	}
	return "center"
}

// Defined identifies the independently optional property groups of a
// geometry, for use with Geometry.Defined.
type Defined uint32

const (
	DefinedCRS Defined = 1 << iota
	DefinedEnvelope
	DefinedExtent
	DefinedGridToCRS
	DefinedResolution
	DefinedGeographic
	DefinedTemporal
)

// Geometry aggregates the pieces that reference a discrete grid to
// continuous "real world" coordinates: an extent, a pair of grid-to-CRS
// transforms (center and corner anchored), an envelope, a per-axis
// resolution estimate and a bitmask of non-linear target axes.
//
// Every part is optional, but at least one of extent, transform or
// envelope must be present; the mutually present parts are validated for
// dimensional consistency at construction. Instances are immutable and
// safe for concurrent use; the memoized derived views are benign races
// over pure computations.
type Geometry struct {
	extent *Extent
	center transform.Transform // grid cell centers → CRS
	corner transform.Transform // grid cell corners → CRS
	env    *envelope.Envelope
	crs    crs.CRS

	resolution []float64 // local estimates per target axis, nil when unknown
	nonLinear  uint64    // bit i set: target axis i is non-linear in grid indices

	geoBound  atomic.Pointer[orb.Bound]
	timeRange atomic.Pointer[[2]float64]
}

// Undefined is the singleton entirely-empty geometry. It is the only
// geometry with no extent, no transform and no envelope.
var Undefined = &Geometry{}

// halfCell returns the translation by ±0.5 on every grid axis.
func halfCell(dim int, sign float64) *transform.Affine {
	off := make([]float64, dim)
	for i := range off {
		off[i] = 0.5 * sign
	}
	return transform.Translation(off...)
}

// anchorPair derives both transform variants from one. The corner variant
// evaluates the center variant half a cell lower, and vice versa.
func anchorPair(tr transform.Transform, anchor Anchor) (center, corner transform.Transform, err error) {
	dim := tr.SourceDim()
	if anchor == AnchorCenter {
		corner, err = transform.Compose(halfCell(dim, -1), tr)
		if err != nil {
			return nil, nil, err
		}
		return tr, corner, nil
	}
	center, err = transform.Compose(halfCell(dim, 1), tr)
	if err != nil {
		return nil, nil, err
	}
	return center, tr, nil
}

// NewGeometry builds a geometry from an extent, a grid-to-CRS transform
// interpreted under the given anchor, and an optional CRS (construction
// variant 1). Any of extent and transform may be nil, but not both. The
// envelope is derived by mapping the extent's corner envelope through the
// corner transform; resolution comes from the transform matrix when
// affine, from the local derivative at the extent's point of interest
// otherwise.
func NewGeometry(extent *Extent, anchor Anchor, gridToCRS transform.Transform, system crs.CRS) (*Geometry, error) {
	if extent == nil && gridToCRS == nil {
		return nil, fmt.Errorf("grid: geometry needs at least an extent or a transform")
	}
	if extent != nil && gridToCRS != nil && extent.Dimension() != gridToCRS.SourceDim() {
		return nil, &DimensionsError{Reason: "extent vs transform", Got: gridToCRS.SourceDim(), Want: extent.Dimension()}
	}
	if gridToCRS != nil && system != nil && gridToCRS.TargetDim() != system.Dimension() {
		return nil, &DimensionsError{Reason: "transform vs CRS", Got: system.Dimension(), Want: gridToCRS.TargetDim()}
	}

	g := &Geometry{extent: extent, crs: system}
	if gridToCRS == nil {
		return g, nil
	}

	center, corner, err := anchorPair(gridToCRS, anchor)
	if err != nil {
		return nil, err
	}
	g.center, g.corner = center, corner

	if g.nonLinear, err = nonLinearDimensions(center); err != nil {
		return nil, err
	}
	g.resolution = computeResolution(center, extent, AnchorCenter)

	if extent != nil {
		env, err := envelope.Transformed(corner, extent.Envelope(), system)
		if err != nil {
			return nil, err
		}
		g.env = backfillEnvelope(env, corner, AnchorCorner, nil)
	}
	return g, nil
}

// GeometryFromEnvelope builds a geometry when no extent is known up front
// (construction variant 2): the transform is inverted to map the envelope
// into grid space, the result is rounded into an extent under the given
// mode, and the envelope is then re-derived in the forward direction from
// that extent. The round trip envelope → extent → envelope is not
// guaranteed idempotent; drift is bounded by one cell per axis.
func GeometryFromEnvelope(gridToCRS transform.Transform, anchor Anchor, env *envelope.Envelope, mode RoundingMode) (*Geometry, error) {
	if gridToCRS == nil || env == nil {
		return nil, fmt.Errorf("grid: envelope construction needs both a transform and an envelope")
	}
	if gridToCRS.TargetDim() != env.Dimension() {
		return nil, &DimensionsError{Reason: "transform vs envelope", Got: env.Dimension(), Want: gridToCRS.TargetDim()}
	}
	_, corner, err := anchorPair(gridToCRS, anchor)
	if err != nil {
		return nil, err
	}
	inv, err := corner.Inverse()
	if err != nil {
		return nil, fmt.Errorf("grid: cannot map envelope to grid space: %w", err)
	}
	gridEnv, err := envelope.Transformed(inv, env, nil)
	if err != nil {
		return nil, err
	}
	extent, err := FromEnvelope(gridEnv, mode, nil)
	if err != nil {
		return nil, err
	}
	return NewGeometry(extent, anchor, gridToCRS, env.CRS())
}

// Orientation controls the axis-aligned synthesis of a transform when
// referencing metadata supplies only an extent and an envelope.
type Orientation struct {
	// FlipY maps increasing grid rows to decreasing second-axis
	// coordinates (the display convention for north-up rasters).
	FlipY bool

	// GridOrder optionally names the grid axis feeding each target axis,
	// reordering grid axes to match the CRS axis convention. nil means
	// axis i feeds axis i.
	GridOrder []int
}

// GeometrySynthesized builds a geometry from an extent and a target
// envelope with no transform known (construction variant 3): a corner
// anchored affine transform is synthesized with per-axis scale
// span/size, placing the extent's low corner at the envelope's
// corresponding bound, flipped or reordered per the orientation.
func GeometrySynthesized(extent *Extent, env *envelope.Envelope, orient Orientation) (*Geometry, error) {
	if extent == nil || env == nil {
		return nil, fmt.Errorf("grid: synthesis needs both an extent and an envelope")
	}
	dim := extent.Dimension()
	if env.Dimension() != dim {
		return nil, &DimensionsError{Reason: "extent vs envelope", Got: env.Dimension(), Want: dim}
	}
	if orient.GridOrder != nil {
		if len(orient.GridOrder) != dim {
			return nil, &DimensionsError{Reason: "orientation grid order", Got: len(orient.GridOrder), Want: dim}
		}
		var seen = make(map[int]bool, dim)
		for _, a := range orient.GridOrder {
			if a < 0 || a >= dim || seen[a] {
				return nil, fmt.Errorf("grid: orientation grid order %v is not a permutation of [0, %d)", orient.GridOrder, dim)
			}
			seen[a] = true
		}
	}

	m := transform.NewMatrix(dim+1, dim+1)
	m.Set(dim, dim, 1)
	for i := 0; i < dim; i++ {
		gridAxis := i
		if orient.GridOrder != nil {
			gridAxis = orient.GridOrder[i]
		}
		size := float64(extent.Size(gridAxis))
		if extent.Size(gridAxis) == 0 { // full 2⁶⁴ span
			size = math.Ldexp(1, 64)
		}
		scale := env.Span(i) / size
		if orient.FlipY && i == 1 {
			scale = -scale
		}
		var trans float64
		if scale < 0 || (scale == 0 && math.Signbit(scale)) {
			trans = env.Upper(i) - scale*float64(extent.Low(gridAxis))
		} else {
			trans = env.Lower(i) - scale*float64(extent.Low(gridAxis))
		}
		m.Set(i, gridAxis, scale)
		m.Set(i, dim, trans)
	}
	affine, err := transform.NewAffine(m)
	if err != nil {
		return nil, err
	}
	return NewGeometry(extent, AnchorCorner, affine, env.CRS())
}

// Derive builds a new geometry from this one by supplying a new extent
// and a grid-to-grid transform mapping the new grid to the parent grid
// (construction variant 4). The corner and center transforms are
// recomposed, resolution and the non-linear mask are recomputed, and the
// envelope is re-derived — clipped to the parent's envelope when toOther
// actually changes coordinates, guarding against resolution-driven
// inflation under subsampling. A nil toOther means identity; deriving
// with the same extent and an identity transform returns the receiver.
func (g *Geometry) Derive(newExtent *Extent, toOther transform.Transform) (*Geometry, error) {
	if newExtent == nil {
		return nil, fmt.Errorf("grid: derivation needs an extent")
	}
	if toOther == nil {
		toOther = transform.Identity(newExtent.Dimension())
	}
	if g.corner == nil {
		return nil, &UndefinedError{Property: "grid-to-CRS transform"}
	}
	if toOther.TargetDim() != g.corner.SourceDim() {
		return nil, &DimensionsError{Reason: "derivation transform vs parent grid", Got: toOther.TargetDim(), Want: g.corner.SourceDim()}
	}
	if newExtent.Dimension() != toOther.SourceDim() {
		return nil, &DimensionsError{Reason: "derivation extent vs transform", Got: toOther.SourceDim(), Want: newExtent.Dimension()}
	}
	identity := toOther.IsIdentity()
	if identity && newExtent.Equal(g.extent) {
		return g, nil
	}

	corner, err := transform.Compose(toOther, g.corner)
	if err != nil {
		return nil, err
	}
	center, err := transform.Compose(halfCell(newExtent.Dimension(), 1), corner)
	if err != nil {
		return nil, err
	}

	d := &Geometry{extent: newExtent, center: center, corner: corner, crs: g.crs}
	if d.nonLinear, err = nonLinearDimensions(center); err != nil {
		return nil, err
	}
	d.resolution = computeResolution(center, newExtent, AnchorCenter)

	env, err := envelope.Transformed(corner, newExtent.Envelope(), g.crs)
	if err != nil {
		return nil, err
	}
	env = backfillEnvelope(env, corner, AnchorCorner, g.env)
	if !identity && g.env != nil {
		if clipped, err := env.Intersect(g.env); err == nil {
			env = clipped
		}
	}
	d.env = env
	return d, nil
}

// Defined reports whether every property group in bits is defined.
func (g *Geometry) Defined(bits Defined) bool {
	has := Defined(0)
	if g.crs != nil || (g.env != nil && g.env.CRS() != nil) {
		has |= DefinedCRS
	}
	if g.env != nil {
		has |= DefinedEnvelope
	}
	if g.extent != nil {
		has |= DefinedExtent
	}
	if g.center != nil {
		has |= DefinedGridToCRS
	}
	if g.resolution != nil {
		has |= DefinedResolution
	}
	if g.env != nil {
		if _, ok := g.env.GeographicBound(); ok {
			has |= DefinedGeographic
		}
		if _, ok := g.timeAxis(); ok {
			has |= DefinedTemporal
		}
	}
	return has&bits == bits
}

// Extent returns the grid extent.
func (g *Geometry) Extent() (*Extent, error) {
	if g.extent == nil {
		return nil, &UndefinedError{Property: "extent"}
	}
	return g.extent, nil
}

// GridToCRS returns the grid-to-CRS transform under the given anchor.
func (g *Geometry) GridToCRS(anchor Anchor) (transform.Transform, error) {
	tr := g.center
	if anchor == AnchorCorner {
		tr = g.corner
	}
	if tr == nil {
		return nil, &UndefinedError{Property: "grid-to-CRS transform"}
	}
	return tr, nil
}

// Envelope returns the "real world" envelope.
func (g *Geometry) Envelope() (*envelope.Envelope, error) {
	if g.env == nil {
		return nil, &UndefinedError{Property: "envelope"}
	}
	return g.env, nil
}

// CRS returns the coordinate reference system.
func (g *Geometry) CRS() (crs.CRS, error) {
	if g.crs != nil {
		return g.crs, nil
	}
	if g.env != nil && g.env.CRS() != nil {
		return g.env.CRS(), nil
	}
	return nil, &UndefinedError{Property: "coordinate reference system"}
}

// Resolution returns the per-target-axis resolution. The raw variant
// (allowEstimates false) reports NaN on non-linear axes; with estimates
// allowed, the local-derivative value at the point of interest is
// substituted there.
func (g *Geometry) Resolution(allowEstimates bool) ([]float64, error) {
	if g.resolution == nil {
		return nil, &UndefinedError{Property: "resolution"}
	}
	if allowEstimates {
		return append([]float64(nil), g.resolution...), nil
	}
	return maskedResolution(g.resolution, g.nonLinear), nil
}

// NonLinearMask returns the bitmask of target axes non-linearly related
// to grid indices. Bit i corresponds to target axis i.
func (g *Geometry) NonLinearMask() uint64 { return g.nonLinear }

// IsAxisLinear reports whether the given target axis is linearly related
// to grid indices.
func (g *Geometry) IsAxisLinear(axis int) bool {
	return axis >= maskCapacity || g.nonLinear&(1<<axis) == 0
}

// GeographicBound returns the horizontal envelope projection as an
// orb.Bound. The value is memoized; geometries being immutable, a
// concurrent duplicate computation is benign.
func (g *Geometry) GeographicBound() (orb.Bound, error) {
	if p := g.geoBound.Load(); p != nil {
		return *p, nil
	}
	if g.env == nil {
		return orb.Bound{}, &UndefinedError{Property: "geographic bounding box"}
	}
	b, ok := g.env.GeographicBound()
	if !ok {
		return orb.Bound{}, &UndefinedError{Property: "geographic bounding box"}
	}
	g.geoBound.Store(&b)
	return b, nil
}

// timeAxis returns the index of the temporal CRS axis, if any.
func (g *Geometry) timeAxis() (int, bool) {
	system := g.crs
	if system == nil && g.env != nil {
		system = g.env.CRS()
	}
	if system == nil {
		return 0, false
	}
	for i := 0; i < system.Dimension(); i++ {
		d := system.Axis(i).Direction
		if d == crs.DirectionFuture || d == crs.DirectionPast {
			return i, true
		}
	}
	return 0, false
}

// TimeRange returns the envelope bounds along the temporal axis, ordered
// low to high. Memoized like GeographicBound.
func (g *Geometry) TimeRange() (start, end float64, err error) {
	if p := g.timeRange.Load(); p != nil {
		return p[0], p[1], nil
	}
	axis, ok := g.timeAxis()
	if !ok || g.env == nil || axis >= g.env.Dimension() {
		return 0, 0, &UndefinedError{Property: "temporal extent"}
	}
	lo, hi := g.env.Lower(axis), g.env.Upper(axis)
	if g.crs != nil && g.crs.Axis(axis).Direction == crs.DirectionPast {
		lo, hi = hi, lo
	}
	g.timeRange.Store(&[2]float64{lo, hi})
	return lo, hi, nil
}

func (g *Geometry) String() string {
	var b strings.Builder
	b.WriteString("Geometry{")
	sep := ""
	if g.extent != nil {
		fmt.Fprintf(&b, "%s%v", sep, g.extent)
		sep = "; "
	}
	if g.env != nil {
		fmt.Fprintf(&b, "%s%v", sep, g.env)
		sep = "; "
	}
	if g.crs != nil {
		fmt.Fprintf(&b, "%scrs=%v", sep, g.crs)
		sep = "; "
	}
	if g.resolution != nil {
		fmt.Fprintf(&b, "%sresolution=%v", sep, g.resolution)
	}
	b.WriteString("}")
	return b.String()
}
