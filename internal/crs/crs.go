// Package crs defines the coordinate-reference-system collaborator consumed
// by the grid-referencing core: axis count, per-axis metadata and identity
// comparison. The core never constructs CRS objects; callers obtain shared
// instances from ForCode or assemble compound systems from the singletons
// exposed here.
package crs

import "fmt"

// AxisDirection is the direction of increasing ordinate values along an
// axis.
type AxisDirection int

const (
	DirectionUnknown AxisDirection = iota
	DirectionEast
	DirectionWest
	DirectionNorth
	DirectionSouth
	DirectionUp
	DirectionDown
	DirectionFuture
	DirectionPast
)

// Opposite returns the reversed direction, or DirectionUnknown when no
// opposite exists.
func (d AxisDirection) Opposite() AxisDirection {
	switch d {
	case DirectionEast:
		return DirectionWest
	case DirectionWest:
		return DirectionEast
	case DirectionNorth:
		return DirectionSouth
	case DirectionSouth:
		return DirectionNorth
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionFuture:
		return DirectionPast
	case DirectionPast:
		return DirectionFuture
	default:
		return DirectionUnknown
	}
}

func (d AxisDirection) String() string {
	switch d {
	case DirectionEast:
		return "east"
	case DirectionWest:
		return "west"
	case DirectionNorth:
		return "north"
	case DirectionSouth:
		return "south"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionFuture:
		return "future"
	case DirectionPast:
		return "past"
	default:
		return "unknown"
	}
}

// Axis describes one coordinate axis of a CRS.
type Axis struct {
	Name      string
	Abbrev    string
	Direction AxisDirection
	Unit      string
}

// CRS is an immutable coordinate reference system: a code, a list of axes,
// and whether the two leading axes are geographic (degree) coordinates.
type CRS interface {
	// Code returns the EPSG code, or 0 for ad-hoc compound systems.
	Code() int

	// Dimension returns the number of axes.
	Dimension() int

	// Axis returns the i-th axis descriptor.
	Axis(i int) Axis

	// IsGeographic reports whether the horizontal axes carry degrees of
	// longitude/latitude.
	IsGeographic() bool

	// Equal reports identity: same code and same axes.
	Equal(other CRS) bool
}

type system struct {
	code       int
	axes       []Axis
	geographic bool
}

func (s *system) Code() int          { return s.code }
func (s *system) Dimension() int     { return len(s.axes) }
func (s *system) Axis(i int) Axis    { return s.axes[i] }
func (s *system) IsGeographic() bool { return s.geographic }

func (s *system) Equal(other CRS) bool {
	if other == nil {
		return false
	}
	if s.code != 0 && s.code == other.Code() {
		return true
	}
	if s.Dimension() != other.Dimension() {
		return false
	}
	for i := range s.axes {
		if s.axes[i] != other.Axis(i) {
			return false
		}
	}
	return s.geographic == other.IsGeographic()
}

func (s *system) String() string {
	if s.code != 0 {
		return fmt.Sprintf("EPSG:%d", s.code)
	}
	return fmt.Sprintf("compound(%d axes)", len(s.axes))
}

// Shared singletons. These are the only systems the core's own tests and
// tools need; everything else arrives from outside through the CRS
// interface.
var (
	wgs84 CRS = &system{
		code:       4326,
		geographic: true,
		axes: []Axis{
			{Name: "Geodetic longitude", Abbrev: "lon", Direction: DirectionEast, Unit: "degree"},
			{Name: "Geodetic latitude", Abbrev: "lat", Direction: DirectionNorth, Unit: "degree"},
		},
	}
	webMercator CRS = &system{
		code: 3857,
		axes: []Axis{
			{Name: "Easting", Abbrev: "X", Direction: DirectionEast, Unit: "metre"},
			{Name: "Northing", Abbrev: "Y", Direction: DirectionNorth, Unit: "metre"},
		},
	}
)

// ForCode returns the shared CRS for an EPSG code, or nil when the code is
// not one of the built-in systems.
func ForCode(epsg int) CRS {
	switch epsg {
	case 4326:
		return wgs84
	case 3857:
		return webMercator
	default:
		return nil
	}
}

// VerticalAxis is the shared "height above datum" axis used when building
// compound systems.
var VerticalAxis = Axis{Name: "Ellipsoidal height", Abbrev: "h", Direction: DirectionUp, Unit: "metre"}

// TimeAxis is the shared temporal axis used when building compound systems.
var TimeAxis = Axis{Name: "Time", Abbrev: "t", Direction: DirectionFuture, Unit: "second"}

// Compound assembles an ad-hoc CRS from a horizontal base plus extra axes.
// The result has code 0 and compares by axis equality.
func Compound(base CRS, extra ...Axis) CRS {
	axes := make([]Axis, 0, base.Dimension()+len(extra))
	for i := 0; i < base.Dimension(); i++ {
		axes = append(axes, base.Axis(i))
	}
	axes = append(axes, extra...)
	return &system{axes: axes, geographic: base.IsGeographic()}
}
