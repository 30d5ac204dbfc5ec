package coverage

import "math"

// Range is the declared numeric range of a sample dimension.
type Range struct {
	Min, Max float64
	// Integer marks ranges whose values are whole numbers, allowing an
	// integer storage type.
	Integer bool
}

// union returns the smallest range covering both operands. Integerness
// survives only when both operands are integral.
func (r Range) union(o Range) Range {
	return Range{
		Min:     math.Min(r.Min, o.Min),
		Max:     math.Max(r.Max, o.Max),
		Integer: r.Integer && o.Integer,
	}
}

// SampleDimension describes one band of a coverage: its packed value
// range, optional no-data sentinels, and the transfer function to the
// converted representation.
type SampleDimension struct {
	Name     string
	Packed   Range
	NoData   []float64
	Transfer Transfer1D
}

// transfer returns the band's transfer, defaulting to identity.
func (d SampleDimension) transfer() Transfer1D {
	if d.Transfer == nil {
		return IdentityTransfer{}
	}
	return d.Transfer
}

// Converted returns the band's range in the converted representation. A
// band with no-data sentinels is never integral once converted, since
// sentinels become NaN.
func (d SampleDimension) Converted() Range {
	t := d.transfer()
	a := t.Apply(d.Packed.Min)
	b := t.Apply(d.Packed.Max)
	return Range{
		Min:     math.Min(a, b),
		Max:     math.Max(a, b),
		Integer: d.Packed.Integer && t.IsIdentity() && len(d.NoData) == 0,
	}
}

// AdmitsNaN reports whether the converted view of this band can produce
// not-a-number values.
func (d SampleDimension) AdmitsNaN() bool { return len(d.NoData) > 0 }

// DataType is the storage type hint derived from sample dimensions and
// handed to the tiled-raster collaborator.
type DataType int

const (
	TypeUint8 DataType = iota
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeFloat32
	TypeFloat64
)

func (t DataType) String() string {
	switch t {
	case TypeUint8:
		return "uint8"
	case TypeInt16:
		return "int16"
	case TypeUint16:
		return "uint16"
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// IsFloat reports whether the type carries floating-point samples.
func (t DataType) IsFloat() bool { return t == TypeFloat32 || t == TypeFloat64 }

// rangeType returns the smallest type able to hold the range.
func rangeType(r Range) DataType {
	if !r.Integer {
		if fitsFloat32(r.Min) && fitsFloat32(r.Max) {
			return TypeFloat32
		}
		return TypeFloat64
	}
	switch {
	case r.Min >= 0 && r.Max <= math.MaxUint8:
		return TypeUint8
	case r.Min >= math.MinInt16 && r.Max <= math.MaxInt16:
		return TypeInt16
	case r.Min >= 0 && r.Max <= math.MaxUint16:
		return TypeUint16
	case r.Min >= math.MinInt32 && r.Max <= math.MaxInt32:
		return TypeInt32
	case r.Min >= 0 && r.Max <= math.MaxUint32:
		return TypeUint32
	default:
		return TypeFloat64
	}
}

func fitsFloat32(v float64) bool {
	return math.IsNaN(v) || math.Abs(v) <= math.MaxFloat32
}

// widen promotes an integer type to the floating type able to hold its
// values exactly. Used when a band admits NaN sentinels: the numeric range
// alone may fit an integer type, but NaN requires floating storage.
func (t DataType) widen() DataType {
	switch t {
	case TypeUint8, TypeInt16, TypeUint16:
		return TypeFloat32
	case TypeInt32, TypeUint32:
		return TypeFloat64
	default:
		return t
	}
}

// UnionSampleType unions the declared ranges of all bands (converted or
// packed view) into one storage type, widening to floating point when any
// band admits NaN.
func UnionSampleType(dims []SampleDimension, converted bool) DataType {
	if len(dims) == 0 {
		return TypeFloat64
	}
	var acc Range
	nan := false
	for i, d := range dims {
		r := d.Packed
		if converted {
			r = d.Converted()
			if d.AdmitsNaN() {
				nan = true
				// Sentinels alone do not make the numbers fractional; keep
				// integerness so the widened type stays exact.
				r.Integer = d.Packed.Integer && d.transfer().IsIdentity()
			}
		}
		if i == 0 {
			acc = r
		} else {
			acc = acc.union(r)
		}
	}
	t := rangeType(acc)
	if nan && !t.IsFloat() {
		t = t.widen()
	}
	return t
}
