package grid

import (
	"errors"
	"math"
	"math/bits"
	"testing"

	"github.com/cartoset/gridref/internal/transform"
)

// cubic is a non-affine 1-D transform, z → z³, for pass-through fixtures.
type cubic struct{}

func (cubic) SourceDim() int   { return 1 }
func (cubic) TargetDim() int   { return 1 }
func (cubic) IsIdentity() bool { return false }

func (cubic) Apply(dst, src []float64) error {
	dst[0] = src[0] * src[0] * src[0]
	return nil
}

func (cubic) Derivative(p []float64) (*transform.Matrix, error) {
	m := transform.NewMatrix(1, 1)
	m.Set(0, 0, 3*p[0]*p[0])
	return m, nil
}

func (cubic) Inverse() (transform.Transform, error) { return nil, transform.ErrNoInverse }

// swapXY exchanges the first two of three axes.
func swapXY(t *testing.T) *transform.Affine {
	t.Helper()
	m := transform.NewMatrix(4, 4)
	m.Set(0, 1, 1)
	m.Set(1, 0, 1)
	m.Set(2, 2, 1)
	m.Set(3, 3, 1)
	a, err := transform.NewAffine(m)
	if err != nil {
		t.Fatalf("NewAffine: %v", err)
	}
	return a
}

func cubicPassThrough(t *testing.T) transform.Transform {
	t.Helper()
	pt, err := transform.NewPassThrough(1, cubic{}, 1)
	if err != nil {
		t.Fatalf("NewPassThrough: %v", err)
	}
	return pt
}

func TestNonLinearMaskAffineIsZero(t *testing.T) {
	mask, err := nonLinearDimensions(transform.ScaleOffset(0.5, -0.5, 10, 20))
	if err != nil {
		t.Fatalf("nonLinearDimensions: %v", err)
	}
	if mask != 0 {
		t.Errorf("mask = %b, want 0", mask)
	}
}

func TestNonLinearMaskOpaque(t *testing.T) {
	mask, err := nonLinearDimensions(cubic{})
	if err != nil {
		t.Fatalf("nonLinearDimensions: %v", err)
	}
	if mask != 1 {
		t.Errorf("mask = %b, want 1", mask)
	}
}

func TestNonLinearMaskPassThrough(t *testing.T) {
	mask, err := nonLinearDimensions(cubicPassThrough(t))
	if err != nil {
		t.Fatalf("nonLinearDimensions: %v", err)
	}
	if mask != 1<<1 {
		t.Errorf("mask = %b, want bit 1 only", mask)
	}
}

func TestNonLinearMaskFollowsAxisSwap(t *testing.T) {
	// The flag tracks the data through a swap, so the two composition
	// orders flag different target axes, one axis each.
	pt := cubicPassThrough(t)
	swap := swapXY(t)

	tests := []struct {
		name string
		a, b transform.Transform
		want uint64
	}{
		{"cube then swap", pt, swap, 1 << 0},
		{"swap then cube", swap, pt, 1 << 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := transform.Compose(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			mask, err := nonLinearDimensions(c)
			if err != nil {
				t.Fatalf("nonLinearDimensions: %v", err)
			}
			if mask != tt.want {
				t.Errorf("mask = %b, want %b", mask, tt.want)
			}
			if bits.OnesCount64(mask) != 1 {
				t.Errorf("exactly one axis should be flagged, got %d", bits.OnesCount64(mask))
			}
		})
	}
}

func TestNonLinearMaskCapacity(t *testing.T) {
	_, err := nonLinearDimensions(wideOpaque{})
	var de *DimensionsError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *DimensionsError", err)
	}
}

// wideOpaque targets more dimensions than the mask can represent.
type wideOpaque struct{}

func (wideOpaque) SourceDim() int                         { return 65 }
func (wideOpaque) TargetDim() int                         { return 65 }
func (wideOpaque) IsIdentity() bool                       { return false }
func (wideOpaque) Apply(dst, src []float64) error         { copy(dst, src); return nil }
func (wideOpaque) Derivative([]float64) (*transform.Matrix, error) {
	return nil, transform.ErrNoInverse
}
func (wideOpaque) Inverse() (transform.Transform, error) { return nil, transform.ErrNoInverse }

func TestResolutionMasksNonLinearAxes(t *testing.T) {
	extent := MustExtent([]int64{0, 0, 0}, []int64{9, 9, 9}, nil)
	g, err := NewGeometry(extent, AnchorCenter, cubicPassThrough(t), nil)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	if g.IsAxisLinear(1) {
		t.Error("axis 1 passes through the cubic and should be non-linear")
	}
	if !g.IsAxisLinear(0) || !g.IsAxisLinear(2) {
		t.Error("untouched axes should stay linear")
	}

	est, err := g.Resolution(true)
	if err != nil {
		t.Fatalf("Resolution(true): %v", err)
	}
	// Local derivative at the point of interest (4.5, 4.5, 4.5): 3·4.5².
	if est[1] != 60.75 {
		t.Errorf("estimated resolution on axis 1 = %g, want 60.75", est[1])
	}

	raw, err := g.Resolution(false)
	if err != nil {
		t.Fatalf("Resolution(false): %v", err)
	}
	if !math.IsNaN(raw[1]) {
		t.Errorf("raw resolution on axis 1 = %g, want NaN", raw[1])
	}
	if raw[0] != 1 || raw[2] != 1 {
		t.Errorf("raw resolution = %v, want 1 on the linear axes", raw)
	}
}
