package grid

import (
	"errors"
	"math"
	"testing"
)

func ext2(t *testing.T, lowX, highX, lowY, highY int64) *Extent {
	t.Helper()
	e, err := NewExtent([]int64{lowX, lowY}, []int64{highX, highY}, nil)
	if err != nil {
		t.Fatalf("NewExtent: %v", err)
	}
	return e
}

func TestNewExtentInvalidBounds(t *testing.T) {
	_, err := NewExtent([]int64{5}, []int64{4}, nil)
	var be *BoundsError
	if !errors.As(err, &be) {
		t.Fatalf("got %v, want *BoundsError", err)
	}
	if be.Axis != 0 || be.Low != 5 || be.High != 4 {
		t.Errorf("error details = %+v", be)
	}
}

func TestBoundsInvariant(t *testing.T) {
	// Every constructed extent satisfies low ≤ high on every axis.
	exts := []*Extent{
		MustExtent([]int64{0, 0}, []int64{511, 255}, nil),
		MustExtent([]int64{-10}, []int64{-10}, nil),
		MustExtent([]int64{math.MinInt64}, []int64{math.MaxInt64}, nil),
	}
	for _, e := range exts {
		for i := 0; i < e.Dimension(); i++ {
			if e.Low(i) > e.High(i) {
				t.Errorf("extent %v violates low ≤ high on axis %d", e, i)
			}
		}
	}
}

func TestUnsignedSize(t *testing.T) {
	tests := []struct {
		name      string
		low, high int64
		want      uint64
	}{
		{"single cell", 7, 7, 1},
		{"simple", 0, 511, 512},
		{"negative origin", -5, 4, 10},
		{"beyond int64", math.MinInt64, math.MaxInt64 - 1, math.MaxUint64},
		{"full span wraps to zero", math.MinInt64, math.MaxInt64, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := MustExtent([]int64{tt.low}, []int64{tt.high}, nil)
			if got := e.Size(0); got != tt.want {
				t.Errorf("Size = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAxisKindsInterned(t *testing.T) {
	kinds := []AxisKind{KindColumn, KindRow, KindTime}
	a := MustExtent([]int64{0, 0, 0}, []int64{1, 1, 1}, kinds)
	b := MustExtent([]int64{5, 5, 5}, []int64{9, 9, 9}, []AxisKind{KindColumn, KindRow, KindTime})
	if &a.Kinds()[0] != &b.Kinds()[0] {
		t.Error("equal axis-kind lists should share one backing array")
	}
}

func TestAxisKindsDuplicateRejected(t *testing.T) {
	_, err := NewExtent([]int64{0, 0}, []int64{1, 1}, []AxisKind{KindRow, KindRow})
	if err == nil {
		t.Fatal("expected error for duplicate axis kinds")
	}
}

func TestExtentEnvelope(t *testing.T) {
	e := ext2(t, 0, 511, 0, 255)
	env := e.Envelope()
	if env.Lower(0) != 0 || env.Upper(0) != 512 {
		t.Errorf("x axis = [%g, %g], want [0, 512)", env.Lower(0), env.Upper(0))
	}
	if env.Upper(1) != 256 {
		t.Errorf("y upper = %g, want 256", env.Upper(1))
	}
}

func TestExtentEnvelopeSaturatesAtMaxInt64(t *testing.T) {
	e := MustExtent([]int64{0}, []int64{math.MaxInt64}, nil)
	env := e.Envelope()
	if env.Upper(0) != float64(math.MaxInt64) {
		t.Errorf("upper = %g, want saturation at MaxInt64", env.Upper(0))
	}
}

func TestPointOfInterest(t *testing.T) {
	e := ext2(t, 0, 10, 0, 4)
	center := e.PointOfInterest(AnchorCenter)
	if center[0] != 5 || center[1] != 2 {
		t.Errorf("center POI = %v, want [5 2]", center)
	}
	corner := e.PointOfInterest(AnchorCorner)
	if corner[0] != 5.5 || corner[1] != 2.5 {
		t.Errorf("corner POI = %v, want [5.5 2.5]", corner)
	}
}

func TestContains(t *testing.T) {
	e := ext2(t, 0, 10, 0, 10)
	if !e.Contains([]float64{3, math.NaN()}) {
		t.Error("NaN ordinate should match any cell")
	}
	if e.Contains([]float64{11, 0}) {
		t.Error("11 is outside [0, 10]")
	}
}

func TestExtentString(t *testing.T) {
	e := MustExtent([]int64{0}, []int64{math.MaxInt64}, nil)
	// Size is high−low+1 = 2⁶³ + … : must format as unsigned.
	if got := e.String(); got == "" {
		t.Fatal("empty String()")
	}
}
