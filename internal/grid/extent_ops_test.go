package grid

import (
	"errors"
	"math"
	"testing"
)

func TestTranslate(t *testing.T) {
	e := ext2(t, 0, 511, 0, 255)
	got, err := e.Translate(10, -5)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := ext2(t, 10, 521, -5, 250)
	if !got.Equal(want) {
		t.Errorf("Translate = %v, want %v", got, want)
	}
}

func TestTranslateZeroReturnsSameInstance(t *testing.T) {
	e := ext2(t, 0, 511, 0, 255)
	got, err := e.Translate(0, 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != e {
		t.Error("no-op translation should return the receiver")
	}
}

func TestTranslateOverflow(t *testing.T) {
	e := MustExtent([]int64{0}, []int64{math.MaxInt64}, nil)
	_, err := e.Translate(1)
	var oe *OverflowError
	if !errors.As(err, &oe) {
		t.Fatalf("got %v, want *OverflowError", err)
	}
}

func TestExpand(t *testing.T) {
	e := ext2(t, 0, 9, 0, 9)
	got, err := e.Expand(2, -3)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := ext2(t, -2, 11, 3, 6)
	if !got.Equal(want) {
		t.Errorf("Expand = %v, want %v", got, want)
	}

	if _, err := e.Expand(0, -6); err == nil {
		t.Error("shrinking past the midpoint should fail")
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name     string
		low, high int64
		size     int64
		wantLow  int64
		wantHigh int64
	}{
		{"halve from origin", 0, 9, 5, 0, 4},
		{"halve negative span", -10, 9, 10, -5, 4},
		{"residual to far endpoint", 1, 10, 5, 0, 4},
		{"keep on zero", 3, 7, 0, 3, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := MustExtent([]int64{tt.low}, []int64{tt.high}, nil)
			got, err := e.Resize(tt.size)
			if err != nil {
				t.Fatalf("Resize: %v", err)
			}
			if got.Low(0) != tt.wantLow || got.High(0) != tt.wantHigh {
				t.Errorf("Resize(%d) = [%d, %d], want [%d, %d]",
					tt.size, got.Low(0), got.High(0), tt.wantLow, tt.wantHigh)
			}
		})
	}
}

func TestSubsample(t *testing.T) {
	e := ext2(t, 0, 511, 0, 255)
	got, err := e.Subsample(2, 2)
	if err != nil {
		t.Fatalf("Subsample: %v", err)
	}
	want := ext2(t, 0, 255, 0, 127)
	if !got.Equal(want) {
		t.Errorf("Subsample(2,2) = %v, want %v", got, want)
	}
}

func TestSubsampleNegativeLow(t *testing.T) {
	e := MustExtent([]int64{-5}, []int64{4}, nil)
	got, err := e.Subsample(2)
	if err != nil {
		t.Fatalf("Subsample: %v", err)
	}
	// Low divides toward negative infinity, so cell −5 stays covered.
	if got.Low(0) != -3 || got.High(0) != 1 {
		t.Errorf("Subsample(2) = [%d, %d], want [-3, 1]", got.Low(0), got.High(0))
	}
}

func TestSubsampleClampsToOneCell(t *testing.T) {
	e := MustExtent([]int64{0}, []int64{2}, nil)
	got, err := e.Subsample(10)
	if err != nil {
		t.Fatalf("Subsample: %v", err)
	}
	if got.Size(0) != 1 {
		t.Errorf("size = %d, want 1", got.Size(0))
	}
}

func TestSelectDims(t *testing.T) {
	e := MustExtent([]int64{0, 10, 20}, []int64{9, 19, 29},
		[]AxisKind{KindColumn, KindRow, KindTime})
	got, err := e.SelectDims([]int{0, 2})
	if err != nil {
		t.Fatalf("SelectDims: %v", err)
	}
	if k, _ := got.Kind(1); got.Dimension() != 2 || got.Low(1) != 20 || k != KindTime {
		t.Errorf("SelectDims = %v", got)
	}

	if _, err := e.SelectDims([]int{2, 0}); err == nil {
		t.Error("descending indices should be rejected")
	}
}

func TestInsertDim(t *testing.T) {
	e := MustExtent([]int64{0, 0}, []int64{9, 9}, []AxisKind{KindColumn, KindRow})
	got, err := e.InsertDim(2, KindTime, 0, 23)
	if err != nil {
		t.Fatalf("InsertDim: %v", err)
	}
	if k, _ := got.Kind(2); got.Dimension() != 3 || got.High(2) != 23 || k != KindTime {
		t.Errorf("InsertDim = %v", got)
	}
}

func TestIntersectExtents(t *testing.T) {
	a := MustExtent([]int64{0}, []int64{10}, nil)
	b := MustExtent([]int64{5}, []int64{20}, nil)
	got, err := a.Intersect(b)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got.Low(0) != 5 || got.High(0) != 10 {
		t.Errorf("Intersect = %v, want {[5, 10]}", got)
	}
}

func TestIntersectDisjointExtents(t *testing.T) {
	a := MustExtent([]int64{0}, []int64{4}, nil)
	b := MustExtent([]int64{5}, []int64{10}, nil)
	_, err := a.Intersect(b)
	var de *DisjointError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *DisjointError", err)
	}
	if de.Axis != 0 {
		t.Errorf("error axis = %d, want 0", de.Axis)
	}
}

func TestUnionExtents(t *testing.T) {
	a := ext2(t, 0, 4, 0, 4)
	b := ext2(t, 8, 10, -2, 2)
	got, err := a.Union(b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	want := ext2(t, 0, 10, -2, 4)
	if !got.Equal(want) {
		t.Errorf("Union = %v, want %v", got, want)
	}
}

func TestSlice(t *testing.T) {
	e := MustExtent([]int64{0, 0, 0}, []int64{10, 10, 5}, nil)
	got, err := e.Slice([]float64{3, math.NaN(), 2}, nil)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	want := MustExtent([]int64{3, 0, 2}, []int64{3, 10, 2}, nil)
	if !got.Equal(want) {
		t.Errorf("Slice = %v, want %v", got, want)
	}
}

func TestSliceOutOfGrid(t *testing.T) {
	e := MustExtent([]int64{0, 0, 0}, []int64{10, 10, 5}, nil)
	_, err := e.Slice([]float64{11, math.NaN(), math.NaN()}, nil)
	var oe *OutOfGridError
	if !errors.As(err, &oe) {
		t.Fatalf("got %v, want *OutOfGridError", err)
	}
	if oe.Axis != 0 || oe.Value != 11 {
		t.Errorf("error details = %+v", oe)
	}
}

func TestSliceWithMapping(t *testing.T) {
	e := MustExtent([]int64{0, 0, 0}, []int64{10, 10, 5}, nil)
	got, err := e.Slice([]float64{2}, []int{2})
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	if got.Low(2) != 2 || got.High(2) != 2 || got.High(0) != 10 {
		t.Errorf("Slice with mapping = %v", got)
	}
}
