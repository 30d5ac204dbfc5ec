package envelope

import (
	"errors"
	"math"
	"testing"

	"github.com/cartoset/gridref/internal/crs"
	"github.com/cartoset/gridref/internal/transform"
)

func mustNew(t *testing.T, lower, upper []float64) *Envelope {
	t.Helper()
	e, err := New(lower, upper, nil)
	if err != nil {
		t.Fatalf("New(%v, %v): %v", lower, upper, err)
	}
	return e
}

func TestNewRejectsInvertedBounds(t *testing.T) {
	if _, err := New([]float64{5}, []float64{4}, nil); err == nil {
		t.Fatal("expected error for lower > upper")
	}
}

func TestNewAcceptsNaN(t *testing.T) {
	e := mustNew(t, []float64{math.NaN(), 0}, []float64{math.NaN(), 10})
	if !math.IsNaN(e.Lower(0)) {
		t.Error("NaN lower bound not preserved")
	}
	if e.Span(1) != 10 {
		t.Errorf("Span(1) = %g, want 10", e.Span(1))
	}
}

func TestIntersect(t *testing.T) {
	a := mustNew(t, []float64{0, 0}, []float64{10, 10})
	b := mustNew(t, []float64{5, -5}, []float64{20, 5})
	got, err := a.Intersect(b)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got.Lower(0) != 5 || got.Upper(0) != 10 || got.Lower(1) != 0 || got.Upper(1) != 5 {
		t.Errorf("intersection = %v", got)
	}
}

func TestIntersectDisjoint(t *testing.T) {
	a := mustNew(t, []float64{0}, []float64{4})
	b := mustNew(t, []float64{5}, []float64{10})
	if _, err := a.Intersect(b); !errors.Is(err, ErrDisjoint) {
		t.Fatalf("got %v, want ErrDisjoint", err)
	}
}

func TestIntersectNaNInheritsOther(t *testing.T) {
	a := mustNew(t, []float64{math.NaN()}, []float64{math.NaN()})
	b := mustNew(t, []float64{2}, []float64{8})
	got, err := a.Intersect(b)
	if err != nil {
		t.Fatalf("Intersect: %v", err)
	}
	if got.Lower(0) != 2 || got.Upper(0) != 8 {
		t.Errorf("NaN axis should inherit the finite operand, got %v", got)
	}
}

func TestTransformedAffine(t *testing.T) {
	e := mustNew(t, []float64{0, 0}, []float64{512, 256})
	tr := transform.ScaleOffset(0.5, -0.5, 10, 20)
	got, err := Transformed(tr, e, nil)
	if err != nil {
		t.Fatalf("Transformed: %v", err)
	}
	want := [][2]float64{{10, 266}, {-108, 20}}
	for i, w := range want {
		if got.Lower(i) != w[0] || got.Upper(i) != w[1] {
			t.Errorf("axis %d = [%g, %g], want [%g, %g]", i, got.Lower(i), got.Upper(i), w[0], w[1])
		}
	}
}

// bendX is a mildly non-linear 2-D transform for exercising the corner
// sampling path: (x, y) → (x + y/1000, y).
type bendX struct{}

func (bendX) SourceDim() int   { return 2 }
func (bendX) TargetDim() int   { return 2 }
func (bendX) IsIdentity() bool { return false }

func (bendX) Apply(dst, src []float64) error {
	x := src[0] + src[1]/1000
	dst[0], dst[1] = x, src[1]
	return nil
}

func (bendX) Derivative(p []float64) (*transform.Matrix, error) {
	m := transform.IdentityMatrix(2)
	m.Set(0, 1, 1.0/1000)
	return m, nil
}

func (bendX) Inverse() (transform.Transform, error) { return nil, transform.ErrNoInverse }

func TestTransformedCornerSampling(t *testing.T) {
	e := mustNew(t, []float64{0, 0}, []float64{100, 100})
	got, err := Transformed(bendX{}, e, nil)
	if err != nil {
		t.Fatalf("Transformed: %v", err)
	}
	if got.Lower(0) != 0 || math.Abs(got.Upper(0)-100.1) > 1e-9 {
		t.Errorf("x axis = [%g, %g], want [0, 100.1]", got.Lower(0), got.Upper(0))
	}
	if got.Lower(1) != 0 || got.Upper(1) != 100 {
		t.Errorf("y axis = [%g, %g], want [0, 100]", got.Lower(1), got.Upper(1))
	}
}

// shell hides a transform's concrete type, forcing the corner-sampling
// path even for affine maps.
type shell struct{ tr transform.Transform }

func (s shell) SourceDim() int                            { return s.tr.SourceDim() }
func (s shell) TargetDim() int                            { return s.tr.TargetDim() }
func (s shell) IsIdentity() bool                          { return s.tr.IsIdentity() }
func (s shell) Apply(dst, src []float64) error            { return s.tr.Apply(dst, src) }
func (s shell) Derivative(p []float64) (*transform.Matrix, error) { return s.tr.Derivative(p) }
func (s shell) Inverse() (transform.Transform, error)     { return s.tr.Inverse() }

func TestTransformedSamplingMatchesAffinePath(t *testing.T) {
	e := mustNew(t, []float64{0, 0}, []float64{512, 256})
	tr := transform.ScaleOffset(0.5, -0.5, 10, 20)

	exact, err := Transformed(tr, e, nil)
	if err != nil {
		t.Fatalf("Transformed (exact): %v", err)
	}
	sampled, err := Transformed(shell{tr}, e, nil)
	if err != nil {
		t.Fatalf("Transformed (sampled): %v", err)
	}
	for i := 0; i < 2; i++ {
		if sampled.Lower(i) != exact.Lower(i) || sampled.Upper(i) != exact.Upper(i) {
			t.Errorf("axis %d sampled [%g, %g] vs exact [%g, %g]",
				i, sampled.Lower(i), sampled.Upper(i), exact.Lower(i), exact.Upper(i))
		}
	}
}

func TestTransformedNaNScale(t *testing.T) {
	// Degenerate axis: unknown scale on y yields NaN bounds to repair later.
	m := transform.IdentityMatrix(3)
	m.Set(1, 1, math.NaN())
	tr, err := transform.NewAffine(m)
	if err != nil {
		t.Fatalf("NewAffine: %v", err)
	}
	e := mustNew(t, []float64{0, 0}, []float64{10, 0})
	got, err := Transformed(tr, e, nil)
	if err != nil {
		t.Fatalf("Transformed: %v", err)
	}
	if !math.IsNaN(got.Lower(1)) || !math.IsNaN(got.Upper(1)) {
		t.Errorf("y axis = [%g, %g], want NaN bounds", got.Lower(1), got.Upper(1))
	}
	if got.Lower(0) != 0 || got.Upper(0) != 10 {
		t.Errorf("x axis = [%g, %g], want [0, 10]", got.Lower(0), got.Upper(0))
	}
}

func TestGeographicBound(t *testing.T) {
	e, err := New([]float64{-10, 40}, []float64{5, 55}, crs.ForCode(4326))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, ok := e.GeographicBound()
	if !ok {
		t.Fatal("expected a geographic bound for EPSG:4326")
	}
	if b.Min[0] != -10 || b.Max[1] != 55 {
		t.Errorf("bound = %v", b)
	}

	m, err := New([]float64{0, 0}, []float64{1, 1}, crs.ForCode(3857))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.GeographicBound(); ok {
		t.Error("EPSG:3857 should not report a geographic bound")
	}
}
