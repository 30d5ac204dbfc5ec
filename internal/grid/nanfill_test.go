package grid

import (
	"math"
	"testing"

	"github.com/cartoset/gridref/internal/envelope"
	"github.com/cartoset/gridref/internal/transform"
)

// nanScale3 is the 3-D referencing with an unknown scale on the third
// axis: x' = x/2 + 10, y' = −y/2 + 20, z' = NaN·z + 42.
func nanScale3(t *testing.T) *transform.Affine {
	t.Helper()
	m := transform.IdentityMatrix(4)
	m.Set(0, 0, 0.5)
	m.Set(1, 1, -0.5)
	m.Set(2, 2, math.NaN())
	m.Set(0, 3, 10)
	m.Set(1, 3, 20)
	m.Set(2, 3, 42)
	tr, err := transform.NewAffine(m)
	if err != nil {
		t.Fatalf("NewAffine: %v", err)
	}
	return tr
}

func TestEnvelopeBackfillFromTranslation(t *testing.T) {
	extent := MustExtent([]int64{0, 0, 0}, []int64{511, 255, 0}, nil)
	g, err := NewGeometry(extent, AnchorCorner, nanScale3(t), nil)
	if err != nil {
		t.Fatalf("NewGeometry: %v", err)
	}
	env, err := g.Envelope()
	if err != nil {
		t.Fatalf("Envelope: %v", err)
	}
	// The degenerate axis maps to NaN bounds; under the corner convention
	// the lower bound is recovered from the translation term.
	if env.Lower(2) != 42 {
		t.Errorf("axis 2 lower = %g, want 42", env.Lower(2))
	}
	if !math.IsNaN(env.Upper(2)) {
		t.Errorf("axis 2 upper = %g, want NaN (span unknown)", env.Upper(2))
	}
	// The well-defined axes are untouched.
	if env.Lower(0) != 10 || env.Upper(0) != 266 {
		t.Errorf("axis 0 = [%g, %g], want [10, 266]", env.Lower(0), env.Upper(0))
	}
	if env.Lower(1) != -108 || env.Upper(1) != 20 {
		t.Errorf("axis 1 = [%g, %g], want [-108, 20]", env.Lower(1), env.Upper(1))
	}
}

// dropY forwards x and loses y, standing in for a grid-to-grid mapping
// whose second axis cannot be evaluated.
type dropY struct{}

func (dropY) SourceDim() int   { return 2 }
func (dropY) TargetDim() int   { return 2 }
func (dropY) IsIdentity() bool { return false }

func (dropY) Apply(dst, src []float64) error {
	dst[0], dst[1] = src[0], math.NaN()
	return nil
}

func (dropY) Derivative([]float64) (*transform.Matrix, error) {
	m := transform.NewMatrix(2, 2)
	m.Set(0, 0, 1)
	return m, nil
}

func (dropY) Inverse() (transform.Transform, error) { return nil, transform.ErrNoInverse }

func TestDeriveBackfillsFromParentEnvelope(t *testing.T) {
	g := worldGrid(t)
	extent, _ := g.Extent()

	// The composed corner transform is opaque, so no translation term can
	// be read; the NaN axis is filled from the parent envelope instead.
	d, err := g.Derive(extent, dropY{})
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	env, err := d.Envelope()
	if err != nil {
		t.Fatalf("Envelope: %v", err)
	}
	if env.Lower(1) != -108 || env.Upper(1) != 20 {
		t.Errorf("axis 1 = [%g, %g], want the parent's [-108, 20]", env.Lower(1), env.Upper(1))
	}
	if env.Lower(1) > env.Upper(1) {
		t.Error("backfill inverted the bound order")
	}
	if env.Lower(0) != 10 || env.Upper(0) != 266 {
		t.Errorf("axis 0 = [%g, %g], want [10, 266]", env.Lower(0), env.Upper(0))
	}
}

func TestBackfillCenterAnchor(t *testing.T) {
	m := transform.IdentityMatrix(2)
	m.Set(0, 0, math.NaN())
	m.Set(0, 1, 5)
	tr, err := transform.NewAffine(m)
	if err != nil {
		t.Fatalf("NewAffine: %v", err)
	}

	tests := []struct {
		name    string
		lo, hi  float64
		wantLo  float64
		wantHi  float64
	}{
		{"both missing collapse onto the term", math.NaN(), math.NaN(), 5, 5},
		{"lower mirrored around the term", math.NaN(), 8, 2, 8},
		{"upper mirrored around the term", 3, math.NaN(), 3, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := envelope.New([]float64{tt.lo}, []float64{tt.hi}, nil)
			if err != nil {
				t.Fatalf("envelope.New: %v", err)
			}
			got := backfillEnvelope(env, tr, AnchorCenter, nil)
			if got.Lower(0) != tt.wantLo || got.Upper(0) != tt.wantHi {
				t.Errorf("backfill [%g, %g] = [%g, %g], want [%g, %g]",
					tt.lo, tt.hi, got.Lower(0), got.Upper(0), tt.wantLo, tt.wantHi)
			}
		})
	}
}

func TestBackfillRefusesInvertedFallback(t *testing.T) {
	m := transform.IdentityMatrix(2)
	m.Set(0, 0, math.NaN())
	m.Set(0, 1, math.NaN()) // no translation term to read either
	tr, err := transform.NewAffine(m)
	if err != nil {
		t.Fatalf("NewAffine: %v", err)
	}
	env, err := envelope.New([]float64{math.NaN()}, []float64{4}, nil)
	if err != nil {
		t.Fatalf("envelope.New: %v", err)
	}
	fallback, err := envelope.New([]float64{10}, []float64{12}, nil)
	if err != nil {
		t.Fatalf("envelope.New: %v", err)
	}
	// Filling the lower bound from the fallback would put it above the
	// existing upper bound; the repair is skipped and the input returned.
	if got := backfillEnvelope(env, tr, AnchorCorner, fallback); got != env {
		t.Errorf("got [%g, %g], want the original envelope unchanged", got.Lower(0), got.Upper(0))
	}
}
