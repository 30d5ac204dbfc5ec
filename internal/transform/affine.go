package transform

import "fmt"

// Affine is a Transform backed by a homogeneous matrix: a
// (TargetDim+1)×(SourceDim+1) matrix whose last row is [0 … 0 1].
// This is the N-dimensional generalization of the six-coefficient
// GDAL geotransform.
type Affine struct {
	m *Matrix
}

var _ Transform = (*Affine)(nil)

// NewAffine wraps a homogeneous matrix. The matrix must have an affine
// last row.
func NewAffine(m *Matrix) (*Affine, error) {
	if m.Rows() < 2 || m.Cols() < 2 {
		return nil, fmt.Errorf("transform: homogeneous matrix must be at least 2×2, got %d×%d", m.Rows(), m.Cols())
	}
	if !m.IsAffine() {
		return nil, fmt.Errorf("transform: last matrix row is not [0 … 0 1]")
	}
	return &Affine{m: m.Clone()}, nil
}

// Identity returns the identity transform on dim dimensions.
func Identity(dim int) *Affine {
	return &Affine{m: IdentityMatrix(dim + 1)}
}

// Translation returns the affine transform adding the given offsets.
func Translation(offsets ...float64) *Affine {
	n := len(offsets)
	m := IdentityMatrix(n + 1)
	for i, off := range offsets {
		m.Set(i, n, off)
	}
	return &Affine{m: m}
}

// Scale returns the affine transform multiplying each axis by its factor.
func Scale(factors ...float64) *Affine {
	n := len(factors)
	m := IdentityMatrix(n + 1)
	for i, f := range factors {
		m.Set(i, i, f)
	}
	return &Affine{m: m}
}

// ScaleOffset returns the 2-D affine transform with diagonal scale
// (sx, sy) and translation (tx, ty) — the common geotransform shape.
func ScaleOffset(sx, sy, tx, ty float64) *Affine {
	m := IdentityMatrix(3)
	m.Set(0, 0, sx)
	m.Set(1, 1, sy)
	m.Set(0, 2, tx)
	m.Set(1, 2, ty)
	return &Affine{m: m}
}

// Matrix returns a copy of the homogeneous matrix.
func (a *Affine) Matrix() *Matrix { return a.m.Clone() }

// SourceDim returns the number of source ordinates.
func (a *Affine) SourceDim() int { return a.m.Cols() - 1 }

// TargetDim returns the number of target ordinates.
func (a *Affine) TargetDim() int { return a.m.Rows() - 1 }

// IsIdentity reports whether the transform is exactly the identity.
func (a *Affine) IsIdentity() bool { return a.m.IsIdentity() }

// Apply evaluates the affine map. dst may alias src.
func (a *Affine) Apply(dst, src []float64) error {
	if err := checkDims(a, dst, src); err != nil {
		return err
	}
	srcDim, tgtDim := a.SourceDim(), a.TargetDim()
	out := make([]float64, tgtDim)
	for i := 0; i < tgtDim; i++ {
		acc := a.m.At(i, srcDim)
		for j := 0; j < srcDim; j++ {
			acc += a.m.At(i, j) * src[j]
		}
		out[i] = acc
	}
	copy(dst, out)
	return nil
}

// Derivative returns the linear part of the matrix; the point is ignored.
func (a *Affine) Derivative([]float64) (*Matrix, error) {
	srcDim, tgtDim := a.SourceDim(), a.TargetDim()
	d := NewMatrix(tgtDim, srcDim)
	for i := 0; i < tgtDim; i++ {
		for j := 0; j < srcDim; j++ {
			d.Set(i, j, a.m.At(i, j))
		}
	}
	return d, nil
}

// Inverse returns the inverse affine transform. It fails with ErrNoInverse
// when the matrix is non-square or singular.
func (a *Affine) Inverse() (Transform, error) {
	if a.m.Rows() != a.m.Cols() {
		return nil, fmt.Errorf("%w: %d source vs %d target dimensions", ErrNoInverse, a.SourceDim(), a.TargetDim())
	}
	inv, err := a.m.Inverse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInverse, err)
	}
	return &Affine{m: inv}, nil
}

func (a *Affine) String() string {
	return "Affine\n" + a.m.String()
}
