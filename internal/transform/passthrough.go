package transform

import "fmt"

// PassThrough applies an inner transform to a contiguous block of
// dimensions while copying the leading and trailing dimensions unchanged.
// The source layout is:
//
//	[0 … firstAffected) copied, then inner.SourceDim() transformed,
//	then trailing dimensions copied.
type PassThrough struct {
	firstAffected int
	inner         Transform
	trailing      int
}

var _ Transform = (*PassThrough)(nil)

// NewPassThrough builds a pass-through transform. firstAffected and
// trailing must be non-negative; if both are zero the inner transform is
// returned directly.
func NewPassThrough(firstAffected int, inner Transform, trailing int) (Transform, error) {
	if firstAffected < 0 || trailing < 0 {
		return nil, fmt.Errorf("transform: negative pass-through padding (%d, %d)", firstAffected, trailing)
	}
	if firstAffected == 0 && trailing == 0 {
		return inner, nil
	}
	return &PassThrough{firstAffected: firstAffected, inner: inner, trailing: trailing}, nil
}

// FirstAffected returns the index of the first transformed source dimension.
func (p *PassThrough) FirstAffected() int { return p.firstAffected }

// Inner returns the transform applied to the affected block.
func (p *PassThrough) Inner() Transform { return p.inner }

// SourceDim returns the total number of source ordinates.
func (p *PassThrough) SourceDim() int {
	return p.firstAffected + p.inner.SourceDim() + p.trailing
}

// TargetDim returns the total number of target ordinates.
func (p *PassThrough) TargetDim() int {
	return p.firstAffected + p.inner.TargetDim() + p.trailing
}

// IsIdentity reports whether the inner transform is the identity.
func (p *PassThrough) IsIdentity() bool { return p.inner.IsIdentity() }

// Apply copies untouched dimensions and evaluates the inner transform on
// the affected block.
func (p *PassThrough) Apply(dst, src []float64) error {
	if err := checkDims(p, dst, src); err != nil {
		return err
	}
	innerSrc := make([]float64, p.inner.SourceDim())
	copy(innerSrc, src[p.firstAffected:p.firstAffected+p.inner.SourceDim()])
	innerDst := make([]float64, p.inner.TargetDim())
	if err := p.inner.Apply(innerDst, innerSrc); err != nil {
		return err
	}
	head := make([]float64, p.firstAffected)
	copy(head, src[:p.firstAffected])
	tail := make([]float64, p.trailing)
	copy(tail, src[len(src)-p.trailing:])

	copy(dst[:p.firstAffected], head)
	copy(dst[p.firstAffected:], innerDst)
	copy(dst[p.firstAffected+len(innerDst):], tail)
	return nil
}

// Derivative returns a block matrix: identity on the untouched dimensions,
// the inner Jacobian on the affected block.
func (p *PassThrough) Derivative(point []float64) (*Matrix, error) {
	if len(point) != p.SourceDim() {
		return nil, fmt.Errorf("transform: point has %d ordinates, want %d", len(point), p.SourceDim())
	}
	innerPt := point[p.firstAffected : p.firstAffected+p.inner.SourceDim()]
	ij, err := p.inner.Derivative(innerPt)
	if err != nil {
		return nil, err
	}
	d := NewMatrix(p.TargetDim(), p.SourceDim())
	for i := 0; i < p.firstAffected; i++ {
		d.Set(i, i, 1)
	}
	for r := 0; r < ij.Rows(); r++ {
		for c := 0; c < ij.Cols(); c++ {
			d.Set(p.firstAffected+r, p.firstAffected+c, ij.At(r, c))
		}
	}
	for i := 0; i < p.trailing; i++ {
		d.Set(p.TargetDim()-1-i, p.SourceDim()-1-i, 1)
	}
	return d, nil
}

// Inverse returns a pass-through of the inner inverse.
func (p *PassThrough) Inverse() (Transform, error) {
	inv, err := p.inner.Inverse()
	if err != nil {
		return nil, err
	}
	return &PassThrough{firstAffected: p.firstAffected, inner: inv, trailing: p.trailing}, nil
}
