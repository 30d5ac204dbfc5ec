package transform

import "fmt"

// Concatenation applies a sequence of transforms in order. Use Compose to
// build one; it flattens nested concatenations, drops identity steps and
// merges adjacent affine steps, so a Concatenation never holds fewer than
// two steps.
type Concatenation struct {
	steps []Transform
}

var _ Transform = (*Concatenation)(nil)

// Compose returns the transform applying a first, then b. Dimension
// mismatches between a's target and b's source are an error. When either
// operand is the identity the other is returned unchanged, and adjacent
// affine steps collapse into a single Affine.
func Compose(a, b Transform) (Transform, error) {
	if a.TargetDim() != b.SourceDim() {
		return nil, fmt.Errorf("transform: cannot compose %d→%d with %d→%d",
			a.SourceDim(), a.TargetDim(), b.SourceDim(), b.TargetDim())
	}
	steps := append(Steps(a), Steps(b)...)
	merged := make([]Transform, 0, len(steps))
	for _, s := range steps {
		if s.IsIdentity() {
			continue
		}
		if n := len(merged); n > 0 {
			if prev, ok := merged[n-1].(*Affine); ok {
				if cur, ok := s.(*Affine); ok {
					// cur applied after prev: matrix product cur·prev.
					m := cur.m.Mul(prev.m)
					merged[n-1] = &Affine{m: m}
					continue
				}
			}
		}
		merged = append(merged, s)
	}
	switch len(merged) {
	case 0:
		return Identity(a.SourceDim()), nil
	case 1:
		return merged[0], nil
	default:
		return &Concatenation{steps: merged}, nil
	}
}

// MustCompose is Compose for statically known-compatible operands.
func MustCompose(a, b Transform) Transform {
	t, err := Compose(a, b)
	if err != nil {
		panic(err)
	}
	return t
}

// SourceDim returns the source dimension of the first step.
func (c *Concatenation) SourceDim() int { return c.steps[0].SourceDim() }

// TargetDim returns the target dimension of the last step.
func (c *Concatenation) TargetDim() int { return c.steps[len(c.steps)-1].TargetDim() }

// IsIdentity always reports false: identity steps are elided by Compose.
func (c *Concatenation) IsIdentity() bool { return false }

// Apply evaluates each step in order.
func (c *Concatenation) Apply(dst, src []float64) error {
	if err := checkDims(c, dst, src); err != nil {
		return err
	}
	cur := make([]float64, len(src))
	copy(cur, src)
	for _, s := range c.steps {
		next := make([]float64, s.TargetDim())
		if err := s.Apply(next, cur); err != nil {
			return err
		}
		cur = next
	}
	copy(dst, cur)
	return nil
}

// Derivative applies the chain rule: the product of each step's Jacobian,
// each evaluated at the image of the point under the preceding steps.
func (c *Concatenation) Derivative(point []float64) (*Matrix, error) {
	if len(point) != c.SourceDim() {
		return nil, fmt.Errorf("transform: point has %d ordinates, want %d", len(point), c.SourceDim())
	}
	cur := make([]float64, len(point))
	copy(cur, point)
	var acc *Matrix
	for _, s := range c.steps {
		j, err := s.Derivative(cur)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = j
		} else {
			acc = j.Mul(acc)
		}
		next := make([]float64, s.TargetDim())
		if err := s.Apply(next, cur); err != nil {
			return nil, err
		}
		cur = next
	}
	return acc, nil
}

// Inverse returns the concatenation of each step's inverse, in reverse
// order.
func (c *Concatenation) Inverse() (Transform, error) {
	inv := make([]Transform, len(c.steps))
	for i, s := range c.steps {
		si, err := s.Inverse()
		if err != nil {
			return nil, err
		}
		inv[len(c.steps)-1-i] = si
	}
	return &Concatenation{steps: inv}, nil
}
