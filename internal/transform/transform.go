// Package transform provides the math-transform abstraction used by the
// grid-referencing core: functions from N-dimensional grid coordinates to
// M-dimensional "real world" coordinates, with forward/inverse evaluation,
// local derivatives, composition, and decomposition into elementary steps.
//
// The package supplies one concrete family (affine maps backed by a
// homogeneous Matrix) and two combinators (Concatenation, PassThrough).
// Anything else — map projections, datum shifts — is expected to arrive
// from outside as an opaque Transform implementation.
package transform

import (
	"errors"
	"fmt"
)

// ErrNoInverse is returned by Inverse when a transform cannot be inverted.
var ErrNoInverse = errors.New("transform: not invertible")

// Transform maps points from a source coordinate space to a target space.
//
// Implementations must be immutable and safe for concurrent use.
type Transform interface {
	// SourceDim returns the number of source ordinates.
	SourceDim() int

	// TargetDim returns the number of target ordinates.
	TargetDim() int

	// Apply evaluates the transform at src, writing TargetDim ordinates
	// into dst. dst and src may alias only if the implementation documents
	// it; the package's own implementations tolerate aliasing.
	Apply(dst, src []float64) error

	// Derivative returns the Jacobian matrix (TargetDim × SourceDim)
	// evaluated at the given source point. For affine transforms the point
	// is ignored.
	Derivative(point []float64) (*Matrix, error)

	// Inverse returns the inverse transform, or ErrNoInverse.
	Inverse() (Transform, error)

	// IsIdentity reports whether the transform is exactly the identity.
	IsIdentity() bool
}

// StepKind tags the closed classification of elementary transform steps.
type StepKind int

const (
	// StepLinear is an affine step: fully described by a homogeneous matrix.
	StepLinear StepKind = iota
	// StepPassThrough leaves leading and trailing dimensions untouched and
	// applies an inner transform to the middle block.
	StepPassThrough
	// StepOpaque is any step this package cannot see inside.
	StepOpaque
)

// Step is the tagged-variant view of one elementary transform, used by the
// non-linear dimension walk. Exactly the fields relevant to the Kind are
// populated.
type Step struct {
	Kind StepKind

	// Matrix is the homogeneous matrix of a StepLinear step.
	Matrix *Matrix

	// FirstAffected and Inner describe a StepPassThrough step.
	FirstAffected int
	Inner         Transform

	// SourceDim and TargetDim are always populated.
	SourceDim int
	TargetDim int
}

// Classify returns the tagged view of a single (non-concatenated) transform.
func Classify(t Transform) Step {
	s := Step{SourceDim: t.SourceDim(), TargetDim: t.TargetDim()}
	switch tt := t.(type) {
	case *Affine:
		s.Kind = StepLinear
		s.Matrix = tt.Matrix()
	case *PassThrough:
		s.Kind = StepPassThrough
		s.FirstAffected = tt.firstAffected
		s.Inner = tt.inner
	default:
		s.Kind = StepOpaque
	}
	return s
}

// Steps returns the elementary steps of t in application order. A
// Concatenation is flattened recursively; any other transform is its own
// single step.
func Steps(t Transform) []Transform {
	if c, ok := t.(*Concatenation); ok {
		var out []Transform
		for _, s := range c.steps {
			out = append(out, Steps(s)...)
		}
		return out
	}
	return []Transform{t}
}

// Apply1 evaluates t at src and returns a freshly allocated result.
func Apply1(t Transform, src []float64) ([]float64, error) {
	dst := make([]float64, t.TargetDim())
	if err := t.Apply(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}

// LinearMatrix returns the homogeneous matrix of t if t is affine, either
// directly or as a concatenation of affine steps. The second result is
// false when t has a non-affine step.
func LinearMatrix(t Transform) (*Matrix, bool) {
	switch tt := t.(type) {
	case *Affine:
		return tt.Matrix(), true
	case *Concatenation:
		var acc *Matrix
		for _, s := range tt.steps {
			m, ok := LinearMatrix(s)
			if !ok {
				return nil, false
			}
			if acc == nil {
				acc = m
			} else {
				acc = m.Mul(acc)
			}
		}
		return acc, acc != nil
	default:
		return nil, false
	}
}

func checkDims(t Transform, dst, src []float64) error {
	if len(src) != t.SourceDim() {
		return fmt.Errorf("transform: point has %d ordinates, want %d", len(src), t.SourceDim())
	}
	if len(dst) != t.TargetDim() {
		return fmt.Errorf("transform: destination has %d ordinates, want %d", len(dst), t.TargetDim())
	}
	return nil
}
