package transform

import (
	"fmt"
	"math"
	"strings"
)

// Matrix is a dense row-major matrix of float64 values. Affine transforms
// use the homogeneous form: an (m+1)×(n+1) matrix whose last row is
// [0 … 0 1], mapping n source ordinates to m target ordinates.
type Matrix struct {
	rows, cols int
	v          []float64
}

// NewMatrix returns a zero matrix with the given shape.
func NewMatrix(rows, cols int) *Matrix {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("transform: invalid matrix shape %d×%d", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, v: make([]float64, rows*cols)}
}

// IdentityMatrix returns the n×n identity.
func IdentityMatrix(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.v[i*n+i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the element at (row, col).
func (m *Matrix) At(row, col int) float64 { return m.v[row*m.cols+col] }

// Set stores val at (row, col).
func (m *Matrix) Set(row, col int, val float64) { m.v[row*m.cols+col] = val }

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{rows: m.rows, cols: m.cols, v: make([]float64, len(m.v))}
	copy(c.v, m.v)
	return c
}

// Equal reports whether the two matrices have the same shape and elements.
// NaN elements compare equal to NaN (this is value identity, not IEEE ==).
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i, a := range m.v {
		b := o.v[i]
		if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
			return false
		}
	}
	return true
}

// Mul returns m·o. The column count of m must equal the row count of o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.cols != o.rows {
		panic(fmt.Sprintf("transform: cannot multiply %d×%d by %d×%d", m.rows, m.cols, o.rows, o.cols))
	}
	r := NewMatrix(m.rows, o.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.v[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < o.cols; j++ {
				r.v[i*o.cols+j] += a * o.v[k*o.cols+j]
			}
		}
	}
	return r
}

// Inverse returns the inverse of a square matrix using Gauss-Jordan
// elimination with partial pivoting. It fails if the matrix is singular.
func (m *Matrix) Inverse() (*Matrix, error) {
	if m.rows != m.cols {
		return nil, fmt.Errorf("transform: cannot invert %d×%d matrix", m.rows, m.cols)
	}
	n := m.rows
	a := m.Clone()
	inv := IdentityMatrix(n)
	for col := 0; col < n; col++ {
		// Pivot on the largest magnitude in this column.
		pivot := col
		best := math.Abs(a.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(a.At(r, col)); v > best {
				best, pivot = v, r
			}
		}
		if best == 0 {
			return nil, fmt.Errorf("transform: singular matrix (column %d)", col)
		}
		if pivot != col {
			a.swapRows(col, pivot)
			inv.swapRows(col, pivot)
		}
		p := a.At(col, col)
		for j := 0; j < n; j++ {
			a.Set(col, j, a.At(col, j)/p)
			inv.Set(col, j, inv.At(col, j)/p)
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := a.At(r, col)
			if f == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				a.Set(r, j, a.At(r, j)-f*a.At(col, j))
				inv.Set(r, j, inv.At(r, j)-f*inv.At(col, j))
			}
		}
	}
	return inv, nil
}

func (m *Matrix) swapRows(i, j int) {
	ri := m.v[i*m.cols : (i+1)*m.cols]
	rj := m.v[j*m.cols : (j+1)*m.cols]
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}

// IsAffine reports whether the last row is [0 … 0 1], i.e. the matrix is
// the homogeneous form of an affine map.
func (m *Matrix) IsAffine() bool {
	last := m.rows - 1
	for j := 0; j < m.cols-1; j++ {
		if m.At(last, j) != 0 {
			return false
		}
	}
	return m.At(last, m.cols-1) == 1
}

// IsIdentity reports whether the matrix is square and equal to the identity.
func (m *Matrix) IsIdentity() bool {
	if m.rows != m.cols {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if m.At(i, j) != want {
				return false
			}
		}
	}
	return true
}

// RowNorm returns the Euclidean norm of the first n elements of the given
// row. For a homogeneous affine matrix with n = Cols()-1 this is the
// resolution along the corresponding target axis.
func (m *Matrix) RowNorm(row, n int) float64 {
	var sum float64
	for j := 0; j < n; j++ {
		v := m.At(row, j)
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (m *Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.rows; i++ {
		b.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%g", m.At(i, j))
		}
		b.WriteString("]")
		if i < m.rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
