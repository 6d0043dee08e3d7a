package mat

import (
	"errors"
	"math"
)

// Factorization errors.
var (
	// ErrNotPositiveDefinite indicates Cholesky factorization hit a
	// non-positive pivot.
	ErrNotPositiveDefinite = errors.New("mat: matrix is not positive definite")

	// ErrSingular indicates Gauss-Jordan elimination found no usable pivot.
	ErrSingular = errors.New("mat: matrix is singular")

	// ErrNotSquare indicates a factorization was requested on a rectangular
	// matrix.
	ErrNotSquare = errors.New("mat: matrix is not square")
)

// Cholesky factors a symmetric positive-definite matrix as L·Lᵗ and returns
// the lower-triangular factor L. Only the lower triangle of m is read.
func Cholesky(m *Dense) (*Dense, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	n := m.rows
	l := Zeros(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m.data[i*n+j]
			for k := 0; k < j; k++ {
				sum -= l.data[i*n+k] * l.data[j*n+k]
			}
			if i == j {
				if sum <= 0 {
					return nil, ErrNotPositiveDefinite
				}
				l.data[i*n+i] = math.Sqrt(sum)
			} else {
				l.data[i*n+j] = sum / l.data[j*n+j]
			}
		}
	}
	return l, nil
}

// SolveForward solves L·y = b for lower-triangular L by forward substitution.
func SolveForward(l *Dense, b []float64) []float64 {
	n := l.rows
	if l.cols != n || len(b) != n {
		panic("mat: SolveForward dimension mismatch")
	}
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= l.data[i*n+j] * y[j]
		}
		y[i] = sum / l.data[i*n+i]
	}
	return y
}

// SolveBackward solves Lᵗ·x = y for lower-triangular L by back substitution.
func SolveBackward(l *Dense, y []float64) []float64 {
	n := l.rows
	if l.cols != n || len(y) != n {
		panic("mat: SolveBackward dimension mismatch")
	}
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= l.data[j*n+i] * x[j]
		}
		x[i] = sum / l.data[i*n+i]
	}
	return x
}

// SolveCholesky solves (L·Lᵗ)·x = b given the lower Cholesky factor L.
func SolveCholesky(l *Dense, b []float64) []float64 {
	return SolveBackward(l, SolveForward(l, b))
}

// Inverse computes the inverse of a square matrix by Gauss-Jordan
// elimination with partial pivoting.
func Inverse(m *Dense) (*Dense, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	n := m.rows
	a := m.Clone()
	inv := Identity(n)

	for col := 0; col < n; col++ {
		// Pick the largest remaining pivot in this column.
		pivot := col
		maxAbs := math.Abs(a.data[col*n+col])
		for r := col + 1; r < n; r++ {
			if abs := math.Abs(a.data[r*n+col]); abs > maxAbs {
				maxAbs = abs
				pivot = r
			}
		}
		if maxAbs < 1e-14 {
			return nil, ErrSingular
		}
		if pivot != col {
			swapRows(a, pivot, col)
			swapRows(inv, pivot, col)
		}

		p := a.data[col*n+col]
		for j := 0; j < n; j++ {
			a.data[col*n+j] /= p
			inv.data[col*n+j] /= p
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := a.data[r*n+col]
			if f == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				a.data[r*n+j] -= f * a.data[col*n+j]
				inv.data[r*n+j] -= f * inv.data[col*n+j]
			}
		}
	}
	return inv, nil
}

func swapRows(m *Dense, i, j int) {
	n := m.cols
	for k := 0; k < n; k++ {
		m.data[i*n+k], m.data[j*n+k] = m.data[j*n+k], m.data[i*n+k]
	}
}
