package mat

import (
	"fmt"
	"math"
)

// Dense is a row-major dense matrix. The zero value is not usable; obtain
// instances through New, Zeros or Identity so dimensions and backing storage
// always agree.
type Dense struct {
	rows, cols int
	data       []float64
}

// New builds a rows×cols matrix from row-major data. The data slice is
// copied, not retained. Panics if len(data) != rows*cols.
func New(rows, cols int, data []float64) *Dense {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("mat: non-positive dimensions %dx%d", rows, cols))
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("mat: %dx%d matrix needs %d values, got %d", rows, cols, rows*cols, len(data)))
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &Dense{rows: rows, cols: cols, data: d}
}

// Zeros returns a rows×cols matrix of zeros.
func Zeros(rows, cols int) *Dense {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("mat: non-positive dimensions %dx%d", rows, cols))
	}
	return &Dense{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Dense {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

// Dims returns the row and column counts.
func (m *Dense) Dims() (rows, cols int) { return m.rows, m.cols }

// At returns the element at row i, column j.
func (m *Dense) At(i, j int) float64 {
	m.checkIndex(i, j)
	return m.data[i*m.cols+j]
}

// Set assigns the element at row i, column j.
func (m *Dense) Set(i, j int, v float64) {
	m.checkIndex(i, j)
	m.data[i*m.cols+j] = v
}

func (m *Dense) checkIndex(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("mat: index (%d,%d) out of range for %dx%d matrix", i, j, m.rows, m.cols))
	}
}

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	d := make([]float64, len(m.data))
	copy(d, m.data)
	return &Dense{rows: m.rows, cols: m.cols, data: d}
}

// Add returns m + other.
func (m *Dense) Add(other *Dense) *Dense {
	m.checkSame(other, "Add")
	out := m.Clone()
	for i, v := range other.data {
		out.data[i] += v
	}
	return out
}

// Sub returns m - other.
func (m *Dense) Sub(other *Dense) *Dense {
	m.checkSame(other, "Sub")
	out := m.Clone()
	for i, v := range other.data {
		out.data[i] -= v
	}
	return out
}

func (m *Dense) checkSame(other *Dense, op string) {
	if m.rows != other.rows || m.cols != other.cols {
		panic(fmt.Sprintf("mat: %s dimension mismatch %dx%d vs %dx%d", op, m.rows, m.cols, other.rows, other.cols))
	}
}

// Scale returns s * m.
func (m *Dense) Scale(s float64) *Dense {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// Mul returns the matrix product m * other.
func (m *Dense) Mul(other *Dense) *Dense {
	if m.cols != other.rows {
		panic(fmt.Sprintf("mat: Mul inner dimension mismatch %dx%d vs %dx%d", m.rows, m.cols, other.rows, other.cols))
	}
	out := Zeros(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < other.cols; j++ {
				out.data[i*out.cols+j] += a * other.data[k*other.cols+j]
			}
		}
	}
	return out
}

// MulVec returns the matrix-vector product m * v.
func (m *Dense) MulVec(v []float64) []float64 {
	if m.cols != len(v) {
		panic(fmt.Sprintf("mat: MulVec dimension mismatch %dx%d vs vector of length %d", m.rows, m.cols, len(v)))
	}
	out := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		sum := 0.0
		for j := 0; j < m.cols; j++ {
			sum += m.data[i*m.cols+j] * v[j]
		}
		out[i] = sum
	}
	return out
}

// T returns the transpose.
func (m *Dense) T() *Dense {
	out := Zeros(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*out.cols+i] = m.data[i*m.cols+j]
		}
	}
	return out
}

// NormFrob returns the Frobenius norm.
func (m *Dense) NormFrob() float64 {
	sum := 0.0
	for _, v := range m.data {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) []float64 {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("mat: row %d out of range for %dx%d matrix", i, m.rows, m.cols))
	}
	out := make([]float64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// SetRow assigns row i from v.
func (m *Dense) SetRow(i int, v []float64) {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("mat: row %d out of range for %dx%d matrix", i, m.rows, m.cols))
	}
	if len(v) != m.cols {
		panic(fmt.Sprintf("mat: SetRow length %d for %dx%d matrix", len(v), m.rows, m.cols))
	}
	copy(m.data[i*m.cols:(i+1)*m.cols], v)
}
