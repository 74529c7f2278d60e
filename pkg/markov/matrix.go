package markov

import (
	"fmt"
	"math"
)

// Tolerance is the absolute difference under which two matrix entries are
// considered equal by the diagnostic methods.
const Tolerance = 0.01

// Matrix is a dense square matrix of float64 values in row-major order.
// The zero value is an empty 0x0 matrix.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix returns an n x n zero matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]float64, n*n)}
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n)
	for i := range n {
		m.data[i*n+i] = 1
	}
	return m
}

// FromCounts converts a square integer count matrix, such as a ruleset's
// transition matrix, into a Matrix. It panics if counts is not square.
func FromCounts(counts [][]int) *Matrix {
	m := NewMatrix(len(counts))
	for i, row := range counts {
		if len(row) != m.n {
			panic(fmt.Sprintf("markov: row %d has %d columns, want %d", i, len(row), m.n))
		}
		for j, c := range row {
			m.data[i*m.n+j] = float64(c)
		}
	}
	return m
}

// Size returns the number of rows (and columns).
func (m *Matrix) Size() int { return m.n }

// At returns entry (i, j).
func (m *Matrix) At(i, j int) float64 { return m.data[i*m.n+j] }

// Set assigns entry (i, j).
func (m *Matrix) Set(i, j int, v float64) { m.data[i*m.n+j] = v }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	return append([]float64(nil), m.data[i*m.n:(i+1)*m.n]...)
}

// Rows returns a copy of the matrix as a slice of rows.
func (m *Matrix) Rows() [][]float64 {
	out := make([][]float64, m.n)
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{n: m.n, data: append([]float64(nil), m.data...)}
}

// Mul returns the product m*o. It panics if the sizes differ.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.n != o.n {
		panic(fmt.Sprintf("markov: size mismatch %d x %d", m.n, o.n))
	}
	n := m.n
	out := NewMatrix(n)
	for i := range n {
		for k := range n {
			a := m.data[i*n+k]
			if a == 0 {
				continue
			}
			for j := range n {
				out.data[i*n+j] += a * o.data[k*n+j]
			}
		}
	}
	return out
}

// Pow returns m^k for k >= 0 by repeated squaring. Pow(0) is the identity.
func (m *Matrix) Pow(k int) *Matrix {
	if k < 0 {
		panic("markov: negative power")
	}
	result := Identity(m.n)
	base := m.Clone()
	for k > 0 {
		if k&1 == 1 {
			result = result.Mul(base)
		}
		k >>= 1
		if k > 0 {
			base = base.Mul(base)
		}
	}
	return result
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.n)
	for i := range m.n {
		for j := range m.n {
			out.data[j*m.n+i] = m.data[i*m.n+j]
		}
	}
	return out
}

// Normalize divides every entry by the sum of the first row. For a ruleset's
// transition matrix all rows share that sum, so the result is row-stochastic.
// A matrix whose first row sums to zero is returned unchanged.
func (m *Matrix) Normalize() *Matrix {
	out := m.Clone()
	if m.n == 0 {
		return out
	}
	total := 0.0
	for _, v := range m.data[:m.n] {
		total += v
	}
	if total == 0 {
		return out
	}
	for i := range out.data {
		out.data[i] /= total
	}
	return out
}

// RowSum returns the sum of row i.
func (m *Matrix) RowSum(i int) float64 {
	s := 0.0
	for _, v := range m.data[i*m.n : (i+1)*m.n] {
		s += v
	}
	return s
}

// ColSum returns the sum of column j.
func (m *Matrix) ColSum(j int) float64 {
	s := 0.0
	for i := range m.n {
		s += m.data[i*m.n+j]
	}
	return s
}

// OnesOnDiagonal counts diagonal entries equal to 1. For a stochastic matrix
// these are absorbing states.
func (m *Matrix) OnesOnDiagonal() int {
	count := 0
	for i := range m.n {
		if near(m.At(i, i), 1) {
			count++
		}
	}
	return count
}

// OnesOffDiagonal counts off-diagonal entries equal to 1: states that move to
// one other state with certainty.
func (m *Matrix) OnesOffDiagonal() int {
	count := 0
	for i := range m.n {
		for j := range m.n {
			if i != j && near(m.At(i, j), 1) {
				count++
			}
		}
	}
	return count
}

// NoZeros reports whether every entry is strictly positive.
func (m *Matrix) NoZeros() bool {
	for _, v := range m.data {
		if v <= 0 {
			return false
		}
	}
	return true
}

// ColumnsUniform reports whether every column holds a single value, that is
// every row of m is the same distribution.
func (m *Matrix) ColumnsUniform() bool {
	for j := range m.n {
		first := m.At(0, j)
		for i := 1; i < m.n; i++ {
			if !near(m.At(i, j), first) {
				return false
			}
		}
	}
	return true
}

// CellsUniform reports whether every entry equals entry (0, 0).
func (m *Matrix) CellsUniform() bool {
	if m.n == 0 {
		return true
	}
	first := m.data[0]
	for _, v := range m.data {
		if !near(v, first) {
			return false
		}
	}
	return true
}

// Degrees returns, for every state, the weight flowing in minus the weight
// flowing out (column sum minus row sum).
func (m *Matrix) Degrees() []float64 {
	out := make([]float64, m.n)
	for i := range out {
		out[i] = m.ColSum(i) - m.RowSum(i)
	}
	return out
}

func near(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}
