// Package cost builds affinity matrices between the label sets of two
// annotations covering the same temporal extent.
package cost

import (
	"fmt"
	"slices"

	"github.com/okian/nameprop/internal/domain/annotation"
	"gonum.org/v1/gonum/mat"
)

// Matrix maps (row label, column label) pairs to non-negative affinities.
// Every pair is defined; pairs without evidence score 0.
type Matrix struct {
	rows   []annotation.Label
	cols   []annotation.Label
	rowIdx map[annotation.Label]int
	colIdx map[annotation.Label]int
	// data is nil when either dimension is zero.
	data *mat.Dense
}

// NewMatrix returns a zero matrix over the given labels, kept in the order
// given.
func NewMatrix(rows, cols []annotation.Label) *Matrix {
	m := &Matrix{
		rows:   slices.Clone(rows),
		cols:   slices.Clone(cols),
		rowIdx: index(rows),
		colIdx: index(cols),
	}
	if len(rows) > 0 && len(cols) > 0 {
		m.data = mat.NewDense(len(rows), len(cols), nil)
	}
	return m
}

func index(labels []annotation.Label) map[annotation.Label]int {
	idx := make(map[annotation.Label]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	return idx
}

// Rows returns the row labels.
func (m *Matrix) Rows() []annotation.Label { return slices.Clone(m.rows) }

// Cols returns the column labels.
func (m *Matrix) Cols() []annotation.Label { return slices.Clone(m.cols) }

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) { return len(m.rows), len(m.cols) }

// Empty reports whether the matrix has no cell.
func (m *Matrix) Empty() bool { return m.data == nil }

// At returns the affinity of (row, col). Labels outside the matrix score 0.
func (m *Matrix) At(row, col annotation.Label) float64 {
	i, ok := m.rowIdx[row]
	if !ok {
		return 0
	}
	j, ok := m.colIdx[col]
	if !ok {
		return 0
	}
	return m.data.At(i, j)
}

// Row returns a copy of the i-th row.
func (m *Matrix) Row(i int) []float64 {
	if m.data == nil {
		return nil
	}
	return mat.Row(nil, i, m.data)
}

// Set stores v at (row, col). It panics when either label is not part of
// the matrix.
func (m *Matrix) Set(row, col annotation.Label, v float64) {
	i, j := m.cell(row, col)
	m.data.Set(i, j, v)
}

// add accumulates v into (row, col).
func (m *Matrix) add(row, col annotation.Label, v float64) {
	i, j := m.cell(row, col)
	m.data.Set(i, j, m.data.At(i, j)+v)
}

func (m *Matrix) cell(row, col annotation.Label) (int, int) {
	i, ok := m.rowIdx[row]
	if !ok {
		panic(fmt.Sprintf("cost: row label %s not in matrix", row))
	}
	j, ok := m.colIdx[col]
	if !ok {
		panic(fmt.Sprintf("cost: column label %s not in matrix", col))
	}
	return i, j
}

// Transpose returns a new matrix with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	t := NewMatrix(m.cols, m.rows)
	if m.data != nil {
		t.data.Copy(m.data.T())
	}
	return t
}

func (m *Matrix) String() string {
	if m.data == nil {
		return fmt.Sprintf("cost.Matrix(%dx%d)", len(m.rows), len(m.cols))
	}
	return fmt.Sprintf("cost.Matrix(%dx%d)\n%v", len(m.rows), len(m.cols), mat.Formatted(m.data))
}
