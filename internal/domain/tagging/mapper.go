// Package tagging transfers identity labels from one annotation to another.
package tagging

import (
	"math"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/cost"
)

// Mapper turns a cost matrix into a mapping from row labels to column labels.
// Rows without positive evidence are left out of the mapping.
type Mapper interface {
	Map(m *cost.Matrix) map[annotation.Label]annotation.Label
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc func(m *cost.Matrix) map[annotation.Label]annotation.Label

// Map calls f(m).
func (f MapperFunc) Map(m *cost.Matrix) map[annotation.Label]annotation.Label { return f(m) }

// Hungarian returns the one-to-one mapping that maximises the total cost.
// Rows and columns need not be balanced; no column receives two rows.
func Hungarian() Mapper { return MapperFunc(hungarianMap) }

// ArgMax maps every row independently to its best column. Ties go to the
// column that sorts first; several rows may share a column.
func ArgMax() Mapper { return MapperFunc(argMaxMap) }

func hungarianMap(m *cost.Matrix) map[annotation.Label]annotation.Label {
	out := make(map[annotation.Label]annotation.Label)
	if m.Empty() {
		return out
	}
	rows, cols := m.Rows(), m.Cols()
	values := make([][]float64, len(rows))
	for i := range rows {
		values[i] = m.Row(i)
	}

	n := max(len(rows), len(cols))
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, n)
		if i >= len(rows) {
			continue
		}
		for j := range cols {
			w[i][j] = -values[i][j]
		}
	}

	for i, j := range minAssignment(w) {
		if i < len(rows) && j < len(cols) && values[i][j] > 0 {
			out[rows[i]] = cols[j]
		}
	}
	return out
}

// minAssignment solves the square assignment problem on w, minimising the
// total weight, with the O(n³) shortest augmenting path method and dual
// potentials. The result maps each row to its column.
func minAssignment(w [][]float64) []int {
	n := len(w)
	inf := math.Inf(1)
	// 1-based; index 0 is the virtual root of each augmenting search.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], inf, 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				if cur := w[i0-1][j-1] - u[i0] - v[j]; cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] != 0 {
			assign[p[j]-1] = j - 1
		}
	}
	return assign
}

func argMaxMap(m *cost.Matrix) map[annotation.Label]annotation.Label {
	out := make(map[annotation.Label]annotation.Label)
	if m.Empty() {
		return out
	}
	cols := m.Cols()
	for i, row := range m.Rows() {
		best, bestJ := 0.0, -1
		for j, v := range m.Row(i) {
			// strict comparison keeps the first column on ties
			if v > best {
				best, bestJ = v, j
			}
		}
		if bestJ >= 0 {
			out[row] = cols[bestJ]
		}
	}
	return out
}
