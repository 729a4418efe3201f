package cost

import (
	"math"

	"github.com/okian/nameprop/internal/domain/annotation"
)

// Func builds the cost matrix of a against b: rows are the labels of a,
// columns the labels of b.
type Func func(a, b annotation.Annotation) *Matrix

// Cooccurrence scores each pair by the total duration during which both
// labels are active.
func Cooccurrence(a, b annotation.Annotation) *Matrix {
	m := NewMatrix(a.Labels(), b.Labels())
	if m.Empty() {
		return m
	}
	bt := b.Tracks()
	for _, ta := range a.Tracks() {
		for _, tb := range bt {
			if tb.Segment.Start >= ta.Segment.End {
				break
			}
			if i, ok := ta.Segment.Intersection(tb.Segment); ok {
				m.add(ta.Label, tb.Label, i.Duration())
			}
		}
	}
	return m
}

// CoTFIDF weights co-occurrence by how discriminative each column label is:
// a column co-occurring with few rows weighs more than one co-occurring with
// many.
//
//	weight(col) = log(rows / (1 + rows co-occurring with col))
//
// Negative weights are clamped to 0 so the matrix stays non-negative.
func CoTFIDF(a, b annotation.Annotation) *Matrix {
	m := Cooccurrence(a, b)
	if m.Empty() {
		return m
	}
	rows, cols := m.data.Dims()
	for j := 0; j < cols; j++ {
		df := 0
		for i := 0; i < rows; i++ {
			if m.data.At(i, j) > 0 {
				df++
			}
		}
		w := math.Max(0, math.Log(float64(rows)/float64(1+df)))
		for i := 0; i < rows; i++ {
			m.data.Set(i, j, m.data.At(i, j)*w)
		}
	}
	return m
}
