// Package annotation models label-bearing timelines: every segment carries
// one or more identity labels, which are either known names or anonymous
// placeholders.
package annotation

import (
	"cmp"
	"fmt"
	"sync/atomic"
)

// unknownSeq hands out process-unique ids for Unknown labels.
var unknownSeq atomic.Uint64 //nolint:gochecknoglobals // process-wide uniqueness of placeholder labels

// Label is an identity token. The zero value is not a valid label.
//
// Known labels compare equal when their names are equal. Unknown labels only
// compare equal to themselves, never to another Unknown or to a Known label.
type Label struct {
	name    string
	unknown uint64
}

// Known returns the label for a named identity.
func Known(name string) Label { return Label{name: name} }

// NewUnknown returns a fresh placeholder label, distinct from every other.
func NewUnknown() Label { return Label{unknown: unknownSeq.Add(1)} }

// IsUnknown reports whether l is a placeholder.
func (l Label) IsUnknown() bool { return l.unknown != 0 }

// IsZero reports whether l is the zero value.
func (l Label) IsZero() bool { return l == Label{} }

// Name returns the identity name; empty for Unknown labels.
func (l Label) Name() string { return l.name }

func (l Label) String() string {
	if l.IsUnknown() {
		return fmt.Sprintf("Unknown%03d", l.unknown)
	}
	return l.name
}

// Compare orders Known labels before Unknown ones, names lexically and
// placeholders by creation order.
func (l Label) Compare(o Label) int {
	switch {
	case l.IsUnknown() != o.IsUnknown():
		if l.IsUnknown() {
			return 1
		}
		return -1
	case l.IsUnknown():
		return cmp.Compare(l.unknown, o.unknown)
	default:
		return cmp.Compare(l.name, o.name)
	}
}

// Less reports whether l sorts before o.
func (l Label) Less(o Label) bool { return l.Compare(o) < 0 }
