package propagation

import (
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/tagging"
)

// Perfect is the best any propagation can do from overlaid names: reference
// speakers whose name never appears in on become anonymous, everyone else
// keeps the right name.
func Perfect(reference, on annotation.Annotation) annotation.Annotation {
	named := make(map[annotation.Label]struct{})
	for _, l := range on.Labels() {
		named[l] = struct{}{}
	}
	mapping := make(map[annotation.Label]annotation.Label)
	for _, l := range reference.Labels() {
		if _, ok := named[l]; !ok {
			mapping[l] = annotation.NewUnknown()
		}
	}
	return reference.Relabel(mapping)
}

// PerfectM1 runs M1 on a perfect diarization: the anonymised reference.
func PerfectM1(reference, on annotation.Annotation) annotation.Annotation {
	return tagging.NewOneToOne().Tag(on, reference.Anonymize())
}
