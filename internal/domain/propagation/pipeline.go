// Package propagation names the compositions of taggers that turn overlaid
// names, diarization and speaker identification into a propagated speaker
// annotation.
package propagation

import (
	"fmt"
	"strings"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/tagging"
)

// Pipeline is a closed set of propagation strategies.
type Pipeline int

const (
	// M1 names diarization clusters with the optimal one-to-one assignment.
	M1 Pipeline = iota + 1
	// M2 is M1 followed by a conservative merge of overlaid names.
	M2
	// M3 names clusters with independent best matches, then merges overlaid
	// names conservatively.
	M3
	// SID passes speaker identification through.
	SID
	// M3SID is M3 applied to speaker identification instead of diarization.
	M3SID
)

var names = map[Pipeline]string{
	M1:    "M1",
	M2:    "M2",
	M3:    "M3",
	SID:   "SID",
	M3SID: "M3+SID",
}

// All returns every pipeline in declaration order.
func All() []Pipeline { return []Pipeline{M1, M2, M3, SID, M3SID} }

func (p Pipeline) String() string {
	if n, ok := names[p]; ok {
		return n
	}
	return fmt.Sprintf("Pipeline(%d)", int(p))
}

// ParsePipeline returns the pipeline called name, case-insensitively.
func ParsePipeline(name string) (Pipeline, error) {
	for _, p := range All() {
		if strings.EqualFold(names[p], strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownPipeline)
}

// MarshalText implements encoding.TextMarshaler.
func (p Pipeline) MarshalText() ([]byte, error) {
	if _, ok := names[p]; !ok {
		return nil, fmt.Errorf("%d: %w", int(p), ErrUnknownPipeline)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pipeline) UnmarshalText(text []byte) error {
	v, err := ParsePipeline(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Apply runs the pipeline on the overlaid names on, the diarization sd and the
// speaker identification sid. Inputs are not modified.
func (p Pipeline) Apply(on, sd, sid annotation.Annotation) (annotation.Annotation, error) {
	direct := tagging.NewDirectTagger()
	switch p {
	case M1:
		return tagging.NewOneToOne().Tag(on, sd), nil
	case M2:
		return direct.Tag(on, tagging.NewOneToOne().Tag(on, sd)), nil
	case M3:
		return direct.Tag(on, tagging.NewOneToMany().Tag(on, sd)), nil
	case SID:
		return sid, nil
	case M3SID:
		return direct.Tag(on, tagging.NewOneToMany().Tag(on, sid)), nil
	default:
		return annotation.Annotation{}, fmt.Errorf("%s: %w", p, ErrUnknownPipeline)
	}
}
