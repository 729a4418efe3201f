package loadgen

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

// Anchor is the speaker present in every generated session.
const Anchor = "anchor"

const (
	anchorShare     = 0.3  // share of turns spoken by the anchor
	minTurn         = 2.0  // seconds
	maxTurnSpread   = 10.0 // seconds added to minTurn at most
	overlayShare    = 0.5  // share of guest turns with their name on screen
	overlayDuration = 3.0  // seconds
	splitShare      = 0.1  // share of turns diarized into a spurious cluster
	sidAccuracy     = 0.7  // share of turns correctly identified
)

// Generator builds reproducible synthetic sessions. It is not safe for
// concurrent use.
type Generator struct {
	rng      *rand.Rand
	guests   int
	duration float64
	prefix   string
}

// NewGenerator returns a generator; videos are named prefix_<index>.
func NewGenerator(cfg *Config, prefix string) *Generator {
	return &Generator{
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		guests:   max(1, cfg.Guests),
		duration: cfg.Duration,
		prefix:   prefix,
	}
}

// Generate returns n sessions.
func (g *Generator) Generate(n int) []Session {
	out := make([]Session, n)
	for i := range out {
		out[i] = g.session(i)
	}
	return out
}

func (g *Generator) speakers() []string {
	names := []string{Anchor}
	for i := 0; i < g.guests; i++ {
		names = append(names, "guest_"+strconv.Itoa(i))
	}
	return names
}

func (g *Generator) session(index int) Session {
	names := g.speakers()
	s := Session{
		Video:     fmt.Sprintf("%s_%04d", g.prefix, index),
		Annotated: []Segment{{Start: 0, End: g.duration}},
		Standard:  []Segment{{Start: 0, End: g.duration / 2}},
	}

	for t := 0.0; t < g.duration; {
		end := min(g.duration, t+minTurn+g.rng.Float64()*maxTurnSpread)
		who := 0
		if g.rng.Float64() >= anchorShare {
			who = 1 + g.rng.IntN(len(names)-1)
		}
		name := names[who]

		s.Reference = append(s.Reference, Track{Start: t, End: end, Label: name})

		cluster := "c" + strconv.Itoa(who)
		if g.rng.Float64() < splitShare {
			cluster += "_split"
		}
		s.Diarization = append(s.Diarization, Track{Start: t, End: end, Label: cluster})

		sid := name
		if g.rng.Float64() >= sidAccuracy {
			sid = names[g.rng.IntN(len(names))]
		}
		s.Identification = append(s.Identification, Track{Start: t, End: end, Label: sid})

		if who != 0 && end-t > 1 && g.rng.Float64() < overlayShare {
			s.Overlaid = append(s.Overlaid, Track{Start: t + 0.5, End: min(end, t+0.5+overlayDuration), Label: name})
		}
		t = end
	}
	return s
}
