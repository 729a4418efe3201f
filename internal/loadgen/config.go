// Package loadgen generates synthetic broadcast sessions, submits them to a
// running service and checks the resulting rankings.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // base URL of the service
	Sessions    int           // number of sessions to generate
	Guests      int           // speakers besides the anchor, per session
	Duration    float64       // length of each session, in seconds
	Workers     int           // concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	WaitTimeout time.Duration // how long to wait for evaluations to finish
	Seed        uint64        // generator seed; equal seeds give equal sessions
	Verbose     bool
}

// Segment is a [start, end) range in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Track is a labeled segment.
type Track struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// Session is the POST /sessions payload.
type Session struct {
	Video          string    `json:"video"`
	Annotated      []Segment `json:"annotated"`
	Standard       []Segment `json:"standard,omitempty"`
	Reference      []Track   `json:"reference"`
	Diarization    []Track   `json:"diarization"`
	Identification []Track   `json:"identification,omitempty"`
	Overlaid       []Track   `json:"overlaid"`
}

// Result is one row of GET /results.
type Result struct {
	Rank      int      `json:"rank"`
	Condition string   `json:"condition"`
	Pipeline  string   `json:"pipeline"`
	Sessions  int      `json:"sessions"`
	ErrorRate *float64 `json:"error_rate"`
	FMeasure  *float64 `json:"f_measure"`
}

// AckResponse is the response to a submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id"`
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Accepted  int
	Duplicate int
	Failed    int
	Evaluated int
	// EvalFailed counts accepted sessions the service could not evaluate.
	EvalFailed int
	StartTime time.Time
	Duration  time.Duration
}
