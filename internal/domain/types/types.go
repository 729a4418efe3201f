// Package types contains the JSON read shapes shared by the repository and
// the HTTP API.
package types

import "github.com/okian/nameprop/internal/domain/evaluation"

// Result is the accumulated score of one pipeline under one condition.
// Undefined statistics are nil and render as null.
type Result struct {
	Rank      int    `json:"rank,omitempty"`
	Condition string `json:"condition"`
	Pipeline  string `json:"pipeline"`
	Sessions  int    `json:"sessions"`

	ErrorRate *float64 `json:"error_rate"`
	Precision *float64 `json:"precision"`
	Recall    *float64 `json:"recall"`
	FMeasure  *float64 `json:"f_measure"`

	Components evaluation.Components `json:"components"`
}

// NewResult derives the statistics of c.
func NewResult(condition, pipeline string, sessions int, c evaluation.Components) Result {
	return Result{
		Condition:  condition,
		Pipeline:   pipeline,
		Sessions:   sessions,
		ErrorRate:  stat(c.ErrorRate()),
		Precision:  stat(c.Precision()),
		Recall:     stat(c.Recall()),
		FMeasure:   stat(c.FMeasure()),
		Components: c,
	}
}

func stat(v float64, err error) *float64 {
	if err != nil {
		return nil
	}
	return &v
}
