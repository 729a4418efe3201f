// Package evaluation scores propagated speaker annotations against a
// reference and accumulates the scores across sessions.
package evaluation

import "math"

// Components holds the confusion durations, in seconds, behind every derived
// statistic.
type Components struct {
	Correct    float64 `json:"correct"`
	Confusion  float64 `json:"confusion"`
	Miss       float64 `json:"miss"`
	FalseAlarm float64 `json:"false_alarm"`
}

// Add returns the sum of c and o.
func (c Components) Add(o Components) Components {
	return Components{
		Correct:    c.Correct + o.Correct,
		Confusion:  c.Confusion + o.Confusion,
		Miss:       c.Miss + o.Miss,
		FalseAlarm: c.FalseAlarm + o.FalseAlarm,
	}
}

// Reference is the labeled reference duration.
func (c Components) Reference() float64 { return c.Correct + c.Confusion + c.Miss }

// Hypothesis is the labeled hypothesis duration.
func (c Components) Hypothesis() float64 { return c.Correct + c.Confusion + c.FalseAlarm }

// Errors is the total erroneous duration.
func (c Components) Errors() float64 { return c.Confusion + c.Miss + c.FalseAlarm }

// Precision is correct / (correct + confusion + false alarm).
func (c Components) Precision() (float64, error) { return ratio(c.Correct, c.Hypothesis()) }

// Recall is correct / (correct + confusion + miss).
func (c Components) Recall() (float64, error) { return ratio(c.Correct, c.Reference()) }

// FMeasure is the harmonic mean of precision and recall. It is 0 when both
// are 0.
func (c Components) FMeasure() (float64, error) {
	p, err := c.Precision()
	if err != nil {
		return math.NaN(), err
	}
	r, err := c.Recall()
	if err != nil {
		return math.NaN(), err
	}
	if p+r == 0 {
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}

// ErrorRate is (confusion + miss + false alarm) / (correct + confusion + miss).
// It may exceed 1 when false alarms dominate.
func (c Components) ErrorRate() (float64, error) { return ratio(c.Errors(), c.Reference()) }

func ratio(num, den float64) (float64, error) {
	if den == 0 {
		return math.NaN(), ErrUndefined
	}
	return num / den, nil
}

// Report is a snapshot of the derived statistics. Undefined values are NaN.
type Report struct {
	Components
	ErrorRate float64 `json:"error_rate"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	FMeasure  float64 `json:"f_measure"`
}

// Report computes every derived statistic of c.
func (c Components) Report() Report {
	r := Report{Components: c}
	r.ErrorRate, _ = c.ErrorRate()
	r.Precision, _ = c.Precision()
	r.Recall, _ = c.Recall()
	r.FMeasure, _ = c.FMeasure()
	return r
}
