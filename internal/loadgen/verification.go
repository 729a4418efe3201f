package loadgen

import (
	"errors"
	"fmt"
)

// verifyRanking checks that rows are ranked by ascending error rate with
// undefined rates last, and that every row saw want sessions.
func verifyRanking(rows []Result, want int) error {
	if len(rows) == 0 {
		return errors.New("no results")
	}
	undefined := false
	for i, r := range rows {
		if r.Rank != i+1 {
			return fmt.Errorf("row %d has rank %d", i, r.Rank)
		}
		if r.Sessions != want {
			return fmt.Errorf("%s/%s: %d sessions, want %d", r.Condition, r.Pipeline, r.Sessions, want)
		}
		if r.ErrorRate == nil {
			undefined = true
			continue
		}
		if undefined {
			return fmt.Errorf("%s ranked after an undefined rate", r.Pipeline)
		}
		if i > 0 && rows[i-1].ErrorRate != nil && *rows[i-1].ErrorRate > *r.ErrorRate {
			return fmt.Errorf("%s ranked below a worse pipeline", r.Pipeline)
		}
	}
	return nil
}
