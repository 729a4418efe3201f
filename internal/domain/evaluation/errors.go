package evaluation

import "errors"

// ErrUndefined is returned by a statistic whose denominator is zero, e.g.
// recall over a region without any labeled reference speech.
var ErrUndefined = errors.New("statistic undefined: zero denominator")
