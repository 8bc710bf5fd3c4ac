package tariff

import (
	"errors"
	"fmt"
)

// ErrScheduleConflict is wrapped by ConflictError.
var ErrScheduleConflict = errors.New("schedule conflict")

// Conflict names two declared intervals that share at least one minute.
type Conflict struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

// ConflictError reports an overlap found while validating a schedule.
type ConflictError struct {
	Conflict Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlap detected between %s and %s", e.Conflict.First, e.Conflict.Second)
}

func (e *ConflictError) Unwrap() error { return ErrScheduleConflict }

type taggedSpan struct {
	Span
	owner int
}

// DetectOverlap returns the first pair of intervals, in input order, whose
// spans intersect. Spans coming from the same interval are never compared.
func DetectOverlap(intervals []Interval) (Conflict, bool) {
	var spans []taggedSpan
	for i, iv := range intervals {
		for _, s := range Normalize(iv) {
			spans = append(spans, taggedSpan{Span: s, owner: i})
		}
	}
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			a, b := spans[i], spans[j]
			if a.owner == b.owner {
				continue
			}
			if a.overlaps(b.Span) {
				return Conflict{
					First:  intervals[a.owner].Label(),
					Second: intervals[b.owner].Label(),
				}, true
			}
		}
	}
	return Conflict{}, false
}
