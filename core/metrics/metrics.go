package metrics

import (
	"errors"
	"time"

	"github.com/kinjo-energy/kinjo/core/tariff"
)

// Outcome classifies the result of a schedule evaluation.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeConflict Outcome = "conflict"
	OutcomeInvalid  Outcome = "invalid"
)

// OutcomeOf maps an evaluation error to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, tariff.ErrScheduleConflict):
		return OutcomeConflict
	default:
		return OutcomeInvalid
	}
}

// Evaluation is one run of the validate-then-build pipeline.
type Evaluation struct {
	// Source names the caller, e.g. "api" or "profile".
	Source   string
	Plan     tariff.Plan
	Outcome  Outcome
	Segments int
	Duration time.Duration
	Time     time.Time
}

// Recorder records evaluations.
type Recorder interface {
	RecordEvaluation(ev Evaluation) error
}

// NopRecorder discards evaluations.
type NopRecorder struct{}

func (NopRecorder) RecordEvaluation(Evaluation) error { return nil }

// MultiRecorder fans evaluations out to several recorders. All recorders are
// called; the first error is returned.
type MultiRecorder []Recorder

func (m MultiRecorder) RecordEvaluation(ev Evaluation) error {
	var first error
	for _, r := range m {
		if err := r.RecordEvaluation(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Combine returns the smallest recorder covering rs.
func Combine(rs ...Recorder) Recorder {
	var live MultiRecorder
	for _, r := range rs {
		if r != nil {
			live = append(live, r)
		}
	}
	switch len(live) {
	case 0:
		return NopRecorder{}
	case 1:
		return live[0]
	default:
		return live
	}
}
