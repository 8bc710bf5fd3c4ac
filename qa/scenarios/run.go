package scenarios

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kinjo-energy/kinjo/core/metrics"
	"github.com/kinjo-energy/kinjo/core/tariff"
	"github.com/kinjo-energy/kinjo/infra/metrics"
)

// RunScenario evaluates sc, checks the outcome against sc.Expected and
// verifies the evaluation was counted.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	in, def, err := sc.Input()
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	start := time.Now()
	segs, err := tariff.ValidateAndBuild(in, def)
	ev := coremetrics.Evaluation{
		Source:   "scenario",
		Plan:     in.Plan,
		Outcome:  coremetrics.OutcomeOf(err),
		Segments: len(segs),
		Duration: time.Since(start),
		Time:     start,
	}
	if rerr := sink.RecordEvaluation(ev); rerr != nil {
		t.Fatalf("record: %v", rerr)
	}
	if n := testutil.CollectAndCount(reg, "schedule_evaluations_total"); n != 1 {
		t.Fatalf("expected one evaluation series, got %d", n)
	}

	exp := sc.Expected
	var ce *tariff.ConflictError
	switch {
	case exp.Conflict != nil:
		if !errors.As(err, &ce) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if ce.Conflict.First != exp.Conflict.First || ce.Conflict.Second != exp.Conflict.Second {
			t.Fatalf("conflict %s/%s, want %s/%s", ce.Conflict.First, ce.Conflict.Second, exp.Conflict.First, exp.Conflict.Second)
		}
		return
	case exp.Malformed:
		if !errors.Is(err, tariff.ErrMalformedTime) {
			t.Fatalf("expected malformed time, got %v", err)
		}
		return
	case err != nil:
		t.Fatalf("unexpected error: %v", err)
	}

	if err := segs.Validate(); err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(exp.Segments) != len(segs) {
		t.Fatalf("got %d segments, want %d", len(segs), len(exp.Segments))
	}
	for i, s := range segs {
		if got := formatSegment(s); got != exp.Segments[i] {
			t.Errorf("segment %d: got %q want %q", i, got, exp.Segments[i])
		}
	}
	if exp.Description != "" {
		if got := tariff.Describe(in.Intervals()); got != exp.Description {
			t.Errorf("description %q want %q", got, exp.Description)
		}
	}
}
