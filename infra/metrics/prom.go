package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kinjo-energy/kinjo/core/metrics"
)

// PromSink records schedule evaluations in Prometheus metrics.
type PromSink struct {
	evaluations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	segments    prometheus.Histogram
}

// NewPromSink registers the collectors on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the collectors on reg, reusing already
// registered ones. A nil reg means the default registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_evaluations_total",
		Help: "Number of tariff schedule evaluations by plan and outcome",
	}, []string{"source", "plan", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_evaluation_seconds",
		Help:    "Time spent validating and partitioning a schedule",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
	}, []string{"plan"})
	segments := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_segments",
		Help:    "Number of segments in accepted schedules",
		Buckets: prometheus.LinearBuckets(1, 2, 5),
	})

	var err error
	if evaluations, err = register(reg, evaluations); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if segments, err = register(reg, segments); err != nil {
		return nil, err
	}
	return &PromSink{evaluations: evaluations, latency: latency, segments: segments}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEvaluation implements coremetrics.Recorder.
func (s *PromSink) RecordEvaluation(ev coremetrics.Evaluation) error {
	plan := planLabel(ev)
	s.evaluations.WithLabelValues(ev.Source, plan, string(ev.Outcome)).Inc()
	s.latency.WithLabelValues(plan).Observe(ev.Duration.Seconds())
	if ev.Outcome == coremetrics.OutcomeAccepted {
		s.segments.Observe(float64(ev.Segments))
	}
	return nil
}

func planLabel(ev coremetrics.Evaluation) string {
	if ev.Plan == "" {
		return "none"
	}
	return string(ev.Plan)
}
