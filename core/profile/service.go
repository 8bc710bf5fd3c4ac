package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kinjo-energy/kinjo/core/logger"
	"github.com/kinjo-energy/kinjo/core/metrics"
	"github.com/kinjo-energy/kinjo/core/monitoring"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

// Accepted is published once a profile has been stored.
type Accepted struct {
	Profile Profile
}

// Publisher receives accepted profiles. *eventbus.Bus[Accepted] satisfies it.
type Publisher interface {
	Publish(Accepted)
}

// Service validates and stores tariff subscriptions.
type Service struct {
	store       Store
	pub         Publisher
	rec         metrics.Recorder
	log         logger.Logger
	defaultKind tariff.PeriodKind
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher sets where accepted profiles are announced.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.pub = p } }

// WithRecorder sets the evaluation recorder.
func WithRecorder(r metrics.Recorder) Option { return func(s *Service) { s.rec = r } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

// WithDefaultKind sets the kind of minutes not covered by any range.
func WithDefaultKind(k tariff.PeriodKind) Option { return func(s *Service) { s.defaultKind = k } }

// NewService creates a Service on top of store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		rec:         metrics.NopRecorder{},
		log:         logger.NopLogger{},
		defaultKind: tariff.Peak,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit validates sub for the meter prm, derives its segments and stores
// the resulting profile. Validation errors wrap the tariff sentinels.
func (s *Service) Submit(ctx context.Context, prm string, sub tariff.Subscription) (Profile, error) {
	if err := ValidatePRM(prm); err != nil {
		return Profile{}, err
	}
	start := s.now()
	segs, err := s.evaluate(sub)
	ev := metrics.Evaluation{
		Source:   "profile",
		Plan:     sub.Plan,
		Outcome:  metrics.OutcomeOf(err),
		Segments: len(segs),
		Duration: s.now().Sub(start),
		Time:     start,
	}
	if rerr := s.rec.RecordEvaluation(ev); rerr != nil {
		s.log.Warnf("record evaluation: %v", rerr)
	}
	if err != nil {
		s.log.Debugw("subscription rejected", map[string]any{"prm": prm, "plan": string(sub.Plan), "error": err.Error()})
		return Profile{}, err
	}

	p := Profile{
		ID:           uuid.NewString(),
		PRM:          prm,
		Subscription: sub,
		Description:  tariff.Describe(sub.Input().Intervals()),
		Segments:     segs,
		CreatedAt:    start.UTC(),
	}
	if err := s.store.Save(ctx, p); err != nil {
		monitoring.CaptureException(err, map[string]string{"module": "profile", "prm": prm})
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	s.log.Infof("profile %s accepted for %s (%s)", p.ID, prm, sub.Plan)
	if s.pub != nil {
		s.pub.Publish(Accepted{Profile: p})
	}
	return p, nil
}

func (s *Service) evaluate(sub tariff.Subscription) (tariff.Segments, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return tariff.ValidateAndBuild(sub.Input(), s.defaultKind)
}

// Get returns the profile with the given ID.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.store.Get(ctx, id)
}

// List returns profiles matching q.
func (s *Service) List(ctx context.Context, q Query) ([]Profile, error) {
	return s.store.List(ctx, q)
}
