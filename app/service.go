// Package app wires the tariff schedule service together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kinjo-energy/kinjo/api"
	"github.com/kinjo-energy/kinjo/api/profiles"
	"github.com/kinjo-energy/kinjo/api/schedule"
	"github.com/kinjo-energy/kinjo/config"
	coremetrics "github.com/kinjo-energy/kinjo/core/metrics"
	"github.com/kinjo-energy/kinjo/core/monitoring"
	"github.com/kinjo-energy/kinjo/core/profile"
	"github.com/kinjo-energy/kinjo/infra/logger"
	"github.com/kinjo-energy/kinjo/infra/metrics"
	infmon "github.com/kinjo-energy/kinjo/infra/monitoring"
	"github.com/kinjo-energy/kinjo/infra/mqtt"
	infprofile "github.com/kinjo-energy/kinjo/infra/profile"
	"github.com/kinjo-energy/kinjo/internal/eventbus"
)

// Service owns the HTTP API, the profile store and the publishers.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	store    profile.Store
	bus      *eventbus.Bus[profile.Accepted]
	pub      *mqtt.Publisher
	Profiles *profile.Service
	handler  http.Handler
	closers  []func()
}

// influxRecorder builds the InfluxDB sink and, when a client was opened, the
// func releasing it.
var influxRecorder = func(cfg config.MetricsConfig) (coremetrics.Recorder, func()) {
	rec := metrics.NewInfluxSinkWithFallback(cfg)
	if sink, ok := rec.(*metrics.InfluxSink); ok {
		return rec, sink.Close
	}
	return rec, nil
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	logg := logger.New("service")

	if cfg.Sentry.DSN != "" {
		mon, err := infmon.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		monitoring.Init(mon)
	}

	var recorders []coremetrics.Recorder
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		recorders = append(recorders, sink)
	}
	svc := &Service{cfg: cfg, log: logg}
	if cfg.Metrics.InfluxEnabled {
		rec, closer := influxRecorder(cfg.Metrics)
		if closer != nil {
			svc.closers = append(svc.closers, closer)
		}
		recorders = append(recorders, rec)
	}
	rec := coremetrics.Combine(recorders...)

	store, err := infprofile.NewStore(cfg.Store)
	if err != nil {
		svc.release()
		return nil, fmt.Errorf("profile store: %w", err)
	}
	svc.store = store
	svc.bus = eventbus.New[profile.Accepted]()

	if cfg.MQTT.Enabled() {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			svc.release()
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = pub
	}

	svc.Profiles = profile.NewService(store,
		profile.WithPublisher(svc.bus),
		profile.WithRecorder(rec),
		profile.WithLogger(logger.New("profiles")),
		profile.WithDefaultKind(cfg.Schedule.Kind()),
	)

	mux := http.NewServeMux()
	schedule.NewHandler(rec, logger.New("schedule_api"), cfg.Schedule.Kind()).Register(mux)
	ph := profiles.NewHandler(svc.Profiles, cfg.HTTP.Token)
	mux.Handle("/api/profiles", ph)
	mux.Handle("/api/profiles/", ph)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	svc.handler = api.Recover(api.Log(logger.New("http"), mux))
	return svc, nil
}

// Handler returns the root HTTP handler.
func (s *Service) Handler() http.Handler { return s.handler }

// Run serves the API and, when enabled, forwards accepted profiles to MQTT
// and exposes Prometheus metrics. It blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.HTTP.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	if s.pub != nil {
		events := s.bus.Subscribe()
		monitoring.Go(func() { s.pub.Forward(ctx, events) })
	}
	if s.cfg.Metrics.PrometheusEnabled {
		monitoring.Go(func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		})
	}

	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("serving API on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.pub != nil {
		s.pub.Disconnect()
	}
	s.release()
	monitoring.Flush(2 * time.Second)
	return s.store.Close()
}

func (s *Service) release() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}
