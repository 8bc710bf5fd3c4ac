// Package schedule exposes the tariff schedule engine over HTTP.
package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kinjo-energy/kinjo/api"
	"github.com/kinjo-energy/kinjo/core/logger"
	"github.com/kinjo-energy/kinjo/core/metrics"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

// Handler serves the stateless schedule endpoints.
type Handler struct {
	rec         metrics.Recorder
	log         logger.Logger
	defaultKind tariff.PeriodKind
}

// NewHandler creates a Handler. rec and log may be nil.
func NewHandler(rec metrics.Recorder, log logger.Logger, defaultKind tariff.PeriodKind) *Handler {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Handler{rec: rec, log: logger.OrNop(log), defaultKind: defaultKind}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/schedule/segments", h.segments)
	mux.HandleFunc("/api/schedule/validate", h.validate)
	mux.HandleFunc("/api/schedule/slider", h.slider)
	mux.HandleFunc("/api/plans", h.plans)
}

// Request is the body of the segments and validate endpoints.
type Request struct {
	tariff.ScheduleInput
	// DefaultKind overrides the kind of uncovered minutes, e.g. "HP".
	DefaultKind string `json:"default_kind,omitempty"`
}

// SegmentsResponse is returned by POST /api/schedule/segments.
type SegmentsResponse struct {
	Segments    []api.SegmentView  `json:"segments"`
	Description string             `json:"description"`
	Shares      map[string]float64 `json:"shares"`
}

// ValidateResponse is returned by POST /api/schedule/validate.
type ValidateResponse struct {
	Valid    bool             `json:"valid"`
	Conflict *tariff.Conflict `json:"conflict,omitempty"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Request, tariff.PeriodKind, bool) {
	var req Request
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return req, 0, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return req, 0, false
	}
	if req.Plan != "" {
		if _, err := tariff.ParsePlan(string(req.Plan)); err != nil {
			api.WriteError(w, http.StatusBadRequest, err)
			return req, 0, false
		}
	}
	def := h.defaultKind
	if req.DefaultKind != "" {
		k, err := tariff.ParseKind(req.DefaultKind)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err)
			return req, 0, false
		}
		def = k
	}
	return req, def, true
}

func (h *Handler) evaluate(in tariff.ScheduleInput, def tariff.PeriodKind) (tariff.Segments, error) {
	start := time.Now()
	segs, err := tariff.ValidateAndBuild(in, def)
	ev := metrics.Evaluation{
		Source:   "api",
		Plan:     in.Plan,
		Outcome:  metrics.OutcomeOf(err),
		Segments: len(segs),
		Duration: time.Since(start),
		Time:     start,
	}
	if rerr := h.rec.RecordEvaluation(ev); rerr != nil {
		h.log.Warnf("record evaluation: %v", rerr)
	}
	return segs, err
}

func (h *Handler) segments(w http.ResponseWriter, r *http.Request) {
	req, def, ok := h.decode(w, r)
	if !ok {
		return
	}
	segs, err := h.evaluate(req.ScheduleInput, def)
	if err != nil {
		api.Fail(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, SegmentsResponse{
		Segments:    api.Segments(segs),
		Description: tariff.Describe(req.Intervals()),
		Shares:      api.Shares(segs),
	})
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	req, def, ok := h.decode(w, r)
	if !ok {
		return
	}
	_, err := h.evaluate(req.ScheduleInput, def)
	var ce *tariff.ConflictError
	switch {
	case err == nil:
		api.WriteJSON(w, http.StatusOK, ValidateResponse{Valid: true})
	case errors.As(err, &ce):
		c := ce.Conflict
		api.WriteJSON(w, http.StatusOK, ValidateResponse{Valid: false, Conflict: &c})
	default:
		api.Fail(w, err)
	}
}

// IntervalView is an interval with wall-clock endpoints.
type IntervalView struct {
	Start string            `json:"start"`
	End   string            `json:"end"`
	Kind  tariff.PeriodKind `json:"kind"`
	Slot  int               `json:"slot"`
}

// SliderRequest carries either intervals (forward) or pairs (backward).
type SliderRequest struct {
	Intervals []IntervalView      `json:"intervals,omitempty"`
	Pairs     []tariff.SliderPair `json:"pairs,omitempty"`
}

// SliderResponse mirrors SliderRequest.
type SliderResponse struct {
	Values    []tariff.TimePoint  `json:"values,omitempty"`
	Pairs     []tariff.SliderPair `json:"pairs,omitempty"`
	Intervals []IntervalView      `json:"intervals,omitempty"`
}

func (h *Handler) slider(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req SliderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	switch {
	case len(req.Intervals) > 0:
		ivs := make([]tariff.Interval, 0, len(req.Intervals))
		for _, v := range req.Intervals {
			iv, err := v.interval()
			if err != nil {
				api.Fail(w, err)
				return
			}
			ivs = append(ivs, iv)
		}
		api.WriteJSON(w, http.StatusOK, SliderResponse{
			Values: tariff.SliderValuesFromIntervals(ivs),
			Pairs:  tariff.SliderPairsFromIntervals(ivs),
		})
	case len(req.Pairs) > 0:
		for _, p := range req.Pairs {
			if p.Start < 0 || p.Start >= tariff.MinutesPerDay || p.End > tariff.MinutesPerDay || p.Start > p.End {
				api.WriteError(w, http.StatusBadRequest, fmt.Errorf("%w: pair %d-%d", tariff.ErrMalformedTime, p.Start, p.End))
				return
			}
		}
		ivs := tariff.IntervalsFromSliderPairs(req.Pairs)
		out := make([]IntervalView, 0, len(ivs))
		for _, iv := range ivs {
			out = append(out, IntervalView{
				Start: tariff.FormatTime(iv.Start),
				End:   tariff.FormatTime(iv.End),
				Kind:  iv.Kind,
				Slot:  iv.Slot,
			})
		}
		api.WriteJSON(w, http.StatusOK, SliderResponse{Intervals: out})
	default:
		api.WriteError(w, http.StatusBadRequest, errors.New("intervals or pairs required"))
	}
}

func (v IntervalView) interval() (tariff.Interval, error) {
	iv := tariff.Interval{Kind: v.Kind, Slot: v.Slot}
	var err error
	if iv.Start, err = tariff.ParseTimeStrict(v.Start); err != nil {
		return iv, fmt.Errorf("%s start: %w", iv.Label(), err)
	}
	if iv.End, err = tariff.ParseTimeStrict(v.End); err != nil {
		return iv, fmt.Errorf("%s end: %w", iv.Label(), err)
	}
	return iv, nil
}

// PlanView describes one offered plan.
type PlanView struct {
	ID    tariff.Plan         `json:"id"`
	Label string              `json:"label"`
	Kinds []tariff.PeriodKind `json:"kinds"`
	Rates []tariff.RateKey    `json:"rates"`
}

// Plans lists the views of the plans offered for kva.
func Plans(kva float64) []PlanView {
	out := []PlanView{}
	for _, p := range tariff.PlansForPower(kva) {
		kinds := p.ActiveKinds()
		if kinds == nil {
			kinds = []tariff.PeriodKind{}
		}
		out = append(out, PlanView{ID: p, Label: p.Label(), Kinds: kinds, Rates: p.RequiredRates()})
	}
	return out
}

func (h *Handler) plans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw := r.URL.Query().Get("power")
	kva, err := strconv.ParseFloat(raw, 64)
	if err != nil || kva <= 0 {
		api.WriteError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", tariff.ErrMissingPower, raw))
		return
	}
	api.WriteJSON(w, http.StatusOK, Plans(kva))
}
