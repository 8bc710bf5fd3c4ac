// Package api holds the helpers shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kinjo-energy/kinjo/core/profile"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

// ErrorBody is the JSON payload of every error response.
type ErrorBody struct {
	Error    string           `json:"error"`
	Conflict *tariff.Conflict `json:"conflict,omitempty"`
}

// SegmentView is a segment as drawn by clients.
type SegmentView struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Kind        string `json:"kind"`
	Color       string `json:"color"`
}

// Segments converts segs to their view form. The last segment ends at "24:00".
func Segments(segs tariff.Segments) []SegmentView {
	out := make([]SegmentView, 0, len(segs))
	for _, s := range segs {
		out = append(out, SegmentView{
			Start:       tariff.FormatTime(s.Start),
			End:         tariff.FormatTime(s.End),
			StartMinute: int(s.Start),
			EndMinute:   int(s.End),
			Kind:        s.Kind.String(),
			Color:       s.Kind.Color(),
		})
	}
	return out
}

// Shares returns the day fractions keyed by kind label.
func Shares(segs tariff.Segments) map[string]float64 {
	out := map[string]float64{}
	for k, v := range tariff.Shares(segs) {
		out[k.String()] = v
	}
	return out
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, tariff.ErrScheduleConflict):
		return http.StatusConflict
	case errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tariff.ErrMissingPower),
		errors.Is(err, tariff.ErrMissingPlan),
		errors.Is(err, tariff.ErrPlanNotOffered),
		errors.Is(err, tariff.ErrMissingRate),
		errors.Is(err, tariff.ErrMissingRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tariff.ErrMalformedTime),
		errors.Is(err, profile.ErrInvalidPRM):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody. Conflicts carry the offending labels.
func WriteError(w http.ResponseWriter, status int, err error) {
	body := ErrorBody{Error: err.Error()}
	var ce *tariff.ConflictError
	if errors.As(err, &ce) {
		c := ce.Conflict
		body.Conflict = &c
	}
	WriteJSON(w, status, body)
}

// Fail writes err with the status chosen by StatusFor.
func Fail(w http.ResponseWriter, err error) {
	WriteError(w, StatusFor(err), err)
}

// Authorized checks the bearer token. An empty token disables the check.
func Authorized(r *http.Request, token string) bool {
	return token == "" || r.Header.Get("Authorization") == "Bearer "+token
}
