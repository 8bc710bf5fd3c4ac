// Package profiles exposes stored tariff profiles over HTTP.
package profiles

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kinjo-energy/kinjo/api"
	"github.com/kinjo-energy/kinjo/core/profile"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

// SubmitRequest is the body of POST /api/profiles.
type SubmitRequest struct {
	PRM          string              `json:"prm"`
	Subscription tariff.Subscription `json:"subscription"`
}

// Response is a stored profile with its segments in view form.
type Response struct {
	profile.Profile
	Bar []api.SegmentView `json:"bar"`
}

func respond(p profile.Profile) Response {
	return Response{Profile: p, Bar: api.Segments(p.Segments)}
}

// NewHandler returns the profiles endpoints. Requests must include an
// Authorization header with "Bearer <token>" when token is non-empty.
func NewHandler(svc *profile.Service, token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/profiles", func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
		p, err := svc.Submit(r.Context(), req.PRM, req.Subscription)
		if err != nil {
			api.Fail(w, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, respond(p))
	})
	mux.HandleFunc("GET /api/profiles/{id}", func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			api.Fail(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, respond(p))
	})
	mux.HandleFunc("GET /api/profiles", func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, err)
			return
		}
		list, err := svc.List(r.Context(), q)
		if err != nil {
			api.Fail(w, err)
			return
		}
		out := make([]Response, 0, len(list))
		for _, p := range list {
			out = append(out, respond(p))
		}
		api.WriteJSON(w, http.StatusOK, out)
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !api.Authorized(r, token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func parseQuery(r *http.Request) (profile.Query, error) {
	v := r.URL.Query()
	q := profile.Query{PRM: v.Get("prm")}
	if s := v.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("since: %w", err)
		}
		q.Since = t
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("limit: invalid value %q", s)
		}
		q.Limit = n
	}
	return q, nil
}
