package schedule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinjo-energy/kinjo/api"
	"github.com/kinjo-energy/kinjo/core/metrics"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

type countingRecorder struct {
	outcomes []metrics.Outcome
}

func (c *countingRecorder) RecordEvaluation(ev metrics.Evaluation) error {
	c.outcomes = append(c.outcomes, ev.Outcome)
	return nil
}

func newMux(rec metrics.Recorder) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(rec, nil, tariff.Peak).Register(mux)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	mux.ServeHTTP(rr, req)
	return rr
}

func TestSegmentsEndpoint(t *testing.T) {
	rec := &countingRecorder{}
	mux := newMux(rec)
	rr := do(t, mux, http.MethodPost, "/api/schedule/segments",
		`{"plan":"5_classes","off_peak":[{"start":"22:00","end":"06:00"}],"super_peak":[{"start":"17:00","end":"19:00"}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out SegmentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Segments, 5)
	assert.Equal(t, api.SegmentView{Start: "00:00", End: "06:00", StartMinute: 0, EndMinute: 360, Kind: "HC", Color: "#92C55E"}, out.Segments[0])
	assert.Equal(t, "Pointe", out.Segments[2].Kind)
	assert.Equal(t, "24:00", out.Segments[4].End)
	assert.Equal(t, "HC (22:00-06:00); Pointe (17:00-19:00)", out.Description)
	assert.InDelta(t, 8.0/24, out.Shares["HC"], 1e-9)
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeAccepted}, rec.outcomes)
}

func TestSegmentsEndpointConflict(t *testing.T) {
	rec := &countingRecorder{}
	rr := do(t, newMux(rec), http.MethodPost, "/api/schedule/segments",
		`{"plan":"hp_hc","off_peak":[{"start":"22:00","end":"06:00"},{"start":"05:00","end":"07:00"}]}`)
	require.Equal(t, http.StatusConflict, rr.Code)

	var body api.ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotNil(t, body.Conflict)
	assert.Equal(t, tariff.Conflict{First: "HC 1", Second: "HC 2"}, *body.Conflict)
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeConflict}, rec.outcomes)
}

func TestSegmentsEndpointBadInput(t *testing.T) {
	mux := newMux(nil)
	cases := map[string]string{
		"malformed time": `{"plan":"hp_hc","off_peak":[{"start":"25:00","end":"06:00"}]}`,
		"unknown plan":   `{"plan":"night"}`,
		"unknown kind":   `{"plan":"hp_hc","default_kind":"XX"}`,
		"bad json":       `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := do(t, mux, http.MethodPost, "/api/schedule/segments", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
	rr := do(t, mux, http.MethodGet, "/api/schedule/segments", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestSegmentsEndpointDefaultKind(t *testing.T) {
	rr := do(t, newMux(nil), http.MethodPost, "/api/schedule/segments", `{"plan":"unique","default_kind":"HC"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out SegmentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Segments, 1)
	assert.Equal(t, "HC", out.Segments[0].Kind)
	assert.Equal(t, "", out.Description)
}

func TestValidateEndpoint(t *testing.T) {
	mux := newMux(nil)
	rr := do(t, mux, http.MethodPost, "/api/schedule/validate",
		`{"plan":"hp_hc","off_peak":[{"start":"22:00","end":"00:00"},{"start":"00:00","end":"06:00"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var ok ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Nil(t, ok.Conflict)

	rr = do(t, mux, http.MethodPost, "/api/schedule/validate",
		`{"plan":"5_classes","off_peak":[{"start":"22:00","end":"06:00"}],"super_peak":[{"start":"05:30","end":"08:00"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var bad ValidateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	require.NotNil(t, bad.Conflict)
	assert.Equal(t, "HC 1", bad.Conflict.First)
	assert.Equal(t, "Pointe 1", bad.Conflict.Second)
}

func TestSliderEndpointRoundTrip(t *testing.T) {
	mux := newMux(nil)
	rr := do(t, mux, http.MethodPost, "/api/schedule/slider",
		`{"intervals":[{"start":"22:00","end":"06:00","kind":"HC","slot":0},{"start":"12:00","end":"14:00","kind":"HC","slot":1}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var fwd SliderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fwd))
	assert.Equal(t, []tariff.TimePoint{0, 360, 720, 840, 1320, 1440}, fwd.Values)
	require.Len(t, fwd.Pairs, 3)

	body, err := json.Marshal(SliderRequest{Pairs: fwd.Pairs})
	require.NoError(t, err)
	rr = do(t, mux, http.MethodPost, "/api/schedule/slider", string(body))
	require.Equal(t, http.StatusOK, rr.Code)
	var back SliderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &back))
	assert.ElementsMatch(t, []IntervalView{
		{Start: "22:00", End: "06:00", Kind: tariff.OffPeak, Slot: 0},
		{Start: "12:00", End: "14:00", Kind: tariff.OffPeak, Slot: 1},
	}, back.Intervals)
}

func TestSliderEndpointRejects(t *testing.T) {
	mux := newMux(nil)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/schedule/slider", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/schedule/slider",
		`{"intervals":[{"start":"7h","end":"08:00","kind":"HC"}]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/schedule/slider",
		`{"pairs":[{"start":100,"end":2000,"kind":"HC"}]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodPost, "/api/schedule/slider",
		`{"pairs":[{"start":1440,"end":1440,"kind":"HC"}]}`).Code)
}

func TestSliderEndpointRightEdgeFeedsSegments(t *testing.T) {
	mux := newMux(nil)
	rr := do(t, mux, http.MethodPost, "/api/schedule/slider", `{"pairs":[{"start":1320,"end":1440,"kind":"HC"}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var back SliderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &back))
	require.Equal(t, []IntervalView{{Start: "22:00", End: "00:00", Kind: tariff.OffPeak}}, back.Intervals)

	in := tariff.ScheduleInput{Plan: tariff.PlanPeakOffPeak}
	in.OffPeak[0] = tariff.RawRange{Start: back.Intervals[0].Start, End: back.Intervals[0].End}
	body, err := json.Marshal(in)
	require.NoError(t, err)
	rr = do(t, mux, http.MethodPost, "/api/schedule/segments", string(body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var out SegmentsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Segments, 2)
	assert.Equal(t, api.SegmentView{Start: "22:00", End: "24:00", StartMinute: 1320, EndMinute: 1440, Kind: "HC", Color: "#92C55E"}, out.Segments[1])
}

func TestPlansEndpoint(t *testing.T) {
	mux := newMux(nil)
	rr := do(t, mux, http.MethodGet, "/api/plans?power=9", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []PlanView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, tariff.PlanUnique, out[0].ID)
	assert.Empty(t, out[0].Kinds)
	assert.Equal(t, tariff.PlanPeakOffPeak, out[1].ID)
	assert.Equal(t, []tariff.PeriodKind{tariff.OffPeak}, out[1].Kinds)
	assert.Equal(t, []tariff.RateKey{tariff.RatePeak, tariff.RateOffPeak}, out[1].Rates)

	rr = do(t, mux, http.MethodGet, "/api/plans?power=300", "")
	var large []PlanView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &large))
	require.Len(t, large, 2)
	assert.Equal(t, tariff.PlanFiveClasses, large[1].ID)

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/plans?power=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/plans", "").Code)
}
