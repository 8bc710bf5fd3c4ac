package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kinjo-energy/kinjo/config"
	coremetrics "github.com/kinjo-energy/kinjo/core/metrics"
	"github.com/kinjo-energy/kinjo/infra/logger"
)

// InfluxSink writes schedule evaluations to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A trailing
// /api/v2/write on url is tolerated.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopRecorder when the
// health check fails so a missing database never blocks schedule evaluation.
func NewInfluxSinkWithFallback(cfg config.MetricsConfig) coremetrics.Recorder {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopRecorder{}
	}
	return sink
}

// RecordEvaluation writes one schedule_evaluation point.
func (s *InfluxSink) RecordEvaluation(ev coremetrics.Evaluation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, evaluationPoint(ev))
}

func evaluationPoint(ev coremetrics.Evaluation) *write.Point {
	return write.NewPointWithMeasurement("schedule_evaluation").
		AddTag("source", ev.Source).
		AddTag("plan", planLabel(ev)).
		AddTag("outcome", string(ev.Outcome)).
		AddField("segments", ev.Segments).
		AddField("duration_us", ev.Duration.Microseconds()).
		SetTime(ev.Time)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }
