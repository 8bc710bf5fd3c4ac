package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient wraps the InfluxDB v2 client with the queries the E2E suite
// needs to check what the service wrote.
type InfluxClient struct {
	org    string
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for a running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{org: org, bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// CountEvaluations returns the number of schedule_evaluation segment fields
// written in the last minute with the given outcome tag.
func (c *InfluxClient) CountEvaluations(ctx context.Context, outcome string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:"%s")
  |> range(start:-1m)
  |> filter(fn: (r) => r._measurement == "schedule_evaluation" and r._field == "segments" and r.outcome == "%s")`,
		c.bucket, outcome)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
