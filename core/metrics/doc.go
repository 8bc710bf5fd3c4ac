// Package metrics defines the schedule evaluation events recorded for
// observability. Recorders such as the Prometheus and InfluxDB sinks in
// infra/metrics implement Recorder and can be combined with MultiRecorder.
package metrics
