// Package infra contains technical adapters: the zerolog logger, the
// Prometheus and InfluxDB recorders, the MQTT profile publisher, the Sentry
// monitor and the persistent profile stores. These packages depend only on
// the interfaces defined in the core packages.
package infra
