// Package prometheus provides Prometheus collectors for hmsauth metrics.
//
// [NewPrometheusExporter] accepts an [hmsauth.Engine] and exposes an [http.Handler]
// that renders all hmsauth counters and histograms in Prometheus text exposition format.
// Counter names are prefixed hmsauth_*_total; the single histogram is
// hmsauth_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
