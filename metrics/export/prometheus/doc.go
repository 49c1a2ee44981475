// Package prometheus provides Prometheus collectors for portal client metrics.
//
// [NewPrometheusExporter] accepts a [portal.Client] and exposes an [http.Handler]
// that renders all portal counters and histograms in Prometheus text exposition format.
// Counter names are prefixed portal_*_total; the single histogram is
// portal_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate client state.
package prometheus
