// Package metrics provides the observability hooks for math span scanning,
// rendering and document conversion.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	adapter := render.NewAdapter(service, opts, render.WithRecorder(metrics.NoopRecorder{}))
//
// When metrics are enabled in the configuration, the CLI swaps in a
// PrometheusRecorder and serves its registry through HTTPHandler:
//
//	reg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
