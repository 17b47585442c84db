// Package observability provides structured logging, Prometheus metrics,
// health probes, panic recovery, and graceful shutdown for the admin
// back-end.
//
// The Logger wraps slog's JSON handler with chainable field helpers; request
// middleware stamps every request with an id and a request-scoped logger.
package observability
