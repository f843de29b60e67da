// Package middlewares holds the cross-cutting HTTP middlewares of upresume.
//
// RequestID tags every request with a ULID (or reuses X-Request-ID) and,
// combined with RequestIDExtractor, adds request_id to every log record.
// Recover converts panics into *PanicError, and Timeout attaches a deadline
// to the request context, returning *TimeoutError when it fires before
// anything was written. CORS serves the /api group for cross-origin callers
// with credentials. Metrics exports Prometheus counters and latency
// histograms keyed by chi route pattern.
//
// Recommended order:
//
//	upresume.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.Metrics(prometheus.DefaultRegisterer),
//	    middlewares.Timeout(15*time.Second),
//	)
package middlewares
