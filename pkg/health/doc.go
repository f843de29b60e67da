// Package health serves liveness and readiness probes.
//
// Liveness always answers 200. Readiness runs every registered [CheckFunc]
// in parallel under a shared timeout (5s by default) and answers 503 when
// any of them fails:
//
//	mux.Handle("/health/ready", health.ReadinessHandler(health.Checks{
//	    "db":    db.Healthcheck(pool),
//	    "redis": redis.Healthcheck(client),
//	}, health.WithLogger(log)))
//
// Responses are plain text unless the client asks for JSON with
// ?format=json or an Accept header containing application/json.
package health
