// Package httpserver runs the operational HTTP listener of notifyd.
//
// Server wraps http.Server: Run serves until its context is done, then shuts
// down gracefully within ShutdownTimeout. NewOpsRouter mounts liveness,
// readiness and Prometheus endpoints on a chi router.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	handler := httpserver.NewOpsRouter(log, registry,
//	    httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	)
//	g.Go(func() error { return srv.Run(ctx, handler) })
//
// Signal handling belongs to the caller; cancel ctx to stop the server.
package httpserver
