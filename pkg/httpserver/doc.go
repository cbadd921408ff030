// Package httpserver runs the auth API with graceful shutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Run returns after the context is cancelled or SIGINT/SIGTERM arrives and
// in-flight requests finish or ShutdownTimeout elapses.
//
// HealthHandler exposes dependency probes (mongo, redis) as
// {"status":"UP","checks":{...}} with 503 when any probe fails.
package httpserver
