// Package traceid correlates log records that belong to one unit of work.
//
// Each scheduler tick runs under its own trace ID, so every dispatch,
// delivery attempt and hygiene step of that tick can be grepped together.
// The ops HTTP router assigns one per request through Middleware.
//
// Register the extractor once when building the process logger:
//
//	log := logger.NewFromConfig(cfg,
//		logger.WithContextExtractors(traceid.LoggerExtractor()),
//	)
//
// Code that starts its own unit of work calls Ensure:
//
//	ctx, id := traceid.Ensure(ctx)
package traceid
