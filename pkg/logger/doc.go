// Package logger builds context-aware slog loggers for notifykit services.
//
// New creates a *slog.Logger configured through Option functions: output
// format, minimum level, static attributes and ContextExtractor callbacks
// that inject values carried by context.Context at log time. NewFromConfig
// does the same from environment-driven Config.
//
// Attribute helpers in attr.go keep key names consistent across packages:
//
//	log.LogAttrs(ctx, slog.LevelWarn, "push delivery failed",
//	    logger.NotificationID(n.ID),
//	    logger.UserID(n.UserID),
//	    logger.Channel("push"),
//	    logger.Error(err),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally.
package logger
