// Package logging wraps zap with context-aware methods.
//
// Every entry carries the fields stored in its context: run id, unit and, when
// a span is active, the OpenTelemetry trace and span ids.
//
//	ctx = logging.WithRunID(ctx, id)
//	logger.Info(ctx, "applying fix", zap.String("diagnostic", d.ID))
package logging
