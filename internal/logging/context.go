package logging

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type runCtxKey struct{}
type unitCtxKey struct{}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)
	if ctx == nil {
		return fields
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := RunIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("run.id", id))
	}
	if unit := UnitFromContext(ctx); unit != "" {
		fields = append(fields, zap.String("unit", unit))
	}
	return fields
}

// WithRunID adds the run id to context.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runCtxKey{}, id)
}

// RunIDFromContext extracts the run id from context.
func RunIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(runCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithUnit adds the unit name to context.
func WithUnit(ctx context.Context, unit string) context.Context {
	return context.WithValue(ctx, unitCtxKey{}, unit)
}

// UnitFromContext extracts the unit name from context.
func UnitFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(unitCtxKey{}).(string); ok {
		return s
	}
	return ""
}
