package observ

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter. Without an installed SDK both are no-ops.
var (
	tracer = otel.Tracer("remedy")
	meter  = otel.Meter("remedy")
)

var (
	strategyLatency metric.Float64Histogram
	strategyTotal   metric.Int64Counter
	commitTotal     metric.Int64Counter

	instrumentsOnce sync.Once
	instrumentsErr  error
)

// initInstruments creates the OpenTelemetry instruments. Safe to call multiple times.
func initInstruments() error {
	instrumentsOnce.Do(func() {
		var err error

		strategyLatency, err = meter.Float64Histogram(
			"remedy_strategy_duration_seconds",
			metric.WithDescription("Duration of remediation strategy attempts"),
			metric.WithUnit("s"),
		)
		if err != nil {
			instrumentsErr = err
			return
		}

		strategyTotal, err = meter.Int64Counter(
			"remedy_strategy_attempts_total",
			metric.WithDescription("Remediation strategy attempts by outcome"),
		)
		if err != nil {
			instrumentsErr = err
			return
		}

		commitTotal, err = meter.Int64Counter(
			"remedy_commits_total",
			metric.WithDescription("Snapshots committed to the workspace"),
		)
		if err != nil {
			instrumentsErr = err
			return
		}
	})
	return instrumentsErr
}

// StartSpan starts a span named name with attrs.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordStrategyInstruments(ctx context.Context, strategy, outcome string, d time.Duration) {
	if err := initInstruments(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("strategy", strategy),
		attribute.String("outcome", outcome),
	)
	strategyLatency.Record(ctx, d.Seconds(), attrs)
	strategyTotal.Add(ctx, 1, attrs)
}

func recordCommitInstruments(ctx context.Context) {
	if err := initInstruments(); err != nil {
		return
	}
	commitTotal.Add(ctx, 1)
}
