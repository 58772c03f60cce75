package observ

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerMeasure(t *testing.T) {
	timer := NewTimer()
	require.NoError(t, timer.Measure("open", func() error { return nil }))
	require.Error(t, timer.Measure("fix", func() error { return errors.New("boom") }))

	report := timer.Report()
	require.Len(t, report.Phases, 2)
	assert.Equal(t, "open", report.Phases[0].Name)
	assert.Equal(t, "failed", report.Phases[1].Note)
	assert.Contains(t, timer.Summary(), "total")
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(3, "ignored")
	assert.Equal(t, Report{}, timer.Report())
}

func TestMetricsRecordAndWrite(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()
	m.Iteration("demo")
	m.Iteration("demo")
	m.Selected("RMD1001")
	m.Strategy(ctx, "bulk", "succeeded", 10*time.Millisecond)
	m.Fixed("RMD1001", "bulk", 3)
	m.Committed(ctx)
	m.Unit("success")

	path := filepath.Join(t.TempDir(), "remedy.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `remedy_iterations_total{unit="demo"} 2`), text)
	assert.True(t, strings.Contains(text, `remedy_instances_fixed_total{id="RMD1001",strategy="bulk"} 3`), text)
	assert.True(t, strings.Contains(text, `remedy_units_total{status="success"} 1`), text)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.Iteration("x")
	m.Selected("x")
	m.Strategy(ctx, "single", "skipped", time.Millisecond)
	m.Fixed("x", "single", 1)
	m.Committed(ctx)
	m.Unit("failure")
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestSpanHelpers(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}
