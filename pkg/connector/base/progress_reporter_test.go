package base

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestProgressReporterReport(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	start := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	now := start
	pr := NewProgressReporter(zap.New(core), time.Hour).WithClock(func() time.Time { return now })

	pr.Start(context.Background())
	for range 20 {
		pr.Increment()
	}
	now = start.Add(10 * time.Second)
	pr.Report()

	assert.Equal(t, int64(20), pr.Stop())
	assert.InDelta(t, 2.0, pr.Throughput(), 0.0001)

	entries := logs.FilterMessage("progress update").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(20), fields["processed"])
	assert.Equal(t, 10*time.Second, fields["elapsed"])
}

func TestProgressReporterStopIsIdempotent(t *testing.T) {
	pr := NewProgressReporter(nil, 0)
	assert.Equal(t, DefaultReportInterval, pr.reportInterval)

	pr.Start(context.Background())
	pr.Increment()
	assert.Equal(t, int64(1), pr.Stop())
	assert.Equal(t, int64(1), pr.Stop())
}

func TestProgressReporterThroughputBeforeStart(t *testing.T) {
	pr := NewProgressReporter(nil, time.Second)
	pr.startTime = time.Now().Add(time.Hour)
	assert.Equal(t, 0.0, pr.Throughput())
}
