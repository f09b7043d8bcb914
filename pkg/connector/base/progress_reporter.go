package base

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultReportInterval is how often a running reporter logs progress
const DefaultReportInterval = 30 * time.Second

// ProgressReporter logs how many records a long run has handled so far.
// Increment is safe to call from any goroutine.
type ProgressReporter struct {
	logger         *zap.Logger
	reportInterval time.Duration
	now            func() time.Time

	processed atomic.Int64
	startTime time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewProgressReporter creates a reporter; a non-positive interval uses DefaultReportInterval
func NewProgressReporter(logger *zap.Logger, interval time.Duration) *ProgressReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	return &ProgressReporter{
		logger:         logger,
		reportInterval: interval,
		now:            time.Now,
		stopCh:         make(chan struct{}),
	}
}

// WithClock replaces time.Now, for tests
func (pr *ProgressReporter) WithClock(now func() time.Time) *ProgressReporter {
	pr.now = now
	return pr
}

// Start begins periodic progress reporting until Stop or ctx is done
func (pr *ProgressReporter) Start(ctx context.Context) {
	pr.startTime = pr.now()
	pr.wg.Add(1)
	go func() {
		defer pr.wg.Done()
		ticker := time.NewTicker(pr.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-pr.stopCh:
				return
			case <-ticker.C:
				pr.Report()
			}
		}
	}()
}

// Stop ends reporting and returns the number of records handled
func (pr *ProgressReporter) Stop() int64 {
	pr.once.Do(func() { close(pr.stopCh) })
	pr.wg.Wait()
	return pr.processed.Load()
}

// Increment counts one handled record
func (pr *ProgressReporter) Increment() {
	pr.processed.Add(1)
}

// Processed returns the records handled so far
func (pr *ProgressReporter) Processed() int64 {
	return pr.processed.Load()
}

// Throughput is the average records per second since Start
func (pr *ProgressReporter) Throughput() float64 {
	elapsed := pr.now().Sub(pr.startTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(pr.processed.Load()) / elapsed
}

// Report logs the current progress
func (pr *ProgressReporter) Report() {
	pr.logger.Info("progress update",
		zap.Int64("processed", pr.processed.Load()),
		zap.Float64("throughput", pr.Throughput()),
		zap.Duration("elapsed", pr.now().Sub(pr.startTime)))
}
