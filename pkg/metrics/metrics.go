// Package metrics exposes Prometheus counters for a sync run.
//
// # Basic Usage
//
//	metrics.SourceCalls.WithLabelValues("sales_order.list", metrics.OutcomeSuccess).Inc()
//	metrics.RecordOutcome("orders", metrics.OutcomeDuplicated)
//
//	timer := metrics.NewTimer()
//	resp, err := client.Do(req)
//	metrics.DestinationLatency.WithLabelValues("POST", "/purchases").Observe(timer.Seconds())
//
// Serve starts a /metrics listener for scraping while a run is in progress.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "magesync"

// Outcome labels
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeCreated    = "created"
	OutcomeUpdated    = "updated"
	OutcomeDuplicated = "duplicated"
	OutcomeFailed     = "failed"
	OutcomeSkipped    = "skipped"
)

var (
	// SourceCalls counts remote calls made through the gateway
	SourceCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "calls_total",
			Help:      "Remote calls issued to the source API",
		},
		[]string{"method", "outcome"},
	)

	// SourceRetries counts retried attempts
	SourceRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "retries_total",
			Help:      "Retried source call attempts",
		},
		[]string{"method"},
	)

	// SourceReconnects counts session logins
	SourceReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "logins_total",
			Help:      "Source session logins, including reconnects after expiry",
		},
	)

	// Records counts reconciler outcomes per entity
	Records = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "destination",
			Name:      "records_total",
			Help:      "Records pushed to the destination by outcome",
		},
		[]string{"entity", "outcome"},
	)

	// DestinationLatency tracks destination HTTP latency
	DestinationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "host"},
	)

	// StatusSeen counts source orders by status, including filtered ones
	StatusSeen = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "orders_seen_total",
			Help:      "Orders listed from the source by status",
		},
		[]string{"status"},
	)
)

// RecordOutcome increments the outcome counter for an entity
func RecordOutcome(entity, outcome string) {
	Records.WithLabelValues(entity, outcome).Inc()
}

// Timer measures elapsed time
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() Timer {
	return Timer{start: time.Now()}
}

// Seconds returns the elapsed time in seconds
func (t Timer) Seconds() float64 {
	return time.Since(t.start).Seconds()
}

// Serve exposes the default registry on addr until ctx is done
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
