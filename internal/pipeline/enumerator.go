package pipeline

import (
	"context"
	"iter"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
	"github.com/ajitpratap0/magesync/pkg/logger"
	"github.com/ajitpratap0/magesync/pkg/metrics"
)

// StatusBreakdown counts every listed order by status, including the ones
// that were not emitted
type StatusBreakdown map[string]int

// Add counts one order
func (b StatusBreakdown) Add(status string) {
	b[status]++
}

// Total is the number of orders counted
func (b StatusBreakdown) Total() int {
	n := 0
	for _, c := range b {
		n += c
	}
	return n
}

// Statuses returns the counted statuses in order
func (b StatusBreakdown) Statuses() []string {
	out := make([]string, 0, len(b))
	for s := range b {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// OrderFilter selects which listed orders are emitted
type OrderFilter struct {
	Statuses []string
	// StoreID, when set, drops orders placed in other stores
	StoreID string
}

// Match reports whether the order passes the filter
func (f OrderFilter) Match(o *magento.Order) bool {
	if !slices.Contains(f.Statuses, o.Status.Trim()) {
		return false
	}
	return f.StoreID == "" || o.StoreID.Trim() == f.StoreID
}

// Enumerator walks date windows over the source. Each bucket is listed only
// after the previous one has been consumed.
type Enumerator struct {
	source Source
	logger *zap.Logger
	now    func() time.Time
}

// NewEnumerator creates an enumerator over src
func NewEnumerator(src Source, log *zap.Logger) *Enumerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enumerator{
		source: src,
		logger: log.With(zap.String("component", "enumerator")),
		now:    time.Now,
	}
}

// WithClock replaces the clock used to resolve today
func (e *Enumerator) WithClock(now func() time.Time) *Enumerator {
	e.now = now
	return e
}

// Customers lists the customers of each bucket. Listed entries are
// enriched with their detail and address; an entry whose detail cannot be
// fetched is emitted as listed.
func (e *Enumerator) Customers(ctx context.Context, w DateWindow, onlyNew bool) iter.Seq2[*magento.Customer, error] {
	return func(yield func(*magento.Customer, error) bool) {
		log := logger.FromContext(ctx, e.logger)
		for _, b := range w.Buckets(e.now()) {
			list, err := e.source.Customers(ctx, b.Range(), onlyNew)
			if err != nil {
				yield(nil, err)
				return
			}
			log.Info("customers listed", zap.Stringer("bucket", b), zap.Int("count", len(list)))

			for i := range list {
				c := &list[i]
				if id := c.CustomerID.Trim(); id != "" {
					if detail := e.source.Customer(ctx, id); detail != nil {
						c = detail
					} else {
						log.Debug("customer detail unavailable, using listed record", zap.String("customer_id", id))
					}
				}
				if !yield(c, nil) {
					return
				}
			}
		}
	}
}

// Orders lists the orders of each bucket, counts all of them into breakdown
// and emits those passing filter
func (e *Enumerator) Orders(ctx context.Context, w DateWindow, filter OrderFilter, breakdown StatusBreakdown) iter.Seq2[*magento.Order, error] {
	return func(yield func(*magento.Order, error) bool) {
		log := logger.FromContext(ctx, e.logger)
		for _, b := range w.Buckets(e.now()) {
			list, err := e.source.Orders(ctx, b.Range(), nil)
			if err != nil {
				yield(nil, err)
				return
			}
			log.Info("orders listed", zap.Stringer("bucket", b), zap.Int("count", len(list)))

			for i := range list {
				o := &list[i]
				status := o.Status.Trim()
				if breakdown != nil {
					breakdown.Add(status)
				}
				metrics.StatusSeen.WithLabelValues(status).Inc()

				if !filter.Match(o) {
					continue
				}
				if !yield(o, nil) {
					return
				}
			}
		}
	}
}

// Products lists the products of each bucket
func (e *Enumerator) Products(ctx context.Context, w DateWindow) iter.Seq2[*magento.Product, error] {
	return func(yield func(*magento.Product, error) bool) {
		log := logger.FromContext(ctx, e.logger)
		for _, b := range w.Buckets(e.now()) {
			list, err := e.source.Products(ctx, b.Range())
			if err != nil {
				yield(nil, err)
				return
			}
			if len(list) == 0 {
				log.Info("no products for the period", zap.Stringer("bucket", b))
				continue
			}
			log.Info("products listed", zap.Stringer("bucket", b), zap.Int("count", len(list)))

			for i := range list {
				if !yield(&list[i], nil) {
					return
				}
			}
		}
	}
}
