package woowup

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/logger"
	"github.com/ajitpratap0/magesync/pkg/metrics"
)

// Reconciler pushes records to WoowUp and turns each answer into a
// statistics outcome. Upserts never return errors: a refused record is
// counted as failed and the run goes on.
type Reconciler struct {
	api      API
	stats    *Statistics
	logger   *zap.Logger
	pageSize int
}

// NewReconciler creates a reconciler recording into stats
func NewReconciler(api API, stats *Statistics, log *zap.Logger) *Reconciler {
	if stats == nil {
		stats = NewStatistics()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{
		api:      api,
		stats:    stats,
		logger:   log.With(zap.String("component", "woowup_reconciler")),
		pageSize: DefaultPageSize,
	}
}

// WithPageSize sets the product search page size
func (r *Reconciler) WithPageSize(n int) *Reconciler {
	if n > 0 {
		r.pageSize = n
	}
	return r
}

// Stats returns the statistics the reconciler records into
func (r *Reconciler) Stats() *Statistics {
	return r.stats
}

// UpsertCustomer creates the customer when no user matches its email or
// document, and updates the matching users otherwise
func (r *Reconciler) UpsertCustomer(ctx context.Context, c *Customer) bool {
	log := logger.FromContext(ctx, r.logger).With(zap.String("customer", c.Identity()))

	exists, err := r.api.UserExists(ctx, c.Email, c.Document)
	if err == nil {
		if !exists {
			if err = r.api.CreateUser(ctx, c); err == nil {
				log.Info("customer created")
				r.stats.RecordCreated(EntityCustomers)
				metrics.RecordOutcome(EntityCustomers, metrics.OutcomeCreated)
				return true
			}
		} else {
			if err = r.api.UpdateUser(ctx, c); err == nil {
				log.Info("customer updated")
				r.stats.RecordUpdated(EntityCustomers)
				metrics.RecordOutcome(EntityCustomers, metrics.OutcomeUpdated)
				return true
			}
		}
	}

	r.fail(log, EntityCustomers, c.Identity(), c, err)
	return false
}

// UpsertOrder creates the purchase. A duplicated invoice number is counted
// and, when allowUpdate is set, the existing purchase is replaced.
func (r *Reconciler) UpsertOrder(ctx context.Context, o *Order, allowUpdate bool) bool {
	log := logger.FromContext(ctx, r.logger).With(zap.String("invoice_number", o.InvoiceNumber))

	err := r.api.CreatePurchase(ctx, o)
	if err == nil {
		log.Info("purchase created")
		r.stats.RecordCreated(EntityOrders)
		metrics.RecordOutcome(EntityOrders, metrics.OutcomeCreated)
		return true
	}

	apiErr, ok := AsAPIError(err)
	if ok {
		switch apiErr.Code {
		case CodeUserNotFound:
			log.Info("purchase rejected: customer not found")
			r.fail(log, EntityOrders, o.InvoiceNumber, o, err)
			return false
		case CodeDuplicatedPurchaseNumber:
			log.Info("purchase duplicated")
			r.stats.RecordDuplicated(EntityOrders)
			metrics.RecordOutcome(EntityOrders, metrics.OutcomeDuplicated)
			if !allowUpdate {
				return true
			}
			return r.updateOrder(ctx, log, o)
		}
	}

	r.fail(log, EntityOrders, o.InvoiceNumber, o, err)
	return false
}

func (r *Reconciler) updateOrder(ctx context.Context, log *zap.Logger, o *Order) bool {
	err := r.api.UpdatePurchase(ctx, o)
	if err == nil {
		log.Info("purchase updated")
		r.stats.RecordUpdated(EntityOrders)
		metrics.RecordOutcome(EntityOrders, metrics.OutcomeUpdated)
		return true
	}
	if apiErr, ok := AsAPIError(err); ok && apiErr.associatedWithDifferentCustomer() {
		log.Info("purchase belongs to a different customer, skipping update", zap.String("detail", apiErr.Detail()))
		metrics.RecordOutcome(EntityOrders, metrics.OutcomeSkipped)
		return true
	}
	r.fail(log, EntityOrders, o.InvoiceNumber, o, err)
	return false
}

// UpsertProduct updates the product, creating it when the destination does not know the sku
func (r *Reconciler) UpsertProduct(ctx context.Context, p *Product) bool {
	log := logger.FromContext(ctx, r.logger).With(zap.String("sku", p.SKU))

	err := r.api.UpdateProduct(ctx, p.SKU, p)
	if err == nil {
		log.Info("product updated")
		r.stats.RecordUpdated(EntityProducts)
		metrics.RecordOutcome(EntityProducts, metrics.OutcomeUpdated)
		return true
	}

	if apiErr, ok := AsAPIError(err); ok && apiErr.IsNotFound() {
		if err = r.api.CreateProduct(ctx, p); err == nil {
			log.Info("product created")
			r.stats.RecordCreated(EntityProducts)
			metrics.RecordOutcome(EntityProducts, metrics.OutcomeCreated)
			return true
		}
	}

	r.fail(log, EntityProducts, p.SKU, p, err)
	return false
}

// SearchProducts pages through products matching filter until an empty page.
// A failed page is yielded once and ends the sequence.
func (r *Reconciler) SearchProducts(ctx context.Context, filter map[string]any) iter.Seq2[Product, error] {
	return func(yield func(Product, error) bool) {
		for page := 0; ; page++ {
			products, err := r.api.SearchProducts(ctx, filter, page, r.pageSize)
			if err != nil {
				yield(Product{}, err)
				return
			}
			if len(products) == 0 {
				return
			}
			for _, p := range products {
				if !yield(p, nil) {
					return
				}
			}
		}
	}
}

func (r *Reconciler) fail(log *zap.Logger, entity, identity string, record any, err error) {
	code, message := failureDetail(err)
	log.Warn("record failed",
		zap.String("record", entity),
		zap.String("code", code),
		zap.String("message", message))
	r.stats.RecordFailed(entity, Failure{
		Identity: identity,
		Code:     code,
		Message:  message,
		Record:   record,
	})
	metrics.RecordOutcome(entity, metrics.OutcomeFailed)
}
