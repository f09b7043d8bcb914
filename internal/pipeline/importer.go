// Package pipeline runs the import of one Magento store into WoowUp,
// walking date windows over the source, mapping each record and
// reconciling it against the destination.
//
// # Overview
//
// The pipeline package provides:
//   - Date windows walked day by day or month by month
//   - Lazy enumeration of customers, orders and products per window bucket
//   - Mapping of source records to destination records, customized by filters
//   - Import runs that push every record and report a statistics summary
//
// # Basic Usage
//
//	repo := magento.NewRepository(client, logger)
//	rec := woowup.NewReconciler(api, woowup.NewStatistics(), logger)
//
//	importer := pipeline.NewImporter(repo, rec, hooks, pipeline.Config{
//	    Transform: pipeline.TransformConfig{Host: "https://shop.example.com"},
//	    Statuses:  []string{"complete"},
//	}, logger)
//
//	summary, err := importer.ImportOrders(ctx, pipeline.OrderOptions{Days: 5})
//
// A fault listing a window bucket aborts the run. Faults on single records
// are logged, counted in the statistics and skipped.
package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/connector/base"
	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/logger"
	"github.com/ajitpratap0/magesync/pkg/metrics"
	"github.com/ajitpratap0/magesync/pkg/observability"
)

// Defaults for the import windows
const (
	DefaultCustomerDays  = 5
	DefaultOrderDays     = 5
	DefaultProductMonths = 6
)

// Config is the import configuration of one deployment
type Config struct {
	Transform TransformConfig
	// Stores are imported one after another; empty means unscoped
	Stores []string
	// Statuses are the order statuses imported
	Statuses []string
	// StoreID drops orders placed in other stores
	StoreID string
	// ProductTypes are tried in order for every listed product
	ProductTypes []string
	// ProgressInterval is how often a running import logs its progress
	ProgressInterval time.Duration
}

// OrderOptions control an order import
type OrderOptions struct {
	// Days is how far back the window starts; DefaultOrderDays when zero
	Days int
	// To ends the window; today when zero
	To time.Time
	// Update replaces purchases that already exist
	Update bool
	// Importing marks a historical load, approving orders at creation time
	Importing bool
}

// Summary reports one import run
type Summary struct {
	RunID    string
	Entity   string
	Started  time.Time
	Duration time.Duration
	Stats    map[string]woowup.EntityStats
	// Statuses counts every listed order by status
	Statuses StatusBreakdown
	// Retired counts destination products marked unavailable
	Retired int
}

// Importer runs imports from a source into the destination
type Importer struct {
	source      Source
	reconciler  *woowup.Reconciler
	enumerator  *Enumerator
	transformer *Transformer
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
	progress    *base.ProgressReporter
}

// NewImporter wires an importer
func NewImporter(src Source, rec *woowup.Reconciler, hooks *Hooks, cfg Config, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{
		source:      src,
		reconciler:  rec,
		enumerator:  NewEnumerator(src, log),
		transformer: NewTransformer(src, hooks, cfg.Transform, log),
		cfg:         cfg,
		logger:      log.With(zap.String("component", "importer")),
		now:         time.Now,
	}
}

// WithClock replaces the clock of the importer and its stages
func (i *Importer) WithClock(now func() time.Time) *Importer {
	i.now = now
	i.enumerator.WithClock(now)
	i.transformer.WithClock(now)
	return i
}

// Transformer returns the record transformer
func (i *Importer) Transformer() *Transformer {
	return i.transformer
}

// ImportCustomers pushes the customers created in the last days, then
// retries the failed ones once
func (i *Importer) ImportCustomers(ctx context.Context, days int) (sum *Summary, err error) {
	if days <= 0 {
		days = DefaultCustomerDays
	}
	ctx, sum = i.begin(ctx, woowup.EntityCustomers)
	ctx, span := observability.StartSpan(ctx, "import.customers")
	defer func() { observability.EndSpan(span, err) }()

	log := logger.FromContext(ctx, i.logger)
	log.Info("importing customers", zap.Int("days", days))

	window := LastDays(i.now(), days)
	for _, store := range i.stores() {
		sctx := i.scope(ctx, store)
		for c, err := range i.enumerator.Customers(sctx, window, false) {
			if err != nil {
				return i.abort(ctx, sum, err)
			}
			i.progress.Increment()
			customer, err := i.transformer.Customer(sctx, c)
			if err != nil {
				continue
			}
			i.reconciler.UpsertCustomer(sctx, customer)
		}
	}

	if failed := i.reconciler.Stats().ResetFailed(woowup.EntityCustomers); len(failed) > 0 {
		log.Info("retrying failed customers", zap.Int("count", len(failed)))
		for _, f := range failed {
			if c, ok := f.Record.(*woowup.Customer); ok {
				i.reconciler.UpsertCustomer(ctx, c)
			}
		}
	}

	return i.finish(ctx, sum), nil
}

// ImportOrders pushes the orders of the window, each preceded by its customer
func (i *Importer) ImportOrders(ctx context.Context, opts OrderOptions) (sum *Summary, err error) {
	if opts.Days <= 0 {
		opts.Days = DefaultOrderDays
	}
	ctx, sum = i.begin(ctx, woowup.EntityOrders)
	ctx, span := observability.StartSpan(ctx, "import.orders")
	defer func() { observability.EndSpan(span, err) }()

	log := logger.FromContext(ctx, i.logger)

	today := i.now()
	window := LastDays(today, opts.Days)
	if opts.To.IsZero() {
		window = window.Bounded(today)
	} else {
		window = window.Until(opts.To)
	}
	log.Info("importing orders",
		zap.Time("from", window.From),
		zap.Time("to", window.To),
		zap.Strings("statuses", i.cfg.Statuses),
		zap.String("store_id", i.cfg.StoreID),
		zap.Bool("update", opts.Update))

	if err := i.transformer.LoadCategories(ctx); err != nil {
		return i.abort(ctx, sum, err)
	}

	filter := OrderFilter{Statuses: i.cfg.Statuses, StoreID: i.cfg.StoreID}
	for _, store := range i.stores() {
		sctx := i.scope(ctx, store)
		for o, err := range i.enumerator.Orders(sctx, window, filter, sum.Statuses) {
			if err != nil {
				return i.abort(ctx, sum, err)
			}
			i.progress.Increment()
			order, err := i.transformer.Order(sctx, o, opts.Importing)
			if err != nil {
				if !stderrors.Is(err, ErrInvalidOrder) {
					i.recordFailure(sctx, woowup.EntityOrders, o.IncrementID.Trim(), err)
				}
				continue
			}
			if order.Customer != nil {
				i.reconciler.UpsertCustomer(sctx, order.Customer)
			}
			i.reconciler.UpsertOrder(sctx, order, opts.Update)
		}
	}

	fields := make([]zap.Field, 0, len(sum.Statuses))
	for _, status := range sum.Statuses.Statuses() {
		fields = append(fields, zap.Int(status, sum.Statuses[status]))
	}
	log.Info("orders listed by status", zap.Dict("statuses", fields...), zap.Int("total", sum.Statuses.Total()))

	return i.finish(ctx, sum), nil
}

// ImportProducts pushes the products listed in the last months for every
// configured type, then marks unavailable the destination products in
// stock that were not pushed
func (i *Importer) ImportProducts(ctx context.Context, months int) (sum *Summary, err error) {
	if months <= 0 {
		months = DefaultProductMonths
	}
	ctx, sum = i.begin(ctx, woowup.EntityProducts)
	ctx, span := observability.StartSpan(ctx, "import.products")
	defer func() { observability.EndSpan(span, err) }()

	log := logger.FromContext(ctx, i.logger)
	log.Info("importing products", zap.Int("months", months), zap.Strings("types", i.cfg.ProductTypes))

	if err := i.transformer.LoadCategories(ctx); err != nil {
		return i.abort(ctx, sum, err)
	}

	pushed := make(map[string]struct{})
	for p, err := range i.enumerator.Products(ctx, LastMonths(i.now(), months)) {
		if err != nil {
			return i.abort(ctx, sum, err)
		}
		i.progress.Increment()
		sku := p.Sku.String()
		if p.Sku.Trim() == "" {
			continue
		}
		info := i.source.Product(ctx, sku)
		if info == nil {
			log.Info("product detail not found", zap.String("sku", sku))
			continue
		}
		for _, typ := range i.cfg.ProductTypes {
			product, err := i.transformer.Product(ctx, sku, typ, info)
			if err != nil {
				continue
			}
			i.reconciler.UpsertProduct(ctx, product)
			pushed[product.SKU] = struct{}{}
		}
	}

	log.Info("searching unavailable products")
	var retire []woowup.Product
	for p, err := range i.reconciler.SearchProducts(ctx, map[string]any{"with_stock": true}) {
		if err != nil {
			return i.abort(ctx, sum, errors.Wrap(err, errors.TypeOf(err), "failed to list destination products"))
		}
		if _, ok := pushed[p.SKU]; !ok {
			retire = append(retire, p)
		}
	}
	for _, p := range retire {
		log.Info("product no longer available", zap.String("sku", p.SKU))
		if i.reconciler.UpsertProduct(ctx, Unavailable(p)) {
			sum.Retired++
		}
	}

	return i.finish(ctx, sum), nil
}

func (i *Importer) stores() []string {
	if len(i.cfg.Stores) == 0 {
		return []string{""}
	}
	return i.cfg.Stores
}

func (i *Importer) scope(ctx context.Context, store string) context.Context {
	i.source.SetStore(store)
	if store != "" {
		logger.FromContext(ctx, i.logger).Info("importing store", zap.String("store", store))
	}
	return logger.WithStore(ctx, store)
}

func (i *Importer) begin(ctx context.Context, entity string) (context.Context, *Summary) {
	sum := &Summary{
		RunID:   logger.NewRunID(),
		Entity:  entity,
		Started: i.now(),
	}
	if entity == woowup.EntityOrders {
		sum.Statuses = StatusBreakdown{}
	}
	ctx = logger.WithRun(ctx, sum.RunID, entity)
	i.progress = base.NewProgressReporter(logger.FromContext(ctx, i.logger), i.cfg.ProgressInterval)
	i.progress.Start(ctx)
	return ctx, sum
}

func (i *Importer) finish(ctx context.Context, sum *Summary) *Summary {
	sum.Duration = i.now().Sub(sum.Started)
	sum.Stats = i.reconciler.Stats().Snapshot()

	log := logger.FromContext(ctx, i.logger)
	if i.progress != nil {
		log.Info("records listed", zap.Int64("listed", i.progress.Stop()))
		i.progress = nil
	}
	for _, entity := range woowup.Entities {
		s, ok := sum.Stats[entity]
		if !ok {
			continue
		}
		log.Info("import finished",
			zap.String("record", entity),
			zap.Int("created", s.Created),
			zap.Int("updated", s.Updated),
			zap.Int("duplicated", s.Duplicated),
			zap.Int("failed", s.FailedCount()),
			zap.Duration("duration", sum.Duration))
	}
	return sum
}

func (i *Importer) abort(ctx context.Context, sum *Summary, err error) (*Summary, error) {
	logger.FromContext(ctx, i.logger).Error("import aborted", zap.Error(err))
	return i.finish(ctx, sum), err
}

// recordFailure counts a record that could not be built because of a source fault
func (i *Importer) recordFailure(ctx context.Context, entity, identity string, err error) {
	logger.FromContext(ctx, i.logger).Warn("record failed",
		zap.String("record", entity),
		zap.String("identity", identity),
		zap.Error(err))
	i.reconciler.Stats().RecordFailed(entity, woowup.Failure{
		Identity: identity,
		Code:     string(errors.TypeOf(err)),
		Message:  err.Error(),
	})
	metrics.RecordOutcome(entity, metrics.OutcomeFailed)
}
