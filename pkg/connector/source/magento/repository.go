package magento

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/logger"
)

// Repository is the read side used by the import pipeline.
//
// Single-entity lookups (customer, product, stock, media, category detail,
// stores) are opportunistic: a fault is logged and the lookup reports absent.
// Bulk lists and the order detail needed to build an order propagate faults,
// since skipping them would silently drop records from the run.
//
// Customer and product details are memoized for the lifetime of the
// repository, which is one run.
type Repository struct {
	client  Client
	logger  *zap.Logger
	storeID string

	customers map[string]*Customer
	products  map[string]*Product
}

// NewRepository wraps client
func NewRepository(client Client, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{
		client:    client,
		logger:    log.With(zap.String("component", "magento_repository")),
		customers: make(map[string]*Customer),
		products:  make(map[string]*Product),
	}
}

// SetStore scopes subsequent list calls to a store; empty clears the scope
func (r *Repository) SetStore(storeID string) {
	r.storeID = storeID
}

// Store returns the current store scope
func (r *Repository) Store() string {
	return r.storeID
}

// Customer returns a customer with its default address attached, or nil
func (r *Repository) Customer(ctx context.Context, id string) *Customer {
	if id == "" {
		return nil
	}
	if c, ok := r.customers[id]; ok {
		return c
	}

	log := logger.FromContext(ctx, r.logger)
	log.Info("getting info for customer", zap.String("customer_id", id))

	customer, err := r.client.CustomerInfo(ctx, id)
	if err != nil {
		log.Warn("customer lookup failed", zap.String("customer_id", id), zap.Error(err))
		return nil
	}
	if customer == nil {
		return nil
	}

	if addressID := customer.AddressID(); addressID != "" {
		address, err := r.client.CustomerAddress(ctx, addressID)
		if err != nil {
			log.Warn("customer address lookup failed", zap.String("customer_id", id), zap.Error(err))
			return nil
		}
		customer.Address = address
	}

	r.customers[id] = customer
	return customer
}

// Order returns the order detail. Faults propagate.
func (r *Repository) Order(ctx context.Context, incrementID string) (*OrderInfo, error) {
	return r.client.OrderInfo(ctx, incrementID)
}

// Product returns product detail looked up by sku, or nil
func (r *Repository) Product(ctx context.Context, sku string) *Product {
	return r.ProductBy(ctx, sku, "sku")
}

// ProductBy returns product detail looked up by the given identifier field, or nil
func (r *Repository) ProductBy(ctx context.Context, id, field string) *Product {
	if id == "" {
		return nil
	}
	if p, ok := r.products[id]; ok {
		return p
	}

	product, err := r.client.ProductInfo(ctx, id, field)
	if err != nil {
		logger.FromContext(ctx, r.logger).Warn("product lookup failed", zap.String("id", id), zap.Error(err))
		return nil
	}
	if product == nil {
		return nil
	}
	r.products[id] = product
	return product
}

// Stock returns the stock entries for a product, empty on fault
func (r *Repository) Stock(ctx context.Context, id string) []StockItem {
	items, err := r.client.StockItems(ctx, id)
	if err != nil {
		logger.FromContext(ctx, r.logger).Warn("stock lookup failed", zap.String("id", id), zap.Error(err))
		return []StockItem{}
	}
	return items
}

// Media returns the images for a product, empty on fault
func (r *Repository) Media(ctx context.Context, sku string) []Media {
	media, err := r.client.MediaList(ctx, sku)
	if err != nil {
		logger.FromContext(ctx, r.logger).Warn("media lookup failed", zap.String("sku", sku), zap.Error(err))
		return []Media{}
	}
	return media
}

// CategoryTree returns the root of the category tree. Faults propagate.
func (r *Repository) CategoryTree(ctx context.Context) (*CategoryNode, error) {
	return r.client.CategoryTree(ctx)
}

// Category returns category detail, or nil
func (r *Repository) Category(ctx context.Context, id string) *CategoryInfo {
	info, err := r.client.CategoryInfo(ctx, id)
	if err != nil {
		logger.FromContext(ctx, r.logger).Warn("category lookup failed", zap.String("category_id", id), zap.Error(err))
		return nil
	}
	return info
}

// Customers lists customers in a range for the current store. Faults propagate.
func (r *Repository) Customers(ctx context.Context, rng Range, onlyNew bool) ([]Customer, error) {
	return r.client.ListCustomers(ctx, CustomerQuery{Range: rng, New: onlyNew, StoreID: r.storeID})
}

// Orders lists orders in a range for the current store. Faults propagate.
func (r *Repository) Orders(ctx context.Context, rng Range, statuses []string) ([]Order, error) {
	return r.client.ListOrders(ctx, OrderQuery{Range: rng, StoreID: r.storeID, Statuses: statuses})
}

// Products lists products updated in a range for the current store. Faults propagate.
func (r *Repository) Products(ctx context.Context, rng Range) ([]Product, error) {
	return r.client.ListProducts(ctx, ProductQuery{Range: rng, StoreID: r.storeID})
}

// AttributeSets lists product attribute sets, empty on fault
func (r *Repository) AttributeSets(ctx context.Context) []AttributeSet {
	sets, err := r.client.AttributeSets(ctx)
	if err != nil {
		logger.FromContext(ctx, r.logger).Warn("attribute set lookup failed", zap.Error(err))
		return []AttributeSet{}
	}
	return sets
}

// Stores lists store views, empty on fault
func (r *Repository) Stores(ctx context.Context) []Store {
	stores, err := r.client.Stores(ctx)
	if err != nil {
		logger.FromContext(ctx, r.logger).Warn("store lookup failed", zap.Error(err))
		return []Store{}
	}
	return stores
}
