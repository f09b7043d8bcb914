package pipeline

import (
	"context"

	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
)

// Source is the read side of a sync run. *magento.Repository implements it.
//
// Single-entity lookups return nil or an empty slice when the record cannot
// be fetched. Window listings, the order detail and the category tree return
// the fault.
type Source interface {
	CategorySource

	SetStore(storeID string)
	Store() string

	Customer(ctx context.Context, id string) *magento.Customer
	Customers(ctx context.Context, rng magento.Range, onlyNew bool) ([]magento.Customer, error)

	Order(ctx context.Context, incrementID string) (*magento.OrderInfo, error)
	Orders(ctx context.Context, rng magento.Range, statuses []string) ([]magento.Order, error)

	Product(ctx context.Context, sku string) *magento.Product
	ProductBy(ctx context.Context, id, field string) *magento.Product
	Products(ctx context.Context, rng magento.Range) ([]magento.Product, error)
	Stock(ctx context.Context, id string) []magento.StockItem
	Media(ctx context.Context, sku string) []magento.Media
}

var _ Source = (*magento.Repository)(nil)
