package pipeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
)

// fakeSource serves records from memory. Listings are keyed by the first
// day of the queried range.
type fakeSource struct {
	store  string
	stores []string

	customers     map[string]*magento.Customer
	customerLists map[string][]magento.Customer

	orders     map[string]*magento.OrderInfo
	orderErr   error
	orderLists map[string][]magento.Order

	products     map[string]*magento.Product
	productLists map[string][]magento.Product
	stock        map[string][]magento.StockItem
	media        map[string][]magento.Media

	tree       *magento.CategoryNode
	categories map[string]*magento.CategoryInfo

	listErr error
	listed  []magento.Range
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		customers:     map[string]*magento.Customer{},
		customerLists: map[string][]magento.Customer{},
		orders:        map[string]*magento.OrderInfo{},
		orderLists:    map[string][]magento.Order{},
		products:      map[string]*magento.Product{},
		productLists:  map[string][]magento.Product{},
		stock:         map[string][]magento.StockItem{},
		media:         map[string][]magento.Media{},
		categories:    map[string]*magento.CategoryInfo{},
	}
}

func (f *fakeSource) SetStore(id string) {
	f.store = id
	f.stores = append(f.stores, id)
}

func (f *fakeSource) Store() string { return f.store }

func (f *fakeSource) Customer(_ context.Context, id string) *magento.Customer {
	return f.customers[id]
}

func (f *fakeSource) Customers(_ context.Context, rng magento.Range, _ bool) ([]magento.Customer, error) {
	f.listed = append(f.listed, rng)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]magento.Customer{}, f.customerLists[rng.From[:10]]...), nil
}

func (f *fakeSource) Order(_ context.Context, id string) (*magento.OrderInfo, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return f.orders[id], nil
}

func (f *fakeSource) Orders(_ context.Context, rng magento.Range, _ []string) ([]magento.Order, error) {
	f.listed = append(f.listed, rng)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]magento.Order{}, f.orderLists[rng.From[:10]]...), nil
}

func (f *fakeSource) Product(_ context.Context, sku string) *magento.Product {
	return f.products[sku]
}

func (f *fakeSource) ProductBy(_ context.Context, id, _ string) *magento.Product {
	for _, p := range f.products {
		if p.ProductID.Trim() == id {
			return p
		}
	}
	return nil
}

func (f *fakeSource) Products(_ context.Context, rng magento.Range) ([]magento.Product, error) {
	f.listed = append(f.listed, rng)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]magento.Product{}, f.productLists[rng.From[:10]]...), nil
}

func (f *fakeSource) Stock(_ context.Context, id string) []magento.StockItem {
	return f.stock[id]
}

func (f *fakeSource) Media(_ context.Context, sku string) []magento.Media {
	return f.media[sku]
}

func (f *fakeSource) CategoryTree(context.Context) (*magento.CategoryNode, error) {
	return f.tree, nil
}

func (f *fakeSource) Category(_ context.Context, id string) *magento.CategoryInfo {
	return f.categories[id]
}

// decode builds a source record from its wire form so attributes are kept
func decode[T any](t *testing.T, raw string) *T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return &v
}

// fakeDestination is an in-memory WoowUp account
type fakeDestination struct {
	users     map[string]*woowup.Customer
	purchases map[string]*woowup.Order
	products  map[string]*woowup.Product
	inStock   []woowup.Product

	// failUserCreates refuses that many user creations
	failUserCreates int

	createdUsers    int
	updatedUsers    int
	purchaseCreates int
	purchaseUpdates int
}

func newFakeDestination() *fakeDestination {
	return &fakeDestination{
		users:     map[string]*woowup.Customer{},
		purchases: map[string]*woowup.Order{},
		products:  map[string]*woowup.Product{},
	}
}

func (d *fakeDestination) UserExists(_ context.Context, email, document string) (bool, error) {
	for _, u := range d.users {
		if (email != "" && u.Email == email) || (document != "" && u.Document == document) {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDestination) CreateUser(_ context.Context, c *woowup.Customer) error {
	if d.failUserCreates > 0 {
		d.failUserCreates--
		return &woowup.APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "try again"}
	}
	d.createdUsers++
	d.users[c.Identity()] = c
	return nil
}

func (d *fakeDestination) UpdateUser(_ context.Context, c *woowup.Customer) error {
	d.updatedUsers++
	d.users[c.Identity()] = c
	return nil
}

func (d *fakeDestination) CreatePurchase(_ context.Context, o *woowup.Order) error {
	d.purchaseCreates++
	if _, ok := d.purchases[o.InvoiceNumber]; ok {
		return &woowup.APIError{Status: http.StatusConflict, Code: woowup.CodeDuplicatedPurchaseNumber}
	}
	d.purchases[o.InvoiceNumber] = o
	return nil
}

func (d *fakeDestination) UpdatePurchase(_ context.Context, o *woowup.Order) error {
	d.purchaseUpdates++
	d.purchases[o.InvoiceNumber] = o
	return nil
}

func (d *fakeDestination) CreateProduct(_ context.Context, p *woowup.Product) error {
	d.products[p.SKU] = p
	return nil
}

func (d *fakeDestination) UpdateProduct(_ context.Context, sku string, p *woowup.Product) error {
	if _, ok := d.products[sku]; !ok {
		return &woowup.APIError{Status: http.StatusNotFound, Code: woowup.CodeNotFound}
	}
	d.products[sku] = p
	return nil
}

func (d *fakeDestination) SearchProducts(_ context.Context, _ map[string]any, page, limit int) ([]woowup.Product, error) {
	start := page * limit
	if start >= len(d.inStock) {
		return nil, nil
	}
	end := min(start+limit, len(d.inStock))
	return d.inStock[start:end], nil
}

var _ woowup.API = (*fakeDestination)(nil)
