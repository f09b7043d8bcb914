package woowup

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/testutil"
)

// fakeAPI records calls and answers from per-method error queues
type fakeAPI struct {
	calls  []string
	exists bool
	errs   map[string][]error
	pages  [][]Product
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{errs: map[string][]error{}}
}

func (f *fakeAPI) next(method string) error {
	f.calls = append(f.calls, method)
	queue := f.errs[method]
	if len(queue) == 0 {
		return nil
	}
	f.errs[method] = queue[1:]
	return queue[0]
}

func (f *fakeAPI) UserExists(context.Context, string, string) (bool, error) {
	if err := f.next("exist"); err != nil {
		return false, err
	}
	return f.exists, nil
}

func (f *fakeAPI) CreateUser(context.Context, *Customer) error  { return f.next("users.create") }
func (f *fakeAPI) UpdateUser(context.Context, *Customer) error  { return f.next("multiusers.update") }
func (f *fakeAPI) CreatePurchase(context.Context, *Order) error { return f.next("purchases.create") }
func (f *fakeAPI) UpdatePurchase(context.Context, *Order) error { return f.next("purchases.update") }
func (f *fakeAPI) CreateProduct(context.Context, *Product) error {
	return f.next("products.create")
}
func (f *fakeAPI) UpdateProduct(context.Context, string, *Product) error {
	return f.next("products.update")
}

func (f *fakeAPI) SearchProducts(_ context.Context, _ map[string]any, page, _ int) ([]Product, error) {
	if err := f.next("products.search"); err != nil {
		return nil, err
	}
	if page < len(f.pages) {
		return f.pages[page], nil
	}
	return []Product{}, nil
}

func apiError(status int, code, message string) error {
	return classify(&APIError{Status: status, Code: code, Message: message})
}

func newTestReconciler(t *testing.T, api API) *Reconciler {
	return NewReconciler(api, NewStatistics(), testutil.TestLogger(t))
}

func TestUpsertCustomerCreates(t *testing.T) {
	api := newFakeAPI()
	r := newTestReconciler(t, api)

	ok := r.UpsertCustomer(context.Background(), &Customer{Email: "ana@example.com"})

	assert.True(t, ok)
	assert.Equal(t, []string{"exist", "users.create"}, api.calls)
	assert.Equal(t, 1, r.Stats().Snapshot()[EntityCustomers].Created)
}

func TestUpsertCustomerUpdates(t *testing.T) {
	api := newFakeAPI()
	api.exists = true
	r := newTestReconciler(t, api)

	ok := r.UpsertCustomer(context.Background(), &Customer{Document: "30111222"})

	assert.True(t, ok)
	assert.Equal(t, []string{"exist", "multiusers.update"}, api.calls)
	assert.Equal(t, 1, r.Stats().Snapshot()[EntityCustomers].Updated)
}

func TestUpsertCustomerFailureKeepsRecord(t *testing.T) {
	api := newFakeAPI()
	api.errs["users.create"] = []error{apiError(http.StatusBadRequest, "invalid_email", "bad email")}
	r := newTestReconciler(t, api)
	customer := &Customer{Email: "not-an-email"}

	ok := r.UpsertCustomer(context.Background(), customer)

	assert.False(t, ok)
	failed := r.Stats().Failed(EntityCustomers)
	require.Len(t, failed, 1)
	assert.Equal(t, "invalid_email", failed[0].Code)
	assert.Equal(t, "bad email", failed[0].Message)
	assert.Same(t, customer, failed[0].Record)
}

func TestUpsertCustomerExistenceFault(t *testing.T) {
	api := newFakeAPI()
	api.errs["exist"] = []error{errors.New(errors.ErrorTypeConnection, "connection refused")}
	r := newTestReconciler(t, api)

	assert.False(t, r.UpsertCustomer(context.Background(), &Customer{Email: "a@b.c"}))
	failed := r.Stats().Failed(EntityCustomers)
	require.Len(t, failed, 1)
	assert.Equal(t, "connection", failed[0].Code)
}

func TestUpsertOrder(t *testing.T) {
	tests := []struct {
		name        string
		errs        map[string][]error
		allowUpdate bool
		wantOK      bool
		wantCalls   []string
		want        EntityStats
		wantFailed  int
	}{
		{
			name:      "created",
			wantOK:    true,
			wantCalls: []string{"purchases.create"},
			want:      EntityStats{Created: 1},
		},
		{
			name:      "duplicated without update",
			errs:      map[string][]error{"purchases.create": {apiError(400, CodeDuplicatedPurchaseNumber, "dup")}},
			wantOK:    true,
			wantCalls: []string{"purchases.create"},
			want:      EntityStats{Duplicated: 1},
		},
		{
			name:        "duplicated with update",
			errs:        map[string][]error{"purchases.create": {apiError(400, CodeDuplicatedPurchaseNumber, "dup")}},
			allowUpdate: true,
			wantOK:      true,
			wantCalls:   []string{"purchases.create", "purchases.update"},
			want:        EntityStats{Duplicated: 1, Updated: 1},
		},
		{
			name: "update conflict with a different customer is skipped",
			errs: map[string][]error{
				"purchases.create": {apiError(400, CodeDuplicatedPurchaseNumber, "dup")},
				"purchases.update": {apiError(409, "conflict", "Purchase associated with a different customer")},
			},
			allowUpdate: true,
			wantOK:      true,
			wantCalls:   []string{"purchases.create", "purchases.update"},
			want:        EntityStats{Duplicated: 1},
		},
		{
			name: "other update error fails",
			errs: map[string][]error{
				"purchases.create": {apiError(400, CodeDuplicatedPurchaseNumber, "dup")},
				"purchases.update": {apiError(500, "internal_error", "boom")},
			},
			allowUpdate: true,
			wantCalls:   []string{"purchases.create", "purchases.update"},
			want:        EntityStats{Duplicated: 1},
			wantFailed:  1,
		},
		{
			name:       "user not found",
			errs:       map[string][]error{"purchases.create": {apiError(404, CodeUserNotFound, "user not found")}},
			wantCalls:  []string{"purchases.create"},
			wantFailed: 1,
		},
		{
			name:       "other error",
			errs:       map[string][]error{"purchases.create": {apiError(400, "invalid_purchase", "bad")}},
			wantCalls:  []string{"purchases.create"},
			wantFailed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			if tt.errs != nil {
				api.errs = tt.errs
			}
			r := newTestReconciler(t, api)

			ok := r.UpsertOrder(context.Background(), &Order{InvoiceNumber: "100000001"}, tt.allowUpdate)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCalls, api.calls)
			got := r.Stats().Snapshot()[EntityOrders]
			assert.Equal(t, tt.want.Created, got.Created)
			assert.Equal(t, tt.want.Updated, got.Updated)
			assert.Equal(t, tt.want.Duplicated, got.Duplicated)
			assert.Equal(t, tt.wantFailed, got.FailedCount())
		})
	}
}

func TestUpsertProduct(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		api := newFakeAPI()
		r := newTestReconciler(t, api)
		assert.True(t, r.UpsertProduct(context.Background(), &Product{SKU: "A"}))
		assert.Equal(t, 1, r.Stats().Snapshot()[EntityProducts].Updated)
	})

	t.Run("missing product is created", func(t *testing.T) {
		api := newFakeAPI()
		api.errs["products.update"] = []error{apiError(404, "", "not found")}
		r := newTestReconciler(t, api)
		assert.True(t, r.UpsertProduct(context.Background(), &Product{SKU: "A"}))
		assert.Equal(t, []string{"products.update", "products.create"}, api.calls)
		assert.Equal(t, 1, r.Stats().Snapshot()[EntityProducts].Created)
	})

	t.Run("create failure", func(t *testing.T) {
		api := newFakeAPI()
		api.errs["products.update"] = []error{apiError(404, "", "not found")}
		api.errs["products.create"] = []error{apiError(400, "invalid_product", "name required")}
		r := newTestReconciler(t, api)
		assert.False(t, r.UpsertProduct(context.Background(), &Product{SKU: "A"}))
		failed := r.Stats().Failed(EntityProducts)
		require.Len(t, failed, 1)
		assert.Equal(t, "invalid_product", failed[0].Code)
	})

	t.Run("other update error", func(t *testing.T) {
		api := newFakeAPI()
		api.errs["products.update"] = []error{apiError(400, "invalid_product", "bad")}
		r := newTestReconciler(t, api)
		assert.False(t, r.UpsertProduct(context.Background(), &Product{SKU: "A"}))
		assert.Equal(t, []string{"products.update"}, api.calls)
	})
}

func TestSearchProductsPagesUntilEmpty(t *testing.T) {
	api := newFakeAPI()
	api.pages = [][]Product{
		{{SKU: "A"}, {SKU: "B"}},
		{{SKU: "C"}},
	}
	r := newTestReconciler(t, api)

	var skus []string
	for p, err := range r.SearchProducts(context.Background(), map[string]any{"with_stock": true}) {
		require.NoError(t, err)
		skus = append(skus, p.SKU)
	}

	assert.Equal(t, []string{"A", "B", "C"}, skus)
	assert.Len(t, api.calls, 3)
}

func TestSearchProductsStopsOnError(t *testing.T) {
	api := newFakeAPI()
	api.errs["products.search"] = []error{errors.New(errors.ErrorTypeConnection, "down")}
	r := newTestReconciler(t, api)

	var errs int
	for _, err := range r.SearchProducts(context.Background(), nil) {
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}
