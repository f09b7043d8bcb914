package magento

import "strings"

// The remote API keeps one condition per field name, so a range on a single
// field is sent as two conditions whose keys differ only in letter casing
// (created_at / CREATED_AT). The backend matches fields case-insensitively.
// Every encoder below reproduces the exact key and casing the backend expects.

// Range is a datetime interval in the "2006-01-02 15:04:05" form the API uses
type Range struct {
	From string
	To   string
}

// HasTo reports whether the range has an upper bound
func (r Range) HasTo() bool {
	return r.To != ""
}

// CustomerQuery lists customers created or updated in a range
type CustomerQuery struct {
	Range
	// New filters on created_at instead of updated_at
	New     bool
	StoreID string
}

// OrderQuery lists orders created in a range
type OrderQuery struct {
	Range
	StoreID  string
	Statuses []string
}

// ProductQuery lists products updated in a range
type ProductQuery struct {
	Range
	StoreID string
}

func (q CustomerQuery) field() string {
	if q.New {
		return "created_at"
	}
	return "updated_at"
}

type keyValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type complexFilters struct {
	Filter        []keyValue `json:"filter,omitempty"`
	ComplexFilter []keyValue `json:"complex_filter"`
}

func cond(op, value string) keyValue {
	return keyValue{Key: op, Value: value}
}

// v2OrderFilters encodes salesOrderList filters
func v2OrderFilters(q OrderQuery) complexFilters {
	f := complexFilters{}
	if q.StoreID != "" {
		f.Filter = []keyValue{{Key: "store_id", Value: q.StoreID}}
	}
	f.ComplexFilter = []keyValue{
		{Key: "created_at", Value: cond("from", q.From)},
		{Key: "CREATED_AT", Value: cond("to", q.To)},
	}
	return f
}

// v2CustomerFilters encodes customerCustomerList filters
func v2CustomerFilters(q CustomerQuery) complexFilters {
	field := q.field()
	f := complexFilters{
		ComplexFilter: []keyValue{{Key: field, Value: cond("from", q.From)}},
	}
	if q.HasTo() {
		f.ComplexFilter = append(f.ComplexFilter, keyValue{Key: strings.ToUpper(field), Value: cond("to", q.To)})
	}
	if q.StoreID != "" {
		f.ComplexFilter = append(f.ComplexFilter, keyValue{Key: "store_id", Value: cond("=", q.StoreID)})
	}
	return f
}

// v2ProductFilters encodes catalogProductList filters; the store travels as a separate argument
func v2ProductFilters(q ProductQuery) complexFilters {
	return complexFilters{
		ComplexFilter: []keyValue{
			{Key: "UPDATED_AT", Value: cond("from", q.From)},
			{Key: "updated_at", Value: cond("to", q.To)},
		},
	}
}

// v1OrderFilters encodes order.list filters
func v1OrderFilters(q OrderQuery) map[string]any {
	f := map[string]any{}
	if q.StoreID != "" {
		f["store_id"] = map[string]any{"=": q.StoreID}
	}
	if len(q.Statuses) > 0 {
		f["status"] = map[string]any{"in": q.Statuses}
	}
	f["created_at"] = map[string]any{"gteq": q.From}
	f["CREATED_AT"] = map[string]any{"lteq": q.To}
	return f
}

// v1CustomerFilters encodes customer.list filters. The generic dispatcher
// keeps a single condition per key, so when both bounds are given the upper
// bound replaces the lower one, as the backend does.
func v1CustomerFilters(q CustomerQuery) map[string]any {
	complexFilter := map[string]any{}
	if q.From != "" {
		complexFilter[q.field()] = map[string]any{"from": q.From}
	}
	if q.HasTo() {
		complexFilter[q.field()] = map[string]any{"to": q.To}
	}
	f := map[string]any{"complex_filter": complexFilter}
	if q.StoreID != "" {
		f["store_id"] = map[string]any{"=": q.StoreID}
	}
	return f
}

// v1ProductParams encodes catalog_product.list parameters
func v1ProductParams(q ProductQuery) map[string]any {
	p := map[string]any{
		"filters": map[string]any{
			"updated_at": map[string]any{"gteq": q.From},
			"UPDATED_AT": map[string]any{"lteq": q.To},
		},
	}
	if q.StoreID != "" {
		p["store_id"] = q.StoreID
	}
	return p
}
