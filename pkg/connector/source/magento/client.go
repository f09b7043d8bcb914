package magento

import (
	"bytes"
	"context"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/magesync/pkg/errors"
)

// Client is the uniform read interface over both API generations.
// Every method returns remote faults unchanged; the Repository decides which
// to absorb.
type Client interface {
	CustomerInfo(ctx context.Context, id string) (*Customer, error)
	CustomerAddress(ctx context.Context, addressID string) (*Address, error)
	OrderInfo(ctx context.Context, incrementID string) (*OrderInfo, error)
	ProductInfo(ctx context.Context, idOrSku, field string) (*Product, error)
	CategoryTree(ctx context.Context) (*CategoryNode, error)
	CategoryInfo(ctx context.Context, id string) (*CategoryInfo, error)
	ListCustomers(ctx context.Context, q CustomerQuery) ([]Customer, error)
	ListOrders(ctx context.Context, q OrderQuery) ([]Order, error)
	ListProducts(ctx context.Context, q ProductQuery) ([]Product, error)
	StockItems(ctx context.Context, ids ...string) ([]StockItem, error)
	MediaList(ctx context.Context, sku string) ([]Media, error)
	AttributeSets(ctx context.Context) ([]AttributeSet, error)
	Stores(ctx context.Context) ([]Store, error)
}

// Caller is the part of the Gateway the clients depend on
type Caller interface {
	Call(ctx context.Context, method string, args ...any) (json.RawMessage, error)
}

// API generations
const (
	VersionV1 = 1
	VersionV2 = 2
)

// NewClient returns the client for the configured API generation
func NewClient(version int, caller Caller) (Client, error) {
	switch version {
	case VersionV1:
		return &clientV1{caller: caller}, nil
	case VersionV2:
		return &clientV2{caller: caller}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown magento api version: %d", version)
	}
}

// decodeOne decodes a single record; null or false mean absent
func decodeOne[T any](raw json.RawMessage, method string) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if isEmptyResult(raw) {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decode "+method+" result")
	}
	return &out, nil
}

// decodeList decodes a list result. The API answers with null, false or an
// empty object when nothing matched and sometimes with an index-keyed object
// instead of an array; all of these become a non-nil slice.
func decodeList[T any](raw json.RawMessage, method string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if isEmptyResult(raw) || bytes.Equal(raw, []byte("{}")) {
		return []T{}, nil
	}
	if raw[0] == '{' {
		var keyed map[string]T
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "decode "+method+" result")
		}
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sortIndexKeys(keys)
		out := make([]T, 0, len(keyed))
		for _, k := range keys {
			out = append(out, keyed[k])
		}
		return out, nil
	}
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decode "+method+" result")
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// sortIndexKeys orders keys by their numeric value when every key is an
// index, so "10" follows "9"
func sortIndexKeys(keys []string) {
	idx := make(map[string]int, len(keys))
	for _, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil {
			sort.Strings(keys)
			return
		}
		idx[k] = n
	}
	sort.Slice(keys, func(i, j int) bool { return idx[keys[i]] < idx[keys[j]] })
}

func isEmptyResult(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false"))
}
