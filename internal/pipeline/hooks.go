package pipeline

import (
	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/registry"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
)

// A deployment customizes the mapping through filters. Each filter implements
// any subset of the hook interfaces below; the transformer calls a hook only
// on filters that implement it, in configured order.

// FilterSkuHook rewrites skus on products and order lines
type FilterSkuHook interface {
	FilterSku(sku string) string
}

// VariationsHook post-processes the variations of an order line
type VariationsHook interface {
	FilterVariations(variations []woowup.Variation) []woowup.Variation
}

// URLHook rewrites product urls
type URLHook interface {
	FilterURL(url string) string
}

// PointsHook computes loyalty points for an order
type PointsHook interface {
	PurchasePoints(order *woowup.Order) int
}

// CustomerAttributesHook extracts custom attributes from a customer or order record
type CustomerAttributesHook interface {
	CustomerAttributes(attrs magento.Attributes) map[string]string
}

// ProductAttributesHook extracts custom attributes from a product record
type ProductAttributesHook interface {
	ProductAttributes(product *magento.Product) map[string]string
}

// ParentSkuHook returns the parent sku of a variant, or empty
type ParentSkuHook interface {
	ParentSku(sku string) string
}

// StoreNameHook names the branch an order was placed in
type StoreNameHook interface {
	StoreName(order *magento.Order) string
}

// Hooks applies the configured filters. A nil *Hooks applies nothing.
type Hooks struct {
	filters []registry.Filter
}

// NewHooks chains filters in the given order
func NewHooks(filters ...registry.Filter) *Hooks {
	return &Hooks{filters: filters}
}

// Names lists the configured filters
func (h *Hooks) Names() []string {
	if h == nil {
		return nil
	}
	out := make([]string, 0, len(h.filters))
	for _, f := range h.filters {
		out = append(out, f.Name())
	}
	return out
}

// FilterSku passes sku through every FilterSkuHook
func (h *Hooks) FilterSku(sku string) string {
	if h == nil {
		return sku
	}
	for _, f := range h.filters {
		if hook, ok := f.(FilterSkuHook); ok {
			sku = hook.FilterSku(sku)
		}
	}
	return sku
}

// FilterVariations passes variations through every VariationsHook
func (h *Hooks) FilterVariations(variations []woowup.Variation) []woowup.Variation {
	if h == nil {
		return variations
	}
	for _, f := range h.filters {
		if hook, ok := f.(VariationsHook); ok {
			variations = hook.FilterVariations(variations)
		}
	}
	return variations
}

// FilterURL passes url through every URLHook
func (h *Hooks) FilterURL(url string) string {
	if h == nil {
		return url
	}
	for _, f := range h.filters {
		if hook, ok := f.(URLHook); ok {
			url = hook.FilterURL(url)
		}
	}
	return url
}

// PurchasePoints returns the points of the last PointsHook, if any
func (h *Hooks) PurchasePoints(order *woowup.Order) (int, bool) {
	if h == nil {
		return 0, false
	}
	points, found := 0, false
	for _, f := range h.filters {
		if hook, ok := f.(PointsHook); ok {
			points, found = hook.PurchasePoints(order), true
		}
	}
	return points, found
}

// CustomerAttributes returns the attributes of the last CustomerAttributesHook
func (h *Hooks) CustomerAttributes(attrs magento.Attributes) map[string]string {
	if h == nil {
		return nil
	}
	var out map[string]string
	for _, f := range h.filters {
		if hook, ok := f.(CustomerAttributesHook); ok {
			out = hook.CustomerAttributes(attrs)
		}
	}
	return out
}

// ProductAttributes returns the attributes of the last ProductAttributesHook
func (h *Hooks) ProductAttributes(product *magento.Product) map[string]string {
	if h == nil {
		return nil
	}
	var out map[string]string
	for _, f := range h.filters {
		if hook, ok := f.(ProductAttributesHook); ok {
			out = hook.ProductAttributes(product)
		}
	}
	return out
}

// ParentSku returns the parent sku of the last ParentSkuHook
func (h *Hooks) ParentSku(sku string) string {
	if h == nil {
		return ""
	}
	parent := ""
	for _, f := range h.filters {
		if hook, ok := f.(ParentSkuHook); ok {
			parent = hook.ParentSku(sku)
		}
	}
	return parent
}

// StoreName returns the last non-empty branch named by a StoreNameHook
func (h *Hooks) StoreName(order *magento.Order) (string, bool) {
	if h == nil {
		return "", false
	}
	name := ""
	for _, f := range h.filters {
		if hook, ok := f.(StoreNameHook); ok {
			if n := hook.StoreName(order); n != "" {
				name = n
			}
		}
	}
	return name, name != ""
}
