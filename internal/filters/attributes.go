package filters

import (
	"github.com/ajitpratap0/magesync/pkg/connector/registry"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
	"github.com/ajitpratap0/magesync/pkg/errors"
)

// Filter names
const (
	CustomerAttributesName = "customer-attributes"
	ProductAttributesName  = "product-attributes"
)

// fieldMap maps a source field to a custom attribute name
type fieldMap map[string]string

func newFieldMap(name string, settings map[string]any) (fieldMap, error) {
	var s struct {
		Fields map[string]string `mapstructure:"fields"`
	}
	if err := decodeSettings(name, settings, &s); err != nil {
		return nil, err
	}
	if len(s.Fields) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, name+": fields is required")
	}
	return s.Fields, nil
}

func (m fieldMap) extract(attrs magento.Attributes) map[string]string {
	out := make(map[string]string, len(m))
	for field, key := range m {
		if key == "" {
			key = field
		}
		if v := attrs.String(field); v != "" {
			out[key] = v
		}
	}
	return out
}

// CustomerAttributes copies customer or order fields into custom attributes
type CustomerAttributes struct {
	fields fieldMap
}

// NewCustomerAttributes creates the filter from settings.fields
func NewCustomerAttributes(settings map[string]any) (registry.Filter, error) {
	fields, err := newFieldMap(CustomerAttributesName, settings)
	if err != nil {
		return nil, err
	}
	return &CustomerAttributes{fields: fields}, nil
}

func (f *CustomerAttributes) Name() string { return CustomerAttributesName }

// CustomerAttributes implements pipeline.CustomerAttributesHook
func (f *CustomerAttributes) CustomerAttributes(attrs magento.Attributes) map[string]string {
	return f.fields.extract(attrs)
}

// ProductAttributes copies product fields into custom attributes
type ProductAttributes struct {
	fields fieldMap
}

// NewProductAttributes creates the filter from settings.fields
func NewProductAttributes(settings map[string]any) (registry.Filter, error) {
	fields, err := newFieldMap(ProductAttributesName, settings)
	if err != nil {
		return nil, err
	}
	return &ProductAttributes{fields: fields}, nil
}

func (f *ProductAttributes) Name() string { return ProductAttributesName }

// ProductAttributes implements pipeline.ProductAttributesHook
func (f *ProductAttributes) ProductAttributes(p *magento.Product) map[string]string {
	return f.fields.extract(p.Attributes)
}
