package filters

import (
	"strings"

	"github.com/ajitpratap0/magesync/pkg/connector/registry"
	"github.com/ajitpratap0/magesync/pkg/errors"
)

// Filter names
const (
	StripSkuSuffixName = "strip-sku-suffix"
	VariantParentName  = "variant-parent"
)

// StripSkuSuffix removes the first matching suffix from a sku
type StripSkuSuffix struct {
	suffixes []string
}

// NewStripSkuSuffix creates the filter; settings.suffixes is required
func NewStripSkuSuffix(settings map[string]any) (registry.Filter, error) {
	var s struct {
		Suffixes []string `mapstructure:"suffixes"`
	}
	if err := decodeSettings(StripSkuSuffixName, settings, &s); err != nil {
		return nil, err
	}
	if len(s.Suffixes) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, StripSkuSuffixName+": suffixes is required")
	}
	return &StripSkuSuffix{suffixes: s.Suffixes}, nil
}

func (f *StripSkuSuffix) Name() string { return StripSkuSuffixName }

// FilterSku implements pipeline.FilterSkuHook
func (f *StripSkuSuffix) FilterSku(sku string) string {
	for _, suffix := range f.suffixes {
		if suffix != "" && strings.HasSuffix(sku, suffix) && len(sku) > len(suffix) {
			return strings.TrimSuffix(sku, suffix)
		}
	}
	return sku
}

// VariantParent maps a SKU-variant sku to its parent SKU
type VariantParent struct {
	separator string
}

// NewVariantParent creates the filter; the separator defaults to "-"
func NewVariantParent(settings map[string]any) (registry.Filter, error) {
	s := struct {
		Separator string `mapstructure:"separator"`
	}{Separator: "-"}
	if err := decodeSettings(VariantParentName, settings, &s); err != nil {
		return nil, err
	}
	if s.Separator == "" {
		return nil, errors.New(errors.ErrorTypeConfig, VariantParentName+": separator must not be empty")
	}
	return &VariantParent{separator: s.Separator}, nil
}

func (f *VariantParent) Name() string { return VariantParentName }

// ParentSku implements pipeline.ParentSkuHook
func (f *VariantParent) ParentSku(sku string) string {
	i := strings.LastIndex(sku, f.separator)
	if i <= 0 {
		return ""
	}
	return sku[:i]
}
