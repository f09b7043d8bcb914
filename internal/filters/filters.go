// Package filters holds the built-in mapping filters. Each filter registers
// itself by name and is enabled per deployment through sync.filters in the
// configuration:
//
//	sync:
//	  filters:
//	    - name: strip-sku-suffix
//	      settings:
//	        suffixes: ["-AR"]
//	    - name: variant-parent
//	    - name: points-per-amount
//	      settings:
//	        amount: 100
package filters

import (
	"github.com/mitchellh/mapstructure"

	"github.com/ajitpratap0/magesync/pkg/connector/registry"
	"github.com/ajitpratap0/magesync/pkg/errors"
)

func init() {
	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        StripSkuSuffixName,
		Description: "Removes configured suffixes from product and line skus",
		Hooks:       []string{"FilterSku"},
	}, NewStripSkuSuffix)

	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        VariantParentName,
		Description: "Treats SKU-variant skus as children of SKU for images and urls",
		Hooks:       []string{"ParentSku"},
	}, NewVariantParent)

	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        LowercaseURLName,
		Description: "Lower-cases product urls",
		Hooks:       []string{"FilterURL"},
	}, NewLowercaseURL)

	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        RenameVariationsName,
		Description: "Renames or drops order line variations",
		Hooks:       []string{"FilterVariations"},
	}, NewRenameVariations)

	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        PointsPerAmountName,
		Description: "Awards one loyalty point per amount of the order total",
		Hooks:       []string{"PurchasePoints"},
	}, NewPointsPerAmount)

	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        StoreNameName,
		Description: "Names the order branch after its store id",
		Hooks:       []string{"StoreName"},
	}, NewStoreName)

	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        CustomerAttributesName,
		Description: "Copies customer fields into custom attributes",
		Hooks:       []string{"CustomerAttributes"},
	}, NewCustomerAttributes)

	registry.MustRegisterFilter(registry.FilterInfo{
		Name:        ProductAttributesName,
		Description: "Copies product fields into custom attributes",
		Hooks:       []string{"ProductAttributes"},
	}, NewProductAttributes)
}

// decodeSettings decodes filter settings into out, accepting the loose
// types YAML and environment values arrive with
func decodeSettings(name string, settings map[string]any, out any) error {
	if len(settings) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create settings decoder")
	}
	if err := dec.Decode(settings); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid settings for filter "+name)
	}
	return nil
}
