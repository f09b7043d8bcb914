package filters

import (
	"strings"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/registry"
)

// Filter names
const (
	LowercaseURLName     = "lowercase-url"
	RenameVariationsName = "rename-variations"
)

// LowercaseURL lower-cases product urls
type LowercaseURL struct{}

// NewLowercaseURL creates the filter; it takes no settings
func NewLowercaseURL(settings map[string]any) (registry.Filter, error) {
	if err := decodeSettings(LowercaseURLName, settings, &struct{}{}); err != nil {
		return nil, err
	}
	return LowercaseURL{}, nil
}

func (LowercaseURL) Name() string { return LowercaseURLName }

// FilterURL implements pipeline.URLHook
func (LowercaseURL) FilterURL(url string) string {
	return strings.ToLower(url)
}

// RenameVariations renames line variations; a name mapped to "" is dropped
type RenameVariations struct {
	names map[string]string
}

// NewRenameVariations creates the filter from settings.names
func NewRenameVariations(settings map[string]any) (registry.Filter, error) {
	var s struct {
		Names map[string]string `mapstructure:"names"`
	}
	if err := decodeSettings(RenameVariationsName, settings, &s); err != nil {
		return nil, err
	}
	return &RenameVariations{names: s.Names}, nil
}

func (f *RenameVariations) Name() string { return RenameVariationsName }

// FilterVariations implements pipeline.VariationsHook
func (f *RenameVariations) FilterVariations(variations []woowup.Variation) []woowup.Variation {
	out := make([]woowup.Variation, 0, len(variations))
	for _, v := range variations {
		if to, ok := f.names[v.Name]; ok {
			if to == "" {
				continue
			}
			v.Name = to
		}
		out = append(out, v)
	}
	return out
}
