package filters

import (
	"github.com/shopspring/decimal"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/registry"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
	"github.com/ajitpratap0/magesync/pkg/errors"
)

// Filter names
const (
	PointsPerAmountName = "points-per-amount"
	StoreNameName       = "store-name"
)

// PointsPerAmount awards one point per whole amount of the order total
type PointsPerAmount struct {
	amount decimal.Decimal
}

// NewPointsPerAmount creates the filter; settings.amount must be positive
func NewPointsPerAmount(settings map[string]any) (registry.Filter, error) {
	var s struct {
		Amount float64 `mapstructure:"amount"`
	}
	if err := decodeSettings(PointsPerAmountName, settings, &s); err != nil {
		return nil, err
	}
	if s.Amount <= 0 {
		return nil, errors.New(errors.ErrorTypeConfig, PointsPerAmountName+": amount must be positive")
	}
	return &PointsPerAmount{amount: decimal.NewFromFloat(s.Amount)}, nil
}

func (f *PointsPerAmount) Name() string { return PointsPerAmountName }

// PurchasePoints implements pipeline.PointsHook
func (f *PointsPerAmount) PurchasePoints(o *woowup.Order) int {
	total := o.Prices.Total.Decimal
	if !total.IsPositive() {
		return 0
	}
	return int(total.Div(f.amount).Floor().IntPart())
}

// StoreName names the branch after the store the order was placed in
type StoreName struct {
	names    map[string]string
	fallback string
}

// NewStoreName creates the filter from settings.names (store id to branch)
// and an optional settings.default
func NewStoreName(settings map[string]any) (registry.Filter, error) {
	var s struct {
		Names   map[string]string `mapstructure:"names"`
		Default string            `mapstructure:"default"`
	}
	if err := decodeSettings(StoreNameName, settings, &s); err != nil {
		return nil, err
	}
	if len(s.Names) == 0 && s.Default == "" {
		return nil, errors.New(errors.ErrorTypeConfig, StoreNameName+": names or default is required")
	}
	return &StoreName{names: s.Names, fallback: s.Default}, nil
}

func (f *StoreName) Name() string { return StoreNameName }

// StoreName implements pipeline.StoreNameHook; an unknown store yields the
// default, possibly empty
func (f *StoreName) StoreName(o *magento.Order) string {
	if name, ok := f.names[o.StoreID.Trim()]; ok {
		return name
	}
	return f.fallback
}
