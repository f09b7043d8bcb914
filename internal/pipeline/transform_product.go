package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/logger"
)

// ErrRejectedProduct is returned for a product that is missing, unnamed or
// of another type than the one requested
var ErrRejectedProduct = errors.New(errors.ErrorTypeValidation, "product rejected")

const statusEnabled = 1

// Product maps the detail of sku as a product of type productType
func (t *Transformer) Product(ctx context.Context, sku, productType string, info *magento.Product) (*woowup.Product, error) {
	log := logger.FromContext(ctx, t.logger).With(zap.String("sku", sku))

	if info == nil || info.Sku.Trim() == "" {
		log.Info("product not found")
		return nil, fmt.Errorf("sku %s not found: %w", sku, ErrRejectedProduct)
	}
	if got := info.ProductType(); got != productType {
		log.Info("product type does not match", zap.String("type", got), zap.String("expected", productType))
		return nil, fmt.Errorf("sku %s is %q, not %q: %w", sku, got, productType, ErrRejectedProduct)
	}
	if strings.TrimSpace(info.Name.String()) == "" {
		return nil, fmt.Errorf("sku %s has no name: %w", sku, ErrRejectedProduct)
	}

	inStock := visible(info)
	enabled := info.Status.Int() == statusEnabled
	stock := 0
	if inStock && enabled {
		if items := t.source.Stock(ctx, sku); len(items) > 0 {
			stock = items[0].Qty.Int()
			inStock = items[0].IsInStock.Bool()
			if inStock && stock == 0 {
				// in stock without a quantity
				stock = 1
			}
		}
	}

	out := &woowup.Product{
		Name:        info.Name.String(),
		Description: description(info),
		Stock:       stock,
		Available:   inStock && enabled,
		Category:    t.productCategories(info),
	}
	if info.Price.Trim() != "" {
		price := woowup.NewAmount(info.Price.Decimal())
		out.Price = &price
	}
	if info.SpecialPrice.Trim() != "" {
		offer := woowup.NewAmount(info.SpecialPrice.Decimal())
		out.OfferPrice = &offer
	}

	out.SKU = t.hooks.FilterSku(info.Sku.String())
	out.CustomAttributes = nonEmpty(t.hooks.ProductAttributes(info))

	mediaSku, urlSource := sku, info
	if parent := t.hooks.ParentSku(out.SKU); parent != "" {
		mediaSku = parent
		urlSource = t.source.Product(ctx, parent)
	}
	out.ImageURL = t.imageURL(ctx, mediaSku, info.ImageLabel.String())
	out.ThumbnailURL = t.imageURL(ctx, mediaSku, info.ThumbnailLabel.String())
	out.URL = t.productURL(urlSource)

	return out, nil
}

// Unavailable is the update that retires a destination product no longer listed
func Unavailable(p woowup.Product) *woowup.Product {
	return &woowup.Product{
		SKU:       p.SKU,
		Name:      p.Name,
		Available: false,
		Stock:     0,
	}
}

func visible(p *magento.Product) bool {
	switch p.Visibility.Int() {
	case 2, 3, 4:
		return true
	default:
		return false
	}
}

func description(p *magento.Product) string {
	if d := p.Description.String(); strings.TrimSpace(d) != "" {
		return d
	}
	return p.ShortDescription.String()
}
