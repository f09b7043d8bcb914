package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/logger"
)

// ChannelWeb is the sales channel of every order
const ChannelWeb = "web"

// ErrInvalidOrder is returned for an order whose customer has neither email
// nor document, or whose detail is missing
var ErrInvalidOrder = errors.New(errors.ErrorTypeValidation, "order has no identifiable customer")

// Order maps a listed order, fetching its detail, customer and line
// products. importing marks a historical load, where the approval time is
// the creation time instead of now.
func (t *Transformer) Order(ctx context.Context, o *magento.Order, importing bool) (*woowup.Order, error) {
	id := o.IncrementID.Trim()
	log := logger.FromContext(ctx, t.logger).With(zap.String("increment_id", id))
	log.Info("building order")

	info, err := t.source.Order(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "failed to fetch order "+id)
	}
	if info == nil {
		return nil, fmt.Errorf("order %s has no detail: %w", id, ErrInvalidOrder)
	}

	customer := t.orderCustomer(ctx, o, log)

	if (customer == nil || customer.Document == "") && info.Payment != nil {
		extra := info.Payment.AdditionalInformation
		if doc := extra.DocNumber.Trim(); doc != "" {
			if customer == nil {
				customer = &woowup.Customer{}
			}
			customer.Document = doc
			customer.DocumentType = extra.DocType.Trim()
		}
	}

	if customer == nil || (customer.Email == "" && customer.Document == "") {
		log.Info("invalid customer")
		return nil, fmt.Errorf("order %s: %w", id, ErrInvalidOrder)
	}

	out := &woowup.Order{
		InvoiceNumber:  id,
		Customer:       customer,
		Channel:        ChannelWeb,
		PurchaseDetail: t.orderLines(ctx, info.Items, log),
		CreateTime:     o.CreatedAt.Trim(),
		BranchName:     t.cfg.BranchName,
		Prices:         orderPrices(o),
		Payment:        buildPayment(info.Payment),
	}
	if customer.Document != "" {
		out.Document = customer.Document
	} else {
		out.Email = customer.Email
	}

	if importing {
		out.ApprovedTime = out.CreateTime
	} else {
		out.ApprovedTime = t.now().Format(time.RFC3339)
	}

	if points, ok := t.hooks.PurchasePoints(out); ok {
		out.Points = &points
	}
	if name, ok := t.hooks.StoreName(o); ok {
		out.BranchName = name
	}
	return out, nil
}

// orderCustomer resolves a registered customer through the source and
// synthesizes a guest customer from the order fields
func (t *Transformer) orderCustomer(ctx context.Context, o *magento.Order, log *zap.Logger) *woowup.Customer {
	if id := o.CustomerID.Trim(); !o.CustomerID.IsEmpty() {
		c := t.source.Customer(ctx, id)
		if c == nil {
			return nil
		}
		customer, err := t.Customer(ctx, c)
		if err != nil {
			return nil
		}
		return customer
	}
	if o.CustomerEmail.Trim() != "" {
		log.Info("order has no customer id, building customer from order")
		return t.CustomerFromOrder(o)
	}
	return nil
}

func (t *Transformer) orderLines(ctx context.Context, items []magento.OrderItem, log *zap.Logger) []woowup.OrderLine {
	lines := make([]woowup.OrderLine, 0, len(items))
	for _, item := range items {
		rawSku := item.Sku.String()
		if strings.TrimSpace(rawSku) == "" {
			log.Info("order line has no sku")
			continue
		}

		product := t.source.Product(ctx, rawSku)
		line := woowup.OrderLine{
			SKU:         t.hooks.FilterSku(strings.TrimSpace(rawSku)),
			ProductName: cleanName(item.Name.String()),
			Quantity:    item.QtyOrdered.Int(),
			UnitPrice:   woowup.NewAmount(item.Price.Decimal()),
			Variations:  []woowup.Variation{},
			URL:         t.productURL(product),
		}

		if line.Quantity == 0 {
			log.Info("order line has quantity 0", zap.String("sku", line.SKU))
			continue
		}
		if line.UnitPrice.IsZero() {
			log.Info("order line has price 0", zap.String("sku", line.SKU))
			continue
		}

		label := ""
		if product != nil {
			label = product.ImageLabel.String()
			for _, name := range t.cfg.Variations {
				if _, ok := product.Attributes.Get(name); ok {
					line.Variations = append(line.Variations, woowup.Variation{
						Name:  titleCase(name),
						Value: product.Attributes.String(name),
					})
				}
			}
		}
		line.ImageURL = t.imageURL(ctx, rawSku, label)
		if v := t.hooks.FilterVariations(line.Variations); v != nil {
			line.Variations = v
		}
		line.Category = t.productCategories(product)

		lines = append(lines, line)
	}
	return lines
}

func orderPrices(o *magento.Order) woowup.Prices {
	gross := o.BaseSubtotal.Decimal()
	discount := o.BaseDiscountAmount.Decimal().Abs()
	return woowup.Prices{
		Gross:    woowup.NewAmount(gross),
		Discount: woowup.NewAmount(discount),
		Tax:      woowup.NewAmount(o.BaseTaxAmount.Decimal()),
		Shipping: woowup.NewAmount(o.BaseShippingAmount.Decimal()),
		Total:    woowup.NewAmount(gross.Sub(discount)),
	}
}
