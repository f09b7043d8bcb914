package magento

import (
	"context"
)

// clientV1 talks to the first API generation, where every operation goes
// through call(session, resourcePath, args)
type clientV1 struct {
	caller Caller
}

func (c *clientV1) do(ctx context.Context, resource string, args ...any) ([]byte, error) {
	callArgs := []any{resource}
	switch len(args) {
	case 0:
	case 1:
		callArgs = append(callArgs, args[0])
	default:
		callArgs = append(callArgs, args)
	}
	return c.caller.Call(ctx, "call", callArgs...)
}

func (c *clientV1) CustomerInfo(ctx context.Context, id string) (*Customer, error) {
	raw, err := c.do(ctx, "customer.info", id)
	if err != nil {
		return nil, err
	}
	return decodeOne[Customer](raw, "customer.info")
}

func (c *clientV1) CustomerAddress(ctx context.Context, addressID string) (*Address, error) {
	raw, err := c.do(ctx, "customer_address.info", addressID)
	if err != nil {
		return nil, err
	}
	return decodeOne[Address](raw, "customer_address.info")
}

func (c *clientV1) OrderInfo(ctx context.Context, incrementID string) (*OrderInfo, error) {
	raw, err := c.do(ctx, "order.info", incrementID)
	if err != nil {
		return nil, err
	}
	return decodeOne[OrderInfo](raw, "order.info")
}

func (c *clientV1) ProductInfo(ctx context.Context, idOrSku, field string) (*Product, error) {
	raw, err := c.do(ctx, "catalog_product.info", idOrSku, nil, nil, field)
	if err != nil {
		return nil, err
	}
	return decodeOne[Product](raw, "catalog_product.info")
}

func (c *clientV1) CategoryTree(ctx context.Context) (*CategoryNode, error) {
	raw, err := c.do(ctx, "catalog_category.tree")
	if err != nil {
		return nil, err
	}
	return decodeOne[CategoryNode](raw, "catalog_category.tree")
}

func (c *clientV1) CategoryInfo(ctx context.Context, id string) (*CategoryInfo, error) {
	raw, err := c.do(ctx, "catalog_category.info", id)
	if err != nil {
		return nil, err
	}
	return decodeOne[CategoryInfo](raw, "catalog_category.info")
}

func (c *clientV1) ListCustomers(ctx context.Context, q CustomerQuery) ([]Customer, error) {
	raw, err := c.do(ctx, "customer.list", v1CustomerFilters(q))
	if err != nil {
		return nil, err
	}
	return decodeList[Customer](raw, "customer.list")
}

func (c *clientV1) ListOrders(ctx context.Context, q OrderQuery) ([]Order, error) {
	raw, err := c.do(ctx, "order.list", []any{v1OrderFilters(q)})
	if err != nil {
		return nil, err
	}
	return decodeList[Order](raw, "order.list")
}

func (c *clientV1) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	raw, err := c.do(ctx, "catalog_product.list", v1ProductParams(q))
	if err != nil {
		return nil, err
	}
	return decodeList[Product](raw, "catalog_product.list")
}

func (c *clientV1) StockItems(ctx context.Context, ids ...string) ([]StockItem, error) {
	raw, err := c.do(ctx, "cataloginventory_stock_item.list", ids)
	if err != nil {
		return nil, err
	}
	return decodeList[StockItem](raw, "cataloginventory_stock_item.list")
}

func (c *clientV1) MediaList(ctx context.Context, sku string) ([]Media, error) {
	raw, err := c.do(ctx, "catalog_product_attribute_media.list", sku, nil, "sku")
	if err != nil {
		return nil, err
	}
	return decodeList[Media](raw, "catalog_product_attribute_media.list")
}

func (c *clientV1) AttributeSets(ctx context.Context) ([]AttributeSet, error) {
	raw, err := c.do(ctx, "catalog_product_attribute_set.list")
	if err != nil {
		return nil, err
	}
	return decodeList[AttributeSet](raw, "catalog_product_attribute_set.list")
}

func (c *clientV1) Stores(ctx context.Context) ([]Store, error) {
	raw, err := c.do(ctx, "store.list")
	if err != nil {
		return nil, err
	}
	return decodeList[Store](raw, "store.list")
}
