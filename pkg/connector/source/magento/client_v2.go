package magento

import (
	"context"
)

// clientV2 talks to the second API generation, one remote method per operation
type clientV2 struct {
	caller Caller
}

func (c *clientV2) CustomerInfo(ctx context.Context, id string) (*Customer, error) {
	raw, err := c.caller.Call(ctx, "customerCustomerInfo", id)
	if err != nil {
		return nil, err
	}
	return decodeOne[Customer](raw, "customerCustomerInfo")
}

func (c *clientV2) CustomerAddress(ctx context.Context, addressID string) (*Address, error) {
	raw, err := c.caller.Call(ctx, "customerAddressInfo", addressID)
	if err != nil {
		return nil, err
	}
	return decodeOne[Address](raw, "customerAddressInfo")
}

func (c *clientV2) OrderInfo(ctx context.Context, incrementID string) (*OrderInfo, error) {
	raw, err := c.caller.Call(ctx, "salesOrderInfo", incrementID)
	if err != nil {
		return nil, err
	}
	return decodeOne[OrderInfo](raw, "salesOrderInfo")
}

func (c *clientV2) ProductInfo(ctx context.Context, idOrSku, field string) (*Product, error) {
	raw, err := c.caller.Call(ctx, "catalogProductInfo", idOrSku, nil, nil, field)
	if err != nil {
		return nil, err
	}
	return decodeOne[Product](raw, "catalogProductInfo")
}

func (c *clientV2) CategoryTree(ctx context.Context) (*CategoryNode, error) {
	raw, err := c.caller.Call(ctx, "catalogCategoryTree")
	if err != nil {
		return nil, err
	}
	return decodeOne[CategoryNode](raw, "catalogCategoryTree")
}

func (c *clientV2) CategoryInfo(ctx context.Context, id string) (*CategoryInfo, error) {
	raw, err := c.caller.Call(ctx, "catalogCategoryInfo", id)
	if err != nil {
		return nil, err
	}
	return decodeOne[CategoryInfo](raw, "catalogCategoryInfo")
}

func (c *clientV2) ListCustomers(ctx context.Context, q CustomerQuery) ([]Customer, error) {
	raw, err := c.caller.Call(ctx, "customerCustomerList", v2CustomerFilters(q))
	if err != nil {
		return nil, err
	}
	return decodeList[Customer](raw, "customerCustomerList")
}

func (c *clientV2) ListOrders(ctx context.Context, q OrderQuery) ([]Order, error) {
	raw, err := c.caller.Call(ctx, "salesOrderList", v2OrderFilters(q))
	if err != nil {
		return nil, err
	}
	return decodeList[Order](raw, "salesOrderList")
}

func (c *clientV2) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	var store any
	if q.StoreID != "" {
		store = q.StoreID
	}
	raw, err := c.caller.Call(ctx, "catalogProductList", v2ProductFilters(q), store)
	if err != nil {
		return nil, err
	}
	return decodeList[Product](raw, "catalogProductList")
}

func (c *clientV2) StockItems(ctx context.Context, ids ...string) ([]StockItem, error) {
	raw, err := c.caller.Call(ctx, "catalogInventoryStockItemList", ids)
	if err != nil {
		return nil, err
	}
	return decodeList[StockItem](raw, "catalogInventoryStockItemList")
}

func (c *clientV2) MediaList(ctx context.Context, sku string) ([]Media, error) {
	raw, err := c.caller.Call(ctx, "catalogProductAttributeMediaList", sku, nil, "sku")
	if err != nil {
		return nil, err
	}
	return decodeList[Media](raw, "catalogProductAttributeMediaList")
}

func (c *clientV2) AttributeSets(ctx context.Context) ([]AttributeSet, error) {
	raw, err := c.caller.Call(ctx, "catalogProductAttributeSetList")
	if err != nil {
		return nil, err
	}
	return decodeList[AttributeSet](raw, "catalogProductAttributeSetList")
}

func (c *clientV2) Stores(ctx context.Context) ([]Store, error) {
	raw, err := c.caller.Call(ctx, "storeList")
	if err != nil {
		return nil, err
	}
	return decodeList[Store](raw, "storeList")
}
