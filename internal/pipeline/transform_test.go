package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/testutil"
)

type loyaltyFilter struct{}

func (loyaltyFilter) Name() string { return "loyalty" }

func (loyaltyFilter) CustomerAttributes(attrs magento.Attributes) map[string]string {
	return map[string]string{"loyalty": attrs.String("loyalty"), "empty": ""}
}

type branchFilter struct{}

func (branchFilter) Name() string { return "branch" }

func (branchFilter) StoreName(o *magento.Order) string { return "Store " + o.StoreID.Trim() }

func (branchFilter) PurchasePoints(o *woowup.Order) int { return int(o.Prices.Total.IntPart()) / 10 }

type parentFilter struct{}

func (parentFilter) Name() string { return "parent" }

func (parentFilter) ParentSku(sku string) string {
	if i := strings.LastIndex(sku, "-"); i > 0 {
		return sku[:i]
	}
	return ""
}

var testCategories = CategoryIndex{
	"3": {ID: "3", Name: "Men"},
	"4": {ID: "4", Name: "Shirts", Path: []string{"3"}},
}

func testTransformConfig() TransformConfig {
	return TransformConfig{
		Host:            "https://shop.test",
		BranchName:      "MAGENTO",
		Variations:      []string{"color", "size"},
		Categories:      true,
		CategoriesField: "category_ids",
		URLField:        "url_path",
	}
}

func newTestTransformer(t *testing.T, src Source, hooks *Hooks) *Transformer {
	clock := testutil.NewClock(time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC))
	tr := NewTransformer(src, hooks, testTransformConfig(), testutil.TestLogger(t)).WithClock(clock.Now)
	tr.SetCategories(testCategories)
	return tr
}

func TestTransformCustomer(t *testing.T) {
	c := decode[magento.Customer](t, `{
		"customer_id": "7",
		"email": " Ana@Mail.COM ",
		"firstname": "ANA",
		"lastname": "perez gomez",
		"dni": "30.123.456",
		"gender": "2",
		"group_id": "4",
		"dob": "1990-01-02 00:00:00",
		"loyalty": "gold"
	}`)
	c.Address = &magento.Address{
		CountryID: "AR",
		Region:    "buenos aires",
		Street:    "av. corrientes 123",
		City:      "CABA",
		Postcode:  "1000",
		Telephone: "1155550000",
	}
	tr := newTestTransformer(t, newFakeSource(), NewHooks(loyaltyFilter{}))

	got, err := tr.Customer(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, &woowup.Customer{
		Email:            "ana@mail.com",
		Document:         "30123456",
		DocumentType:     DocumentTypeDNI,
		FirstName:        "Ana",
		LastName:         "Perez Gomez",
		Telephone:        "1155550000",
		Country:          "AR",
		State:            "Buenos Aires",
		City:             "Caba",
		Street:           "Av. Corrientes 123",
		Postcode:         "1000",
		Birthdate:        "1990-01-02 00:00:00",
		Gender:           "F",
		Tags:             "Magento,group4",
		CustomAttributes: map[string]string{"loyalty": "gold"},
	}, got)
}

func TestTransformCustomerWithoutIdentity(t *testing.T) {
	tr := newTestTransformer(t, newFakeSource(), nil)

	_, err := tr.Customer(context.Background(), &magento.Customer{CustomerID: "8", Dni: "abc123", Gender: "3"})
	assert.ErrorIs(t, err, ErrInvalidCustomer)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	got, err := tr.Customer(context.Background(), &magento.Customer{CustomerID: "9", Dni: "1234567", GroupID: "0"})
	require.NoError(t, err)
	assert.Equal(t, "1234567", got.Document)
	assert.Equal(t, CustomerTag, got.Tags)
	assert.Empty(t, got.Gender)
	assert.Nil(t, got.CustomAttributes)
}

const listedOrder = `{
	"increment_id": "100001",
	"status": "complete",
	"store_id": "1",
	"customer_id": "7",
	"created_at": "2024-03-09 10:00:00",
	"base_subtotal": "200.00",
	"base_discount_amount": "-20.00",
	"base_tax_amount": "10",
	"base_shipping_amount": "15"
}`

func orderSource(t *testing.T) *fakeSource {
	src := newFakeSource()
	src.customers["7"] = decode[magento.Customer](t, `{"customer_id": "7", "email": "ana@mail.com", "firstname": "ana"}`)
	src.orders["100001"] = decode[magento.OrderInfo](t, `{
		"increment_id": "100001",
		"items": [
			{"sku": "SHIRT-RED", "name": "RED SHIRT", "qty_ordered": "2.0000", "price": "100.00"},
			{"sku": "", "name": "no sku", "qty_ordered": "1", "price": "1"},
			{"sku": "GIFT", "name": "gift", "qty_ordered": "1", "price": "0.0000"},
			{"sku": "GONE", "name": "gone", "qty_ordered": "0.0000", "price": "5"}
		],
		"payment": {
			"method": "mercadopago_standard",
			"additional_information": {"docNumber": " 99888777 ", "docType": "DNI"}
		}
	}`)
	src.products["SHIRT-RED"] = decode[magento.Product](t, `{
		"sku": "SHIRT-RED",
		"product_id": "10",
		"type_id": "simple",
		"name": "Red Shirt",
		"status": "1",
		"visibility": "4",
		"description": "",
		"short_description": "A red shirt",
		"price": "100.00",
		"special_price": "80",
		"image_label": "front",
		"thumbnail_label": "back",
		"color": "Rojo",
		"url_path": "shirt-red.html",
		"category_ids": ["3", "4"]
	}`)
	src.media["SHIRT-RED"] = []magento.Media{
		{URL: "https://img.test/back.jpg", Position: "1", Label: "back"},
		{URL: "https://img.test/front.jpg", Position: "2", Label: "front"},
	}
	return src
}

func TestTransformOrder(t *testing.T) {
	tr := newTestTransformer(t, orderSource(t), nil)

	got, err := tr.Order(context.Background(), decode[magento.Order](t, listedOrder), false)
	require.NoError(t, err)

	assert.Equal(t, "100001", got.InvoiceNumber)
	assert.Equal(t, ChannelWeb, got.Channel)
	assert.Equal(t, "99888777", got.Document)
	assert.Empty(t, got.Email)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "ana@mail.com", got.Customer.Email)
	assert.Equal(t, "DNI", got.Customer.DocumentType)

	assert.Equal(t, "2024-03-09 10:00:00", got.CreateTime)
	assert.Equal(t, "2024-03-10T12:00:00Z", got.ApprovedTime)
	assert.Equal(t, "MAGENTO", got.BranchName)
	assert.Nil(t, got.Points)

	assert.Equal(t, "200", got.Prices.Gross.String())
	assert.Equal(t, "20", got.Prices.Discount.String())
	assert.Equal(t, "10", got.Prices.Tax.String())
	assert.Equal(t, "15", got.Prices.Shipping.String())
	assert.Equal(t, "180", got.Prices.Total.String())

	require.NotNil(t, got.Payment)
	assert.Equal(t, woowup.PaymentMercadoPago, got.Payment.Type)

	require.Len(t, got.PurchaseDetail, 1)
	line := got.PurchaseDetail[0]
	assert.Equal(t, "SHIRT-RED", line.SKU)
	assert.Equal(t, "Red Shirt", line.ProductName)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "100", line.UnitPrice.String())
	assert.Equal(t, []woowup.Variation{{Name: "Color", Value: "Rojo"}}, line.Variations)
	assert.Equal(t, "https://shop.test/shirt-red.html", line.URL)
	assert.Equal(t, "https://img.test/front.jpg", line.ImageURL)
	require.Len(t, line.Category, 2)
	assert.Equal(t, "Men", line.Category[0].Name)
	assert.Equal(t, "Shirts", line.Category[1].Name)
}

func TestTransformOrderImportingApprovesAtCreation(t *testing.T) {
	tr := newTestTransformer(t, orderSource(t), NewHooks(branchFilter{}))

	got, err := tr.Order(context.Background(), decode[magento.Order](t, listedOrder), true)
	require.NoError(t, err)

	assert.Equal(t, got.CreateTime, got.ApprovedTime)
	assert.Equal(t, "Store 1", got.BranchName)
	require.NotNil(t, got.Points)
	assert.Equal(t, 18, *got.Points)
}

func TestTransformGuestOrder(t *testing.T) {
	src := orderSource(t)
	src.orders["100001"].Payment = nil
	tr := newTestTransformer(t, src, nil)

	o := decode[magento.Order](t, `{
		"increment_id": "100001",
		"customer_email": "Guest@Mail.com",
		"customer_firstname": "JOHN",
		"customer_middlename": "paul",
		"customer_lastname": "DOE",
		"customer_gender": "1"
	}`)
	got, err := tr.Order(context.Background(), o, false)
	require.NoError(t, err)

	assert.Equal(t, "guest@mail.com", got.Email)
	assert.Empty(t, got.Document)
	assert.Equal(t, "John Paul", got.Customer.FirstName)
	assert.Equal(t, "Doe", got.Customer.LastName)
	assert.Equal(t, "M", got.Customer.Gender)
	assert.Nil(t, got.Payment)
}

func TestTransformOrderWithoutCustomer(t *testing.T) {
	src := orderSource(t)
	src.orders["100001"].Payment = nil
	tr := newTestTransformer(t, src, nil)

	_, err := tr.Order(context.Background(), decode[magento.Order](t, `{"increment_id": "100001"}`), false)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = tr.Order(context.Background(), decode[magento.Order](t, `{"increment_id": "404"}`), false)
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestTransformOrderDetailFault(t *testing.T) {
	src := orderSource(t)
	src.orderErr = errors.New(errors.ErrorTypeTransient, "gateway gave up")
	tr := newTestTransformer(t, src, nil)

	_, err := tr.Order(context.Background(), decode[magento.Order](t, listedOrder), false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidOrder)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTransient))
}

func TestTransformProduct(t *testing.T) {
	src := orderSource(t)
	src.stock["SHIRT-RED"] = []magento.StockItem{{Qty: "0.0000", IsInStock: "1"}}
	tr := newTestTransformer(t, src, nil)

	got, err := tr.Product(context.Background(), "SHIRT-RED", "simple", src.products["SHIRT-RED"])
	require.NoError(t, err)

	assert.Equal(t, "SHIRT-RED", got.SKU)
	assert.Equal(t, "Red Shirt", got.Name)
	assert.Equal(t, "A red shirt", got.Description)
	require.NotNil(t, got.Price)
	assert.Equal(t, "100", got.Price.String())
	require.NotNil(t, got.OfferPrice)
	assert.Equal(t, "80", got.OfferPrice.String())
	assert.Equal(t, "https://img.test/front.jpg", got.ImageURL)
	assert.Equal(t, "https://img.test/back.jpg", got.ThumbnailURL)
	assert.Equal(t, "https://shop.test/shirt-red.html", got.URL)
	assert.Equal(t, 1, got.Stock)
	assert.True(t, got.Available)
	assert.Len(t, got.Category, 2)
}

func TestTransformProductAvailability(t *testing.T) {
	tests := []struct {
		name       string
		status     magento.Value
		visibility magento.Value
		stock      []magento.StockItem
		wantStock  int
		wantAvail  bool
	}{
		{"not visible", "1", "1", []magento.StockItem{{Qty: "5", IsInStock: "1"}}, 0, false},
		{"disabled", "2", "4", []magento.StockItem{{Qty: "5", IsInStock: "1"}}, 0, false},
		{"out of stock", "1", "2", []magento.StockItem{{Qty: "5", IsInStock: "0"}}, 5, false},
		{"no stock info", "1", "3", nil, 0, true},
		{"in stock", "1", "4", []magento.StockItem{{Qty: "7.0000", IsInStock: "1"}}, 7, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := orderSource(t)
			info := src.products["SHIRT-RED"]
			info.Status = tt.status
			info.Visibility = tt.visibility
			src.stock["SHIRT-RED"] = tt.stock
			tr := newTestTransformer(t, src, nil)

			got, err := tr.Product(context.Background(), "SHIRT-RED", "simple", info)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, got.Stock)
			assert.Equal(t, tt.wantAvail, got.Available)
		})
	}
}

func TestTransformProductRejects(t *testing.T) {
	src := orderSource(t)
	tr := newTestTransformer(t, src, nil)
	ctx := context.Background()

	_, err := tr.Product(ctx, "SHIRT-RED", "configurable", src.products["SHIRT-RED"])
	assert.ErrorIs(t, err, ErrRejectedProduct)

	_, err = tr.Product(ctx, "MISSING", "simple", nil)
	assert.ErrorIs(t, err, ErrRejectedProduct)

	_, err = tr.Product(ctx, "X", "simple", &magento.Product{Sku: "X", TypeID: "simple"})
	assert.ErrorIs(t, err, ErrRejectedProduct)
}

func TestTransformProductUsesParent(t *testing.T) {
	src := orderSource(t)
	src.products["SHIRT"] = decode[magento.Product](t, `{"sku": "SHIRT", "url_path": "shirt.html"}`)
	src.media["SHIRT"] = []magento.Media{{URL: "https://img.test/parent.jpg", Position: "1"}}
	tr := newTestTransformer(t, src, NewHooks(parentFilter{}))

	got, err := tr.Product(context.Background(), "SHIRT-RED", "simple", src.products["SHIRT-RED"])
	require.NoError(t, err)

	assert.Equal(t, "SHIRT-RED", got.SKU)
	assert.Equal(t, "https://img.test/parent.jpg", got.ImageURL)
	assert.Equal(t, "https://img.test/parent.jpg", got.ThumbnailURL)
	assert.Equal(t, "https://shop.test/shirt.html", got.URL)
}

func TestUnavailable(t *testing.T) {
	price := woowup.AmountFromFloat(10)
	got := Unavailable(woowup.Product{SKU: "A", Name: "Old", Price: &price, Stock: 3, Available: true})
	assert.Equal(t, &woowup.Product{SKU: "A", Name: "Old"}, got)
}
