package magento

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Customer is a customer as listed or returned by customer.info
type Customer struct {
	CustomerID      Value `json:"customer_id"`
	Email           Value `json:"email"`
	Firstname       Value `json:"firstname"`
	Middlename      Value `json:"middlename"`
	Lastname        Value `json:"lastname"`
	Dob             Value `json:"dob"`
	Gender          Value `json:"gender"`
	GroupID         Value `json:"group_id"`
	StoreID         Value `json:"store_id"`
	Dni             Value `json:"dni"`
	Taxvat          Value `json:"taxvat"`
	DefaultBilling  Value `json:"default_billing"`
	DefaultShipping Value `json:"default_shipping"`
	CreatedAt       Value `json:"created_at"`
	UpdatedAt       Value `json:"updated_at"`

	// Address is attached by the repository when the customer has a default address
	Address *Address `json:"-"`

	Attributes Attributes `json:"-"`
}

// UnmarshalJSON keeps the raw attributes next to the typed fields
func (c *Customer) UnmarshalJSON(data []byte) error {
	type plain Customer
	return decodeWithAttributes(data, (*plain)(c), &c.Attributes)
}

// AddressID returns the billing address id, falling back to shipping
func (c *Customer) AddressID() string {
	if !c.DefaultBilling.IsEmpty() {
		return c.DefaultBilling.Trim()
	}
	if !c.DefaultShipping.IsEmpty() {
		return c.DefaultShipping.Trim()
	}
	return ""
}

// Address is a customer address
type Address struct {
	AddressID Value `json:"customer_address_id"`
	CountryID Value `json:"country_id"`
	Region    Value `json:"region"`
	Street    Value `json:"street"`
	City      Value `json:"city"`
	Postcode  Value `json:"postcode"`
	Telephone Value `json:"telephone"`
}

// Order is an order as listed by order.list
type Order struct {
	OrderID            Value `json:"order_id"`
	IncrementID        Value `json:"increment_id"`
	Status             Value `json:"status"`
	State              Value `json:"state"`
	StoreID            Value `json:"store_id"`
	CustomerID         Value `json:"customer_id"`
	CustomerEmail      Value `json:"customer_email"`
	CustomerFirstname  Value `json:"customer_firstname"`
	CustomerMiddlename Value `json:"customer_middlename"`
	CustomerLastname   Value `json:"customer_lastname"`
	CustomerDob        Value `json:"customer_dob"`
	CustomerGender     Value `json:"customer_gender"`
	CustomerTaxvat     Value `json:"customer_taxvat"`
	CreatedAt          Value `json:"created_at"`
	UpdatedAt          Value `json:"updated_at"`
	BaseSubtotal       Value `json:"base_subtotal"`
	BaseDiscountAmount Value `json:"base_discount_amount"`
	BaseTaxAmount      Value `json:"base_tax_amount"`
	BaseShippingAmount Value `json:"base_shipping_amount"`
	BaseGrandTotal     Value `json:"base_grand_total"`

	Attributes Attributes `json:"-"`
}

// UnmarshalJSON keeps the raw attributes next to the typed fields
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	return decodeWithAttributes(data, (*plain)(o), &o.Attributes)
}

// OrderInfo is the detail returned by order.info
type OrderInfo struct {
	Order
	Items   []OrderItem `json:"items"`
	Payment *Payment    `json:"payment"`
}

// UnmarshalJSON decodes the embedded order and the detail fields
func (o *OrderInfo) UnmarshalJSON(data []byte) error {
	if err := o.Order.UnmarshalJSON(data); err != nil {
		return err
	}
	var detail struct {
		Items   []OrderItem `json:"items"`
		Payment *Payment    `json:"payment"`
	}
	if err := json.Unmarshal(data, &detail); err != nil {
		return err
	}
	o.Items = detail.Items
	o.Payment = detail.Payment
	return nil
}

// OrderItem is one order line
type OrderItem struct {
	ItemID     Value `json:"item_id"`
	ProductID  Value `json:"product_id"`
	Sku        Value `json:"sku"`
	Name       Value `json:"name"`
	QtyOrdered Value `json:"qty_ordered"`
	Price      Value `json:"price"`
}

// Payment is the order payment block
type Payment struct {
	Method                Value                 `json:"method"`
	AdditionalInformation AdditionalInformation `json:"additional_information"`
}

// AdditionalInformation holds gateway specific payment data
type AdditionalInformation struct {
	DocNumber     Value `json:"docNumber"`
	DocType       Value `json:"docType"`
	PaymentTypeID Value `json:"payment_type_id"`
	PaymentMethod Value `json:"payment_method"`
	CardTruncated Value `json:"cardTruncated"`
	Installments  Value `json:"installments"`
	TotalAmount   Value `json:"total_amount"`

	present bool
}

// UnmarshalJSON tolerates the empty list the API sends when there is no data
func (a *AdditionalInformation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*a = AdditionalInformation{}
		return nil
	}
	type plain AdditionalInformation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = AdditionalInformation(p)
	a.present = !bytes.Equal(data, []byte("{}"))
	return nil
}

// Present reports whether the block carried any data
func (a AdditionalInformation) Present() bool {
	return a.present
}

// Product is a product as listed or returned by catalog_product.info
type Product struct {
	ProductID        Value `json:"product_id"`
	Sku              Value `json:"sku"`
	Name             Value `json:"name"`
	TypeID           Value `json:"type_id"`
	Type             Value `json:"type"`
	SetID            Value `json:"set"`
	Status           Value `json:"status"`
	Visibility       Value `json:"visibility"`
	Description      Value `json:"description"`
	ShortDescription Value `json:"short_description"`
	Price            Value `json:"price"`
	SpecialPrice     Value `json:"special_price"`
	ImageLabel       Value `json:"image_label"`
	ThumbnailLabel   Value `json:"thumbnail_label"`
	UpdatedAt        Value `json:"updated_at"`

	Attributes Attributes `json:"-"`
}

// UnmarshalJSON keeps the raw attributes next to the typed fields
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	return decodeWithAttributes(data, (*plain)(p), &p.Attributes)
}

// ProductType returns type_id, or type for list entries that only carry that
func (p *Product) ProductType() string {
	if t := p.TypeID.Trim(); t != "" {
		return t
	}
	return p.Type.Trim()
}

// StockItem is one entry of cataloginventory_stock_item.list
type StockItem struct {
	ProductID Value `json:"product_id"`
	Sku       Value `json:"sku"`
	Qty       Value `json:"qty"`
	IsInStock Value `json:"is_in_stock"`
}

// Media is a product image
type Media struct {
	File     Value   `json:"file"`
	Label    Value   `json:"label"`
	Position Value   `json:"position"`
	URL      Value   `json:"url"`
	Types    []Value `json:"types"`
}

// CategoryNode is a node of catalog_category.tree
type CategoryNode struct {
	CategoryID Value          `json:"category_id"`
	ParentID   Value          `json:"parent_id"`
	Name       Value          `json:"name"`
	IsActive   Value          `json:"is_active"`
	Position   Value          `json:"position"`
	Level      Value          `json:"level"`
	Children   []CategoryNode `json:"children"`
}

// CategoryInfo is the detail returned by catalog_category.info
type CategoryInfo struct {
	CategoryID Value `json:"category_id"`
	Name       Value `json:"name"`
	Path       Value `json:"path"`
	URLPath    Value `json:"url_path"`
	URLKey     Value `json:"url_key"`
	Image      Value `json:"image"`
}

// Store is a store view
type Store struct {
	StoreID   Value `json:"store_id"`
	Code      Value `json:"code"`
	WebsiteID Value `json:"website_id"`
	GroupID   Value `json:"group_id"`
	Name      Value `json:"name"`
	IsActive  Value `json:"is_active"`
}

// AttributeSet is a product attribute set
type AttributeSet struct {
	SetID Value `json:"set_id"`
	Name  Value `json:"name"`
}
