package woowup

import (
	"github.com/shopspring/decimal"
)

// Amount is a money value that encodes as a bare JSON number
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromFloat is a convenience for tests and fixed values
func AmountFromFloat(f float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(f)}
}

// MarshalJSON writes the amount without quotes
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts quoted and bare numbers
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Customer is a WoowUp user
type Customer struct {
	Email            string            `json:"email,omitempty"`
	Document         string            `json:"document,omitempty"`
	DocumentType     string            `json:"document_type,omitempty"`
	FirstName        string            `json:"first_name,omitempty"`
	LastName         string            `json:"last_name,omitempty"`
	Telephone        string            `json:"telephone,omitempty"`
	Country          string            `json:"country,omitempty"`
	State            string            `json:"state,omitempty"`
	City             string            `json:"city,omitempty"`
	Street           string            `json:"street,omitempty"`
	Postcode         string            `json:"postcode,omitempty"`
	Birthdate        string            `json:"birthdate,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	Tags             string            `json:"tags,omitempty"`
	CustomAttributes map[string]string `json:"custom_attributes,omitempty"`
}

// Identity returns the lookup key sent to the existence check
func (c *Customer) Identity() string {
	switch {
	case c.Email != "" && c.Document != "":
		return c.Email + "," + c.Document
	case c.Email != "":
		return c.Email
	default:
		return c.Document
	}
}

// Variation is a named product variation on an order line
type Variation struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Category is one level of a product breadcrumb
type Category struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	ImageURL string   `json:"image_url"`
	Path     []string `json:"-"`
}

// OrderLine is one purchased product
type OrderLine struct {
	SKU         string      `json:"sku"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   Amount      `json:"unit_price"`
	Variations  []Variation `json:"variations"`
	URL         string      `json:"url"`
	ImageURL    string      `json:"image_url"`
	Category    []Category  `json:"category,omitempty"`
}

// Prices is the order money breakdown
type Prices struct {
	Gross    Amount `json:"gross"`
	Discount Amount `json:"discount"`
	Tax      Amount `json:"tax"`
	Shipping Amount `json:"shipping"`
	Total    Amount `json:"total"`
}

// Payment types
const (
	PaymentMercadoPago = "mercadopago"
	PaymentTodoPago    = "todopago"
	PaymentCredit      = "credit"
	PaymentDebit       = "debit"
	PaymentOther       = "other"
)

// Payment describes how an order was paid
type Payment struct {
	Type         string  `json:"type,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	FirstDigits  string  `json:"first_digits,omitempty"`
	Installments int     `json:"installments,omitempty"`
	Amount       *Amount `json:"amount,omitempty"`
}

// IsZero reports whether nothing is known about the payment
func (p *Payment) IsZero() bool {
	return p == nil || (p.Type == "" && p.Brand == "" && p.FirstDigits == "" && p.Installments == 0 && p.Amount == nil)
}

// Order is a WoowUp purchase
type Order struct {
	InvoiceNumber  string      `json:"invoice_number"`
	Document       string      `json:"document,omitempty"`
	Email          string      `json:"email,omitempty"`
	Channel        string      `json:"channel"`
	PurchaseDetail []OrderLine `json:"purchase_detail"`
	CreateTime     string      `json:"createtime"`
	ApprovedTime   string      `json:"approvedtime"`
	BranchName     string      `json:"branch_name"`
	Prices         Prices      `json:"prices"`
	Payment        *Payment    `json:"payment,omitempty"`
	Points         *int        `json:"points,omitempty"`

	// Customer is upserted before the order; it is not part of the purchase payload
	Customer *Customer `json:"-"`
}

// Product is a WoowUp catalog product
type Product struct {
	SKU              string            `json:"sku"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Price            *Amount           `json:"price,omitempty"`
	OfferPrice       *Amount           `json:"offer_price,omitempty"`
	ImageURL         string            `json:"image_url,omitempty"`
	ThumbnailURL     string            `json:"thumbnail_url,omitempty"`
	Stock            int               `json:"stock"`
	Available        bool              `json:"available"`
	URL              string            `json:"url,omitempty"`
	Category         []Category        `json:"category,omitempty"`
	CustomAttributes map[string]string `json:"custom_attributes,omitempty"`
}
