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

// CustomerTag is set on every customer pushed by the connector
const CustomerTag = "Magento"

// ErrInvalidCustomer is returned for a customer with neither email nor a valid document
var ErrInvalidCustomer = errors.New(errors.ErrorTypeValidation, "customer has no valid email or document")

// Customer maps a source customer
func (t *Transformer) Customer(ctx context.Context, c *magento.Customer) (*woowup.Customer, error) {
	out := &woowup.Customer{
		FirstName: cleanName(c.Firstname.String()),
		LastName:  cleanName(c.Lastname.String()),
		Email:     strings.ToLower(c.Email.Trim()),
		Birthdate: c.Dob.Trim(),
		Gender:    gender(c.Gender),
		Tags:      CustomerTag,
	}

	if doc, ok := ValidDocument(c.Dni.String()); ok {
		out.Document = doc
		out.DocumentType = DocumentTypeDNI
	}

	if a := c.Address; a != nil {
		out.Country = a.CountryID.Trim()
		out.State = cleanName(a.Region.String())
		out.Street = cleanName(a.Street.String())
		out.City = cleanName(a.City.String())
		out.Postcode = a.Postcode.Trim()
		out.Telephone = a.Telephone.Trim()
	}

	if !c.GroupID.IsEmpty() {
		out.Tags += ",group" + c.GroupID.Trim()
	}

	out.CustomAttributes = nonEmpty(t.hooks.CustomerAttributes(c.Attributes))

	if out.Email == "" && out.Document == "" {
		logger.FromContext(ctx, t.logger).Info("customer has no valid document or email",
			zap.String("customer_id", c.CustomerID.Trim()))
		return nil, fmt.Errorf("customer %s: %w", c.CustomerID.Trim(), ErrInvalidCustomer)
	}
	return out, nil
}

// CustomerFromOrder builds the customer of a guest order from the order fields
func (t *Transformer) CustomerFromOrder(o *magento.Order) *woowup.Customer {
	out := &woowup.Customer{
		Email:     strings.ToLower(o.CustomerEmail.Trim()),
		FirstName: cleanName(o.CustomerFirstname.String()),
		LastName:  cleanName(o.CustomerLastname.String()),
		Birthdate: o.CustomerDob.Trim(),
		Gender:    gender(o.CustomerGender),
	}
	if out.FirstName != "" {
		if middle := cleanName(o.CustomerMiddlename.String()); middle != "" {
			out.FirstName += " " + middle
		}
	}
	out.CustomAttributes = nonEmpty(t.hooks.CustomerAttributes(o.Attributes))
	return out
}

func gender(v magento.Value) string {
	switch v.Trim() {
	case "1":
		return "M"
	case "2":
		return "F"
	default:
		return ""
	}
}

// nonEmpty drops blank values and returns nil when nothing is left
func nonEmpty(attrs map[string]string) map[string]string {
	var out map[string]string
	for k, v := range attrs {
		if v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(attrs))
		}
		out[k] = v
	}
	return out
}
