package pipeline

import (
	"strings"

	"github.com/ajitpratap0/magesync/pkg/connector/destination/woowup"
	"github.com/ajitpratap0/magesync/pkg/connector/source/magento"
)

// paymentKeywords are checked in order; the first one contained in the
// method name wins
var paymentKeywords = []string{
	woowup.PaymentMercadoPago,
	woowup.PaymentTodoPago,
	woowup.PaymentCredit,
	woowup.PaymentDebit,
}

// ClassifyPayment maps a payment method or type id to a WoowUp payment type
func ClassifyPayment(method string) string {
	m := strings.ToLower(method)
	for _, k := range paymentKeywords {
		if strings.Contains(m, k) {
			return k
		}
	}
	return woowup.PaymentOther
}

// buildPayment maps the gateway data of an order payment. It returns nil
// when the order carries no payment block.
func buildPayment(p *magento.Payment) *woowup.Payment {
	if p == nil {
		return nil
	}

	out := &woowup.Payment{}
	info := p.AdditionalInformation
	if info.Present() {
		if !info.PaymentTypeID.IsEmpty() {
			out.Type = ClassifyPayment(info.PaymentTypeID.Trim())
		}
		if !info.PaymentMethod.IsEmpty() {
			out.Brand = cleanName(info.PaymentMethod.String())
		}
		if !info.CardTruncated.IsEmpty() {
			out.FirstDigits = firstN(strings.ReplaceAll(info.CardTruncated.String(), " ", ""), 6)
		}
		if !info.Installments.IsEmpty() {
			out.Installments = info.Installments.Int()
		}
		if !info.TotalAmount.IsEmpty() {
			amount := woowup.NewAmount(info.TotalAmount.Decimal())
			out.Amount = &amount
		}
	}

	// the payment method overrides the gateway type id
	out.Type = ClassifyPayment(p.Method.Trim())
	return out
}
