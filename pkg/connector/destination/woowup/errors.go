package woowup

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ajitpratap0/magesync/pkg/errors"
)

// Error codes returned by the WoowUp API that the reconciler acts on
const (
	CodeUserNotFound                 = "user_not_found"
	CodeDuplicatedPurchaseNumber     = "duplicated_purchase_number"
	CodeNotFound                     = "not_found"
	CodePurchaseDifferentCustomer    = "purchase_associated_with_different_customer"
	messageAssociatedDifferentClient = "associated with a different customer"
)

// APIError is a non-2xx answer from the WoowUp API
type APIError struct {
	Status  int
	Code    string
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woowup api %d %s: %s", e.Status, e.Code, e.Detail())
}

// Detail returns the first payload error, falling back to the message
func (e *APIError) Detail() string {
	if len(e.Errors) > 0 && e.Errors[0] != "" {
		return e.Errors[0]
	}
	return e.Message
}

// IsNotFound reports a missing resource
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound || e.Code == CodeNotFound
}

// associatedWithDifferentCustomer reports the benign conflict raised when
// updating a purchase that belongs to another customer
func (e *APIError) associatedWithDifferentCustomer() bool {
	if e.Code == CodePurchaseDifferentCustomer {
		return true
	}
	return strings.Contains(e.Message, messageAssociatedDifferentClient) ||
		strings.Contains(e.Detail(), messageAssociatedDifferentClient)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Payload struct {
		Errors []any `json:"errors"`
	} `json:"payload"`
}

// decodeAPIError builds an APIError from a response; the body may not be JSON
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}
	apiErr.Code = eb.Code
	apiErr.Message = eb.Message
	for _, e := range eb.Payload.Errors {
		switch v := e.(type) {
		case string:
			apiErr.Errors = append(apiErr.Errors, v)
		default:
			if data, err := json.Marshal(v); err == nil {
				apiErr.Errors = append(apiErr.Errors, string(data))
			}
		}
	}
	return apiErr
}

// classify maps an API error onto the shared error types so callers can use
// errors.IsType and errors.IsRetryable
func classify(apiErr *APIError) *errors.Error {
	var t errors.ErrorType
	switch {
	case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
		t = errors.ErrorTypeAuthentication
	case apiErr.IsNotFound():
		t = errors.ErrorTypeNotFound
	case apiErr.Status == http.StatusConflict || apiErr.Code == CodeDuplicatedPurchaseNumber:
		t = errors.ErrorTypeConflict
	case apiErr.Status == http.StatusTooManyRequests:
		t = errors.ErrorTypeRateLimit
	case apiErr.Status >= http.StatusInternalServerError:
		t = errors.ErrorTypeTransient
	case apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity:
		t = errors.ErrorTypeValidation
	default:
		t = errors.ErrorTypePermanent
	}
	return errors.Wrap(apiErr, t, "woowup request failed")
}

// AsAPIError extracts the API error from err
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// failureDetail returns the code and message recorded for a failed record
func failureDetail(err error) (string, string) {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Code, apiErr.Detail()
	}
	return string(errors.TypeOf(err)), err.Error()
}
