// Package woowup is the destination side: a REST client for the WoowUp API,
// the reconciler that turns create/update outcomes into run statistics, and
// the statistics themselves.
package woowup

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/magesync/pkg/clients"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/json"
)

// DefaultBaseURL is the public API root
const DefaultBaseURL = "https://api.woowup.com/apiv3"

// DefaultPageSize is the product search page size
const DefaultPageSize = 100

// API is the subset of the WoowUp API the reconciler uses
type API interface {
	UserExists(ctx context.Context, email, document string) (bool, error)
	CreateUser(ctx context.Context, c *Customer) error
	UpdateUser(ctx context.Context, c *Customer) error
	CreatePurchase(ctx context.Context, o *Order) error
	UpdatePurchase(ctx context.Context, o *Order) error
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, sku string, p *Product) error
	SearchProducts(ctx context.Context, search map[string]any, page, limit int) ([]Product, error)
}

// Client calls the WoowUp REST API
type Client struct {
	baseURL string
	apiKey  string
	http    *clients.HTTPClient
	logger  *zap.Logger
}

// NewClient creates a client for baseURL authenticating with apiKey.
// The key is sent as issued in "Authorization: Basic <apiKey>".
func NewClient(baseURL, apiKey string, httpClient *clients.HTTPClient, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		logger:  logger.With(zap.String("component", "woowup_client")),
	}
}

type envelope struct {
	Code    string          `json:"code"`
	Payload json.RawMessage `json:"payload"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "encode request body")
		}
		body = data
	}

	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Basic " + c.apiKey,
	}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}

	status, data, err := c.http.Send(ctx, method, u, body, headers)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "woowup request failed").
			WithDetail("method", method).
			WithDetail("path", path)
	}
	if status < 200 || status >= 300 {
		apiErr := decodeAPIError(status, data)
		c.logger.Debug("woowup api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("code", apiErr.Code))
		return nil, classify(apiErr)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decode woowup response").WithDetail("path", path)
	}
	return env.Payload, nil
}

// UserExists checks whether a user with the given email or document exists
func (c *Client) UserExists(ctx context.Context, email, document string) (bool, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("document", document)
	payload, err := c.do(ctx, http.MethodGet, "/multiusers/exist", q, nil)
	if err != nil {
		return false, err
	}
	var out struct {
		Exist bool `json:"exist"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &out); err != nil {
			return false, errors.Wrap(err, errors.ErrorTypeData, "decode user existence")
		}
	}
	return out.Exist, nil
}

// CreateUser creates a user
func (c *Client) CreateUser(ctx context.Context, cu *Customer) error {
	_, err := c.do(ctx, http.MethodPost, "/users", nil, cu)
	return err
}

// UpdateUser updates every user matching the customer's email or document
func (c *Client) UpdateUser(ctx context.Context, cu *Customer) error {
	_, err := c.do(ctx, http.MethodPut, "/multiusers", nil, cu)
	return err
}

// CreatePurchase creates a purchase
func (c *Client) CreatePurchase(ctx context.Context, o *Order) error {
	_, err := c.do(ctx, http.MethodPost, "/purchases", nil, o)
	return err
}

// UpdatePurchase replaces the purchase with the same invoice number
func (c *Client) UpdatePurchase(ctx context.Context, o *Order) error {
	_, err := c.do(ctx, http.MethodPut, "/purchases", nil, o)
	return err
}

// CreateProduct creates a product
func (c *Client) CreateProduct(ctx context.Context, p *Product) error {
	_, err := c.do(ctx, http.MethodPost, "/products", nil, p)
	return err
}

// UpdateProduct updates the product identified by sku. The sku travels
// base64 encoded in the path since it may contain slashes.
func (c *Client) UpdateProduct(ctx context.Context, sku string, p *Product) error {
	_, err := c.do(ctx, http.MethodPut, "/products/"+EncodeSKU(sku), nil, p)
	return err
}

// SearchProducts returns one page of products matching search
func (c *Client) SearchProducts(ctx context.Context, search map[string]any, page, limit int) ([]Product, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if len(search) > 0 {
		data, err := json.Marshal(search)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "encode product search")
		}
		q.Set("search", string(data))
	}
	payload, err := c.do(ctx, http.MethodGet, "/products", q, nil)
	if err != nil {
		return nil, err
	}
	out := []Product{}
	if len(payload) == 0 || string(payload) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "decode product search")
	}
	return out, nil
}

// EncodeSKU returns the path form of a sku
func EncodeSKU(sku string) string {
	return base64.URLEncoding.EncodeToString([]byte(sku))
}
