package woowup

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/magesync/pkg/clients"
	"github.com/ajitpratap0/magesync/pkg/errors"
	"github.com/ajitpratap0/magesync/pkg/testutil"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   string
}

func newTestServer(t *testing.T, handler func(r capturedRequest) (int, string)) (*Client, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		req := capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  q,
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		}
		captured = append(captured, req)
		status, resp := handler(req)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(server.Close)

	cfg := clients.DefaultHTTPConfig()
	cfg.EnableHTTP2 = false
	httpClient := clients.NewHTTPClient(cfg, testutil.TestLogger(t))
	return NewClient(server.URL+"/apiv3", "secret-key", httpClient, testutil.TestLogger(t)), &captured
}

func TestClientUserExists(t *testing.T) {
	client, captured := newTestServer(t, func(capturedRequest) (int, string) {
		return http.StatusOK, `{"code": "ok", "payload": {"exist": true}}`
	})

	exists, err := client.UserExists(context.Background(), "ana@example.com", "30111222")
	require.NoError(t, err)
	assert.True(t, exists)

	req := (*captured)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/apiv3/multiusers/exist", req.Path)
	assert.Equal(t, "ana@example.com", req.Query["email"])
	assert.Equal(t, "30111222", req.Query["document"])
	assert.Equal(t, "Basic secret-key", req.Auth)
}

func TestClientCreatePurchase(t *testing.T) {
	client, captured := newTestServer(t, func(capturedRequest) (int, string) {
		return http.StatusCreated, `{"code": "ok", "payload": {}}`
	})

	order := &Order{
		InvoiceNumber: "100000001",
		Email:         "ana@example.com",
		Channel:       "web",
		Prices:        Prices{Gross: AmountFromFloat(100), Total: AmountFromFloat(90.5)},
		Customer:      &Customer{Email: "ana@example.com"},
	}
	require.NoError(t, client.CreatePurchase(context.Background(), order))

	req := (*captured)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/apiv3/purchases", req.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
	assert.Equal(t, "100000001", body["invoice_number"])
	assert.NotContains(t, body, "customer")
	prices := body["prices"].(map[string]any)
	assert.Equal(t, 90.5, prices["total"])
}

func TestClientUpdateProductEncodesSKU(t *testing.T) {
	client, captured := newTestServer(t, func(capturedRequest) (int, string) {
		return http.StatusOK, `{"code": "ok"}`
	})

	require.NoError(t, client.UpdateProduct(context.Background(), "AB/12", &Product{SKU: "AB/12", Name: "Remera"}))

	req := (*captured)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/apiv3/products/"+EncodeSKU("AB/12"), req.Path)
}

func TestClientSearchProducts(t *testing.T) {
	client, captured := newTestServer(t, func(capturedRequest) (int, string) {
		return http.StatusOK, `{"code": "ok", "payload": [{"sku": "A", "name": "Uno", "stock": 3, "available": true}]}`
	})

	products, err := client.SearchProducts(context.Background(), map[string]any{"with_stock": true}, 2, 100)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "A", products[0].SKU)

	req := (*captured)[0]
	assert.Equal(t, "2", req.Query["page"])
	assert.Equal(t, "100", req.Query["limit"])
	assert.JSONEq(t, `{"with_stock": true}`, req.Query["search"])
}

func TestClientDecodesAPIError(t *testing.T) {
	client, _ := newTestServer(t, func(capturedRequest) (int, string) {
		return http.StatusBadRequest, `{"code": "duplicated_purchase_number", "message": "Duplicated", "payload": {"errors": ["invoice_number already exists"]}}`
	})

	err := client.CreatePurchase(context.Background(), &Order{InvoiceNumber: "1"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, CodeDuplicatedPurchaseNumber, apiErr.Code)
	assert.Equal(t, "invoice_number already exists", apiErr.Detail())
}

func TestClientNotFound(t *testing.T) {
	client, _ := newTestServer(t, func(capturedRequest) (int, string) {
		return http.StatusNotFound, `not found`
	})

	err := client.UpdateProduct(context.Background(), "A", &Product{SKU: "A"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "not found", apiErr.Detail())
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestClientServerErrorIsRetryable(t *testing.T) {
	client, _ := newTestServer(t, func(capturedRequest) (int, string) {
		return http.StatusBadGateway, ``
	})

	err := client.CreateUser(context.Background(), &Customer{Email: "a@b.c"})
	require.Error(t, err)
	assert.True(t, errors.IsRetryable(err))
}
