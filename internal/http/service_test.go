package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/namjco/sales-tracker/api-contract"
	"github.com/namjco/sales-tracker/internal/config"
	httpsvc "github.com/namjco/sales-tracker/internal/http"
	"github.com/namjco/sales-tracker/internal/log"
	"github.com/namjco/sales-tracker/internal/repository/memrepo"
	"github.com/namjco/sales-tracker/internal/service"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/pkg/validator"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type unhealthy struct{}

func (unhealthy) IsHealthy(context.Context) (bool, error) {
	return false, errors.New("connection refused")
}

type server struct {
	router   chi.Router
	products *memrepo.Products
	sales    *memrepo.Sales
}

func newServer(t *testing.T) *server {
	t.Helper()
	return newServerWithHealth(t, memrepo.DB{})
}

func newServerWithHealth(t *testing.T, health interface {
	IsHealthy(context.Context) (bool, error)
}) *server {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	logger := log.Discard()
	products := memrepo.NewProducts()
	sales := memrepo.NewSales()
	outbox := memrepo.NewOutboxMsgs()
	summaryCache := cache.NewMemory()

	svc := httpsvc.New(
		config.HTTP{Swagger: true, CorsOrigins: []string{"*"}},
		logger,
		health,
		service.NewCatalogService(logger, memrepo.DB{}, v, products, outbox, summaryCache),
		service.NewLedgerService(logger, memrepo.DB{}, v, sales, outbox, summaryCache),
		service.NewDashboardService(config.Dashboard{Currency: "UGX"}, logger, products, sales, summaryCache),
	)

	r, err := svc.Router(context.Background())
	require.NoError(t, err)

	return &server{router: r, products: products, sales: sales}
}

func (s *server) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)

	var obj map[string]any
	if strings.HasPrefix(strings.TrimSpace(resp.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &obj))
	}
	return resp, obj
}

func (s *server) list(t *testing.T, target string) []map[string]any {
	t.Helper()

	resp, _ := s.do(t, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var items []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &items))
	return items
}

func detailFields(t *testing.T, body map[string]any) []string {
	t.Helper()

	details, ok := body["details"].([]any)
	require.True(t, ok, "details missing: %v", body)

	fields := make([]string, 0, len(details))
	for _, d := range details {
		fields = append(fields, d.(map[string]any)["field"].(string))
	}
	sort.Strings(fields)
	return fields
}

func TestProducts(t *testing.T) {
	s := newServer(t)

	t.Run("Should create product from numeric string price", func(t *testing.T) {
		resp, body := s.do(t, http.MethodPost, "/products", `{"name":" Sugar ","price":"1000"}`)

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Equal(t, "Sugar", body["name"])
		assert.InDelta(t, 1000, body["price"], 0)
		assert.NotEmpty(t, body["id"])
		assert.NotEmpty(t, body["created_at"])
	})

	t.Run("Should reject blank name and non-positive price", func(t *testing.T) {
		resp, body := s.do(t, http.MethodPost, "/products", `{"name":"  ","price":0}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_FAILED", body["code"])
		assert.Equal(t, []string{"name", "price"}, detailFields(t, body))
	})

	t.Run("Should reject missing fields", func(t *testing.T) {
		resp, body := s.do(t, http.MethodPost, "/products", `{}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, []string{"name", "price"}, detailFields(t, body))
	})

	t.Run("Should reject malformed body", func(t *testing.T) {
		resp, body := s.do(t, http.MethodPost, "/products", `{"name":`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "VALIDATION_FAILED", body["code"])
		assert.Contains(t, body["error"], "decode request body")
	})

	t.Run("Should list products", func(t *testing.T) {
		items := s.list(t, "/products")

		require.Len(t, items, 1)
		assert.Equal(t, "Sugar", items[0]["name"])
	})

	t.Run("Should report store failure", func(t *testing.T) {
		s.products.FailWith(errors.New("connection reset"))
		defer s.products.FailWith(nil)

		resp, body := s.do(t, http.MethodGet, "/products", "")

		require.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, "STORE_FAILED", body["code"])
		assert.NotContains(t, body["error"], "connection reset")
	})
}

func TestSales(t *testing.T) {
	s := newServer(t)

	t.Run("Should record sale with string quantity", func(t *testing.T) {
		resp, body := s.do(t, http.MethodPost, "/sales", `{"productId":"p-1","quantity":"3"}`)

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Equal(t, "p-1", body["product_id"])
		assert.InDelta(t, 3, body["quantity"], 0)
	})

	t.Run("Should record sale for unknown product", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodPost, "/sales", `{"productId":"p-2","quantity":1}`)
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Should reject missing product and zero quantity", func(t *testing.T) {
		resp, body := s.do(t, http.MethodPost, "/sales", `{"productId":"","quantity":0}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, []string{"productId", "quantity"}, detailFields(t, body))
	})

	t.Run("Should reject non-integer quantity", func(t *testing.T) {
		resp, _ := s.do(t, http.MethodPost, "/sales", `{"productId":"p-1","quantity":"two"}`)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should list, filter and limit", func(t *testing.T) {
		assert.Len(t, s.list(t, "/sales"), 2)

		items := s.list(t, "/sales?product_id=p-1&limit=5")
		require.Len(t, items, 1)
		assert.Equal(t, "p-1", items[0]["product_id"])

		items = s.list(t, "/sales?limit=1")
		require.Len(t, items, 1)
		assert.Equal(t, "p-2", items[0]["product_id"])
	})

	t.Run("Should reject bad query", func(t *testing.T) {
		for _, target := range []string{"/sales?limit=abc", "/sales?limit=0", "/sales?limit=-1"} {
			resp, body := s.do(t, http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, resp.Code, target)
			assert.Equal(t, "VALIDATION_FAILED", body["code"], target)
		}
	})
}

func TestDashboard(t *testing.T) {
	s := newServer(t)

	_, product := s.do(t, http.MethodPost, "/products", `{"name":"Sugar","price":1000}`)
	productID := product["id"].(string)

	resp, _ := s.do(t, http.MethodPost, "/sales", `{"productId":"`+productID+`","quantity":3}`)
	require.Equal(t, http.StatusOK, resp.Code)
	resp, _ = s.do(t, http.MethodPost, "/sales", `{"productId":"deleted","quantity":2}`)
	require.Equal(t, http.StatusOK, resp.Code)

	t.Run("Should return totals", func(t *testing.T) {
		resp, body := s.do(t, http.MethodGet, "/dashboard", "")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.InDelta(t, 3000, body["total_revenue"], 0)
		assert.InDelta(t, 1, body["product_count"], 0)
		assert.InDelta(t, 2, body["sale_count"], 0)
		assert.InDelta(t, 5, body["units_sold"], 0)
		assert.Equal(t, "UGX", body["currency"])
	})

	t.Run("Should return sale lines with unknown product", func(t *testing.T) {
		items := s.list(t, "/dashboard/sales")

		require.Len(t, items, 2)
		assert.Equal(t, "Unknown Product", items[0]["product_name"])
		assert.InDelta(t, 0, items[0]["line_value"], 0)
		assert.Equal(t, false, items[0]["resolved"])
		assert.Equal(t, "Sugar", items[1]["product_name"])
		assert.InDelta(t, 3000, items[1]["line_value"], 0)
	})

	t.Run("Should return product totals", func(t *testing.T) {
		items := s.list(t, "/dashboard/products")

		require.Len(t, items, 2)
		assert.Equal(t, productID, items[0]["product_id"])
		assert.InDelta(t, 3000, items[0]["revenue"], 0)
		assert.Equal(t, "Unknown Product", items[1]["product_name"])
	})

	t.Run("Should report store failure", func(t *testing.T) {
		s.sales.FailWith(errors.New("timeout"))
		defer s.sales.FailWith(nil)

		resp, body := s.do(t, http.MethodGet, "/dashboard/sales", "")
		require.Equal(t, http.StatusInternalServerError, resp.Code)
		assert.Equal(t, "STORE_FAILED", body["code"])
	})
}

func TestOps(t *testing.T) {
	t.Run("Should report healthy store", func(t *testing.T) {
		resp, body := newServer(t).do(t, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("Should report unreachable store", func(t *testing.T) {
		resp, body := newServerWithHealth(t, unhealthy{}).do(t, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Equal(t, "unavailable", body["status"])
	})

	t.Run("Should expose domain counters", func(t *testing.T) {
		s := newServer(t)
		s.do(t, http.MethodPost, "/sales", `{"productId":"p","quantity":4}`)

		resp, _ := s.do(t, http.MethodGet, "/metrics", "")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "sales_tracker_sales_recorded_total 1")
		assert.Contains(t, resp.Body.String(), "sales_tracker_units_sold_total 4")
		assert.Contains(t, resp.Body.String(), `sales_tracker_http_requests_total{method="POST",path="/sales",status="200"} 1`)
	})
}

func TestDocumentedRoutesAreServed(t *testing.T) {
	doc, err := apicontract.Load(context.Background())
	require.NoError(t, err)

	served := map[string]bool{}
	require.NoError(t, chi.Walk(newServer(t).router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		served[method+" "+route] = true
		return nil
	}))

	documented := map[string]bool{}
	for path, item := range doc.Paths.Map() {
		for method := range item.Operations() {
			key := method + " " + path
			documented[key] = true
			assert.True(t, served[key], "documented but not served: %s", key)
		}
	}

	for key := range served {
		if strings.Contains(key, " /docs") || strings.HasSuffix(key, " /metrics") {
			continue
		}
		assert.True(t, documented[key], "served but not documented: %s", key)
	}
}
