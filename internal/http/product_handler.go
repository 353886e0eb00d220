package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/namjco/sales-tracker/internal/http/metric"
	"github.com/namjco/sales-tracker/internal/service"
)

// createProductRequest accepts price as a JSON number or numeric string.
type createProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type productHandler struct {
	catalogSvc service.CatalogService
	metrics    *metric.Metrics
}

func newProductHandler(catalogSvc service.CatalogService, metrics *metric.Metrics) *productHandler {
	return &productHandler{
		catalogSvc: catalogSvc,
		metrics:    metrics,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.catalogSvc.ListProducts(r.Context())
	if err != nil {
		return fmt.Errorf("catalog service list products: %w", err)
	}

	return writeJSON(w, http.StatusOK, products)
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var req createProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	product, err := h.catalogSvc.AddProduct(r.Context(), service.CreateProductParams{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		return fmt.Errorf("catalog service add product: %w", err)
	}
	h.metrics.ProductsCreated.Inc()

	return writeJSON(w, http.StatusOK, product)
}
