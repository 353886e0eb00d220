package http

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/namjco/sales-tracker/internal/apperr"
	"github.com/namjco/sales-tracker/internal/http/metric"
	"github.com/namjco/sales-tracker/internal/service"
	"github.com/namjco/sales-tracker/pkg/lenient"
)

// createSaleRequest accepts quantity as a JSON integer or integer string.
type createSaleRequest struct {
	ProductID string      `json:"productId"`
	Quantity  lenient.Int `json:"quantity"`
}

type saleHandler struct {
	ledgerSvc service.LedgerService
	metrics   *metric.Metrics
}

func newSaleHandler(ledgerSvc service.LedgerService, metrics *metric.Metrics) *saleHandler {
	return &saleHandler{
		ledgerSvc: ledgerSvc,
		metrics:   metrics,
	}
}

func (h *saleHandler) ListSales(w http.ResponseWriter, r *http.Request) error {
	var params service.ListSalesParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "product_id", query, &params.ProductID); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}
	if params.ProductID != nil && *params.ProductID == "" {
		params.ProductID = nil
	}

	sales, err := h.ledgerSvc.ListSales(r.Context(), params)
	if err != nil {
		return fmt.Errorf("ledger service list sales: %w", err)
	}

	return writeJSON(w, http.StatusOK, sales)
}

func (h *saleHandler) CreateSale(w http.ResponseWriter, r *http.Request) error {
	var req createSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	sale, err := h.ledgerSvc.AddSale(r.Context(), service.CreateSaleParams{
		ProductID: req.ProductID,
		Quantity:  req.Quantity.Value,
	})
	if err != nil {
		return fmt.Errorf("ledger service add sale: %w", err)
	}
	h.metrics.SalesRecorded.Inc()
	h.metrics.UnitsSold.Add(float64(sale.Quantity))

	return writeJSON(w, http.StatusOK, sale)
}
