package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/namjco/sales-tracker/internal/report"
	"github.com/namjco/sales-tracker/internal/service"
)

type saleLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineValue   decimal.Decimal `json:"line_value"`
	Resolved    bool            `json:"resolved"`
	CreatedAt   time.Time       `json:"created_at"`
}

type productTotalResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Resolved    bool            `json:"resolved"`
}

type dashboardHandler struct {
	dashboardSvc service.DashboardService
}

func newDashboardHandler(dashboardSvc service.DashboardService) *dashboardHandler {
	return &dashboardHandler{
		dashboardSvc: dashboardSvc,
	}
}

func (h *dashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) error {
	overview, err := h.dashboardSvc.Overview(r.Context())
	if err != nil {
		return fmt.Errorf("dashboard service overview: %w", err)
	}

	return writeJSON(w, http.StatusOK, overview)
}

func (h *dashboardHandler) ListSaleLines(w http.ResponseWriter, r *http.Request) error {
	lines, err := h.dashboardSvc.SaleLines(r.Context())
	if err != nil {
		return fmt.Errorf("dashboard service sale lines: %w", err)
	}

	items := make([]saleLineResponse, 0, len(lines))
	for _, l := range lines {
		items = append(items, toSaleLineResponse(l))
	}

	return writeJSON(w, http.StatusOK, items)
}

func (h *dashboardHandler) ListProductTotals(w http.ResponseWriter, r *http.Request) error {
	totals, err := h.dashboardSvc.ProductTotals(r.Context())
	if err != nil {
		return fmt.Errorf("dashboard service product totals: %w", err)
	}

	items := make([]productTotalResponse, 0, len(totals))
	for _, t := range totals {
		items = append(items, productTotalResponse{
			ProductID:   t.ProductID,
			ProductName: t.ProductName,
			UnitsSold:   t.UnitsSold,
			Revenue:     t.Revenue,
			Resolved:    t.Resolved,
		})
	}

	return writeJSON(w, http.StatusOK, items)
}

func toSaleLineResponse(l report.SaleLine) saleLineResponse {
	return saleLineResponse{
		ID:          l.Sale.ID,
		ProductID:   l.Sale.ProductID,
		ProductName: l.ProductName,
		Quantity:    l.Sale.Quantity,
		UnitPrice:   l.UnitPrice,
		LineValue:   l.LineValue,
		Resolved:    l.Resolved,
		CreatedAt:   l.Sale.CreatedAt,
	}
}
