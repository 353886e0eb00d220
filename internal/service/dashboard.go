package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/namjco/sales-tracker/internal/apperr"
	"github.com/namjco/sales-tracker/internal/config"
	"github.com/namjco/sales-tracker/internal/model"
	"github.com/namjco/sales-tracker/internal/report"
	"github.com/namjco/sales-tracker/internal/repository"
	"github.com/namjco/sales-tracker/internal/storage/cache"
)

// Overview is the dashboard summary with its display currency.
type Overview struct {
	report.Summary
	Currency string `json:"currency"`
}

type DashboardService interface {
	// Overview serves the cached summary when present. Cache errors are
	// logged and the summary is recomputed.
	Overview(ctx context.Context) (Overview, error)
	SaleLines(ctx context.Context) ([]report.SaleLine, error)
	ProductTotals(ctx context.Context) ([]report.ProductTotal, error)
	Invalidate(ctx context.Context)
}

type dashboardService struct {
	cfg          config.Dashboard
	logger       *slog.Logger
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	summaryCache cache.SummaryCache
}

func NewDashboardService(
	cfg config.Dashboard,
	logger *slog.Logger,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	summaryCache cache.SummaryCache,
) DashboardService {
	return &dashboardService{
		cfg:          cfg,
		logger:       logger.With(slog.String("service", "dashboard")),
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		summaryCache: summaryCache,
	}
}

func (s *dashboardService) Overview(ctx context.Context) (Overview, error) {
	summary, ok, err := s.summaryCache.GetSummary(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "error reading cached dashboard summary", slog.Any("error", err))
	}
	if ok {
		return Overview{Summary: summary, Currency: s.cfg.Currency}, nil
	}

	products, sales, err := s.load(ctx)
	if err != nil {
		return Overview{}, err
	}

	summary = report.Summarize(products, sales)
	if err := s.summaryCache.SetSummary(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "error caching dashboard summary", slog.Any("error", err))
	}

	return Overview{Summary: summary, Currency: s.cfg.Currency}, nil
}

func (s *dashboardService) SaleLines(ctx context.Context) ([]report.SaleLine, error) {
	products, sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return report.Lines(products, sales), nil
}

func (s *dashboardService) ProductTotals(ctx context.Context) ([]report.ProductTotal, error) {
	products, sales, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return report.ByProduct(products, sales), nil
}

func (s *dashboardService) Invalidate(ctx context.Context) {
	invalidateSummary(ctx, s.logger, s.summaryCache)
}

func (s *dashboardService) load(ctx context.Context) ([]model.Product, []model.Sale, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, nil, apperr.StoreErr.WrapParent(fmt.Errorf("product repository list all products: %w", err))
	}

	sales, err := s.saleRepo.ListSales(ctx, repository.ListSalesParams{})
	if err != nil {
		return nil, nil, apperr.StoreErr.WrapParent(fmt.Errorf("sale repository list sales: %w", err))
	}

	return products, sales, nil
}
