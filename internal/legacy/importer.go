package legacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/namjco/sales-tracker/internal/apperr"
	"github.com/namjco/sales-tracker/internal/service"
)

// Result summarises an import. IDs maps export product ids to the ids
// assigned by the catalog.
type Result struct {
	Products int
	Sales    int
	Skipped  int
	IDs      map[string]uuid.UUID
}

type Importer struct {
	logger     *slog.Logger
	catalogSvc service.CatalogService
	ledgerSvc  service.LedgerService
}

func NewImporter(logger *slog.Logger, catalogSvc service.CatalogService, ledgerSvc service.LedgerService) *Importer {
	return &Importer{
		logger:     logger.With(slog.String("service", "legacy_import")),
		catalogSvc: catalogSvc,
		ledgerSvc:  ledgerSvc,
	}
}

// Run adds every product, then every sale. Sales pointing at an imported
// product are rewritten to its new id; other product ids are kept as they
// are. Rows the catalog or ledger reject are skipped. Any other error stops
// the import, leaving the rows added so far in place.
func (i *Importer) Run(ctx context.Context, exp Export) (Result, error) {
	res := Result{
		Skipped: exp.Invalid,
		IDs:     make(map[string]uuid.UUID, len(exp.Products)),
	}

	for _, p := range exp.Products {
		if _, dup := res.IDs[p.ID]; dup && p.ID != "" {
			i.logger.WarnContext(ctx, "skipping duplicate product", slog.String("legacy_id", p.ID))
			res.Skipped++
			continue
		}

		product, err := i.catalogSvc.AddProduct(ctx, service.CreateProductParams{
			Name:  p.Name,
			Price: p.Price,
		})
		if errors.Is(err, apperr.ValidationErr) {
			i.logger.WarnContext(ctx, "skipping invalid product", slog.String("legacy_id", p.ID), slog.Any("error", err))
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("add product %s: %w", p.ID, err)
		}

		if p.ID != "" {
			res.IDs[p.ID] = product.ID
		}
		res.Products++
	}

	for _, s := range exp.Sales {
		productID := s.ProductID
		if newID, ok := res.IDs[productID]; ok {
			productID = newID.String()
		}

		_, err := i.ledgerSvc.AddSale(ctx, service.CreateSaleParams{
			ProductID: productID,
			Quantity:  s.Quantity,
			CreatedAt: s.Date,
		})
		if errors.Is(err, apperr.ValidationErr) {
			i.logger.WarnContext(ctx, "skipping invalid sale", slog.String("legacy_id", s.ID), slog.Any("error", err))
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("add sale %s: %w", s.ID, err)
		}
		res.Sales++
	}

	return res, nil
}
