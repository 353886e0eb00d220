package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/namjco/sales-tracker/internal/model"
	"github.com/namjco/sales-tracker/internal/storage/db"
)

// ListSalesParams narrows ListSales. Nil fields do not filter.
type ListSalesParams struct {
	ProductID *string
	Limit     *int32
}

type SaleRepository interface {
	WithDB(db db.DB) SaleRepository
	CreateSale(ctx context.Context, sale model.Sale) error
	ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error)
}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) WithDB(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) CreateSale(ctx context.Context, sale model.Sale) error {
	if sale.Quantity > math.MaxInt32 || sale.Quantity < math.MinInt32 {
		return fmt.Errorf("quantity out of range: %d", sale.Quantity)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO sales (id, product_id, quantity, created_at)
		VALUES (@id, @product_id, @quantity, @created_at)
	`, pgx.NamedArgs{
		"id":         sale.ID,
		"product_id": sale.ProductID,
		"quantity":   int32(sale.Quantity),
		"created_at": sale.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return nil
}

func (r saleRepository) ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, quantity, created_at
		FROM sales
		WHERE @product_id::text IS NULL OR product_id = @product_id::text
		ORDER BY created_at DESC, id DESC
		LIMIT @limit::integer
	`, pgx.NamedArgs{
		"product_id": params.ProductID,
		"limit":      params.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Sale, error) {
		var (
			s        model.Sale
			quantity int32
		)
		if err := row.Scan(&s.ID, &s.ProductID, &quantity, &s.CreatedAt); err != nil {
			return model.Sale{}, err
		}
		s.Quantity = int(quantity)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect sales: %w", err)
	}

	return sales, nil
}
