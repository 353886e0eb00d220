package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/namjco/sales-tracker/internal/model"
	"github.com/namjco/sales-tracker/internal/storage/db"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	ListAllProducts(ctx context.Context) ([]model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	var price pgtype.Numeric
	if err := price.Scan(product.Price.String()); err != nil {
		return fmt.Errorf("scan price: %w", err)
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, price, created_at)
		VALUES (@id, @name, @price, @created_at)
	`, pgx.NamedArgs{
		"id":         product.ID,
		"name":       product.Name,
		"price":      price,
		"created_at": product.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, created_at
		FROM products
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var (
			p     model.Product
			price pgtype.Numeric
		)
		if err := rows.Scan(&p.ID, &p.Name, &price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		p.Price, err = numericToDecimal(price)
		if err != nil {
			return nil, fmt.Errorf("convert price of product %s: %w", p.ID, err)
		}

		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
