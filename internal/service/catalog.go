package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/namjco/sales-tracker/internal/apperr"
	"github.com/namjco/sales-tracker/internal/event"
	"github.com/namjco/sales-tracker/internal/model"
	"github.com/namjco/sales-tracker/internal/repository"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/internal/storage/db"
	"github.com/namjco/sales-tracker/pkg/outbox"
	"github.com/namjco/sales-tracker/pkg/validator"
)

type CreateProductParams struct {
	Name string `json:"name" validate:"notblank"`
	// Price is rounded to cents before validation.
	Price decimal.Decimal `json:"price" validate:"gt=0,lt=1000000000000"`
	// CreatedAt defaults to the current time.
	CreatedAt time.Time `json:"-"`
}

type CatalogService interface {
	AddProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
}

type catalogService struct {
	logger        *slog.Logger
	db            db.DB
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	summaryCache  cache.SummaryCache
}

func NewCatalogService(
	logger *slog.Logger,
	db db.DB,
	validator validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	summaryCache cache.SummaryCache,
) CatalogService {
	return &catalogService{
		logger:        logger.With(slog.String("service", "catalog")),
		db:            db,
		validator:     validator,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		summaryCache:  summaryCache,
	}
}

func (s *catalogService) AddProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Price = params.Price.Round(2)
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}

	product := model.Product{
		ID:        id,
		Name:      params.Name,
		Price:     params.Price,
		CreatedAt: createdAt,
	}

	evBytes, err := json.Marshal(event.ProductCreatedEvent{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		partitionKey := product.ID.String()
		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicProductCreated,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: &partitionKey,
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Product{}, apperr.StoreErr.WrapParent(fmt.Errorf("db with tx: %w", err))
	}

	invalidateSummary(ctx, s.logger, s.summaryCache)

	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, apperr.StoreErr.WrapParent(fmt.Errorf("product repository list all products: %w", err))
	}

	return products, nil
}
