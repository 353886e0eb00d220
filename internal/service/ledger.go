package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/namjco/sales-tracker/internal/apperr"
	"github.com/namjco/sales-tracker/internal/event"
	"github.com/namjco/sales-tracker/internal/model"
	"github.com/namjco/sales-tracker/internal/repository"
	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/internal/storage/db"
	"github.com/namjco/sales-tracker/pkg/outbox"
	"github.com/namjco/sales-tracker/pkg/validator"
)

// CreateSaleParams records a sale. ProductID is not checked against the catalog.
type CreateSaleParams struct {
	ProductID string `json:"productId" validate:"notblank"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=2147483647"`
	// CreatedAt defaults to the current time.
	CreatedAt time.Time `json:"-"`
}

// ListSalesParams narrows ListSales. Nil fields do not filter.
type ListSalesParams struct {
	ProductID *string `json:"product_id"`
	Limit     *int    `json:"limit" validate:"omitempty,gte=1,lte=1000"`
}

type LedgerService interface {
	AddSale(ctx context.Context, params CreateSaleParams) (model.Sale, error)
	ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error)
}

type ledgerService struct {
	logger        *slog.Logger
	db            db.DB
	validator     validator.Validator
	saleRepo      repository.SaleRepository
	outboxMsgRepo repository.OutboxMsgRepository
	summaryCache  cache.SummaryCache
}

func NewLedgerService(
	logger *slog.Logger,
	db db.DB,
	validator validator.Validator,
	saleRepo repository.SaleRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	summaryCache cache.SummaryCache,
) LedgerService {
	return &ledgerService{
		logger:        logger.With(slog.String("service", "ledger")),
		db:            db,
		validator:     validator,
		saleRepo:      saleRepo,
		outboxMsgRepo: outboxMsgRepo,
		summaryCache:  summaryCache,
	}
}

func (s *ledgerService) AddSale(ctx context.Context, params CreateSaleParams) (model.Sale, error) {
	params.ProductID = strings.TrimSpace(params.ProductID)
	if err := validate(s.validator, params); err != nil {
		return model.Sale{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	createdAt := params.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}

	sale := model.Sale{
		ID:        id,
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
		CreatedAt: createdAt,
	}

	evBytes, err := json.Marshal(event.SaleRecordedEvent{
		SaleID:    sale.ID.String(),
		ProductID: sale.ProductID,
		Quantity:  sale.Quantity,
	})
	if err != nil {
		return model.Sale{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.saleRepo.
			WithDB(db).
			CreateSale(ctx, sale); err != nil {
			return fmt.Errorf("sale repository create sale: %w", err)
		}

		if err := s.outboxMsgRepo.
			WithDB(db).
			CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
				Topic:        event.TopicSaleRecorded,
				Headers:      outbox.BuildHeaders(ctx),
				Payload:      evBytes,
				PartitionKey: &sale.ProductID,
			}); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		return nil
	}); err != nil {
		return model.Sale{}, apperr.StoreErr.WrapParent(fmt.Errorf("db with tx: %w", err))
	}

	invalidateSummary(ctx, s.logger, s.summaryCache)

	return sale, nil
}

func (s *ledgerService) ListSales(ctx context.Context, params ListSalesParams) ([]model.Sale, error) {
	if err := validate(s.validator, params); err != nil {
		return nil, err
	}

	repoParams := repository.ListSalesParams{ProductID: params.ProductID}
	if params.Limit != nil {
		//nolint:gosec
		limit := int32(*params.Limit)
		repoParams.Limit = &limit
	}

	sales, err := s.saleRepo.ListSales(ctx, repoParams)
	if err != nil {
		return nil, apperr.StoreErr.WrapParent(fmt.Errorf("sale repository list sales: %w", err))
	}
	if sales == nil {
		sales = []model.Sale{}
	}

	return sales, nil
}
