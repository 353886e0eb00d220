package event

import (
	"context"
	"log/slog"
)

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event",
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.String("price", ev.Price.String()),
	)
	s.invalidateSummary(ctx)
	return nil
}

func (s *Service) handleSaleRecordedEvent(ctx context.Context, ev SaleRecordedEvent) error {
	s.logger.InfoContext(ctx, "handling sale recorded event",
		slog.String("sale_id", ev.SaleID),
		slog.String("product_id", ev.ProductID),
		slog.Int("quantity", ev.Quantity),
	)
	s.invalidateSummary(ctx)
	return nil
}

// invalidateSummary drops the cached dashboard summary. Another instance may
// have written the record, so the local write path cannot be relied on.
func (s *Service) invalidateSummary(ctx context.Context) {
	if err := s.summaryCache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "error invalidating dashboard summary", slog.Any("error", err))
	}
}
