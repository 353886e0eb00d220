package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/namjco/sales-tracker/internal/storage/cache"
	"github.com/namjco/sales-tracker/internal/storage/mq"
)

// Service consumes domain events.
type Service struct {
	logger       *slog.Logger
	mqConsumer   mq.Consumer
	summaryCache cache.SummaryCache
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	summaryCache cache.SummaryCache,
) *Service {
	return &Service{
		logger:       logger.With(slog.String("service", "event")),
		mqConsumer:   mqConsumer,
		summaryCache: summaryCache,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(TopicProductCreated, decode(s.handleProductCreatedEvent)); err != nil {
		return nil, fmt.Errorf("register product created event handler: %w", err)
	}

	if err := s.mqConsumer.RegisterHandler(TopicSaleRecorded, decode(s.handleSaleRecordedEvent)); err != nil {
		return nil, fmt.Errorf("register sale recorded event handler: %w", err)
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// decode adapts a typed event handler to a raw payload handler.
func decode[E any](handle func(context.Context, E) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev E
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := handle(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
