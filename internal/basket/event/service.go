package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lunamart/eshop/internal/basket/service"
	"github.com/lunamart/eshop/internal/event"
	"github.com/lunamart/eshop/internal/storage/mq"
)

// Service subscribes the basket service to catalog integration events.
type Service struct {
	logger     *slog.Logger
	mqConsumer mq.Consumer
	basketSvc  service.BasketService
}

// New creates a new event service.
func New(
	logger *slog.Logger,
	mqConsumer mq.Consumer,
	basketSvc service.BasketService,
) *Service {
	return &Service{
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
		basketSvc:  basketSvc,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.mqConsumer.RegisterHandler(
		event.TopicCatalogItemPriceChanged,
		func(ctx context.Context, topic string, headers map[string]string, payload []byte) error {
			ctx = mq.ExtractContextFromHeaders(ctx, headers)

			var ev event.CatalogItemPriceChangedEvent
			if err := json.Unmarshal(payload, &ev); err != nil {
				return fmt.Errorf("unmarshal price changed event: %w", err)
			}

			if err := s.handlePriceChangedEvent(ctx, ev); err != nil {
				return fmt.Errorf("handle price changed event: %w", err)
			}

			return nil
		},
	); err != nil {
		return nil, fmt.Errorf("register price changed event handler: %w", err)
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
