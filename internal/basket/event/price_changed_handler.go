package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lunamart/eshop/internal/event"
)

// handlePriceChangedEvent patches every basket referencing the changed
// product. Delivery is at-least-once; the basket update is idempotent, so no
// dedup bookkeeping is kept. A returned error keeps the record's offset
// uncommitted and the consumer rewinds to it, so the event is redelivered.
func (s *Service) handlePriceChangedEvent(ctx context.Context, ev event.CatalogItemPriceChangedEvent) error {
	s.logger.InfoContext(ctx, "handling price changed event",
		slog.Int64("product_id", ev.ProductID),
		slog.String("old_price", ev.OldPrice.String()),
		slog.String("new_price", ev.NewPrice.String()),
	)

	if err := s.basketSvc.ApplyPriceChange(ctx, ev); err != nil {
		return fmt.Errorf("basket service apply price change: %w", err)
	}

	return nil
}
