package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lunamart/eshop/internal/apperr"
	"github.com/lunamart/eshop/internal/basket/model"
	"github.com/lunamart/eshop/internal/basket/repository"
	"github.com/lunamart/eshop/internal/event"
)

type BasketService interface {
	// ListAllBaskets returns every stored basket. Admin surface.
	ListAllBaskets(ctx context.Context) ([]model.CustomerBasket, error)
	// GetBasket returns the customer's basket, or an implicit empty basket
	// when none is stored yet.
	GetBasket(ctx context.Context, customerID string) (model.CustomerBasket, error)
	UpdateBasket(ctx context.Context, basket model.CustomerBasket) (model.CustomerBasket, error)
	DeleteBasket(ctx context.Context, customerID string) error

	// ApplyPriceChange reprices every basket line item referencing the
	// changed product. Safe to replay.
	ApplyPriceChange(ctx context.Context, ev event.CatalogItemPriceChangedEvent) error
}

type basketService struct {
	logger     *slog.Logger
	basketRepo repository.BasketRepository
}

func NewBasketService(logger *slog.Logger, basketRepo repository.BasketRepository) BasketService {
	return &basketService{
		logger:     logger,
		basketRepo: basketRepo,
	}
}

func (s *basketService) ListAllBaskets(ctx context.Context) ([]model.CustomerBasket, error) {
	baskets := []model.CustomerBasket{}
	if err := s.basketRepo.ForEachBasket(ctx, func(basket model.CustomerBasket) error {
		baskets = append(baskets, basket)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("basket repository for each basket: %w", err)
	}

	return baskets, nil
}

func (s *basketService) GetBasket(ctx context.Context, customerID string) (model.CustomerBasket, error) {
	basket, err := s.basketRepo.GetBasket(ctx, customerID)
	if err != nil {
		return model.CustomerBasket{}, fmt.Errorf("basket repository get basket: %w", err)
	}
	if basket == nil {
		return model.NewCustomerBasket(customerID), nil
	}

	return *basket, nil
}

func (s *basketService) UpdateBasket(ctx context.Context, basket model.CustomerBasket) (model.CustomerBasket, error) {
	if basket.Items == nil {
		basket.Items = []model.BasketItem{}
	}

	if err := s.basketRepo.PutBasket(ctx, basket); err != nil {
		return model.CustomerBasket{}, fmt.Errorf("basket repository put basket: %w", err)
	}

	return basket, nil
}

func (s *basketService) DeleteBasket(ctx context.Context, customerID string) error {
	existed, err := s.basketRepo.DeleteBasket(ctx, customerID)
	if err != nil {
		return fmt.Errorf("basket repository delete basket: %w", err)
	}
	if !existed {
		return apperr.BasketNotFoundErr
	}

	return nil
}

// ApplyPriceChange full-scans the store; there is no index from product to
// baskets. Only baskets with at least one matching line item are written
// back. Replaying the same event sets old price equal to new price on the
// second pass, which changes nothing observable.
func (s *basketService) ApplyPriceChange(ctx context.Context, ev event.CatalogItemPriceChangedEvent) error {
	var scanned, updated int

	if err := s.basketRepo.ForEachBasket(ctx, func(basket model.CustomerBasket) error {
		scanned++

		if !repriceItems(&basket, ev) {
			return nil
		}

		if err := s.basketRepo.PutBasket(ctx, basket); err != nil {
			return fmt.Errorf("basket repository put basket: %w", err)
		}
		updated++
		return nil
	}); err != nil {
		return fmt.Errorf("basket repository for each basket: %w", err)
	}

	s.logger.InfoContext(ctx, "applied price change",
		slog.Int64("product_id", ev.ProductID),
		slog.String("old_price", ev.OldPrice.String()),
		slog.String("new_price", ev.NewPrice.String()),
		slog.Int("baskets_scanned", scanned),
		slog.Int("baskets_updated", updated),
	)

	return nil
}

func repriceItems(basket *model.CustomerBasket, ev event.CatalogItemPriceChangedEvent) bool {
	changed := false
	for i := range basket.Items {
		item := &basket.Items[i]
		if item.ProductID != ev.ProductID {
			continue
		}

		item.OldUnitPrice = ev.OldPrice
		item.UnitPrice = ev.NewPrice
		changed = true
	}

	return changed
}
