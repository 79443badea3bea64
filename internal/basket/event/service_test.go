package event_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	basketevent "github.com/lunamart/eshop/internal/basket/event"
	"github.com/lunamart/eshop/internal/basket/model"
	"github.com/lunamart/eshop/internal/event"
	"github.com/lunamart/eshop/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if _, ok := c.handlers[topic]; ok {
		return errors.New("handler already registered")
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	return func() {}, nil
}

type fakeBasketService struct {
	applied []event.CatalogItemPriceChangedEvent
	err     error
}

func (s *fakeBasketService) ListAllBaskets(context.Context) ([]model.CustomerBasket, error) {
	return nil, nil
}

func (s *fakeBasketService) GetBasket(_ context.Context, customerID string) (model.CustomerBasket, error) {
	return model.NewCustomerBasket(customerID), nil
}

func (s *fakeBasketService) UpdateBasket(_ context.Context, basket model.CustomerBasket) (model.CustomerBasket, error) {
	return basket, nil
}

func (s *fakeBasketService) DeleteBasket(context.Context, string) error { return nil }

func (s *fakeBasketService) ApplyPriceChange(_ context.Context, ev event.CatalogItemPriceChangedEvent) error {
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, ev)
	return nil
}

func TestEventServiceRun(t *testing.T) {
	ctx := context.Background()

	newFixture := func() (*fakeConsumer, *fakeBasketService, mq.CleanupFunc) {
		consumer := &fakeConsumer{handlers: map[string]mq.HandlerFunc{}}
		basketSvc := &fakeBasketService{}
		svc := basketevent.New(slog.New(slog.DiscardHandler), consumer, basketSvc)

		cleanup, err := svc.Run(ctx)
		require.NoError(t, err)
		return consumer, basketSvc, mq.CleanupFunc(cleanup)
	}

	t.Run("Should register handler for price changed topic", func(t *testing.T) {
		consumer, _, cleanup := newFixture()
		defer cleanup()

		assert.Contains(t, consumer.handlers, event.TopicCatalogItemPriceChanged)
	})

	t.Run("Should apply decoded event", func(t *testing.T) {
		consumer, basketSvc, cleanup := newFixture()
		defer cleanup()

		handler := consumer.handlers[event.TopicCatalogItemPriceChanged]
		payload := []byte(`{"product_id":7,"old_price":"100.00","new_price":"150.00"}`)

		require.NoError(t, handler(ctx, event.TopicCatalogItemPriceChanged, map[string]string{}, payload))

		require.Len(t, basketSvc.applied, 1)
		ev := basketSvc.applied[0]
		assert.Equal(t, int64(7), ev.ProductID)
		assert.True(t, ev.OldPrice.Equal(decimal.RequireFromString("100.00")))
		assert.True(t, ev.NewPrice.Equal(decimal.RequireFromString("150.00")))
	})

	t.Run("Should fail on malformed payload", func(t *testing.T) {
		consumer, basketSvc, cleanup := newFixture()
		defer cleanup()

		handler := consumer.handlers[event.TopicCatalogItemPriceChanged]
		err := handler(ctx, event.TopicCatalogItemPriceChanged, map[string]string{}, []byte("{not json"))

		assert.Error(t, err)
		assert.Empty(t, basketSvc.applied)
	})

	t.Run("Should propagate basket service errors for redelivery", func(t *testing.T) {
		consumer, basketSvc, cleanup := newFixture()
		defer cleanup()

		basketSvc.err = errors.New("store unavailable")
		handler := consumer.handlers[event.TopicCatalogItemPriceChanged]
		payload := []byte(`{"product_id":7,"old_price":"100.00","new_price":"150.00"}`)

		err := handler(ctx, event.TopicCatalogItemPriceChanged, map[string]string{}, payload)
		assert.ErrorContains(t, err, "store unavailable")
	})
}
