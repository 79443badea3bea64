package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lunamart/eshop/internal/basket/model"
)

const basketKeyPrefix = "basket:"

// BasketRepository persists one basket document per customer with
// whole-document overwrite semantics. Each put is atomic at the key level;
// there is no transaction across keys.
type BasketRepository interface {
	// ForEachBasket streams every stored basket to fn. Iteration stops at
	// the first error from fn or the store.
	ForEachBasket(ctx context.Context, fn func(basket model.CustomerBasket) error) error
	// GetBasket returns the customer's basket, or nil when none is stored.
	GetBasket(ctx context.Context, customerID string) (*model.CustomerBasket, error)
	PutBasket(ctx context.Context, basket model.CustomerBasket) error
	// DeleteBasket removes the customer's basket and reports whether one existed.
	DeleteBasket(ctx context.Context, customerID string) (bool, error)
}

var _ BasketRepository = (*RedisBasketRepository)(nil)

type RedisBasketRepository struct {
	client *redis.Client
}

func NewRedisBasketRepository(client *redis.Client) *RedisBasketRepository {
	return &RedisBasketRepository{client: client}
}

func (r *RedisBasketRepository) ForEachBasket(ctx context.Context, fn func(basket model.CustomerBasket) error) error {
	iter := r.client.Scan(ctx, 0, basketKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		raw, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// key expired between SCAN and GET
				continue
			}
			return fmt.Errorf("get basket %s: %w", key, err)
		}

		var basket model.CustomerBasket
		if err := json.Unmarshal(raw, &basket); err != nil {
			return fmt.Errorf("unmarshal basket %s: %w", key, err)
		}

		if err := fn(basket); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan baskets: %w", err)
	}

	return nil
}

func (r *RedisBasketRepository) GetBasket(ctx context.Context, customerID string) (*model.CustomerBasket, error) {
	raw, err := r.client.Get(ctx, basketKey(customerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get basket: %w", err)
	}

	var basket model.CustomerBasket
	if err := json.Unmarshal(raw, &basket); err != nil {
		return nil, fmt.Errorf("unmarshal basket: %w", err)
	}

	return &basket, nil
}

func (r *RedisBasketRepository) PutBasket(ctx context.Context, basket model.CustomerBasket) error {
	raw, err := json.Marshal(basket)
	if err != nil {
		return fmt.Errorf("marshal basket: %w", err)
	}

	if err := r.client.Set(ctx, basketKey(basket.CustomerID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set basket: %w", err)
	}

	return nil
}

func (r *RedisBasketRepository) DeleteBasket(ctx context.Context, customerID string) (bool, error) {
	deleted, err := r.client.Del(ctx, basketKey(customerID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete basket: %w", err)
	}

	return deleted > 0, nil
}

func basketKey(customerID string) string {
	return basketKeyPrefix + customerID
}
