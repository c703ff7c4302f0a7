package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internity/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
)

// stateTTL keeps abandoned session state for 90 days, matching the retention
// of the Mongo backend's TTL index.
const stateTTL = 90 * 24 * time.Hour

// RedisCartRepository stores each session's cart as a JSON blob under a
// namespaced key, the durable key-value slot of the persistence contract.
type RedisCartRepository struct {
	client *redis.Client
}

func NewRedisCartRepository(client *redis.Client) *RedisCartRepository {
	return &RedisCartRepository{client: client}
}

func (r *RedisCartRepository) Load(ctx context.Context, sessionID string) ([]domain.CartLineItem, error) {
	data, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.CartLineItem
	if err := unmarshalState(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, sessionID string, items []domain.CartLineItem) error {
	data, err := marshalState(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, cartKey(sessionID), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// RedisWishlistRepository mirrors RedisCartRepository under its own key space.
type RedisWishlistRepository struct {
	client *redis.Client
}

func NewRedisWishlistRepository(client *redis.Client) *RedisWishlistRepository {
	return &RedisWishlistRepository{client: client}
}

func (r *RedisWishlistRepository) Load(ctx context.Context, sessionID string) ([]domain.WishlistItem, error) {
	data, err := r.client.Get(ctx, wishlistKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.WishlistItem
	if err := unmarshalState(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RedisWishlistRepository) Save(ctx context.Context, sessionID string, items []domain.WishlistItem) error {
	data, err := marshalState(items)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, wishlistKey(sessionID), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisWishlistRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, wishlistKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
