package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/models"
)

const (
	orderKeyPrefix     = "order:"
	clientOrdersPrefix = "client_orders:"
	defaultCacheTTL    = 5 * time.Minute
)

// RedisOrderCache implements OrderCache using Redis. Misses are returned as
// (nil, nil); callers fall through to the repository.
type RedisOrderCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisOrderCache creates a new Redis-based order cache.
func NewRedisOrderCache(cfg config.RedisConfig, logger *slog.Logger) *RedisOrderCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &RedisOrderCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "order-cache"),
	}
}

// Get retrieves an order from cache.
func (c *RedisOrderCache) Get(ctx context.Context, id string) (*models.Order, error) {
	key := orderKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "order_id", id)
		return nil, nil
	}
	if err != nil {
		c.logger.Error("cache get error", "order_id", id, "error", err)
		return nil, err
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}

	c.logger.Debug("cache hit", "order_id", id)
	return &order, nil
}

// Set stores an order in cache.
func (c *RedisOrderCache) Set(ctx context.Context, order *models.Order) error {
	key := orderKeyPrefix + order.ID

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("cache set error", "order_id", order.ID, "error", err)
		return err
	}

	return nil
}

// Delete removes an order from cache.
func (c *RedisOrderCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, orderKeyPrefix+id).Err(); err != nil {
		c.logger.Error("cache delete error", "order_id", id, "error", err)
		return err
	}
	return nil
}

// GetByClientID retrieves cached orders for a client.
func (c *RedisOrderCache) GetByClientID(ctx context.Context, clientID string) ([]*models.Order, error) {
	key := clientOrdersPrefix + clientID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var orders []*models.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// SetByClientID caches orders for a client.
func (c *RedisOrderCache) SetByClientID(ctx context.Context, clientID string, orders []*models.Order) error {
	data, err := json.Marshal(orders)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, clientOrdersPrefix+clientID, data, c.ttl).Err()
}

// InvalidateByClientID removes cached orders for a client.
func (c *RedisOrderCache) InvalidateByClientID(ctx context.Context, clientID string) error {
	return c.client.Del(ctx, clientOrdersPrefix+clientID).Err()
}
