package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/norraset/shopapi/internal/models"
)

const keyOrderStatus = "order_status:%d"

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// OrderStatus is a small read-through cache over the order status column.
// A nil client disables caching; the database stays the source of truth
// either way, so every method is best-effort.
type OrderStatus struct {
	Client *redis.Client
	TTL    time.Duration
}

func (c *OrderStatus) Get(ctx context.Context, orderID int64) (models.OrderStatus, bool) {
	if c == nil || c.Client == nil {
		return "", false
	}
	s, err := c.Client.Get(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Result()
	if err != nil || s == "" {
		return "", false
	}
	return models.OrderStatus(s), true
}

func (c *OrderStatus) Set(ctx context.Context, orderID int64, status models.OrderStatus) {
	if c == nil || c.Client == nil {
		return
	}
	_ = c.Client.Set(ctx, fmt.Sprintf(keyOrderStatus, orderID), string(status), c.TTL).Err()
}

func (c *OrderStatus) Invalidate(ctx context.Context, orderID int64) {
	if c == nil || c.Client == nil {
		return
	}
	_ = c.Client.Del(ctx, fmt.Sprintf(keyOrderStatus, orderID)).Err()
}
