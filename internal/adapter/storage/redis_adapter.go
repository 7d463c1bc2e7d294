package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

var _ port.CartRepository = (*RedisCart)(nil)

const cartKeyPrefix = "cart:"

var removeItemScript = redis.NewScript(`
local key = KEYS[1]
local field = ARGV[1]
local quantity = tonumber(ARGV[2])

local current = redis.call('HINCRBY', key, field, -quantity)
if current <= 0 then
	redis.call('HDEL', key, field)
	return 0
end

return current
`)

// RedisCart keeps one hash per customer: field = product name, value = reserved quantity.
type RedisCart struct {
	client *redis.Client
}

func NewRedisCart(client *redis.Client) *RedisCart {
	return &RedisCart{client: client}
}

func (r *RedisCart) AddItem(ctx context.Context, owner, product string, quantity int) (int, error) {
	total, err := r.client.HIncrBy(ctx, cartKeyPrefix+owner, product, int64(quantity)).Result()
	if err != nil {
		return 0, fmt.Errorf("add cart item: %w", err)
	}
	return int(total), nil
}

func (r *RedisCart) RemoveItem(ctx context.Context, owner, product string, quantity int) (int, error) {
	left, err := removeItemScript.Run(ctx, r.client, []string{cartKeyPrefix + owner}, product, quantity).Int()
	if err != nil {
		return 0, fmt.Errorf("remove cart item: %w", err)
	}
	return left, nil
}

func (r *RedisCart) Items(ctx context.Context, owner string) ([]domain.CartEntry, error) {
	fields, err := r.client.HGetAll(ctx, cartKeyPrefix+owner).Result()
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	items := make([]domain.CartEntry, 0, len(fields))
	for product, value := range fields {
		quantity, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("cart quantity of %q: %w", product, err)
		}
		if quantity > 0 {
			items = append(items, domain.CartEntry{Product: product, Quantity: quantity})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product < items[j].Product })
	return items, nil
}

func (r *RedisCart) Clear(ctx context.Context, owner string) error {
	return r.client.Del(ctx, cartKeyPrefix+owner).Err()
}

func (r *RedisCart) Reset(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, cartKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("reset carts: %w", err)
		}
	}
	return iter.Err()
}
