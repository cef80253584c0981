package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/merchkit/pricing/internal/bundle"
	"github.com/merchkit/pricing/internal/coupon"
	"github.com/merchkit/pricing/internal/discount"
	"github.com/merchkit/pricing/internal/pricing"
)

// Cached layers a Redis read-through over the slow-changing lookups: shop
// settings, coupons, and bundle definitions. Customer and product reads stay
// on PostgreSQL because carts observe inventory and spend too closely for
// stale reads. Redis failures degrade to the database and are only logged.
type Cached struct {
	Inner  *Store
	Client *redis.Client
	TTL    time.Duration
	Logger zerolog.Logger
}

func (c *Cached) enabled() bool {
	return c.Client != nil && c.TTL > 0
}

// GetShop reads through the shop settings cache.
func (c *Cached) GetShop(ctx context.Context, id uuid.UUID) (pricing.Shop, error) {
	key := "pricing:shop:" + id.String()
	var shop pricing.Shop
	if c.hit(ctx, key, &shop) {
		return shop, nil
	}
	shop, err := c.Inner.GetShop(ctx, id)
	if err != nil {
		return pricing.Shop{}, err
	}
	c.put(ctx, key, shop)
	return shop, nil
}

// GetByCode reads through the coupon cache.
func (c *Cached) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	key := "pricing:coupon:" + code
	var cached coupon.Coupon
	if c.hit(ctx, key, &cached) {
		return &cached, nil
	}
	cpn, err := c.Inner.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, cpn)
	return cpn, nil
}

// GetBundles reads through per-bundle cache entries and batches the misses.
func (c *Cached) GetBundles(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bundle.Bundle, error) {
	out := make(map[uuid.UUID]bundle.Bundle, len(ids))
	var misses []uuid.UUID
	for _, id := range ids {
		var b bundle.Bundle
		if c.hit(ctx, "pricing:bundle:"+id.String(), &b) {
			out[id] = b
			continue
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return out, nil
	}
	loaded, err := c.Inner.GetBundles(ctx, shopID, misses)
	if err != nil {
		return nil, err
	}
	for id, b := range loaded {
		out[id] = b
		c.put(ctx, "pricing:bundle:"+id.String(), b)
	}
	return out, nil
}

// GetCustomer always reads the database; spend and order counts move with
// every checkout.
func (c *Cached) GetCustomer(ctx context.Context, shopID, id uuid.UUID) (pricing.Customer, error) {
	return c.Inner.GetCustomer(ctx, shopID, id)
}

// GetProducts always reads the database so gift resolution sees current
// inventory.
func (c *Cached) GetProducts(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]pricing.Product, error) {
	return c.Inner.GetProducts(ctx, shopID, ids)
}

// ListActiveAutomatic always reads the database; merchants expect discount
// edits to show up in the next calculation.
func (c *Cached) ListActiveAutomatic(ctx context.Context, shopID uuid.UUID) ([]discount.Discount, error) {
	return c.Inner.ListActiveAutomatic(ctx, shopID)
}

func (c *Cached) hit(ctx context.Context, key string, dst any) bool {
	if !c.enabled() {
		return false
	}
	data, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

func (c *Cached) put(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Client.Set(ctx, key, data, c.TTL).Err(); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
