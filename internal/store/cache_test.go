package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/merchkit/pricing/internal/bundle"
	"github.com/merchkit/pricing/internal/coupon"
	"github.com/merchkit/pricing/internal/pricing"
)

func newTestCache(t *testing.T) (*Cached, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	// Inner deliberately has no database; a test that reaches it panics,
	// proving the cache was bypassed
	return &Cached{Inner: &Store{}, Client: client, TTL: time.Minute, Logger: zerolog.Nop()}, mr
}

func seed(t *testing.T, mr *miniredis.Miniredis, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := mr.Set(key, string(data)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

func TestCachedShopHit(t *testing.T) {
	c, mr := newTestCache(t)
	shop := pricing.Shop{ID: uuid.New(), Currency: "USD", TaxRateBps: 825}
	seed(t, mr, "pricing:shop:"+shop.ID.String(), shop)

	got, err := c.GetShop(context.Background(), shop.ID)
	if err != nil {
		t.Fatalf("GetShop: %v", err)
	}
	if got.Currency != "USD" || got.TaxRateBps != 825 {
		t.Fatalf("unexpected shop from cache: %+v", got)
	}
}

func TestCachedCouponHit(t *testing.T) {
	c, mr := newTestCache(t)
	cpn := coupon.Coupon{ID: uuid.New(), Code: "SAVE10", Active: true, MinOrder: 20000}
	seed(t, mr, "pricing:coupon:SAVE10", cpn)

	got, err := c.GetByCode(context.Background(), "SAVE10")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if got.ID != cpn.ID || got.MinOrder != 20000 {
		t.Fatalf("unexpected coupon from cache: %+v", got)
	}
}

func TestCachedBundleHit(t *testing.T) {
	c, mr := newTestCache(t)
	b := bundle.Bundle{
		ID:    uuid.New(),
		Name:  "Dinner Set",
		Price: 15000,
		Products: []bundle.Constituent{
			{ProductID: uuid.New(), Qty: 1},
			{ProductID: uuid.New(), Qty: 2},
		},
	}
	seed(t, mr, "pricing:bundle:"+b.ID.String(), b)

	got, err := c.GetBundles(context.Background(), uuid.New(), []uuid.UUID{b.ID})
	if err != nil {
		t.Fatalf("GetBundles: %v", err)
	}
	if len(got) != 1 || got[b.ID].Price != 15000 || len(got[b.ID].Products) != 2 {
		t.Fatalf("unexpected bundles from cache: %+v", got)
	}
}

func TestCachePutThenHit(t *testing.T) {
	c, _ := newTestCache(t)
	shop := pricing.Shop{ID: uuid.New(), Currency: "EUR"}
	c.put(context.Background(), "pricing:shop:"+shop.ID.String(), shop)

	var got pricing.Shop
	if !c.hit(context.Background(), "pricing:shop:"+shop.ID.String(), &got) {
		t.Fatal("expected cache hit after put")
	}
	if got.Currency != "EUR" {
		t.Fatalf("round trip mangled shop: %+v", got)
	}
}

func TestCacheCorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	key := "pricing:shop:" + uuid.NewString()
	if err := mr.Set(key, "{not json"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	var got pricing.Shop
	if c.hit(context.Background(), key, &got) {
		t.Fatal("corrupt entry must read as a miss")
	}
}

func TestCacheDisabledWithoutClient(t *testing.T) {
	c := &Cached{Inner: &Store{}, Logger: zerolog.Nop()}
	var got pricing.Shop
	if c.hit(context.Background(), "pricing:shop:x", &got) {
		t.Fatal("nil client must never hit")
	}
	// put must be a no-op, not a panic
	c.put(context.Background(), "pricing:shop:x", got)
}
