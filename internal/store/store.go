// Package store provides the PostgreSQL-backed implementations of the pricing
// engine's read interfaces, plus an optional Redis read-through layer.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/merchkit/pricing/internal/pricing"
	"github.com/merchkit/pricing/internal/tier"
)

// Querier is the subset of pgxpool.Pool the store needs. Tests satisfy it
// with a plain *pgx.Conn or a stub.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads pricing reference data from PostgreSQL.
type Store struct {
	DB     Querier
	Logger zerolog.Logger
}

// GetShop loads a shop's currency, tax, and tier settings.
func (s *Store) GetShop(ctx context.Context, id uuid.UUID) (pricing.Shop, error) {
	const q = `
SELECT id, currency, tax_rate_bps, prices_include_tax, tier_settings
FROM shops
WHERE id = $1`
	var (
		shop        pricing.Shop
		rawSettings []byte
	)
	err := s.DB.QueryRow(ctx, q, id).Scan(&shop.ID, &shop.Currency, &shop.TaxRateBps, &shop.PricesIncludeTax, &rawSettings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Shop{}, fmt.Errorf("shop %s: %w", id, pricing.ErrNotFound)
		}
		return pricing.Shop{}, fmt.Errorf("get shop: %w", err)
	}
	if len(rawSettings) > 0 {
		if err := unmarshalJSONB(rawSettings, &shop.TierSettings); err != nil {
			// a malformed tier config must not take pricing down
			s.Logger.Error().Err(err).Str("shop_id", id.String()).Msg("invalid tier settings, ignoring")
			shop.TierSettings = tier.Settings{}
		}
	}
	return shop, nil
}

// GetCustomer loads the shopper snapshot used for tier and targeting checks.
func (s *Store) GetCustomer(ctx context.Context, shopID, id uuid.UUID) (pricing.Customer, error) {
	const q = `
SELECT id, total_spent, order_count, COALESCE(tier, '')
FROM customers
WHERE shop_id = $1 AND id = $2`
	var c pricing.Customer
	err := s.DB.QueryRow(ctx, q, shopID, id).Scan(&c.ID, &c.TotalSpent, &c.OrderCount, &c.Tier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Customer{}, fmt.Errorf("customer %s: %w", id, pricing.ErrNotFound)
		}
		return pricing.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}
