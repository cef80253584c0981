package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/merchkit/pricing/internal/coupon"
	"github.com/merchkit/pricing/internal/discount"
	"github.com/merchkit/pricing/internal/pricing"
)

// GetByCode loads one coupon by its unique code. The validation chain handles
// shop ownership and activity, so this returns inactive coupons too.
func (s *Store) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	const q = `
SELECT id, shop_id, code, title, active, kind, params, starts_at, ends_at,
       min_order, max_discount, target, applicable_customers, gift,
       enable_customer_bonus, customer_bonus_bps
FROM coupons
WHERE code = $1`
	var (
		c         coupon.Coupon
		rawParams json.RawMessage
		rawTarget []byte
		rawGift   []byte
	)
	err := s.DB.QueryRow(ctx, q, code).Scan(&c.ID, &c.ShopID, &c.Code, &c.Title, &c.Active,
		&c.Kind, &rawParams, &c.StartsAt, &c.EndsAt, &c.MinOrder, &c.MaxDiscount,
		&rawTarget, &c.ApplicableCustomers, &rawGift, &c.EnableCustomerBonus, &c.CustomerBonusBps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("coupon %q: %w", code, pricing.ErrNotFound)
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	// Malformed configuration never fails a calculation: the caller prices the
	// cart as if the coupon did not exist, the same way malformed automatic
	// discount rows are skipped.
	params, err := discount.DecodeParams(c.Kind, rawParams)
	if err != nil {
		s.Logger.Warn().Str("code", code).Err(err).Msg("skipping coupon with invalid params")
		return nil, fmt.Errorf("coupon %q: %w", code, pricing.ErrNotFound)
	}
	c.Params = params
	if err := unmarshalJSONB(rawTarget, &c.Target); err != nil {
		s.Logger.Warn().Str("code", code).Err(err).Msg("skipping coupon with invalid target")
		return nil, fmt.Errorf("coupon %q: %w", code, pricing.ErrNotFound)
	}
	if len(rawGift) > 0 && string(rawGift) != "null" {
		var gift discount.GiftParams
		if err := json.Unmarshal(rawGift, &gift); err != nil {
			s.Logger.Warn().Str("code", code).Err(err).Msg("skipping coupon with invalid gift")
			return nil, fmt.Errorf("coupon %q: %w", code, pricing.ErrNotFound)
		}
		c.Gift = &gift
	}
	return &c, nil
}
