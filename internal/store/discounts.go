package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/merchkit/pricing/internal/discount"
)

// ListActiveAutomatic loads a shop's enabled automatic discounts ordered by
// priority descending. Rows with malformed kind-specific params are logged and
// skipped so one bad record never blocks the whole cart.
func (s *Store) ListActiveAutomatic(ctx context.Context, shopID uuid.UUID) ([]discount.Discount, error) {
	const q = `
SELECT id, title, kind, params, starts_at, ends_at, min_order_amount, max_discount,
       target, customer_target, can_combine, priority
FROM discounts
WHERE shop_id = $1 AND active AND is_automatic
ORDER BY priority DESC, created_at`
	rows, err := s.DB.Query(ctx, q, shopID)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	var out []discount.Discount
	for rows.Next() {
		var (
			d            discount.Discount
			rawParams    json.RawMessage
			rawTarget    []byte
			rawCustomers []byte
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Kind, &rawParams, &d.StartsAt, &d.EndsAt,
			&d.MinOrderAmount, &d.MaxDiscount, &rawTarget, &rawCustomers, &d.CanCombine, &d.Priority); err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}
		params, err := discount.DecodeParams(d.Kind, rawParams)
		if err != nil {
			s.Logger.Warn().Err(err).Str("discount_id", d.ID.String()).Msg("skipping misconfigured discount")
			continue
		}
		d.Params = params
		if len(rawTarget) > 0 {
			if err := unmarshalJSONB(rawTarget, &d.Target); err != nil {
				s.Logger.Warn().Err(err).Str("discount_id", d.ID.String()).Msg("skipping discount with invalid target")
				continue
			}
		}
		if len(rawCustomers) > 0 {
			if err := unmarshalJSONB(rawCustomers, &d.CustomerTarget); err != nil {
				s.Logger.Warn().Err(err).Str("discount_id", d.ID.String()).Msg("skipping discount with invalid customer target")
				continue
			}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	return out, nil
}

func unmarshalJSONB(raw []byte, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
