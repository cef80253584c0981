package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/merchkit/pricing/internal/bundle"
)

// GetBundles batch-loads active bundle definitions with their constituents.
// Unknown or inactive ids are absent from the result, which makes the engine
// fall back to regular pricing.
func (s *Store) GetBundles(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bundle.Bundle, error) {
	out := make(map[uuid.UUID]bundle.Bundle, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const bundleQ = `
SELECT id, name, price
FROM bundles
WHERE shop_id = $1 AND id = ANY($2) AND active`
	rows, err := s.DB.Query(ctx, bundleQ, shopID, ids)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b bundle.Bundle
		if err := rows.Scan(&b.ID, &b.Name, &b.Price); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		b.ShopID = shopID
		out[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	found := make([]uuid.UUID, 0, len(out))
	for id := range out {
		found = append(found, id)
	}
	const itemQ = `
SELECT bundle_id, product_id, qty
FROM bundle_items
WHERE bundle_id = ANY($1)`
	irows, err := s.DB.Query(ctx, itemQ, found)
	if err != nil {
		return nil, fmt.Errorf("list bundle items: %w", err)
	}
	defer irows.Close()
	for irows.Next() {
		var (
			bundleID uuid.UUID
			c        bundle.Constituent
		)
		if err := irows.Scan(&bundleID, &c.ProductID, &c.Qty); err != nil {
			return nil, fmt.Errorf("scan bundle item: %w", err)
		}
		b := out[bundleID]
		b.Products = append(b.Products, c)
		out[bundleID] = b
	}
	if err := irows.Err(); err != nil {
		return nil, fmt.Errorf("list bundle items: %w", err)
	}
	return out, nil
}
