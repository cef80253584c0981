package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/merchkit/pricing/internal/pricing"
)

// GetProducts batch-loads product snapshots with their variants. IDs that do
// not exist in the shop are simply absent from the result map.
func (s *Store) GetProducts(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]pricing.Product, error) {
	out := make(map[uuid.UUID]pricing.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const productQ = `
SELECT id, name, COALESCE(sku, ''), price, compare_at_price, inventory, category_id, collection_ids, images
FROM products
WHERE shop_id = $1 AND id = ANY($2)`
	rows, err := s.DB.Query(ctx, productQ, shopID, ids)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p pricing.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.CompareAtPrice, &p.Inventory, &p.CategoryID, &p.CollectionIDs, &p.Images); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.ShopID = shopID
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	const variantQ = `
SELECT id, product_id, name, COALESCE(sku, ''), price, inventory
FROM product_variants
WHERE product_id = ANY($1)
ORDER BY position, id`
	found := make([]uuid.UUID, 0, len(out))
	for id := range out {
		found = append(found, id)
	}
	if len(found) == 0 {
		return out, nil
	}
	vrows, err := s.DB.Query(ctx, variantQ, found)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer vrows.Close()
	for vrows.Next() {
		var v pricing.Variant
		if err := vrows.Scan(&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.Price, &v.Inventory); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		p := out[v.ProductID]
		p.Variants = append(p.Variants, v)
		out[v.ProductID] = p
	}
	if err := vrows.Err(); err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	return out, nil
}
