package gift

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchkit/pricing/internal/discount"
)

// Product is the catalog snapshot gift resolution needs: identity plus
// inventory, with variants when the product has them.
type Product struct {
	ID        uuid.UUID
	Name      string
	Inventory int32
	Variants  []Variant
}

// Variant is one sellable variation of a gift product.
type Variant struct {
	ID        uuid.UUID
	Name      string
	Inventory int32
}

// CartItem is the minimal cart shape gift eligibility looks at.
type CartItem struct {
	ProductID uuid.UUID
	IsGift    bool
}

// Gift is a zero-priced line item to append to the cart.
type Gift struct {
	DiscountID  uuid.UUID
	Title       string
	ProductID   uuid.UUID
	ProductName string
	VariantID   *uuid.UUID
	VariantName string
}

// PendingReason explains why a gift could not be attached automatically.
type PendingReason string

const (
	// PendingVariantSelection means the shopper must pick a variant.
	PendingVariantSelection PendingReason = "requires_variant_selection"
	// PendingOutOfStock means every candidate variant is unavailable.
	PendingOutOfStock PendingReason = "out_of_stock"
)

// Pending surfaces an unattached gift to the caller as data, not an error.
type Pending struct {
	DiscountID uuid.UUID     `json:"discountId"`
	Title      string        `json:"title"`
	ProductID  uuid.UUID     `json:"productId"`
	Reason     PendingReason `json:"reason"`
}

// Resolution aggregates the outcome of a gift pass.
type Resolution struct {
	Gifts   []Gift
	Pending []Pending
}

// ResolveAutomatic walks active FREE_GIFT discounts in priority order and
// attaches every eligible gift. Ambiguous variants are surfaced as pending
// selections rather than guessed. Resolution halts after the first attached
// gift whose discount cannot combine.
func ResolveAutomatic(discounts []discount.Discount, products map[uuid.UUID]Product, cart []CartItem, subtotal int64, shopper discount.Shopper, now time.Time) Resolution {
	var res Resolution
	for _, d := range discount.SortByPriority(discounts) {
		if d.Kind != discount.KindFreeGift || d.Params.Gift == nil {
			continue
		}
		if !d.ActiveAt(now) {
			continue
		}
		if !d.CustomerTarget.Matches(shopper) {
			continue
		}
		if !conditionMet(*d.Params.Gift, d.MinOrderAmount, cart, subtotal) {
			continue
		}
		if productInCart(cart, d.Params.Gift.ProductID) {
			continue
		}
		product, ok := products[d.Params.Gift.ProductID]
		if !ok {
			continue
		}
		g, pending := attach(*d.Params.Gift, product, false)
		if pending != nil {
			res.Pending = append(res.Pending, Pending{
				DiscountID: d.ID,
				Title:      d.Title,
				ProductID:  product.ID,
				Reason:     *pending,
			})
			continue
		}
		if g == nil {
			continue
		}
		g.DiscountID = d.ID
		g.Title = d.Title
		res.Gifts = append(res.Gifts, *g)
		if !d.CanCombine {
			break
		}
	}
	return res
}

// ResolveCouponGift attaches a coupon's gift after the automatic pass. Unlike
// the automatic path, an ambiguous variant auto-selects the first in-stock
// candidate instead of asking the shopper.
func ResolveCouponGift(params *discount.GiftParams, title string, products map[uuid.UUID]Product, cart []CartItem, subtotal int64) (*Gift, *Pending) {
	if params == nil {
		return nil, nil
	}
	if !conditionMet(*params, 0, cart, subtotal) {
		return nil, nil
	}
	if productInCart(cart, params.ProductID) {
		return nil, nil
	}
	product, ok := products[params.ProductID]
	if !ok {
		return nil, nil
	}
	g, pending := attach(*params, product, true)
	if pending != nil {
		return nil, &Pending{Title: title, ProductID: product.ID, Reason: *pending}
	}
	if g != nil {
		g.Title = title
	}
	return g, nil
}

func conditionMet(p discount.GiftParams, minOrderAmount int64, cart []CartItem, subtotal int64) bool {
	switch p.Condition {
	case discount.GiftMinOrderAmount, "":
		threshold := minOrderAmount
		if p.ConditionAmount != nil {
			threshold = *p.ConditionAmount
		}
		return subtotal >= threshold
	case discount.GiftSpecificProduct:
		if p.ConditionProductID == nil {
			return false
		}
		return productInCart(cart, *p.ConditionProductID)
	default:
		return false
	}
}

func productInCart(cart []CartItem, productID uuid.UUID) bool {
	for _, it := range cart {
		if !it.IsGift && it.ProductID == productID {
			return true
		}
	}
	return false
}

// attach resolves which variant (if any) carries the gift. autoPick controls
// the coupon-path behaviour of selecting the first available variant when the
// shopper would otherwise have to choose.
func attach(p discount.GiftParams, product Product, autoPick bool) (*Gift, *PendingReason) {
	if p.VariantID != nil {
		for _, v := range product.Variants {
			if v.ID == *p.VariantID {
				if v.Inventory < 0 {
					return nil, nil
				}
				id := v.ID
				return &Gift{ProductID: product.ID, ProductName: product.Name, VariantID: &id, VariantName: v.Name}, nil
			}
		}
		// configured variant does not belong to the gift product
		return nil, nil
	}
	if len(product.Variants) == 0 {
		if product.Inventory < 0 {
			return nil, nil
		}
		return &Gift{ProductID: product.ID, ProductName: product.Name}, nil
	}
	available := make([]Variant, 0, len(product.Variants))
	for _, v := range product.Variants {
		if v.Inventory >= 0 {
			available = append(available, v)
		}
	}
	switch {
	case len(available) == 0:
		reason := PendingOutOfStock
		return nil, &reason
	case len(available) == 1 || autoPick:
		v := available[0]
		id := v.ID
		return &Gift{ProductID: product.ID, ProductName: product.Name, VariantID: &id, VariantName: v.Name}, nil
	default:
		reason := PendingVariantSelection
		return nil, &reason
	}
}
