package discount

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the arithmetic used by a discount or coupon.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
	KindBuyXGetY   Kind = "buy_x_get_y"
	KindBuyXPayY   Kind = "buy_x_pay_y"
	KindNthItem    Kind = "nth_item_discount"
	KindVolume     Kind = "volume_discount"
	KindFreeGift   Kind = "free_gift"
)

// Discount is a shop-configured automatic discount. The same shape carries the
// arithmetic for coupons. Amounts are minor units; rates are basis points.
type Discount struct {
	ID             uuid.UUID
	Title          string
	Kind           Kind
	Params         Params
	StartsAt       *time.Time
	EndsAt         *time.Time
	MinOrderAmount int64
	MaxDiscount    *int64
	Target         Target
	CustomerTarget CustomerTarget
	CanCombine     bool
	Priority       int32
}

// ActiveAt reports whether now falls inside the discount's date window.
func (d Discount) ActiveAt(now time.Time) bool {
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return false
	}
	return true
}

// Item is the line shape discount evaluation operates on. UnitPrice is the
// per-unit price after the customer tier discount.
type Item struct {
	ProductID     uuid.UUID
	CategoryID    *uuid.UUID
	CollectionIDs []uuid.UUID
	Qty           int32
	UnitPrice     int64
	IsGift        bool
}

// Subtotal is the line total before cart-level discounts.
func (it Item) Subtotal() int64 {
	if it.Qty <= 0 || it.UnitPrice <= 0 {
		return 0
	}
	return int64(it.Qty) * it.UnitPrice
}

// Shopper is the customer context used for customer targeting. A nil ID means
// the cart belongs to an unauthenticated visitor.
type Shopper struct {
	ID   *uuid.UUID
	Tier string
}
