package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/merchkit/pricing/internal/bundle"
	"github.com/merchkit/pricing/internal/coupon"
	"github.com/merchkit/pricing/internal/discount"
	"github.com/merchkit/pricing/internal/gift"
	"github.com/merchkit/pricing/internal/tier"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// ErrNotFound is the sentinel store implementations wrap when a referenced
// record does not exist. The engine degrades gracefully for products, coupons,
// and bundles; a missing shop is a hard failure.
var ErrNotFound = errors.New("not found")

// Addon is an optional per-unit add-on selected on a line item.
type Addon struct {
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// LineItem is one requested product in the cart, as submitted by the caller.
type LineItem struct {
	ProductID      uuid.UUID  `json:"productId" validate:"required"`
	VariantID      *uuid.UUID `json:"variantId,omitempty"`
	Qty            int32      `json:"qty" validate:"required,gte=1"`
	IsGift         bool       `json:"isGift,omitempty"`
	GiftDiscountID *uuid.UUID `json:"giftDiscountId,omitempty"`
	Addons         []Addon    `json:"addons,omitempty"`
	BundleID       *uuid.UUID `json:"bundleId,omitempty"`
	BundleName     string     `json:"bundleName,omitempty"`
}

// EnrichedItem is a cart line after catalog resolution and unit pricing.
// Gift lines always carry UnitPrice and Total of zero and never count toward
// the subtotal.
type EnrichedItem struct {
	ProductID      uuid.UUID  `json:"productId"`
	VariantID      *uuid.UUID `json:"variantId,omitempty"`
	Name           string     `json:"name"`
	SKU            string     `json:"sku,omitempty"`
	Images         []string   `json:"images,omitempty"`
	Qty            int32      `json:"qty"`
	BasePrice      Money      `json:"basePrice"`
	UnitPrice      Money      `json:"unitPrice"`
	AddonsTotal    Money      `json:"addonsTotal,omitempty"`
	Total          Money      `json:"total"`
	IsGift         bool       `json:"isGift,omitempty"`
	GiftDiscountID *uuid.UUID `json:"giftDiscountId,omitempty"`
	BundleID       *uuid.UUID `json:"bundleId,omitempty"`
	BundleName     string     `json:"bundleName,omitempty"`

	categoryID    *uuid.UUID
	collectionIDs []uuid.UUID
}

// Variant is a read-only sellable variation snapshot.
type Variant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	SKU       string
	Price     Money
	Inventory int32
}

// Product is the read-only catalog projection fetched once per calculation.
type Product struct {
	ID             uuid.UUID
	ShopID         uuid.UUID
	Name           string
	SKU            string
	Price          Money
	CompareAtPrice *Money
	Inventory      int32
	CategoryID     *uuid.UUID
	CollectionIDs  []uuid.UUID
	Images         []string
	Variants       []Variant
}

// Variant returns the variant with the given id, if it belongs to the product.
func (p Product) Variant(id uuid.UUID) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Shop carries the per-shop settings a calculation depends on.
type Shop struct {
	ID               uuid.UUID     `json:"id"`
	Currency         string        `json:"currency"`
	TaxRateBps       int32         `json:"taxRateBps"`
	PricesIncludeTax bool          `json:"pricesIncludeTax"`
	TierSettings     tier.Settings `json:"tierSettings"`
}

// Customer is the read-only shopper snapshot used for tier resolution and
// customer targeting.
type Customer struct {
	ID         uuid.UUID
	TotalSpent Money
	OrderCount int32
	Tier       string
}

// Input is the Calculate contract.
type Input struct {
	ShopID     uuid.UUID  `json:"shopId" validate:"required"`
	Items      []LineItem `json:"items" validate:"required,min=1,dive"`
	CouponCode string     `json:"couponCode,omitempty"`
	CustomerID *uuid.UUID `json:"customerId,omitempty"`
	TaxRateBps *int32     `json:"taxRateBps,omitempty" validate:"omitempty,gte=0,lte=10000"`
	Shipping   *Money     `json:"shipping,omitempty" validate:"omitempty,gte=0"`
}

// CartResult is the full pricing outcome consumed by checkout and previews.
type CartResult struct {
	Items                  []EnrichedItem `json:"items"`
	Subtotal               Money          `json:"subtotal"`
	CustomerDiscount       Money          `json:"customerDiscount"`
	AutomaticDiscount      Money          `json:"automaticDiscount"`
	AutomaticDiscountTitle string         `json:"automaticDiscountTitle,omitempty"`
	CouponDiscount         Money          `json:"couponDiscount"`
	Tax                    Money          `json:"tax"`
	Shipping               Money          `json:"shipping"`
	Total                  Money          `json:"total"`
	Currency               string         `json:"currency,omitempty"`
	CouponStatus           *coupon.Status `json:"couponStatus,omitempty"`
	PendingGifts           []gift.Pending `json:"pendingGifts,omitempty"`
}

// ShopStore loads shop settings.
type ShopStore interface {
	GetShop(ctx context.Context, id uuid.UUID) (Shop, error)
}

// CustomerStore loads the customer snapshot.
type CustomerStore interface {
	GetCustomer(ctx context.Context, shopID, id uuid.UUID) (Customer, error)
}

// ProductStore batch-loads product snapshots scoped to a shop. Unknown ids are
// simply absent from the result.
type ProductStore interface {
	GetProducts(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]Product, error)
}

// DiscountStore lists a shop's active automatic discounts, priority-descending.
type DiscountStore interface {
	ListActiveAutomatic(ctx context.Context, shopID uuid.UUID) ([]discount.Discount, error)
}

// CouponStore looks up one coupon by its unique code.
type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*coupon.Coupon, error)
}

// BundleStore batch-loads bundle definitions including constituents.
type BundleStore interface {
	GetBundles(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bundle.Bundle, error)
}
