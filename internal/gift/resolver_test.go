package gift

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/pricing/internal/discount"
)

func giftDiscount(productID uuid.UUID, threshold int64, combinable bool, priority int32) discount.Discount {
	amount := threshold
	return discount.Discount{
		ID:    uuid.New(),
		Title: "free tote",
		Kind:  discount.KindFreeGift,
		Params: discount.Params{Gift: &discount.GiftParams{
			ProductID:       productID,
			Condition:       discount.GiftMinOrderAmount,
			ConditionAmount: &amount,
		}},
		CanCombine: combinable,
		Priority:   priority,
	}
}

func TestResolveAutomaticMinOrderCondition(t *testing.T) {
	toteID := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Name: "tote", Inventory: 10}}
	d := giftDiscount(toteID, 500, true, 1)

	res := ResolveAutomatic([]discount.Discount{d}, products, nil, 400, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts, "below threshold")

	res = ResolveAutomatic([]discount.Discount{d}, products, nil, 500, discount.Shopper{}, time.Now())
	require.Len(t, res.Gifts, 1)
	require.Equal(t, toteID, res.Gifts[0].ProductID)
	require.Nil(t, res.Gifts[0].VariantID)
}

func TestResolveAutomaticSpecificProductCondition(t *testing.T) {
	toteID := uuid.New()
	required := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Name: "tote", Inventory: 5}}
	d := discount.Discount{
		ID:   uuid.New(),
		Kind: discount.KindFreeGift,
		Params: discount.Params{Gift: &discount.GiftParams{
			ProductID:          toteID,
			Condition:          discount.GiftSpecificProduct,
			ConditionProductID: &required,
		}},
		CanCombine: true,
	}

	res := ResolveAutomatic([]discount.Discount{d}, products, nil, 1_000, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts)

	cart := []CartItem{{ProductID: required}}
	res = ResolveAutomatic([]discount.Discount{d}, products, cart, 1_000, discount.Shopper{}, time.Now())
	require.Len(t, res.Gifts, 1)

	// a gift line of the required product must not satisfy the condition
	cart = []CartItem{{ProductID: required, IsGift: true}}
	res = ResolveAutomatic([]discount.Discount{d}, products, cart, 1_000, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts)
}

func TestResolveAutomaticSkipsWhenProductAlreadyInCart(t *testing.T) {
	toteID := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Inventory: 5}}
	d := giftDiscount(toteID, 0, true, 1)
	cart := []CartItem{{ProductID: toteID}}
	res := ResolveAutomatic([]discount.Discount{d}, products, cart, 1_000, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts)
}

func TestResolveAutomaticSingleAvailableVariantAutoSelected(t *testing.T) {
	toteID := uuid.New()
	v := Variant{ID: uuid.New(), Name: "red", Inventory: 3}
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Variants: []Variant{
		{ID: uuid.New(), Name: "blue", Inventory: -1},
		v,
	}}}
	d := giftDiscount(toteID, 0, true, 1)
	res := ResolveAutomatic([]discount.Discount{d}, products, nil, 1_000, discount.Shopper{}, time.Now())
	require.Len(t, res.Gifts, 1)
	require.NotNil(t, res.Gifts[0].VariantID)
	require.Equal(t, v.ID, *res.Gifts[0].VariantID)
}

func TestResolveAutomaticAmbiguousVariantsFlagged(t *testing.T) {
	toteID := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Variants: []Variant{
		{ID: uuid.New(), Name: "red", Inventory: 3},
		{ID: uuid.New(), Name: "blue", Inventory: 2},
	}}}
	d := giftDiscount(toteID, 0, true, 1)
	res := ResolveAutomatic([]discount.Discount{d}, products, nil, 1_000, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts)
	require.Len(t, res.Pending, 1)
	require.Equal(t, PendingVariantSelection, res.Pending[0].Reason)
}

func TestResolveAutomaticOutOfStockFlagged(t *testing.T) {
	toteID := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Variants: []Variant{
		{ID: uuid.New(), Inventory: -1},
		{ID: uuid.New(), Inventory: -2},
	}}}
	d := giftDiscount(toteID, 0, true, 1)
	res := ResolveAutomatic([]discount.Discount{d}, products, nil, 1_000, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts)
	require.Len(t, res.Pending, 1)
	require.Equal(t, PendingOutOfStock, res.Pending[0].Reason)
}

func TestResolveAutomaticConfiguredVariantMustBelong(t *testing.T) {
	toteID := uuid.New()
	foreign := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Variants: []Variant{{ID: uuid.New(), Inventory: 1}}}}
	d := giftDiscount(toteID, 0, true, 1)
	d.Params.Gift.VariantID = &foreign
	res := ResolveAutomatic([]discount.Discount{d}, products, nil, 1_000, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts)
	require.Empty(t, res.Pending)
}

func TestResolveAutomaticNonCombinableStops(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	products := map[uuid.UUID]Product{
		first:  {ID: first, Inventory: 1},
		second: {ID: second, Inventory: 1},
	}
	blocking := giftDiscount(first, 0, false, 10)
	lower := giftDiscount(second, 0, true, 5)
	res := ResolveAutomatic([]discount.Discount{lower, blocking}, products, nil, 1_000, discount.Shopper{}, time.Now())
	require.Len(t, res.Gifts, 1)
	require.Equal(t, first, res.Gifts[0].ProductID)
}

func TestResolveAutomaticCustomerTarget(t *testing.T) {
	toteID := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Inventory: 1}}
	d := giftDiscount(toteID, 0, true, 1)
	d.CustomerTarget = discount.CustomerTarget{Scope: discount.CustomersRegistered}

	res := ResolveAutomatic([]discount.Discount{d}, products, nil, 1_000, discount.Shopper{}, time.Now())
	require.Empty(t, res.Gifts)

	id := uuid.New()
	res = ResolveAutomatic([]discount.Discount{d}, products, nil, 1_000, discount.Shopper{ID: &id}, time.Now())
	require.Len(t, res.Gifts, 1)
}

func TestResolveCouponGiftAutoPicksFirstInStockVariant(t *testing.T) {
	toteID := uuid.New()
	red := Variant{ID: uuid.New(), Name: "red", Inventory: 3}
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Variants: []Variant{
		red,
		{ID: uuid.New(), Name: "blue", Inventory: 2},
	}}}
	params := &discount.GiftParams{ProductID: toteID, Condition: discount.GiftMinOrderAmount}
	g, pending := ResolveCouponGift(params, "bundle gift", products, nil, 1_000)
	require.Nil(t, pending)
	require.NotNil(t, g)
	require.Equal(t, red.ID, *g.VariantID)
}

func TestResolveCouponGiftSkipsWhenAlreadyInCart(t *testing.T) {
	toteID := uuid.New()
	products := map[uuid.UUID]Product{toteID: {ID: toteID, Inventory: 1}}
	params := &discount.GiftParams{ProductID: toteID}
	cart := []CartItem{{ProductID: toteID}}
	g, pending := ResolveCouponGift(params, "bundle gift", products, cart, 1_000)
	require.Nil(t, g)
	require.Nil(t, pending)
}
