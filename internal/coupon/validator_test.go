package coupon

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/pricing/internal/discount"
)

func validCoupon(shopID uuid.UUID) *Coupon {
	return &Coupon{
		ID:     uuid.New(),
		ShopID: shopID,
		Code:   "SAVE10",
		Title:  "save ten percent",
		Active: true,
		Kind:   discount.KindPercentage,
		Params: discount.Params{Percent: &discount.PercentParams{Bps: 1000}},
	}
}

func TestEvaluateUnknownCoupon(t *testing.T) {
	res := Evaluate(nil, uuid.New(), nil, 100_000, discount.Shopper{}, time.Now())
	require.False(t, res.Status.Valid)
	require.Zero(t, res.Discount)
	require.Contains(t, res.Status.Reason, "not valid")
}

func TestEvaluateWrongShop(t *testing.T) {
	c := validCoupon(uuid.New())
	res := Evaluate(c, uuid.New(), nil, 100_000, discount.Shopper{}, time.Now())
	require.False(t, res.Status.Valid)
}

func TestEvaluateInactiveCoupon(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	c.Active = false
	res := Evaluate(c, shop, nil, 100_000, discount.Shopper{}, time.Now())
	require.False(t, res.Status.Valid)
}

func TestEvaluateExpiredCoupon(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	ended := time.Now().Add(-time.Hour)
	c.EndsAt = &ended
	res := Evaluate(c, shop, nil, 100_000, discount.Shopper{}, time.Now())
	require.False(t, res.Status.Valid)
	require.Contains(t, res.Status.Reason, "expired")
}

func TestEvaluateMinOrderShortfall(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	c.MinOrder = 200
	res := Evaluate(c, shop, nil, 150, discount.Shopper{}, time.Now())
	require.False(t, res.Status.Valid)
	require.Zero(t, res.Discount)
	require.Equal(t, int64(200), res.Status.MinOrderRequired)
	require.Contains(t, res.Status.Reason, "200")
	require.Contains(t, res.Status.Reason, "50")
}

func TestEvaluateTargetRestriction(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	wanted := uuid.New()
	c.Target = discount.Target{Scope: discount.TargetProducts, ProductIDs: []uuid.UUID{wanted}}
	items := []discount.Item{{ProductID: uuid.New(), Qty: 1, UnitPrice: 100_000}}
	res := Evaluate(c, shop, items, 100_000, discount.Shopper{}, time.Now())
	require.False(t, res.Status.Valid)
	require.True(t, strings.Contains(res.Status.Reason, "does not apply"))
}

func TestEvaluateCustomerRestrictionRejectsGuests(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	c.ApplicableCustomers = []uuid.UUID{uuid.New()}
	res := Evaluate(c, shop, nil, 100_000, discount.Shopper{}, time.Now())
	require.False(t, res.Status.Valid)
	require.Contains(t, res.Status.Reason, "signed-in")
}

func TestEvaluateCustomerRestrictionMembership(t *testing.T) {
	shop := uuid.New()
	member := uuid.New()
	c := validCoupon(shop)
	c.ApplicableCustomers = []uuid.UUID{member}

	stranger := uuid.New()
	res := Evaluate(c, shop, nil, 100_000, discount.Shopper{ID: &stranger}, time.Now())
	require.False(t, res.Status.Valid)

	res = Evaluate(c, shop, nil, 100_000, discount.Shopper{ID: &member}, time.Now())
	require.True(t, res.Status.Valid)
	require.Equal(t, int64(10_000), res.Discount)
}

func TestEvaluateValidationOrderMinOrderBeforeCustomers(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	c.MinOrder = 500_000
	c.ApplicableCustomers = []uuid.UUID{uuid.New()}
	res := Evaluate(c, shop, nil, 100_000, discount.Shopper{}, time.Now())
	require.Contains(t, res.Status.Reason, "minimum order", "min order must be checked before customer restrictions")
}

func TestEvaluatePayAmountCoupon(t *testing.T) {
	shop := uuid.New()
	pay := int64(55)
	c := validCoupon(shop)
	c.Kind = discount.KindBuyXPayY
	c.Params = discount.Params{BuyXPayY: &discount.BuyXPayYParams{BuyQty: 2, PayAmount: &pay}}
	items := []discount.Item{{ProductID: uuid.New(), Qty: 2, UnitPrice: 40}}
	res := Evaluate(c, shop, items, 80, discount.Shopper{}, time.Now())
	require.True(t, res.Status.Valid)
	require.Equal(t, int64(25), res.Discount)
}

func TestEvaluateRegisteredCustomerBonus(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	c.EnableCustomerBonus = true
	c.CustomerBonusBps = 500

	res := Evaluate(c, shop, nil, 100_000, discount.Shopper{}, time.Now())
	require.True(t, res.Status.Valid)
	require.Zero(t, res.CustomerBonus, "guests earn no bonus")

	id := uuid.New()
	res = Evaluate(c, shop, nil, 100_000, discount.Shopper{ID: &id}, time.Now())
	require.Equal(t, int64(10_000), res.Discount)
	// 5% of (100000 - 10000).
	require.Equal(t, int64(4_500), res.CustomerBonus)
}

func TestEvaluateMaxDiscountCap(t *testing.T) {
	shop := uuid.New()
	c := validCoupon(shop)
	cap := int64(2_000)
	c.MaxDiscount = &cap
	res := Evaluate(c, shop, nil, 100_000, discount.Shopper{}, time.Now())
	require.Equal(t, cap, res.Discount)
}
