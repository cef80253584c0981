package coupon

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/merchkit/pricing/internal/discount"
)

// evalContext carries everything one validation pass looks at.
type evalContext struct {
	coupon   *Coupon
	shopID   uuid.UUID
	items    []discount.Item
	subtotal int64
	shopper  discount.Shopper
	now      time.Time
}

// failure is the first validation check that rejected the coupon.
type failure struct {
	reason           string
	minOrderRequired int64
}

// check is one step of the validation chain. Checks run in declaration order
// and the first failure wins, keeping the rejection order an explicit,
// individually testable contract.
type check struct {
	name string
	run  func(evalContext) *failure
}

var checks = []check{
	{name: "exists", run: checkExists},
	{name: "window", run: checkWindow},
	{name: "min_order", run: checkMinOrder},
	{name: "target", run: checkTarget},
	{name: "customers", run: checkCustomers},
}

func checkExists(ctx evalContext) *failure {
	if ctx.coupon == nil || !ctx.coupon.Active || ctx.coupon.ShopID != ctx.shopID {
		return &failure{reason: "coupon code is not valid"}
	}
	return nil
}

func checkWindow(ctx evalContext) *failure {
	if ctx.coupon.StartsAt != nil && ctx.now.Before(*ctx.coupon.StartsAt) {
		return &failure{reason: "coupon is not active yet"}
	}
	if ctx.coupon.EndsAt != nil && ctx.now.After(*ctx.coupon.EndsAt) {
		return &failure{reason: "coupon has expired"}
	}
	return nil
}

func checkMinOrder(ctx evalContext) *failure {
	if ctx.subtotal >= ctx.coupon.MinOrder {
		return nil
	}
	shortfall := ctx.coupon.MinOrder - ctx.subtotal
	return &failure{
		reason:           fmt.Sprintf("minimum order of %d not met, add %d more to qualify", ctx.coupon.MinOrder, shortfall),
		minOrderRequired: ctx.coupon.MinOrder,
	}
}

func checkTarget(ctx evalContext) *failure {
	if !ctx.coupon.Target.MatchesCart(ctx.items) {
		return &failure{reason: "coupon does not apply to the items in this cart"}
	}
	return nil
}

func checkCustomers(ctx evalContext) *failure {
	if len(ctx.coupon.ApplicableCustomers) == 0 {
		return nil
	}
	if ctx.shopper.ID == nil {
		return &failure{reason: "coupon requires a signed-in customer"}
	}
	for _, id := range ctx.coupon.ApplicableCustomers {
		if id == *ctx.shopper.ID {
			return nil
		}
	}
	return &failure{reason: "coupon is not available for this customer"}
}

// Evaluate validates the coupon and, when valid, computes its discount and the
// registered-customer bonus. Invalidity is surfaced in Status, never as an
// error: business rejections are normal outcomes here.
func Evaluate(c *Coupon, shopID uuid.UUID, items []discount.Item, subtotal int64, shopper discount.Shopper, now time.Time) Result {
	ctx := evalContext{coupon: c, shopID: shopID, items: items, subtotal: subtotal, shopper: shopper, now: now}
	for _, ck := range checks {
		if f := ck.run(ctx); f != nil {
			return Result{Status: Status{Reason: f.reason, MinOrderRequired: f.minOrderRequired}}
		}
	}

	amount := discount.Amount(c.asDiscount(), items, subtotal)
	res := Result{Discount: amount, Status: Status{Valid: true}}
	if c.EnableCustomerBonus && c.CustomerBonusBps > 0 && shopper.ID != nil {
		remaining := subtotal - amount
		if remaining > 0 {
			res.CustomerBonus = remaining * int64(c.CustomerBonusBps) / 10000
		}
	}
	return res
}
