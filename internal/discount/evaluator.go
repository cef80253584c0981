package discount

import (
	"sort"
	"time"
)

// Applied is the outcome of the automatic discount pass. Title names the first
// discount that contributed a nonzero amount.
type Applied struct {
	Amount int64
	Title  string
}

// SortByPriority orders discounts priority-descending, the contractual
// evaluation order. The sort is stable so equal priorities keep store order.
func SortByPriority(discounts []Discount) []Discount {
	sorted := make([]Discount, len(discounts))
	copy(sorted, discounts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	return sorted
}

// Evaluate runs every eligible automatic discount against the cart and
// accumulates their amounts. Free-gift discounts are resolved elsewhere and
// skipped here. Iteration halts after the first discount that applied with
// CanCombine unset.
func Evaluate(discounts []Discount, items []Item, subtotal int64, shopper Shopper, now time.Time) Applied {
	var applied Applied
	for _, d := range SortByPriority(discounts) {
		if d.Kind == KindFreeGift {
			continue
		}
		if !d.ActiveAt(now) {
			continue
		}
		if subtotal < d.MinOrderAmount {
			continue
		}
		if !d.CustomerTarget.Matches(shopper) {
			continue
		}
		if !d.Target.MatchesCart(items) {
			continue
		}
		amount := Amount(d, items, subtotal)
		if amount <= 0 {
			continue
		}
		applied.Amount += amount
		if applied.Title == "" {
			applied.Title = d.Title
		}
		if !d.CanCombine {
			break
		}
	}
	return applied
}
