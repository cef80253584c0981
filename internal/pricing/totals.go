package pricing

// Summary aggregates the computed totals of one calculation.
type Summary struct {
	Tax   Money
	Total Money
}

// ComputeTotals folds discounts, tax, and shipping into the grand total. When
// the shop's catalog prices already include tax no tax line is added. The
// total is never negative regardless of discount stacking.
func ComputeTotals(subtotal, discounts Money, taxBps int32, shipping Money, taxInclusive bool) Summary {
	if shipping < 0 {
		shipping = 0
	}
	taxable := subtotal - discounts
	if taxable < 0 {
		taxable = 0
	}
	if taxInclusive {
		return Summary{Tax: 0, Total: taxable + shipping}
	}
	tax := Money(0)
	if taxBps > 0 {
		tax = taxable * Money(taxBps) / 10000
	}
	return Summary{Tax: tax, Total: taxable + tax + shipping}
}
