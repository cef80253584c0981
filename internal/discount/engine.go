package discount

import "sort"

// Amount computes the discount value for one discount against the cart. Gift
// lines never participate. Malformed or missing params contribute zero, so a
// misconfigured discount cannot abort evaluation of the others. The configured
// max-discount cap is applied and the result is never negative.
func Amount(d Discount, items []Item, subtotal int64) int64 {
	var amount int64
	switch d.Kind {
	case KindPercentage:
		if p := d.Params.Percent; p != nil && p.Bps > 0 {
			amount = subtotal * int64(p.Bps) / 10000
		}
	case KindFixed:
		if p := d.Params.Fixed; p != nil {
			amount = p.Amount
		}
	case KindBuyXGetY:
		amount = buyXGetYAmount(d.Params.BuyXGetY, items)
	case KindBuyXPayY:
		amount = buyXPayYAmount(d.Params.BuyXPayY, items)
	case KindNthItem:
		amount = nthItemAmount(d.Params.NthItem, items)
	case KindVolume:
		amount = volumeAmount(d.Params.Volume, items, subtotal)
	default:
		return 0
	}
	if d.MaxDiscount != nil && amount > *d.MaxDiscount {
		amount = *d.MaxDiscount
	}
	if amount < 0 {
		return 0
	}
	return amount
}

func buyXGetYAmount(p *BuyXGetYParams, items []Item) int64 {
	if p == nil || p.BuyQty <= 0 || p.GetQty <= 0 {
		return 0
	}
	var amount int64
	for _, it := range items {
		if it.IsGift || it.Qty <= 0 {
			continue
		}
		reps := it.Qty / p.BuyQty
		if reps == 0 {
			continue
		}
		free := reps * p.GetQty
		if free > it.Qty {
			free = it.Qty
		}
		amount += int64(free) * it.UnitPrice * int64(p.DiscountBps) / 10000
	}
	return amount
}

// buyXPayYAmount supports two modes. With PayAmount, every full BuyQty group
// across the whole cart is charged the flat amount while remainder units stay
// at full price. With PayQty, each line grants BuyQty-PayQty free units per
// full group, never freeing units reserved as paid.
func buyXPayYAmount(p *BuyXPayYParams, items []Item) int64 {
	if p == nil || p.BuyQty <= 0 {
		return 0
	}
	if p.PayAmount != nil {
		prices := flattenUnitPrices(items)
		total := int64(len(prices))
		groups := total / int64(p.BuyQty)
		if groups == 0 {
			return 0
		}
		var naive int64
		for _, price := range prices {
			naive += price
		}
		charged := groups * *p.PayAmount
		for _, price := range prices[groups*int64(p.BuyQty):] {
			charged += price
		}
		return naive - charged
	}
	if p.PayQty == nil || *p.PayQty <= 0 || *p.PayQty >= p.BuyQty {
		return 0
	}
	var amount int64
	for _, it := range items {
		if it.IsGift || it.Qty <= 0 {
			continue
		}
		groups := it.Qty / p.BuyQty
		if groups == 0 {
			continue
		}
		free := groups * (p.BuyQty - *p.PayQty)
		if cap := it.Qty - groups**p.PayQty; free > cap {
			free = cap
		}
		if free > 0 {
			amount += int64(free) * it.UnitPrice
		}
	}
	return amount
}

func nthItemAmount(p *NthItemParams, items []Item) int64 {
	if p == nil || p.Nth <= 0 {
		return 0
	}
	var amount int64
	position := int32(0)
	for _, it := range items {
		if it.IsGift || it.Qty <= 0 {
			continue
		}
		for unit := int32(0); unit < it.Qty; unit++ {
			position++
			if position%p.Nth == 0 {
				amount += it.UnitPrice * int64(p.DiscountBps) / 10000
			}
		}
	}
	return amount
}

func volumeAmount(p *VolumeParams, items []Item, subtotal int64) int64 {
	if p == nil || len(p.Rules) == 0 {
		return 0
	}
	var totalQty int32
	for _, it := range items {
		if it.IsGift || it.Qty <= 0 {
			continue
		}
		totalQty += it.Qty
	}
	rules := make([]VolumeRule, len(p.Rules))
	copy(rules, p.Rules)
	sort.Slice(rules, func(i, j int) bool { return rules[i].MinQty > rules[j].MinQty })
	for _, r := range rules {
		if totalQty >= r.MinQty {
			return subtotal * int64(r.DiscountBps) / 10000
		}
	}
	return 0
}

// flattenUnitPrices expands non-gift lines into one price per unit preserving
// item order, the shape nth-item and pay-amount grouping operate on.
func flattenUnitPrices(items []Item) []int64 {
	var prices []int64
	for _, it := range items {
		if it.IsGift || it.Qty <= 0 {
			continue
		}
		for unit := int32(0); unit < it.Qty; unit++ {
			prices = append(prices, it.UnitPrice)
		}
	}
	return prices
}
