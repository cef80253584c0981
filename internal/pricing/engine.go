package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/merchkit/pricing/internal/bundle"
	"github.com/merchkit/pricing/internal/coupon"
	"github.com/merchkit/pricing/internal/discount"
	"github.com/merchkit/pricing/internal/gift"
	"github.com/merchkit/pricing/internal/tier"
)

// Engine composes tier resolution, bundle allocation, gift resolution, and
// discount evaluation into one cart calculation. A calculation reads external
// state once up front and is a pure function of those snapshots afterwards, so
// concurrent calculations need no coordination.
type Engine struct {
	Shops     ShopStore
	Customers CustomerStore
	Products  ProductStore
	Discounts DiscountStore
	Coupons   CouponStore
	Bundles   BundleStore
	Logger    zerolog.Logger
	Now       func() time.Time
}

func (e *Engine) now() time.Time {
	if e != nil && e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// cartContext holds everything the compute phase operates on.
type cartContext struct {
	shop      Shop
	customer  *Customer
	discounts []discount.Discount
	cpn       *coupon.Coupon
	bundles   map[uuid.UUID]bundle.Bundle
	products  map[uuid.UUID]Product
}

// Calculate prices the cart. Store I/O failures are the only hard errors;
// missing products drop their lines, missing bundles fall back to regular
// pricing, and coupon rejections surface in CouponStatus.
func (e *Engine) Calculate(ctx context.Context, in Input) (CartResult, error) {
	if e == nil || e.Shops == nil || e.Products == nil {
		return CartResult{}, errors.New("pricing engine not configured")
	}
	now := e.now()

	cc, err := e.loadContext(ctx, in)
	if err != nil {
		return CartResult{}, err
	}

	shopper := discount.Shopper{ID: in.CustomerID}
	// tier pricing needs a customer record; guests and unknown ids pay catalog
	// prices
	var tierCustomer *tier.Customer
	if cc.customer != nil {
		shopper.Tier = cc.customer.Tier
		tierCustomer = &tier.Customer{TotalSpent: cc.customer.TotalSpent, OrderCount: cc.customer.OrderCount}
	}

	enriched := make([]*EnrichedItem, len(in.Items))
	var tierTotal Money

	bundleGroups := map[uuid.UUID][]int{}
	for i, item := range in.Items {
		if item.Qty <= 0 {
			continue
		}
		if item.BundleID != nil {
			if _, ok := cc.bundles[*item.BundleID]; ok {
				bundleGroups[*item.BundleID] = append(bundleGroups[*item.BundleID], i)
				continue
			}
			// unknown bundle: price its members as ordinary lines
			e.Logger.Warn().Str("bundle_id", item.BundleID.String()).Msg("bundle not found, falling back to regular pricing")
		}
		enriched[i], tierTotal = e.priceRegular(cc, item, tierCustomer, tierTotal)
	}
	for bundleID, indexes := range bundleGroups {
		tierTotal = e.priceBundle(cc, in.Items, enriched, cc.bundles[bundleID], indexes, tierCustomer, tierTotal)
	}

	var subtotal Money
	items := make([]EnrichedItem, 0, len(in.Items))
	for _, it := range enriched {
		if it == nil {
			continue
		}
		items = append(items, *it)
		if !it.IsGift {
			subtotal += it.Total
		}
	}

	giftProducts := giftCatalog(cc.products)
	giftRes := gift.ResolveAutomatic(cc.discounts, giftProducts, giftCartShapes(items), subtotal, shopper, now)
	for _, g := range giftRes.Gifts {
		items = append(items, giftLine(g))
	}
	pending := giftRes.Pending

	auto := discount.Evaluate(cc.discounts, discountItems(items), subtotal, shopper, now)

	var (
		couponDiscount Money
		couponBonus    Money
		couponStatus   *coupon.Status
	)
	if in.CouponCode != "" {
		res := coupon.Evaluate(cc.cpn, in.ShopID, discountItems(items), subtotal, shopper, now)
		couponDiscount = res.Discount
		couponBonus = res.CustomerBonus
		couponStatus = &res.Status
		if res.Status.Valid && cc.cpn.Gift != nil {
			g, p := gift.ResolveCouponGift(cc.cpn.Gift, cc.cpn.Title, giftProducts, giftCartShapes(items), subtotal)
			if g != nil {
				items = append(items, giftLine(*g))
			}
			if p != nil {
				pending = append(pending, *p)
			}
		}
	}

	taxBps := cc.shop.TaxRateBps
	if in.TaxRateBps != nil {
		taxBps = *in.TaxRateBps
	}
	var shipping Money
	if in.Shipping != nil {
		shipping = *in.Shipping
	}
	summary := ComputeTotals(subtotal, auto.Amount+couponDiscount+couponBonus, taxBps, shipping, cc.shop.PricesIncludeTax)

	return CartResult{
		Items:                  items,
		Subtotal:               subtotal,
		CustomerDiscount:       tierTotal + couponBonus,
		AutomaticDiscount:      auto.Amount,
		AutomaticDiscountTitle: auto.Title,
		CouponDiscount:         couponDiscount,
		Tax:                    summary.Tax,
		Shipping:               shipping,
		Total:                  summary.Total,
		Currency:               cc.shop.Currency,
		CouponStatus:           couponStatus,
		PendingGifts:           pending,
	}, nil
}

// loadContext performs the read phase: independent lookups run concurrently,
// then one product batch covers cart lines, gift products, and the coupon's
// gift. The compute phase never touches a store afterwards.
func (e *Engine) loadContext(ctx context.Context, in Input) (cartContext, error) {
	cc := cartContext{bundles: map[uuid.UUID]bundle.Bundle{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		shop, err := e.Shops.GetShop(gctx, in.ShopID)
		if err != nil {
			return fmt.Errorf("load shop: %w", err)
		}
		cc.shop = shop
		return nil
	})
	if in.CustomerID != nil && e.Customers != nil {
		g.Go(func() error {
			customer, err := e.Customers.GetCustomer(gctx, in.ShopID, *in.CustomerID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					e.Logger.Warn().Str("customer_id", in.CustomerID.String()).Msg("customer not found, pricing as guest")
					return nil
				}
				return fmt.Errorf("load customer: %w", err)
			}
			cc.customer = &customer
			return nil
		})
	}
	if e.Discounts != nil {
		g.Go(func() error {
			discounts, err := e.Discounts.ListActiveAutomatic(gctx, in.ShopID)
			if err != nil {
				return fmt.Errorf("load discounts: %w", err)
			}
			cc.discounts = discounts
			return nil
		})
	}
	if in.CouponCode != "" && e.Coupons != nil {
		g.Go(func() error {
			cpn, err := e.Coupons.GetByCode(gctx, in.CouponCode)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return nil
				}
				// misconfigured coupons price as if the code did not match
				if errors.Is(err, discount.ErrInvalidParams) {
					e.Logger.Warn().Str("code", in.CouponCode).Err(err).Msg("ignoring misconfigured coupon")
					return nil
				}
				return fmt.Errorf("load coupon: %w", err)
			}
			cc.cpn = cpn
			return nil
		})
	}
	if ids := bundleIDs(in.Items); len(ids) > 0 && e.Bundles != nil {
		g.Go(func() error {
			bundles, err := e.Bundles.GetBundles(gctx, in.ShopID, ids)
			if err != nil {
				return fmt.Errorf("load bundles: %w", err)
			}
			cc.bundles = bundles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cartContext{}, err
	}

	products, err := e.Products.GetProducts(ctx, in.ShopID, productIDs(in, cc))
	if err != nil {
		return cartContext{}, fmt.Errorf("load products: %w", err)
	}
	cc.products = products
	return cc, nil
}

// priceRegular enriches one non-bundle line. Missing products or variants drop
// the line rather than failing the calculation.
func (e *Engine) priceRegular(cc cartContext, item LineItem, tc *tier.Customer, tierTotal Money) (*EnrichedItem, Money) {
	product, ok := cc.products[item.ProductID]
	if !ok {
		e.Logger.Warn().Str("product_id", item.ProductID.String()).Msg("product not found, dropping line item")
		return nil, tierTotal
	}
	out := &EnrichedItem{
		ProductID:      product.ID,
		Name:           product.Name,
		SKU:            product.SKU,
		Images:         product.Images,
		Qty:            item.Qty,
		IsGift:         item.IsGift,
		GiftDiscountID: item.GiftDiscountID,
		categoryID:     product.CategoryID,
		collectionIDs:  product.CollectionIDs,
	}
	base := product.Price
	if item.VariantID != nil {
		v, ok := product.Variant(*item.VariantID)
		if !ok {
			e.Logger.Warn().Str("variant_id", item.VariantID.String()).Msg("variant not found, dropping line item")
			return nil, tierTotal
		}
		base = v.Price
		id := v.ID
		out.VariantID = &id
		if v.SKU != "" {
			out.SKU = v.SKU
		}
	}
	out.BasePrice = base
	if item.IsGift {
		return out, tierTotal
	}
	var off Money
	if tc != nil {
		off = tier.Resolve(cc.shop.TierSettings, *tc, base)
	}
	out.UnitPrice = base - off
	out.AddonsTotal = addonsTotal(item)
	out.Total = out.UnitPrice*Money(item.Qty) + out.AddonsTotal
	return out, tierTotal + off*Money(item.Qty)
}

// priceBundle prices one bundle group: the fixed bundle price replaces
// standalone pricing, the customer tier applies to the aggregate, and the
// resulting discount spreads proportionally across the member lines.
func (e *Engine) priceBundle(cc cartContext, items []LineItem, enriched []*EnrichedItem, def bundle.Bundle, indexes []int, tc *tier.Customer, tierTotal Money) Money {
	members := make([]bundle.Item, 0, len(indexes))
	kept := make([]int, 0, len(indexes))
	for _, idx := range indexes {
		item := items[idx]
		product, ok := cc.products[item.ProductID]
		if !ok {
			e.Logger.Warn().Str("product_id", item.ProductID.String()).Msg("bundle product not found, dropping line item")
			continue
		}
		base := product.Price
		if item.VariantID != nil {
			if v, ok := product.Variant(*item.VariantID); ok {
				base = v.Price
			}
		}
		members = append(members, bundle.Item{ProductID: item.ProductID, Qty: item.Qty, UnitPrice: base})
		kept = append(kept, idx)
	}
	if len(members) == 0 {
		return tierTotal
	}

	qty := bundle.Quantity(def, members)
	var tierOff Money
	if tc != nil {
		tierOff = tier.Resolve(cc.shop.TierSettings, *tc, def.Price*Money(qty))
	}
	alloc := bundle.Allocate(def, members, tierOff)

	bundleID := def.ID
	for j, idx := range kept {
		item := items[idx]
		name := item.BundleName
		if name == "" {
			name = def.Name
		}
		product := cc.products[item.ProductID]
		out := &EnrichedItem{
			ProductID:     product.ID,
			Name:          product.Name,
			SKU:           product.SKU,
			Images:        product.Images,
			Qty:           item.Qty,
			BasePrice:     members[j].UnitPrice,
			BundleID:      &bundleID,
			BundleName:    name,
			categoryID:    product.CategoryID,
			collectionIDs: product.CollectionIDs,
		}
		if item.VariantID != nil {
			if v, ok := product.Variant(*item.VariantID); ok {
				id := v.ID
				out.VariantID = &id
			}
		}
		out.UnitPrice = members[j].UnitPrice - alloc.Items[j].PerUnitOff
		if out.UnitPrice < 0 {
			out.UnitPrice = 0
		}
		out.AddonsTotal = addonsTotal(item)
		out.Total = out.UnitPrice*Money(item.Qty) + out.AddonsTotal
		enriched[idx] = out
	}
	return tierTotal + tierOff
}

func addonsTotal(item LineItem) Money {
	var perUnit Money
	for _, a := range item.Addons {
		if a.Price > 0 {
			perUnit += a.Price
		}
	}
	return perUnit * Money(item.Qty)
}

func giftLine(g gift.Gift) EnrichedItem {
	name := g.ProductName
	if g.VariantName != "" {
		name = name + " - " + g.VariantName
	}
	out := EnrichedItem{
		ProductID: g.ProductID,
		VariantID: g.VariantID,
		Name:      name,
		Qty:       1,
		IsGift:    true,
	}
	if g.DiscountID != uuid.Nil {
		id := g.DiscountID
		out.GiftDiscountID = &id
	}
	return out
}

func discountItems(items []EnrichedItem) []discount.Item {
	out := make([]discount.Item, 0, len(items))
	for _, it := range items {
		out = append(out, discount.Item{
			ProductID:     it.ProductID,
			CategoryID:    it.categoryID,
			CollectionIDs: it.collectionIDs,
			Qty:           it.Qty,
			UnitPrice:     it.UnitPrice,
			IsGift:        it.IsGift,
		})
	}
	return out
}

func giftCartShapes(items []EnrichedItem) []gift.CartItem {
	out := make([]gift.CartItem, 0, len(items))
	for _, it := range items {
		out = append(out, gift.CartItem{ProductID: it.ProductID, IsGift: it.IsGift})
	}
	return out
}

func giftCatalog(products map[uuid.UUID]Product) map[uuid.UUID]gift.Product {
	out := make(map[uuid.UUID]gift.Product, len(products))
	for id, p := range products {
		gp := gift.Product{ID: p.ID, Name: p.Name, Inventory: p.Inventory}
		for _, v := range p.Variants {
			gp.Variants = append(gp.Variants, gift.Variant{ID: v.ID, Name: v.Name, Inventory: v.Inventory})
		}
		out[id] = gp
	}
	return out
}

func bundleIDs(items []LineItem) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, it := range items {
		if it.BundleID == nil {
			continue
		}
		if _, ok := seen[*it.BundleID]; ok {
			continue
		}
		seen[*it.BundleID] = struct{}{}
		ids = append(ids, *it.BundleID)
	}
	return ids
}

// productIDs collects every product one calculation can touch: cart lines,
// gift products on free-gift discounts, and the coupon's attached gift.
func productIDs(in Input, cc cartContext) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if id == uuid.Nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, it := range in.Items {
		add(it.ProductID)
	}
	for _, d := range cc.discounts {
		if d.Kind == discount.KindFreeGift && d.Params.Gift != nil {
			add(d.Params.Gift.ProductID)
		}
	}
	if cc.cpn != nil && cc.cpn.Gift != nil {
		add(cc.cpn.Gift.ProductID)
	}
	return ids
}
