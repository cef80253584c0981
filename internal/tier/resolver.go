package tier

// DiscountKind selects the arithmetic used for a tier or base discount.
type DiscountKind string

const (
	// KindPercentage discounts a percentage of the unit base price.
	KindPercentage DiscountKind = "percentage"
	// KindFixed discounts a fixed amount per unit.
	KindFixed DiscountKind = "fixed"
)

// Scope restricts where a shop's base discount applies.
type Scope string

const (
	ScopeAllProducts Scope = "all_products"
	ScopeProducts    Scope = "products"
	ScopeCategories  Scope = "categories"
)

// Tier is one customer segment in a shop's loyalty ladder.
type Tier struct {
	Label      string       `json:"label"`
	MinSpent   int64        `json:"minSpent"`
	MinOrders  int32        `json:"minOrders"`
	Kind       DiscountKind `json:"kind"`
	PercentBps int32        `json:"percentBps,omitempty"`
	Amount     int64        `json:"amount,omitempty"`
}

// BaseDiscount is the fallback discount applied when no tier matches.
type BaseDiscount struct {
	Kind       DiscountKind `json:"kind"`
	PercentBps int32        `json:"percentBps,omitempty"`
	Amount     int64        `json:"amount,omitempty"`
	AppliesTo  Scope        `json:"appliesTo"`
}

// Settings is a shop's tier discount configuration. Tiers are kept in the
// shop's configured order; the first matching tier wins and tiers never stack.
type Settings struct {
	Enabled bool          `json:"enabled"`
	Base    *BaseDiscount `json:"base,omitempty"`
	Tiers   []Tier        `json:"tiers,omitempty"`
}

// Customer is the read-only snapshot tier resolution operates on.
type Customer struct {
	TotalSpent int64
	OrderCount int32
}

// Match returns the first tier whose spend and order thresholds the customer
// meets, preserving configured order.
func Match(settings Settings, c Customer) (Tier, bool) {
	if !settings.Enabled {
		return Tier{}, false
	}
	for _, t := range settings.Tiers {
		if c.TotalSpent >= t.MinSpent && c.OrderCount >= t.MinOrders {
			return t, true
		}
	}
	return Tier{}, false
}

// Resolve computes the per-unit discount for one unit at basePrice. The result
// is never negative and never exceeds basePrice.
func Resolve(settings Settings, c Customer, basePrice int64) int64 {
	if !settings.Enabled || basePrice <= 0 {
		return 0
	}
	var discount int64
	if t, ok := Match(settings, c); ok {
		discount = amountFor(t.Kind, t.PercentBps, t.Amount, basePrice)
	} else if settings.Base != nil && baseApplies(settings.Base.AppliesTo) {
		discount = amountFor(settings.Base.Kind, settings.Base.PercentBps, settings.Base.Amount, basePrice)
	}
	if discount < 0 {
		return 0
	}
	if discount > basePrice {
		return basePrice
	}
	return discount
}

func amountFor(kind DiscountKind, bps int32, amount, basePrice int64) int64 {
	switch kind {
	case KindPercentage:
		if bps <= 0 {
			return 0
		}
		return basePrice * int64(bps) / 10000
	case KindFixed:
		return amount
	default:
		return 0
	}
}

// baseApplies reports whether the base discount scope covers the priced unit.
// Product and category scopes are intentionally treated as always applicable;
// fine-grained membership checks are not part of the observable contract yet.
func baseApplies(scope Scope) bool {
	switch scope {
	case ScopeAllProducts, ScopeProducts, ScopeCategories, "":
		return true
	default:
		return false
	}
}
