package tier

import "testing"

func ladder() Settings {
	return Settings{
		Enabled: true,
		Tiers: []Tier{
			{Label: "silver", MinSpent: 500_00, MinOrders: 3, Kind: KindPercentage, PercentBps: 1000},
			{Label: "gold", MinSpent: 1000_00, MinOrders: 10, Kind: KindPercentage, PercentBps: 2000},
		},
	}
}

func TestResolveFirstMatchingTierWins(t *testing.T) {
	c := Customer{TotalSpent: 600_00, OrderCount: 5}
	got := Resolve(ladder(), c, 100_00)
	if got != 10_00 {
		t.Fatalf("expected 10%% tier discount 1000, got %d", got)
	}
}

func TestResolveDisabledSettings(t *testing.T) {
	s := ladder()
	s.Enabled = false
	if got := Resolve(s, Customer{TotalSpent: 600_00, OrderCount: 5}, 100_00); got != 0 {
		t.Fatalf("expected 0 when settings disabled, got %d", got)
	}
}

func TestResolveNoTierNoBase(t *testing.T) {
	c := Customer{TotalSpent: 100_00, OrderCount: 1}
	if got := Resolve(ladder(), c, 100_00); got != 0 {
		t.Fatalf("expected 0 without matching tier or base discount, got %d", got)
	}
}

func TestResolveBaseDiscountFallback(t *testing.T) {
	s := ladder()
	s.Base = &BaseDiscount{Kind: KindFixed, Amount: 5_00, AppliesTo: ScopeAllProducts}
	c := Customer{TotalSpent: 100_00, OrderCount: 1}
	if got := Resolve(s, c, 100_00); got != 5_00 {
		t.Fatalf("expected base discount 500, got %d", got)
	}
}

func TestResolveBaseProductScopeStillApplies(t *testing.T) {
	s := Settings{
		Enabled: true,
		Base:    &BaseDiscount{Kind: KindPercentage, PercentBps: 500, AppliesTo: ScopeProducts},
	}
	if got := Resolve(s, Customer{}, 200_00); got != 10_00 {
		t.Fatalf("expected product-scoped base discount to apply, got %d", got)
	}
}

func TestResolveClampedToBasePrice(t *testing.T) {
	s := Settings{
		Enabled: true,
		Tiers:   []Tier{{MinSpent: 0, MinOrders: 0, Kind: KindFixed, Amount: 999_00}},
	}
	if got := Resolve(s, Customer{}, 50_00); got != 50_00 {
		t.Fatalf("expected discount clamped to base price, got %d", got)
	}
}

func TestMatchPreservesConfiguredOrder(t *testing.T) {
	s := Settings{
		Enabled: true,
		Tiers: []Tier{
			{Label: "generous", MinSpent: 100_00, MinOrders: 0, Kind: KindPercentage, PercentBps: 3000},
			{Label: "stingy", MinSpent: 50_00, MinOrders: 0, Kind: KindPercentage, PercentBps: 100},
		},
	}
	got, ok := Match(s, Customer{TotalSpent: 200_00})
	if !ok || got.Label != "generous" {
		t.Fatalf("expected first configured tier to win, got %+v ok=%v", got, ok)
	}
}
