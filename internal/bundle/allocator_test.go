package bundle

import (
	"testing"

	"github.com/google/uuid"
)

func TestAllocateProportionalDistribution(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	def := Bundle{
		ID:    uuid.New(),
		Price: 150,
		Products: []Constituent{
			{ProductID: a, Qty: 1},
			{ProductID: b, Qty: 1},
		},
	}
	items := []Item{
		{ProductID: a, Qty: 1, UnitPrice: 120},
		{ProductID: b, Qty: 1, UnitPrice: 80},
	}
	alloc := Allocate(def, items, 0)
	if alloc.Quantity != 1 {
		t.Fatalf("expected bundle quantity 1, got %d", alloc.Quantity)
	}
	if alloc.OriginalPrice != 200 {
		t.Fatalf("expected original price 200, got %d", alloc.OriginalPrice)
	}
	if alloc.Discount != 50 {
		t.Fatalf("expected discount 50, got %d", alloc.Discount)
	}
	// 120/200 and 80/200 shares of the 50 discount.
	if alloc.Items[0].PerUnitOff != 30 {
		t.Fatalf("expected 30 off the first item, got %d", alloc.Items[0].PerUnitOff)
	}
	if alloc.Items[1].PerUnitOff != 20 {
		t.Fatalf("expected 20 off the second item, got %d", alloc.Items[1].PerUnitOff)
	}
}

func TestAllocateQuantityFromObservedRatio(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	def := Bundle{
		Price: 100,
		Products: []Constituent{
			{ProductID: a, Qty: 1},
			{ProductID: b, Qty: 2},
		},
	}
	items := []Item{
		{ProductID: a, Qty: 2, UnitPrice: 60},
		{ProductID: b, Qty: 4, UnitPrice: 40},
	}
	alloc := Allocate(def, items, 0)
	if alloc.Quantity != 2 {
		t.Fatalf("expected bundle quantity 2, got %d", alloc.Quantity)
	}
	// original: 60*1*2 + 40*2*2 = 280; bundle charge 200; discount 80.
	if alloc.Discount != 80 {
		t.Fatalf("expected discount 80, got %d", alloc.Discount)
	}
}

func TestAllocateNeverNegative(t *testing.T) {
	a := uuid.New()
	def := Bundle{Price: 500, Products: []Constituent{{ProductID: a, Qty: 1}}}
	items := []Item{{ProductID: a, Qty: 1, UnitPrice: 100}}
	alloc := Allocate(def, items, 0)
	if alloc.Discount != 0 {
		t.Fatalf("expected zero discount for a bundle priced above standalone, got %d", alloc.Discount)
	}
	if alloc.Items[0].PerUnitOff != 0 {
		t.Fatalf("expected no per-unit reduction, got %d", alloc.Items[0].PerUnitOff)
	}
}

func TestAllocateTierDiscountOnAggregate(t *testing.T) {
	a := uuid.New()
	def := Bundle{Price: 150, Products: []Constituent{{ProductID: a, Qty: 2}}}
	items := []Item{{ProductID: a, Qty: 2, UnitPrice: 100}}
	alloc := Allocate(def, items, 15)
	// standalone 200, bundle 150, plus 15 tier off the aggregate.
	if alloc.Discount != 65 {
		t.Fatalf("expected discount 65, got %d", alloc.Discount)
	}
	if alloc.Items[0].PerUnitOff != 32 {
		t.Fatalf("expected per-unit reduction 32, got %d", alloc.Items[0].PerUnitOff)
	}
}

func TestQuantityPartialBundleCountsOnce(t *testing.T) {
	a := uuid.New()
	def := Bundle{Price: 10, Products: []Constituent{{ProductID: a, Qty: 2}}}
	items := []Item{{ProductID: a, Qty: 1, UnitPrice: 10}}
	if got := Quantity(def, items); got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}
}
