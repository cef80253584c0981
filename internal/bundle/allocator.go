package bundle

import "github.com/google/uuid"

// Constituent is one required product inside a bundle definition.
type Constituent struct {
	ProductID uuid.UUID `json:"productId"`
	Qty       int32     `json:"qty"`
}

// Bundle is a fixed-price grouping of products sold as one unit.
type Bundle struct {
	ID       uuid.UUID     `json:"id"`
	ShopID   uuid.UUID     `json:"shopId"`
	Name     string        `json:"name"`
	Price    int64         `json:"price"`
	Products []Constituent `json:"products"`
}

// RequiredQty returns the declared quantity for a constituent product.
func (b Bundle) RequiredQty(productID uuid.UUID) int32 {
	for _, c := range b.Products {
		if c.ProductID == productID {
			return c.Qty
		}
	}
	return 0
}

// Item is a cart line tagged with this bundle. UnitPrice is the standalone
// catalog price per unit.
type Item struct {
	ProductID uuid.UUID
	Qty       int32
	UnitPrice int64
}

// ItemShare carries the per-unit price reduction for one bundle cart line,
// aligned with the Allocate input order.
type ItemShare struct {
	ProductID  uuid.UUID
	PerUnitOff int64
}

// Allocation is the outcome of pricing one bundle group.
type Allocation struct {
	Quantity      int32
	OriginalPrice int64
	Discount      int64
	Items         []ItemShare
}

// Quantity infers how many times the whole bundle was added to the cart: the
// maximum observed-to-required ratio across constituents, rounded up so a
// partial bundle still counts once.
func Quantity(b Bundle, items []Item) int32 {
	var qty int32
	for _, it := range items {
		required := b.RequiredQty(it.ProductID)
		if required <= 0 || it.Qty <= 0 {
			continue
		}
		ratio := (it.Qty + required - 1) / required
		if ratio > qty {
			qty = ratio
		}
	}
	if qty == 0 {
		qty = 1
	}
	return qty
}

// Allocate computes the bundle's aggregate discount against standalone pricing
// and distributes it across the cart lines in proportion to each line's share
// of the original price. tierOff is an additional aggregate-level discount
// (customer tier applied to the bundle as a whole, never per item).
func Allocate(b Bundle, items []Item, tierOff int64) Allocation {
	qty := Quantity(b, items)

	var original int64
	for _, c := range b.Products {
		for _, it := range items {
			if it.ProductID == c.ProductID {
				original += it.UnitPrice * int64(c.Qty) * int64(qty)
				break
			}
		}
	}

	discount := original - b.Price*int64(qty) + tierOff
	if discount < 0 {
		discount = 0
	}

	alloc := Allocation{Quantity: qty, OriginalPrice: original, Discount: discount, Items: make([]ItemShare, len(items))}
	for i, it := range items {
		alloc.Items[i] = ItemShare{ProductID: it.ProductID}
		if original <= 0 || discount <= 0 || it.Qty <= 0 {
			continue
		}
		itemOriginal := it.UnitPrice * int64(b.RequiredQty(it.ProductID)) * int64(qty)
		if itemOriginal <= 0 {
			continue
		}
		itemOff := discount * itemOriginal / original
		perUnit := itemOff / int64(it.Qty)
		if perUnit > it.UnitPrice {
			perUnit = it.UnitPrice
		}
		alloc.Items[i].PerUnitOff = perUnit
	}
	return alloc
}
