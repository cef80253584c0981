package coupon

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchkit/pricing/internal/discount"
)

// Coupon is a code-gated discount. It shares the automatic discount arithmetic
// and adds code-specific restrictions, an optional gift attachment, and an
// optional registered-customer bonus.
type Coupon struct {
	ID                  uuid.UUID            `json:"id"`
	ShopID              uuid.UUID            `json:"shopId"`
	Code                string               `json:"code"`
	Title               string               `json:"title"`
	Active              bool                 `json:"active"`
	Kind                discount.Kind        `json:"kind"`
	Params              discount.Params      `json:"params"`
	StartsAt            *time.Time           `json:"startsAt,omitempty"`
	EndsAt              *time.Time           `json:"endsAt,omitempty"`
	MinOrder            int64                `json:"minOrder"`
	MaxDiscount         *int64               `json:"maxDiscount,omitempty"`
	Target              discount.Target      `json:"target"`
	ApplicableCustomers []uuid.UUID          `json:"applicableCustomers,omitempty"`
	Gift                *discount.GiftParams `json:"gift,omitempty"`
	EnableCustomerBonus bool                 `json:"enableCustomerBonus"`
	CustomerBonusBps    int32                `json:"customerBonusBps,omitempty"`
}

// asDiscount adapts the coupon into the shared arithmetic shape.
func (c Coupon) asDiscount() discount.Discount {
	return discount.Discount{
		ID:          c.ID,
		Title:       c.Title,
		Kind:        c.Kind,
		Params:      c.Params,
		MaxDiscount: c.MaxDiscount,
	}
}

// Status reports coupon validity to the caller as data, never as an error.
type Status struct {
	Valid            bool   `json:"isValid"`
	Reason           string `json:"reason,omitempty"`
	MinOrderRequired int64  `json:"minOrderRequired,omitempty"`
}

// Result is the outcome of evaluating one submitted coupon code.
type Result struct {
	Discount      int64
	CustomerBonus int64
	Status        Status
}
