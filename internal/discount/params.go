package discount

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidParams indicates a discount's kind-specific payload is malformed.
// Evaluation treats such discounts as contributing zero; the error exists so
// the store layer can log misconfiguration at load time.
var ErrInvalidParams = errors.New("invalid discount params")

// Params is a tagged union keyed by Kind. Exactly one variant is populated for
// a well-formed discount; a zero Params contributes a zero amount.
type Params struct {
	Percent  *PercentParams  `json:"percent,omitempty"`
	Fixed    *FixedParams    `json:"fixed,omitempty"`
	BuyXGetY *BuyXGetYParams `json:"buyXGetY,omitempty"`
	BuyXPayY *BuyXPayYParams `json:"buyXPayY,omitempty"`
	NthItem  *NthItemParams  `json:"nthItem,omitempty"`
	Volume   *VolumeParams   `json:"volume,omitempty"`
	Gift     *GiftParams     `json:"gift,omitempty"`
}

// PercentParams discounts a share of the eligible subtotal.
type PercentParams struct {
	Bps int32 `json:"bps"`
}

// FixedParams discounts a flat amount.
type FixedParams struct {
	Amount int64 `json:"amount"`
}

// BuyXGetYParams grants GetQty discounted units for every BuyQty purchased,
// at DiscountBps off the item's unit price.
type BuyXGetYParams struct {
	BuyQty      int32 `json:"buyQty"`
	GetQty      int32 `json:"getQty"`
	DiscountBps int32 `json:"discountBps"`
}

// BuyXPayYParams charges each full BuyQty group either a flat PayAmount or the
// price of PayQty units. Exactly one of PayAmount/PayQty is set.
type BuyXPayYParams struct {
	BuyQty    int32  `json:"buyQty"`
	PayAmount *int64 `json:"payAmount,omitempty"`
	PayQty    *int32 `json:"payQty,omitempty"`
}

// NthItemParams discounts every Nth unit (1-based across the flattened cart)
// by DiscountBps of that unit's price.
type NthItemParams struct {
	Nth         int32 `json:"nth"`
	DiscountBps int32 `json:"discountBps"`
}

// VolumeRule is one threshold of a volume discount.
type VolumeRule struct {
	MinQty      int32 `json:"minQty"`
	DiscountBps int32 `json:"discountBps"`
}

// VolumeParams discounts the subtotal once total cart quantity crosses a rule
// threshold. The highest satisfied threshold wins.
type VolumeParams struct {
	Rules []VolumeRule `json:"rules"`
}

// GiftCondition gates a free-gift discount.
type GiftCondition string

const (
	GiftMinOrderAmount  GiftCondition = "min_order_amount"
	GiftSpecificProduct GiftCondition = "specific_product"
)

// GiftParams attaches a free product once the condition holds.
type GiftParams struct {
	ProductID          uuid.UUID     `json:"productId"`
	VariantID          *uuid.UUID    `json:"variantId,omitempty"`
	Condition          GiftCondition `json:"condition"`
	ConditionAmount    *int64        `json:"conditionAmount,omitempty"`
	ConditionProductID *uuid.UUID    `json:"conditionProductId,omitempty"`
}

// DecodeParams parses and validates the kind-specific payload. Configuration
// is validated here, at load time, so evaluation never probes untyped fields.
func DecodeParams(kind Kind, raw json.RawMessage) (Params, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch kind {
	case KindPercentage:
		var p PercentParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if p.Bps <= 0 || p.Bps > 10000 {
			return Params{}, fmt.Errorf("%w: percent bps out of range", ErrInvalidParams)
		}
		return Params{Percent: &p}, nil
	case KindFixed:
		var p FixedParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if p.Amount <= 0 {
			return Params{}, fmt.Errorf("%w: fixed amount must be positive", ErrInvalidParams)
		}
		return Params{Fixed: &p}, nil
	case KindBuyXGetY:
		var p BuyXGetYParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if p.BuyQty <= 0 || p.GetQty <= 0 || p.DiscountBps <= 0 || p.DiscountBps > 10000 {
			return Params{}, fmt.Errorf("%w: buy_x_get_y fields must be positive", ErrInvalidParams)
		}
		return Params{BuyXGetY: &p}, nil
	case KindBuyXPayY:
		var p BuyXPayYParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if p.BuyQty <= 0 {
			return Params{}, fmt.Errorf("%w: buy quantity must be positive", ErrInvalidParams)
		}
		hasAmount := p.PayAmount != nil && *p.PayAmount > 0
		hasQty := p.PayQty != nil && *p.PayQty > 0 && *p.PayQty < p.BuyQty
		if hasAmount == hasQty {
			return Params{}, fmt.Errorf("%w: buy_x_pay_y needs exactly one of payAmount or payQty", ErrInvalidParams)
		}
		return Params{BuyXPayY: &p}, nil
	case KindNthItem:
		var p NthItemParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if p.Nth <= 0 || p.DiscountBps <= 0 || p.DiscountBps > 10000 {
			return Params{}, fmt.Errorf("%w: nth_item fields out of range", ErrInvalidParams)
		}
		return Params{NthItem: &p}, nil
	case KindVolume:
		var p VolumeParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if len(p.Rules) == 0 {
			return Params{}, fmt.Errorf("%w: volume discount needs at least one rule", ErrInvalidParams)
		}
		for _, r := range p.Rules {
			if r.MinQty <= 0 || r.DiscountBps <= 0 || r.DiscountBps > 10000 {
				return Params{}, fmt.Errorf("%w: volume rule out of range", ErrInvalidParams)
			}
		}
		return Params{Volume: &p}, nil
	case KindFreeGift:
		var p GiftParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		if p.ProductID == uuid.Nil {
			return Params{}, fmt.Errorf("%w: free_gift needs a product id", ErrInvalidParams)
		}
		if p.Condition != GiftMinOrderAmount && p.Condition != GiftSpecificProduct && p.Condition != "" {
			return Params{}, fmt.Errorf("%w: unknown gift condition %q", ErrInvalidParams, p.Condition)
		}
		return Params{Gift: &p}, nil
	default:
		return Params{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidParams, kind)
	}
}
