package discount

import "github.com/google/uuid"

// TargetScope restricts which cart contents a discount applies to.
type TargetScope string

const (
	TargetAll                TargetScope = "all_products"
	TargetProducts           TargetScope = "specific_products"
	TargetCategories         TargetScope = "specific_categories"
	TargetCollections        TargetScope = "specific_collections"
	TargetExcludeProducts    TargetScope = "exclude_products"
	TargetExcludeCategories  TargetScope = "exclude_categories"
	TargetExcludeCollections TargetScope = "exclude_collections"
)

// Target scopes a discount to products, categories, or collections.
type Target struct {
	Scope         TargetScope `json:"scope"`
	ProductIDs    []uuid.UUID `json:"productIds,omitempty"`
	CategoryIDs   []uuid.UUID `json:"categoryIds,omitempty"`
	CollectionIDs []uuid.UUID `json:"collectionIds,omitempty"`
}

// MatchesCart reports whether the cart satisfies the target scope. Specific
// scopes need at least one matching non-gift item; exclude scopes need none.
func (t Target) MatchesCart(items []Item) bool {
	switch t.Scope {
	case TargetAll, "":
		return true
	case TargetProducts:
		return anyItem(items, func(it Item) bool { return containsID(t.ProductIDs, it.ProductID) })
	case TargetCategories:
		return anyItem(items, func(it Item) bool {
			return it.CategoryID != nil && containsID(t.CategoryIDs, *it.CategoryID)
		})
	case TargetCollections:
		return anyItem(items, func(it Item) bool { return anyCollection(t.CollectionIDs, it.CollectionIDs) })
	case TargetExcludeProducts:
		return !anyItem(items, func(it Item) bool { return containsID(t.ProductIDs, it.ProductID) })
	case TargetExcludeCategories:
		return !anyItem(items, func(it Item) bool {
			return it.CategoryID != nil && containsID(t.CategoryIDs, *it.CategoryID)
		})
	case TargetExcludeCollections:
		return !anyItem(items, func(it Item) bool { return anyCollection(t.CollectionIDs, it.CollectionIDs) })
	default:
		return false
	}
}

// CustomerScope restricts which shoppers a discount applies to.
type CustomerScope string

const (
	CustomersAll        CustomerScope = "all_customers"
	CustomersRegistered CustomerScope = "registered_customers"
	CustomersSpecific   CustomerScope = "specific_customers"
	CustomersTiers      CustomerScope = "customer_tiers"
)

// CustomerTarget scopes a discount to a customer segment.
type CustomerTarget struct {
	Scope       CustomerScope `json:"scope"`
	CustomerIDs []uuid.UUID   `json:"customerIds,omitempty"`
	Tiers       []string      `json:"tiers,omitempty"`
}

// Matches reports whether the shopper falls inside the target segment.
func (t CustomerTarget) Matches(s Shopper) bool {
	switch t.Scope {
	case CustomersAll, "":
		return true
	case CustomersRegistered:
		return s.ID != nil
	case CustomersSpecific:
		return s.ID != nil && containsID(t.CustomerIDs, *s.ID)
	case CustomersTiers:
		if s.Tier == "" {
			return false
		}
		for _, label := range t.Tiers {
			if label == s.Tier {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func anyItem(items []Item, match func(Item) bool) bool {
	for _, it := range items {
		if it.IsGift {
			continue
		}
		if match(it) {
			return true
		}
	}
	return false
}

func containsID(set []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range set {
		if candidate == id {
			return true
		}
	}
	return false
}

func anyCollection(set, memberships []uuid.UUID) bool {
	for _, m := range memberships {
		if containsID(set, m) {
			return true
		}
	}
	return false
}
