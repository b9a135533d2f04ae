package billing

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// Scheme is a "buy X get Y free" promotion bound to one or more products.
type Scheme struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProductIDs   []string  `json:"product_ids"`
	BuyQuantity  int       `json:"buy_quantity"`
	FreeQuantity int       `json:"free_quantity"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the scheme invariants enforced when a scheme is created or edited.
func (s Scheme) Validate() error {
	switch {
	case len(s.ProductIDs) == 0:
		return &SchemeConfigurationError{SchemeID: s.ID, Field: "product_ids", Message: "must reference at least one product"}
	case lo.Contains(s.ProductIDs, ""):
		return &SchemeConfigurationError{SchemeID: s.ID, Field: "product_ids", Message: "contains an empty product reference"}
	case s.BuyQuantity < 1:
		return &SchemeConfigurationError{SchemeID: s.ID, Field: "buy_quantity", Message: "must be at least 1"}
	case s.FreeQuantity < 1:
		return &SchemeConfigurationError{SchemeID: s.ID, Field: "free_quantity", Message: "must be at least 1"}
	}
	return nil
}

// AppliesTo reports whether the scheme references productID.
func (s Scheme) AppliesTo(productID string) bool {
	return lo.Contains(s.ProductIDs, productID)
}

// Match is the outcome of a successful scheme lookup.
// Applicable counts every active scheme that would have qualified; a value
// above 1 means the input order decided the winner.
type Match struct {
	Scheme       Scheme
	FreeQuantity int
	Applicable   int
}

// Ambiguous reports whether more than one scheme qualified for the line.
func (m Match) Ambiguous() bool {
	return m.Applicable > 1
}

// MatchScheme picks the first active, well-formed scheme for productID whose
// buy threshold is met by qty. Malformed schemes are skipped.
func MatchScheme(productID string, qty int, schemes []Scheme) (Match, bool) {
	if productID == "" || qty < 1 {
		return Match{}, false
	}

	var (
		found Match
		ok    bool
	)
	for _, s := range schemes {
		if !s.Active || s.Validate() != nil || !s.AppliesTo(productID) {
			continue
		}
		if qty < s.BuyQuantity {
			continue
		}
		free := (qty / s.BuyQuantity) * s.FreeQuantity
		if free == 0 {
			continue
		}
		found.Applicable++
		if !ok {
			found.Scheme = s
			found.FreeQuantity = free
			ok = true
		}
	}
	return found, ok
}

// SortSchemes orders schemes by creation time and then id so that
// MatchScheme's first-match rule is deterministic.
func SortSchemes(schemes []Scheme) {
	sort.SliceStable(schemes, func(i, j int) bool {
		if !schemes[i].CreatedAt.Equal(schemes[j].CreatedAt) {
			return schemes[i].CreatedAt.Before(schemes[j].CreatedAt)
		}
		return schemes[i].ID < schemes[j].ID
	})
}
