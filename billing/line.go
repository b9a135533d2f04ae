package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the read-only product snapshot a line is priced from.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	BasePrice      decimal.Decimal `json:"base_price"`
	Category       string          `json:"category,omitempty"`
	ItemCode       string          `json:"item_code,omitempty"`
	PackingSize    string          `json:"packing_size,omitempty"`
	GrossWeightKgs decimal.Decimal `json:"gross_weight_kgs"`
	NetWeightKgs   decimal.Decimal `json:"net_weight_kgs"`
}

// LineKind tags the two variants of LineItem.
type LineKind string

const (
	KindPrimary LineKind = "primary"
	KindFree    LineKind = "free"
)

// Entry is a user-edited invoice row before it has been validated.
type Entry struct {
	ProductID      string          `json:"product_id"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Category       string          `json:"category,omitempty"`
	ItemCode       string          `json:"item_code,omitempty"`
	PackingSize    string          `json:"packing_size,omitempty"`
	GrossWeightKgs decimal.Decimal `json:"gross_weight_kgs"`
	NetWeightKgs   decimal.Decimal `json:"net_weight_kgs"`
}

// Blank reports whether the row was never filled in.
func (e Entry) Blank() bool {
	return strings.TrimSpace(e.ProductID) == "" && strings.TrimSpace(e.Description) == "" && e.Quantity == 0
}

// LineItem is either a priced primary line or a zero-priced free line
// produced by a scheme. Build it with NewPrimaryLine or NewFreeLine.
type LineItem struct {
	Kind           LineKind        `json:"kind"`
	ProductID      string          `json:"product_id"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Amount         decimal.Decimal `json:"amount"`
	Category       string          `json:"category,omitempty"`
	ItemCode       string          `json:"item_code,omitempty"`
	PackingSize    string          `json:"packing_size,omitempty"`
	GrossWeightKgs decimal.Decimal `json:"gross_weight_kgs"`
	NetWeightKgs   decimal.Decimal `json:"net_weight_kgs"`
	SchemeID       string          `json:"scheme_id,omitempty"`
}

// IsFreeFromScheme reports whether the line was synthesized by a scheme.
func (l LineItem) IsFreeFromScheme() bool {
	return l.Kind == KindFree
}

// NewPrimaryLine validates an entry and returns the priced line for it.
func NewPrimaryLine(e Entry) (LineItem, error) {
	productID := strings.TrimSpace(e.ProductID)
	description := strings.TrimSpace(e.Description)
	if productID == "" {
		return LineItem{}, fmt.Errorf("%w: missing product", ErrIncompleteLine)
	}
	if description == "" {
		return LineItem{}, fmt.Errorf("%w: missing description", ErrIncompleteLine)
	}
	if e.Quantity < 1 {
		return LineItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrIncompleteLine)
	}
	if e.UnitPrice.IsNegative() {
		return LineItem{}, ErrNegativePrice
	}

	return LineItem{
		Kind:           KindPrimary,
		ProductID:      productID,
		Description:    description,
		Quantity:       e.Quantity,
		UnitPrice:      e.UnitPrice,
		Amount:         e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))),
		Category:       strings.TrimSpace(e.Category),
		ItemCode:       e.ItemCode,
		PackingSize:    e.PackingSize,
		GrossWeightKgs: e.GrossWeightKgs,
		NetWeightKgs:   e.NetWeightKgs,
	}, nil
}

// NewFreeLine builds the zero-priced line granted by scheme for the primary line.
func NewFreeLine(primary LineItem, scheme Scheme, qty int) LineItem {
	return LineItem{
		Kind:           KindFree,
		ProductID:      primary.ProductID,
		Description:    fmt.Sprintf("%s - %s", primary.Description, scheme.Name),
		Quantity:       qty,
		UnitPrice:      decimal.Zero,
		Amount:         decimal.Zero,
		Category:       primary.Category,
		ItemCode:       primary.ItemCode,
		PackingSize:    primary.PackingSize,
		GrossWeightKgs: primary.GrossWeightKgs,
		NetWeightKgs:   primary.NetWeightKgs,
		SchemeID:       scheme.ID,
	}
}

// LineResult is a primary line together with the free lines it earned.
type LineResult struct {
	Primary LineItem
	Free    []LineItem
	Match   *Match
}

// Lines flattens the result, primary first.
func (r LineResult) Lines() []LineItem {
	out := make([]LineItem, 0, 1+len(r.Free))
	out = append(out, r.Primary)
	return append(out, r.Free...)
}

// ComputeLine prices item and attaches the free line of the first matching
// scheme. It returns false when the item has no product and must be left
// out of the invoice.
func ComputeLine(item LineItem, schemes []Scheme) (LineResult, bool) {
	if strings.TrimSpace(item.ProductID) == "" {
		return LineResult{}, false
	}

	item.Kind = KindPrimary
	item.SchemeID = ""
	item.Amount = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

	res := LineResult{Primary: item}
	if m, ok := MatchScheme(item.ProductID, item.Quantity, schemes); ok {
		res.Free = []LineItem{NewFreeLine(item, m.Scheme, m.FreeQuantity)}
		res.Match = &m
	}
	return res, true
}
