package billing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Draft is the editable state of an invoice's rows. Free lines are never
// stored here; Project derives them.
type Draft struct {
	Entries []Entry `json:"entries"`
}

// Edit is a single user change applied by Reduce.
type Edit interface {
	apply(entries []Entry) []Entry
}

type AddEntry struct {
	Entry Entry
}

type SelectProduct struct {
	Index   int
	Product Product
}

type SetQuantity struct {
	Index    int
	Quantity int
}

type SetUnitPrice struct {
	Index     int
	UnitPrice decimal.Decimal
}

type SetDescription struct {
	Index       int
	Description string
}

type RemoveEntry struct {
	Index int
}

func (e AddEntry) apply(entries []Entry) []Entry {
	return append(entries, e.Entry)
}

func (e SelectProduct) apply(entries []Entry) []Entry {
	if e.Index < 0 || e.Index >= len(entries) {
		return entries
	}
	p := e.Product
	cur := entries[e.Index]
	entries[e.Index] = Entry{
		ProductID:      p.ID,
		Description:    p.Name,
		Quantity:       cur.Quantity,
		UnitPrice:      p.BasePrice,
		Category:       p.Category,
		ItemCode:       p.ItemCode,
		PackingSize:    p.PackingSize,
		GrossWeightKgs: p.GrossWeightKgs,
		NetWeightKgs:   p.NetWeightKgs,
	}
	return entries
}

func (e SetQuantity) apply(entries []Entry) []Entry {
	if e.Index >= 0 && e.Index < len(entries) {
		entries[e.Index].Quantity = e.Quantity
	}
	return entries
}

func (e SetUnitPrice) apply(entries []Entry) []Entry {
	if e.Index >= 0 && e.Index < len(entries) {
		entries[e.Index].UnitPrice = e.UnitPrice
	}
	return entries
}

func (e SetDescription) apply(entries []Entry) []Entry {
	if e.Index >= 0 && e.Index < len(entries) {
		entries[e.Index].Description = e.Description
	}
	return entries
}

func (e RemoveEntry) apply(entries []Entry) []Entry {
	if e.Index < 0 || e.Index >= len(entries) {
		return entries
	}
	return append(entries[:e.Index], entries[e.Index+1:]...)
}

// Reduce returns the draft after edit. The input draft is left untouched.
func Reduce(d Draft, edit Edit) Draft {
	entries := make([]Entry, len(d.Entries), len(d.Entries)+1)
	copy(entries, d.Entries)
	return Draft{Entries: edit.apply(entries)}
}

// Projection is the derived line list of a draft.
type Projection struct {
	Lines []LineItem `json:"lines"`
	// Incomplete lists entry indexes that were left out of Lines, excluding
	// blank rows.
	Incomplete []int `json:"incomplete,omitempty"`
	// Ambiguous lists entry indexes where more than one scheme qualified.
	Ambiguous []int `json:"ambiguous,omitempty"`
}

// Project prices every entry and attaches scheme free lines after the line
// that earned them.
func Project(d Draft, schemes []Scheme) Projection {
	var p Projection
	for i, e := range d.Entries {
		if e.Blank() {
			continue
		}
		line, err := NewPrimaryLine(e)
		if err != nil {
			p.Incomplete = append(p.Incomplete, i)
			continue
		}
		res, ok := ComputeLine(line, schemes)
		if !ok {
			p.Incomplete = append(p.Incomplete, i)
			continue
		}
		if res.Match != nil && res.Match.Ambiguous() {
			p.Ambiguous = append(p.Ambiguous, i)
		}
		p.Lines = append(p.Lines, res.Lines()...)
	}
	return p
}

// Validate fails when any non-blank entry could not become a line.
func (p Projection) Validate() error {
	if len(p.Incomplete) > 0 {
		return &ValidationError{Err: ErrIncompleteLine, Lines: p.Incomplete}
	}
	return nil
}

// Compute projects the draft and totals it, rejecting incomplete rows.
func Compute(d Draft, schemes []Scheme, discount Discount, freight decimal.Decimal) (Projection, Totals, error) {
	p := Project(d, schemes)
	if err := p.Validate(); err != nil {
		return p, Totals{}, err
	}
	totals, err := ComputeTotals(p.Lines, discount, freight)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && len(p.Lines) == 0 {
			ve.Details = "add at least one product with a quantity"
		}
		return p, Totals{}, err
	}
	return p, totals, nil
}
