package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var peas = Product{ID: "p1", Name: "Green Peas 1kg", BasePrice: decimal.NewFromInt(10), Category: "Frozen Vegetable", ItemCode: "GP-1"}

func freeLines(p Projection) []LineItem {
	var out []LineItem
	for _, l := range p.Lines {
		if l.IsFreeFromScheme() {
			out = append(out, l)
		}
	}
	return out
}

func TestReduce_RecomputesFreeLinesOnQuantityChange(t *testing.T) {
	schemes := []Scheme{buy15Get1()}

	d := Reduce(Draft{}, AddEntry{})
	d = Reduce(d, SelectProduct{Index: 0, Product: peas})
	d = Reduce(d, SetQuantity{Index: 0, Quantity: 30})

	p := Project(d, schemes)
	require.Len(t, freeLines(p), 1)
	assert.Equal(t, 2, freeLines(p)[0].Quantity)

	d = Reduce(d, SetQuantity{Index: 0, Quantity: 16})
	p = Project(d, schemes)
	require.Len(t, freeLines(p), 1)
	assert.Equal(t, 1, freeLines(p)[0].Quantity)

	d = Reduce(d, SetQuantity{Index: 0, Quantity: 14})
	p = Project(d, schemes)
	assert.Empty(t, freeLines(p))
	assert.Len(t, p.Lines, 1)
}

func TestReduce_ProductChangeDropsStaleFreeLines(t *testing.T) {
	schemes := []Scheme{buy15Get1()}
	corn := Product{ID: "p2", Name: "Sweet Corn", BasePrice: decimal.NewFromInt(4)}

	d := Reduce(Draft{}, AddEntry{Entry: Entry{Quantity: 20}})
	d = Reduce(d, SelectProduct{Index: 0, Product: peas})
	require.Len(t, freeLines(Project(d, schemes)), 1)

	d = Reduce(d, SelectProduct{Index: 0, Product: corn})
	p := Project(d, schemes)
	assert.Empty(t, freeLines(p))
	require.Len(t, p.Lines, 1)
	assert.Equal(t, "Sweet Corn", p.Lines[0].Description)
	assert.Equal(t, 20, p.Lines[0].Quantity)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	d := Draft{Entries: []Entry{{ProductID: "p1", Description: "a", Quantity: 1}}}
	next := Reduce(d, SetQuantity{Index: 0, Quantity: 9})
	assert.Equal(t, 1, d.Entries[0].Quantity)
	assert.Equal(t, 9, next.Entries[0].Quantity)

	removed := Reduce(d, RemoveEntry{Index: 0})
	assert.Empty(t, removed.Entries)
	assert.Len(t, d.Entries, 1)

	same := Reduce(d, SetDescription{Index: 5, Description: "ignored"})
	assert.Equal(t, d.Entries, same.Entries)
}

func TestProject_SkipsBlankAndReportsIncomplete(t *testing.T) {
	d := Draft{Entries: []Entry{
		{ProductID: "p1", Description: "Peas", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{},
		{ProductID: "p2", Description: "Corn"},
	}}
	p := Project(d, nil)
	assert.Len(t, p.Lines, 1)
	assert.Equal(t, []int{2}, p.Incomplete)

	var ve *ValidationError
	require.ErrorAs(t, p.Validate(), &ve)
	assert.Equal(t, []int{2}, ve.Lines)
}

func TestCompute_EmptyDraft(t *testing.T) {
	_, _, err := Compute(Draft{Entries: []Entry{{}}}, nil, DiscountRate(DefaultDiscountRate), decimal.Zero)
	assert.ErrorIs(t, err, ErrNoValidLines)
}

func TestCompute_FlagsAmbiguousSchemes(t *testing.T) {
	schemes := []Scheme{
		buy15Get1(),
		{ID: "s2", Name: "Buy 10 Get 2", ProductIDs: []string{"p1"}, BuyQuantity: 10, FreeQuantity: 2, Active: true},
	}
	d := Draft{Entries: []Entry{{ProductID: "p1", Description: "Peas", Quantity: 30, UnitPrice: decimal.NewFromInt(10)}}}

	p, totals, err := Compute(d, schemes, DiscountRate(DefaultDiscountRate), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, p.Ambiguous)
	assert.Equal(t, "s1", freeLines(p)[0].SchemeID)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(294)))
}
