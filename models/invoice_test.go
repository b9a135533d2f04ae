package models

import (
	"testing"

	"invoiceflow/billing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to InvoiceStatus
		ok       bool
	}{
		{StatusDraft, StatusSent, true},
		{StatusDraft, StatusPaid, false},
		{StatusSent, StatusPaid, true},
		{StatusSent, StatusOverdue, true},
		{StatusOverdue, StatusPaid, true},
		{StatusPaid, StatusDraft, false},
		{StatusOverdue, StatusSent, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestItemsRoundTripThroughLines(t *testing.T) {
	lines := []billing.LineItem{
		{Kind: billing.KindPrimary, ProductID: "p1", Description: "Peas", Quantity: 30, UnitPrice: decimal.NewFromInt(10), Amount: decimal.NewFromInt(300)},
		{Kind: billing.KindFree, ProductID: "p1", Description: "Peas - B15G1", Quantity: 2, UnitPrice: decimal.Zero, Amount: decimal.Zero, SchemeID: "s1"},
	}

	items := ItemsFromLines(lines)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Position)
	assert.Nil(t, items[0].SchemeID)
	assert.True(t, items[1].IsFreeFromScheme)
	require.NotNil(t, items[1].SchemeID)
	assert.Equal(t, "s1", *items[1].SchemeID)

	// stored order is irrelevant; Position decides
	inv := Invoice{Items: []InvoiceItem{items[1], items[0]}}
	back := inv.Lines()
	assert.Equal(t, billing.KindPrimary, back[0].Kind)
	assert.Equal(t, billing.KindFree, back[1].Kind)
	assert.Equal(t, "s1", back[1].SchemeID)
}

func TestApplyTotals_RoundsAndKeepsIdentity(t *testing.T) {
	var inv Invoice
	inv.ApplyTotals(billing.Totals{
		Subtotal: decimal.RequireFromString("100.005"),
		Discount: decimal.RequireFromString("2.0001"),
		Freight:  decimal.RequireFromString("5"),
		Total:    decimal.RequireFromString("103.0049"),
	})
	assert.Equal(t, "100.01", inv.Subtotal.StringFixed(2))
	assert.True(t, inv.Total.Equal(inv.Subtotal.Add(inv.Freight).Sub(inv.Discount)))
	assert.Equal(t, "103.01", inv.Outstanding().StringFixed(2))
}

func TestScheme_ToBilling(t *testing.T) {
	s := Scheme{Id: "s1", Name: "B15G1", BuyQuantity: 15, FreeQuantity: 1, Active: true,
		Products: SchemeProductsFor([]string{"p1", "p2", "p1"})}
	b := s.ToBilling()
	assert.Equal(t, []string{"p1", "p2"}, b.ProductIDs)
	assert.NoError(t, b.Validate())
}

func TestUser_PasswordAndEmail(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, u.SetPassword("s3cret-pass"))
	assert.NoError(t, u.ComparePassword("s3cret-pass"))
	assert.Error(t, u.ComparePassword("wrong"))

	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}
