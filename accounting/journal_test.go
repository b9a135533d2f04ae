package accounting

import (
	"context"
	"encoding/json"
	"testing"

	"invoiceflow/billing"
	"invoiceflow/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totals(sub, disc, freight string) billing.Totals {
	t := billing.Totals{
		Subtotal: decimal.RequireFromString(sub),
		Discount: decimal.RequireFromString(disc),
		Freight:  decimal.RequireFromString(freight),
	}
	t.Total = t.Subtotal.Add(t.Freight).Sub(t.Discount)
	return t
}

func find(j Journal, account string) (Line, bool) {
	for _, l := range j.Lines {
		if l.Account == account {
			return l, true
		}
	}
	return Line{}, false
}

func TestBuildJournal_Receivable(t *testing.T) {
	j, err := BuildJournal(billing.Receivable, totals("300", "6", "25"))
	require.NoError(t, err)
	require.Len(t, j.Lines, 4)

	ar, _ := find(j, AccountsReceivable)
	assert.Equal(t, Debit, ar.Side)
	assert.Equal(t, "319.00", ar.Amount.StringFixed(2))

	sales, _ := find(j, Sales)
	assert.Equal(t, Credit, sales.Side)

	debit, credit := j.Sums()
	assert.True(t, debit.Equal(credit))
}

func TestBuildJournal_PayableMirrorsSides(t *testing.T) {
	j, err := BuildJournal(billing.Payable, totals("200", "10", "15"))
	require.NoError(t, err)

	ap, ok := find(j, AccountsPayable)
	require.True(t, ok)
	assert.Equal(t, Credit, ap.Side)

	cogs, ok := find(j, CostOfGoodsSold)
	require.True(t, ok)
	assert.Equal(t, Debit, cogs.Side)

	disc, _ := find(j, DiscountAccount)
	assert.Equal(t, Credit, disc.Side)
	assert.NoError(t, j.Validate())
}

func TestBuildJournal_SkipsZeroLines(t *testing.T) {
	j, err := BuildJournal(billing.Payable, totals("120", "0", "0"))
	require.NoError(t, err)
	assert.Len(t, j.Lines, 2)
	_, ok := find(j, FreightAccount)
	assert.False(t, ok)
}

func TestBuildJournal_RoundsBeforeBalancing(t *testing.T) {
	j, err := BuildJournal(billing.Receivable, totals("100.005", "2.0001", "0"))
	require.NoError(t, err)
	assert.NoError(t, j.Validate())
}

func TestBuildJournal_UnknownType(t *testing.T) {
	_, err := BuildJournal(billing.InvoiceType("credit-note"), totals("1", "0", "0"))
	assert.Error(t, err)
}

func TestJournal_ValidateRejectsUnbalanced(t *testing.T) {
	j := Journal{Lines: []Line{
		{Account: AccountsReceivable, Side: Debit, Amount: decimal.NewFromInt(10)},
		{Account: Sales, Side: Credit, Amount: decimal.NewFromInt(9)},
	}}
	assert.ErrorIs(t, j.Validate(), ErrUnbalanced)
}

func TestEntry_EncodesLines(t *testing.T) {
	inv := models.Invoice{ID: 7, Type: billing.Receivable}
	inv.ApplyTotals(totals("300", "6", "0"))

	e, err := Entry(inv)
	require.NoError(t, err)
	assert.Equal(t, uint(7), e.InvoiceID)
	assert.Equal(t, "294.00", e.DebitTotal.Sub(decimal.NewFromInt(6)).StringFixed(2))
	assert.True(t, e.DebitTotal.Equal(e.CreditTotal))

	var lines []Line
	require.NoError(t, json.Unmarshal(e.Lines, &lines))
	assert.Len(t, lines, 3)
}

func TestLogPublisher_KeepsExistingRef(t *testing.T) {
	ref, err := LogPublisher{}.Publish(context.Background(), models.JournalEntry{ExternalRef: "je-1"})
	require.NoError(t, err)
	assert.Equal(t, "je-1", ref)

	ref, err = LogPublisher{}.Publish(context.Background(), models.JournalEntry{})
	require.NoError(t, err)
	assert.Regexp(t, `^je-[0-9a-f-]{36}$`, ref)
}
