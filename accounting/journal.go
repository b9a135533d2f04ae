// Package accounting projects invoice totals into balanced journal entries
// for the external bookkeeping system.
package accounting

import (
	"errors"
	"fmt"

	"invoiceflow/billing"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

const (
	AccountsReceivable = "Accounts Receivable"
	AccountsPayable    = "Accounts Payable"
	Sales              = "Sales"
	CostOfGoodsSold    = "Cost of Goods Sold"
	DiscountAccount    = "Discounts"
	FreightAccount     = "Freight"
)

var ErrUnbalanced = errors.New("journal debits do not equal credits")

type Line struct {
	Account string          `json:"account"`
	Side    Side            `json:"side"`
	Amount  decimal.Decimal `json:"amount"`
}

type Journal struct {
	InvoiceType billing.InvoiceType `json:"invoice_type"`
	Lines       []Line              `json:"lines"`
}

// BuildJournal turns rounded invoice totals into journal lines. The amounts
// satisfy AR|AP + Discount = Sales|COGS + Freight. Receivable invoices debit
// the receivable and discount; payable invoices mirror the sides.
func BuildJournal(t billing.InvoiceType, totals billing.Totals) (Journal, error) {
	tot := totals.Rounded()

	control, counter := AccountsReceivable, Sales
	left, right := Debit, Credit
	switch t {
	case billing.Receivable:
	case billing.Payable:
		control, counter = AccountsPayable, CostOfGoodsSold
		left, right = Credit, Debit
	default:
		return Journal{}, fmt.Errorf("unknown invoice type %q", t)
	}

	j := Journal{InvoiceType: t}
	add := func(account string, side Side, amount decimal.Decimal) {
		if amount.IsZero() {
			return
		}
		j.Lines = append(j.Lines, Line{Account: account, Side: side, Amount: amount})
	}
	add(control, left, tot.Total)
	add(DiscountAccount, left, tot.Discount)
	add(counter, right, tot.Subtotal)
	add(FreightAccount, right, tot.Freight)

	if err := j.Validate(); err != nil {
		return Journal{}, err
	}
	return j, nil
}

// Sums returns the debit and credit totals of the journal.
func (j Journal) Sums() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range j.Lines {
		if l.Side == Debit {
			debit = debit.Add(l.Amount)
		} else {
			credit = credit.Add(l.Amount)
		}
	}
	return debit, credit
}

// Validate enforces that debits exactly equal credits and no line is negative.
func (j Journal) Validate() error {
	for _, l := range j.Lines {
		if l.Amount.IsNegative() {
			return fmt.Errorf("negative amount %s on %s", l.Amount, l.Account)
		}
	}
	debit, credit := j.Sums()
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits %s != credits %s", ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}
