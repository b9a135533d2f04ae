package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes receivable (sales) from payable (purchase) invoices.
type InvoiceType string

const (
	Receivable InvoiceType = "receivable"
	Payable    InvoiceType = "payable"
)

// DefaultDiscountRate is applied to new receivable invoices.
var DefaultDiscountRate = decimal.RequireFromString("0.02")

// Discount is either a rate of the subtotal or an absolute amount.
type Discount struct {
	rate     decimal.Decimal
	amount   decimal.Decimal
	absolute bool
}

// DiscountRate is a discount of rate times the subtotal.
func DiscountRate(rate decimal.Decimal) Discount {
	return Discount{rate: rate}
}

// DiscountAmount is a fixed discount that is never rescaled.
func DiscountAmount(amount decimal.Decimal) Discount {
	return Discount{amount: amount, absolute: true}
}

// DiscountFor resolves the discount policy of an invoice. An explicit amount
// always wins; otherwise receivable invoices get rate and payable ones none.
func DiscountFor(t InvoiceType, explicit *decimal.Decimal, rate decimal.Decimal) Discount {
	if explicit != nil {
		return DiscountAmount(*explicit)
	}
	if t == Receivable {
		return DiscountRate(rate)
	}
	return DiscountAmount(decimal.Zero)
}

// Absolute reports whether the discount is a fixed amount.
func (d Discount) Absolute() bool {
	return d.absolute
}

func (d Discount) resolve(subtotal decimal.Decimal) decimal.Decimal {
	if d.absolute {
		return d.amount
	}
	return subtotal.Mul(d.rate)
}

// Totals holds the invoice money summary. Total is always
// Subtotal + Freight - Discount.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Freight  decimal.Decimal `json:"freight"`
	Total    decimal.Decimal `json:"total"`
}

// Rounded returns the totals at currency precision with Total recomputed from
// the rounded parts, so the identity holds on the stored values too.
func (t Totals) Rounded() Totals {
	r := Totals{
		Subtotal: t.Subtotal.Round(2),
		Discount: t.Discount.Round(2),
		Freight:  t.Freight.Round(2),
	}
	r.Total = r.Subtotal.Add(r.Freight).Sub(r.Discount)
	return r
}

// ComputeTotals aggregates lines into the invoice totals.
// Lines without a product are excluded. It fails with a *ValidationError when
// no line has a product, a description and a positive quantity.
func ComputeTotals(lines []LineItem, discount Discount, freight decimal.Decimal) (Totals, error) {
	subtotal := decimal.Zero
	valid := 0
	var incomplete []int

	for i, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			incomplete = append(incomplete, i)
			continue
		}
		subtotal = subtotal.Add(l.Amount)
		if l.Kind == KindPrimary && l.Quantity > 0 && strings.TrimSpace(l.Description) != "" {
			valid++
		} else if l.Kind != KindFree {
			incomplete = append(incomplete, i)
		}
	}

	if valid == 0 {
		return Totals{}, &ValidationError{Err: ErrNoValidLines, Lines: incomplete}
	}

	d := discount.resolve(subtotal)
	return Totals{
		Subtotal: subtotal,
		Discount: d,
		Freight:  freight,
		Total:    subtotal.Add(freight).Sub(d),
	}, nil
}
