package billing

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DateLayout = "02-Jan-2006"

// Formatter renders money, weights and dates for printed documents.
// Values are rounded here and nowhere earlier.
type Formatter struct {
	Symbol  string
	printer *message.Printer
}

func NewFormatter(symbol string) Formatter {
	return Formatter{Symbol: symbol, printer: message.NewPrinter(language.English)}
}

func (f Formatter) p() *message.Printer {
	if f.printer == nil {
		return message.NewPrinter(language.English)
	}
	return f.printer
}

// Money formats d with thousands separators and two decimals, e.g. "$1,234.50".
func (f Formatter) Money(d decimal.Decimal) string {
	v := d.Round(2)
	if v.IsNegative() {
		return "-" + f.Symbol + f.p().Sprintf("%.2f", v.Neg().InexactFloat64())
	}
	return f.Symbol + f.p().Sprintf("%.2f", v.InexactFloat64())
}

// Amount formats d like Money without the currency symbol.
func (f Formatter) Amount(d decimal.Decimal) string {
	return f.p().Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func (f Formatter) Weight(kgs decimal.Decimal) string {
	return f.p().Sprintf("%.2f kg", kgs.Round(2).InexactFloat64())
}

func (f Formatter) Quantity(n int) string {
	return f.p().Sprintf("%d", n)
}

func (f Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DueDate is the invoice date shifted by the payment terms.
func DueDate(date time.Time, termsDays int) time.Time {
	return date.AddDate(0, 0, termsDays)
}
