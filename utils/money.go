package utils

import "github.com/shopspring/decimal"

// MoneyScale is the stored precision of currency amounts.
const MoneyScale = 2

// RoundMoney rounds d to currency precision (half away from zero).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}
