package models

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the currency's conventional format,
// e.g. "$1,234.50" or "1.234,50 €". Amounts are rounded to the currency's
// minor unit.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
