package model

import "github.com/shopspring/decimal"

// Amounts are persisted as integer cents so repeated debits never drift.

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// HasCents reports whether d fits in two decimal places.
func HasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
