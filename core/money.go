package core

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of fraction digits money amounts are kept with.
const MoneyPlaces = 2

func init() {
	// money amounts are sent as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// IsMoney tells whether `d` has no more than MoneyPlaces fraction digits.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyPlaces))
}
