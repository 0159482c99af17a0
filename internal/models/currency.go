package models

type Currency string

const (
	CurrencyNPR Currency = "NPR"
	CurrencyINR Currency = "INR"
)

func (c Currency) Valid() bool {
	return c == CurrencyNPR || c == CurrencyINR
}

// Other returns the opposite side of the till.
func (c Currency) Other() Currency {
	if c == CurrencyNPR {
		return CurrencyINR
	}
	return CurrencyNPR
}
