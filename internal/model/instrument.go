package model

// Classification groups instruments for filtering and display.
type Classification string

const (
	ClassEquity       Classification = "equity"
	ClassIndex        Classification = "index"
	ClassETF          Classification = "etf"
	ClassCurrencyPair Classification = "currency_pair"
	ClassCommodity    Classification = "commodity"
	ClassBond         Classification = "bond"
)

// Valid reports whether c is one of the known classifications.
func (c Classification) Valid() bool {
	switch c {
	case ClassEquity, ClassIndex, ClassETF, ClassCurrencyPair, ClassCommodity, ClassBond:
		return true
	}
	return false
}

// Instrument is a catalog entry for a tradable or quotable series.
// Symbol is the upstream identifier and is unique. Fields other than
// Currency are immutable once registered; Currency may be backfilled
// when it was unknown at registration time.
type Instrument struct {
	ID             int64          `json:"id"`
	Symbol         string         `json:"symbol"`
	Name           string         `json:"name"`
	Classification Classification `json:"classification"`
	Region         string         `json:"region"`
	Currency       string         `json:"currency,omitempty"` // ISO 4217, empty if unknown
}
