package domain

import "fmt"

// CurrencyPair is an amount in major units tagged with an ISO 4217 code.
// An amount of exactly zero means the rate is unset.
type CurrencyPair struct {
	Amount   float64
	Currency string
}

// IsSet reports whether p holds a usable, non-zero amount.
func (p *CurrencyPair) IsSet() bool {
	return p != nil && p.Amount != 0
}

func (p CurrencyPair) String() string {
	return fmt.Sprintf("%.2f %s", p.Amount, p.Currency)
}

// FirstRate returns the first set rate, or nil if none is.
func FirstRate(rates ...*CurrencyPair) *CurrencyPair {
	for _, r := range rates {
		if r.IsSet() {
			return r
		}
	}
	return nil
}
