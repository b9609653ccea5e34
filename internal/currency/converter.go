package currency

import (
	"context"
	"fmt"
	"sync"

	"clockwatch/internal/domain"
	"clockwatch/internal/ports"
)

// Converter converts currency pairs using the latest daily rates.
// Rates are cached per base currency for the lifetime of the Converter, so
// build one per interaction and drop it afterwards.
type Converter struct {
	source ports.RateSource

	mu    sync.Mutex
	cache map[string]*rateEntry
}

type rateEntry struct {
	once  sync.Once
	rates map[string]float64
	err   error
}

func NewConverter(source ports.RateSource) *Converter {
	return &Converter{source: source, cache: make(map[string]*rateEntry)}
}

// Convert returns pair expressed in the target currency. Identical currencies
// are returned unchanged without consulting the rate source.
func (c *Converter) Convert(ctx context.Context, pair domain.CurrencyPair, target string) (domain.CurrencyPair, error) {
	if pair.Currency == target {
		return pair, nil
	}
	rates, err := c.rates(ctx, pair.Currency)
	if err != nil {
		return domain.CurrencyPair{}, err
	}
	rate, ok := rates[target]
	if !ok {
		return domain.CurrencyPair{}, domain.NewError(domain.KindUpstreamUnavailable,
			fmt.Sprintf("no exchange rate from %s to %s", pair.Currency, target))
	}
	return domain.CurrencyPair{Amount: pair.Amount * rate, Currency: target}, nil
}

func (c *Converter) rates(ctx context.Context, base string) (map[string]float64, error) {
	c.mu.Lock()
	e, ok := c.cache[base]
	if !ok {
		e = &rateEntry{}
		c.cache[base] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.rates, e.err = c.source.LatestRates(ctx, base)
	})
	return e.rates, e.err
}
