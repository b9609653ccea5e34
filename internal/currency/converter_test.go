package currency

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockwatch/internal/domain"
)

type fakeRates struct {
	mu    sync.Mutex
	calls map[string]int
	rates map[string]map[string]float64
	err   error
}

func (f *fakeRates) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[base]++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates[base], nil
}

func TestConverter_SameCurrencyShortCircuits(t *testing.T) {
	src := &fakeRates{err: errors.New("must not be called")}
	conv := NewConverter(src)

	pair := domain.CurrencyPair{Amount: 12.345, Currency: "USD"}
	got, err := conv.Convert(context.Background(), pair, "USD")

	require.NoError(t, err)
	assert.Equal(t, pair, got)
	assert.Empty(t, src.calls)
}

func TestConverter_ConvertsAndCachesPerBase(t *testing.T) {
	src := &fakeRates{rates: map[string]map[string]float64{
		"USD": {"EUR": 0.5, "GBP": 0.25},
	}}
	conv := NewConverter(src)
	ctx := context.Background()

	got, err := conv.Convert(ctx, domain.CurrencyPair{Amount: 40, Currency: "USD"}, "EUR")
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyPair{Amount: 20, Currency: "EUR"}, got)

	got, err = conv.Convert(ctx, domain.CurrencyPair{Amount: 40, Currency: "USD"}, "GBP")
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyPair{Amount: 10, Currency: "GBP"}, got)

	assert.Equal(t, 1, src.calls["USD"])
}

func TestConverter_ConcurrentLookupsShareOneFetch(t *testing.T) {
	src := &fakeRates{rates: map[string]map[string]float64{"EUR": {"USD": 2}}}
	conv := NewConverter(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := conv.Convert(context.Background(), domain.CurrencyPair{Amount: 1, Currency: "EUR"}, "USD")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls["EUR"])
}

func TestConverter_Errors(t *testing.T) {
	t.Run("source failure propagates", func(t *testing.T) {
		boom := domain.NewError(domain.KindUpstreamUnavailable, "rates down")
		conv := NewConverter(&fakeRates{err: boom})
		_, err := conv.Convert(context.Background(), domain.CurrencyPair{Amount: 1, Currency: "USD"}, "EUR")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing target rate", func(t *testing.T) {
		conv := NewConverter(&fakeRates{rates: map[string]map[string]float64{"USD": {}}})
		_, err := conv.Convert(context.Background(), domain.CurrencyPair{Amount: 1, Currency: "USD"}, "XYZ")
		assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
	})
}

func TestNormalize(t *testing.T) {
	code, ok := Normalize("eur")
	assert.True(t, ok)
	assert.Equal(t, "EUR", code)

	_, ok = Normalize("euro")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.50", Format("USD", 1234.5))
	assert.Equal(t, "$50.00", Format("USD", 50))
	assert.Equal(t, "-£10.00", Format("GBP", -10))
	assert.Equal(t, "SEK 99.00", Format("SEK", 99))
}
