package currency

import (
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/currency"
)

// Popular lists the codes offered first by autocomplete.
var Popular = []string{
	"USD", "EUR", "GBP", "CAD", "AUD", "NZD", "CHF", "JPY", "CNY", "INR",
	"SEK", "NOK", "DKK", "PLN", "CZK", "HUF", "BRL", "MXN", "ZAR", "SGD",
	"HKD", "KRW", "TRY", "ILS", "AED",
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "CN¥",
	"INR": "₹",
	"KRW": "₩",
	"ILS": "₪",
	"BRL": "R$",
	"CAD": "CA$",
	"AUD": "A$",
	"NZD": "NZ$",
	"HKD": "HK$",
	"MXN": "MX$",
}

// Normalize validates code as an ISO 4217 currency and returns it upper-cased.
func Normalize(code string) (string, bool) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", false
	}
	return unit.String(), true
}

// Format renders amount with the currency's symbol and thousands separators.
func Format(code string, amount float64) string {
	prefix, ok := symbols[code]
	if !ok {
		prefix = code + " "
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + prefix + humanize.FormatFloat("#,###.##", amount)
}
