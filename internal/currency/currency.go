package currency

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownCurrency = errors.New("unknown currency code")

// Table maps a currency code to its rouble multiplier. Treat it as read-only
// once built; every aggregator receives the same value.
type Table map[string]float64

// DefaultRates are the fixed multipliers the reports have always used.
var DefaultRates = Table{
	"AZN": 35.68,
	"BYR": 23.91,
	"EUR": 59.90,
	"GEL": 21.74,
	"KGS": 0.76,
	"KZT": 0.13,
	"RUR": 1,
	"UAH": 1.64,
	"USD": 60.66,
	"UZS": 0.0055,
}

var displayNames = map[string]string{
	"AZN": "Manats",
	"BYR": "Belarusian roubles",
	"EUR": "Euro",
	"GEL": "Georgian lari",
	"KGS": "Kyrgyz som",
	"KZT": "Tenge",
	"RUR": "Roubles",
	"UAH": "Hryvnias",
	"USD": "Dollars",
	"UZS": "Uzbek som",
}

// Default returns a private copy of DefaultRates.
func Default() Table {
	return DefaultRates.Clone()
}

func (t Table) Clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Rate looks up the multiplier for code.
func (t Table) Rate(code string) (float64, error) {
	rate, ok := t[code]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownCurrency, code)
	}
	return rate, nil
}

// Normalize converts a salary fork into a single rouble value:
// (lo + hi) / 2 * rate(code).
func (t Table) Normalize(lo, hi float64, code string) (float64, error) {
	rate, err := t.Rate(code)
	if err != nil {
		return 0, err
	}
	return (lo + hi) / 2 * rate, nil
}

// Codes returns the known codes in alphabetical order.
func (t Table) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Validate rejects empty tables and non-positive multipliers.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("currency table is empty")
	}
	for _, code := range t.Codes() {
		if t[code] <= 0 {
			return fmt.Errorf("currency %s: rate must be positive, got %v", code, t[code])
		}
	}
	return nil
}

// DisplayName returns a human readable name, or the code itself.
func DisplayName(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return code
}
