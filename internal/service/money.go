package service

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jask/ledgerdesk/internal/ledger"
)

// ParseCents converts a decimal amount such as "1,500.25" into cents.
func ParseCents(raw string) (int64, error) {
	d, ok := ledger.ParseAmount(raw)
	if !ok {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// CentsOrZero is ParseCents with invalid input mapped to zero.
func CentsOrZero(raw string) int64 {
	c, err := ParseCents(raw)
	if err != nil {
		return 0
	}
	return c
}

// FormatCents renders cents as a plain decimal without trailing zeros.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).String()
}

// CentsNumber renders cents for JSON bodies.
func CentsNumber(cents int64) json.Number {
	return json.Number(FormatCents(cents))
}
