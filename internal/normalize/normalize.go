// Package normalize canonicalizes names and coerces numeric fields of
// decoded JSON documents. Failures wrap pulse.ErrRecordCoercion and are
// scoped to the record being built.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vvka-141/pulseload/pkg/pulse"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// Title returns s title-cased, so "andaman-&-nicobar-islands" becomes
// "Andaman-&-Nicobar-Islands" and "NORTH GOA" becomes "North Goa".
func Title(s string) string {
	// A Caser is stateful; one per call keeps Title safe for concurrent use.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// Name coerces a required name field to a title-cased, non-empty string.
func Name(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		if v == nil {
			return "", fmt.Errorf("%s is missing: %w", field, pulse.ErrRecordCoercion)
		}
		return "", fmt.Errorf("%s: expected string, got %T: %w", field, v, pulse.ErrRecordCoercion)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s is empty: %w", field, pulse.ErrRecordCoercion)
	}
	return Title(s), nil
}

// Count coerces a required integer field. Only JSON numbers with an
// integral value are accepted; strings and booleans are rejected.
func Count(field string, v any) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("%s is missing: %w", field, pulse.ErrRecordCoercion)
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number: %w", field, n, pulse.ErrRecordCoercion)
		}
		return integral(field, d)
	case float64:
		return integral(field, decimal.NewFromFloat(n))
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("%s: expected integer, got %T: %w", field, v, pulse.ErrRecordCoercion)
	}
}

// CountOrZero is Count with absent or null values treated as zero.
func CountOrZero(field string, v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	return Count(field, v)
}

// Amount coerces a required monetary field exactly from its JSON text.
func Amount(field string, v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("%s is missing: %w", field, pulse.ErrRecordCoercion)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s: %q is not a number: %w", field, n, pulse.ErrRecordCoercion)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	default:
		return decimal.Zero, fmt.Errorf("%s: expected number, got %T: %w", field, v, pulse.ErrRecordCoercion)
	}
}

// PercentageOrZero coerces an optional fractional field; absent or null is zero.
func PercentageOrZero(field string, v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	d, err := Amount(field, v)
	if err != nil {
		return 0, err
	}
	f, _ := d.Float64()
	return f, nil
}

func integral(field string, d decimal.Decimal) (int64, error) {
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s: %s is not an integer: %w", field, d, pulse.ErrRecordCoercion)
	}
	if d.LessThan(minInt64) || d.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("%s: %s overflows int64: %w", field, d, pulse.ErrRecordCoercion)
	}
	return d.IntPart(), nil
}
