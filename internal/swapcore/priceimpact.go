package swapcore

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Candidate locations of a price-impact figure in a quote payload, checked in
// order. The first usable value wins.
var priceImpactPaths = []string{
	"data.priceImpact",
	"priceImpact",
	"result.priceImpact",
	"tx.priceImpact",
	"data.0.priceImpactPercentage",
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// PriceImpactPct extracts the price impact of a quote as a whole percentage.
//
// Plain numbers up to and including 1 are read as a fraction and scaled by
// 100, so 0.5 becomes 50 and exactly 1 becomes 100. Numeric strings are taken
// as-is. An object with a non-zero bps field is divided by 100.
func PriceImpactPct(quote any) (decimal.Decimal, bool) {
	if quote == nil {
		return decimal.Zero, false
	}
	for _, p := range priceImpactPaths {
		v, ok := Lookup(quote, splitPath(p)...)
		if !ok {
			continue
		}
		if pct, ok := impactFromValue(v); ok {
			return pct, true
		}
	}
	return decimal.Zero, false
}

func impactFromValue(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		return scaleFraction(decimal.NewFromFloat(x)), true
	case int:
		return scaleFraction(decimal.NewFromInt(int64(x))), true
	case int64:
		return scaleFraction(decimal.NewFromInt(x)), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return decimal.Zero, false
		}
		return scaleFraction(d), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case map[string]any:
		bps, ok := bpsValue(x["bps"])
		if !ok || bps.IsZero() {
			return decimal.Zero, false
		}
		return bps.Div(hundred), true
	}
	return decimal.Zero, false
}

func scaleFraction(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThan(one) {
		return d
	}
	return d.Mul(hundred)
}

func bpsValue(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		return decimal.NewFromFloat(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		return d, err == nil
	}
	return decimal.Zero, false
}
