package swapcore_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

func TestPriceImpactPct(t *testing.T) {
	tests := []struct {
		name  string
		quote string
		want  string
		found bool
	}{
		{"fraction is rescaled", `{"priceImpact":0.5}`, "50", true},
		{"percent kept", `{"priceImpact":3}`, "3", true},
		{"one is a whole fraction", `{"priceImpact":1}`, "100", true},
		{"just above one kept", `{"priceImpact":1.5}`, "1.5", true},
		{"bps object", `{"priceImpact":{"bps":250}}`, "2.5", true},
		{"numeric string as-is", `{"priceImpact":"0.4"}`, "0.4", true},
		{"nested under data", `{"data":{"priceImpact":2.5}}`, "2.5", true},
		{"result path", `{"result":{"priceImpact":"7"}}`, "7", true},
		{"aggregator native field", `{"code":"0","data":[{"priceImpactPercentage":"-0.12"}]}`, "-0.12", true},
		{"data wins over root", `{"data":{"priceImpact":4},"priceImpact":9}`, "4", true},
		{"unparseable skipped", `{"data":{"priceImpact":"n/a"},"priceImpact":6}`, "6", true},
		{"zero bps skipped", `{"priceImpact":{"bps":0}}`, "", false},
		{"blank string skipped", `{"priceImpact":"  "}`, "", false},
		{"absent", `{"data":{}}`, "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q, err := swapcore.DecodePayload([]byte(tc.quote))
			require.NoError(t, err)

			got, ok := swapcore.PriceImpactPct(q)
			require.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.want, got.String())
			}
		})
	}
}

func TestPriceImpactPctNil(t *testing.T) {
	_, ok := swapcore.PriceImpactPct(nil)
	assert.False(t, ok)
}

func TestPriceImpactTier(t *testing.T) {
	tests := []struct {
		pct     string
		sev     swapcore.Severity
		penalty int
		fires   bool
	}{
		{"0", "", 0, false},
		{"1", "", 0, false},
		{"1.000000000000000001", swapcore.SeverityLow, 5, true},
		{"1.01", swapcore.SeverityLow, 5, true},
		{"2", swapcore.SeverityLow, 5, true},
		{"2.5", swapcore.SeverityMedium, 15, true},
		{"5", swapcore.SeverityMedium, 15, true},
		{"5.01", swapcore.SeverityHigh, 30, true},
		{"50", swapcore.SeverityHigh, 30, true},
	}
	for _, tc := range tests {
		sev, penalty, ok := swapcore.PriceImpactTier(decimal.RequireFromString(tc.pct))
		assert.Equal(t, tc.fires, ok, "pct=%s", tc.pct)
		assert.Equal(t, tc.sev, sev, "pct=%s", tc.pct)
		assert.Equal(t, tc.penalty, penalty, "pct=%s", tc.pct)
	}
}
