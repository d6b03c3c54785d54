package main

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/swapguard/internal/chainrpc"
)

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"insufficient funds for gas * price + value", "insufficient native balance to cover gas"},
		{"429 Too Many Requests", "RPC rate limited (try lowering RPC_RPS)"},
		{"invalid character '<' looking for beginning of value", "non-JSON/HTML response (proxy/cf?)"},
		{"dial tcp: lookup rpc.example: no such host", "network/DNS error"},
		{"context deadline exceeded", "RPC timeout"},
		{"execution reverted: ERC20: transfer amount exceeds allowance", "token allowance too low (approve first)"},
		{"something else", "something else"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, friendlyError(tt.in), tt.in)
	}
}

func TestTokenAmounts(t *testing.T) {
	v, err := toBaseUnits("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, "1500000", v.String())

	v, err = toBaseUnits("0.000001", 6)
	require.NoError(t, err)
	assert.Equal(t, "1", v.String())

	v, err = toBaseUnits("0", 18)
	require.NoError(t, err)
	assert.Equal(t, "0", v.String())

	_, err = toBaseUnits("0.0000001", 6)
	assert.Error(t, err)
	_, err = toBaseUnits("abc", 6)
	assert.Error(t, err)

	assert.Equal(t, "1.5", formatTokens(big.NewInt(1_500_000), 6))
	assert.Equal(t, "0.000001", formatTokens(big.NewInt(1), 6))
	assert.Equal(t, "2", formatTokens(big.NewInt(2_000_000), 6))
	assert.Equal(t, "42", formatTokens(big.NewInt(42), 0))
	assert.Equal(t, "0", formatTokens(nil, 18))
}

func TestParseWei(t *testing.T) {
	v, err := parseWei("1000")
	require.NoError(t, err)
	assert.Equal(t, "1000", v.String())

	v, err = parseWei("0x10")
	require.NoError(t, err)
	assert.Equal(t, "16", v.String())

	_, err = parseWei("-1")
	assert.Error(t, err)
	_, err = parseWei("1e18")
	assert.Error(t, err)
}

func TestReadPayloadInline(t *testing.T) {
	v, err := readPayload("quote", `{"data":{"priceImpact":"1.25"}}`)
	require.NoError(t, err)
	require.NotNil(t, v)

	v, err = readPayload("quote", "")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = readPayload("quote", "/does/not/exist.json")
	assert.ErrorContains(t, err, "--quote")
}

func TestOptAddr(t *testing.T) {
	a, err := optAddr("to", "")
	require.NoError(t, err)
	assert.Nil(t, a)

	_, err = optAddr("to", "0x1234")
	assert.ErrorContains(t, err, "--to")

	_, err = mustAddr("sender", "")
	assert.ErrorContains(t, err, "--sender is required")
}

func TestPeakTip(t *testing.T) {
	rewards := map[int]chainrpc.RewardStats{
		50: {Max: big.NewInt(3)},
		99: {Max: big.NewInt(9)},
	}
	assert.Equal(t, "9", peakTip(rewards, big.NewInt(2)).String())
	assert.Equal(t, "12", peakTip(rewards, big.NewInt(12)).String())
	assert.Equal(t, "0", peakTip(nil, nil).String())
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://rpc.example.org", redactURL("https://rpc.example.org"))
	assert.Equal(t, "https://rpc.example.org/***", redactURL("https://rpc.example.org/v2/secret-key"))
	assert.Equal(t, "<rpc>", redactURL("not a url"))
}
