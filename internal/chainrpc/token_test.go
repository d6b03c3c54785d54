package chainrpc

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tokenAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	ownerAddr = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

func word(v int64) []byte { return common.LeftPadBytes(big.NewInt(v).Bytes(), 32) }

func TestTokenInfo(t *testing.T) {
	symbol := append(append(word(32), word(4)...), common.RightPadBytes([]byte("USDT"), 32)...)
	be := &fakeBackend{calls: map[string][]byte{
		"0x313ce567": word(6),
		"0x95d89b41": symbol,
		"0x70a08231": word(1_500_000),
		"0xdd62ed3e": word(42),
	}}
	c := testClient(be, 0)
	spender := common.HexToAddress("0x3000000000000000000000000000000000000003")

	info, err := c.TokenInfo(context.Background(), tokenAddr, &ownerAddr, &spender)
	require.NoError(t, err)
	assert.Equal(t, 6, info.Decimals)
	assert.Equal(t, "USDT", info.Symbol)
	assert.Equal(t, "1500000", info.Balance.String())
	assert.Equal(t, "42", info.Allowance.String())
}

func TestDecodeSymbolBytes32(t *testing.T) {
	assert.Equal(t, "MKR", decodeSymbol(common.RightPadBytes([]byte("MKR"), 32)))
}

func TestCheckRestrictions(t *testing.T) {
	be := &fakeBackend{calls: map[string][]byte{
		hexutil.Encode(sel("paused()")):               word(1),
		hexutil.Encode(sel("isBlacklisted(address)")): word(0),
		hexutil.Encode(sel("blacklisted(address)")):   word(1),
	}}
	tr := testClient(be, 0).CheckRestrictions(context.Background(), tokenAddr, ownerAddr)

	assert.True(t, tr.Paused)
	assert.False(t, tr.TransferDisabled)
	assert.True(t, tr.Blacklisted)
	assert.True(t, tr.Blocked())
	assert.Equal(t, "paused, blacklisted", tr.Summary())
	assert.Equal(t, "none", TokenRestrictions{}.Summary())
}
