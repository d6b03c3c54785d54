package swapcore_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

var router = common.HexToAddress("0x2222222222222222222222222222222222222222")

func TestEncodeDecodeApprove(t *testing.T) {
	amount := uint256.NewInt(1_000_000)
	data := swapcore.EncodeApprove(router, amount)
	require.Len(t, data, 68)
	assert.Equal(t, "095ea7b3", common.Bytes2Hex(data[:4]))

	p, ok := swapcore.DecodeApprove(data)
	require.True(t, ok)
	assert.Equal(t, router, p.Spender)
	assert.True(t, p.Amount.Eq(amount))
}

func TestDecodeApproveRejects(t *testing.T) {
	valid := swapcore.EncodeApprove(router, uint256.NewInt(1))

	tests := []struct {
		name string
		data []byte
	}{
		{"nil", nil},
		{"selector only", valid[:4]},
		{"truncated amount", valid[:67]},
		{"transfer selector", append(common.FromHex("0xa9059cbb"), valid[4:]...)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := swapcore.DecodeApprove(tc.data)
			assert.False(t, ok)
		})
	}
}

func TestIsUnlimited(t *testing.T) {
	maxAmount := new(uint256.Int).SetAllOne()
	half := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	belowHalf := new(uint256.Int).Sub(half, uint256.NewInt(1))

	assert.True(t, swapcore.IsUnlimited(maxAmount))
	assert.True(t, swapcore.IsUnlimited(half))
	assert.False(t, swapcore.IsUnlimited(belowHalf))
	assert.False(t, swapcore.IsUnlimited(uint256.NewInt(0)))
	assert.False(t, swapcore.IsUnlimited(nil))
}
