package swapcore

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// approve(address,uint256)
var approveSelector = common.FromHex("0x095ea7b3")

var (
	maxUint256         = new(uint256.Int).SetAllOne()
	unlimitedThreshold = new(uint256.Int).Lsh(uint256.NewInt(1), 255)
)

// ApprovalParameters is the decoded form of ERC-20 approve calldata.
type ApprovalParameters struct {
	Spender common.Address
	Amount  *uint256.Int
}

// EncodeApprove builds approve(spender, amount) calldata.
func EncodeApprove(spender common.Address, amount *uint256.Int) []byte {
	out := make([]byte, 0, 4+32+32)
	out = append(out, approveSelector...)
	out = append(out, common.LeftPadBytes(spender.Bytes(), 32)...)
	word := amount.Bytes32()
	return append(out, word[:]...)
}

// DecodeApprove decodes approve calldata. Mismatched selectors or short
// payloads report false rather than an error.
func DecodeApprove(data []byte) (ApprovalParameters, bool) {
	if len(data) < 4+64 || !bytes.Equal(data[:4], approveSelector) {
		return ApprovalParameters{}, false
	}
	args := data[4:]
	return ApprovalParameters{
		Spender: common.BytesToAddress(args[12:32]),
		Amount:  new(uint256.Int).SetBytes32(args[32:64]),
	}, true
}

// IsUnlimited reports whether an allowance is effectively infinite:
// the max uint256 or anything at or above 2^255.
func IsUnlimited(amount *uint256.Int) bool {
	if amount == nil {
		return false
	}
	return amount.Eq(maxUint256) || !amount.Lt(unlimitedThreshold)
}
