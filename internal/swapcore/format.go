package swapcore

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Human-readable helpers (ETH/gwei).
func FormatEther(x *big.Int) string {
	if x == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(new(big.Int).Set(x), big.NewInt(1_000_000_000_000_000_000))
	return r.FloatString(6)
}

func FormatGwei(x *big.Int) string {
	if x == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(new(big.Int).Set(x), big.NewInt(1_000_000_000))
	return r.FloatString(2)
}

// BpsToPct renders basis points as a percentage with two decimals.
func BpsToPct(bps int) string {
	return fmt.Sprintf("%.2f", float64(bps)/100)
}

// ShortAddress renders 0x1234...abcd.
func ShortAddress(a common.Address) string {
	h := a.Hex()
	return h[:6] + "..." + h[len(h)-4:]
}
