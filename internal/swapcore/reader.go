package swapcore

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -destination=../mocks/mock_chain_reader.go -package=mocks github.com/ligun0805/swapguard/internal/swapcore ChainReader

// ChainReader is the read/estimate surface of a node the core depends on.
// Implementations own retries and timeouts.
type ChainReader interface {
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	EstimateFeeMarket(ctx context.Context) (FeeMarket, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	CodeAt(ctx context.Context, addr common.Address) ([]byte, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// BlockNumberReader is the subset used by the finality tracker.
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// FeeMarket is an EIP-1559 fee quote.
type FeeMarket struct {
	MaxFeePerGas         *big.Int `json:"maxFeePerGas"`
	MaxPriorityFeePerGas *big.Int `json:"maxPriorityFeePerGas"`
}
