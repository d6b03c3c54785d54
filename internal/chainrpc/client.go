// Package chainrpc is the node-facing side of the engine: an ethclient wrapper
// that rate limits, retries transient failures and bounds every call.
package chainrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

// ErrFeeMarketUnsupported is returned by EstimateFeeMarket on chains whose
// head carries no base fee.
var ErrFeeMarketUnsupported = errors.New("no baseFee (pre-1559?)")

// backend is the ethclient surface the client uses.
type backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	FeeHistory(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	Close()
}

// Options tune the client. Zero values fall back to defaults.
type Options struct {
	RPS        float64
	Burst      int
	MaxRetries int
	Timeout    time.Duration
	// BaseFeeMul scales the head base fee when building a fee cap.
	BaseFeeMul int64
	Log        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.RPS <= 0 {
		o.RPS = 10
	}
	if o.Burst <= 0 {
		o.Burst = 5
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.Timeout <= 0 {
		o.Timeout = 12 * time.Second
	}
	if o.BaseFeeMul <= 0 {
		o.BaseFeeMul = 2
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// Client implements swapcore.ChainReader over JSON-RPC.
type Client struct {
	be      backend
	limiter *rate.Limiter
	opts    Options
	log     *zap.Logger
}

var _ swapcore.ChainReader = (*Client)(nil)

// Dial connects to rpcURL.
func Dial(ctx context.Context, rpcURL string, opts Options) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return newClient(ec, opts), nil
}

func newClient(be backend, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		be:      be,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), opts.Burst),
		opts:    opts,
		log:     opts.Log,
	}
}

// Close releases the underlying connection.
func (c *Client) Close() { c.be.Close() }

// ChainID returns the connected chain id.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := withRetry(ctx, c, "eth_chainId", func(ctx context.Context) (*big.Int, error) {
		return c.be.ChainID(ctx)
	})
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return withRetry(ctx, c, "eth_blockNumber", c.be.BlockNumber)
}

func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return withRetry(ctx, c, "eth_estimateGas", func(ctx context.Context) (uint64, error) {
		return c.be.EstimateGas(ctx, msg)
	})
}

func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	return withRetry(ctx, c, "eth_gasPrice", c.be.SuggestGasPrice)
}

func (c *Client) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return withRetry(ctx, c, "eth_call", func(ctx context.Context) ([]byte, error) {
		return c.be.CallContract(ctx, msg, nil)
	})
}

func (c *Client) CodeAt(ctx context.Context, addr common.Address) ([]byte, error) {
	return withRetry(ctx, c, "eth_getCode", func(ctx context.Context) ([]byte, error) {
		return c.be.CodeAt(ctx, addr, nil)
	})
}

// Receipt returns the receipt of an included transaction. A pending or unknown
// hash yields ethereum.NotFound.
func (c *Client) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return withRetry(ctx, c, "eth_getTransactionReceipt", func(ctx context.Context) (*types.Receipt, error) {
		return c.be.TransactionReceipt(ctx, hash)
	})
}

// LatestBaseFee returns the head base fee and number.
func (c *Client) LatestBaseFee(ctx context.Context) (baseFee *big.Int, head *big.Int, err error) {
	h, err := withRetry(ctx, c, "eth_getBlockByNumber", func(ctx context.Context) (*types.Header, error) {
		return c.be.HeaderByNumber(ctx, nil)
	})
	if err != nil {
		return nil, nil, err
	}
	if h.BaseFee == nil {
		return nil, new(big.Int).Set(h.Number), ErrFeeMarketUnsupported
	}
	return new(big.Int).Set(h.BaseFee), new(big.Int).Set(h.Number), nil
}

// EstimateFeeMarket quotes maxFee = baseFee*BaseFeeMul + tip, with the tip from
// eth_maxPriorityFeePerGas.
func (c *Client) EstimateFeeMarket(ctx context.Context) (swapcore.FeeMarket, error) {
	baseFee, _, err := c.LatestBaseFee(ctx)
	if err != nil {
		return swapcore.FeeMarket{}, err
	}
	tip, err := withRetry(ctx, c, "eth_maxPriorityFeePerGas", c.be.SuggestGasTipCap)
	if err != nil {
		return swapcore.FeeMarket{}, fmt.Errorf("priority fee: %w", err)
	}
	return swapcore.FeeMarket{
		MaxFeePerGas:         FeeCap(baseFee, c.opts.BaseFeeMul, tip),
		MaxPriorityFeePerGas: tip,
	}, nil
}

// FeeCap is baseFee*mul + tip.
func FeeCap(baseFee *big.Int, mul int64, tip *big.Int) *big.Int {
	out := new(big.Int).Mul(baseFee, big.NewInt(mul))
	return out.Add(out, tip)
}
