package aggregator

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
)

// QuoteRequest asks for a price quote.
type QuoteRequest struct {
	ChainID     uint64
	FromToken   string
	ToToken     string
	Amount      string // base units
	SlippageBps int
}

// SwapRequest asks for a ready-to-sign swap transaction.
type SwapRequest struct {
	QuoteRequest
	UserWallet string
	// Receiver defaults to UserWallet.
	Receiver string
}

// ApproveRequest asks for approve calldata toward the aggregator router.
type ApproveRequest struct {
	ChainID uint64
	Token   string
	Amount  string
}

// AllowanceRequest reads the aggregator's view of an ERC-20 allowance.
type AllowanceRequest struct {
	ChainID uint64
	Token   string
	Owner   string
	Spender string
}

// SlippageFraction renders bps as the decimal fraction the API expects
// (50 -> "0.005").
func SlippageFraction(bps int) string {
	return decimal.New(int64(bps), -4).String()
}

func chain(id uint64) string { return strconv.FormatUint(id, 10) }

func (r QuoteRequest) params() map[string]string {
	p := map[string]string{
		"chainId":          chain(r.ChainID),
		"fromTokenAddress": r.FromToken,
		"toTokenAddress":   r.ToToken,
		"amount":           r.Amount,
	}
	if r.SlippageBps > 0 {
		p["slippage"] = SlippageFraction(r.SlippageBps)
	}
	return p
}

// Quote calls GET /quote.
func (c *Client) Quote(ctx context.Context, r QuoteRequest) (any, error) {
	return c.get(ctx, "/quote", r.params())
}

// Swap calls GET /swap in exact-in mode.
func (c *Client) Swap(ctx context.Context, r SwapRequest) (any, error) {
	p := r.params()
	receiver := r.Receiver
	if receiver == "" {
		receiver = r.UserWallet
	}
	p["userWalletAddress"] = r.UserWallet
	p["receiverAddress"] = receiver
	p["swapMode"] = "exactIn"
	return c.get(ctx, "/swap", p)
}

// ApproveTransaction calls GET /approve-transaction.
func (c *Client) ApproveTransaction(ctx context.Context, r ApproveRequest) (any, error) {
	return c.get(ctx, "/approve-transaction", map[string]string{
		"chainId":              chain(r.ChainID),
		"tokenContractAddress": r.Token,
		"approveAmount":        r.Amount,
	})
}

// Allowance calls GET /approve/allowance.
func (c *Client) Allowance(ctx context.Context, r AllowanceRequest) (any, error) {
	return c.get(ctx, "/approve/allowance", map[string]string{
		"chainId":              chain(r.ChainID),
		"tokenContractAddress": r.Token,
		"owner":                r.Owner,
		"spender":              r.Spender,
	})
}
