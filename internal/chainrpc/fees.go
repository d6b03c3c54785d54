package chainrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

// RewardStats aggregates min/avg/max priority fee for one percentile.
type RewardStats struct {
	Min *big.Int `json:"min"`
	Avg *big.Int `json:"avg"`
	Max *big.Int `json:"max"`
}

// GasReport is a snapshot of current fee conditions.
type GasReport struct {
	ChainID   uint64              `json:"chainId"`
	Head      uint64              `json:"head"`
	GasPrice  *big.Int            `json:"gasPrice,omitempty"`
	BaseFee   *big.Int            `json:"baseFee,omitempty"`
	FeeMarket *swapcore.FeeMarket `json:"feeMarket,omitempty"`
	Rewards   map[int]RewardStats `json:"rewards,omitempty"`
}

// FeeHistoryStats returns min/avg/max priority fees over the last blocks for
// each percentile.
func (c *Client) FeeHistoryStats(ctx context.Context, blocks int, percentiles []int) (map[int]RewardStats, error) {
	if blocks <= 0 {
		blocks = 100
	}
	if len(percentiles) == 0 {
		percentiles = []int{50, 95, 99}
	}
	pcts := make([]float64, len(percentiles))
	for i, p := range percentiles {
		pcts[i] = float64(p)
	}
	fh, err := withRetry(ctx, c, "eth_feeHistory", func(ctx context.Context) (*ethereum.FeeHistory, error) {
		return c.be.FeeHistory(ctx, uint64(blocks), nil, pcts)
	})
	if err != nil {
		return nil, err
	}
	return rewardStats(fh.Reward, percentiles)
}

func rewardStats(rows [][]*big.Int, percentiles []int) (map[int]RewardStats, error) {
	if len(rows) == 0 {
		return nil, errors.New("feeHistory: empty reward")
	}
	res := make(map[int]RewardStats, len(percentiles))
	for _, p := range percentiles {
		res[p] = RewardStats{Avg: new(big.Int), Max: new(big.Int)}
	}
	for _, row := range rows {
		for j := 0; j < len(percentiles) && j < len(row); j++ {
			v := row[j]
			if v == nil {
				continue
			}
			st := res[percentiles[j]]
			if st.Min == nil || v.Cmp(st.Min) < 0 {
				st.Min = new(big.Int).Set(v)
			}
			if v.Cmp(st.Max) > 0 {
				st.Max = new(big.Int).Set(v)
			}
			st.Avg.Add(st.Avg, v)
			res[percentiles[j]] = st
		}
	}
	n := big.NewInt(int64(len(rows)))
	for p, st := range res {
		st.Avg.Div(st.Avg, n)
		if st.Min == nil {
			st.Min = new(big.Int)
		}
		res[p] = st
	}
	return res, nil
}

// GasReport gathers chain id, legacy price, fee market quote and reward
// percentiles. Only the chain id and gas price are required; the rest are
// best effort.
func (c *Client) GasReport(ctx context.Context, blocks int, percentiles []int) (GasReport, error) {
	var rep GasReport
	id, err := c.ChainID(ctx)
	if err != nil {
		return rep, fmt.Errorf("chain id: %w", err)
	}
	rep.ChainID = id

	gp, err := c.GasPrice(ctx)
	if err != nil {
		return rep, fmt.Errorf("gas price: %w", err)
	}
	rep.GasPrice = gp

	baseFee, head, err := c.LatestBaseFee(ctx)
	if head != nil {
		rep.Head = head.Uint64()
	}
	if err != nil {
		c.log.Debug("no base fee, legacy pricing only")
		return rep, nil
	}
	rep.BaseFee = baseFee

	if fm, err := c.EstimateFeeMarket(ctx); err == nil {
		rep.FeeMarket = &fm
	}
	if stats, err := c.FeeHistoryStats(ctx, blocks, percentiles); err == nil {
		rep.Rewards = stats
	} else {
		c.log.Debug("fee history unavailable")
	}
	return rep, nil
}
