package swapcore

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SimulationResult is a point-in-time prediction against current chain state.
// Treat it as stale once a new block lands.
type SimulationResult struct {
	OK     bool   `json:"ok"`
	Gas    uint64 `json:"gas,omitempty"`
	HasGas bool   `json:"-"`

	// At most one of GasPrice and MaxFeePerGas is set.
	GasPrice             *big.Int `json:"gasPrice,omitempty"`
	MaxFeePerGas         *big.Int `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas *big.Int `json:"maxPriorityFeePerGas,omitempty"`
	Fee                  *big.Int `json:"fee,omitempty"`

	CallSuccess      bool   `json:"callSuccess"`
	CallRevertReason string `json:"callRevertReason,omitempty"`
	Error            string `json:"error,omitempty"`
}

// EffectiveFeeRate is MaxFeePerGas, else GasPrice, else zero.
func (r SimulationResult) EffectiveFeeRate() *big.Int {
	switch {
	case r.MaxFeePerGas != nil:
		return r.MaxFeePerGas
	case r.GasPrice != nil:
		return r.GasPrice
	}
	return new(big.Int)
}

// Simulate estimates gas and fee for in as sent by sender, then dry-runs it
// with eth_call. Gas estimation failure fails the simulation; a reverting
// dry-run does not, it is reported through CallSuccess.
func Simulate(ctx context.Context, r ChainReader, sender common.Address, in TransactionIntent) (res SimulationResult) {
	if !in.Ready() {
		return SimulationResult{Error: "missing to/data for simulation"}
	}
	defer func() {
		if p := recover(); p != nil {
			res = SimulationResult{Error: fmt.Sprint(p)}
		}
	}()

	msg := in.callMsg(sender)

	gas, err := r.EstimateGas(ctx, msg)
	if err != nil {
		return SimulationResult{Error: err.Error()}
	}
	res.Gas, res.HasGas = gas, true

	if fm, err := r.EstimateFeeMarket(ctx); err == nil && fm.MaxFeePerGas != nil {
		res.MaxFeePerGas = fm.MaxFeePerGas
		res.MaxPriorityFeePerGas = fm.MaxPriorityFeePerGas
	} else if gp, err := r.GasPrice(ctx); err == nil {
		res.GasPrice = gp
	}
	res.Fee = new(big.Int).Mul(new(big.Int).SetUint64(gas), res.EffectiveFeeRate())

	if _, err := r.Call(ctx, msg); err != nil {
		res.CallRevertReason = RevertReason(err)
	} else {
		res.CallSuccess = true
	}

	res.OK = true
	return res
}
