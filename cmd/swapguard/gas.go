package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/ligun0805/swapguard/internal/chainrpc"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

var gasUnits uint64

var gasCmd = &cobra.Command{
	Use:   "gas",
	Short: "Show current fee conditions and what a swap would cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, _, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		rep, err := client.GasReport(ctx, settings.NetcheckBlocks, settings.NetcheckPcts)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rep)
		}
		printGasReport(rep, chains[rep.ChainID].Symbol)
		return nil
	},
}

func printGasReport(rep chainrpc.GasReport, symbol string) {
	fmt.Printf("[net] chainId=%d head=%d\n", rep.ChainID, rep.Head)
	fmt.Printf("[net] gasPrice: %s gwei\n", swapcore.FormatGwei(rep.GasPrice))
	if rep.BaseFee == nil {
		fmt.Println("[net] no baseFee, legacy pricing")
		cost := new(big.Int).Mul(new(big.Int).SetUint64(gasUnits), rep.GasPrice)
		fmt.Printf("[net] gas(swap≈%d) cost: %s %s\n", gasUnits, swapcore.FormatEther(cost), symbol)
		return
	}
	fmt.Printf("[net] baseFee(now): %s gwei\n", swapcore.FormatGwei(rep.BaseFee))
	if len(rep.Rewards) > 0 {
		fmt.Printf("[net] reward stats last %d blocks:\n", settings.NetcheckBlocks)
		for _, p := range settings.NetcheckPcts {
			st, ok := rep.Rewards[p]
			if !ok {
				continue
			}
			fmt.Printf("  p%-2d min/avg/max: %s / %s / %s gwei\n", p, swapcore.FormatGwei(st.Min), swapcore.FormatGwei(st.Avg), swapcore.FormatGwei(st.Max))
		}
	}
	if rep.FeeMarket == nil {
		return
	}
	units := new(big.Int).SetUint64(gasUnits)
	quoted := new(big.Int).Mul(units, rep.FeeMarket.MaxFeePerGas)
	peak := new(big.Int).Mul(units, chainrpc.FeeCap(rep.BaseFee, settings.BasefeeMul, peakTip(rep.Rewards, rep.FeeMarket.MaxPriorityFeePerGas)))
	fmt.Printf("[net] gas(swap≈%d) cost: quoted=%s %s, peak=%s %s\n", gasUnits, swapcore.FormatEther(quoted), symbol, swapcore.FormatEther(peak), symbol)
}

// peakTip is the highest observed reward across all percentiles, never lower
// than the node's suggested tip.
func peakTip(rewards map[int]chainrpc.RewardStats, suggested *big.Int) *big.Int {
	out := new(big.Int)
	if suggested != nil {
		out.Set(suggested)
	}
	for _, st := range rewards {
		if st.Max != nil && st.Max.Cmp(out) > 0 {
			out.Set(st.Max)
		}
	}
	return out
}

func init() {
	gasCmd.Flags().Uint64Var(&gasUnits, "units", 200000, "gas units to price")
	rootCmd.AddCommand(gasCmd)
}
