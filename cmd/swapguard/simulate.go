package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

type txFlags struct {
	sender       string
	to           string
	data         string
	value        string
	swapResponse string
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sender, "sender", "", "address the transaction is sent from (required)")
	cmd.Flags().StringVar(&f.to, "to", "", "target contract")
	cmd.Flags().StringVar(&f.data, "data", "", "calldata (0x...)")
	cmd.Flags().StringVar(&f.value, "value", "", "native value in wei (decimal or 0x hex)")
	cmd.Flags().StringVar(&f.swapResponse, "swap-response", "", "aggregator swap response: file, '-' for stdin, or inline JSON")
	_ = cmd.MarkFlagRequired("sender")
}

// intent builds the transaction from --swap-response, with explicit
// --to/--data/--value taking precedence. The decoded response is returned too.
func (f *txFlags) intent() (swapcore.TransactionIntent, any, error) {
	var in swapcore.TransactionIntent
	resp, err := readPayload("swap-response", f.swapResponse)
	if err != nil {
		return in, nil, err
	}
	if resp != nil {
		if got, ok := swapcore.ExtractIntent(resp); ok {
			in = got
		}
	}
	to, err := optAddr("to", f.to)
	if err != nil {
		return in, resp, err
	}
	if to != nil {
		in.To = to
	}
	data, err := optData("data", f.data)
	if err != nil {
		return in, resp, err
	}
	if len(data) > 0 {
		in.Data = data
	}
	if f.value != "" {
		v, err := parseWei(f.value)
		if err != nil {
			return in, resp, fmt.Errorf("--value: %w", err)
		}
		in.Value = v
	}
	if !in.Ready() {
		return in, resp, fmt.Errorf("need --to and --data, or a --swap-response carrying them")
	}
	return in, resp, nil
}

var simFlags txFlags

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Estimate gas and fee, then dry-run a transaction with eth_call",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := mustAddr("sender", simFlags.sender)
		if err != nil {
			return err
		}
		in, _, err := simFlags.intent()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client, chainID, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		res := swapcore.Simulate(ctx, client, sender, in)
		if jsonOutput {
			return printJSON(res)
		}
		printSimulation(res, chains[chainID].Symbol)
		return nil
	},
}

func init() {
	simFlags.register(simulateCmd)
	rootCmd.AddCommand(simulateCmd)
}
