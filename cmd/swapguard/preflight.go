package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligun0805/swapguard/internal/logger"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

var (
	preTx     txFlags
	preSafety safetyFlags
)

var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Simulate and assess one swap concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		sender, err := mustAddr("sender", preTx.sender)
		if err != nil {
			return err
		}
		in, swapResp, err := preTx.intent()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, chainID, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		safety, err := preSafety.input(cmd, chainID, swapResp)
		if err != nil {
			return err
		}
		p := &swapcore.Preflighter{Reader: client, Log: logger.Log}
		rep := p.Run(ctx, swapcore.PreflightRequest{Sender: sender, Intent: in, Safety: safety})
		if jsonOutput {
			return printJSON(rep)
		}
		printReport(rep, chains[chainID].Symbol)
		return nil
	},
}

func printReport(rep swapcore.PreflightReport, symbol string) {
	printSimulation(rep.Simulation, symbol)
	if rep.Safety != nil {
		printSafety(*rep.Safety)
		return
	}
	if rep.SafetyError != "" {
		fmt.Println("=== SAFETY ===")
		fmt.Println(badMark("[X]"), "safety check failed:", rep.SafetyError)
	}
}

func init() {
	preTx.register(preflightCmd)
	preSafety.register(preflightCmd)
	rootCmd.AddCommand(preflightCmd)
}
