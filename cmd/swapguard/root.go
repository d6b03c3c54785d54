package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ligun0805/swapguard/internal/chainrpc"
	"github.com/ligun0805/swapguard/internal/config"
	"github.com/ligun0805/swapguard/internal/logger"
)

var (
	rpcFlag     string
	chainFlag   uint64
	jsonOutput  bool
	verboseFlag bool

	settings config.Settings
	chains   config.Chains
)

var rootCmd = &cobra.Command{
	Use:   "swapguard",
	Short: "Pre-trade simulation and risk scoring for DEX aggregator swaps",
	Long: `swapguard dry-runs approval and swap transactions against live chain
state and scores the risk of sending them.

Settings come from the environment (.env and .env.local are loaded first).

Example:
  swapguard assess --from-token 0x... --to-token 0x... --spender 0x... --slippage-bps 80
  swapguard preflight --sender 0x... --swap-response swap.json --quote quote.json
  swapguard serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings = config.Load()
		level := settings.LogLevel
		if verboseFlag {
			level = "debug"
		} else if level == "" {
			level = "warn"
		}
		if err := logger.InitLoggerWithConfig(logger.Config{Stage: settings.Stage, Level: level}); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cs, err := config.LoadChains(settings.ChainsFile)
		if err != nil {
			return err
		}
		chains = cs
		if chainFlag == 0 {
			chainFlag = settings.ExpectedChainID
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rpcFlag, "rpc", "", "RPC endpoint (default: RPC_URL, then the chain profile)")
	rootCmd.PersistentFlags().Uint64Var(&chainFlag, "chain", 0, "expected chain id (default: EXPECTED_CHAIN_ID)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")
}

// dialChain connects to the configured RPC and reports the live chain id.
func dialChain(ctx context.Context) (*chainrpc.Client, uint64, error) {
	explicit := rpcFlag
	if explicit == "" {
		explicit = settings.RPCURL
	}
	url, err := chains.RPCFor(chainFlag, explicit)
	if err != nil {
		return nil, 0, err
	}
	c, err := chainrpc.Dial(ctx, url, chainrpc.Options{
		RPS:        settings.RPCRPS,
		Burst:      settings.RPCBurst,
		MaxRetries: settings.RPCMaxRetries,
		Timeout:    settings.RPCTimeout,
		BaseFeeMul: settings.BasefeeMul,
		Log:        logger.With(zap.String("rpc", redactURL(url))),
	})
	if err != nil {
		return nil, 0, err
	}
	id, err := c.ChainID(ctx)
	if err != nil {
		c.Close()
		return nil, 0, fmt.Errorf("chain id: %w", err)
	}
	return c, id, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
