package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ligun0805/swapguard/internal/logger"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

type safetyFlags struct {
	fromToken       string
	toToken         string
	spender         string
	slippageBps     int
	approveData     string
	quote           string
	approveResponse string
}

func (f *safetyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fromToken, "from-token", "", "token being sold")
	cmd.Flags().StringVar(&f.toToken, "to-token", "", "token being bought")
	cmd.Flags().StringVar(&f.spender, "spender", "", "approval spender (default: taken from --approve-response)")
	cmd.Flags().IntVar(&f.slippageBps, "slippage-bps", 0, "slippage tolerance in bps (default: DEFAULT_SLIPPAGE_BPS)")
	cmd.Flags().StringVar(&f.approveData, "approve-data", "", "approve calldata (0x...)")
	cmd.Flags().StringVar(&f.quote, "quote", "", "aggregator quote response: file, '-' for stdin, or inline JSON")
	cmd.Flags().StringVar(&f.approveResponse, "approve-response", "", "aggregator approve-transaction response")
}

// input assembles a SafetyInput. walletChain is the chain the wallet is on,
// normally the live chain id of the RPC. swapResp, when present, backs the
// quote for price impact.
func (f *safetyFlags) input(cmd *cobra.Command, walletChain uint64, swapResp any) (swapcore.SafetyInput, error) {
	in := swapcore.SafetyInput{
		ChainID:            walletChain,
		ExpectedChainID:    chainFlag,
		DefaultSlippageBps: settings.DefaultSlippageBps,
	}
	var err error
	if in.FromToken, err = optAddr("from-token", f.fromToken); err != nil {
		return in, err
	}
	if in.ToToken, err = optAddr("to-token", f.toToken); err != nil {
		return in, err
	}
	if in.Spender, err = optAddr("spender", f.spender); err != nil {
		return in, err
	}
	if cmd.Flags().Changed("slippage-bps") {
		bps := f.slippageBps
		in.SlippageBps = &bps
	}
	if in.ApproveData, err = optData("approve-data", f.approveData); err != nil {
		return in, err
	}

	approveResp, err := readPayload("approve-response", f.approveResponse)
	if err != nil {
		return in, err
	}
	if approveResp != nil {
		if in.Spender == nil {
			if sp, ok := swapcore.ExtractSpender(approveResp); ok {
				in.Spender = &sp
			}
		}
		if in.ApproveData == nil {
			if data, ok := swapcore.ExtractApproveData(approveResp); ok {
				in.ApproveData = data
			}
		}
	}

	if in.Quote, err = readPayload("quote", f.quote); err != nil {
		return in, err
	}
	if in.Quote == nil {
		in.Quote = swapResp
	}
	return in, nil
}

var (
	assessFlags       safetyFlags
	assessSwapPayload string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score the risk of a swap: chain, slippage, contracts, allowance, price impact",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, chainID, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		swapResp, err := readPayload("swap-response", assessSwapPayload)
		if err != nil {
			return err
		}
		in, err := assessFlags.input(cmd, chainID, swapResp)
		if err != nil {
			return err
		}
		in.Reader = client

		res, err := swapcore.Assess(ctx, in)
		if err != nil {
			return err
		}
		logger.Debug("assessment done", zap.Int("score", res.Score), zap.Int("issues", len(res.Issues)))
		if jsonOutput {
			return printJSON(res)
		}
		printSafety(res)
		return nil
	},
}

func init() {
	assessFlags.register(assessCmd)
	assessCmd.Flags().StringVar(&assessSwapPayload, "swap-response", "", "aggregator swap response, used for price impact when --quote is absent")
	rootCmd.AddCommand(assessCmd)
}
