package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ligun0805/swapguard/internal/aggregator"
	"github.com/ligun0805/swapguard/internal/logger"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

// nativeToken is the aggregator placeholder for the chain's gas coin.
var nativeToken = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

var (
	quoteFrom     string
	quoteTo       string
	quoteAmount   string
	quoteRaw      bool
	quoteSlippage int
	quoteUser     string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Fetch an aggregator quote; with --user also fetch the swap and preflight it",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := mustAddr("from-token", quoteFrom)
		if err != nil {
			return err
		}
		to, err := mustAddr("to-token", quoteTo)
		if err != nil {
			return err
		}
		user, err := optAddr("user", quoteUser)
		if err != nil {
			return err
		}
		if settings.AggregatorBaseURL == "" {
			return fmt.Errorf("AGGREGATOR_BASE_URL is not set")
		}
		agg, err := aggregator.New(settings.AggregatorBaseURL,
			aggregator.WithHeaders(settings.AggregatorHeaders),
			aggregator.WithLogger(logger.With(zap.String("component", "aggregator"))),
		)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, chainID, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		amount := quoteAmount
		if !quoteRaw {
			decimals := 18
			if from != nativeToken {
				if decimals, err = client.TokenDecimals(ctx, from); err != nil {
					return fmt.Errorf("from token decimals: %w", err)
				}
			}
			v, err := toBaseUnits(quoteAmount, decimals)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			amount = v.String()
		}
		slippage := settings.DefaultSlippageBps
		if cmd.Flags().Changed("slippage-bps") {
			slippage = quoteSlippage
		}
		qr := aggregator.QuoteRequest{
			ChainID:     chainID,
			FromToken:   from.Hex(),
			ToToken:     to.Hex(),
			Amount:      amount,
			SlippageBps: slippage,
		}
		quote, err := agg.Quote(ctx, qr)
		if err != nil {
			return fmt.Errorf("quote: %w", err)
		}
		if user == nil {
			if jsonOutput {
				return printJSON(quote)
			}
			printQuote(quote, slippage)
			return nil
		}

		swapResp, err := agg.Swap(ctx, aggregator.SwapRequest{QuoteRequest: qr, UserWallet: user.Hex()})
		if err != nil {
			return fmt.Errorf("swap: %w", err)
		}
		intent, ok := swapcore.ExtractIntent(swapResp)
		if !ok {
			return fmt.Errorf("swap response carries no transaction")
		}
		safety := swapcore.SafetyInput{
			ChainID:            chainID,
			ExpectedChainID:    chainFlag,
			FromToken:          &from,
			ToToken:            &to,
			SlippageBps:        &slippage,
			DefaultSlippageBps: settings.DefaultSlippageBps,
			Quote:              quote,
		}
		if from != nativeToken {
			approveResp, err := agg.ApproveTransaction(ctx, aggregator.ApproveRequest{ChainID: chainID, Token: from.Hex(), Amount: amount})
			if err != nil {
				return fmt.Errorf("approve transaction: %w", err)
			}
			if sp, ok := swapcore.ExtractSpender(approveResp); ok {
				safety.Spender = &sp
			}
			safety.ApproveData, _ = swapcore.ExtractApproveData(approveResp)
		} else {
			// Native sells need no approval; the router itself is the contract to vet.
			safety.FromToken = nil
			safety.Spender = intent.To
		}

		p := &swapcore.Preflighter{Reader: client, Log: logger.Log}
		rep := p.Run(ctx, swapcore.PreflightRequest{Sender: *user, Intent: intent, Safety: safety})
		if jsonOutput {
			return printJSON(map[string]any{"quote": quote, "swap": swapResp, "preflight": rep})
		}
		printQuote(quote, slippage)
		printReport(rep, chains[chainID].Symbol)
		return nil
	},
}

func printQuote(quote any, slippageBps int) {
	fmt.Println("=== QUOTE ===")
	if v, ok := swapcore.Lookup(quote, "data", "0", "toTokenAmount"); ok {
		fmt.Println("To amount (raw)   :", v)
	}
	if v, ok := swapcore.Lookup(quote, "data", "0", "estimateGasFee"); ok {
		fmt.Println("Est. gas          :", v)
	}
	fmt.Printf("Slippage          : %s%%\n", swapcore.BpsToPct(slippageBps))
	pct, ok := swapcore.PriceImpactPct(quote)
	if !ok {
		fmt.Println("Price impact      :", warnMark("unknown"))
		return
	}
	sev, _, flagged := swapcore.PriceImpactTier(pct)
	s := pct.StringFixed(2) + "%"
	if flagged {
		s = severityColor(sev)(s + " (" + strings.ToUpper(string(sev)) + ")")
	}
	fmt.Println("Price impact      :", s)
}

func init() {
	quoteCmd.Flags().StringVar(&quoteFrom, "from-token", "", "token to sell (required)")
	quoteCmd.Flags().StringVar(&quoteTo, "to-token", "", "token to buy (required)")
	quoteCmd.Flags().StringVar(&quoteAmount, "amount", "", "amount to sell in token units, e.g. 1.5 (required)")
	quoteCmd.Flags().BoolVar(&quoteRaw, "raw", false, "--amount is already in base units")
	quoteCmd.Flags().IntVar(&quoteSlippage, "slippage-bps", 0, "slippage tolerance in bps (default: DEFAULT_SLIPPAGE_BPS)")
	quoteCmd.Flags().StringVar(&quoteUser, "user", "", "wallet; when set the swap is fetched and preflighted")
	_ = quoteCmd.MarkFlagRequired("from-token")
	_ = quoteCmd.MarkFlagRequired("to-token")
	_ = quoteCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(quoteCmd)
}
