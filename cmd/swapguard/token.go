package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ligun0805/swapguard/internal/chainrpc"
)

var (
	tokenOwner   string
	tokenSpender string
)

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Read ERC-20 metadata, balance, allowance and transfer restrictions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := mustAddr("token", args[0])
		if err != nil {
			return err
		}
		owner, err := optAddr("owner", tokenOwner)
		if err != nil {
			return err
		}
		spender, err := optAddr("spender", tokenSpender)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		client, _, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		info, err := client.TokenInfo(ctx, token, owner, spender)
		if err != nil {
			return err
		}
		var restr *chainrpc.TokenRestrictions
		if owner != nil {
			r := client.CheckRestrictions(ctx, token, *owner)
			restr = &r
		}
		if jsonOutput {
			return printJSON(map[string]any{"token": info, "restrictions": restr})
		}

		fmt.Println("=== TOKEN ===")
		fmt.Println("Address           :", info.Address.Hex())
		fmt.Println("Symbol            :", info.Symbol)
		fmt.Println("Decimals          :", info.Decimals)
		if info.Balance != nil {
			fmt.Println("Balance           :", formatTokens(info.Balance, info.Decimals), info.Symbol)
		}
		if info.Allowance != nil {
			fmt.Println("Allowance         :", formatTokens(info.Allowance, info.Decimals), info.Symbol)
		}
		if restr != nil {
			if restr.Blocked() {
				fmt.Println("Restrictions      :", badMark(restr.Summary()))
			} else {
				fmt.Println("Restrictions      :", okMark("none detected"))
			}
		}
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOwner, "owner", "", "holder for balance and restriction checks")
	tokenCmd.Flags().StringVar(&tokenSpender, "spender", "", "spender for the allowance check (needs --owner)")
	rootCmd.AddCommand(tokenCmd)
}
