package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ligun0805/swapguard/internal/chainrpc"
	"github.com/ligun0805/swapguard/internal/logger"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

var (
	watchConfs   uint64
	watchTimeout time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <txhash>",
	Short: "Wait for a sent transaction to be mined and reach the confirmation depth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.TrimSpace(args[0])
		if len(raw) != 66 || !strings.HasPrefix(raw, "0x") {
			return fmt.Errorf("invalid tx hash %q", raw)
		}
		hash := common.HexToHash(raw)
		confs := settings.Confirmations
		if cmd.Flags().Changed("confirmations") {
			confs = watchConfs
		}

		ctx := cmd.Context()
		if watchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, watchTimeout)
			defer cancel()
		}
		client, chainID, err := dialChain(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		if link := chains[chainID].TxURL(hash.Hex()); link != "" {
			fmt.Println("Explorer          :", link)
		}
		rcpt, err := waitReceipt(ctx, client, hash, settings.PollInterval)
		if err != nil {
			return err
		}
		included := rcpt.BlockNumber.Uint64()
		if rcpt.Status != types.ReceiptStatusSuccessful {
			fmt.Println(badMark("[X]"), "transaction reverted in block", included)
			return fmt.Errorf("transaction %s reverted", hash.Hex())
		}
		fmt.Printf("Included          : block %d, gas used %d\n", included, rcpt.GasUsed)

		tracker := &swapcore.FinalityTracker{
			Reader:        client,
			Interval:      settings.PollInterval,
			Confirmations: confs,
			Log:           logger.With(zap.String("tx", hash.Hex())),
		}
		head, err := tracker.Wait(ctx, included, func(head uint64) {
			depth := uint64(0)
			if head >= included {
				depth = head - included + 1
			}
			fmt.Printf("  head %d, %d/%d confirmations\n", head, min(depth, confs), confs)
		})
		if err != nil {
			return fmt.Errorf("waiting for confirmations (head %d): %w", head, err)
		}
		fmt.Println(okMark("[OK]"), "final at head", head)
		return nil
	},
}

// waitReceipt polls until the transaction is mined. Lookup failures other
// than "not found" are logged and retried.
func waitReceipt(ctx context.Context, c *chainrpc.Client, hash common.Hash, every time.Duration) (*types.Receipt, error) {
	if every <= 0 {
		every = swapcore.DefaultPollInterval
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		rcpt, err := c.Receipt(ctx, hash)
		switch {
		case err == nil:
			return rcpt, nil
		case errors.Is(err, ethereum.NotFound):
			logger.Debug("receipt pending", zap.String("tx", hash.Hex()))
		default:
			logger.Warn("receipt lookup failed", zap.String("tx", hash.Hex()), zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func init() {
	watchCmd.Flags().Uint64Var(&watchConfs, "confirmations", 0, "blocks required for finality (default: CONFIRMATIONS)")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 10*time.Minute, "give up after this long (0 = never)")
	rootCmd.AddCommand(watchCmd)
}
