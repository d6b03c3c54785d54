package swapcore

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultConfirmations = 3
	DefaultPollInterval  = 4 * time.Second
)

var errNoBlockReader = errors.New("finality: no block reader")

// FinalityTracker waits for an included transaction to reach a confirmation
// depth. The block it was included in counts as the first confirmation.
type FinalityTracker struct {
	Reader        BlockNumberReader
	Interval      time.Duration
	Confirmations uint64
	Log           *zap.Logger
}

// Confirmed reports whether head is at least confirmations deep over included.
func Confirmed(head, included, confirmations uint64) bool {
	if head < included {
		return false
	}
	return head-included+1 >= confirmations
}

// Wait polls the chain head until includedBlock is final and returns the last
// head seen. Poll errors are logged and retried on the next tick. progress,
// when set, receives every head observed.
func (t *FinalityTracker) Wait(ctx context.Context, includedBlock uint64, progress func(head uint64)) (uint64, error) {
	if t.Reader == nil {
		return 0, errNoBlockReader
	}
	interval := t.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	confs := t.Confirmations
	if confs == 0 {
		confs = DefaultConfirmations
	}
	log := t.Log
	if log == nil {
		log = zap.NewNop()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var head uint64
	for {
		n, err := t.Reader.BlockNumber(ctx)
		switch {
		case err != nil:
			log.Debug("block number poll failed", zap.Error(err))
		default:
			head = n
			if progress != nil {
				progress(head)
			}
			if Confirmed(head, includedBlock, confs) {
				return head, nil
			}
		}
		select {
		case <-ctx.Done():
			return head, ctx.Err()
		case <-ticker.C:
		}
	}
}
