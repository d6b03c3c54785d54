package swapcore

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PreflightRequest pairs one simulation with one assessment over the same
// transaction context.
type PreflightRequest struct {
	Sender common.Address
	Intent TransactionIntent
	Safety SafetyInput
}

// PreflightReport carries both results side by side. SafetyError is set,
// and Safety left nil, when the assessment could not run at all.
type PreflightReport struct {
	Simulation  SimulationResult `json:"simulation"`
	Safety      *SafetyResult    `json:"safety,omitempty"`
	SafetyError string           `json:"safetyError,omitempty"`
}

// Preflighter runs simulation and assessment concurrently against one reader.
type Preflighter struct {
	Reader ChainReader
	Log    *zap.Logger
}

// Run fans out Simulate and Assess and waits for both. Neither side can
// cancel the other.
func (p *Preflighter) Run(ctx context.Context, req PreflightRequest) PreflightReport {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	if req.Safety.Reader == nil {
		req.Safety.Reader = p.Reader
	}

	var (
		rep     PreflightReport
		g       errgroup.Group
		safety  SafetyResult
		safeErr error
	)
	g.Go(func() error {
		rep.Simulation = Simulate(ctx, p.Reader, req.Sender, req.Intent)
		return nil
	})
	g.Go(func() error {
		safety, safeErr = Assess(ctx, req.Safety)
		return nil
	})
	_ = g.Wait()

	if safeErr != nil {
		log.Warn("assessment failed", zap.Error(safeErr))
		rep.SafetyError = safeErr.Error()
	} else {
		rep.Safety = &safety
	}
	log.Debug("preflight done",
		zap.Bool("sim_ok", rep.Simulation.OK),
		zap.Bool("call_success", rep.Simulation.CallSuccess),
		zap.Int("score", safety.Score),
	)
	return rep
}

// Preflight is Run on a throwaway Preflighter without logging.
func Preflight(ctx context.Context, r ChainReader, req PreflightRequest) PreflightReport {
	return (&Preflighter{Reader: r}).Run(ctx, req)
}
