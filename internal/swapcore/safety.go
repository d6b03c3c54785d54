package swapcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Severity grades a single issue; it doubles as the overall risk level.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// DefaultSlippageBps applies when neither the call nor its defaults set one.
const DefaultSlippageBps = 50

const maxScore = 100

// ErrSafetyCheckFailed marks an assessment that could not run at all.
var ErrSafetyCheckFailed = errors.New("safety check failed")

var errNoReader = errors.New("no chain reader")

// SafetyIssue is one finding of one check.
type SafetyIssue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// SafetyResult aggregates the findings of one assessment pass.
// Issues keep check order.
type SafetyResult struct {
	Score  int           `json:"score"`
	Level  Severity      `json:"level"`
	Issues []SafetyIssue `json:"issues"`
}

// SafetyInput is everything an assessment reads.
type SafetyInput struct {
	Reader          ChainReader
	ChainID         uint64
	ExpectedChainID uint64

	FromToken *common.Address
	ToToken   *common.Address
	Spender   *common.Address

	// SlippageBps nil means DefaultSlippageBps (or the package default when that is zero).
	SlippageBps        *int
	DefaultSlippageBps int

	ApproveData []byte
	Quote       any
}

func (in SafetyInput) slippage() int {
	if in.SlippageBps != nil {
		return *in.SlippageBps
	}
	if in.DefaultSlippageBps != 0 {
		return in.DefaultSlippageBps
	}
	return DefaultSlippageBps
}

// assessment accumulates issues and penalties for one Assess call.
type assessment struct {
	score  int
	issues []SafetyIssue
}

func (a *assessment) add(sev Severity, penalty int, format string, args ...any) {
	a.issues = append(a.issues, SafetyIssue{Severity: sev, Message: fmt.Sprintf(format, args...)})
	a.score -= penalty
}

// Assess runs the fixed battery of pre-trade checks and folds them into one
// score. Lookup failures inside a check become medium issues; only a missing
// chain reader fails the whole call.
func Assess(ctx context.Context, in SafetyInput) (SafetyResult, error) {
	if in.Reader == nil {
		return SafetyResult{}, fmt.Errorf("%w: %w", ErrSafetyCheckFailed, errNoReader)
	}
	a := &assessment{score: maxScore, issues: []SafetyIssue{}}

	checkChain(a, in.ChainID, in.ExpectedChainID)
	checkSlippage(a, in.slippage())
	checkSpender(ctx, a, in.Reader, in.Spender)
	checkToken(ctx, a, in.Reader, "From token", in.FromToken)
	checkToken(ctx, a, in.Reader, "To token", in.ToToken)
	checkAllowance(a, in.ApproveData)
	checkPriceImpact(a, in.Quote)

	if a.score < 0 {
		a.score = 0
	}
	return SafetyResult{Score: a.score, Level: LevelForScore(a.score), Issues: a.issues}, nil
}

// LevelForScore maps a score to a risk level: <60 high, <80 medium, else low.
func LevelForScore(score int) Severity {
	switch {
	case score < 60:
		return SeverityHigh
	case score < 80:
		return SeverityMedium
	}
	return SeverityLow
}

func checkChain(a *assessment, got, want uint64) {
	if got != want {
		a.add(SeverityHigh, 40, "Wallet on chainId %d, expected %d", got, want)
	}
}

// SlippageTier returns the severity and penalty for a slippage setting.
// ok is false when no issue applies.
func SlippageTier(bps int) (sev Severity, penalty int, ok bool) {
	switch {
	case bps > 500:
		return SeverityHigh, 30, true
	case bps > 300:
		return SeverityMedium, 15, true
	case bps > 100:
		return SeverityLow, 5, true
	}
	return "", 0, false
}

func checkSlippage(a *assessment, bps int) {
	sev, penalty, ok := SlippageTier(bps)
	if !ok {
		return
	}
	switch sev {
	case SeverityHigh:
		a.add(sev, penalty, "High slippage: %s%% (>5.00%%)", BpsToPct(bps))
	case SeverityMedium:
		a.add(sev, penalty, "Elevated slippage: %s%% (>3.00%%)", BpsToPct(bps))
	default:
		a.add(sev, penalty, "Moderate slippage: %s%% (>1.00%%)", BpsToPct(bps))
	}
}

func checkSpender(ctx context.Context, a *assessment, r ChainReader, spender *common.Address) {
	if spender == nil {
		a.add(SeverityMedium, 10, "Unknown spender address for approval")
		return
	}
	code, err := r.CodeAt(ctx, *spender)
	switch {
	case err != nil:
		a.add(SeverityMedium, 10, "Could not read bytecode for spender %s", ShortAddress(*spender))
	case len(code) == 0:
		a.add(SeverityHigh, 30, "Spender has no bytecode (EOA?): %s", ShortAddress(*spender))
	}
}

func checkToken(ctx context.Context, a *assessment, r ChainReader, label string, token *common.Address) {
	if token == nil {
		a.add(SeverityMedium, 10, "%s not set", label)
		return
	}
	code, err := r.CodeAt(ctx, *token)
	switch {
	case err != nil:
		a.add(SeverityMedium, 10, "Could not read bytecode for %s %s", lowerFirst(label), ShortAddress(*token))
	case len(code) == 0:
		a.add(SeverityHigh, 25, "%s has no bytecode (not a contract): %s", label, ShortAddress(*token))
	}
}

func checkAllowance(a *assessment, approveData []byte) {
	p, ok := DecodeApprove(approveData)
	if !ok {
		return
	}
	if IsUnlimited(p.Amount) {
		a.add(SeverityMedium, 15, "Approve sets unlimited allowance (max uint256)")
	}
}

var (
	impactHigh     = decimal.NewFromInt(5)
	impactElevated = decimal.NewFromInt(2)
	impactNotable  = decimal.NewFromInt(1)
)

// PriceImpactTier mirrors SlippageTier for a price impact percentage.
func PriceImpactTier(pct decimal.Decimal) (sev Severity, penalty int, ok bool) {
	switch {
	case pct.GreaterThan(impactHigh):
		return SeverityHigh, 30, true
	case pct.GreaterThan(impactElevated):
		return SeverityMedium, 15, true
	case pct.GreaterThan(impactNotable):
		return SeverityLow, 5, true
	}
	return "", 0, false
}

func checkPriceImpact(a *assessment, quote any) {
	pct, ok := PriceImpactPct(quote)
	if !ok {
		return
	}
	sev, penalty, ok := PriceImpactTier(pct)
	if !ok {
		return
	}
	shown := pct.StringFixed(2)
	switch sev {
	case SeverityHigh:
		a.add(sev, penalty, "High price impact: %s%%", shown)
	case SeverityMedium:
		a.add(sev, penalty, "Elevated price impact: %s%%", shown)
	default:
		a.add(sev, penalty, "Price impact: %s%%", shown)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
