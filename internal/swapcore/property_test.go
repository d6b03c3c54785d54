//go:build property

package swapcore_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/mock/gomock"

	"github.com/ligun0805/swapguard/internal/mocks"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

func TestSlippageStepProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("penalty is a step function of bps", prop.ForAll(
		func(bps int) bool {
			_, penalty, ok := swapcore.SlippageTier(bps)
			switch {
			case bps > 500:
				return ok && penalty == 30
			case bps > 300:
				return ok && penalty == 15
			case bps > 100:
				return ok && penalty == 5
			}
			return !ok && penalty == 0
		},
		gen.IntRange(-100, 20_000),
	))

	properties.TestingRun(t)
}

func TestScoreRangeProperty(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockChainReader(ctrl)
	r.EXPECT().CodeAt(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	properties := gopter.NewProperties(nil)

	properties.Property("score stays in [0,100] and level follows it", prop.ForAll(
		func(chainID uint64, bps int, unlimited bool) bool {
			amount := uint256.NewInt(1)
			if unlimited {
				amount.SetAllOne()
			}
			in := swapcore.SafetyInput{
				Reader:          r,
				ChainID:         chainID,
				ExpectedChainID: 195,
				SlippageBps:     &bps,
				ApproveData:     swapcore.EncodeApprove(router, amount),
			}
			res, err := swapcore.Assess(context.Background(), in)
			if err != nil || res.Score < 0 || res.Score > 100 {
				return false
			}
			return res.Level == swapcore.LevelForScore(res.Score)
		},
		gen.UInt64Range(190, 200),
		gen.IntRange(0, 2_000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestApproveRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("decode(encode(spender, amount)) recovers both", prop.ForAll(
		func(raw []byte, a, b, c, d uint64) bool {
			spender := common.BytesToAddress(raw)
			amount := &uint256.Int{a, b, c, d}
			p, ok := swapcore.DecodeApprove(swapcore.EncodeApprove(spender, amount))
			return ok && p.Spender == spender && p.Amount.Eq(amount)
		},
		gen.SliceOfN(20, gen.UInt8()),
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64(),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
