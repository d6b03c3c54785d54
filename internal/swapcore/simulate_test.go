package swapcore_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ligun0805/swapguard/internal/mocks"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

var (
	sender  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	errNoFM = errors.New("fee market unavailable")
)

func swapIntent(value int64) swapcore.TransactionIntent {
	to := router
	return swapcore.TransactionIntent{To: &to, Data: common.FromHex("0x12345678"), Value: big.NewInt(value)}
}

func TestSimulateLegacyFeeAndRevert(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockChainReader(ctrl)

	r.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(21000), nil)
	r.EXPECT().EstimateFeeMarket(gomock.Any()).Return(swapcore.FeeMarket{}, errNoFM)
	r.EXPECT().GasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil)
	r.EXPECT().Call(gomock.Any(), gomock.Any()).Return(nil, &rpcDataError{
		msg:  "execution reverted",
		data: revertPayload(t, "INSUFFICIENT_OUTPUT_AMOUNT"),
	})

	res := swapcore.Simulate(context.Background(), r, sender, swapIntent(0))

	assert.True(t, res.OK)
	assert.Equal(t, uint64(21000), res.Gas)
	assert.Equal(t, "1000000000", res.GasPrice.String())
	assert.Nil(t, res.MaxFeePerGas)
	assert.Equal(t, "21000000000000", res.Fee.String())
	assert.False(t, res.CallSuccess)
	assert.Equal(t, "INSUFFICIENT_OUTPUT_AMOUNT", res.CallRevertReason)
	assert.Empty(t, res.Error)
}

func TestSimulateFeeMarket(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockChainReader(ctrl)

	var seen ethereum.CallMsg
	r.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
		seen = msg
		return 150_000, nil
	})
	r.EXPECT().EstimateFeeMarket(gomock.Any()).Return(swapcore.FeeMarket{
		MaxFeePerGas:         big.NewInt(3_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
	}, nil)
	r.EXPECT().Call(gomock.Any(), gomock.Any()).Return([]byte{0x01}, nil)

	res := swapcore.Simulate(context.Background(), r, sender, swapIntent(5))

	require.True(t, res.OK)
	assert.True(t, res.CallSuccess)
	assert.Nil(t, res.GasPrice)
	assert.Equal(t, "450000000000000", res.Fee.String())
	assert.Equal(t, "3000000000", res.EffectiveFeeRate().String())

	assert.Equal(t, sender, seen.From)
	assert.Equal(t, router, *seen.To)
	assert.Equal(t, "5", seen.Value.String())
}

func TestSimulateZeroValueOmitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockChainReader(ctrl)

	r.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
		assert.Nil(t, msg.Value)
		return 50_000, nil
	})
	r.EXPECT().EstimateFeeMarket(gomock.Any()).Return(swapcore.FeeMarket{}, errNoFM)
	r.EXPECT().GasPrice(gomock.Any()).Return(nil, errors.New("gas price down"))
	r.EXPECT().Call(gomock.Any(), gomock.Any()).Return(nil, nil)

	res := swapcore.Simulate(context.Background(), r, sender, swapIntent(0))

	assert.True(t, res.OK)
	assert.Equal(t, "0", res.Fee.String())
}

func TestSimulateEstimateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockChainReader(ctrl)

	r.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(0), errors.New("execution reverted: STF"))

	res := swapcore.Simulate(context.Background(), r, sender, swapIntent(0))

	assert.False(t, res.OK)
	assert.Equal(t, "execution reverted: STF", res.Error)
	assert.Zero(t, res.Gas)
	assert.Nil(t, res.Fee)
}

func TestSimulateIncompleteIntent(t *testing.T) {
	to := router
	tests := []struct {
		name string
		in   swapcore.TransactionIntent
	}{
		{"no recipient", swapcore.TransactionIntent{Data: []byte{1}}},
		{"no calldata", swapcore.TransactionIntent{To: &to}},
		{"empty", swapcore.TransactionIntent{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			r := mocks.NewMockChainReader(ctrl)

			res := swapcore.Simulate(context.Background(), r, sender, tc.in)

			assert.False(t, res.OK)
			assert.False(t, res.CallSuccess)
			assert.Equal(t, "missing to/data for simulation", res.Error)
		})
	}
}

func TestSimulateRecoversPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockChainReader(ctrl)

	r.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, ethereum.CallMsg) (uint64, error) {
		panic("node client exploded")
	})

	res := swapcore.Simulate(context.Background(), r, sender, swapIntent(0))

	assert.False(t, res.OK)
	assert.Equal(t, "node client exploded", res.Error)
}
