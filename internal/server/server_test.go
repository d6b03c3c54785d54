package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ligun0805/swapguard/internal/chainrpc"
	"github.com/ligun0805/swapguard/internal/mocks"
	"github.com/ligun0805/swapguard/internal/swapcore"
)

const (
	userHex   = "0x1111111111111111111111111111111111111111"
	routerHex = "0x2222222222222222222222222222222222222222"
	fromHex   = "0x6666666666666666666666666666666666666666"
	toHex     = "0x7777777777777777777777777777777777777777"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGas struct {
	rep chainrpc.GasReport
	err error
}

func (s stubGas) GasReport(context.Context, int, []int) (chainrpc.GasReport, error) {
	return s.rep, s.err
}

func newTestServer(t *testing.T, gas GasReporter) (*mocks.MockChainReader, *gin.Engine) {
	t.Helper()
	r := mocks.NewMockChainReader(gomock.NewController(t))
	srv := New(Config{Reader: r, Gas: gas, ExpectedChainID: 195, DefaultSlippageBps: 50})
	return r, srv.Router()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t, nil)
	w := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDPreserved(t *testing.T) {
	_, h := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(CorrelationIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDReachesRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(Config{Log: zap.New(core)})

	var seen string
	r := gin.New()
	r.Use(CorrelationIDMiddleware(zap.NewNop()))
	r.GET("/ctx", func(c *gin.Context) {
		seen = CorrelationIDFromContext(c.Request.Context())
		s.logFor(c.Request.Context()).Info("handled")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
	req.Header.Set(CorrelationIDHeader, "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "req-42", seen)
	entries := logs.FilterMessage("handled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["correlation_id"])

	assert.Same(t, s.log, s.logFor(context.Background()))
}

func TestSimulateFromSwapResponse(t *testing.T) {
	r, h := newTestServer(t, nil)
	r.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
		assert.Equal(t, common.HexToAddress(routerHex), *msg.To)
		assert.Equal(t, "7", msg.Value.String())
		return 21000, nil
	})
	r.EXPECT().EstimateFeeMarket(gomock.Any()).Return(swapcore.FeeMarket{}, errors.New("legacy"))
	r.EXPECT().GasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil)
	r.EXPECT().Call(gomock.Any(), gomock.Any()).Return(nil, nil)

	w := do(t, h, http.MethodPost, "/v1/simulate", gin.H{
		"from":         userHex,
		"swapResponse": json.RawMessage(`{"code":"0","data":[{"tx":{"to":"` + routerHex + `","data":"0xabcd","value":"7"}}]}`),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	dec := json.NewDecoder(w.Body)
	dec.UseNumber()
	var res map[string]any
	require.NoError(t, dec.Decode(&res))
	assert.Equal(t, true, res["ok"])
	assert.Equal(t, true, res["callSuccess"])
	assert.Equal(t, json.Number("21000000000000"), res["fee"])
}

func TestSimulateBadInput(t *testing.T) {
	_, h := newTestServer(t, nil)

	w := do(t, h, http.MethodPost, "/v1/simulate", gin.H{"from": "nope", "to": routerHex, "data": "0x01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/v1/simulate", gin.H{"from": userHex})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errNoTransaction.Error())

	w = do(t, h, http.MethodPost, "/v1/simulate", gin.H{"to": routerHex})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssessEndpoint(t *testing.T) {
	r, h := newTestServer(t, nil)
	r.EXPECT().CodeAt(gomock.Any(), gomock.Any()).Return([]byte{0x60}, nil).Times(3)

	approve := swapcore.EncodeApprove(common.HexToAddress(routerHex), new(uint256.Int).SetAllOne())
	w := do(t, h, http.MethodPost, "/v1/assess", gin.H{
		"chainId":         195,
		"fromToken":       fromHex,
		"toToken":         toHex,
		"approveResponse": json.RawMessage(`{"code":"0","data":[{"data":"` + hexutil.Encode(approve) + `","dexContractAddress":"` + routerHex + `"}]}`),
		"quote":           json.RawMessage(`{"data":[{"priceImpactPercentage":"0.1"}]}`),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res swapcore.SafetyResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 85, res.Score)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "Approve sets unlimited allowance (max uint256)", res.Issues[0].Message)
}

func TestAssessRequiresChainID(t *testing.T) {
	_, h := newTestServer(t, nil)
	w := do(t, h, http.MethodPost, "/v1/assess", gin.H{"fromToken": fromHex})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreflightEndpoint(t *testing.T) {
	r, h := newTestServer(t, nil)
	r.EXPECT().CodeAt(gomock.Any(), gomock.Any()).Return([]byte{0x60}, nil).AnyTimes()
	r.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(0), errors.New("execution reverted: TRANSFER_FROM_FAILED"))

	w := do(t, h, http.MethodPost, "/v1/preflight", gin.H{
		"tx": gin.H{"from": userHex, "to": routerHex, "data": "0x01"},
		"safety": gin.H{
			"chainId":   1,
			"fromToken": fromHex,
			"toToken":   toHex,
			"spender":   routerHex,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rep swapcore.PreflightReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.False(t, rep.Simulation.OK)
	assert.Equal(t, "execution reverted: TRANSFER_FROM_FAILED", rep.Simulation.Error)
	require.NotNil(t, rep.Safety)
	assert.Equal(t, 60, rep.Safety.Score)
}

func TestGasEndpoint(t *testing.T) {
	_, h := newTestServer(t, stubGas{rep: chainrpc.GasReport{
		ChainID:  195,
		GasPrice: big.NewInt(1_500_000_000),
		FeeMarket: &swapcore.FeeMarket{
			MaxFeePerGas:         big.NewInt(3_000_000_000),
			MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		},
	}})
	w := do(t, h, http.MethodGet, "/v1/gas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"gasPrice":"1.50 gwei"`)
	assert.Contains(t, w.Body.String(), `"maxFeePerGas":"3.00 gwei"`)

	_, h = newTestServer(t, stubGas{err: errors.New("rpc down")})
	w = do(t, h, http.MethodGet, "/v1/gas", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	_, h = newTestServer(t, nil)
	w = do(t, h, http.MethodGet, "/v1/gas", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
