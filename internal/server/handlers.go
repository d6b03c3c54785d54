package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

var errNoTransaction = errors.New("no transaction: set to/data or swapResponse")

// TxBody describes the transaction to simulate. When To and Data are empty
// the transaction is pulled out of SwapResponse.
type TxBody struct {
	From         string          `json:"from" binding:"required"`
	To           string          `json:"to"`
	Data         string          `json:"data"`
	Value        string          `json:"value"`
	SwapResponse json.RawMessage `json:"swapResponse"`
}

// AssessBody is the assessment context. Spender falls back to the one found
// in SwapResponse or ApproveResponse.
type AssessBody struct {
	ChainID         uint64          `json:"chainId" binding:"required"`
	FromToken       string          `json:"fromToken"`
	ToToken         string          `json:"toToken"`
	Spender         string          `json:"spender"`
	SlippageBps     *int            `json:"slippageBps"`
	ApproveData     string          `json:"approveData"`
	Quote           json.RawMessage `json:"quote"`
	SwapResponse    json.RawMessage `json:"swapResponse"`
	ApproveResponse json.RawMessage `json:"approveResponse"`
}

// PreflightBody carries both halves.
type PreflightBody struct {
	Tx     TxBody     `json:"tx"`
	Safety AssessBody `json:"safety"`
}

func optAddress(field, s string) (*common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("%s: invalid address %q", field, s)
	}
	a := common.HexToAddress(s)
	return &a, nil
}

func optHex(field, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return b, nil
}

func optPayload(field string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v, err := swapcore.DecodePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

func (b TxBody) build() (common.Address, swapcore.TransactionIntent, error) {
	from, err := optAddress("from", b.From)
	if err != nil {
		return common.Address{}, swapcore.TransactionIntent{}, err
	}
	if from == nil {
		return common.Address{}, swapcore.TransactionIntent{}, errors.New("from: required")
	}
	if b.To == "" && b.Data == "" {
		resp, err := optPayload("swapResponse", b.SwapResponse)
		if err != nil {
			return *from, swapcore.TransactionIntent{}, err
		}
		in, ok := swapcore.ExtractIntent(resp)
		if !ok {
			return *from, swapcore.TransactionIntent{}, errNoTransaction
		}
		return *from, in, nil
	}
	to, err := optAddress("to", b.To)
	if err != nil {
		return *from, swapcore.TransactionIntent{}, err
	}
	data, err := optHex("data", b.Data)
	if err != nil {
		return *from, swapcore.TransactionIntent{}, err
	}
	return *from, swapcore.TransactionIntent{To: to, Data: data, Value: swapcore.ParseBig(b.Value)}, nil
}

func (s *Server) buildSafety(b AssessBody) (swapcore.SafetyInput, error) {
	in := swapcore.SafetyInput{
		Reader:             s.cfg.Reader,
		ChainID:            b.ChainID,
		ExpectedChainID:    s.cfg.ExpectedChainID,
		SlippageBps:        b.SlippageBps,
		DefaultSlippageBps: s.cfg.DefaultSlippageBps,
	}
	var err error
	if in.FromToken, err = optAddress("fromToken", b.FromToken); err != nil {
		return in, err
	}
	if in.ToToken, err = optAddress("toToken", b.ToToken); err != nil {
		return in, err
	}
	if in.Spender, err = optAddress("spender", b.Spender); err != nil {
		return in, err
	}
	if in.ApproveData, err = optHex("approveData", b.ApproveData); err != nil {
		return in, err
	}
	if in.Quote, err = optPayload("quote", b.Quote); err != nil {
		return in, err
	}
	approveResp, err := optPayload("approveResponse", b.ApproveResponse)
	if err != nil {
		return in, err
	}
	swapResp, err := optPayload("swapResponse", b.SwapResponse)
	if err != nil {
		return in, err
	}
	if in.ApproveData == nil {
		if data, ok := swapcore.ExtractApproveData(approveResp); ok {
			in.ApproveData = data
		}
	}
	if in.Spender == nil {
		for _, resp := range []any{approveResp, swapResp} {
			if sp, ok := swapcore.ExtractSpender(resp); ok {
				in.Spender = &sp
				break
			}
		}
	}
	if in.Quote == nil {
		in.Quote = swapResp
	}
	return in, nil
}

func (s *Server) simulate(c *gin.Context) {
	var body TxBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	from, in, err := body.build()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	res := swapcore.Simulate(c.Request.Context(), s.cfg.Reader, from, in)
	c.JSON(http.StatusOK, res)
}

func (s *Server) assess(c *gin.Context) {
	var body AssessBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	in, err := s.buildSafety(body)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	res, err := swapcore.Assess(c.Request.Context(), in)
	if err != nil {
		s.fail(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) preflight(c *gin.Context) {
	var body PreflightBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	from, in, err := body.Tx.build()
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	safety, err := s.buildSafety(body.Safety)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	p := &swapcore.Preflighter{
		Reader: s.cfg.Reader,
		Log:    s.logFor(c.Request.Context()),
	}
	rep := p.Run(c.Request.Context(), swapcore.PreflightRequest{Sender: from, Intent: in, Safety: safety})
	c.JSON(http.StatusOK, rep)
}

func (s *Server) gas(c *gin.Context) {
	if s.cfg.Gas == nil {
		s.fail(c, http.StatusNotImplemented, errors.New("gas reporting not configured"))
		return
	}
	rep, err := s.cfg.Gas.GasReport(c.Request.Context(), s.cfg.GasBlocks, s.cfg.GasPercentiles)
	if err != nil {
		s.fail(c, http.StatusBadGateway, err)
		return
	}
	resp := gin.H{
		"report":   rep,
		"gasPrice": swapcore.FormatGwei(rep.GasPrice) + " gwei",
	}
	if rep.FeeMarket != nil {
		resp["maxFeePerGas"] = swapcore.FormatGwei(rep.FeeMarket.MaxFeePerGas) + " gwei"
	}
	c.JSON(http.StatusOK, resp)
}
