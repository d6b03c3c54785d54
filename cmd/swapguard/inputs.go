package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

func optAddr(name, s string) (*common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("--%s: invalid address %q", name, s)
	}
	a := common.HexToAddress(s)
	return &a, nil
}

func mustAddr(name, s string) (common.Address, error) {
	a, err := optAddr(name, s)
	if err != nil {
		return common.Address{}, err
	}
	if a == nil {
		return common.Address{}, fmt.Errorf("--%s is required", name)
	}
	return *a, nil
}

func optData(name, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return b, nil
}

// parseWei accepts a non-negative decimal or 0x-hex integer.
func parseWei(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base, digits := 10, s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base, digits = 16, s[2:]
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("bad number %q", s)
	}
	return v, nil
}

// readPayload loads an aggregator response given inline ('{...}'), as a file
// path, or "-" for stdin. Empty input yields nil.
func readPayload(name, src string) (any, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	var raw []byte
	var err error
	switch {
	case strings.HasPrefix(src, "{") || strings.HasPrefix(src, "["):
		raw = []byte(src)
	case src == "-":
		raw, err = io.ReadAll(os.Stdin)
	default:
		raw, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	v, err := swapcore.DecodePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return v, nil
}
