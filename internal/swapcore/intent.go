package swapcore

import (
	"encoding/json"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionIntent is an unsigned, not yet broadcast transaction.
// A nil To or Data means the payload is not ready.
type TransactionIntent struct {
	To    *common.Address
	Data  []byte
	Value *big.Int
}

// Ready reports whether both recipient and calldata are present.
func (t TransactionIntent) Ready() bool {
	return t.To != nil && t.Data != nil
}

// normalizedValue returns the value as a non-negative integer, or nil when zero.
// Zero is omitted so nodes that distinguish "no value" see none.
func (t TransactionIntent) normalizedValue() *big.Int {
	if t.Value == nil || t.Value.Sign() <= 0 {
		return nil
	}
	return new(big.Int).Set(t.Value)
}

func (t TransactionIntent) callMsg(from common.Address) ethereum.CallMsg {
	return ethereum.CallMsg{
		From:  from,
		To:    t.To,
		Data:  t.Data,
		Value: t.normalizedValue(),
	}
}

// Fallback order for locating a transaction descriptor in aggregator
// responses. The first object carrying both a recipient and calldata wins.
var intentPaths = []string{
	"data.0.tx",
	"data.0.transaction",
	"data.0.txData",
	"data.tx",
	"data.transaction",
	"data",
	"result",
	"result.tx",
	"tx",
	"transaction",
	"txData",
	"",
}

// Containers whose direct children are scanned as a last resort.
var intentScanPaths = []string{"data", "result", ""}

// ExtractIntent adapts an opaque aggregator response into a TransactionIntent.
func ExtractIntent(resp any) (TransactionIntent, bool) {
	if resp == nil {
		return TransactionIntent{}, false
	}
	for _, p := range intentPaths {
		node, ok := Lookup(resp, splitPath(p)...)
		if !ok {
			continue
		}
		if in, ok := intentFromNode(node); ok {
			return in, true
		}
	}
	for _, p := range intentScanPaths {
		node, ok := Lookup(resp, splitPath(p)...)
		if !ok {
			continue
		}
		for _, child := range children(node) {
			if in, ok := intentFromNode(child); ok {
				return in, true
			}
		}
	}
	return TransactionIntent{}, false
}

func intentFromNode(node any) (TransactionIntent, bool) {
	m, ok := node.(map[string]any)
	if !ok {
		return TransactionIntent{}, false
	}
	toStr := stringField(m, "to")
	if toStr == "" {
		toStr = stringField(m, "target")
	}
	dataStr := stringField(m, "data")
	if toStr == "" || dataStr == "" || !common.IsHexAddress(toStr) {
		return TransactionIntent{}, false
	}
	data, err := hexutil.Decode(dataStr)
	if err != nil {
		return TransactionIntent{}, false
	}
	to := common.HexToAddress(toStr)
	return TransactionIntent{To: &to, Data: data, Value: valueOf(m["value"])}, true
}

// children returns the direct object children of a node in a stable order.
func children(node any) []any {
	switch n := node.(type) {
	case []any:
		return n
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, n[k])
		}
		return out
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// valueOf parses decimal, 0x-hex or JSON numbers; anything else is zero.
func valueOf(v any) *big.Int {
	switch x := v.(type) {
	case string:
		return ParseBig(x)
	case json.Number:
		return ParseBig(x.String())
	case float64:
		if x <= 0 {
			return big.NewInt(0)
		}
		z, _ := big.NewFloat(x).Int(nil)
		return z
	}
	return big.NewInt(0)
}

// ParseBig parses a decimal or 0x-prefixed hex integer. Invalid or negative
// input yields zero.
func ParseBig(s string) *big.Int {
	s = strings.TrimSpace(s)
	z, ok := new(big.Int), false
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		z, ok = z.SetString(s[2:], 16)
	} else {
		z, ok = z.SetString(s, 10)
	}
	if !ok || z.Sign() < 0 {
		return big.NewInt(0)
	}
	return z
}

// Paths probed for the approval spender, in order.
var spenderPaths = []string{
	"data.0.dexContractAddress",
	"data.spender",
	"spender",
	"result.spender",
	"tx.to",
	"to",
}

// ExtractSpender finds the address an approval should be granted to.
func ExtractSpender(resp any) (common.Address, bool) {
	for _, p := range spenderPaths {
		v, ok := Lookup(resp, splitPath(p)...)
		if !ok {
			continue
		}
		s, _ := v.(string)
		if common.IsHexAddress(s) {
			return common.HexToAddress(s), true
		}
	}
	return common.Address{}, false
}

// Paths probed for approval calldata. Approve responses usually omit "to"
// because the target is the token itself.
var approveDataPaths = []string{
	"data.0.data",
	"data.data",
	"result.data",
	"tx.data",
	"data",
}

// ExtractApproveData finds approval calldata in an approve-transaction response.
func ExtractApproveData(resp any) ([]byte, bool) {
	for _, p := range approveDataPaths {
		v, ok := Lookup(resp, splitPath(p)...)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		b, err := hexutil.Decode(strings.TrimSpace(s))
		if err == nil && len(b) > 0 {
			return b, true
		}
	}
	return nil, false
}
