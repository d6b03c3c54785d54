package swapcore

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const revertedMarker = "execution reverted"

// RevertReason extracts a human-readable reason from a failed eth_call.
// Structured revert data wins over message fields, which win over the raw
// error text. Returns "" when nothing is available.
func RevertReason(err error) string {
	if err == nil {
		return ""
	}
	if r := reasonFromData(err); r != "" {
		return r
	}
	s := strings.TrimSpace(err.Error())
	if r := reasonFromText(s); r != "" {
		return r
	}
	if r := reasonFromJSON(s); r != "" {
		return r
	}
	return s
}

func reasonFromData(err error) string {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return ""
	}
	switch v := de.ErrorData().(type) {
	case string:
		return decodeRevertHex(v)
	case []byte:
		return decodeRevertBytes(v)
	case map[string]any:
		for _, k := range []string{"reason", "message"} {
			if s, ok := v[k].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		if s, ok := v["data"].(string); ok {
			return decodeRevertHex(s)
		}
	}
	return ""
}

func decodeRevertHex(s string) string {
	if !strings.HasPrefix(s, "0x") {
		return ""
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return ""
	}
	return decodeRevertBytes(b)
}

func decodeRevertBytes(b []byte) string {
	if len(b) < 4 {
		return ""
	}
	if reason, err := abi.UnpackRevert(b); err == nil {
		return reason
	}
	return "custom error 0x" + hex.EncodeToString(b[:4])
}

func reasonFromText(s string) string {
	i := strings.Index(s, revertedMarker)
	if i < 0 {
		return ""
	}
	rest := strings.TrimSpace(s[i+len(revertedMarker):])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	return rest
}

func reasonFromJSON(s string) string {
	i := strings.Index(s, "{")
	if i < 0 {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(s[i:]), &body); err != nil {
		return ""
	}
	if body.Error != nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return body.Message
}
