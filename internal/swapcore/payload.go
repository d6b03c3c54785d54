package swapcore

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Lookup walks a decoded JSON tree (map[string]any / []any) along path.
// Numeric segments index into arrays. A nil leaf counts as absent.
func Lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// splitPath turns "data.0.tx" into its segments.
func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, ".")
}

// DecodePayload parses an opaque aggregator body, keeping numbers as json.Number.
func DecodePayload(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
