package main

import "strings"

// friendlyError normalizes common RPC and aggregator failures for readable CLI output.
func friendlyError(s string) string {
	ls := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(ls, "insufficient funds for gas"):
		return "insufficient native balance to cover gas"
	case strings.Contains(ls, "too many requests"), strings.Contains(ls, "-32005"):
		return "RPC rate limited (try lowering RPC_RPS)"
	case strings.Contains(ls, "invalid character '<'"):
		return "non-JSON/HTML response (proxy/cf?)"
	case strings.Contains(ls, "dial tcp"), strings.Contains(ls, "lookup "), strings.Contains(ls, "no such host"):
		return "network/DNS error"
	case strings.Contains(ls, "context deadline exceeded"):
		return "RPC timeout"
	case strings.Contains(ls, "transfer amount exceeds allowance"), strings.Contains(ls, "transfer_from_failed"):
		return "token allowance too low (approve first)"
	}
	return s
}
