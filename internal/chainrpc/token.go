package chainrpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	selDecimals  = common.FromHex("0x313ce567") // decimals()
	selSymbol    = common.FromHex("0x95d89b41") // symbol()
	selBalanceOf = common.FromHex("0x70a08231") // balanceOf(address)
	selAllowance = common.FromHex("0xdd62ed3e") // allowance(address,address)
)

// Restriction probes seen in the wild. Missing methods are skipped.
var (
	pausedSigs           = []string{"paused()", "isPaused()", "transfersPaused()", "tradingPaused()"}
	transferDisabledSigs = []string{"transferDisabled()", "isTransferDisabled()"}
	blacklistSigs        = []string{"isBlacklisted(address)", "isBlackListed(address)", "blacklisted(address)", "isInBlacklist(address)"}
)

func sel(sig string) []byte {
	return crypto.Keccak256([]byte(sig))[:4]
}

func withAddr(selector []byte, addrs ...common.Address) []byte {
	out := append([]byte{}, selector...)
	for _, a := range addrs {
		out = append(out, common.LeftPadBytes(a.Bytes(), 32)...)
	}
	return out
}

// TokenInfo is ERC-20 metadata plus optional owner-specific figures.
type TokenInfo struct {
	Address   common.Address `json:"address"`
	Symbol    string         `json:"symbol,omitempty"`
	Decimals  int            `json:"decimals"`
	Balance   *big.Int       `json:"balance,omitempty"`
	Allowance *big.Int       `json:"allowance,omitempty"`
}

// TokenDecimals reads decimals(); an empty return means 18.
func (c *Client) TokenDecimals(ctx context.Context, token common.Address) (int, error) {
	res, err := c.Call(ctx, ethereum.CallMsg{To: &token, Data: selDecimals})
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 18, nil
	}
	return int(res[len(res)-1]), nil
}

// TokenSymbol reads symbol() as either a dynamic string or bytes32.
func (c *Client) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	out, err := c.Call(ctx, ethereum.CallMsg{To: &token, Data: selSymbol})
	if err != nil {
		return "", err
	}
	return decodeSymbol(out), nil
}

func decodeSymbol(out []byte) string {
	if len(out) >= 64 {
		l := new(big.Int).SetBytes(out[32:64])
		if l.IsInt64() && l.Int64() > 0 && 64+int(l.Int64()) <= len(out) {
			return string(out[64 : 64+int(l.Int64())])
		}
	}
	return strings.TrimRight(string(out), "\x00")
}

func (c *Client) readUint(ctx context.Context, token common.Address, data []byte) (*big.Int, error) {
	res, err := c.Call(ctx, ethereum.CallMsg{To: &token, Data: data})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return new(big.Int), nil
	}
	if len(res) > 32 {
		res = res[:32]
	}
	return new(big.Int).SetBytes(res), nil
}

// TokenBalance reads balanceOf(owner).
func (c *Client) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return c.readUint(ctx, token, withAddr(selBalanceOf, owner))
}

// TokenAllowance reads allowance(owner, spender).
func (c *Client) TokenAllowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return c.readUint(ctx, token, withAddr(selAllowance, owner, spender))
}

// TokenInfo gathers metadata. owner and spender are optional.
func (c *Client) TokenInfo(ctx context.Context, token common.Address, owner, spender *common.Address) (TokenInfo, error) {
	info := TokenInfo{Address: token, Decimals: 18}
	dec, err := c.TokenDecimals(ctx, token)
	if err != nil {
		return info, fmt.Errorf("decimals(): %w", err)
	}
	info.Decimals = dec
	if sym, err := c.TokenSymbol(ctx, token); err == nil {
		info.Symbol = sym
	}
	if owner == nil {
		return info, nil
	}
	if info.Balance, err = c.TokenBalance(ctx, token, *owner); err != nil {
		return info, fmt.Errorf("balanceOf(): %w", err)
	}
	if spender != nil {
		if info.Allowance, err = c.TokenAllowance(ctx, token, *owner, *spender); err != nil {
			return info, fmt.Errorf("allowance(): %w", err)
		}
	}
	return info, nil
}

// TokenRestrictions lists transfer blockers a token advertises.
type TokenRestrictions struct {
	Paused           bool `json:"paused"`
	TransferDisabled bool `json:"transferDisabled"`
	Blacklisted      bool `json:"blacklisted"`
}

// Blocked reports whether any restriction applies.
func (tr TokenRestrictions) Blocked() bool {
	return tr.Paused || tr.TransferDisabled || tr.Blacklisted
}

func (tr TokenRestrictions) Summary() string {
	var parts []string
	if tr.Paused {
		parts = append(parts, "paused")
	}
	if tr.TransferDisabled {
		parts = append(parts, "transferDisabled")
	}
	if tr.Blacklisted {
		parts = append(parts, "blacklisted")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// CheckRestrictions probes well-known pause, transfer-switch and blacklist
// views. Calls that revert or return nothing count as "not advertised".
func (c *Client) CheckRestrictions(ctx context.Context, token, holder common.Address) TokenRestrictions {
	var out TokenRestrictions
	flag := func(data []byte) bool {
		res, err := c.Call(ctx, ethereum.CallMsg{To: &token, Data: data})
		return err == nil && len(res) > 0 && res[len(res)-1] == 1
	}
	for _, s := range pausedSigs {
		if flag(sel(s)) {
			out.Paused = true
			break
		}
	}
	for _, s := range transferDisabledSigs {
		if flag(sel(s)) {
			out.TransferDisabled = true
			break
		}
	}
	for _, s := range blacklistSigs {
		if flag(withAddr(sel(s), holder)) {
			out.Blacklisted = true
			break
		}
	}
	return out
}
