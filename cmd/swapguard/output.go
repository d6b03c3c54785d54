package main

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/fatih/color"

	"github.com/ligun0805/swapguard/internal/swapcore"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	badMark  = color.New(color.FgRed).SprintFunc()
)

func severityColor(s swapcore.Severity) func(a ...any) string {
	switch s {
	case swapcore.SeverityHigh:
		return badMark
	case swapcore.SeverityMedium:
		return warnMark
	}
	return okMark
}

func printSimulation(res swapcore.SimulationResult, symbol string) {
	fmt.Println("=== SIMULATION ===")
	if !res.OK {
		fmt.Println(badMark("[X]"), "simulation failed:", friendlyError(res.Error))
		return
	}
	fmt.Println("Gas               :", res.Gas)
	switch {
	case res.MaxFeePerGas != nil:
		fmt.Printf("MaxFeePerGas      : %s gwei (tip %s gwei)\n", swapcore.FormatGwei(res.MaxFeePerGas), swapcore.FormatGwei(res.MaxPriorityFeePerGas))
	case res.GasPrice != nil:
		fmt.Printf("GasPrice          : %s gwei\n", swapcore.FormatGwei(res.GasPrice))
	}
	fmt.Printf("Fee (max)         : %s %s\n", swapcore.FormatEther(res.Fee), symbol)
	if res.CallSuccess {
		fmt.Println("Dry-run           :", okMark("success"))
	} else {
		fmt.Println("Dry-run           :", badMark("revert"), res.CallRevertReason)
	}
}

func printSafety(res swapcore.SafetyResult) {
	fmt.Println("=== SAFETY ===")
	paint := severityColor(res.Level)
	fmt.Printf("Score             : %s (%s)\n", paint(res.Score), paint(strings.ToUpper(string(res.Level))))
	if len(res.Issues) == 0 {
		fmt.Println("Issues            :", okMark("none"))
		return
	}
	for _, is := range res.Issues {
		fmt.Printf("  %-8s %s\n", severityColor(is.Severity)("["+string(is.Severity)+"]"), is.Message)
	}
}

// formatTokens renders base units with the token's decimals.
func formatTokens(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	if decimals <= 0 {
		return v.String()
	}
	s := new(big.Int).Abs(v).String()
	neg := v.Sign() < 0
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}
	intPart, frac := s[:len(s)-decimals], strings.TrimRight(s[len(s)-decimals:], "0")
	out := intPart
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// toBaseUnits converts "1.5" with 6 decimals to 1500000.
func toBaseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if decimals < 0 {
		decimals = 18
	}
	intPart, fracPart, _ := strings.Cut(amount, ".")
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("too many fractional digits for %d decimals", decimals)
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))
	clean := strings.TrimLeft(intPart+fracPart, "0")
	if clean == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(clean, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("bad amount %q", amount)
	}
	return v, nil
}

// redactURL keeps scheme and host; paths and queries often carry API keys.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<rpc>"
	}
	out := u.Scheme + "://" + u.Host
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
		out += "/***"
	}
	return out
}
