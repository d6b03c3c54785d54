package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings keeps all configuration options.
type Settings struct {
	RPCURL             string
	ExpectedChainID    uint64
	DefaultSlippageBps int
	Confirmations      uint64
	PollInterval       time.Duration
	BasefeeMul         int64

	RPCRPS        float64
	RPCBurst      int
	RPCMaxRetries int
	RPCTimeout    time.Duration

	AggregatorBaseURL string
	AggregatorHeaders map[string]string

	ListenAddr string
	LogLevel   string
	Stage      string
	ChainsFile string

	NetcheckBlocks int
	NetcheckPcts   []int
}

// Load reads settings from environment supporting both UPPER_CASE and lower_case keys.
func Load() Settings {
	get := func(keys []string, def string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				return v
			}
		}
		return def
	}
	getInt := func(keys []string, def int) int {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		return def
	}
	getInt64 := func(keys []string, def int64) int64 {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		return def
	}
	getUint64 := func(keys []string, def uint64) uint64 {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
		return def
	}
	getFloat := func(keys []string, def float64) float64 {
		s := get(keys, "")
		if s == "" {
			return def
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
		return def
	}
	getMillis := func(keys []string, def int64) time.Duration {
		return time.Duration(getInt64(keys, def)) * time.Millisecond
	}

	st := Settings{}
	st.RPCURL = get([]string{"rpc_url", "RPC_URL"}, "")
	st.ExpectedChainID = getUint64([]string{"expected_chain_id", "EXPECTED_CHAIN_ID"}, 195)
	st.DefaultSlippageBps = getInt([]string{"default_slippage_bps", "DEFAULT_SLIPPAGE_BPS"}, 50)
	st.Confirmations = getUint64([]string{"confirmations", "CONFIRMATIONS"}, 3)
	st.PollInterval = getMillis([]string{"poll_interval_ms", "POLL_INTERVAL_MS"}, 4000)
	st.BasefeeMul = getInt64([]string{"basefee_mul", "BASEFEE_MUL"}, 2)

	st.RPCRPS = getFloat([]string{"rpc_rps", "RPC_RPS"}, 10)
	st.RPCBurst = getInt([]string{"rpc_burst", "RPC_BURST"}, 5)
	st.RPCMaxRetries = getInt([]string{"rpc_max_retries", "RPC_MAX_RETRIES"}, 3)
	st.RPCTimeout = getMillis([]string{"rpc_timeout_ms", "RPC_TIMEOUT_MS"}, 12000)

	st.AggregatorBaseURL = get([]string{"aggregator_base_url", "AGGREGATOR_BASE_URL"}, "https://web3.okx.com")
	st.AggregatorHeaders = ParseHeaders(get([]string{"aggregator_headers", "AGGREGATOR_HEADERS"}, ""))

	st.ListenAddr = get([]string{"listen_addr", "LISTEN_ADDR"}, ":8080")
	st.LogLevel = get([]string{"log_level", "LOG_LEVEL"}, "")
	st.Stage = get([]string{"stage", "STAGE"}, "dev")
	st.ChainsFile = get([]string{"chains_file", "CHAINS_FILE"}, "")

	st.NetcheckBlocks = getInt([]string{"netcheck_blocks", "NETCHECK_BLOCKS"}, 100)
	st.NetcheckPcts = ParseCSVInts(get([]string{"netcheck_pcts", "NETCHECK_PCTS"}, ""), []int{50, 95, 99})

	return st
}

// ParseHeaders reads "k=v,k=v" into a header map. Malformed pairs are dropped.
func ParseHeaders(s string) map[string]string {
	out := map[string]string{}
	for _, p := range SplitCSV(s) {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// SplitCSV splits on commas and drops empty items.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseCSVInts parses "a,b,c" into []int with defaults if empty/bad.
func ParseCSVInts(s string, def []int) []int {
	parts := SplitCSV(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if v, err := strconv.Atoi(p); err == nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
