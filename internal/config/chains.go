package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed chains.yaml
var defaultChainsYAML []byte

// Chain is one network profile.
type Chain struct {
	ID       uint64 `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	RPC      string `yaml:"rpc" json:"rpc"`
	Explorer string `yaml:"explorer" json:"explorer"`
	Symbol   string `yaml:"symbol" json:"symbol"`
}

// TxURL links a transaction on the chain's explorer.
func (c Chain) TxURL(hash string) string {
	if c.Explorer == "" {
		return ""
	}
	return c.Explorer + "/tx/" + hash
}

// Chains indexes profiles by id.
type Chains map[uint64]Chain

type chainsFile struct {
	Chains []Chain `yaml:"chains"`
}

// LoadChains returns the embedded profiles, replaced per id by those in path
// when path is set.
func LoadChains(path string) (Chains, error) {
	out, err := parseChains(defaultChainsYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded chains: %w", err)
	}
	if path == "" {
		return out, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chains file: %w", err)
	}
	extra, err := parseChains(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for id, c := range extra {
		out[id] = c
	}
	return out, nil
}

func parseChains(raw []byte) (Chains, error) {
	var f chainsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	out := make(Chains, len(f.Chains))
	for _, c := range f.Chains {
		if c.ID == 0 {
			return nil, fmt.Errorf("chain %q has no id", c.Name)
		}
		out[c.ID] = c
	}
	return out, nil
}

// RPCFor picks the RPC for chainID: the explicit URL when set, else the profile's.
func (cs Chains) RPCFor(chainID uint64, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	c, ok := cs[chainID]
	if !ok || c.RPC == "" {
		return "", fmt.Errorf("no RPC configured for chain %d (set RPC_URL)", chainID)
	}
	return c.RPC, nil
}
