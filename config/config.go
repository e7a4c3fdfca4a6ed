package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"modelmarket/core/types"
)

// GenesisAlloc seeds a payment-token balance at first start. Token is one of
// "primary" or "secondary"; Amount is a base-10 integer string.
type GenesisAlloc struct {
	Account string `toml:"Account"`
	Token   string `toml:"Token"`
	Amount  string `toml:"Amount"`
}

type Config struct {
	DataDir            string         `toml:"DataDir"`
	RPCAddress         string         `toml:"RPCAddress"`
	LogFile            string         `toml:"LogFile"`
	LogEnv             string         `toml:"LogEnv"`
	AdminAddress       string         `toml:"AdminAddress"`
	AdminToken         string         `toml:"AdminToken"`
	PrimaryToken       string         `toml:"PrimaryToken"`
	SecondaryToken     string         `toml:"SecondaryToken"`
	FeeAggregator      string         `toml:"FeeAggregator"`
	FarmAddress        string         `toml:"FarmAddress"`
	FeeSplitter        string         `toml:"FeeSplitter"`
	Platform           string         `toml:"Platform"`
	ReferralWindowDays int            `toml:"ReferralWindowDays"`
	Genesis            []GenesisAlloc `toml:"Genesis"`
}

// Load reads the configuration from the given path, writing defaults when the
// file does not exist yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./marketdata"
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.PrimaryToken) == "" {
		cfg.PrimaryToken = "MAIN"
	}
	if strings.TrimSpace(cfg.SecondaryToken) == "" {
		cfg.SecondaryToken = "ALT"
	}
	if cfg.ReferralWindowDays <= 0 {
		cfg.ReferralWindowDays = 365
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every configured address parses.
func Validate(cfg *Config) error {
	fields := map[string]string{
		"AdminAddress":  cfg.AdminAddress,
		"FeeAggregator": cfg.FeeAggregator,
		"FarmAddress":   cfg.FarmAddress,
		"FeeSplitter":   cfg.FeeSplitter,
		"Platform":      cfg.Platform,
	}
	for name, value := range fields {
		if _, err := types.ParseAddress(value); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	for i, alloc := range cfg.Genesis {
		if _, err := types.ParseAddress(alloc.Account); err != nil {
			return fmt.Errorf("config: Genesis[%d].Account: %w", i, err)
		}
		kind := strings.ToLower(strings.TrimSpace(alloc.Token))
		if kind != "primary" && kind != "secondary" {
			return fmt.Errorf("config: Genesis[%d].Token: want primary or secondary, got %q", i, alloc.Token)
		}
		if _, ok := new(big.Int).SetString(strings.TrimSpace(alloc.Amount), 10); !ok {
			return fmt.Errorf("config: Genesis[%d].Amount: invalid integer %q", i, alloc.Amount)
		}
	}
	return nil
}
