package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/predictbet/gopredict/pkg/logger"
	"github.com/predictbet/gopredict/predict/types"
)

// WalletConfig holds signer material. PrivateKey may come from the
// PREDICT_PRIVATE_KEY env var instead of the file.
type WalletConfig struct {
	PrivateKey string `yaml:"private_key"`
	Address    string `yaml:"address"`
}

// ScanConfig tunes the redemption-history scanner.
type ScanConfig struct {
	LookbackDays  int    `yaml:"lookback_days"`  // 30-90, default 90
	MaxBlockRange uint64 `yaml:"max_block_range"` // RPC provider per-query cap
}

// Config is the application configuration, loaded from YAML with env
// overrides for secrets.
type Config struct {
	Network   string        `yaml:"network"` // mainnet | testnet
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	RPCURL    string        `yaml:"rpc_url"`
	StorePath string        `yaml:"store_path"`
	Wallet    WalletConfig  `yaml:"wallet"`
	Scan      ScanConfig    `yaml:"scan"`
	Log       logger.Config `yaml:"log"`
}

// Load reads a YAML config file and applies env overrides. A missing file is
// not an error; env alone can configure the client.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Network:   string(types.NetworkTestnet),
		StorePath: "data/gopredict",
		Scan:      ScanConfig{LookbackDays: 90, MaxBlockRange: 9_999},
		Log:       logger.Config{Level: "info"},
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PREDICT_NETWORK"); v != "" {
		cfg.Network = v
	}
	if v := os.Getenv("PREDICT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PREDICT_RPC_URL"); v != "" {
		cfg.RPCURL = v
	}
	if v := os.Getenv("PREDICT_PRIVATE_KEY"); v != "" {
		cfg.Wallet.PrivateKey = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch types.Network(strings.ToLower(c.Network)) {
	case types.NetworkMainnet, types.NetworkTestnet:
	default:
		return fmt.Errorf("unknown network %q", c.Network)
	}
	if c.Scan.LookbackDays < 30 || c.Scan.LookbackDays > 90 {
		return fmt.Errorf("scan.lookback_days must be within [30,90], got %d", c.Scan.LookbackDays)
	}
	if c.Scan.MaxBlockRange == 0 {
		return fmt.Errorf("scan.max_block_range must be positive")
	}
	return nil
}

// NetworkType returns the typed network selector.
func (c *Config) NetworkType() types.Network {
	return types.Network(strings.ToLower(c.Network))
}
