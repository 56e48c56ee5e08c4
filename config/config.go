package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// Config is the on-disk daemon configuration.
type Config struct {
	RPCAddress      string            `toml:"RPCAddress"`
	DataDir         string            `toml:"DataDir"`
	NetworkName     string            `toml:"NetworkName"`
	BaseMetadataURI string            `toml:"BaseMetadataURI"`
	SwapFeePercent  uint32            `toml:"SwapFeePercent"`
	PlatformAccount string            `toml:"PlatformAccount"`
	LogFile         string            `toml:"LogFile"`
	GenesisAlloc    map[string]string `toml:"GenesisAlloc"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "palette-local"
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./palette-data"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the node relies on.
func (c *Config) Validate() error {
	if c.SwapFeePercent > 100 {
		return fmt.Errorf("config: SwapFeePercent %d out of range", c.SwapFeePercent)
	}
	if _, err := c.Platform(); err != nil {
		return err
	}
	if _, err := c.Allocs(); err != nil {
		return err
	}
	return nil
}

// Platform returns the parsed platform account.
func (c *Config) Platform() ([20]byte, error) {
	trimmed := strings.TrimSpace(c.PlatformAccount)
	if !common.IsHexAddress(trimmed) {
		return [20]byte{}, fmt.Errorf("config: PlatformAccount %q is not a hex address", c.PlatformAccount)
	}
	return common.HexToAddress(trimmed), nil
}

// Allocs returns the parsed genesis balances.
func (c *Config) Allocs() (map[[20]byte]*big.Int, error) {
	allocs := make(map[[20]byte]*big.Int, len(c.GenesisAlloc))
	for raw, value := range c.GenesisAlloc {
		trimmed := strings.TrimSpace(raw)
		if !common.IsHexAddress(trimmed) {
			return nil, fmt.Errorf("config: alloc address %q is not a hex address", raw)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
		if !ok || amount.Sign() < 0 {
			return nil, fmt.Errorf("config: alloc amount %q for %s is not a non-negative decimal", value, raw)
		}
		allocs[common.HexToAddress(trimmed)] = amount
	}
	return allocs, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:      ":8545",
		DataDir:         "./palette-data",
		NetworkName:     "palette-local",
		BaseMetadataURI: "http://localhost:3000/",
		SwapFeePercent:  3,
		PlatformAccount: "0x0000000000000000000000000000000000000001",
		GenesisAlloc:    map[string]string{},
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
