// Package config defines the configuration for the ctexplorer tools and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by CTEXPLORER_* environment variables.
type Config struct {
	Display  DisplayConfig `toml:"display"`
	Redeem   RedeemConfig  `toml:"redeem"`
	Split    SplitConfig   `toml:"split"`
	Tokens   []TokenConfig `toml:"tokens"`
	LogLevel string        `toml:"log_level"`
}

// DisplayConfig controls preview strings.
type DisplayConfig struct {
	ShortIDHead int `toml:"short_id_head"`
	ShortIDTail int `toml:"short_id_tail"`
}

// RedeemConfig holds redemption math parameters.
type RedeemConfig struct {
	// PayoutScale is the fixed-point factor applied to fractional payouts.
	PayoutScale int64 `toml:"payout_scale"`
}

// SplitConfig holds split derivation parameters.
type SplitConfig struct {
	Concurrency int `toml:"concurrency"`
}

// TokenConfig describes a known collateral token.
type TokenConfig struct {
	Address  string `toml:"address"`
	Symbol   string `toml:"symbol"`
	Decimals int32  `toml:"decimals"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Display: DisplayConfig{
			ShortIDHead: 8,
			ShortIDTail: 6,
		},
		Redeem: RedeemConfig{
			PayoutScale: 10000,
		},
		Split: SplitConfig{
			Concurrency: 4,
		},
		Tokens: []TokenConfig{
			{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Decimals: 18},
			{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Decimals: 6},
			{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Decimals: 18},
			{Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Symbol: "USDC.e", Decimals: 6},
		},
		LogLevel: "info",
	}
}

// DomainTokens converts the configured tokens into domain values.
func (c *Config) DomainTokens() []domain.Token {
	out := make([]domain.Token, len(c.Tokens))
	for i, t := range c.Tokens {
		out[i] = domain.Token{Address: t.Address, Symbol: t.Symbol, Decimals: t.Decimals}
	}
	return out
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// maxDecimals is the most decimals a uint256 amount can meaningfully carry.
const maxDecimals = 77

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Display
	if c.Display.ShortIDHead < 0 || c.Display.ShortIDTail < 0 {
		errs = append(errs, "display: short_id_head and short_id_tail must not be negative")
	}

	// Redeem
	if c.Redeem.PayoutScale <= 0 {
		errs = append(errs, "redeem: payout_scale must be positive")
	}

	// Split
	if c.Split.Concurrency <= 0 {
		errs = append(errs, "split: concurrency must be positive")
	}

	// Tokens
	seen := make(map[common.Address]bool, len(c.Tokens))
	for i, t := range c.Tokens {
		if !common.IsHexAddress(t.Address) {
			errs = append(errs, fmt.Sprintf("tokens[%d]: invalid address %q", i, t.Address))
			continue
		}
		addr := common.HexToAddress(t.Address)
		if seen[addr] {
			errs = append(errs, fmt.Sprintf("tokens[%d]: duplicate address %s", i, addr.Hex()))
		}
		seen[addr] = true
		if strings.TrimSpace(t.Symbol) == "" {
			errs = append(errs, fmt.Sprintf("tokens[%d]: symbol must not be empty", i))
		}
		if t.Decimals < 0 || t.Decimals > maxDecimals {
			errs = append(errs, fmt.Sprintf("tokens[%d]: decimals must be between 0 and %d, got %d", i, maxDecimals, t.Decimals))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
