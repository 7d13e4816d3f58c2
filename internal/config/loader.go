package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies CTEXPLORER_* environment variable overrides, and
// returns the final Config. An empty path skips the file and uses defaults.
// The returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		// A [[tokens]] list in the file replaces the default tokens instead of
		// being merged into them element by element.
		defaultTokens := cfg.Tokens
		cfg.Tokens = nil
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
		if !md.IsDefined("tokens") {
			cfg.Tokens = defaultTokens
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides reads well-known CTEXPLORER_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty).
func applyEnvOverrides(cfg *Config) error {
	// ── Display ──
	setInt(&cfg.Display.ShortIDHead, "CTEXPLORER_DISPLAY_SHORT_ID_HEAD")
	setInt(&cfg.Display.ShortIDTail, "CTEXPLORER_DISPLAY_SHORT_ID_TAIL")

	// ── Redeem ──
	setInt64(&cfg.Redeem.PayoutScale, "CTEXPLORER_REDEEM_PAYOUT_SCALE")

	// ── Split ──
	setInt(&cfg.Split.Concurrency, "CTEXPLORER_SPLIT_CONCURRENCY")

	// ── Tokens ──
	var extra []string
	setStringSlice(&extra, "CTEXPLORER_TOKENS")
	for _, spec := range extra {
		t, err := parseTokenSpec(spec)
		if err != nil {
			return fmt.Errorf("config: CTEXPLORER_TOKENS: %w", err)
		}
		cfg.Tokens = append(cfg.Tokens, t)
	}

	// ── Top-level ──
	setStr(&cfg.LogLevel, "CTEXPLORER_LOG_LEVEL")
	return nil
}

// parseTokenSpec parses "address:symbol:decimals".
func parseTokenSpec(spec string) (TokenConfig, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return TokenConfig{}, fmt.Errorf("token %q: want address:symbol:decimals", spec)
	}
	dec, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 32)
	if err != nil {
		return TokenConfig{}, fmt.Errorf("token %q: decimals: %w", spec, err)
	}
	return TokenConfig{
		Address:  strings.TrimSpace(parts[0]),
		Symbol:   strings.TrimSpace(parts[1]),
		Decimals: int32(dec),
	}, nil
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
