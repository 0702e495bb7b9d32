package infra

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MCarmody17/ReadyTraderGo/internal/domain"
)

// Config holds the whole application configuration. After LoadConfig,
// credentials may be overridden through environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Exchange struct {
		WSURL    string `yaml:"ws_url"`
		TeamName string `yaml:"team_name"`
		Secret   string `yaml:"secret"`
	} `yaml:"exchange"`

	Trading struct {
		TickSize      int64 `yaml:"tick_size"`      // minor currency units per tick
		BaseTicks     int64 `yaml:"base_ticks"`     // unskewed quote distance
		InventoryUnit int64 `yaml:"inventory_unit"` // lots per tick of skew
		ClipSize      int64 `yaml:"clip_size"`      // base quote size per side
		PositionLimit int64 `yaml:"position_limit"` // hard inventory bound
		MinimumBid    int64 `yaml:"minimum_bid"`    // exchange price floor
		MaximumAsk    int64 `yaml:"maximum_ask"`    // exchange price ceiling
	} `yaml:"trading"`

	Storage struct {
		Path string `yaml:"path"` // SQLite session journal file
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity. Failures are reported as
// *domain.ConfigError naming the offending field.
func (c *Config) Validate() error {
	if c.Exchange.WSURL == "" || (!hasPrefix(c.Exchange.WSURL, "ws://") && !hasPrefix(c.Exchange.WSURL, "wss://")) {
		return configErr("exchange.ws_url", fmt.Sprintf("invalid WS URL: %q", c.Exchange.WSURL))
	}
	if c.Exchange.TeamName == "" {
		return configErr("exchange.team_name", "team name is required")
	}

	t := &c.Trading
	if t.TickSize <= 0 {
		return configErr("trading.tick_size", "must be positive")
	}
	if t.BaseTicks <= 0 {
		return configErr("trading.base_ticks", "must be positive")
	}
	if t.InventoryUnit <= 0 {
		return configErr("trading.inventory_unit", "must be positive")
	}
	if t.ClipSize <= 0 {
		return configErr("trading.clip_size", "must be positive")
	}
	if t.PositionLimit < t.ClipSize {
		return configErr("trading.position_limit",
			fmt.Sprintf("limit %d must be at least the clip size %d", t.PositionLimit, t.ClipSize))
	}
	if t.MinimumBid <= 0 || t.MaximumAsk <= t.MinimumBid {
		return configErr("trading.minimum_bid",
			fmt.Sprintf("hedge price bounds are inverted: min %d, max %d", t.MinimumBid, t.MaximumAsk))
	}

	if c.Storage.Path == "" {
		return configErr("storage.path", "storage path is required")
	}

	return nil
}

func configErr(field, msg string) error {
	return &domain.ConfigError{Field: field, Err: errors.New(msg)}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overwrites credentials when environment variables exist.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("RTG_EXCHANGE_URL"); url != "" {
		cfg.Exchange.WSURL = url
	}
	if team := os.Getenv("RTG_TEAM_NAME"); team != "" {
		cfg.Exchange.TeamName = team
	}
	if secret := os.Getenv("RTG_SECRET"); secret != "" {
		cfg.Exchange.Secret = secret
	}
}
