// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

type Config struct {
	RPCURL          string `mapstructure:"rpc_url"`
	WebSocketURL    string `mapstructure:"websocket_url"`
	Commitment      string `mapstructure:"commitment"`
	SlippageBps     uint64 `mapstructure:"slippage_bps"`
	Retries         int    `mapstructure:"retries"`
	RetryIntervalMs int    `mapstructure:"retry_interval_ms"`
	DebugLogging    bool   `mapstructure:"debug_logging"`
	ForceCreateATA  bool   `mapstructure:"force_create_ata"`
	TrackVolume     bool   `mapstructure:"track_volume"`
	EventBuffer     int    `mapstructure:"event_buffer"`

	PriorityLevel     string `mapstructure:"priority_level"`
	PriorityUnitLimit uint32 `mapstructure:"priority_unit_limit"`
	PriorityUnitPrice uint64 `mapstructure:"priority_unit_price"`
}

const (
	DefaultRPCURL          = rpc.MainNetBeta_RPC
	DefaultWebSocketURL    = rpc.MainNetBeta_WS
	DefaultCommitment      = "confirmed"
	DefaultSlippageBps     = 500
	DefaultRetries         = 3
	DefaultRetryIntervalMs = 200
	DefaultEventBuffer     = 256

	maxSlippageBps = 10_000
	envPrefix      = "PUMPFUN"
)

// LoadConfig reads configuration from path, then applies PUMPFUN_* environment
// overrides. An empty path uses defaults and the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_url":             DefaultRPCURL,
		"websocket_url":       DefaultWebSocketURL,
		"commitment":          DefaultCommitment,
		"slippage_bps":        DefaultSlippageBps,
		"retries":             DefaultRetries,
		"retry_interval_ms":   DefaultRetryIntervalMs,
		"debug_logging":       false,
		"force_create_ata":    false,
		"track_volume":        true,
		"event_buffer":        DefaultEventBuffer,
		"priority_level":      "",
		"priority_unit_limit": 0,
		"priority_unit_price": 0,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Commitment = strings.ToLower(strings.TrimSpace(cfg.Commitment))
	cfg.PriorityLevel = strings.ToLower(strings.TrimSpace(cfg.PriorityLevel))
	return &cfg, validateConfig(&cfg)
}

// CommitmentType returns the configured commitment for solana-go.
func (c *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(c.Commitment)
}

// PriorityFee resolves the compute budget for trades: the named profile with
// explicit unit limit and price overriding it. Nil means no compute budget instructions.
func (c *Config) PriorityFee() (*pumpfun.PriorityFee, error) {
	var fee pumpfun.PriorityFee
	if c.PriorityLevel != "" {
		profile, err := pumpfun.PriorityProfile(pumpfun.PriorityLevel(c.PriorityLevel))
		if err != nil {
			return nil, err
		}
		fee = profile
	}
	if c.PriorityUnitLimit > 0 {
		fee.UnitLimit = c.PriorityUnitLimit
	}
	if c.PriorityUnitPrice > 0 {
		fee.UnitPrice = c.PriorityUnitPrice
	}
	if fee == (pumpfun.PriorityFee{}) {
		return nil, nil
	}
	return &fee, nil
}

// RetryInterval returns the initial RPC retry interval.
func (c *Config) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMs) * time.Millisecond
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("rpc_url is empty")
	}
	if err := validateURL(cfg.RPCURL, "http"); err != nil {
		return fmt.Errorf("invalid rpc_url: %w", err)
	}
	if cfg.WebSocketURL != "" {
		if err := validateURL(cfg.WebSocketURL, "ws"); err != nil {
			return fmt.Errorf("invalid websocket_url: %w", err)
		}
	}
	switch rpc.CommitmentType(cfg.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("invalid commitment %q", cfg.Commitment)
	}
	if _, err := cfg.PriorityFee(); err != nil {
		return err
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.SlippageBps > maxSlippageBps {
		return fmt.Errorf("slippage_bps must be at most %d", maxSlippageBps)
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RetryIntervalMs <= 0 {
		return errors.New("invalid retry_interval_ms")
	}
	if cfg.EventBuffer <= 0 {
		return errors.New("invalid event_buffer")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}
