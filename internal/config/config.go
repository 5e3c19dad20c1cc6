// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/dexpulse/arbscan/internal/chain"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Scan       ScanConfig       `mapstructure:"scan"`
	Arbitrage  ArbitrageConfig  `mapstructure:"arbitrage"`
	MultiLeg   MultiLegConfig   `mapstructure:"multi_leg"`
	Momentum   MomentumConfig   `mapstructure:"momentum"`
	Validation ValidationConfig `mapstructure:"validation"`
	APIs       APIConfig        `mapstructure:"apis"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	HealthPort  int    `mapstructure:"health_port"`
	TUIMode     bool   `mapstructure:"-"` // set at runtime, not from file
}

// ScanConfig holds scan loop settings.
type ScanConfig struct {
	Chains        []string      `mapstructure:"chains"`
	Tokens        []string      `mapstructure:"tokens"`
	Interval      time.Duration `mapstructure:"interval"`
	AlertCooldown time.Duration `mapstructure:"alert_cooldown"`
}

// ArbitrageConfig holds thresholds for the pairwise analyzer.
type ArbitrageConfig struct {
	TradeVolumeUSD      float64 `mapstructure:"trade_volume_usd"`
	DexFeePct           float64 `mapstructure:"dex_fee_pct"`
	SlippagePct         float64 `mapstructure:"slippage_pct"`
	MinBullishProfitPct float64 `mapstructure:"min_bullish_profit_pct"`
	MinBearishDiscPct   float64 `mapstructure:"min_bearish_discrepancy_pct"`
	MinLiquidityUSD     float64 `mapstructure:"min_liquidity_usd"`
	MinVolume24hUSD     float64 `mapstructure:"min_volume_24h_usd"`
	MinTxnsH1           int     `mapstructure:"min_txns_h1"` // 0 disables the check
}

// MultiLegConfig holds settings for the cycle finder.
type MultiLegConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	MaxCycleLength  int     `mapstructure:"max_cycle_length"`
	MaxFetchDepth   int     `mapstructure:"max_fetch_depth"`
	MinNetProfitUSD float64 `mapstructure:"min_net_profit_usd"`
	MinLiquidityUSD float64 `mapstructure:"min_liquidity_usd"` // 0 admits every edge
}

// MomentumConfig holds momentum scoring settings.
type MomentumConfig struct {
	MinScoreBullish float64       `mapstructure:"min_score_bullish"`
	MinScoreBearish float64       `mapstructure:"min_score_bearish"`
	HistoryLimit    int           `mapstructure:"history_limit"`
	RSIPeriod       int           `mapstructure:"rsi_period"`
	PersistWindow   time.Duration `mapstructure:"persistence_window"`
}

// ValidationConfig holds on-chain price validation settings.
type ValidationConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	RPCURL        string        `mapstructure:"rpc_url"`
	MaxDiffPct    float64       `mapstructure:"max_diff_pct"`
	Timeout       time.Duration `mapstructure:"timeout"`
	BlockCacheTTL time.Duration `mapstructure:"block_cache_ttl"`
}

// APIConfig holds external API settings.
type APIConfig struct {
	EtherscanAPIKey string `mapstructure:"etherscan_api_key"`
	CoinGeckoAPIKey string `mapstructure:"coingecko_api_key"`
	DexScreenerRPM  int    `mapstructure:"dexscreener_rpm"`
	EtherscanRPM    int    `mapstructure:"etherscan_rpm"`
	CoinGeckoRPM    int    `mapstructure:"coingecko_rpm"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	PostgresURL string `mapstructure:"postgres_url"` // empty disables history persistence
	RedisURL    string `mapstructure:"redis_url"`    // empty falls back to in-memory cooldown cache
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()
	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, env vars and defaults apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for basic consistency.
func (c *Config) Validate() error {
	if len(c.Scan.Chains) == 0 {
		return fmt.Errorf("scan.chains must not be empty")
	}
	for _, name := range c.Scan.Chains {
		if _, ok := chain.Lookup(name); !ok {
			return fmt.Errorf("unsupported chain %q (supported: %v)", name, chain.Names())
		}
	}
	if len(c.Scan.Tokens) == 0 && !c.MultiLeg.Enabled {
		return fmt.Errorf("scan.tokens must not be empty for single-leg scanning")
	}
	if c.Scan.Interval <= 0 {
		return fmt.Errorf("scan.interval must be positive")
	}
	if c.Arbitrage.TradeVolumeUSD <= 0 {
		return fmt.Errorf("arbitrage.trade_volume_usd must be positive")
	}
	if c.Arbitrage.DexFeePct < 0 || c.Arbitrage.SlippagePct < 0 {
		return fmt.Errorf("arbitrage fee and slippage percentages must be non-negative")
	}
	if c.MultiLeg.Enabled && c.MultiLeg.MaxCycleLength < 3 {
		return fmt.Errorf("multi_leg.max_cycle_length must be at least 3")
	}
	if c.Momentum.RSIPeriod <= 0 {
		return fmt.Errorf("momentum.rsi_period must be positive")
	}
	if c.Validation.Enabled {
		if c.Validation.RPCURL == "" {
			return fmt.Errorf("validation.rpc_url is required when validation is enabled")
		}
		if c.Validation.MaxDiffPct <= 0 {
			return fmt.Errorf("validation.max_diff_pct must be positive")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arbscan")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.health_port", 8090)

	v.SetDefault("scan.interval", "60s")
	v.SetDefault("scan.alert_cooldown", "1h")

	v.SetDefault("arbitrage.trade_volume_usd", 500.0)
	v.SetDefault("arbitrage.dex_fee_pct", 0.3)
	v.SetDefault("arbitrage.slippage_pct", 0.5)
	v.SetDefault("arbitrage.min_bullish_profit_pct", 0.0)
	v.SetDefault("arbitrage.min_bearish_discrepancy_pct", 1.0)
	v.SetDefault("arbitrage.min_liquidity_usd", 1000.0)
	v.SetDefault("arbitrage.min_volume_24h_usd", 1000.0)
	v.SetDefault("arbitrage.min_txns_h1", 1)

	v.SetDefault("multi_leg.enabled", false)
	v.SetDefault("multi_leg.max_cycle_length", 3)
	v.SetDefault("multi_leg.max_fetch_depth", 2)
	v.SetDefault("multi_leg.min_net_profit_usd", 0.0)
	v.SetDefault("multi_leg.min_liquidity_usd", 0.0)

	v.SetDefault("momentum.min_score_bullish", 0.0)
	v.SetDefault("momentum.min_score_bearish", 0.0)
	v.SetDefault("momentum.history_limit", 3)
	v.SetDefault("momentum.rsi_period", 14)
	v.SetDefault("momentum.persistence_window", "10m")

	v.SetDefault("validation.enabled", false)
	v.SetDefault("validation.max_diff_pct", 5.0)
	v.SetDefault("validation.timeout", "8s")
	v.SetDefault("validation.block_cache_ttl", "1s")

	v.SetDefault("apis.dexscreener_rpm", 300)
	v.SetDefault("apis.etherscan_rpm", 300)
	v.SetDefault("apis.coingecko_rpm", 30)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbscan")
	v.SetDefault("telemetry.prometheus_port", 9464)
}

func bindEnvVars(v *viper.Viper) {
	// Explicit binds for keys commonly supplied via environment.
	envBinds := map[string]string{
		"apis.etherscan_api_key": "ARB_ETHERSCAN_API_KEY",
		"apis.coingecko_api_key": "ARB_COINGECKO_API_KEY",
		"validation.rpc_url":     "ARB_VALIDATION_RPC_URL",
		"storage.postgres_url":   "ARB_POSTGRES_URL",
		"storage.redis_url":      "ARB_REDIS_URL",
		"app.log_level":          "ARB_LOG_LEVEL",
	}
	for key, env := range envBinds {
		_ = v.BindEnv(key, env)
	}
}
