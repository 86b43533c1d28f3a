// Package config loads the backtest configuration from YAML.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/position"
	"walkforward-lab/internal/risk"
	"walkforward-lab/internal/strategy"
	"walkforward-lab/internal/walkforward"
)

// Environment variables that override file settings.
const (
	EnvPostgresDSN   = "WF_POSTGRES_DSN"
	EnvClickhouseDSN = "WF_CLICKHOUSE_DSN"
	EnvRedisAddr     = "WF_REDIS_ADDR"
	EnvLogLevel      = "WF_LOG_LEVEL"
)

// Config is the full run configuration.
type Config struct {
	Log         LogConfig               `yaml:"log" json:"-"`
	Data        DataConfig              `yaml:"data" json:"data"`
	Position    PositionConfig          `yaml:"position" json:"position"`
	Risk        RiskConfig              `yaml:"risk" json:"risk"`
	Cost        CostConfig              `yaml:"cost" json:"cost"`
	WalkForward WalkForwardConfig       `yaml:"walkforward" json:"walkforward"`
	Strategies  []domain.StrategyConfig `yaml:"strategies" json:"strategies"`
	Storage     StorageConfig           `yaml:"storage" json:"-"`
	Cache       CacheConfig             `yaml:"cache" json:"-"`
	Output      OutputConfig            `yaml:"output" json:"-"`
	Server      ServerConfig            `yaml:"server" json:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stderr" validate:"required"`
}

type DataConfig struct {
	PricesCSV string `yaml:"prices_csv" json:"-"`
	Symbol    string `yaml:"symbol" json:"symbol" default:"PRICE" validate:"required"`
}

// PositionConfig configures the holding gate and the exit machine.
// A MinHold of 1 lets every change through.
type PositionConfig struct {
	MinHold      int     `yaml:"min_hold" json:"min_hold" default:"5" validate:"gte=1"`
	ExitsEnabled *bool   `yaml:"exits_enabled" json:"exits_enabled" default:"true"`
	StopLoss     float64 `yaml:"stop_loss" json:"stop_loss" default:"-0.02" validate:"lt=0"`
	TakeProfit   float64 `yaml:"take_profit" json:"take_profit" default:"0.04" validate:"gt=0"`
}

type RiskConfig struct {
	VolScaling     *bool   `yaml:"vol_scaling" json:"vol_scaling" default:"true"`
	RegimeGating   *bool   `yaml:"regime_gating" json:"regime_gating" default:"true"`
	TargetVol      float64 `yaml:"target_vol" json:"target_vol" default:"0.15" validate:"gt=0"`
	VolWindow      int     `yaml:"vol_window" json:"vol_window" default:"20" validate:"gte=2"`
	PeriodsPerYear float64 `yaml:"periods_per_year" json:"periods_per_year" default:"252" validate:"gt=0"`
	MinLeverage    float64 `yaml:"min_leverage" json:"min_leverage" default:"0.25" validate:"gt=0"`
	MaxLeverage    float64 `yaml:"max_leverage" json:"max_leverage" default:"3" validate:"gtefield=MinLeverage"`
	RegimeWindow   int     `yaml:"regime_window" json:"regime_window" default:"200" validate:"gte=1"`
}

type CostConfig struct {
	TCost *float64 `yaml:"tcost" json:"tcost" default:"0.00015" validate:"required,gte=0"`
}

type WalkForwardConfig struct {
	LookbackPeriod    string  `yaml:"lookback_period" json:"lookback_period" default:"24M" validate:"months"`
	RebalanceFreq     string  `yaml:"rebalance_freq" json:"rebalance_freq" default:"3M" validate:"months"`
	TopN              int     `yaml:"top_n" json:"top_n" default:"3" validate:"gte=1"`
	Score             string  `yaml:"score" json:"score" default:"sharpe" validate:"score"`
	SkipLookbackCheck bool    `yaml:"skip_lookback_check" json:"skip_lookback_check"`
	Workers           int     `yaml:"workers" json:"-" default:"4" validate:"gte=1"`
	TradingDays       float64 `yaml:"trading_days" json:"trading_days" default:"252" validate:"gt=0"`
}

// StorageConfig selects persistence. With UseMemory set, or with no DSN
// configured, runs are kept in process.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
	UseMemory     bool   `yaml:"use_memory"`
}

type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	Prefix    string        `yaml:"prefix" default:"walkforward"`
	TTL       time.Duration `yaml:"ttl" default:"24h" validate:"gte=0"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" default:"output" validate:"required"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// An empty path starts from the defaults.
func LoadWithEnv(path string) (*Config, error) {
	c := Default()
	if path != "" {
		var err error
		if c, err = read(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Storage.PostgresDSN = v
	}
	if v := os.Getenv(EnvClickhouseDSN); v != "" {
		c.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func read(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML and fills defaults. It does not validate.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Validate checks field constraints, then the strategy list.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := strategy.FromConfigs(c.StrategyConfigs()); err != nil {
		return fmt.Errorf("strategies: %w", err)
	}
	return nil
}

// StrategyConfigs returns the configured strategies, or the default catalog
// when none are listed.
func (c *Config) StrategyConfigs() []domain.StrategyConfig {
	if len(c.Strategies) == 0 {
		return strategy.DefaultConfigs()
	}
	return c.Strategies
}

// ExitRule returns the stop-loss / take-profit rule.
func (c *Config) ExitRule() position.ExitRule {
	return position.ExitRule{
		StopLoss:   c.Position.StopLoss,
		TakeProfit: c.Position.TakeProfit,
		MinHold:    c.Position.MinHold,
	}
}

// ExitsEnabled reports whether the exit machine runs.
func (c *Config) ExitsEnabled() bool {
	return c.Position.ExitsEnabled == nil || *c.Position.ExitsEnabled
}

// VolTarget returns the volatility scaling settings.
func (c *Config) VolTarget() risk.VolTarget {
	return risk.VolTarget{
		Target:         c.Risk.TargetVol,
		Window:         c.Risk.VolWindow,
		PeriodsPerYear: c.Risk.PeriodsPerYear,
		MinLeverage:    c.Risk.MinLeverage,
		MaxLeverage:    c.Risk.MaxLeverage,
	}
}

// VolScaling reports whether positions are volatility scaled.
func (c *Config) VolScaling() bool {
	return c.Risk.VolScaling == nil || *c.Risk.VolScaling
}

// RegimeGating reports whether family regime filters apply.
func (c *Config) RegimeGating() bool {
	return c.Risk.RegimeGating == nil || *c.Risk.RegimeGating
}

// TCost returns the per-unit-turnover cost.
func (c *Config) TCost() float64 {
	if c.Cost.TCost == nil {
		return 0
	}
	return *c.Cost.TCost
}

// Ensembler returns the walk-forward settings.
func (c *Config) Ensembler() walkforward.Config {
	return walkforward.Config{
		LookbackPeriod:    c.WalkForward.LookbackPeriod,
		RebalanceFreq:     c.WalkForward.RebalanceFreq,
		TopN:              c.WalkForward.TopN,
		Score:             c.WalkForward.Score,
		SkipLookbackCheck: c.WalkForward.SkipLookbackCheck,
		Workers:           c.WalkForward.Workers,
	}
}

// UniverseJSON is the canonical JSON of every setting that shapes strategy
// PnL. It keys the universe cache.
func (c *Config) UniverseJSON() ([]byte, error) {
	return json.Marshal(struct {
		Position   PositionConfig          `json:"position"`
		Risk       RiskConfig              `json:"risk"`
		Cost       CostConfig              `json:"cost"`
		Strategies []domain.StrategyConfig `json:"strategies"`
	}{c.Position, c.Risk, c.Cost, c.StrategyConfigs()})
}

// RunJSON is the canonical JSON of every setting that shapes a run's
// results. It feeds the run ID and is stored with the run.
func (c *Config) RunJSON() ([]byte, error) {
	snapshot := *c
	snapshot.Strategies = c.StrategyConfigs()
	return json.Marshal(snapshot)
}

// FromRunJSON rebuilds a configuration from a RunJSON snapshot. Sections
// the snapshot omits keep their defaults.
func FromRunJSON(b []byte) (*Config, error) {
	c := Default()
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("decode run config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate run config: %w", err)
	}
	return c, nil
}
