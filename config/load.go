package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"curve-limit-agent/infrastructure/logger"
	"curve-limit-agent/policy"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env     string        `yaml:"env"`
	RPC     RPCConfig     `yaml:"rpc"`
	Pool    PoolConfig    `yaml:"pool"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Policy  PolicyConfig  `yaml:"policy"`
	Logger  logger.Config `yaml:"logger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
	Feed    FeedConfig    `yaml:"feed"`
}

type RPCConfig struct {
	URL            string  `yaml:"url"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	RateLimit      float64 `yaml:"rateLimit"` // 每秒请求数
	Burst          int     `yaml:"burst"`
	MockPricing    bool    `yaml:"mockPricing"` // 不走链上，报价 = dx * mockRate
	MockRate       float64 `yaml:"mockRate"`
	DryRun         bool    `yaml:"dryRun"` // 结算不广播
}

type PoolConfig struct {
	Address     string `yaml:"address"`
	InputToken  string `yaml:"inputToken"`
	OutputToken string `yaml:"outputToken"`
	InputIndex  int32  `yaml:"inputIndex"`
	OutputIndex int32  `yaml:"outputIndex"`
}

type WalletConfig struct {
	Receiver string `yaml:"receiver"`
}

// PolicyConfig 策略运行参数，时间一律用毫秒表示。
type PolicyConfig struct {
	PollIntervalMs       int     `yaml:"pollIntervalMs"`
	ErrorIntervalMs      int     `yaml:"errorIntervalMs"`
	MaxChecks            int     `yaml:"maxChecks"`
	MaxConsecutiveErrors int     `yaml:"maxConsecutiveErrors"`
	LiquidityCheck       bool    `yaml:"liquidityCheck"`
	LiquidityProbe       float64 `yaml:"liquidityProbe"`
}

// Runtime 转换为策略层参数。
func (p PolicyConfig) Runtime() policy.Config {
	return policy.Config{
		PollInterval:         time.Duration(p.PollIntervalMs) * time.Millisecond,
		ErrorInterval:        time.Duration(p.ErrorIntervalMs) * time.Millisecond,
		MaxChecks:            p.MaxChecks,
		MaxConsecutiveErrors: p.MaxConsecutiveErrors,
		LiquidityCheck:       p.LiquidityCheck,
		LiquidityProbe:       p.LiquidityProbe,
	}
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // 空表示不启动指标服务
}

type JournalConfig struct {
	Driver string `yaml:"driver"` // memory 或 postgres
	DSN    string `yaml:"dsn"`
}

type FeedConfig struct {
	URL string `yaml:"url"` // websocket 行情源，空表示不订阅
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides sensitive fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("CLA_RPC_URL"); v != "" {
		cfg.RPC.URL = v
	}
	if v := os.Getenv("CLA_JOURNAL_DSN"); v != "" {
		cfg.Journal.DSN = v
	}
	if v := os.Getenv("CLA_RECEIVER"); v != "" {
		cfg.Wallet.Receiver = v
	}
	return cfg, Validate(cfg)
}

// Validate ensures required fields are present.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.RPC.URL == "" && !cfg.RPC.MockPricing {
		return errors.New("rpc.url is required (or rpc.mockPricing)")
	}
	if cfg.Pool.Address == "" {
		return errors.New("pool.address is required")
	}
	if cfg.Pool.InputIndex < 0 || cfg.Pool.OutputIndex < 0 {
		return errors.New("pool token indices must be >= 0")
	}
	if cfg.Pool.InputIndex == cfg.Pool.OutputIndex {
		return errors.New("pool input/output indices must differ")
	}
	if cfg.RPC.RateLimit < 0 || cfg.RPC.Burst < 0 {
		return errors.New("rpc rate limit settings must be >= 0")
	}
	if cfg.Policy.PollIntervalMs < 0 || cfg.Policy.ErrorIntervalMs < 0 {
		return errors.New("policy intervals must be >= 0")
	}
	if cfg.Policy.MaxChecks < 0 || cfg.Policy.MaxConsecutiveErrors < 0 {
		return errors.New("policy limits must be >= 0")
	}
	if cfg.Policy.LiquidityProbe < 0 {
		return errors.New("policy.liquidityProbe must be >= 0")
	}
	switch cfg.Journal.Driver {
	case "", "memory":
	case "postgres":
		if cfg.Journal.DSN == "" {
			return errors.New("journal.dsn is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown journal driver %q", cfg.Journal.Driver)
	}
	return nil
}
