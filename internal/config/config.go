package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"ladderbot/internal/logger"
)

const (
	EnvPrefix      = "LADDERBOT"
	EnvConfigPath  = "LADDERBOT_CONFIG"
	DefaultPath    = "configs/config.yaml"
	PersistDone    = "done"
	PersistAll     = "all"
	PriceSourceWS  = "ws"
	PriceSourceAPI = "rest"
)

type Config struct {
	Exchange ExchangeConfig
	Bot      BotConfig
	Store    StoreConfig
	Runtime  RuntimeConfig
	Backtest BacktestConfig
}

type ExchangeConfig struct {
	BaseURL        string
	WSURL          string
	AccessKey      string
	SecretKey      string
	PriceSource    string
	RequestTimeout time.Duration
}

type BotConfig struct {
	Interval       time.Duration
	SettingsFile   string
	LedgerDir      string
	MinNotional    float64
	OrderBatchSize int
	RepriceRatio   float64
	PersistPolicy  string
	PriceWorkers   int
}

type StoreConfig struct {
	Driver string
	DSN    string
}

type RuntimeConfig struct {
	Log         logger.Config
	MetricsAddr string
}

type TakeProfitLevel struct {
	Gain  float64 `mapstructure:"gain"`
	Ratio float64 `mapstructure:"ratio"`
}

type BacktestConfig struct {
	InitialCash      float64
	FeeRate          float64
	MinCashRatio     float64
	StopLossPct      float64
	TakeProfitLevels []TakeProfitLevel
	Dust             float64
	CandleUnit       int
	PageSize         int
	OutputDir        string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("exchange.base_url", "https://api.upbit.com")
	v.SetDefault("exchange.ws_url", "wss://api.upbit.com/websocket/v1")
	v.SetDefault("exchange.price_source", PriceSourceAPI)
	v.SetDefault("exchange.request_timeout", "15s")

	v.SetDefault("bot.interval", "1m")
	v.SetDefault("bot.settings_file", "configs/settings.yaml")
	v.SetDefault("bot.ledger_dir", "data")
	v.SetDefault("bot.min_notional", 5000)
	v.SetDefault("bot.order_batch_size", 20)
	v.SetDefault("bot.reprice_ratio", 0.5)
	v.SetDefault("bot.persist_policy", PersistDone)
	v.SetDefault("bot.price_workers", 4)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "data/ladderbot.db")

	v.SetDefault("runtime.log.level", "info")
	v.SetDefault("runtime.log.format", "text")
	v.SetDefault("runtime.log.file", "stdout")
	v.SetDefault("runtime.log.max_size", 50)
	v.SetDefault("runtime.log.max_backups", 5)
	v.SetDefault("runtime.log.max_age", 30)
	v.SetDefault("runtime.metrics_addr", "")

	v.SetDefault("backtest.initial_cash", 10_000_000)
	v.SetDefault("backtest.fee_rate", 0.0005)
	v.SetDefault("backtest.min_cash_ratio", 0.30)
	v.SetDefault("backtest.stop_loss_pct", 0.05)
	v.SetDefault("backtest.take_profit_levels", []map[string]float64{
		{"gain": 0.02, "ratio": 0.3},
		{"gain": 0.04, "ratio": 0.3},
		{"gain": 0.06, "ratio": 1.0},
	})
	v.SetDefault("backtest.dust", 1e-7)
	v.SetDefault("backtest.candle_unit", 1)
	v.SetDefault("backtest.page_size", 200)
	v.SetDefault("backtest.output_dir", "results")
}

// Load reads the process configuration through the global viper instance so
// that flags bound by the binaries take part.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper(), Path())
}

// Path is the config file location, LADDERBOT_CONFIG or configs/config.yaml.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// LoadFrom reads path into v. A missing file leaves defaults and env in effect.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	cfg.Exchange = ExchangeConfig{
		BaseURL:        v.GetString("exchange.base_url"),
		WSURL:          v.GetString("exchange.ws_url"),
		AccessKey:      envSub(v, "exchange.access_key"),
		SecretKey:      envSub(v, "exchange.secret_key"),
		PriceSource:    strings.ToLower(v.GetString("exchange.price_source")),
		RequestTimeout: v.GetDuration("exchange.request_timeout"),
	}

	cfg.Bot = BotConfig{
		Interval:       v.GetDuration("bot.interval"),
		SettingsFile:   v.GetString("bot.settings_file"),
		LedgerDir:      v.GetString("bot.ledger_dir"),
		MinNotional:    v.GetFloat64("bot.min_notional"),
		OrderBatchSize: v.GetInt("bot.order_batch_size"),
		RepriceRatio:   v.GetFloat64("bot.reprice_ratio"),
		PersistPolicy:  strings.ToLower(v.GetString("bot.persist_policy")),
		PriceWorkers:   v.GetInt("bot.price_workers"),
	}

	cfg.Store = StoreConfig{
		Driver: strings.ToLower(v.GetString("store.driver")),
		DSN:    envSub(v, "store.dsn"),
	}

	cfg.Runtime = RuntimeConfig{
		Log: logger.Config{
			Level:      v.GetString("runtime.log.level"),
			Format:     v.GetString("runtime.log.format"),
			File:       v.GetString("runtime.log.file"),
			MaxSize:    v.GetInt("runtime.log.max_size"),
			MaxBackups: v.GetInt("runtime.log.max_backups"),
			MaxAge:     v.GetInt("runtime.log.max_age"),
			Compress:   v.GetBool("runtime.log.compress"),
		},
		MetricsAddr: v.GetString("runtime.metrics_addr"),
	}

	cfg.Backtest = BacktestConfig{
		InitialCash:  v.GetFloat64("backtest.initial_cash"),
		FeeRate:      v.GetFloat64("backtest.fee_rate"),
		MinCashRatio: v.GetFloat64("backtest.min_cash_ratio"),
		StopLossPct:  v.GetFloat64("backtest.stop_loss_pct"),
		Dust:         v.GetFloat64("backtest.dust"),
		CandleUnit:   v.GetInt("backtest.candle_unit"),
		PageSize:     v.GetInt("backtest.page_size"),
		OutputDir:    v.GetString("backtest.output_dir"),
	}
	if err := v.UnmarshalKey("backtest.take_profit_levels", &cfg.Backtest.TakeProfitLevels); err != nil {
		return nil, fmt.Errorf("invalid backtest.take_profit_levels: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Exchange.PriceSource {
	case PriceSourceAPI, PriceSourceWS:
	default:
		return fmt.Errorf("exchange.price_source must be %q or %q, got %q", PriceSourceAPI, PriceSourceWS, c.Exchange.PriceSource)
	}
	switch c.Bot.PersistPolicy {
	case PersistDone, PersistAll:
	default:
		return fmt.Errorf("bot.persist_policy must be %q or %q, got %q", PersistDone, PersistAll, c.Bot.PersistPolicy)
	}
	switch c.Store.Driver {
	case "sqlite", "mysql", "none":
	default:
		return fmt.Errorf("store.driver %q is not supported", c.Store.Driver)
	}
	if c.Bot.Interval <= 0 {
		return fmt.Errorf("bot.interval must be positive")
	}
	if c.Bot.RepriceRatio <= 0 {
		return fmt.Errorf("bot.reprice_ratio must be positive")
	}
	return nil
}

var envPattern = regexp.MustCompile(`\$\{(\w+)\}`)

func envSub(v *viper.Viper, key string) string {
	val := v.GetString(key)
	if val == "" {
		return ""
	}

	return envPattern.ReplaceAllStringFunc(val, func(match string) string {
		envKey := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(envKey)
	})
}
