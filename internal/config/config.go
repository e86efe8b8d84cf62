// Package config loads application configuration from config.yaml and the
// environment, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DocFailPolicy decides how the exclusion classifier treats a filing whose
// full text could not be read.
type DocFailPolicy string

const (
	// PolicyStrict excludes filings with unreadable documents. No
	// third-party allocation ever leaks through, at the cost of missed
	// legitimate filings.
	PolicyStrict DocFailPolicy = "strict"
	// PolicyLenient falls back to the lower-trust viewer page and, failing
	// that too, includes the filing.
	PolicyLenient DocFailPolicy = "lenient"
)

// Config holds the full application configuration.
type Config struct {
	DART     DARTConfig     `yaml:"dart" mapstructure:"dart"`
	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
	Filter   FilterConfig   `yaml:"filter" mapstructure:"filter"`
	Poll     PollConfig     `yaml:"poll" mapstructure:"poll"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Notify   NotifyConfig   `yaml:"notify" mapstructure:"notify"`
	Market   MarketConfig   `yaml:"market" mapstructure:"market"`
	Scorer   ScorerConfig   `yaml:"scorer" mapstructure:"scorer"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DARTConfig holds OpenDART endpoints and credentials.
type DARTConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	ViewerURL   string `yaml:"viewer_url" mapstructure:"viewer_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// TelegramConfig holds bot credentials and the destination chat.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" mapstructure:"bot_token"`
	ChatID   string `yaml:"chat_id" mapstructure:"chat_id"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// FilterConfig configures which filings the pipeline considers.
type FilterConfig struct {
	LookbackDays   int           `yaml:"lookback_days" mapstructure:"lookback_days"`
	Markets        []string      `yaml:"markets" mapstructure:"markets"`
	MinRaiseAmount int64         `yaml:"min_raise_amount" mapstructure:"min_raise_amount"`
	DocFailPolicy  DocFailPolicy `yaml:"doc_fail_policy" mapstructure:"doc_fail_policy"`
}

// PollConfig controls the optional outer loop. Zero interval means run once
// and exit.
type PollConfig struct {
	IntervalSecs int `yaml:"interval_secs" mapstructure:"interval_secs"`
}

// StoreConfig selects and configures the dedup store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // json, sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxSeen     int    `yaml:"max_seen" mapstructure:"max_seen"`
}

// NotifyConfig tunes delivery behavior.
type NotifyConfig struct {
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// MarketConfig configures the optional market-data lookup.
type MarketConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScorerConfig holds the tunable risk-scoring weights and thresholds. These
// are configuration constants, not derived values; see scorer.DefaultConfig
// for the defaults. Load seeds every weight with its default, so an explicit
// zero in the file or environment disables that adjustment. A hand-built
/// ScorerConfig gets no such seeding: its zero weights stay zero, and only
// Base, the tier cutoffs and the ratio buckets are backfilled by the scorer.
type ScorerConfig struct {
	Base int `yaml:"base" mapstructure:"base"`

	PaidInWeight   int `yaml:"paid_in_weight" mapstructure:"paid_in_weight"`
	CombinedWeight int `yaml:"combined_weight" mapstructure:"combined_weight"`

	KOSDAQWeight int `yaml:"kosdaq_weight" mapstructure:"kosdaq_weight"`
	KONEXWeight  int `yaml:"konex_weight" mapstructure:"konex_weight"`

	DebtRepayWeight      int `yaml:"debt_repay_weight" mapstructure:"debt_repay_weight"`
	WorkingCapitalWeight int `yaml:"working_capital_weight" mapstructure:"working_capital_weight"`
	FacilityWeight       int `yaml:"facility_weight" mapstructure:"facility_weight"`

	RaiseRatioBuckets []RatioBucket `yaml:"raise_ratio_buckets" mapstructure:"raise_ratio_buckets"`
	DiscountBuckets   []RatioBucket `yaml:"discount_buckets" mapstructure:"discount_buckets"`

	ParticipationWeight int `yaml:"participation_weight" mapstructure:"participation_weight"`
	AbstentionWeight    int `yaml:"abstention_weight" mapstructure:"abstention_weight"`

	MidCutoff  int `yaml:"mid_cutoff" mapstructure:"mid_cutoff"`
	HighCutoff int `yaml:"high_cutoff" mapstructure:"high_cutoff"`
}

// RatioBucket adds Weight to the score when a ratio meets Threshold.
type RatioBucket struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	Weight    int     `yaml:"weight" mapstructure:"weight"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DARTWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dart.base_url", "https://opendart.fss.or.kr/api")
	v.SetDefault("dart.viewer_url", "https://dart.fss.or.kr/dsaf001/main.do")
	v.SetDefault("dart.timeout_secs", 25)
	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("filter.lookback_days", 3)
	v.SetDefault("filter.markets", []string{"Y", "K", "N"})
	v.SetDefault("filter.doc_fail_policy", string(PolicyStrict))
	v.SetDefault("poll.interval_secs", 0)
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.path", "state.json")
	v.SetDefault("store.max_seen", 5000)
	v.SetDefault("notify.max_retries", 3)
	v.SetDefault("market.base_url", "https://finance.naver.com")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Mirrors scorer.DefaultConfig. Seeding the defaults here lets an
	// explicit zero in the file or environment disable a weight.
	v.SetDefault("scorer.base", 30)
	v.SetDefault("scorer.paid_in_weight", 15)
	v.SetDefault("scorer.combined_weight", 8)
	v.SetDefault("scorer.kosdaq_weight", 8)
	v.SetDefault("scorer.konex_weight", 12)
	v.SetDefault("scorer.debt_repay_weight", 12)
	v.SetDefault("scorer.working_capital_weight", 8)
	v.SetDefault("scorer.facility_weight", -4)
	v.SetDefault("scorer.participation_weight", -10)
	v.SetDefault("scorer.abstention_weight", 10)
	v.SetDefault("scorer.mid_cutoff", 35)
	v.SetDefault("scorer.high_cutoff", 65)
	v.SetDefault("scorer.raise_ratio_buckets", []map[string]any{
		{"threshold": 0.50, "weight": 20},
		{"threshold": 0.30, "weight": 12},
		{"threshold": 0.10, "weight": 5},
	})
	v.SetDefault("scorer.discount_buckets", []map[string]any{
		{"threshold": 0.25, "weight": 12},
		{"threshold": 0.15, "weight": 6},
	})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !eris.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that required credentials are present. Called before any
// network activity; failures here abort with a non-zero exit.
func (c *Config) Validate(dryRun bool) error {
	if c.DART.APIKey == "" {
		return eris.New("config: dart.api_key is required")
	}
	switch p := c.Filter.DocFailPolicy; p {
	case PolicyStrict, PolicyLenient:
	default:
		return eris.Errorf("config: filter.doc_fail_policy must be strict or lenient (got %q)", p)
	}
	if dryRun {
		return nil
	}
	if c.Telegram.BotToken == "" {
		return eris.New("config: telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return eris.New("config: telegram.chat_id is required")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
