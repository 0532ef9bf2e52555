package main

import (
	"fmt"
	"math"

	"github.com/spf13/viper"
)

// Config is the full application configuration. Matching knobs are
// versioned configuration, not constants: the thresholds have been retuned
// several times and must stay externalized.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Server      ServerConfig      `mapstructure:"server"`
	Meilisearch MeilisearchConfig `mapstructure:"meilisearch"`
	Matching    MatchingConfig    `mapstructure:"matching"`
	Pricing     PricingConfig     `mapstructure:"pricing"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type MeilisearchConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
}

// MatchingConfig holds every tunable of the similarity and grouping stages.
type MatchingConfig struct {
	MinThreshold         float64 `mapstructure:"min_threshold"`
	MinCommonTokens      int     `mapstructure:"min_common_tokens"`
	TokenWeight          float64 `mapstructure:"token_weight"`
	TrigramWeight        float64 `mapstructure:"trigram_weight"`
	BrandMatchBoost      float64 `mapstructure:"brand_match_boost"`
	BrandMismatchPenalty float64 `mapstructure:"brand_mismatch_penalty"`
	QuantityTolerance    float64 `mapstructure:"quantity_tolerance"`
	QuantityPenalty      float64 `mapstructure:"quantity_penalty"`
	PriceRatioBound      float64 `mapstructure:"price_ratio_bound"`
	PriceRatioPenalty    float64 `mapstructure:"price_ratio_penalty"`
	MaxVariantsPerToken  int     `mapstructure:"max_variants_per_token"`
	Workers              int     `mapstructure:"workers"`
}

type PricingConfig struct {
	WarningRatio float64 `mapstructure:"warning_ratio"`
}

// LoadConfig reads config.yaml plus PROMOBG_-prefixed environment variables
// and validates the result. Any defect aborts startup; broken thresholds
// must never reach a matching run.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/promobg/")

	v.SetEnvPrefix("PROMOBG")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No file is fine, env vars and defaults cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "postgres://localhost:5432/promobg?sslmode=disable")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("meilisearch.host", "http://localhost:7700")

	v.SetDefault("matching.min_threshold", 0.55)
	v.SetDefault("matching.min_common_tokens", 2)
	v.SetDefault("matching.token_weight", 0.7)
	v.SetDefault("matching.trigram_weight", 0.3)
	v.SetDefault("matching.brand_match_boost", 1.15)
	v.SetDefault("matching.brand_mismatch_penalty", 0.5)
	v.SetDefault("matching.quantity_tolerance", 1.25)
	v.SetDefault("matching.quantity_penalty", 0.6)
	v.SetDefault("matching.price_ratio_bound", 3.0)
	v.SetDefault("matching.price_ratio_penalty", 0.85)
	v.SetDefault("matching.max_variants_per_token", 4)
	v.SetDefault("matching.workers", 4)

	v.SetDefault("pricing.warning_ratio", 3.0)
}

// Validate checks every matching knob. Operator errors are caught here,
// before any records load.
func (c *Config) Validate() error {
	m := c.Matching
	if m.MinThreshold <= 0 || m.MinThreshold > 1 {
		return fmt.Errorf("matching.min_threshold must be in (0, 1], got %v", m.MinThreshold)
	}
	if m.MinCommonTokens < 1 {
		return fmt.Errorf("matching.min_common_tokens must be >= 1, got %d", m.MinCommonTokens)
	}
	if m.TokenWeight < 0 || m.TrigramWeight < 0 {
		return fmt.Errorf("matching weights must be non-negative")
	}
	if math.Abs(m.TokenWeight+m.TrigramWeight-1.0) > 1e-9 {
		return fmt.Errorf("matching.token_weight + matching.trigram_weight must sum to 1, got %v", m.TokenWeight+m.TrigramWeight)
	}
	if m.BrandMatchBoost < 1 {
		return fmt.Errorf("matching.brand_match_boost must be >= 1, got %v", m.BrandMatchBoost)
	}
	if m.BrandMismatchPenalty <= 0 || m.BrandMismatchPenalty > 1 {
		return fmt.Errorf("matching.brand_mismatch_penalty must be in (0, 1], got %v", m.BrandMismatchPenalty)
	}
	if m.QuantityTolerance < 1 {
		return fmt.Errorf("matching.quantity_tolerance must be >= 1, got %v", m.QuantityTolerance)
	}
	if m.QuantityPenalty <= 0 || m.QuantityPenalty > 1 {
		return fmt.Errorf("matching.quantity_penalty must be in (0, 1], got %v", m.QuantityPenalty)
	}
	if m.PriceRatioBound <= 1 {
		return fmt.Errorf("matching.price_ratio_bound must be > 1, got %v", m.PriceRatioBound)
	}
	if m.PriceRatioPenalty <= 0 || m.PriceRatioPenalty > 1 {
		return fmt.Errorf("matching.price_ratio_penalty must be in (0, 1], got %v", m.PriceRatioPenalty)
	}
	if m.MaxVariantsPerToken < 1 {
		return fmt.Errorf("matching.max_variants_per_token must be >= 1, got %d", m.MaxVariantsPerToken)
	}
	if m.Workers < 1 {
		return fmt.Errorf("matching.workers must be >= 1, got %d", m.Workers)
	}
	if c.Pricing.WarningRatio <= 1 {
		return fmt.Errorf("pricing.warning_ratio must be > 1, got %v", c.Pricing.WarningRatio)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (set PROMOBG_DATABASE_URL)")
	}
	return nil
}
