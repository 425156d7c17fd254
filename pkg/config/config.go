package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Cache struct {
		QuoteTTL       time.Duration `yaml:"quote_ttl"`
		SentimentTTL   time.Duration `yaml:"sentiment_ttl"`
		PredictionTTL  time.Duration `yaml:"prediction_ttl"`
		FundamentalTTL time.Duration `yaml:"fundamental_ttl"`
		Redis          struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Sources struct {
		Timeout   time.Duration `yaml:"timeout"`
		Priority  []string      `yaml:"priority"`
		RateLimit struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
		Fundamentals struct {
			Host        string        `yaml:"host"`
			Port        int           `yaml:"port"`
			Database    string        `yaml:"database"`
			User        string        `yaml:"user"`
			Password    string        `yaml:"password"`
			Table       string        `yaml:"table"`
			DialTimeout time.Duration `yaml:"dial_timeout"`
			ReadTimeout time.Duration `yaml:"read_timeout"`
		} `yaml:"fundamentals"`
		Quotes struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"quotes"`
		Sentiment struct {
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"sentiment"`
		Prediction struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"prediction"`
	} `yaml:"sources"`
	QuoteStream struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"quote_stream"`
	Audit struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"audit"`
	Advisor struct {
		ConfidenceFloor   float64       `yaml:"confidence_floor"`
		MinCompositeScore float64       `yaml:"min_composite_score"`
		MaxRetries        int           `yaml:"max_retries"`
		FreshnessWindow   time.Duration `yaml:"freshness_window"`
	} `yaml:"advisor"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("QUOTES_API_KEY"); v != "" {
		c.Sources.Quotes.APIKey = v
	}
	if v := os.Getenv("SENTIMENT_API_KEY"); v != "" {
		c.Sources.Sentiment.APIKey = v
	}
	if v := os.Getenv("FUNDAMENTALS_PASSWORD"); v != "" {
		c.Sources.Fundamentals.Password = v
	}
	if v := os.Getenv("AUDIT_BROKERS"); v != "" {
		c.Audit.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("QUOTE_STREAM_SYMBOLS"); v != "" {
		c.QuoteStream.Symbols = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Cache.QuoteTTL <= 0 {
		c.Cache.QuoteTTL = 60 * time.Second
	}
	if c.Cache.SentimentTTL <= 0 {
		c.Cache.SentimentTTL = 300 * time.Second
	}
	if c.Cache.PredictionTTL <= 0 {
		c.Cache.PredictionTTL = 3600 * time.Second
	}
	if c.Cache.FundamentalTTL <= 0 {
		c.Cache.FundamentalTTL = 1800 * time.Second
	}
	if c.Sources.Timeout <= 0 {
		c.Sources.Timeout = 5 * time.Second
	}
	if len(c.Sources.Priority) == 0 {
		c.Sources.Priority = []string{"fundamentals", "prediction", "quotes", "sentiment"}
	}
	if c.Sources.RateLimit.Capacity <= 0 {
		c.Sources.RateLimit.Capacity = 30
	}
	if c.Sources.RateLimit.RefillPerSec <= 0 {
		c.Sources.RateLimit.RefillPerSec = 10
	}
	if c.Advisor.ConfidenceFloor <= 0 {
		c.Advisor.ConfidenceFloor = 0.6
	}
	if c.Advisor.MinCompositeScore <= 0 {
		c.Advisor.MinCompositeScore = 0.25
	}
	if c.Advisor.MaxRetries <= 0 {
		c.Advisor.MaxRetries = 2
	}
	if c.Advisor.FreshnessWindow <= 0 {
		c.Advisor.FreshnessWindow = 24 * time.Hour
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Sources.Fundamentals.Host == "" {
		return fmt.Errorf("sources.fundamentals.host is required")
	}
	if c.Sources.Quotes.BaseURL == "" {
		return fmt.Errorf("sources.quotes.base_url is required")
	}
	if c.Sources.Sentiment.BaseURL == "" {
		return fmt.Errorf("sources.sentiment.base_url is required")
	}
	if c.Sources.Prediction.BaseURL == "" {
		return fmt.Errorf("sources.prediction.base_url is required")
	}
	if c.Audit.Enabled && len(c.Audit.Brokers) == 0 {
		return fmt.Errorf("audit.brokers cannot be empty when audit is enabled")
	}
	if c.QuoteStream.Enabled && c.QuoteStream.WebSocketURL == "" {
		return fmt.Errorf("quote_stream.websocket_url is required when enabled")
	}
	seen := map[string]bool{}
	for _, s := range c.Sources.Priority {
		switch s {
		case "fundamentals", "prediction", "quotes", "sentiment":
		default:
			return fmt.Errorf("sources.priority: unknown source '%s'", s)
		}
		if seen[s] {
			return fmt.Errorf("sources.priority: duplicate source '%s'", s)
		}
		seen[s] = true
	}
	return nil
}
