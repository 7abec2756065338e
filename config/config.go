package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the processes need, loaded once at startup and
// injected into components. Nothing reads the environment after Load.
type Config struct {
	App     AppConfig
	Store   StoreConfig
	Quote   QuoteConfig
	Search  SearchConfig
	Mailgun MailgunConfig
	Server  ServerConfig
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// StoreConfig points at the REST table store. The order field differs between
// the two tables (schema drift across deployments), so both are configurable.
type StoreConfig struct {
	URL     string        `envconfig:"SUPABASE_URL" required:"true"`
	Key     string        `envconfig:"SUPABASE_KEY" required:"true"`
	Timeout time.Duration `envconfig:"STORE_TIMEOUT" default:"15s"`

	PriceTable      string `envconfig:"PRICE_TABLE" default:"btc_price"`
	PriceOrderField string `envconfig:"PRICE_ORDER_FIELD" default:"created_at"`
	NewsTable       string `envconfig:"NEWS_TABLE" default:"eco_info"`
	NewsOrderField  string `envconfig:"NEWS_ORDER_FIELD" default:"timestamp"`
}

type QuoteConfig struct {
	BaseURL string        `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
	Timeout time.Duration `envconfig:"QUOTE_TIMEOUT" default:"15s"`
}

type SearchConfig struct {
	BaseURL  string        `envconfig:"BRAVE_SEARCH_URL" default:"https://api.search.brave.com/res/v1/web/search"`
	APIKey   string        `envconfig:"BRAVE_API_KEY"`
	Timeout  time.Duration `envconfig:"SEARCH_TIMEOUT" default:"15s"`
	QueryGap time.Duration `envconfig:"SEARCH_QUERY_GAP" default:"1s"`
}

type MailgunConfig struct {
	APIKey    string `envconfig:"MAILGUN_API_KEY"`
	Domain    string `envconfig:"MAILGUN_DOMAIN"`
	Recipient string `envconfig:"DIGEST_RECIPIENT"`
}

type ServerConfig struct {
	Addr string `envconfig:"SERVER_ADDR" default:":8080"`
}

// Load reads .env if present, then the environment. Missing required store
// settings fail here so no process starts with undefined external endpoints.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// ValidateSearch checks the settings only the news agent needs.
func (c *Config) ValidateSearch() error {
	if c.Search.APIKey == "" {
		return errors.New("BRAVE_API_KEY is required")
	}
	return nil
}

// ValidateMailgun checks the settings only the digest agent needs.
func (c *Config) ValidateMailgun() error {
	switch {
	case c.Mailgun.APIKey == "":
		return errors.New("MAILGUN_API_KEY is required")
	case c.Mailgun.Domain == "":
		return errors.New("MAILGUN_DOMAIN is required")
	case c.Mailgun.Recipient == "":
		return errors.New("DIGEST_RECIPIENT is required")
	}
	return nil
}
