package config

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"

	ProviderDVNet  = "dvnet"
	ProviderStripe = "stripe"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDRESS" env-default:":3000"`
}

type Session struct {
	CookieName  string        `yaml:"COOKIE_NAME" env:"SESSION_COOKIE_NAME" env-default:"dvshop.sid"`
	Secret      string        `yaml:"SECRET" env:"SESSION_SECRET" env-required:"true"`
	IdleTimeout time.Duration `yaml:"IDLE_TIMEOUT" env:"SESSION_IDLE_TIMEOUT" env-default:"1h"`
	Secure      bool          `yaml:"SECURE" env:"SESSION_SECURE" env-default:"false"`
}

type Storage struct {
	Backend         string        `yaml:"BACKEND" env:"STORAGE_BACKEND" env-default:"memory"`
	CleanupInterval time.Duration `yaml:"CLEANUP_INTERVAL" env:"STORAGE_CLEANUP_INTERVAL" env-default:"1m"`
	Timeout         time.Duration `yaml:"TIMEOUT" env:"STORAGE_TIMEOUT" env-default:"2s"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

// RateConfig throttles payment URL requests per session. MaxAttempts of
// zero disables the limit.
type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"PAY_RATE_MAX_ATTEMPTS" env-default:"10"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"PAY_RATE_WINDOW_SIZE" env-default:"1m"`
}

type Catalog struct {
	// Empty path selects the embedded catalog.
	Path string `yaml:"PATH" env:"CATALOG_PATH"`
}

type Gateway struct {
	Provider   string        `yaml:"PROVIDER" env:"GATEWAY_PROVIDER" env-default:"dvnet"`
	APIKey     string        `yaml:"X_API_KEY" env:"X_API_KEY"`
	Host       string        `yaml:"HOST" env:"GATEWAY_HOST"`
	Timeout    time.Duration `yaml:"TIMEOUT" env:"GATEWAY_TIMEOUT" env-default:"15s"`
	Currency   string        `yaml:"CURRENCY" env:"GATEWAY_CURRENCY" env-default:"usd"`
	SuccessURL string        `yaml:"SUCCESS_URL" env:"GATEWAY_SUCCESS_URL" env-default:"http://localhost:3000/?paid=1"`
	CancelURL  string        `yaml:"CANCEL_URL" env:"GATEWAY_CANCEL_URL" env-default:"http://localhost:3000/"`
}

type Stripe struct {
	APIKey string `yaml:"STRIPE_API_KEY" env:"STRIPE_API_KEY" env-default:""`
}

type Otel struct {
	Enabled          bool    `yaml:"ENABLED" env:"OTEL_ENABLED" env-default:"false"`
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"storefront"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT" env-default:"localhost:4318"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"ALLOWED_ORIGINS" env:"CORS_ALLOWED_ORIGINS"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	HTTPServer   `yaml:"http_server"`
	Session      Session      `yaml:"session"`
	Storage      Storage      `yaml:"storage"`
	RedisConnect RedisConnect `yaml:"redis"`
	RateConfig   RateConfig   `yaml:"rate_limit"`
	Catalog      Catalog      `yaml:"catalog"`
	Gateway      Gateway      `yaml:"gateway"`
	Stripe       Stripe       `yaml:"stripe"`
	Otel         Otel         `yaml:"otel"`
	CORS         CORS         `yaml:"cors"`
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "path to the config file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		configPath = "config/local.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg
}

// LoadConfigFromPath reads the file at path and applies environment overrides.
func LoadConfigFromPath(path string) (*Config, error) {

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Gateway.Provider {
	case ProviderDVNet, ProviderStripe:
	default:
		return fmt.Errorf("unknown gateway provider %q", c.Gateway.Provider)
	}

	if !isCurrencyCode(c.Gateway.Currency) {
		return fmt.Errorf("gateway currency must be a three-letter ISO code, got %q", c.Gateway.Currency)
	}

	if c.RateConfig.MaxAttempts > 0 && c.RateConfig.WindowSize <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.RateConfig.WindowSize)
	}

	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("session idle timeout must be positive, got %s", c.Session.IdleTimeout)
	}

	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// GetDSN builds a redis:// URL with the credentials escaped.
func (r *RedisConnect) GetDSN() string {
	u := url.URL{
		Scheme: "redis",
		User:   url.UserPassword(r.Username, r.Password),
		Host:   net.JoinHostPort(r.Host, r.Port),
	}
	return u.String()
}
