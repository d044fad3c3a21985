// Package config loads application configuration from .env files,
// environment variables and defaults.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Finnhub  FinnhubConfig  `mapstructure:"finnhub"`
	Yahoo    YahooConfig    `mapstructure:"yahoo"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	DB       DBConfig       `mapstructure:"db"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Warmup   WarmupConfig   `mapstructure:"warmup"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Wishlist WishlistConfig `mapstructure:"wishlist"`
}

type AppConfig struct {
	Port     string `mapstructure:"port"`
	Env      string `mapstructure:"env"` // "local", "prod"
	LogLevel string `mapstructure:"log_level"`

	// CORS is off by default; the primary client is a mobile app.
	CORSEnabled bool `mapstructure:"cors_enabled"`
}

type FinnhubConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	WSURL             string        `mapstructure:"ws_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type YahooConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Enabled   bool          `mapstructure:"enabled"`
}

// CacheConfig holds the per-data-kind TTLs.
type CacheConfig struct {
	QuoteTTL      time.Duration `mapstructure:"quote_ttl"`
	SearchTTL     time.Duration `mapstructure:"search_ttl"`
	HistoricalTTL time.Duration `mapstructure:"historical_ttl"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DBConfig struct {
	Driver        string `mapstructure:"driver"` // mysql, postgres, sqlite
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Name          string `mapstructure:"name"`
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	InstanceName  string `mapstructure:"instance_connection_name"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	RunMigrations bool   `mapstructure:"run_migrations"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type WarmupConfig struct {
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type StreamConfig struct {
	MaxReconnectAttempts int `mapstructure:"max_reconnect_attempts"`
}

type WishlistConfig struct {
	StorageKey string `mapstructure:"storage_key"`
}

// Load reads configuration from a .env file, environment variables and defaults.
func Load() (*Config, error) {
	// .env is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	v := viper.New()
	setDefaults(v)

	// "finnhub.api_key" -> FINNHUB_API_KEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v, v.AllKeys()...)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.cors_enabled", false)

	// API key absence is not validated here; requests will simply fail upstream.
	v.SetDefault("finnhub.api_key", "")
	v.SetDefault("finnhub.base_url", "https://finnhub.io/api/v1")
	v.SetDefault("finnhub.ws_url", "wss://ws.finnhub.io")
	v.SetDefault("finnhub.timeout", 10*time.Second)
	v.SetDefault("finnhub.requests_per_minute", 60)

	v.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("yahoo.user_agent", "Mozilla/5.0")
	v.SetDefault("yahoo.timeout", 10*time.Second)
	v.SetDefault("yahoo.enabled", true)

	v.SetDefault("cache.quote_ttl", 30*time.Second)
	v.SetDefault("cache.search_ttl", 5*time.Minute)
	v.SetDefault("cache.historical_ttl", 60*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "stockimate")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.instance_connection_name", "")
	v.SetDefault("db.sqlite_path", "./stockimate.db")
	v.SetDefault("db.run_migrations", true)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "market_ticks")

	v.SetDefault("warmup.requests_per_minute", 30)
	v.SetDefault("warmup.timeout", 5*time.Minute)

	v.SetDefault("stream.max_reconnect_attempts", 5)

	v.SetDefault("wishlist.storage_key", "stockimate:wishlist")
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// bindEnv is a helper to bind multiple keys at once.
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			log.Printf("Could not bind env var for key %s: %v", key, err)
		}
	}
}
