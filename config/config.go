package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port             int    `mapstructure:"port"`
		BodyLimitMB      int    `mapstructure:"body_limit_mb"`
		AllowedOrigins   string `mapstructure:"allowed_origins"`
		RateLimitMax     int    `mapstructure:"rate_limit_max"`
		RateLimitWindowS int    `mapstructure:"rate_limit_window_seconds"`
		MetricsEnabled   bool   `mapstructure:"metrics_enabled"`
		ShutdownTimeoutS int    `mapstructure:"shutdown_timeout_seconds"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		TimeZone string `mapstructure:"timezone"`
	} `mapstructure:"database"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
	} `mapstructure:"jwt"`

	Log struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		TimeFormat string `mapstructure:"time_format"`
		Output     string `mapstructure:"output"`
	} `mapstructure:"log"`

	Billing struct {
		DefaultDiscountRate string   `mapstructure:"default_discount_rate"`
		CategoryOrder       []string `mapstructure:"category_order"`
		CurrencySymbol      string   `mapstructure:"currency_symbol"`
		DefaultTermsDays    int      `mapstructure:"default_terms_days"`
	} `mapstructure:"billing"`

	Redis struct {
		Addr          string `mapstructure:"addr"`
		Password      string `mapstructure:"password"`
		DB            int    `mapstructure:"db"`
		SchemeTTLSecs int    `mapstructure:"scheme_ttl_seconds"`
	} `mapstructure:"redis"`

	Archive struct {
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		Bucket    string `mapstructure:"bucket"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"archive"`
}

// Load reads configs/config.yaml (optional), .env (optional) and the
// environment. Environment keys use underscores, e.g. SERVER_PORT.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path == "" {
		path = "configs/config.yaml"
	}
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file at %s, using defaults and environment", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit_mb", 4)
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("server.rate_limit_max", 60)
	v.SetDefault("server.rate_limit_window_seconds", 60)
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "invoiceflow")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")

	v.SetDefault("jwt.expiration_hours", 24)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("log.output", "stdout")

	v.SetDefault("billing.default_discount_rate", "0.02")
	v.SetDefault("billing.category_order", []string{"Frozen Bulk", "Frozen Vegetable", "Frozen Fruit"})
	v.SetDefault("billing.currency_symbol", "$")
	v.SetDefault("billing.default_terms_days", 30)

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.scheme_ttl_seconds", 300)

	v.SetDefault("archive.region", "auto")
}

// applyEnvOverrides maps the plain variable names used by the deployment
// (DB_*, JWT_SECRET, REDIS_*, ARCHIVE_*) onto the config.
func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}

	num("PORT", &cfg.Server.Port)
	num("BODY_LIMIT_MB", &cfg.Server.BodyLimitMB)
	str("ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)
	num("RATE_LIMIT_MAX", &cfg.Server.RateLimitMax)
	num("RATE_LIMIT_WINDOW_SECONDS", &cfg.Server.RateLimitWindowS)

	str("DB_HOST", &cfg.Database.Host)
	num("DB_PORT", &cfg.Database.Port)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_NAME", &cfg.Database.Name)

	str("JWT_SECRET", &cfg.JWT.Secret)
	if cfg.JWT.Secret == "" {
		str("JWT_SECRET_KEY", &cfg.JWT.Secret)
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)

	str("ARCHIVE_ENDPOINT", &cfg.Archive.Endpoint)
	str("ARCHIVE_BUCKET", &cfg.Archive.Bucket)
	str("ARCHIVE_ACCESS_KEY", &cfg.Archive.AccessKey)
	str("ARCHIVE_SECRET_KEY", &cfg.Archive.SecretKey)
}

// Validate checks values that would otherwise fail late at request time.
func (c *Config) Validate() error {
	if _, err := c.DiscountRate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// DiscountRate parses the default receivable discount rate.
func (c *Config) DiscountRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.Billing.DefaultDiscountRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid billing.default_discount_rate %q: %w", c.Billing.DefaultDiscountRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("billing.default_discount_rate must be between 0 and 1, got %s", rate)
	}
	return rate, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	d := c.Database
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone)
}

func (c *Config) SchemeTTL() time.Duration {
	return time.Duration(c.Redis.SchemeTTLSecs) * time.Second
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Server.RateLimitWindowS) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutS) * time.Second
}
