// Package config loads application configuration from file and
// environment. The library packages take explicit values; config is
// consumed by the cmd/ binaries only.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"mezgeb/internal/domain/tax"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	Allocator AllocatorConfig
	Tax       TaxConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// AllocatorConfig holds the number allocator retry policy.
type AllocatorConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

// TaxConfig holds overrides for the tax rule set. Values are strings so
// rates survive the config round-trip without float truncation; empty
// fields fall back to the default rule set.
type TaxConfig struct {
	RuleSetVersion   string
	VATRate          string
	WithholdingRate  string
	ServiceThreshold string
	GoodsThreshold   string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with MEZGEB_ prefix (e.g., MEZGEB_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/mezgeb")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("MEZGEB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxConns:        v.GetInt("database.max_conns"),
			MinConns:        v.GetInt("database.min_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Allocator: AllocatorConfig{
			MaxRetries:      v.GetUint64("allocator.max_retries"),
			InitialInterval: v.GetDuration("allocator.initial_interval"),
		},
		Tax: TaxConfig{
			RuleSetVersion:   v.GetString("tax.ruleset_version"),
			VATRate:          v.GetString("tax.vat_rate"),
			WithholdingRate:  v.GetString("tax.withholding_rate"),
			ServiceThreshold: v.GetString("tax.service_threshold"),
			GoodsThreshold:   v.GetString("tax.goods_threshold"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "mezgeb"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "mezgeb"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 25
	}
	if cfg.Database.MinConns == 0 {
		cfg.Database.MinConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Allocator.MaxRetries == 0 {
		cfg.Allocator.MaxRetries = 3
	}
	if cfg.Allocator.InitialInterval == 0 {
		cfg.Allocator.InitialInterval = 25 * time.Millisecond
	}
}

// validate performs validation on the configuration.
func (c *Config) validate() error {
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be positive")
	}
	if c.Database.MinConns < 0 {
		return fmt.Errorf("database.min_conns cannot be negative")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) cannot exceed database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if _, err := c.RuleSet(); err != nil {
		return err
	}

	return nil
}

// DSN returns the database connection string with properly escaped values.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// RuleSet builds the tax rule set from config, starting from the
// defaults and applying any configured overrides.
func (c *Config) RuleSet() (tax.RuleSet, error) {
	rs := tax.DefaultRuleSet()

	if c.Tax.RuleSetVersion != "" {
		rs.Version = c.Tax.RuleSetVersion
	}

	overrides := []struct {
		key   string
		value string
		dst   *decimal.Decimal
	}{
		{"tax.vat_rate", c.Tax.VATRate, &rs.VATRate},
		{"tax.withholding_rate", c.Tax.WithholdingRate, &rs.WithholdingRate},
		{"tax.service_threshold", c.Tax.ServiceThreshold, &rs.ServiceThreshold},
		{"tax.goods_threshold", c.Tax.GoodsThreshold, &rs.GoodsThreshold},
	}

	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		d, err := decimal.NewFromString(o.value)
		if err != nil {
			return rs, fmt.Errorf("invalid %s %q: %w", o.key, o.value, err)
		}
		*o.dst = d
	}

	if err := rs.Validate(); err != nil {
		return rs, fmt.Errorf("tax rule set: %w", err)
	}

	return rs, nil
}
