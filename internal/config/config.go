package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ogulcanaydogan/focusboard/pkg/aggregate"
)

// Config holds all focusboard configuration.
type Config struct {
	Storage      StorageConfig      `mapstructure:"storage"`
	Server       ServerConfig       `mapstructure:"server"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Usage        UsageConfig        `mapstructure:"usage"`
	Accounting   AccountingConfig   `mapstructure:"accounting"`
	App          AppConfig          `mapstructure:"app"`
	Integrations IntegrationsConfig `mapstructure:"integrations"`
	Alerts       AlertsConfig       `mapstructure:"alerts"`
	TaxSim       TaxSimConfig       `mapstructure:"taxsim"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Listen         string `mapstructure:"listen"`
	ReadTimeout    string `mapstructure:"read_timeout"`
	WriteTimeout   string `mapstructure:"write_timeout"`
	RequestTimeout string `mapstructure:"request_timeout"`
	MaxBodySize    int64  `mapstructure:"max_body_size"`
}

// AuthConfig defines session token settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	TokenTTL  string `mapstructure:"token_ttl"`
}

// UsageConfig defines usage ledger defaults.
type UsageConfig struct {
	DefaultLimit      int64            `mapstructure:"default_limit"`
	Limits            map[string]int64 `mapstructure:"limits"`
	AlertThresholdPct float64          `mapstructure:"alert_threshold_pct"`
}

// AccountingConfig defines KPI defaults for users without settings.
type AccountingConfig struct {
	BlueReturnDeduction  int64 `mapstructure:"blue_return_deduction"`
	DependentIncomeLimit int64 `mapstructure:"dependent_income_limit"`
}

// AppConfig defines application-wide settings.
type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// IntegrationsConfig defines the metered external APIs.
type IntegrationsConfig struct {
	Calendar        CalendarConfig `mapstructure:"calendar"`
	Tasks           TasksConfig    `mapstructure:"tasks"`
	Storage         ObjectStorage  `mapstructure:"storage"`
	SideCallTimeout string         `mapstructure:"side_call_timeout"`
}

// CalendarConfig defines the calendar integration.
type CalendarConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	Token      string `mapstructure:"token"`
	CalendarID string `mapstructure:"calendar_id"`
}

// TasksConfig defines the tasks integration.
type TasksConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	Token      string `mapstructure:"token"`
	TaskListID string `mapstructure:"tasklist_id"`
}

// ObjectStorage defines the receipt image bucket.
type ObjectStorage struct {
	Enabled      bool   `mapstructure:"enabled"`
	BaseURL      string `mapstructure:"base_url"`
	ServiceKey   string `mapstructure:"service_key"`
	Bucket       string `mapstructure:"bucket"`
	SignedURLTTL string `mapstructure:"signed_url_ttl"`
}

// AlertsConfig defines alerting integrations.
type AlertsConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// TaxSimConfig defines the dependent income simulator.
type TaxSimConfig struct {
	// Table overrides the embedded bracket table when set.
	Table string `mapstructure:"table"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// usageTypes are the categories usage.limits may override.
var usageTypes = []string{"vision", "calendar", "tasks", "gmail"}

// Load reads configuration from a .env file, the config file and
// environment variables, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".focusboard"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.path", filepath.Join(home, ".focusboard", "focusboard.db"))
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.request_timeout", "20s")
	v.SetDefault("server.max_body_size", 1<<20) // 1 MB
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "focusboard")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("usage.default_limit", 900)
	v.SetDefault("usage.alert_threshold_pct", 80.0)
	v.SetDefault("accounting.blue_return_deduction", aggregate.DefaultBlueReturnDeduction)
	v.SetDefault("accounting.dependent_income_limit", aggregate.DefaultDependentIncomeLimit)
	v.SetDefault("app.timezone", "Asia/Tokyo")
	v.SetDefault("integrations.side_call_timeout", "5s")
	v.SetDefault("integrations.calendar.enabled", false)
	v.SetDefault("integrations.calendar.calendar_id", "primary")
	v.SetDefault("integrations.tasks.enabled", false)
	v.SetDefault("integrations.tasks.tasklist_id", "@default")
	v.SetDefault("integrations.storage.enabled", false)
	v.SetDefault("integrations.storage.bucket", "receipts")
	v.SetDefault("integrations.storage.signed_url_ttl", "1h")
	v.SetDefault("alerts.slack.channel", "#focusboard")
	v.SetDefault("taxsim.table", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("FB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Per-category limits have no default; bind them so an env override
	// alone still produces a map entry.
	for _, t := range usageTypes {
		_ = v.BindEnv("usage.limits."+t, "FB_USAGE_LIMITS_"+strings.ToUpper(t))
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check on its own.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	for name, d := range map[string]string{
		"server.read_timeout":                 c.Server.ReadTimeout,
		"server.write_timeout":                c.Server.WriteTimeout,
		"server.request_timeout":              c.Server.RequestTimeout,
		"auth.token_ttl":                      c.Auth.TokenTTL,
		"integrations.side_call_timeout":      c.Integrations.SideCallTimeout,
		"integrations.storage.signed_url_ttl": c.Integrations.Storage.SignedURLTTL,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, d, err)
		}
	}
	if c.Usage.DefaultLimit < 0 {
		return fmt.Errorf("usage.default_limit must not be negative")
	}
	for name, limit := range c.Usage.Limits {
		if limit < 0 {
			return fmt.Errorf("usage.limits.%s must not be negative", name)
		}
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// Duration parses a duration already checked by Validate.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
