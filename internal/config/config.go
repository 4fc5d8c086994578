package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Notify   NotifyConfig
	Export   ExportConfig
	UI       UIConfig
}

// ServerConfig covers both sides: the backend the client talks to and the
// address the bundled backend listens on.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Addr    string        `mapstructure:"addr"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// NotifyConfig selects how views hear about writes.
type NotifyConfig struct {
	Mode  string
	Topic string
}

// Notify modes.
const (
	NotifyLocal  = "local"
	NotifyRemote = "remote"
	NotifyNone   = "none"
)

// ExportConfig holds the fallback directory for CSV downloads.
type ExportConfig struct {
	Dir string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Locale            string   `mapstructure:"locale"`
	CurrencySymbol    string   `mapstructure:"currency_symbol"`
	DateFormat        string   `mapstructure:"date_format"`
	Timezone          string   `mapstructure:"timezone"`
	LogFile           string   `mapstructure:"log_file"`
	ExpenseCategories []string `mapstructure:"expense_categories"`
}

// DefaultExpenseCategories seeds the category list of a new database.
var DefaultExpenseCategories = []string{"Ingredients", "Rent", "Payroll", "Produce", "Sundries", "Utilities", "Other"}

func defaultPath() string {
	if p := os.Getenv("LEDGERDESK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "ledgerdesk", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix LEDGERDESK_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.base_url", "http://127.0.0.1:8750")
	v.SetDefault("server.timeout", 10*time.Second)
	v.SetDefault("server.addr", "127.0.0.1:8750")
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "ledgerdesk", "ledger.db"))
	v.SetDefault("notify.mode", NotifyLocal)
	v.SetDefault("notify.topic", "ledger-kpi")
	v.SetDefault("export.dir", filepath.Join(os.Getenv("HOME"), "Downloads"))
	v.SetDefault("ui.locale", "en")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.log_file", filepath.Join(os.Getenv("HOME"), ".local", "share", "ledgerdesk", "ledgerdesk.log"))
	v.SetDefault("ui.expense_categories", DefaultExpenseCategories)

	v.SetConfigType("toml")

	if cfgPath := os.Getenv("LEDGERDESK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "ledgerdesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LEDGERDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Notify.Mode = strings.ToLower(strings.TrimSpace(c.Notify.Mode))
	switch c.Notify.Mode {
	case NotifyLocal, NotifyRemote, NotifyNone:
	default:
		return Config{}, fmt.Errorf("notify.mode %q: want local, remote or none", c.Notify.Mode)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := defaultPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.base_url", cfg.Server.BaseURL)
	v.Set("server.timeout", cfg.Server.Timeout.String())
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("database.path", cfg.Database.Path)
	v.Set("notify.mode", cfg.Notify.Mode)
	v.Set("notify.topic", cfg.Notify.Topic)
	v.Set("export.dir", cfg.Export.Dir)
	v.Set("ui.locale", cfg.UI.Locale)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.log_file", cfg.UI.LogFile)
	v.Set("ui.expense_categories", cfg.UI.ExpenseCategories)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Location resolves ui.timezone. An unknown zone falls back to the local one
// and is reported so callers can warn.
func (c UIConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, fmt.Errorf("timezone %q: %w", name, err)
	}
	return loc, nil
}
