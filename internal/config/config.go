package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. OFFSHORE_MATE_SCHEDULE_PATTERN
const EnvPrefix = "OFFSHORE_MATE"

// Config represents application configuration
type Config struct {
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Export   ExportConfig   `mapstructure:"export"`
	Briefing BriefingConfig `mapstructure:"briefing"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Log      LogConfig      `mapstructure:"log"`
}

// ScheduleConfig selects the active rotation: either inline or a stored schedule ID
type ScheduleConfig struct {
	ID        string `mapstructure:"id"`
	StartDate string `mapstructure:"start_date"` // YYYY-MM-DD
	Pattern   string `mapstructure:"pattern"`    // "<on>/<off>"
}

// StorageConfig represents schedule storage configuration
type StorageConfig struct {
	Type string `mapstructure:"type"` // "file", "sqlite", "postgres" or "memory"
	Path string `mapstructure:"path"` // file or sqlite path
	DSN  string `mapstructure:"dsn"`  // postgres connection string
}

// ExportConfig represents calendar export configuration
type ExportConfig struct {
	Cycles  int    `mapstructure:"cycles"`
	Summary string `mapstructure:"summary"`
	Domain  string `mapstructure:"domain"` // UID suffix
}

// BriefingConfig represents the narrative generator configuration
type BriefingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	CronSpec       string `mapstructure:"cron_spec"` // standard 5-field cron
	Timezone       string `mapstructure:"timezone"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
	Commands       bool   `mapstructure:"commands"` // answer /today, /tomorrow, /month
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can override it on Unmarshal
	v.SetDefault("schedule.id", "")
	v.SetDefault("schedule.start_date", "")
	v.SetDefault("schedule.pattern", "")
	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.dsn", "")
	v.SetDefault("export.cycles", 50)
	v.SetDefault("export.summary", "Offshore Rotation")
	v.SetDefault("export.domain", "offshoremate.app")
	v.SetDefault("briefing.api_key", "")
	v.SetDefault("briefing.model", "gemini-2.5-flash")
	v.SetDefault("briefing.timeout", "30s")
	v.SetDefault("daemon.cron_spec", "0 18 * * *")
	v.SetDefault("daemon.timezone", "Local")
	v.SetDefault("daemon.telegram_token", "")
	v.SetDefault("daemon.telegram_chat_id", 0)
	v.SetDefault("daemon.commands", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.offshore-mate")
		v.AddConfigPath("/etc/offshore-mate")
	}

	// Read environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads configuration from file and environment.
// A missing config file is not an error: every key has a default.
func Load(configPath string) (*Config, error) {
	// .env is optional and never overrides variables already set
	_ = godotenv.Load()

	v := newViper(configPath)
	if err := readConfig(v, configPath); err != nil {
		return nil, err
	}
	return decode(v)
}

// Watch loads the configuration and calls onChange with the new value every
// time the config file is rewritten. Invalid edits are reported to onError
// and otherwise ignored.
func Watch(configPath string, onChange func(*Config), onError func(error)) (*Config, error) {
	_ = godotenv.Load()

	v := newViper(configPath)
	if err := readConfig(v, configPath); err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	if v.ConfigFileUsed() != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				return
			}
			next, err := decode(v)
			if err != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
				return
			}
			onChange(next)
		})
		v.WatchConfig()
	}
	return cfg, nil
}

func readConfig(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if configPath != "" && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for %s storage", c.Storage.Type)
		}
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for postgres storage")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.type must be 'file', 'sqlite', 'postgres' or 'memory', got '%s'", c.Storage.Type)
	}

	if c.Export.Cycles <= 0 {
		return fmt.Errorf("export.cycles must be positive")
	}

	if (c.Schedule.StartDate == "") != (c.Schedule.Pattern == "") {
		return fmt.Errorf("schedule.start_date and schedule.pattern must be set together")
	}

	if c.Daemon.TelegramToken != "" && c.Daemon.TelegramChatID == 0 && !c.Daemon.Commands {
		return fmt.Errorf("daemon.telegram_chat_id is required when daemon.telegram_token is set")
	}

	if _, err := time.LoadLocation(c.Daemon.Timezone); err != nil {
		return fmt.Errorf("daemon.timezone: %w", err)
	}

	return nil
}

// HasInlineSchedule reports whether schedule.start_date and schedule.pattern are set
func (c *ScheduleConfig) HasInlineSchedule() bool {
	return c.StartDate != "" && c.Pattern != ""
}

// GetTimeout returns the briefing request timeout
func (c *BriefingConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return duration
}

// GetLocation returns the daemon timezone, falling back to time.Local
func (c *DaemonConfig) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// ExpandEnvVars expands environment variables in secrets and paths
func (c *Config) ExpandEnvVars() {
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
	c.Storage.DSN = os.ExpandEnv(c.Storage.DSN)
	c.Briefing.APIKey = os.ExpandEnv(c.Briefing.APIKey)
	c.Daemon.TelegramToken = os.ExpandEnv(c.Daemon.TelegramToken)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "schedules.json"
	}
	return home + string(os.PathSeparator) + ".offshore-mate" + string(os.PathSeparator) + "schedules.json"
}
