// ABOUTME: Configuration management for riddleking with viper loading and YAML saving.
// ABOUTME: Handles X credentials, source and selection settings, paths, and ~ expansion.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/riddleking/internal/source"
	"github.com/2389-research/riddleking/internal/storage"
)

const appName = "riddleking"

// EnvPrefix is prepended to every environment override, e.g. RIDDLEKING_SOURCE_TYPE.
const EnvPrefix = "RIDDLEKING"

// Config stores riddleking configuration loaded from ~/.config/riddleking/config.yaml.
type Config struct {
	X         XConfig         `yaml:"x" mapstructure:"x"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Selection SelectionConfig `yaml:"selection" mapstructure:"selection"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
	Schedule  ScheduleConfig  `yaml:"schedule" mapstructure:"schedule"`
	Post      PostConfig      `yaml:"post" mapstructure:"post"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// XConfig holds the OAuth 1.0a user-context credentials for the X API.
type XConfig struct {
	APIKey       string `yaml:"api_key" mapstructure:"api_key"`
	APISecret    string `yaml:"api_secret" mapstructure:"api_secret"`
	AccessToken  string `yaml:"access_token" mapstructure:"access_token"`
	AccessSecret string `yaml:"access_secret" mapstructure:"access_secret"`
	APIURL       string `yaml:"api_url,omitempty" mapstructure:"api_url"`
}

// SourceConfig selects where riddles come from.
type SourceConfig struct {
	Type         string        `yaml:"type" mapstructure:"type"` // static, wordpress, feed
	WordPressURL string        `yaml:"wordpress_url,omitempty" mapstructure:"wordpress_url"`
	FeedURL      string        `yaml:"feed_url,omitempty" mapstructure:"feed_url"`
	CatalogPath  string        `yaml:"catalog_path,omitempty" mapstructure:"catalog_path"`
	BatchSize    int           `yaml:"batch_size,omitempty" mapstructure:"batch_size"`
	Timeout      time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// SelectionConfig tunes retries and history resets. Zero MaxAttempts and
// negative ResetThreshold mean "use the default for the source type".
type SelectionConfig struct {
	MaxAttempts    int           `yaml:"max_attempts,omitempty" mapstructure:"max_attempts"`
	Backoff        time.Duration `yaml:"backoff,omitempty" mapstructure:"backoff"`
	ResetThreshold int           `yaml:"reset_threshold" mapstructure:"reset_threshold"`
}

// HistoryConfig picks the history backend and its location.
type HistoryConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // json, sqlite
	Path    string `yaml:"path,omitempty" mapstructure:"path"`
}

// ScheduleConfig controls the cron trigger.
type ScheduleConfig struct {
	Cron       string        `yaml:"cron" mapstructure:"cron"`
	Timezone   string        `yaml:"timezone" mapstructure:"timezone"`
	RunTimeout time.Duration `yaml:"run_timeout,omitempty" mapstructure:"run_timeout"`
}

// PostConfig overrides parts of the post layout. Empty fields keep the defaults.
type PostConfig struct {
	Heading      string   `yaml:"heading,omitempty" mapstructure:"heading"`
	CallToAction string   `yaml:"call_to_action,omitempty" mapstructure:"call_to_action"`
	LinkLabel    string   `yaml:"link_label,omitempty" mapstructure:"link_label"`
	LinkBase     string   `yaml:"link_base,omitempty" mapstructure:"link_base"`
	Hashtags     []string `yaml:"hashtags,omitempty" mapstructure:"hashtags"`
	MaxLength    int      `yaml:"max_length,omitempty" mapstructure:"max_length"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	File       string `yaml:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups,omitempty" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty" mapstructure:"max_age_days"`
	JSON       bool   `yaml:"json,omitempty" mapstructure:"json"`
}

// MetricsConfig enables the Prometheus endpoint in scheduled mode.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" mapstructure:"addr"` // e.g. :9090; empty disables
}

// Selection defaults per source type.
const (
	DefaultWordPressAttempts  = 10
	DefaultWordPressThreshold = 0
	DefaultFeedAttempts       = 3
	DefaultFeedThreshold      = 10
	DefaultStaticAttempts     = 3
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		X:         XConfig{APIURL: "https://api.twitter.com"},
		Source:    SourceConfig{Type: source.TypeWordPress, BatchSize: source.DefaultBatchSize, Timeout: 30 * time.Second},
		Selection: SelectionConfig{Backoff: 2 * time.Second, ResetThreshold: -1},
		History:   HistoryConfig{Backend: storage.BackendJSON},
		Schedule:  ScheduleConfig{Cron: "0 9 * * *", Timezone: "UTC", RunTimeout: 5 * time.Minute},
		Log:       LogConfig{Level: "info"},
	}
}

// HasCredentials returns true if all four X credentials are set.
func (c *Config) HasCredentials() bool {
	return c.X.APIKey != "" && c.X.APISecret != "" && c.X.AccessToken != "" && c.X.AccessSecret != ""
}

// EffectiveSelection resolves per-source defaults for the retry ceiling and
// reset threshold.
func (c *Config) EffectiveSelection() (maxAttempts, resetThreshold int) {
	maxAttempts, resetThreshold = c.Selection.MaxAttempts, c.Selection.ResetThreshold

	defAttempts, defThreshold := DefaultWordPressAttempts, DefaultWordPressThreshold
	switch c.Source.Type {
	case source.TypeFeed:
		defAttempts, defThreshold = DefaultFeedAttempts, DefaultFeedThreshold
	case source.TypeStatic:
		defAttempts, defThreshold = DefaultStaticAttempts, 0
	}

	if maxAttempts <= 0 {
		maxAttempts = defAttempts
	}
	if resetThreshold < 0 {
		resetThreshold = defThreshold
	}
	return maxAttempts, resetThreshold
}

// GetHistoryPath returns the history location, defaulting to the XDG data dir.
func (c *Config) GetHistoryPath() (string, error) {
	if c.History.Path != "" {
		return ExpandPath(c.History.Path)
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	name := "posted-riddles.json"
	if c.History.Backend == storage.BackendSQLite {
		name = "posted-riddles.db"
	}
	return filepath.Join(dataDir, name), nil
}

// GetCatalogPath returns the expanded static catalog path, or "" for the built-in riddles.
func (c *Config) GetCatalogPath() (string, error) {
	return ExpandPath(c.Source.CatalogPath)
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source.Type {
	case source.TypeStatic, source.TypeWordPress, source.TypeFeed:
	default:
		errs = append(errs, fmt.Errorf("unknown source type %q (want static, wordpress or feed)", c.Source.Type))
	}
	switch c.History.Backend {
	case storage.BackendJSON, storage.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown history backend %q (want json or sqlite)", c.History.Backend))
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid schedule timezone %q: %w", c.Schedule.Timezone, err))
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		errs = append(errs, fmt.Errorf("invalid schedule cron %q: %w", c.Schedule.Cron, err))
	}
	if c.Post.MaxLength < 0 {
		errs = append(errs, fmt.Errorf("post max_length must not be negative"))
	}

	return errors.Join(errs...)
}

// DataDir returns the riddleking data directory.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, appName, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from the default path. Returns defaults plus environment
// overrides if the file doesn't exist.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads config from path, or from the default path when path is empty.
// An explicitly named file must exist.
func LoadFile(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		defaultPath, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(defaultPath); err == nil {
			v.SetConfigFile(defaultPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", defaultPath, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// newViper creates a viper instance with defaults and environment bindings.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	// Credentials also honour the names the bot has always been deployed with.
	_ = v.BindEnv("x.api_key", EnvPrefix+"_X_API_KEY", "TWITTER_API_KEY")
	_ = v.BindEnv("x.api_secret", EnvPrefix+"_X_API_SECRET", "TWITTER_API_SECRET")
	_ = v.BindEnv("x.access_token", EnvPrefix+"_X_ACCESS_TOKEN", "TWITTER_ACCESS_TOKEN")
	_ = v.BindEnv("x.access_secret", EnvPrefix+"_X_ACCESS_SECRET", "TWITTER_ACCESS_SECRET")
	return v
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("x.api_key", c.X.APIKey)
	v.SetDefault("x.api_secret", c.X.APISecret)
	v.SetDefault("x.access_token", c.X.AccessToken)
	v.SetDefault("x.access_secret", c.X.AccessSecret)
	v.SetDefault("x.api_url", c.X.APIURL)

	v.SetDefault("source.type", c.Source.Type)
	v.SetDefault("source.wordpress_url", c.Source.WordPressURL)
	v.SetDefault("source.feed_url", c.Source.FeedURL)
	v.SetDefault("source.catalog_path", c.Source.CatalogPath)
	v.SetDefault("source.batch_size", c.Source.BatchSize)
	v.SetDefault("source.timeout", c.Source.Timeout)

	v.SetDefault("selection.max_attempts", c.Selection.MaxAttempts)
	v.SetDefault("selection.backoff", c.Selection.Backoff)
	v.SetDefault("selection.reset_threshold", c.Selection.ResetThreshold)

	v.SetDefault("history.backend", c.History.Backend)
	v.SetDefault("history.path", c.History.Path)

	v.SetDefault("schedule.cron", c.Schedule.Cron)
	v.SetDefault("schedule.timezone", c.Schedule.Timezone)
	v.SetDefault("schedule.run_timeout", c.Schedule.RunTimeout)

	v.SetDefault("post.heading", c.Post.Heading)
	v.SetDefault("post.call_to_action", c.Post.CallToAction)
	v.SetDefault("post.link_label", c.Post.LinkLabel)
	v.SetDefault("post.link_base", c.Post.LinkBase)
	v.SetDefault("post.hashtags", c.Post.Hashtags)
	v.SetDefault("post.max_length", c.Post.MaxLength)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)
	v.SetDefault("log.max_age_days", c.Log.MaxAgeDays)
	v.SetDefault("log.json", c.Log.JSON)

	v.SetDefault("metrics.addr", c.Metrics.Addr)
}

// Save writes config to the default path.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes config to path with owner-only permissions.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
