package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix      = "NEWSDASH"
	envConfigPath  = "NEWSDASH_CONFIG"
	defaultCfgName = "newsdash"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Trending TrendingConfig `mapstructure:"trending" yaml:"trending"`
	UI       UIConfig       `mapstructure:"ui" yaml:"ui"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Events   EventsConfig   `mapstructure:"events" yaml:"events"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// APIConfig points at the news API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// TrendingConfig holds refresh loop settings.
type TrendingConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Title             string `mapstructure:"title" yaml:"title"`
	Timezone          string `mapstructure:"timezone" yaml:"timezone"`
	TrendingContainer string `mapstructure:"trending_container" yaml:"trending_container"`
	VersionContainer  string `mapstructure:"version_container" yaml:"version_container"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	Buffer int `mapstructure:"buffer" yaml:"buffer"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "8080", ShutdownTimeout: 15 * time.Second},
		API:      APIConfig{BaseURL: "http://localhost:8081", Timeout: 10 * time.Second},
		Trending: TrendingConfig{Interval: 5 * time.Minute},
		UI: UIConfig{
			Title:             "News",
			Timezone:          "Local",
			TrendingContainer: "trending-topics",
			VersionContainer:  "version-info",
		},
		Log:    LogConfig{Level: "info"},
		Events: EventsConfig{Buffer: 16},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("trending.interval", d.Trending.Interval)
	v.SetDefault("ui.title", d.UI.Title)
	v.SetDefault("ui.timezone", d.UI.Timezone)
	v.SetDefault("ui.trending_container", d.UI.TrendingContainer)
	v.SetDefault("ui.version_container", d.UI.VersionContainer)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("events.buffer", d.Events.Buffer)
}

// New builds a viper instance reading defaults, an optional YAML file and
// NEWSDASH_* environment overrides. path may be empty, in which case
// NEWSDASH_CONFIG or ./newsdash.yaml is used when present.
func New(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(defaultCfgName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. A missing config file is not an error.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must be set")
	}
	if c.Trending.Interval <= 0 {
		return fmt.Errorf("trending.interval must be positive, got %s", c.Trending.Interval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves UI.Timezone. "Local" and "" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.UI.Timezone == "" || c.UI.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ui.timezone %q: %w", c.UI.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps Log.Level to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// WriteDefault writes the default configuration as YAML to path unless a
// file already exists there. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return false, fmt.Errorf("marshal default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create config dir: %w", err)
		}
	}
	header := []byte("# newsdash configuration. Environment variables NEWSDASH_<SECTION>_<KEY> override these values.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}

// Watch re-reads the config file whenever it changes and passes the new
// configuration to onChange. Invalid configurations are logged and skipped.
func Watch(v *viper.Viper, onChange func(Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		var c Config
		if err := v.Unmarshal(&c); err != nil {
			slog.Error("Config reload failed", "file", e.Name, "error", err)
			return
		}
		if err := c.Validate(); err != nil {
			slog.Error("Config reload rejected", "file", e.Name, "error", err)
			return
		}
		slog.Info("Config reloaded", "file", e.Name)
		onChange(c)
	})
	v.WatchConfig()
}
