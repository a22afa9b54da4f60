// Package config handles configuration loading for mortgagecli.
// It supports a YAML config file with .env and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// EnvPrefix prefixes every environment override, e.g. MORTGAGECLI_API_PORT.
const EnvPrefix = "MORTGAGECLI"

// AppName names the per-user config directory.
const AppName = "mortgage-cli"

// Config represents the complete application configuration.
type Config struct {
	Profiles ProfilesConfig `mapstructure:"profiles" yaml:"profiles" json:"profiles"`
	Output   OutputConfig   `mapstructure:"output"   yaml:"output"   json:"output"`
	Matrix   MatrixConfig   `mapstructure:"matrix"   yaml:"matrix"   json:"matrix"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"      json:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"  json:"logging"`

	// File is the config file that was read, empty when running on defaults.
	File string `mapstructure:"-" yaml:"-" json:"file,omitempty"`

	sources map[string]Source
}

// ProfilesConfig locates investor profiles.
type ProfilesConfig struct {
	Dir     string `mapstructure:"dir"     yaml:"dir"     json:"dir"`     // empty means ProfilesDir()
	Default string `mapstructure:"default" yaml:"default" json:"default"` // profile used when --profile is omitted
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format   string `mapstructure:"format"   yaml:"format"   json:"format"` // "table", "json", "csv", "summary", "xlsx"
	Currency string `mapstructure:"currency" yaml:"currency" json:"currency"`
	NoColor  bool   `mapstructure:"no_color" yaml:"no_color" json:"no_color"`
}

// MatrixConfig holds sensitivity grid defaults.
type MatrixConfig struct {
	Workers   int     `mapstructure:"workers"    yaml:"workers"    json:"workers"    validate:"gte=0,lte=1024"` // 0 means GOMAXPROCS
	PriceStep float64 `mapstructure:"price_step" yaml:"price_step" json:"price_step" validate:"gt=0"`
	DownMin   float64 `mapstructure:"down_min"   yaml:"down_min"   json:"down_min"   validate:"gte=0,lte=1"`
	DownMax   float64 `mapstructure:"down_max"   yaml:"down_max"   json:"down_max"   validate:"gte=0,lte=1,gtefield=DownMin"`
	DownStep  float64 `mapstructure:"down_step"  yaml:"down_step"  json:"down_step"  validate:"gt=0,lte=1"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"         validate:"gte=0,lte=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
	RateLimit   int      `mapstructure:"rate_limit"   yaml:"rate_limit"   json:"rate_limit"   validate:"gte=0,lte=1000000"` // requests per second, 0 disables
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. $XDG_CONFIG_HOME/mortgage-cli/config.yaml (~/.config/mortgage-cli when unset)
//
// A .env file in the working directory is loaded first; variables already
// present in the environment win over it. Environment variables override
// config file values: MORTGAGECLI_<SECTION>_<KEY>, e.g. MORTGAGECLI_OUTPUT_FORMAT.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(ConfigDir())

	// Config file not found is fine: defaults + env vars.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// SaveToFile writes the configuration as YAML, creating parent directories.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", path, err)
	}
	return nil
}

// Default returns the configuration built from defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// ProfilesPath resolves the profile directory, expanding a leading "~".
func (c *Config) ProfilesPath() string {
	if c.Profiles.Dir == "" {
		return ProfilesDir()
	}
	return expandHome(c.Profiles.Dir)
}

// Addr returns the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.sources = resolveSources(v)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Profiles
	v.SetDefault("profiles.dir", "")
	v.SetDefault("profiles.default", "default")

	// Output
	v.SetDefault("output.format", "table")
	v.SetDefault("output.currency", "€")
	v.SetDefault("output.no_color", false)

	// Matrix
	v.SetDefault("matrix.workers", 0)
	v.SetDefault("matrix.price_step", 20000)
	v.SetDefault("matrix.down_min", 0.10)
	v.SetDefault("matrix.down_max", 0.50)
	v.SetDefault("matrix.down_step", 0.05)

	// API
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.rate_limit", 50)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// ConfigDir returns the XDG config directory for mortgagecli.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(base, AppName)
}

// ProfilesDir returns the default directory of profile YAML files.
func ProfilesDir() string {
	return filepath.Join(ConfigDir(), "profiles")
}

// ConfigFilePath returns the path of the per-user config file.
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func expandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
