package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Source represents where a setting's value comes from.
type Source string

const (
	SourceEnv     Source = "env"
	SourceFile    Source = "file"
	SourceDefault Source = "default"
)

// SettingStatus describes one effective setting.
type SettingStatus struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source Source `json:"source"`
	EnvVar string `json:"env_var"`
}

// trackedKeys are the settings reported by CheckSources, in display order.
var trackedKeys = []string{
	"profiles.dir",
	"profiles.default",
	"output.format",
	"output.currency",
	"output.no_color",
	"matrix.workers",
	"api.host",
	"api.port",
	"api.cors_origins",
	"api.rate_limit",
	"logging.level",
	"logging.format",
}

// EnvVar returns the environment variable that overrides a config key.
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// CheckSources returns the effective value and origin of every tracked setting.
func CheckSources(cfg *Config) []SettingStatus {
	values := map[string]string{
		"profiles.dir":     cfg.ProfilesPath(),
		"profiles.default": cfg.Profiles.Default,
		"output.format":    cfg.Output.Format,
		"output.currency":  cfg.Output.Currency,
		"output.no_color":  fmt.Sprint(cfg.Output.NoColor),
		"matrix.workers":   fmt.Sprint(cfg.Matrix.Workers),
		"api.host":         cfg.API.Host,
		"api.port":         fmt.Sprint(cfg.API.Port),
		"api.cors_origins": strings.Join(cfg.API.CORSOrigins, ","),
		"api.rate_limit":   fmt.Sprint(cfg.API.RateLimit),
		"logging.level":    cfg.Logging.Level,
		"logging.format":   cfg.Logging.Format,
	}

	out := make([]SettingStatus, 0, len(trackedKeys))
	for _, key := range trackedKeys {
		src, ok := cfg.sources[key]
		if !ok {
			src = envOr(key, SourceDefault)
		}
		out = append(out, SettingStatus{
			Key:    key,
			Value:  values[key],
			Source: src,
			EnvVar: EnvVar(key),
		})
	}
	return out
}

func resolveSources(v *viper.Viper) map[string]Source {
	sources := make(map[string]Source, len(trackedKeys))
	for _, key := range trackedKeys {
		fallback := SourceDefault
		if v.InConfig(key) {
			fallback = SourceFile
		}
		sources[key] = envOr(key, fallback)
	}
	return sources
}

func envOr(key string, fallback Source) Source {
	if _, ok := os.LookupEnv(EnvVar(key)); ok {
		return SourceEnv
	}
	return fallback
}
