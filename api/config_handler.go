package api

import (
	"fmt"
	"net/http"

	"github.com/seenimoa/mortgagecli/internal/config"
	"github.com/seenimoa/mortgagecli/internal/output"
	"github.com/seenimoa/mortgagecli/internal/profile"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config         `json:"config"`
	ConfigFile string                 `json:"config_file"`
	Sources    []config.SettingStatus `json:"sources"`
}

// settings returns a copy of the running configuration.
// Handlers read through it so a concurrent PUT never races with them.
func (s *Server) settings() config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return *s.cfg
}

func configResponse(cfg config.Config) ConfigResponse {
	return ConfigResponse{
		Config:     &cfg,
		ConfigFile: configPath(&cfg),
		Sources:    config.CheckSources(&cfg),
	}
}

// configPath is the file the configuration was read from, or the default
// location when none was found.
func configPath(cfg *config.Config) string {
	if cfg.File != "" {
		return cfg.File
	}
	return config.ConfigFilePath()
}

// handleGetConfig returns the running configuration and where each setting came from.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    configResponse(s.settings()),
	})
}

// handleUpdateConfig merges the provided partial configuration into the running
// config, persists it to disk, and returns the updated config. Listener
// settings only take effect after a restart.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := decodeBody(r, &incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if incoming.Output.Format != "" {
		if _, err := output.Get(incoming.Output.Format, output.Options{}); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	snapshot, err := s.updateConfig(&incoming)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.log.WithField("file", configPath(&snapshot)).Info("configuration updated")

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    configResponse(snapshot),
	})
}

// updateConfig merges incoming into a copy of the running config, validates
// and saves the copy, and only then makes it current.
func (s *Server) updateConfig(incoming *config.Config) (config.Config, error) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()

	next := *s.cfg
	mergeConfig(&next, incoming)
	if err := profile.ValidateStruct("config", next); err != nil {
		return config.Config{}, err
	}
	if err := config.SaveToFile(&next, configPath(&next)); err != nil {
		return config.Config{}, fmt.Errorf("failed to save config: %w", err)
	}
	*s.cfg = next
	return next, nil
}

// mergeConfig copies non-zero/non-empty values from src into dst.
func mergeConfig(dst, src *config.Config) {
	// Profiles
	if src.Profiles.Dir != "" {
		dst.Profiles.Dir = src.Profiles.Dir
	}
	if src.Profiles.Default != "" {
		dst.Profiles.Default = src.Profiles.Default
	}

	// Output
	if src.Output.Format != "" {
		dst.Output.Format = src.Output.Format
	}
	if src.Output.Currency != "" {
		dst.Output.Currency = src.Output.Currency
	}
	// NoColor is a bool, always apply from incoming
	dst.Output.NoColor = src.Output.NoColor

	// Matrix
	if src.Matrix.Workers != 0 {
		dst.Matrix.Workers = src.Matrix.Workers
	}
	if src.Matrix.PriceStep != 0 {
		dst.Matrix.PriceStep = src.Matrix.PriceStep
	}
	if src.Matrix.DownMin != 0 {
		dst.Matrix.DownMin = src.Matrix.DownMin
	}
	if src.Matrix.DownMax != 0 {
		dst.Matrix.DownMax = src.Matrix.DownMax
	}
	if src.Matrix.DownStep != 0 {
		dst.Matrix.DownStep = src.Matrix.DownStep
	}

	// API
	if src.API.Host != "" {
		dst.API.Host = src.API.Host
	}
	if src.API.Port != 0 {
		dst.API.Port = src.API.Port
	}
	if len(src.API.CORSOrigins) > 0 {
		dst.API.CORSOrigins = src.API.CORSOrigins
	}
	if src.API.RateLimit != 0 {
		dst.API.RateLimit = src.API.RateLimit
	}

	// Logging
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
}
