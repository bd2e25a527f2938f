package store

import (
	"errors"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/snackdriven/tender-circuit/internal/model"
)

const configFileName = "config.toml"

type SyncConfig struct {
	// BaseURL of the remote document store; empty means local-only mode.
	BaseURL      string `toml:"base_url"`
	Email        string `toml:"email"`
	UserID       string `toml:"user_id"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

func (c SyncConfig) Enabled() bool {
	return c.BaseURL != "" && c.UserID != ""
}

type Config struct {
	// HorizonDays bounds the active view window at today+N; 0 disables the
	// bound.
	HorizonDays int `toml:"horizon_days"`

	BrowseSort string `toml:"browse_sort"`
	AllSort    string `toml:"all_sort"`

	// DebounceMillis is the quiet period collapsing repeated mutations into
	// one push.
	DebounceMillis int `toml:"debounce_ms"`

	// EventLog toggles the sqlite audit log.
	EventLog bool `toml:"event_log"`

	Sync SyncConfig `toml:"sync"`
}

func DefaultConfig() Config {
	return Config{
		HorizonDays:    model.ActiveWindowDays,
		BrowseSort:     "label-priority",
		AllSort:        "newest",
		DebounceMillis: 2500,
		EventLog:       true,
	}
}

func (s Store) configPath() string { return filepath.Join(s.Dir, configFileName) }

// LoadConfig reads config.toml, writing the default file on first use.
func (s Store) LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := s.configPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.Ensure(); err != nil {
			return cfg, err
		}
		if err := s.SaveConfig(cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DebounceMillis <= 0 {
		cfg.DebounceMillis = DefaultConfig().DebounceMillis
	}
	return cfg, nil
}

func (s Store) SaveConfig(cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(s.configPath(), data, 0o600)
}
