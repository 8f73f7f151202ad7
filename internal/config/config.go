// Package config loads and saves the weekly YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/weekly/internal/logx"
)

// RemoteConfig points the sync engine at a remote API.
type RemoteConfig struct {
	// URL of the weekly API. Empty keeps the app local-only.
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
	// Timeout bounds each HTTP request.
	Timeout    time.Duration `yaml:"timeout"`
	RatePerSec int           `yaml:"rate_per_sec"`
	// SerializeWrites sends at most one write per schedule at a time.
	SerializeWrites bool `yaml:"serialize_writes"`
}

// ServerConfig configures `weekly serve`.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	DBPath string `yaml:"db_path"`
	// Tokens maps bearer tokens to owner ids.
	Tokens map[string]string `yaml:"tokens"`
}

type BackupConfig struct {
	// Cron is a standard 5-field schedule. Empty disables backups.
	Cron string `yaml:"cron"`
	Dir  string `yaml:"dir"`
	Keep int    `yaml:"keep"`
}

type Config struct {
	DBPath string       `yaml:"db_path"`
	Log    logx.Config  `yaml:"log"`
	Remote RemoteConfig `yaml:"remote"`
	Server ServerConfig `yaml:"server"`
	Backup BackupConfig `yaml:"backup"`
}

// Default returns the configuration used on first run.
func Default() *Config {
	cfg := &Config{
		Log: logx.Config{Level: "info"},
		Remote: RemoteConfig{
			Timeout:    10 * time.Second,
			RatePerSec: 5,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8787",
			Tokens: map[string]string{},
		},
		Backup: BackupConfig{Keep: 7},
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills missing values with defaults so partially written files
// still work.
func (c *Config) Normalize() {
	base := DefaultDir()
	if c.DBPath == "" {
		c.DBPath = filepath.Join(base, "weekly.db")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Remote.Timeout <= 0 {
		c.Remote.Timeout = 10 * time.Second
	}
	if c.Remote.RatePerSec < 0 {
		c.Remote.RatePerSec = 0
	}
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8787"
	}
	if c.Server.DBPath == "" {
		c.Server.DBPath = filepath.Join(base, "remote.db")
	}
	if c.Server.Tokens == nil {
		c.Server.Tokens = map[string]string{}
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(base, "backups")
	}
	if c.Backup.Keep <= 0 {
		c.Backup.Keep = 7
	}
}

// Validate rejects values Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Remote.URL != "" {
		u, err := url.Parse(c.Remote.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("remote.url %q: must be an http(s) URL", c.Remote.URL))
		}
		if c.Remote.Token == "" {
			errs = append(errs, errors.New("remote.token: required when remote.url is set"))
		}
	}
	for token, owner := range c.Server.Tokens {
		if strings.TrimSpace(token) == "" || strings.TrimSpace(owner) == "" {
			errs = append(errs, errors.New("server.tokens: tokens and owners must be non-empty"))
			break
		}
	}
	if c.Backup.Cron != "" {
		if _, err := cron.ParseStandard(c.Backup.Cron); err != nil {
			errs = append(errs, fmt.Errorf("backup.cron %q: %w", c.Backup.Cron, err))
		}
	}
	return errors.Join(errs...)
}

// DefaultDir is <UserConfigDir>/weekly, or ./.weekly when that is unknown.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".weekly"
	}
	return filepath.Join(dir, "weekly")
}

// DefaultPath is the config file location used when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads the YAML file at path. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg atomically with 0600 permissions; it may hold tokens.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".weekly-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
