package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Remote.Timeout != 10*time.Second || cfg.Backup.Keep != 7 || cfg.Server.Listen == "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Remote.URL = "https://weekly.example.com"
	cfg.Remote.Token = "secret"
	cfg.Remote.Timeout = 3 * time.Second
	cfg.Remote.SerializeWrites = true
	cfg.Server.Tokens["abc"] = "alice"
	cfg.Backup.Cron = "0 3 * * *"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "timeout: 3s") {
		t.Fatalf("durations should be written readably:\n%s", data)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Remote.URL != cfg.Remote.URL || got.Remote.Timeout != 3*time.Second || !got.Remote.SerializeWrites {
		t.Fatalf("remote config lost: %+v", got.Remote)
	}
	if got.Server.Tokens["abc"] != "alice" || got.Backup.Cron != "0 3 * * *" {
		t.Fatalf("config lost: %+v", got)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatal("explicit value overwritten")
	}
	if cfg.DBPath == "" || cfg.Backup.Dir == "" || cfg.Remote.Timeout <= 0 {
		t.Fatalf("missing defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad url", func(c *Config) { c.Remote.URL = "ftp://x"; c.Remote.Token = "t" }, "remote.url"},
		{"missing token", func(c *Config) { c.Remote.URL = "http://localhost:8787" }, "remote.token"},
		{"bad cron", func(c *Config) { c.Backup.Cron = "every day" }, "backup.cron"},
		{"empty owner", func(c *Config) { c.Server.Tokens["t"] = "" }, "server.tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("backup:\n  cron: nonsense\n"), 0o600)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}
}
