// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want 30", cfg.API.TimeoutSecs)
	}
	if !cfg.Session.EncryptToken {
		t.Error("EncryptToken should default to true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.BaseURL = "https://gradebook.example.edu"
	cfg.UI.Theme = "dark"

	if err := SaveFile(cfg, path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	loaded := Default()
	if err := LoadFile(loaded, path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if loaded.API.BaseURL != "https://gradebook.example.edu" {
		t.Errorf("BaseURL = %q, want the saved value", loaded.API.BaseURL)
	}
	if loaded.UI.Theme != "dark" {
		t.Errorf("Theme = %q, want dark", loaded.UI.Theme)
	}
}

func TestLoadFile_PartialFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[api]\nbase_url = \"http://10.0.0.5:9000\"\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.API.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("BaseURL = %q, want the file value", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSecs != 30 {
		t.Errorf("TimeoutSecs = %d, want default 30", cfg.API.TimeoutSecs)
	}
}

func TestLoadFile_FixesInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %v, want 0600 after load", info.Mode().Perm())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"relative url", func(c *Config) { c.API.BaseURL = "localhost:8000/api" }, "api.base_url"},
		{"ftp scheme", func(c *Config) { c.API.BaseURL = "ftp://host" }, "api.base_url"},
		{"negative timeout", func(c *Config) { c.API.TimeoutSecs = -1 }, "api.timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GRADEBOOK_API_URL", "http://env-host:8000")
	t.Setenv("GRADEBOOK_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.BaseURL != "http://env-host:8000" {
		t.Errorf("BaseURL = %q, want env value", cfg.API.BaseURL)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q, want light", cfg.UI.Theme)
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("api.base_url", "http://other:8000"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := cfg.Get("api.base_url")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "http://other:8000" {
		t.Errorf("Get = %q, want set value", got)
	}

	// Set must validate: a bad value is rejected.
	if err := cfg.Set("ui.theme", "neon"); err == nil {
		t.Error("expected validation error for bad theme")
	}

	if _, err := cfg.Get("no.such.key"); err == nil {
		t.Error("expected error for unknown key")
	}

	// Every advertised key must resolve.
	for _, key := range Keys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}
}
