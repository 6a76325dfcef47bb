// Copyright 2026 The Splice Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Paths.Launcher != "/usr/libexec/xpcproxy" {
		t.Errorf("expected launcher=/usr/libexec/xpcproxy, got %s", cfg.Paths.Launcher)
	}
	if cfg.Exclude.LoginServer != "sshd" {
		t.Errorf("expected login_server=sshd, got %s", cfg.Exclude.LoginServer)
	}
	if cfg.MarkerFD != 255 {
		t.Errorf("expected marker_fd=255, got %d", cfg.MarkerFD)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("shipped defaults must validate: %v", err)
	}
}

func TestLoad_DefaultsWithoutSpliceConfig(t *testing.T) {
	// Save and restore SPLICE_CONFIG.
	origConfig := os.Getenv("SPLICE_CONFIG")
	defer os.Setenv("SPLICE_CONFIG", origConfig)

	os.Unsetenv("SPLICE_CONFIG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load without SPLICE_CONFIG: %v", err)
	}
	if cfg.Paths.Helper != Default().Paths.Helper {
		t.Errorf("expected shipped helper path, got %s", cfg.Paths.Helper)
	}
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "splice.yaml")

	configContent := `
paths:
  helper: /opt/splice/unrestrict
policy:
  trusted_service: org.test.spliced
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Paths.Helper != "/opt/splice/unrestrict" {
		t.Errorf("expected overridden helper, got %s", cfg.Paths.Helper)
	}
	if cfg.Policy.TrustedService != "org.test.spliced" {
		t.Errorf("expected overridden trusted_service, got %s", cfg.Policy.TrustedService)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Paths.Launcher != "/usr/libexec/xpcproxy" {
		t.Errorf("expected default launcher to survive, got %s", cfg.Paths.Launcher)
	}
}

func TestLoadFile_ExpandsVariables(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "splice.yaml")

	configContent := `
paths:
  helper: ${HOME}/splice/unrestrict
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	origHome := os.Getenv("HOME")
	defer os.Setenv("HOME", origHome)
	os.Setenv("HOME", "/home/test")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.Helper != "/home/test/splice/unrestrict" {
		t.Errorf("expected ${HOME} expansion, got %s", cfg.Paths.Helper)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty helper",
			mutate:  func(c *Config) { c.Paths.Helper = "" },
			wantErr: "paths.helper is required",
		},
		{
			name:    "login server with slash",
			mutate:  func(c *Config) { c.Exclude.LoginServer = "/usr/sbin/sshd" },
			wantErr: "must be a bare name",
		},
		{
			name:    "marker fd in stdio range",
			mutate:  func(c *Config) { c.MarkerFD = 2 },
			wantErr: "marker_fd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile_RejectsInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "splice.yaml")

	configContent := `
exclude:
  login_server: /usr/sbin/sshd
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected validation failure for path-shaped login_server")
	}
}
