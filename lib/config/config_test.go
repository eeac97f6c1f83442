// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sysroute/sysroute/lib/ref/reftest"
	"github.com/sysroute/sysroute/lib/testutil"
)

// validConfig is Default plus the one field Default cannot supply.
func validConfig() *Config {
	cfg := Default()
	cfg.Routing.OwnSubnet = reftest.SubnetID(0).String()
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Service.SocketPath != "/run/sysroute/sysroute.sock" {
		t.Errorf("expected socket_path=/run/sysroute/sysroute.sock, got %s", cfg.Service.SocketPath)
	}
	if interval, err := cfg.Topology.Interval(); err != nil || interval != 30*time.Second {
		t.Errorf("Interval() = %v, %v, want 30s", interval, err)
	}
	if !cfg.Topology.NotifyEnabled() {
		t.Error("file notifications off by default")
	}
	if cfg.History.Enabled() || cfg.History.Retain != 1000 {
		t.Errorf("history = %+v, want disabled with retain 1000", cfg.History)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected logging.format=text, got %s", cfg.Logging.Format)
	}
}

func TestLoad_RequiresSysrouteConfig(t *testing.T) {
	t.Setenv(EnvVar, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SYSROUTE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "SYSROUTE_CONFIG environment variable not set") {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestLoad_WithSysrouteConfig(t *testing.T) {
	subnet := reftest.SubnetID(3)
	configPath := testutil.WriteFile(t, t.TempDir(), "sysroute.yaml", []byte(`
environment: staging
service:
  socket_path: /test/sysroute.sock
routing:
  own_subnet: `+subnet.String()+`
`))
	t.Setenv(EnvVar, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Service.SocketPath != "/test/sysroute.sock" {
		t.Errorf("expected socket_path=/test/sysroute.sock, got %s", cfg.Service.SocketPath)
	}
	own, err := cfg.Routing.OwnSubnetID()
	if err != nil {
		t.Fatalf("OwnSubnetID: %v", err)
	}
	if own != subnet {
		t.Errorf("own subnet = %s, want %s", own, subnet)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "sysroute.yaml", []byte(`
environment: development

topology:
  path: /var/lib/sysroute/topology.cbor.zst
  reload_interval: 5m

logging:
  level: debug
  format: json
`))

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Topology.Path != "/var/lib/sysroute/topology.cbor.zst" {
		t.Errorf("expected topology.path from file, got %s", cfg.Topology.Path)
	}
	if interval, _ := cfg.Topology.Interval(); interval != 5*time.Minute {
		t.Errorf("Interval() = %v, want 5m", interval)
	}
	if level, _ := cfg.Logging.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected format=json, got %s", cfg.Logging.Format)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Service.SocketPath != "/run/sysroute/sysroute.sock" {
		t.Errorf("expected default socket_path, got %s", cfg.Service.SocketPath)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "sysroute.yaml", []byte(`
topology:
  pth: /typo.yaml
`))
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("LoadFile accepted an unknown key")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/sysroute.yaml"); err == nil {
		t.Fatal("LoadFile accepted a missing file")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "sysroute.yaml", []byte(`
environment: production

topology:
  path: /default/topology.yaml
logging:
  level: debug

production:
  topology:
    path: /prod/topology.cbor.lz4
    reload_interval: "0"
    notify: false
  history:
    path: /var/lib/sysroute/history.db
  logging:
    level: warn
    format: json
staging:
  topology:
    path: /staging/topology.yaml
`))

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Topology.Path != "/prod/topology.cbor.lz4" {
		t.Errorf("expected production topology.path, got %s", cfg.Topology.Path)
	}
	if interval, err := cfg.Topology.Interval(); err != nil || interval != 0 {
		t.Errorf("Interval() = %v, %v, want disabled", interval, err)
	}
	if cfg.Topology.NotifyEnabled() {
		t.Error("notify: false override not applied")
	}
	if cfg.History.Path != "/var/lib/sysroute/history.db" || cfg.History.Retain != 1000 {
		t.Errorf("history = %+v, want production path with default retain", cfg.History)
	}
	if cfg.Logging.Level != "warn" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v, want production override", cfg.Logging)
	}
}

func TestProductionDefaultsToJSONLogs(t *testing.T) {
	configPath := testutil.WriteFile(t, t.TempDir(), "sysroute.yaml", []byte("environment: production\n"))
	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected json logs in production, got %s", cfg.Logging.Format)
	}
}

func TestPathsExpandVariables(t *testing.T) {
	t.Setenv("SYSROUTE_TEST_STATE", "/srv/state")
	configPath := testutil.WriteFile(t, t.TempDir(), "sysroute.yaml", []byte(`
service:
  socket_path: ${SYSROUTE_TEST_RUNTIME:-/run/default}/sysroute.sock
topology:
  path: ${SYSROUTE_TEST_STATE}/topology.yaml
history:
  path: ${SYSROUTE_TEST_STATE}/history.db
`))
	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Service.SocketPath != "/run/default/sysroute.sock" {
		t.Errorf("socket_path = %s", cfg.Service.SocketPath)
	}
	if cfg.Topology.Path != "/srv/state/topology.yaml" {
		t.Errorf("topology.path = %s", cfg.Topology.Path)
	}
	if cfg.History.Path != "/srv/state/history.db" {
		t.Errorf("history.path = %s", cfg.History.Path)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/sysroute",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/sysroute",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "invalid" },
			wantErr: "invalid environment",
		},
		{
			name:    "empty socket path",
			modify:  func(c *Config) { c.Service.SocketPath = "" },
			wantErr: "service.socket_path is required",
		},
		{
			name:    "unknown topology format",
			modify:  func(c *Config) { c.Topology.Path = "/etc/sysroute/topology.toml" },
			wantErr: "topology.path",
		},
		{
			name:    "bad reload interval",
			modify:  func(c *Config) { c.Topology.ReloadInterval = "soon" },
			wantErr: "topology.reload_interval",
		},
		{
			name:    "negative reload interval",
			modify:  func(c *Config) { c.Topology.ReloadInterval = "-1s" },
			wantErr: "topology.reload_interval",
		},
		{
			name:    "missing own subnet",
			modify:  func(c *Config) { c.Routing.OwnSubnet = "" },
			wantErr: "routing.own_subnet is required",
		},
		{
			name:    "malformed own subnet",
			modify:  func(c *Config) { c.Routing.OwnSubnet = "not-a-subnet" },
			wantErr: "routing.own_subnet",
		},
		{
			name:    "negative history retention",
			modify:  func(c *Config) { c.History.Retain = -5 },
			wantErr: "history.retain",
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)

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

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Service.SocketPath = ""
	cfg.Routing.OwnSubnet = ""
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("Validate() error is not joined: %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("Validate() reported %d problems, want 3: %v", n, err)
	}
}
