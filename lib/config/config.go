// Copyright 2026 The Sysroute Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sysroute/sysroute/lib/ref"
	"github.com/sysroute/sysroute/lib/topology"
)

// EnvVar names the environment variable read by Load.
const EnvVar = "SYSROUTE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for sysroute binaries.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Service configures the resolver socket.
	Service ServiceConfig `yaml:"service"`

	// Topology configures where the network topology is read from.
	Topology TopologyConfig `yaml:"topology"`

	// Routing configures resolution defaults.
	Routing RoutingConfig `yaml:"routing"`

	// History configures the snapshot history database.
	History HistoryConfig `yaml:"history"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Service  *ServiceConfig  `yaml:"service,omitempty"`
	Topology *TopologyConfig `yaml:"topology,omitempty"`
	Routing  *RoutingConfig  `yaml:"routing,omitempty"`
	History  *HistoryConfig  `yaml:"history,omitempty"`
	Logging  *LoggingConfig  `yaml:"logging,omitempty"`
}

// ServiceConfig configures the resolver socket.
type ServiceConfig struct {
	// SocketPath is the Unix socket the resolver service listens on.
	// Default: /run/sysroute/sysroute.sock
	SocketPath string `yaml:"socket_path"`
}

// TopologyConfig configures the topology source.
type TopologyConfig struct {
	// Path is the topology document. The format follows the
	// extension: .yaml, .jsonc, .cbor, .cbor.zst or .cbor.lz4.
	Path string `yaml:"path"`

	// ReloadInterval is how often the file is checked for changes,
	// as a duration string. "0" disables reloading.
	// Default: 30s
	ReloadInterval string `yaml:"reload_interval"`

	// Notify reloads as soon as the file is written, on platforms
	// with file notifications. Only applies while reloading is
	// enabled.
	// Default: true
	Notify *bool `yaml:"notify,omitempty"`
}

// RoutingConfig configures resolution.
type RoutingConfig struct {
	// OwnSubnet is the textual id of the subnet this resolver runs on.
	// Required.
	OwnSubnet string `yaml:"own_subnet"`
}

// HistoryConfig configures the snapshot history database.
type HistoryConfig struct {
	// Path is the SQLite database recording every published snapshot.
	// Empty disables the history.
	Path string `yaml:"path"`

	// Retain is how many snapshots are kept. Default: 1000
	Retain int `yaml:"retain"`
}

// Enabled reports whether a history database is configured.
func (h HistoryConfig) Enabled() bool {
	return h.Path != ""
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level"`

	// Format is text or json. Default: text (json in production)
	Format string `yaml:"format"`
}

// Default returns the default configuration. The config file is still
// required; defaults only fill the fields it leaves out.
func Default() *Config {
	return &Config{
		Environment: Development,
		Service: ServiceConfig{
			SocketPath: "/run/sysroute/sysroute.sock",
		},
		Topology: TopologyConfig{
			Path:           "/etc/sysroute/topology.yaml",
			ReloadInterval: "30s",
		},
		History: HistoryConfig{
			Retain: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the SYSROUTE_CONFIG environment
// variable. There are no fallbacks: if it is not set, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your sysroute.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Unknown keys
// are rejected so typos surface at startup.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return err
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Service != nil {
		if overrides.Service.SocketPath != "" {
			c.Service.SocketPath = overrides.Service.SocketPath
		}
	}

	if overrides.Topology != nil {
		if overrides.Topology.Path != "" {
			c.Topology.Path = overrides.Topology.Path
		}
		if overrides.Topology.ReloadInterval != "" {
			c.Topology.ReloadInterval = overrides.Topology.ReloadInterval
		}
		if overrides.Topology.Notify != nil {
			c.Topology.Notify = overrides.Topology.Notify
		}
	}

	if overrides.Routing != nil {
		if overrides.Routing.OwnSubnet != "" {
			c.Routing.OwnSubnet = overrides.Routing.OwnSubnet
		}
	}

	if overrides.History != nil {
		if overrides.History.Path != "" {
			c.History.Path = overrides.History.Path
		}
		if overrides.History.Retain != 0 {
			c.History.Retain = overrides.History.Retain
		}
	}

	if overrides.Logging != nil {
		if overrides.Logging.Level != "" {
			c.Logging.Level = overrides.Logging.Level
		}
		if overrides.Logging.Format != "" {
			c.Logging.Format = overrides.Logging.Format
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Service.SocketPath = expandVars(c.Service.SocketPath, vars)
	c.Topology.Path = expandVars(c.Topology.Path, vars)
	c.History.Path = expandVars(c.History.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, checking vars
// before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Service.SocketPath == "" {
		errs = append(errs, errors.New("service.socket_path is required"))
	}

	if c.Topology.Path == "" {
		errs = append(errs, errors.New("topology.path is required"))
	} else if _, err := topology.FormatFromPath(c.Topology.Path); err != nil {
		errs = append(errs, fmt.Errorf("topology.path: %w", err))
	}
	if _, err := c.Topology.Interval(); err != nil {
		errs = append(errs, fmt.Errorf("topology.reload_interval: %w", err))
	}

	if c.Routing.OwnSubnet == "" {
		errs = append(errs, errors.New("routing.own_subnet is required"))
	} else if _, err := c.Routing.OwnSubnetID(); err != nil {
		errs = append(errs, fmt.Errorf("routing.own_subnet: %w", err))
	}

	if c.History.Retain < 0 {
		errs = append(errs, fmt.Errorf("history.retain must not be negative, got %d", c.History.Retain))
	}

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// NotifyEnabled reports whether file notifications are on. Unset means
// on.
func (t TopologyConfig) NotifyEnabled() bool {
	return t.Notify == nil || *t.Notify
}

// Interval parses ReloadInterval. Zero means reloading is disabled.
func (t TopologyConfig) Interval() (time.Duration, error) {
	if t.ReloadInterval == "" || t.ReloadInterval == "0" {
		return 0, nil
	}
	interval, err := time.ParseDuration(t.ReloadInterval)
	if err != nil {
		return 0, err
	}
	if interval < 0 {
		return 0, fmt.Errorf("negative interval %s", interval)
	}
	return interval, nil
}

// OwnSubnetID parses OwnSubnet.
func (r RoutingConfig) OwnSubnetID() (ref.SubnetID, error) {
	return ref.ParseSubnetID(r.OwnSubnet)
}

// SlogLevel maps Level to a slog level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", l.Level)
	}
}
