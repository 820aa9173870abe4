// Package config loads handoffctl settings from .handoffctl.yaml and
// HANDOFFCTL_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/andywolf/handoff/internal/agent/claudecode"
	"github.com/spf13/viper"
)

// Config represents the full handoffctl configuration
type Config struct {
	Plugin PluginConfig `mapstructure:"plugin"`
	Probe  ProbeConfig  `mapstructure:"probe"`
	Log    LogConfig    `mapstructure:"log"`
}

// PluginConfig locates the plugin under test and the names it must carry
type PluginConfig struct {
	Dir             string `mapstructure:"dir"` // empty means the embedded plugin
	Name            string `mapstructure:"name"`
	Command         string `mapstructure:"command"`
	MinReadmeLength int    `mapstructure:"min_readme_length"`
}

// ProbeConfig contains behavioral probe settings
type ProbeConfig struct {
	Binary         string   `mapstructure:"binary"`
	Model          string   `mapstructure:"model"`
	PermissionMode string   `mapstructure:"permission_mode"`
	AllowedTools   []string `mapstructure:"allowed_tools"`
	SettingSources []string `mapstructure:"setting_sources"`
	MaxTurns       int      `mapstructure:"max_turns"`
	Timeout        string   `mapstructure:"timeout"` // per scenario
	Parallelism    int      `mapstructure:"parallelism"`
	Strict         bool     `mapstructure:"strict"` // advisory expectations fail
	APIKeySecret   string   `mapstructure:"api_key_secret"`
	GCPProject     string   `mapstructure:"gcp_project"`
	TranscriptDir  string   `mapstructure:"transcript_dir"`
	ScenarioFile   string   `mapstructure:"scenario_file"`
	KeepWorkdirs   bool     `mapstructure:"keep_workdirs"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Default values
const (
	DefaultPluginName      = "handoff"
	DefaultCommand         = "handoff"
	DefaultMinReadmeLength = 1000
	DefaultTimeout         = "5m"
	DefaultParallelism     = 2
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
)

// EnvPrefix prefixes environment overrides, e.g. HANDOFFCTL_PROBE_STRICT.
const EnvPrefix = "HANDOFFCTL"

// keys lists every setting that can be overridden from the environment.
var keys = []string{
	"plugin.dir",
	"plugin.name",
	"plugin.command",
	"plugin.min_readme_length",
	"probe.binary",
	"probe.model",
	"probe.permission_mode",
	"probe.allowed_tools",
	"probe.setting_sources",
	"probe.max_turns",
	"probe.timeout",
	"probe.parallelism",
	"probe.strict",
	"probe.api_key_secret",
	"probe.gcp_project",
	"probe.transcript_dir",
	"probe.scenario_file",
	"probe.keep_workdirs",
	"log.level",
	"log.format",
}

// BindEnv maps HANDOFFCTL_<SECTION>_<KEY> variables onto v.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals v into a Config and applies defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.Plugin.Name == "" {
		cfg.Plugin.Name = DefaultPluginName
	}

	if cfg.Plugin.Command == "" {
		cfg.Plugin.Command = DefaultCommand
	}

	if cfg.Plugin.MinReadmeLength == 0 {
		cfg.Plugin.MinReadmeLength = DefaultMinReadmeLength
	}

	if cfg.Probe.Binary == "" {
		cfg.Probe.Binary = claudecode.DefaultBinary
	}

	if cfg.Probe.PermissionMode == "" {
		cfg.Probe.PermissionMode = claudecode.PermissionBypass
	}

	if len(cfg.Probe.AllowedTools) == 0 {
		cfg.Probe.AllowedTools = append([]string(nil), claudecode.DefaultAllowedTools...)
	}

	if len(cfg.Probe.SettingSources) == 0 {
		cfg.Probe.SettingSources = append([]string(nil), claudecode.DefaultSettingSources...)
	}

	if cfg.Probe.Timeout == "" {
		cfg.Probe.Timeout = DefaultTimeout
	}

	if cfg.Probe.Parallelism == 0 {
		cfg.Probe.Parallelism = DefaultParallelism
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Plugin.Name == "" {
		return fmt.Errorf("plugin name is required")
	}

	if c.Plugin.Command == "" {
		return fmt.Errorf("plugin command is required")
	}

	if c.Plugin.MinReadmeLength < 0 {
		return fmt.Errorf("plugin min_readme_length must not be negative")
	}

	validModes := map[string]bool{
		"default":           true,
		"acceptEdits":       true,
		"bypassPermissions": true,
		"plan":              true,
	}
	if !validModes[c.Probe.PermissionMode] {
		return fmt.Errorf("invalid permission mode: %s (must be default, acceptEdits, bypassPermissions, or plan)", c.Probe.PermissionMode)
	}

	if _, err := c.Probe.TimeoutDuration(); err != nil {
		return err
	}

	if c.Probe.Parallelism < 1 {
		return fmt.Errorf("probe parallelism must be at least 1")
	}

	if c.Probe.MaxTurns < 0 {
		return fmt.Errorf("probe max_turns must not be negative")
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Log.Format)
	}

	return nil
}

// TimeoutDuration parses the per-scenario timeout.
func (p ProbeConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid probe timeout %q: %w", p.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("probe timeout must be positive")
	}
	return d, nil
}

// SplitList splits a comma-separated list, dropping empty items. It parses
// list-valued flags and wizard answers.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
