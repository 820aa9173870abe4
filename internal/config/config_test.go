package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/andywolf/handoff/internal/agent/claudecode"
	"github.com/spf13/viper"
)

func validConfig() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing plugin name",
			mutate:  func(c *Config) { c.Plugin.Name = "" },
			wantErr: true,
			errMsg:  "plugin name is required",
		},
		{
			name:    "missing command",
			mutate:  func(c *Config) { c.Plugin.Command = "" },
			wantErr: true,
			errMsg:  "plugin command is required",
		},
		{
			name:    "negative readme length",
			mutate:  func(c *Config) { c.Plugin.MinReadmeLength = -1 },
			wantErr: true,
			errMsg:  "min_readme_length",
		},
		{
			name:    "invalid permission mode",
			mutate:  func(c *Config) { c.Probe.PermissionMode = "yolo" },
			wantErr: true,
			errMsg:  "invalid permission mode",
		},
		{
			name:    "accept edits permission mode",
			mutate:  func(c *Config) { c.Probe.PermissionMode = "acceptEdits" },
			wantErr: false,
		},
		{
			name:    "unparseable timeout",
			mutate:  func(c *Config) { c.Probe.Timeout = "soon" },
			wantErr: true,
			errMsg:  "invalid probe timeout",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Probe.Timeout = "0s" },
			wantErr: true,
			errMsg:  "probe timeout must be positive",
		},
		{
			name:    "zero parallelism",
			mutate:  func(c *Config) { c.Probe.Parallelism = 0 },
			wantErr: true,
			errMsg:  "parallelism",
		},
		{
			name:    "negative max turns",
			mutate:  func(c *Config) { c.Probe.MaxTurns = -2 },
			wantErr: true,
			errMsg:  "max_turns",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
			errMsg:  "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)

	expected := Config{
		Plugin: PluginConfig{
			Name:            "handoff",
			Command:         "handoff",
			MinReadmeLength: 1000,
		},
		Probe: ProbeConfig{
			Binary:         "claude",
			PermissionMode: "bypassPermissions",
			AllowedTools:   []string{"Read", "Write", "Bash", "Glob", "Grep", "WebFetch"},
			SettingSources: []string{"user", "project"},
			Timeout:        "5m",
			Parallelism:    2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}

	if !reflect.DeepEqual(cfg, expected) {
		t.Errorf("applyDefaults() = %+v, want %+v", cfg, expected)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Plugin: PluginConfig{Name: "other", MinReadmeLength: 10},
		Probe: ProbeConfig{
			AllowedTools: []string{"Read"},
			Parallelism:  8,
			Timeout:      "30s",
		},
	}
	applyDefaults(&cfg)

	if cfg.Plugin.Name != "other" {
		t.Errorf("Plugin.Name = %q, want other", cfg.Plugin.Name)
	}
	if cfg.Plugin.MinReadmeLength != 10 {
		t.Errorf("MinReadmeLength = %d, want 10", cfg.Plugin.MinReadmeLength)
	}
	if !reflect.DeepEqual(cfg.Probe.AllowedTools, []string{"Read"}) {
		t.Errorf("AllowedTools = %v, want [Read]", cfg.Probe.AllowedTools)
	}
	if cfg.Probe.Parallelism != 8 {
		t.Errorf("Parallelism = %d, want 8", cfg.Probe.Parallelism)
	}
}

func TestApplyDefaults_DoesNotAliasDefaultTools(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)
	cfg.Probe.AllowedTools[0] = "Mutated"

	if claudecode.DefaultAllowedTools[0] != "Read" {
		t.Errorf("DefaultAllowedTools was modified through config: %v", claudecode.DefaultAllowedTools)
	}
}

func TestProbeConfig_TimeoutDuration(t *testing.T) {
	d, err := ProbeConfig{Timeout: "90s"}.TimeoutDuration()
	if err != nil {
		t.Fatalf("TimeoutDuration() error: %v", err)
	}
	if d != 90*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 90s", d)
	}
}

func TestLoadFrom_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".handoffctl.yaml")
	content := `plugin:
  dir: plugins/handoff
  min_readme_length: 500
probe:
  model: sonnet
  strict: true
  parallelism: 4
  allowed_tools: [Read, Glob]
  api_key_secret: anthropic-api-key
log:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error: %v", err)
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Plugin.Dir != "plugins/handoff" {
		t.Errorf("Plugin.Dir = %q", cfg.Plugin.Dir)
	}
	if cfg.Plugin.MinReadmeLength != 500 {
		t.Errorf("MinReadmeLength = %d, want 500", cfg.Plugin.MinReadmeLength)
	}
	if cfg.Plugin.Name != "handoff" {
		t.Errorf("Plugin.Name default not applied: %q", cfg.Plugin.Name)
	}
	if cfg.Probe.Model != "sonnet" || !cfg.Probe.Strict || cfg.Probe.Parallelism != 4 {
		t.Errorf("Probe = %+v", cfg.Probe)
	}
	if !reflect.DeepEqual(cfg.Probe.AllowedTools, []string{"Read", "Glob"}) {
		t.Errorf("AllowedTools = %v", cfg.Probe.AllowedTools)
	}
	if cfg.Probe.APIKeySecret != "anthropic-api-key" {
		t.Errorf("APIKeySecret = %q", cfg.Probe.APIKeySecret)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestBindEnv(t *testing.T) {
	t.Setenv("HANDOFFCTL_PROBE_STRICT", "true")
	t.Setenv("HANDOFFCTL_PROBE_MODEL", "opus")
	t.Setenv("HANDOFFCTL_PLUGIN_DIR", "/tmp/plugin")
	t.Setenv("HANDOFFCTL_PROBE_PARALLELISM", "6")

	v := viper.New()
	if err := BindEnv(v); err != nil {
		t.Fatalf("BindEnv() error: %v", err)
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if !cfg.Probe.Strict {
		t.Error("Probe.Strict not read from environment")
	}
	if cfg.Probe.Model != "opus" {
		t.Errorf("Probe.Model = %q, want opus", cfg.Probe.Model)
	}
	if cfg.Plugin.Dir != "/tmp/plugin" {
		t.Errorf("Plugin.Dir = %q", cfg.Plugin.Dir)
	}
	if cfg.Probe.Parallelism != 6 {
		t.Errorf("Probe.Parallelism = %d, want 6", cfg.Probe.Parallelism)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "single tool",
			input:    "Read",
			expected: []string{"Read"},
		},
		{
			name:     "multiple tools",
			input:    "Read, Write, Bash",
			expected: []string{"Read", "Write", "Bash"},
		},
		{
			name:     "extra whitespace",
			input:    "  Read  ,  Glob  ",
			expected: []string{"Read", "Glob"},
		},
		{
			name:     "empty items between commas",
			input:    "Read,, Grep",
			expected: []string{"Read", "Grep"},
		},
		{
			name:     "trailing comma",
			input:    "Read, Write,",
			expected: []string{"Read", "Write"},
		},
		{
			name:     "tool patterns with spaces",
			input:    "Bash(git status), WebFetch",
			expected: []string{"Bash(git status)", "WebFetch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitList(tt.input)

			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
				return
			}

			if len(result) != len(tt.expected) {
				t.Errorf("expected %d items, got %d: %v", len(tt.expected), len(result), result)
				return
			}

			for i, expected := range tt.expected {
				if result[i] != expected {
					t.Errorf("item %d: expected %q, got %q", i, expected, result[i])
				}
			}
		})
	}
}
