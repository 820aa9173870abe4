// Package claudecode drives the Claude Code CLI in print mode and decodes its
// stream-json output into typed messages.
package claudecode

import (
	"strconv"
	"strings"
)

const (
	// DefaultBinary is the Claude Code executable looked up on PATH.
	DefaultBinary = "claude"

	// PermissionBypass skips every permission prompt.
	PermissionBypass = "bypassPermissions"
)

// DefaultAllowedTools are the tools granted to probe sessions.
var DefaultAllowedTools = []string{"Read", "Write", "Bash", "Glob", "Grep", "WebFetch"}

// DefaultSettingSources loads user and project settings, matching an
// interactive session.
var DefaultSettingSources = []string{"user", "project"}

// Options configure one query.
type Options struct {
	Binary         string
	PluginDirs     []string
	PermissionMode string
	AllowedTools   []string
	SettingSources []string
	Cwd            string
	Model          string
	MaxTurns       int

	// Env entries are added to the inherited environment, overriding
	// existing keys.
	Env map[string]string
}

// binary returns the executable to run.
func (o Options) binary() string {
	if o.Binary == "" {
		return DefaultBinary
	}
	return o.Binary
}

// Args builds the CLI arguments. The prompt itself is delivered on stdin.
func (o Options) Args() []string {
	args := []string{
		"--print",
		"--verbose",
		"--output-format", "stream-json",
	}

	for _, dir := range o.PluginDirs {
		args = append(args, "--plugin-dir", dir)
	}

	if o.PermissionMode != "" {
		args = append(args, "--permission-mode", o.PermissionMode)
	}

	if len(o.AllowedTools) > 0 {
		args = append(args, "--allowedTools", strings.Join(o.AllowedTools, ","))
	}

	if len(o.SettingSources) > 0 {
		args = append(args, "--setting-sources", strings.Join(o.SettingSources, ","))
	}

	if o.Model != "" {
		args = append(args, "--model", o.Model)
	}

	if o.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(o.MaxTurns))
	}

	return args
}

// EnvList merges o.Env into base (KEY=VALUE entries). Later keys win.
func (o Options) EnvList(base []string) []string {
	if len(o.Env) == 0 {
		return base
	}

	out := make([]string, 0, len(base)+len(o.Env))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, override := o.Env[key]; override {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range o.Env {
		out = append(out, k+"="+v)
	}
	return out
}
