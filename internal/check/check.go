// Package check runs structural checks against a loaded plugin bundle.
//
// Each check has a stable ID and a severity. A check returns the problems it
// found; no problems means it passed. Checks never panic on missing files:
// an absent manifest fails the manifest checks and leaves the others alone.
package check

import (
	"strings"

	"github.com/andywolf/handoff/internal/plugin"
)

// Severity classifies a failed check.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Options tune the default checks.
type Options struct {
	PluginName      string // expected manifest name
	CommandName     string // command document that must exist
	MinReadmeLength int    // README must be longer than this many characters
}

// DefaultOptions returns the options for the handoff plugin.
func DefaultOptions() Options {
	return Options{
		PluginName:      "handoff",
		CommandName:     "handoff",
		MinReadmeLength: 1000,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PluginName == "" {
		o.PluginName = d.PluginName
	}
	if o.CommandName == "" {
		o.CommandName = d.CommandName
	}
	if o.MinReadmeLength == 0 {
		o.MinReadmeLength = d.MinReadmeLength
	}
	return o
}

// Func inspects a bundle and returns the problems it found.
type Func func(b *plugin.Bundle, opts Options) []string

// Check is a named structural check.
type Check struct {
	ID          string
	Description string
	Severity    Severity
	Run         Func
}

// Result is the outcome of one check.
type Result struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Passed      bool     `json:"passed"`
	Problems    []string `json:"problems,omitempty"`
}

// Run executes checks against b in order. When no checks are given the
// default suite runs.
func Run(b *plugin.Bundle, opts Options, checks ...Check) *Report {
	opts = opts.withDefaults()
	if len(checks) == 0 {
		checks = Default()
	}

	report := &Report{Plugin: b.Root}
	for _, c := range checks {
		problems := c.Run(b, opts)
		report.Results = append(report.Results, Result{
			ID:          c.ID,
			Description: c.Description,
			Severity:    c.Severity,
			Passed:      len(problems) == 0,
			Problems:    problems,
		})
	}
	return report
}

// Default returns the full structural suite.
func Default() []Check {
	var checks []Check
	checks = append(checks, manifestChecks()...)
	checks = append(checks, commandChecks()...)
	checks = append(checks, readmeChecks()...)
	return checks
}

// Select returns the checks whose ID equals or is prefixed by one of the
// given patterns ("manifest" selects "manifest.json", "manifest.fields", ...).
func Select(checks []Check, patterns ...string) []Check {
	if len(patterns) == 0 {
		return checks
	}
	var out []Check
	for _, c := range checks {
		for _, p := range patterns {
			if c.ID == p || strings.HasPrefix(c.ID, p+".") {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func containsFold(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func problems(msgs ...string) []string {
	var out []string
	for _, m := range msgs {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
