package probe

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andywolf/handoff/internal/agent/claudecode"
)

// Expect describes what the last step's session must produce. Session and
// NonEmpty are hard expectations; the rest are advisory and only fail a
// scenario in strict mode. MemoryFile is informational.
type Expect struct {
	Session      bool     `yaml:"session,omitempty" json:"session,omitempty"`
	NonEmpty     bool     `yaml:"non_empty,omitempty" json:"non_empty,omitempty"`
	AnyOf        []string `yaml:"any_of,omitempty" json:"any_of,omitempty"`
	OrMinLength  int      `yaml:"or_min_length,omitempty" json:"or_min_length,omitempty"`
	MinLength    int      `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	SlashCommand string   `yaml:"slash_command,omitempty" json:"slash_command,omitempty"`
	MemoryFile   bool     `yaml:"memory_file,omitempty" json:"memory_file,omitempty"`
}

// Observation is what a scenario's final session produced.
type Observation struct {
	SessionID     string
	Text          string
	SlashCommands []string
	MemoryFiles   []string
}

// Finding is the outcome of one expectation.
type Finding struct {
	Expectation string `json:"expectation"`
	Hard        bool   `json:"hard"`
	Passed      bool   `json:"passed"`
	Detail      string `json:"detail,omitempty"`
}

// Evaluate checks obs against e.
func (e Expect) Evaluate(obs Observation) []Finding {
	var findings []Finding

	if e.Session {
		f := Finding{Expectation: "session", Hard: true, Passed: obs.SessionID != ""}
		if !f.Passed {
			f.Detail = "no session was created"
		}
		findings = append(findings, f)
	}

	if e.NonEmpty {
		f := Finding{Expectation: "non_empty", Hard: true, Passed: len(obs.Text) > 0}
		if !f.Passed {
			f.Detail = "no assistant text"
		}
		findings = append(findings, f)
	}

	if len(e.AnyOf) > 0 {
		f := Finding{Expectation: "any_of"}
		n := utf8.RuneCountInString(obs.Text)
		lower := strings.ToLower(obs.Text)
		for _, kw := range e.AnyOf {
			if strings.Contains(lower, strings.ToLower(kw)) {
				f.Passed = true
				f.Detail = fmt.Sprintf("mentions %q", kw)
				break
			}
		}
		if !f.Passed && e.OrMinLength > 0 && n > e.OrMinLength {
			f.Passed = true
			f.Detail = fmt.Sprintf("%d chars of output", n)
		}
		if !f.Passed {
			f.Detail = fmt.Sprintf("output mentions none of %s", strings.Join(e.AnyOf, ", "))
			if e.OrMinLength > 0 {
				f.Detail += fmt.Sprintf(" and is not longer than %d chars", e.OrMinLength)
			}
		}
		findings = append(findings, f)
	}

	if e.MinLength > 0 {
		n := utf8.RuneCountInString(obs.Text)
		f := Finding{Expectation: "min_length", Passed: n >= e.MinLength}
		if !f.Passed {
			f.Detail = fmt.Sprintf("%d chars, want at least %d", n, e.MinLength)
		}
		findings = append(findings, f)
	}

	if e.SlashCommand != "" {
		f := Finding{Expectation: "slash_command", Passed: claudecode.MatchSlashCommand(obs.SlashCommands, e.SlashCommand)}
		if !f.Passed {
			f.Detail = fmt.Sprintf("/%s not advertised by the session", strings.TrimPrefix(e.SlashCommand, "/"))
		}
		findings = append(findings, f)
	}

	if e.MemoryFile {
		f := Finding{Expectation: "memory_file", Passed: true, Detail: "no memory file written"}
		if len(obs.MemoryFiles) > 0 {
			f.Detail = "wrote " + strings.Join(obs.MemoryFiles, ", ")
		}
		findings = append(findings, f)
	}

	return findings
}
