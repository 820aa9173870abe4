package probe

import (
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andywolf/handoff/internal/command"
)

// Step is one prompt sent to a fresh session in the scenario's directory.
type Step struct {
	Prompt string `yaml:"prompt"`
}

// Scenario is a sequence of prompts whose final response is checked.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps"`
	Expect      Expect `yaml:"expect"`
}

// Prompt is a convenience for single-step scenarios.
func Prompt(p string) []Step {
	return []Step{{Prompt: p}}
}

// Validate checks the scenario is runnable.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("scenario %q: name must not contain path separators", s.Name)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q: at least one step is required", s.Name)
	}
	for i, step := range s.Steps {
		if strings.TrimSpace(step.Prompt) == "" {
			return fmt.Errorf("scenario %q: step %d has an empty prompt", s.Name, i+1)
		}
	}
	if s.Expect.OrMinLength < 0 || s.Expect.MinLength < 0 {
		return fmt.Errorf("scenario %q: length expectations must not be negative", s.Name)
	}
	return nil
}

// scenarioFile is the on-disk layout of a scenario file.
type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// ParseScenarios decodes and validates a YAML scenario document.
func ParseScenarios(data []byte) ([]Scenario, error) {
	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios defined")
	}

	seen := make(map[string]bool, len(f.Scenarios))
	for _, s := range f.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
	}
	return f.Scenarios, nil
}

// LoadScenarios reads a YAML scenario file.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenarios(data)
}

// Select returns the scenarios matching any of the glob patterns, in their
// original order. No patterns selects everything.
func Select(scenarios []Scenario, patterns ...string) ([]Scenario, error) {
	if len(patterns) == 0 {
		return scenarios, nil
	}

	var out []Scenario
	for _, s := range scenarios {
		for _, p := range patterns {
			ok, err := path.Match(p, s.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid scenario pattern %q: %w", p, err)
			}
			if ok {
				out = append(out, s)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenarios match %s", strings.Join(patterns, ", "))
	}
	return out, nil
}

// DefaultScenarios exercises the slash command named name.
func DefaultScenarios(name string) []Scenario {
	cmd := &command.Command{Name: name, Trigger: "/" + name}

	return []Scenario{
		{
			Name:        "plugin-loads",
			Description: "Plugin loads and a session starts",
			Steps:       Prompt("/help"),
			Expect:      Expect{Session: true, SlashCommand: name},
		},
		{
			Name:        "help-output",
			Description: "/help produces output",
			Steps:       Prompt("/help"),
			Expect:      Expect{NonEmpty: true},
		},
		{
			Name:        "handoff-goal",
			Description: "Output reflects the goal",
			Steps:       Prompt(cmd.Invocation("implement user authentication")),
			Expect:      Expect{NonEmpty: true, AnyOf: []string{"goal", "user"}},
		},
		{
			Name:        "handoff-context",
			Description: "Output discusses extracted context",
			Steps:       Prompt(cmd.Invocation("build a REST API")),
			Expect: Expect{
				NonEmpty:    true,
				AnyOf:       []string{"context", "extract", "memory", "file", "relevant"},
				OrMinLength: 100,
			},
		},
		{
			Name:        "memory-file",
			Description: "Memory file written under .claude/",
			Steps:       Prompt(cmd.Invocation("prepare for next phase")),
			Expect:      Expect{MemoryFile: true},
		},
		{
			Name:        "no-arguments",
			Description: "Command without a goal still responds",
			Steps:       Prompt(cmd.Invocation("")),
			Expect:      Expect{NonEmpty: true},
		},
		{
			Name:        "invalid-command",
			Description: "Unknown command is handled gracefully",
			Steps:       Prompt(cmd.Trigger + "-invalid test"),
			Expect:      Expect{NonEmpty: true},
		},
		{
			Name:        "extraction-with-context",
			Description: "Extraction completes for a goal building on prior work",
			Steps:       Prompt(cmd.Invocation("now implement the API endpoints based on the auth design")),
		},
		{
			Name:        "extraction-empty-context",
			Description: "Extraction completes in a fresh conversation",
			Steps:       Prompt(cmd.Invocation("start building the backend API")),
		},
		{
			Name:        "full-workflow",
			Description: "Ordinary conversation followed by a handoff",
			Steps: []Step{
				{Prompt: "What's the best way to structure a Node.js API?"},
				{Prompt: cmd.Invocation("now implement the database schema and migrations")},
			},
			Expect: Expect{NonEmpty: true},
		},
	}
}
