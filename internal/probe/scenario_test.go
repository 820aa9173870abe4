package probe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultScenarios(t *testing.T) {
	scenarios := DefaultScenarios("handoff")

	want := []string{
		"plugin-loads", "help-output", "handoff-goal", "handoff-context", "memory-file",
		"no-arguments", "invalid-command", "extraction-with-context", "extraction-empty-context",
		"full-workflow",
	}
	if len(scenarios) != len(want) {
		t.Fatalf("got %d scenarios, want %d", len(scenarios), len(want))
	}
	for i, s := range scenarios {
		if s.Name != want[i] {
			t.Errorf("scenarios[%d] = %q, want %q", i, s.Name, want[i])
		}
		if err := s.Validate(); err != nil {
			t.Errorf("%s: Validate() error: %v", s.Name, err)
		}
	}

	byName := map[string]Scenario{}
	for _, s := range scenarios {
		byName[s.Name] = s
	}

	if got := byName["handoff-goal"].Steps[0].Prompt; got != "/handoff implement user authentication" {
		t.Errorf("handoff-goal prompt = %q", got)
	}
	if got := byName["no-arguments"].Steps[0].Prompt; got != "/handoff" {
		t.Errorf("no-arguments prompt = %q", got)
	}
	if got := byName["invalid-command"].Steps[0].Prompt; got != "/handoff-invalid test" {
		t.Errorf("invalid-command prompt = %q", got)
	}
	if !byName["plugin-loads"].Expect.Session {
		t.Error("plugin-loads must require a session")
	}
	if len(byName["full-workflow"].Steps) != 2 {
		t.Errorf("full-workflow has %d steps, want 2", len(byName["full-workflow"].Steps))
	}
	if ctx := byName["handoff-context"].Expect; ctx.OrMinLength != 100 || len(ctx.AnyOf) != 5 {
		t.Errorf("handoff-context expect = %+v", ctx)
	}
}

func TestScenario_Validate(t *testing.T) {
	tests := []struct {
		name     string
		scenario Scenario
		errMsg   string
	}{
		{"missing name", Scenario{Steps: Prompt("x")}, "name is required"},
		{"path in name", Scenario{Name: "a/b", Steps: Prompt("x")}, "path separators"},
		{"no steps", Scenario{Name: "a"}, "at least one step"},
		{"empty prompt", Scenario{Name: "a", Steps: Prompt("  ")}, "empty prompt"},
		{"negative length", Scenario{Name: "a", Steps: Prompt("x"), Expect: Expect{MinLength: -1}}, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scenario.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestLoadScenarios(t *testing.T) {
	content := `scenarios:
  - name: goal-echo
    description: Goal is echoed back
    steps:
      - prompt: /handoff write the docs
    expect:
      session: true
      non_empty: true
      any_of: [docs, documentation]
      or_min_length: 50
  - name: two-step
    steps:
      - prompt: hello
      - prompt: /handoff continue
    expect:
      memory_file: true
`
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	scenarios, err := LoadScenarios(path)
	if err != nil {
		t.Fatalf("LoadScenarios() error: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(scenarios))
	}

	first := scenarios[0]
	if first.Name != "goal-echo" || first.Steps[0].Prompt != "/handoff write the docs" {
		t.Errorf("first = %+v", first)
	}
	if !first.Expect.Session || !first.Expect.NonEmpty || first.Expect.OrMinLength != 50 {
		t.Errorf("first.Expect = %+v", first.Expect)
	}
	if len(first.Expect.AnyOf) != 2 || first.Expect.AnyOf[1] != "documentation" {
		t.Errorf("AnyOf = %v", first.Expect.AnyOf)
	}
	if len(scenarios[1].Steps) != 2 || !scenarios[1].Expect.MemoryFile {
		t.Errorf("second = %+v", scenarios[1])
	}
}

func TestParseScenarios_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"invalid yaml", "scenarios: [", "failed to parse"},
		{"empty", "scenarios: []", "no scenarios"},
		{"duplicate", "scenarios:\n  - name: a\n    steps: [{prompt: x}]\n  - name: a\n    steps: [{prompt: y}]\n", "duplicate"},
		{"invalid scenario", "scenarios:\n  - name: a\n", "at least one step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenarios([]byte(tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ParseScenarios() error = %v, want it to contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestLoadScenarios_MissingFile(t *testing.T) {
	if _, err := LoadScenarios(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSelect(t *testing.T) {
	all := DefaultScenarios("handoff")

	got, err := Select(all)
	if err != nil || len(got) != len(all) {
		t.Errorf("Select() with no patterns = %d, %v", len(got), err)
	}

	got, err = Select(all, "extraction-*", "plugin-loads")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	var names []string
	for _, s := range got {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "plugin-loads,extraction-with-context,extraction-empty-context" {
		t.Errorf("Select() = %v", names)
	}

	if _, err := Select(all, "nothing-*"); err == nil {
		t.Error("expected error when nothing matches")
	}
	if _, err := Select(all, "["); err == nil {
		t.Error("expected error for malformed pattern")
	}
}
