package check

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/andywolf/handoff/internal/plugin"
)

const goodCommand = `---
description: Extract relevant context and prepare a handoff
argument-hint: <goal>
allowed-tools: [Read, Write]
---

# Handoff

## Workflow
- Step 1: extract context
`

func goodReadme() string {
	return "# Handoff\n\n## Installation\n\n## Usage\n\nRun `/handoff <goal>` for context extraction.\n" +
		strings.Repeat("More words about context. ", 50)
}

func goodFS() fstest.MapFS {
	return fstest.MapFS{
		".claude-plugin/plugin.json": &fstest.MapFile{Data: []byte(`{"name":"handoff","displayName":"Handoff","description":"Hand off context","version":"1.0.0"}`)},
		"commands/handoff.md":        &fstest.MapFile{Data: []byte(goodCommand)},
		"README.md":                  &fstest.MapFile{Data: []byte(goodReadme())},
	}
}

func runOn(fsys fstest.MapFS, ids ...string) *Report {
	return Run(plugin.Open(fsys), Options{}, Select(Default(), ids...)...)
}

func TestRun_AllPass(t *testing.T) {
	report := runOn(goodFS())

	for _, res := range report.Results {
		if !res.Passed {
			t.Errorf("%s failed: %v", res.ID, res.Problems)
		}
	}
	if report.Failed() {
		t.Error("Failed() = true for a valid plugin")
	}
	if len(report.Results) != len(Default()) {
		t.Errorf("got %d results, want %d", len(report.Results), len(Default()))
	}
}

func TestRun_EmptyPlugin(t *testing.T) {
	report := runOn(fstest.MapFS{})

	wantFailed := []string{"manifest.exists", "manifest.only-file", "commands.dir", "command.exists", "readme.exists"}
	for _, id := range wantFailed {
		res, ok := report.Result(id)
		if !ok {
			t.Fatalf("missing result %s", id)
		}
		if res.Passed {
			t.Errorf("%s should fail on an empty plugin", id)
		}
	}

	// Content checks defer to the existence checks.
	for _, id := range []string{"manifest.json", "manifest.fields", "command.frontmatter", "readme.usage"} {
		if res, _ := report.Result(id); !res.Passed {
			t.Errorf("%s should not duplicate the missing-file failure: %v", id, res.Problems)
		}
	}
}

func TestManifestChecks(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		extra    map[string]string
		failing  string
	}{
		{"invalid json", `{"name":`, nil, "manifest.json"},
		{"array", `[]`, nil, "manifest.json"},
		{"missing field", `{"name":"handoff","displayName":"H","description":"context","version":""}`, nil, "manifest.fields"},
		{"wrong name", `{"name":"other","displayName":"H","description":"context","version":"1.0.0"}`, nil, "manifest.name"},
		{"short version", `{"name":"handoff","displayName":"H","description":"context","version":"1.0"}`, nil, "manifest.version"},
		{"no context", `{"name":"handoff","displayName":"H","description":"Moves on","version":"1.0.0"}`, nil, "manifest.description"},
		{"extra metadata file", `{"name":"handoff","displayName":"H","description":"context","version":"1.0.0"}`, map[string]string{".claude-plugin/notes.md": "x"}, "manifest.only-file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := goodFS()
			fsys[".claude-plugin/plugin.json"] = &fstest.MapFile{Data: []byte(tt.manifest)}
			for p, content := range tt.extra {
				fsys[p] = &fstest.MapFile{Data: []byte(content)}
			}

			report := runOn(fsys, "manifest")
			for _, res := range report.Results {
				if res.ID == tt.failing && res.Passed {
					t.Errorf("%s should fail", res.ID)
				}
				if res.ID != tt.failing && !res.Passed {
					t.Errorf("%s failed unexpectedly: %v", res.ID, res.Problems)
				}
			}
		})
	}
}

func TestManifestChecks_NonStringValues(t *testing.T) {
	fsys := goodFS()
	fsys[".claude-plugin/plugin.json"] = &fstest.MapFile{Data: []byte(`{"name":42,"displayName":"H","description":"context","version":1}`)}

	report := runOn(fsys, "manifest")
	for _, id := range []string{"manifest.name", "manifest.version"} {
		if res, _ := report.Result(id); res.Passed {
			t.Errorf("%s should fail for a non-string value", id)
		}
	}
	if res, _ := report.Result("manifest.fields"); !res.Passed {
		t.Errorf("manifest.fields should leave type errors to the field checks: %v", res.Problems)
	}
	if !report.Failed() {
		t.Error("Failed() = false for a manifest with a numeric name")
	}
}

func TestManifestDescription_IsWarning(t *testing.T) {
	fsys := goodFS()
	fsys[".claude-plugin/plugin.json"] = &fstest.MapFile{Data: []byte(`{"name":"handoff","displayName":"H","description":"Moves on","version":"1.0.0"}`)}

	report := runOn(fsys)
	if report.Failed() {
		t.Errorf("a warning should not fail the report: %v", report.Errors())
	}
	if len(report.Warnings()) != 1 {
		t.Errorf("got %d warnings, want 1", len(report.Warnings()))
	}
}

func TestCommandChecks(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		failing []string
	}{
		{
			name:    "no frontmatter",
			doc:     "# Handoff\n\n## Workflow\n- extract context\n",
			failing: []string{"command.frontmatter"},
		},
		{
			name:    "unclosed frontmatter",
			doc:     "---\ndescription: handoff context\n# Workflow\n- extract\n",
			failing: []string{"command.frontmatter"},
		},
		{
			name:    "missing description",
			doc:     "---\nargument-hint: <goal>\n---\n# Handoff workflow\n- extract context\n",
			failing: []string{"command.frontmatter"},
		},
		{
			name:    "short description",
			doc:     "---\ndescription: handoff\n---\n# Workflow\n- extract context\n",
			failing: []string{"command.description"},
		},
		{
			name:    "description length counts characters",
			doc:     "---\ndescription: handoff \u2603\u2603\n---\n# Workflow\n- extract context\n",
			failing: []string{"command.description"},
		},
		{
			name:    "off-topic description",
			doc:     "---\ndescription: Summarize a long session\nnote: handoff\n---\n# Workflow\n- extract context\n",
			failing: []string{"command.description"},
		},
		{
			name:    "empty argument hint",
			doc:     "---\ndescription: Handoff the relevant context\nargument-hint:\n---\n# Workflow\n- extract\n",
			failing: []string{"command.argument-hint"},
		},
		{
			name:    "quoted empty argument hint",
			doc:     "---\ndescription: Handoff the relevant context\nargument-hint: \"\"\n---\n# Workflow\n- extract\n",
			failing: []string{"command.argument-hint"},
		},
		{
			name:    "allowed tools not a list",
			doc:     "---\ndescription: Handoff the relevant context\nallowed-tools: Read, Write\n---\n# Workflow\n- extract\n",
			failing: []string{"command.allowed-tools"},
		},
		{
			name:    "no workflow",
			doc:     "---\ndescription: Handoff the relevant context\n---\n# Handoff\n- do it\n",
			failing: []string{"command.instructions"},
		},
		{
			name:    "no headers",
			doc:     "---\ndescription: Handoff the relevant context\n---\nWorkflow: extract.\n",
			failing: []string{"command.markdown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := goodFS()
			fsys["commands/handoff.md"] = &fstest.MapFile{Data: []byte(tt.doc)}

			report := runOn(fsys, "command")
			want := make(map[string]bool)
			for _, id := range tt.failing {
				want[id] = true
			}
			for _, res := range report.Results {
				if want[res.ID] && res.Passed {
					t.Errorf("%s should fail", res.ID)
				}
				if !want[res.ID] && !res.Passed {
					t.Errorf("%s failed unexpectedly: %v", res.ID, res.Problems)
				}
			}
		})
	}
}

func TestCommandExists_CustomName(t *testing.T) {
	report := Run(plugin.Open(goodFS()), Options{CommandName: "resume"}, Select(Default(), "command.exists")...)
	if !report.Failed() {
		t.Error("command.exists should fail for a missing resume.md")
	}
}

func TestReadmeChecks(t *testing.T) {
	tests := []struct {
		name    string
		readme  string
		failing []string
	}{
		{
			name:    "too short",
			readme:  "# Handoff\nInstall it. Usage: /handoff does context extraction.\n",
			failing: []string{"readme.documentation"},
		},
		{
			name:    "no install",
			readme:  strings.Replace(goodReadme(), "Installation", "Setup", 1),
			failing: []string{"readme.install"},
		},
		{
			name:    "no trigger",
			readme:  strings.Replace(goodReadme(), "/handoff", "handoff", 1),
			failing: []string{"readme.usage"},
		},
		{
			name:    "length counts characters not bytes",
			readme:  "# Handoff\n\n## Installation\n\n## Usage\n\nRun `/handoff <goal>` for context extraction.\n" + strings.Repeat("\u00e9", 600),
			failing: []string{"readme.documentation"},
		},
		{
			name:    "trigger is case-sensitive",
			readme:  strings.Replace(goodReadme(), "/handoff", "/HANDOFF", 1),
			failing: []string{"readme.usage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := goodFS()
			fsys["README.md"] = &fstest.MapFile{Data: []byte(tt.readme)}

			report := runOn(fsys, "readme")
			want := make(map[string]bool)
			for _, id := range tt.failing {
				want[id] = true
			}
			for _, res := range report.Results {
				if want[res.ID] && res.Passed {
					t.Errorf("%s should fail", res.ID)
				}
				if !want[res.ID] && !res.Passed {
					t.Errorf("%s failed unexpectedly: %v", res.ID, res.Problems)
				}
			}
		})
	}
}

func TestSelect(t *testing.T) {
	all := Default()

	if got := Select(all); len(got) != len(all) {
		t.Errorf("Select() with no patterns = %d checks, want %d", len(got), len(all))
	}
	if got := Select(all, "readme"); len(got) != 4 {
		t.Errorf("Select(readme) = %d checks, want 4", len(got))
	}
	if got := Select(all, "manifest.name"); len(got) != 1 || got[0].ID != "manifest.name" {
		t.Errorf("Select(manifest.name) = %v", got)
	}
	// "command" must not select "commands.dir".
	for _, c := range Select(all, "command") {
		if c.ID == "commands.dir" {
			t.Error("Select(command) should not match commands.dir")
		}
	}
}

func TestReport_Output(t *testing.T) {
	fsys := goodFS()
	delete(fsys, "README.md")
	report := runOn(fsys)

	var text bytes.Buffer
	if err := report.WriteText(&text, false); err != nil {
		t.Fatalf("WriteText() error: %v", err)
	}
	out := text.String()
	if !strings.Contains(out, "FAIL  readme.exists") {
		t.Errorf("text report missing failure:\n%s", out)
	}
	if strings.Contains(out, "PASS") {
		t.Errorf("non-verbose report should omit passing checks:\n%s", out)
	}

	var js bytes.Buffer
	if err := report.WriteJSON(&js); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(js.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Results) != len(report.Results) {
		t.Errorf("decoded %d results, want %d", len(decoded.Results), len(report.Results))
	}
}
