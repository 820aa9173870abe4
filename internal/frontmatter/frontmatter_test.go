package frontmatter

import (
	"errors"
	"reflect"
	"testing"
)

const sampleDoc = `---
description: Extract context and hand off
argument-hint: <goal>
allowed-tools: [Read, Write, "Bash"]
---

# Title

Body text with a time 10:30 in it.
`

func TestSplit(t *testing.T) {
	doc, err := Split(sampleDoc)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	if got := doc.Fields.Get("description"); got != "Extract context and hand off" {
		t.Errorf("description = %q", got)
	}
	if got := doc.Fields.Get("argument-hint"); got != "<goal>" {
		t.Errorf("argument-hint = %q", got)
	}
	if doc.Fields.Has("Body text with a time 10") {
		t.Error("body lines should not be parsed as fields")
	}
	if want := "\n\n# Title\n\nBody text with a time 10:30 in it.\n"; doc.Body != want {
		t.Errorf("Body = %q, want %q", doc.Body, want)
	}
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"no leading delimiter", "# Title\n---\ndescription: x\n---\n"},
		{"single delimiter", "---\ndescription: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.content)
			if !errors.Is(err, ErrNoFrontmatter) {
				t.Errorf("Split() error = %v, want ErrNoFrontmatter", err)
			}
		})
	}
}

func TestSplit_EmptyHeader(t *testing.T) {
	doc, err := Split("------\nbody")
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	if len(doc.Fields) != 0 {
		t.Errorf("expected no fields, got %v", doc.Fields)
	}
	if doc.Body != "\nbody" {
		t.Errorf("Body = %q", doc.Body)
	}
}

func TestParseHeader(t *testing.T) {
	fields := ParseHeader("\nname: handoff\nno colon here\nurl: https://example.com\n : empty key\n")

	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(fields), fields)
	}
	if fields[0].Key != "name" || fields[0].Value != "handoff" {
		t.Errorf("fields[0] = %+v", fields[0])
	}
	// Split happens on the first colon only.
	if fields[1].Value != "https://example.com" {
		t.Errorf("url = %q", fields[1].Value)
	}
}

func TestFields_List(t *testing.T) {
	doc, err := Split(sampleDoc)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	if !doc.Fields.IsList("allowed-tools") {
		t.Error("allowed-tools should be a bracketed list")
	}
	if doc.Fields.IsList("description") {
		t.Error("description should not be a list")
	}

	want := []string{"Read", "Write", "Bash"}
	if got := doc.Fields.List("allowed-tools"); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"[]", nil},
		{"[Read]", []string{"Read"}},
		{"Read, Grep", []string{"Read", "Grep"}},
		{"[ 'Read' , ,Glob ]", []string{"Read", "Glob"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseList(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDocument_Decode(t *testing.T) {
	doc, err := Split(sampleDoc)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}

	var meta struct {
		Description  string   `yaml:"description"`
		ArgumentHint string   `yaml:"argument-hint"`
		AllowedTools []string `yaml:"allowed-tools"`
	}
	if err := doc.Decode(&meta); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !reflect.DeepEqual(meta.AllowedTools, []string{"Read", "Write", "Bash"}) {
		t.Errorf("AllowedTools = %v", meta.AllowedTools)
	}

	bad := &Document{Header: "key: [unclosed"}
	if err := bad.Decode(&meta); err == nil {
		t.Error("Decode() should fail on invalid YAML")
	}

	unknown := &Document{Header: "description: x\nmodle: sonnet\n"}
	if err := unknown.Decode(&meta); err == nil {
		t.Error("Decode() should reject keys the target does not declare")
	}

	empty := &Document{Header: "\n"}
	if err := empty.Decode(&meta); err != nil {
		t.Errorf("Decode() on an empty header: %v", err)
	}
}
