// Package command loads slash command documents: markdown files with a
// frontmatter header under a plugin's commands/ directory.
package command

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/andywolf/handoff/internal/frontmatter"
)

// Dir is the commands directory relative to the plugin root.
const Dir = "commands"

// Frontmatter keys understood by the host application.
const (
	KeyDescription  = "description"
	KeyArgumentHint = "argument-hint"
	KeyAllowedTools = "allowed-tools"
	KeyModel        = "model"
)

// Meta is the typed view of a command header.
type Meta struct {
	Description  string
	ArgumentHint string
	AllowedTools []string
	Model        string
}

// header is the YAML shape of a command header. allowed-tools may be a
// sequence or a comma-separated string.
type header struct {
	Description            string      `yaml:"description"`
	ArgumentHint           string      `yaml:"argument-hint"`
	AllowedTools           interface{} `yaml:"allowed-tools"`
	Model                  string      `yaml:"model"`
	DisableModelInvocation bool        `yaml:"disable-model-invocation"`
}

// Command is a parsed slash command document.
type Command struct {
	Name    string // file base name without extension
	Trigger string // e.g. "/handoff"
	Path    string
	Meta    Meta
	Fields  frontmatter.Fields
	Body    string
	Raw     string

	// DecodeErr is set when the header is not a valid command header in YAML;
	// Meta then comes from the raw key: value lines.
	DecodeErr error
}

// Parse builds a Command from document content. name is the command name
// without the leading slash.
func Parse(name, content string) (*Command, error) {
	doc, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", name, err)
	}

	cmd := &Command{
		Name:    name,
		Trigger: "/" + name,
		Fields:  doc.Fields,
		Body:    doc.Body,
		Raw:     content,
	}

	var h header
	if err := doc.Decode(&h); err != nil {
		cmd.DecodeErr = err
		cmd.Meta = Meta{
			Description:  doc.Fields.Get(KeyDescription),
			ArgumentHint: doc.Fields.Get(KeyArgumentHint),
			AllowedTools: doc.Fields.List(KeyAllowedTools),
			Model:        doc.Fields.Get(KeyModel),
		}
		return cmd, nil
	}

	cmd.Meta = Meta{
		Description:  h.Description,
		ArgumentHint: h.ArgumentHint,
		AllowedTools: toolList(h.AllowedTools),
		Model:        h.Model,
	}
	return cmd, nil
}

func toolList(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return frontmatter.ParseList(val)
	case []interface{}:
		var out []string
		for _, item := range val {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Load reads the command document at p within fsys.
func Load(fsys fs.FS, p string) (*Command, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read command: %w", err)
	}

	cmd, err := Parse(NameFromPath(p), string(data))
	if err != nil {
		return nil, err
	}
	cmd.Path = p
	return cmd, nil
}

// LoadDir loads every *.md file in dir, sorted by name. Documents that fail
// to parse are returned in the error map instead of aborting the load.
func LoadDir(fsys fs.FS, dir string) ([]*Command, map[string]error, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read commands directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var commands []*Command
	failures := make(map[string]error)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		p := path.Join(dir, entry.Name())
		cmd, err := Load(fsys, p)
		if err != nil {
			failures[p] = err
			continue
		}
		commands = append(commands, cmd)
	}

	return commands, failures, nil
}

// NameFromPath returns the command name for a document path.
func NameFromPath(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

// Invocation renders the prompt that triggers this command with args.
func (c *Command) Invocation(args string) string {
	args = strings.TrimSpace(args)
	if args == "" {
		return c.Trigger
	}
	return c.Trigger + " " + args
}
