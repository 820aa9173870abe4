package check

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andywolf/handoff/internal/command"
	"github.com/andywolf/handoff/internal/frontmatter"
	"github.com/andywolf/handoff/internal/plugin"
)

func commandChecks() []Check {
	return []Check{
		{
			ID:          "commands.dir",
			Description: "commands directory exists",
			Severity:    SeverityError,
			Run:         commandsDir,
		},
		{
			ID:          "command.exists",
			Description: "command document exists",
			Severity:    SeverityError,
			Run:         commandExists,
		},
		{
			ID:          "command.frontmatter",
			Description: "command document has frontmatter with a description",
			Severity:    SeverityError,
			Run:         commandFrontmatter,
		},
		{
			ID:          "command.description",
			Description: "command description is meaningful",
			Severity:    SeverityError,
			Run:         commandDescription,
		},
		{
			ID:          "command.argument-hint",
			Description: "argument hint is not empty when declared",
			Severity:    SeverityError,
			Run:         commandArgumentHint,
		},
		{
			ID:          "command.allowed-tools",
			Description: "allowed tools are declared as a list",
			Severity:    SeverityError,
			Run:         commandAllowedTools,
		},
		{
			ID:          "command.instructions",
			Description: "command describes a workflow and context extraction",
			Severity:    SeverityError,
			Run:         commandInstructions,
		},
		{
			ID:          "command.markdown",
			Description: "command document is structured markdown",
			Severity:    SeverityError,
			Run:         commandMarkdown,
		},
	}
}

func commandsDir(b *plugin.Bundle, _ Options) []string {
	exists, isDir, err := b.Stat(command.Dir)
	switch {
	case err != nil:
		return problems(fmt.Sprintf("cannot stat %s: %v", command.Dir, err))
	case !exists:
		return problems("commands directory not found")
	case !isDir:
		return problems("commands should be a directory")
	}
	return nil
}

func commandExists(b *plugin.Bundle, opts Options) []string {
	p := plugin.CommandPath(opts.CommandName)
	exists, isDir, err := b.Stat(p)
	switch {
	case err != nil:
		return problems(fmt.Sprintf("cannot stat %s: %v", p, err))
	case !exists:
		return problems(fmt.Sprintf("%s.md command not found", opts.CommandName))
	case isDir:
		return problems(fmt.Sprintf("%s.md should be a file", opts.CommandName))
	}
	return nil
}

// readCommand returns the raw command document, or "" with ok=false when it
// is missing (reported by command.exists).
func readCommand(b *plugin.Bundle, opts Options) (string, bool) {
	content, err := b.ReadFile(plugin.CommandPath(opts.CommandName))
	if err != nil {
		return "", false
	}
	return content, true
}

func commandFrontmatter(b *plugin.Bundle, opts Options) []string {
	content, ok := readCommand(b, opts)
	if !ok {
		return nil
	}

	doc, err := frontmatter.Split(content)
	if err != nil {
		return problems(err.Error())
	}

	var out []string
	if !strings.Contains(doc.Header, command.KeyDescription+":") {
		out = append(out, "frontmatter should have a description")
	}
	if !containsFold(doc.Header, "handoff", "context") {
		out = append(out, "frontmatter should mention handoff or context")
	}
	return out
}

// commandDoc returns the parsed command, or nil when it is missing or has no
// frontmatter (reported by other checks).
func commandDoc(b *plugin.Bundle, opts Options) *command.Command {
	cmd, ok := b.Command(opts.CommandName)
	if !ok {
		return nil
	}
	return cmd
}

func commandDescription(b *plugin.Bundle, opts Options) []string {
	cmd := commandDoc(b, opts)
	if cmd == nil || !cmd.Fields.Has(command.KeyDescription) {
		return nil
	}

	desc := cmd.Meta.Description
	var out []string
	if utf8.RuneCountInString(desc) <= 10 {
		out = append(out, fmt.Sprintf("description too short: %q", desc))
	}
	if !containsFold(desc, "context", "handoff") {
		out = append(out, "description should mention context or handoff")
	}
	return out
}

func commandArgumentHint(b *plugin.Bundle, opts Options) []string {
	cmd := commandDoc(b, opts)
	if cmd == nil || !cmd.Fields.Has(command.KeyArgumentHint) {
		return nil
	}
	if cmd.Meta.ArgumentHint == "" {
		return problems("argument hint should not be empty")
	}
	return nil
}

func commandAllowedTools(b *plugin.Bundle, opts Options) []string {
	cmd := commandDoc(b, opts)
	if cmd == nil || !cmd.Fields.Has(command.KeyAllowedTools) {
		return nil
	}
	if !cmd.Fields.IsList(command.KeyAllowedTools) {
		return problems(fmt.Sprintf("allowed-tools should be a list, got %q", cmd.Fields.Get(command.KeyAllowedTools)))
	}
	return nil
}

func commandInstructions(b *plugin.Bundle, opts Options) []string {
	content, ok := readCommand(b, opts)
	if !ok {
		return nil
	}

	var out []string
	if !containsFold(content, "workflow", "step") {
		out = append(out, "command should describe a workflow or steps")
	}
	if !containsFold(content, "extract", "context") {
		out = append(out, "command should mention context extraction")
	}
	return out
}

func commandMarkdown(b *plugin.Bundle, opts Options) []string {
	content, ok := readCommand(b, opts)
	if !ok {
		return nil
	}

	var out []string
	if !strings.Contains(content, "#") {
		out = append(out, "command should have markdown headers")
	}
	if !strings.Contains(content, "```") && !strings.Contains(content, "-") && !strings.Contains(content, "*") {
		out = append(out, "command should have structured content")
	}
	return out
}
