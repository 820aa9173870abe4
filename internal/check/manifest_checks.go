package check

import (
	"fmt"

	"github.com/andywolf/handoff/internal/manifest"
	"github.com/andywolf/handoff/internal/plugin"
)

func manifestChecks() []Check {
	return []Check{
		{
			ID:          "manifest.exists",
			Description: "plugin.json exists in .claude-plugin",
			Severity:    SeverityError,
			Run:         manifestExists,
		},
		{
			ID:          "manifest.json",
			Description: "plugin.json is a JSON object",
			Severity:    SeverityError,
			Run:         manifestJSON,
		},
		{
			ID:          "manifest.fields",
			Description: "plugin.json has name, displayName, description and version",
			Severity:    SeverityError,
			Run:         manifestCode(manifest.CodeMissing),
		},
		{
			ID:          "manifest.name",
			Description: "plugin name matches the expected name",
			Severity:    SeverityError,
			Run:         manifestCode(manifest.CodeName),
		},
		{
			ID:          "manifest.version",
			Description: "version follows semantic versioning",
			Severity:    SeverityError,
			Run:         manifestCode(manifest.CodeVersion),
		},
		{
			ID:          "manifest.description",
			Description: "description mentions context",
			Severity:    SeverityWarning,
			Run:         manifestDescription,
		},
		{
			ID:          "manifest.only-file",
			Description: ".claude-plugin contains only plugin.json",
			Severity:    SeverityError,
			Run:         manifestOnlyFile,
		},
	}
}

func manifestExists(b *plugin.Bundle, _ Options) []string {
	exists, isDir, err := b.Stat(manifest.Path)
	switch {
	case err != nil:
		return problems(fmt.Sprintf("cannot stat %s: %v", manifest.Path, err))
	case !exists:
		return problems("plugin.json not found")
	case isDir:
		return problems("plugin.json is not a file")
	}
	return nil
}

// manifestJSON fails only when the file exists but does not parse; a missing
// file is reported by manifest.exists.
func manifestJSON(b *plugin.Bundle, _ Options) []string {
	if b.Manifest != nil {
		return nil
	}
	if exists, _, _ := b.Stat(manifest.Path); !exists {
		return nil
	}
	return problems(fmt.Sprintf("plugin.json is invalid: %v", b.ManifestErr))
}

func manifestCode(code string) Func {
	return func(b *plugin.Bundle, opts Options) []string {
		if b.Manifest == nil {
			return nil
		}
		var out []string
		for _, e := range b.Manifest.Validate(opts.PluginName).ErrorsWithCode(code) {
			out = append(out, fmt.Sprintf("%s: %s", e.Field, e.Message))
		}
		return out
	}
}

func manifestDescription(b *plugin.Bundle, opts Options) []string {
	if b.Manifest == nil {
		return nil
	}
	return b.Manifest.Validate(opts.PluginName).Warnings
}

func manifestOnlyFile(b *plugin.Bundle, _ Options) []string {
	entries, err := b.MetadataEntries()
	if err != nil {
		return problems(fmt.Sprintf("cannot list %s: %v", manifest.Dir, err))
	}
	if len(entries) != 1 {
		return problems(fmt.Sprintf("%s should only contain %s, found %v", manifest.Dir, manifest.Filename, entries))
	}
	if entries[0] != manifest.Filename {
		return problems(fmt.Sprintf("only file should be %s, found %s", manifest.Filename, entries[0]))
	}
	return nil
}
