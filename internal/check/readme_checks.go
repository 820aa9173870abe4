package check

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/andywolf/handoff/internal/plugin"
)

func readmeChecks() []Check {
	return []Check{
		{
			ID:          "readme.exists",
			Description: "README.md exists",
			Severity:    SeverityError,
			Run:         readmeExists,
		},
		{
			ID:          "readme.install",
			Description: "README explains installation",
			Severity:    SeverityError,
			Run:         readmeInstall,
		},
		{
			ID:          "readme.usage",
			Description: "README has usage examples for the command",
			Severity:    SeverityError,
			Run:         readmeUsage,
		},
		{
			ID:          "readme.documentation",
			Description: "README documents context extraction in depth",
			Severity:    SeverityError,
			Run:         readmeDocumentation,
		},
	}
}

func readmeExists(b *plugin.Bundle, _ Options) []string {
	exists, isDir, err := b.Stat(plugin.ReadmeFile)
	switch {
	case err != nil:
		return problems(fmt.Sprintf("cannot stat %s: %v", plugin.ReadmeFile, err))
	case !exists:
		return problems("README.md not found")
	case isDir:
		return problems("README.md should be a file")
	}
	return nil
}

func readmeInstall(b *plugin.Bundle, _ Options) []string {
	if b.ReadmeErr != nil {
		return nil
	}
	if !containsFold(b.Readme, "install") {
		return problems("README should have an installation section")
	}
	return nil
}

func readmeUsage(b *plugin.Bundle, opts Options) []string {
	if b.ReadmeErr != nil {
		return nil
	}

	var out []string
	if !containsFold(b.Readme, "usage", "example") {
		out = append(out, "README should have a usage or examples section")
	}
	// Slash triggers are case-sensitive.
	if trigger := "/" + opts.CommandName; !strings.Contains(b.Readme, trigger) {
		out = append(out, fmt.Sprintf("README should mention the %s command", trigger))
	}
	return out
}

func readmeDocumentation(b *plugin.Bundle, opts Options) []string {
	if b.ReadmeErr != nil {
		return nil
	}

	var out []string
	if !containsFold(b.Readme, "context") {
		out = append(out, "README should explain context management")
	}
	if !containsFold(b.Readme, "extract") {
		out = append(out, "README should mention extraction")
	}
	if n := utf8.RuneCountInString(b.Readme); n <= opts.MinReadmeLength {
		out = append(out, fmt.Sprintf("README should be longer than %d characters, got %d", opts.MinReadmeLength, n))
	}
	return out
}
