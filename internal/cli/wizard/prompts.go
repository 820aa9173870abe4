// Package wizard provides interactive prompts for CLI commands.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/andywolf/handoff/internal/config"
)

// Settings are the values collected by the init wizard.
type Settings struct {
	PluginDir      string
	Model          string
	PermissionMode string
	AllowedTools   []string
	APIKeySecret   string
	TranscriptDir  string
	Strict         bool
}

// PermissionModes are the choices offered for probe sessions.
var PermissionModes = []string{"bypassPermissions", "acceptEdits", "default", "plan"}

// PromptSettings asks for each setting, starting from defaults.
func PromptSettings(defaults Settings) (*Settings, error) {
	s := defaults
	tools := strings.Join(s.AllowedTools, ", ")

	modeOptions := make([]huh.Option[string], 0, len(PermissionModes))
	for _, m := range PermissionModes {
		modeOptions = append(modeOptions, huh.NewOption(m, m))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Plugin directory").
				Description("Leave empty to use the plugin embedded in handoffctl").
				Value(&s.PluginDir),

			huh.NewInput().
				Title("Model (optional)").
				Value(&s.Model),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Permission mode for probe sessions").
				Options(modeOptions...).
				Value(&s.PermissionMode),

			huh.NewInput().
				Title("Allowed tools (comma-separated)").
				Value(&tools).
				Validate(func(v string) error {
					if len(config.SplitList(v)) == 0 {
						return fmt.Errorf("at least one tool is required")
					}
					return nil
				}),

			huh.NewConfirm().
				Title("Fail probes on keyword expectations?").
				Value(&s.Strict),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API key secret in GCP Secret Manager (optional)").
				Description("Used when ANTHROPIC_API_KEY and CLAUDE_API_KEY are unset").
				Value(&s.APIKeySecret),

			huh.NewInput().
				Title("Transcript directory (optional)").
				Value(&s.TranscriptDir),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt cancelled: %w", err)
	}

	s.AllowedTools = config.SplitList(tools)
	s.PluginDir = strings.TrimSpace(s.PluginDir)
	s.APIKeySecret = strings.TrimSpace(s.APIKeySecret)
	return &s, nil
}

// ConfirmOverwrite asks before replacing an existing config file.
func ConfirmOverwrite(path string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Existing configuration found").
				Description(path),

			huh.NewConfirm().
				Title("Overwrite it?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
