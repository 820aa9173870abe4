package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/handoff/internal/cli/wizard"
)

// ConfigFilename is the config file init writes and the root command reads.
const ConfigFilename = ".handoffctl.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize project configuration",
	Long: `Create a .handoffctl.yaml file with sensible defaults that you can customize.

Example:
  handoffctl init
  handoffctl init --plugin-dir plugins/handoff --api-key-secret anthropic-api-key
  handoffctl init --interactive`,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("plugin-dir", "", "Plugin directory (empty uses the embedded plugin)")
	initCmd.Flags().String("model", "", "Model for probe sessions")
	initCmd.Flags().String("api-key-secret", "", "GCP Secret Manager secret holding the API key")
	initCmd.Flags().String("transcript-dir", "", "Directory for probe transcripts")
	initCmd.Flags().Bool("strict", false, "Fail probes on keyword expectations")
	initCmd.Flags().BoolP("interactive", "i", false, "Prompt for each setting")
	initCmd.Flags().Bool("force", false, "Overwrite existing config")
}

type projectConfig struct {
	Plugin struct {
		Dir             string `yaml:"dir,omitempty"`
		Name            string `yaml:"name"`
		Command         string `yaml:"command"`
		MinReadmeLength int    `yaml:"min_readme_length"`
	} `yaml:"plugin"`
	Probe struct {
		Model          string   `yaml:"model,omitempty"`
		PermissionMode string   `yaml:"permission_mode"`
		AllowedTools   []string `yaml:"allowed_tools"`
		Timeout        string   `yaml:"timeout"`
		Parallelism    int      `yaml:"parallelism"`
		Strict         bool     `yaml:"strict"`
		APIKeySecret   string   `yaml:"api_key_secret,omitempty"`
		TranscriptDir  string   `yaml:"transcript_dir,omitempty"`
	} `yaml:"probe"`
}

func initProject(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configPath := filepath.Join(".", ConfigFilename)

	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if _, err := os.Stat(configPath); err == nil && !force {
		if !interactive {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
		}
		ok, err := wizard.ConfirmOverwrite(configPath)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Keeping existing configuration.")
			return nil
		}
	}

	settings := wizard.Settings{
		PermissionMode: appConfig.Probe.PermissionMode,
		AllowedTools:   appConfig.Probe.AllowedTools,
	}
	settings.PluginDir, _ = cmd.Flags().GetString("plugin-dir")
	settings.Model, _ = cmd.Flags().GetString("model")
	settings.APIKeySecret, _ = cmd.Flags().GetString("api-key-secret")
	settings.TranscriptDir, _ = cmd.Flags().GetString("transcript-dir")
	settings.Strict, _ = cmd.Flags().GetBool("strict")

	if interactive {
		s, err := wizard.PromptSettings(settings)
		if err != nil {
			return err
		}
		settings = *s
	}

	cfg := projectConfig{}
	cfg.Plugin.Dir = settings.PluginDir
	cfg.Plugin.Name = appConfig.Plugin.Name
	cfg.Plugin.Command = appConfig.Plugin.Command
	cfg.Plugin.MinReadmeLength = appConfig.Plugin.MinReadmeLength
	cfg.Probe.Model = settings.Model
	cfg.Probe.PermissionMode = settings.PermissionMode
	cfg.Probe.AllowedTools = settings.AllowedTools
	cfg.Probe.Timeout = appConfig.Probe.Timeout
	cfg.Probe.Parallelism = appConfig.Probe.Parallelism
	cfg.Probe.Strict = settings.Strict
	cfg.Probe.APIKeySecret = settings.APIKeySecret
	cfg.Probe.TranscriptDir = settings.TranscriptDir

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# handoffctl configuration
# Every key can be overridden with HANDOFFCTL_<SECTION>_<KEY>, e.g. HANDOFFCTL_PROBE_STRICT=true

`

	if err := os.WriteFile(configPath, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n\n", configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Put ANTHROPIC_API_KEY in your environment or a .env file")
	fmt.Fprintln(out, "  2. Run 'handoffctl validate' to check the plugin structure")
	fmt.Fprintln(out, "  3. Run 'handoffctl probe' to exercise /handoff in Claude Code")

	return nil
}
