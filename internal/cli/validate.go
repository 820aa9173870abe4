package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andywolf/handoff/internal/check"
	"github.com/andywolf/handoff/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [plugin-dir]",
	Short: "Run structural checks against the plugin",
	Long: `Validate the plugin manifest, slash command document and README.

Without a directory the configured plugin.dir is used, falling back to the
plugin embedded in this binary. Warnings are reported but only errors make
the command fail.

Examples:
  handoffctl validate
  handoffctl validate plugins/handoff --only manifest,readme
  handoffctl validate ./my-plugin --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("json", false, "Write the report as JSON")
	validateCmd.Flags().String("only", "", "Run only checks whose ID matches these comma-separated prefixes")
	validateCmd.Flags().Bool("all", false, "List passing checks too")
	validateCmd.Flags().Bool("list", false, "List available checks and exit")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, c := range check.Default() {
			fmt.Fprintf(out, "%-24s %-8s %s\n", c.ID, c.Severity, c.Description)
		}
		return nil
	}

	onlyFlag, _ := cmd.Flags().GetString("only")
	only := config.SplitList(onlyFlag)
	checks := check.Select(check.Default(), only...)
	if len(checks) == 0 {
		return fmt.Errorf("no checks match %s", strings.Join(only, ", "))
	}

	b, source, err := openBundle(pluginDir(args))
	if err != nil {
		return err
	}

	opts := check.Options{
		PluginName:      appConfig.Plugin.Name,
		CommandName:     appConfig.Plugin.Command,
		MinReadmeLength: appConfig.Plugin.MinReadmeLength,
	}
	report := check.Run(b, opts, checks...)
	report.Plugin = source

	logger.Debug("structural checks finished",
		zap.String("plugin", source),
		zap.Int("checks", len(report.Results)),
		zap.Int("errors", len(report.Errors())),
		zap.Int("warnings", len(report.Warnings())))

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		err = report.WriteJSON(out)
	} else {
		all, _ := cmd.Flags().GetBool("all")
		err = report.WriteText(out, all || verbose)
	}
	if err != nil {
		return err
	}

	if report.Failed() {
		return fmt.Errorf("%w: %d structural errors", ErrChecksFailed, len(report.Errors()))
	}
	return nil
}
