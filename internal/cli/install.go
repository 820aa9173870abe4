package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andywolf/handoff/internal/check"
	"github.com/andywolf/handoff/internal/plugin"
	"github.com/andywolf/handoff/plugins/handoff"
)

var installCmd = &cobra.Command{
	Use:   "install <dir>",
	Short: "Write the embedded plugin to a directory",
	Long: `Install the handoff plugin embedded in this binary into DIR, then
validate the result.

Existing files are kept unless --force is given.

Example:
  handoffctl install ~/.claude/plugins/handoff`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().Bool("force", false, "Overwrite existing files")
}

func runInstall(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dest := args[0]
	force, _ := cmd.Flags().GetBool("force")

	written, err := handoff.Install(dest, force)
	if err != nil {
		return err
	}
	logger.Info("plugin installed", zap.String("dir", dest), zap.Strings("files", written))

	for _, f := range written {
		fmt.Fprintf(out, "wrote %s\n", f)
	}
	if len(written) == 0 {
		fmt.Fprintln(out, "all files already present (use --force to overwrite)")
	}

	b, err := plugin.OpenDir(dest)
	if err != nil {
		return err
	}
	report := check.Run(b, check.Options{
		PluginName:      appConfig.Plugin.Name,
		CommandName:     appConfig.Plugin.Command,
		MinReadmeLength: appConfig.Plugin.MinReadmeLength,
	})
	if report.Failed() {
		if err := report.WriteText(out, false); err != nil {
			return err
		}
		return fmt.Errorf("%w: installed plugin in %s is invalid", ErrChecksFailed, dest)
	}

	fmt.Fprintf(out, "installed %s plugin in %s\n", handoff.Name, dest)
	return nil
}
