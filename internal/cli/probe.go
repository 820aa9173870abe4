package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/andywolf/handoff/internal/agent/claudecode"
	"github.com/andywolf/handoff/internal/cloud/gcp"
	"github.com/andywolf/handoff/internal/config"
	"github.com/andywolf/handoff/internal/events"
	"github.com/andywolf/handoff/internal/probe"
	"github.com/andywolf/handoff/internal/security"
)

var probeCmd = &cobra.Command{
	Use:   "probe [plugin-dir]",
	Short: "Drive Claude Code sessions through the handoff command",
	Long: `Run behavioral probes: each scenario sends prompts to a fresh Claude Code
session with the plugin loaded and checks the response.

An API key is read from ANTHROPIC_API_KEY, then CLAUDE_API_KEY, then the GCP
Secret Manager secret named by probe.api_key_secret. Without a key or
without the claude binary every scenario is skipped.

Keyword and length expectations only warn unless --strict is set.

Examples:
  handoffctl probe
  handoffctl probe --scenario 'handoff-*' --strict
  handoffctl probe ./plugins/handoff --transcript-dir .probe-logs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().String("scenario", "", "Run only scenarios matching these comma-separated glob patterns")
	probeCmd.Flags().String("scenario-file", "", "YAML file replacing the default scenarios")
	probeCmd.Flags().Bool("strict", false, "Fail scenarios on advisory expectations")
	probeCmd.Flags().Int("parallel", 0, "Scenarios to run at once")
	probeCmd.Flags().String("model", "", "Model passed to claude")
	probeCmd.Flags().String("transcript-dir", "", "Append session transcripts to DIR/transcript.jsonl")
	probeCmd.Flags().Bool("keep-workdirs", false, "Keep scenario working directories")
	probeCmd.Flags().Bool("json", false, "Write the report as JSON")
	probeCmd.Flags().Bool("list", false, "List scenarios and exit")

	_ = viper.BindPFlag("probe.scenario_file", probeCmd.Flags().Lookup("scenario-file"))
	_ = viper.BindPFlag("probe.strict", probeCmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("probe.parallelism", probeCmd.Flags().Lookup("parallel"))
	_ = viper.BindPFlag("probe.model", probeCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("probe.transcript_dir", probeCmd.Flags().Lookup("transcript-dir"))
	_ = viper.BindPFlag("probe.keep_workdirs", probeCmd.Flags().Lookup("keep-workdirs"))
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	pc := appConfig.Probe

	scenarios, err := loadScenarios(pc, appConfig.Plugin.Command)
	if err != nil {
		return err
	}
	patterns, _ := cmd.Flags().GetString("scenario")
	scenarios, err = probe.Select(scenarios, config.SplitList(patterns)...)
	if err != nil {
		return err
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, s := range scenarios {
			fmt.Fprintf(out, "%-26s %s\n", s.Name, s.Description)
		}
		return nil
	}

	timeout, err := pc.TimeoutDuration()
	if err != nil {
		return err
	}

	resolver := probe.CredentialResolver{
		SecretPath: pc.APIKeySecret,
		NewFetcher: func(ctx context.Context) (gcp.SecretFetcher, error) {
			return gcp.NewSecretManagerClient(ctx, pc.GCPProject, option.WithUserAgent("handoffctl"))
		},
	}
	cred, skipReason, err := probe.Preflight(ctx, pc.Binary, resolver)
	if err != nil {
		return err
	}

	dir := pluginDir(args)
	pluginPath, cleanup, err := materialize(dir)
	if err != nil {
		return err
	}
	defer cleanup()

	scrubber := security.NewScrubber(cred.APIKey)
	sink, err := openSink(pc.TranscriptDir, scrubber)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn("failed to close transcript", zap.Error(err))
		}
	}()

	client := claudecode.NewClient(claudecode.WithLogger(logger.Named("claudecode")))
	runner := probe.NewRunner(client, probe.Options{
		PluginDir: pluginPath,
		Claude: claudecode.Options{
			Binary:         pc.Binary,
			PermissionMode: pc.PermissionMode,
			AllowedTools:   pc.AllowedTools,
			SettingSources: pc.SettingSources,
			Model:          pc.Model,
			MaxTurns:       pc.MaxTurns,
			Env:            cred.Env(),
		},
		Parallelism:  pc.Parallelism,
		Timeout:      timeout,
		Strict:       pc.Strict,
		KeepWorkdirs: pc.KeepWorkdirs,
	}, probe.WithSink(sink), probe.WithLogger(logger.Named("probe")))

	var report *probe.Report
	if skipReason != "" {
		logger.Warn("skipping probes", zap.String("reason", skipReason))
		report = runner.Skip(scenarios, skipReason)
	} else {
		logger.Info("running probes",
			zap.String("run_id", runner.RunID()),
			zap.String("plugin", pluginPath),
			zap.String("credential", cred.Source),
			zap.Int("scenarios", len(scenarios)))
		report = runner.Run(ctx, scenarios)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		err = report.WriteJSON(out)
	} else {
		err = report.WriteText(out, verbose)
	}
	if err != nil {
		return err
	}

	if report.Failed() {
		return fmt.Errorf("%w: %d scenarios failed", ErrChecksFailed, report.Count(probe.StatusFailed))
	}
	return nil
}

// loadScenarios returns the scenario file's scenarios, or the defaults.
func loadScenarios(pc config.ProbeConfig, command string) ([]probe.Scenario, error) {
	if pc.ScenarioFile == "" {
		return probe.DefaultScenarios(command), nil
	}
	return probe.LoadScenarios(pc.ScenarioFile)
}

func openSink(dir string, redactor events.Redactor) (events.Sink, error) {
	if dir == "" {
		return events.NopSink{}, nil
	}
	sink, err := events.NewFileSink(dir, redactor)
	if err != nil {
		return nil, err
	}
	logger.Info("recording transcripts", zap.String("path", sink.Path()))
	return sink, nil
}
