package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andywolf/handoff/internal/config"
	"github.com/andywolf/handoff/internal/events"
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript [file]",
	Short: "Show events recorded by probe runs",
	Long: `Print a probe transcript. Without a file, transcript.jsonl in the
configured probe.transcript_dir is read.

Examples:
  handoffctl transcript .probe-logs/transcript.jsonl
  handoffctl transcript --scenario handoff-goal --type text,error
  handoffctl transcript --run 3f2c... --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)

	transcriptCmd.Flags().String("scenario", "", "Only show events from this scenario")
	transcriptCmd.Flags().String("type", "", "Only show these comma-separated event types")
	transcriptCmd.Flags().String("run", "", "Only show events from this run ID")
	transcriptCmd.Flags().Bool("json", false, "Write matching events as JSONL")
}

func runTranscript(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else if dir := appConfig.Probe.TranscriptDir; dir != "" {
		path = filepath.Join(dir, events.DefaultFilename)
	} else {
		return fmt.Errorf("no transcript file given and probe.transcript_dir is not set")
	}

	typeFlag, _ := cmd.Flags().GetString("type")
	var types []events.EventType
	for _, t := range config.SplitList(typeFlag) {
		if !events.IsValidEventType(t) {
			return fmt.Errorf("unknown event type %q (valid: %s)", t, eventTypeNames())
		}
		types = append(types, events.EventType(t))
	}

	evs, err := events.ReadEvents(path)
	if err != nil {
		return err
	}

	scenario, _ := cmd.Flags().GetString("scenario")
	evs = events.FilterByType(events.FilterByScenario(evs, scenario), types...)
	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		var filtered []events.TranscriptEvent
		for _, e := range evs {
			if e.RunID == runID {
				filtered = append(filtered, e)
			}
		}
		evs = filtered
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		for _, e := range evs {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	for _, e := range evs {
		text := e.Summary
		if text == "" {
			text = e.Content
		}
		if e.ToolName != "" {
			text = e.ToolName + " " + text
		}
		fmt.Fprintf(out, "%s %s#%d %-11s %s\n",
			e.Timestamp.Format("15:04:05"), e.Scenario, e.Step, e.Type, oneLine(text))
	}
	fmt.Fprintf(out, "%d events\n", len(evs))
	return nil
}

func eventTypeNames() string {
	var names []string
	for _, t := range events.ValidEventTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > 120 {
		return string(r[:117]) + "..."
	}
	return s
}
