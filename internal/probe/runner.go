// Package probe drives the handoff command through real Claude Code sessions
// and checks what comes back.
//
// Each scenario gets its own temporary working directory. Steps run as
// separate sessions in that directory and only the last step's response is
// evaluated. Hard expectations (a session exists, output is non-empty) fail
// a scenario; keyword and length expectations only warn unless the run is
// strict, since model output varies between runs.
package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andywolf/handoff/internal/agent/claudecode"
	"github.com/andywolf/handoff/internal/events"
)

// MemoryFileGlob matches memory files written by the command, relative to
// the session's working directory.
const MemoryFileGlob = ".claude/handoff-memory*.md"

// Querier starts Claude Code sessions. *claudecode.Client implements it.
type Querier interface {
	Query(ctx context.Context, prompt string, opts claudecode.Options) (<-chan claudecode.Message, <-chan error)
}

// Options configure a probe run.
type Options struct {
	// PluginDir is passed to every session with --plugin-dir.
	PluginDir string

	// Claude holds the base session options. Cwd and PluginDirs are set per
	// scenario.
	Claude claudecode.Options

	Parallelism  int
	Timeout      time.Duration // per scenario, zero for none
	Strict       bool
	KeepWorkdirs bool
	WorkRoot     string // parent of scenario directories, os.TempDir() if empty
}

// Runner executes scenarios.
type Runner struct {
	querier Querier
	opts    Options
	sink    events.Sink
	logger  *zap.Logger
	runID   string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSink records every session message to sink.
func WithSink(sink events.Sink) RunnerOption {
	return func(r *Runner) {
		r.sink = sink
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) RunnerOption {
	return func(r *Runner) {
		r.runID = id
	}
}

// NewRunner creates a Runner.
func NewRunner(q Querier, opts Options, options ...RunnerOption) *Runner {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	r := &Runner{
		querier: q,
		opts:    opts,
		sink:    events.NopSink{},
		logger:  zap.NewNop(),
		runID:   uuid.New().String(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// RunID identifies this run in transcripts and reports.
func (r *Runner) RunID() string {
	return r.runID
}

// Skip reports every scenario as skipped with reason.
func (r *Runner) Skip(scenarios []Scenario, reason string) *Report {
	report := &Report{RunID: r.runID, Results: make([]ScenarioResult, len(scenarios))}
	for i, s := range scenarios {
		report.Results[i] = ScenarioResult{
			Name:        s.Name,
			Description: s.Description,
			Status:      StatusSkipped,
			SkipReason:  reason,
		}
	}
	r.logger.Info("probes skipped", zap.String("reason", reason), zap.Int("scenarios", len(scenarios)))
	return report
}

// Run executes scenarios with bounded parallelism. Results keep the input
// order. A failing scenario does not stop the others.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *Report {
	report := &Report{RunID: r.runID, Results: make([]ScenarioResult, len(scenarios))}

	var g errgroup.Group
	g.SetLimit(r.opts.Parallelism)

	for i, s := range scenarios {
		g.Go(func() error {
			report.Results[i] = r.runScenario(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func (r *Runner) runScenario(ctx context.Context, s Scenario) ScenarioResult {
	start := time.Now()
	res := ScenarioResult{Name: s.Name, Description: s.Description}
	logger := r.logger.With(zap.String("scenario", s.Name))

	defer func() {
		res.Duration = time.Since(start)
		logger.Info("scenario finished",
			zap.String("status", string(res.Status)),
			zap.Duration("duration", res.Duration))
	}()

	workdir, err := os.MkdirTemp(r.opts.WorkRoot, "handoff-probe-"+s.Name+"-")
	if err != nil {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("failed to create working directory: %v", err)
		return res
	}
	if r.opts.KeepWorkdirs {
		res.Workdir = workdir
	} else {
		defer func() { _ = os.RemoveAll(workdir) }()
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var last *claudecode.Response
	for i, step := range s.Steps {
		logger.Debug("sending prompt", zap.Int("step", i+1), zap.String("prompt", step.Prompt))

		resp, err := r.runStep(ctx, s.Name, i+1, step, workdir)
		if err != nil {
			res.Status = StatusFailed
			res.Error = fmt.Sprintf("step %d: %v", i+1, err)
			if resp != nil {
				res.SessionID = resp.SessionID()
			}
			return res
		}
		last = resp
	}

	obs := Observation{
		SessionID:     last.SessionID(),
		Text:          last.Text(),
		SlashCommands: last.SlashCommands,
		MemoryFiles:   findMemoryFiles(workdir),
	}

	res.SessionID = obs.SessionID
	res.MemoryFiles = obs.MemoryFiles
	res.Findings = s.Expect.Evaluate(obs)
	res.Status = statusFor(res.Findings, r.opts.Strict)
	return res
}

// runStep runs one prompt as its own session and records its transcript.
func (r *Runner) runStep(ctx context.Context, scenario string, step int, st Step, workdir string) (*claudecode.Response, error) {
	opts := r.opts.Claude
	opts.Cwd = workdir
	if r.opts.PluginDir != "" {
		opts.PluginDirs = []string{r.opts.PluginDir}
	}

	params := events.ConvertParams{RunID: r.runID, Scenario: scenario, Step: step}

	msgs, errs := r.querier.Query(ctx, st.Prompt, opts)

	tee := make(chan claudecode.Message)
	go func() {
		defer close(tee)
		for msg := range msgs {
			r.record(events.FromMessage(msg, params))
			tee <- msg
		}
	}()

	resp, err := claudecode.Collect(tee, errs)
	if err != nil {
		r.record([]events.TranscriptEvent{events.NewError(params, err)})
	}
	return resp, err
}

func (r *Runner) record(evs []events.TranscriptEvent) {
	if len(evs) == 0 {
		return
	}
	if err := r.sink.Write(evs); err != nil {
		r.logger.Warn("failed to write transcript events", zap.Error(err))
	}
}

// findMemoryFiles lists memory files under dir, relative to dir.
func findMemoryFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, filepath.FromSlash(MemoryFileGlob)))
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(dir, m)
		if err != nil {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}
