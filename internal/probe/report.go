package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Status is the outcome of one scenario.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusWarned  Status = "warned" // advisory expectations missed
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      Status        `json:"status"`
	SessionID   string        `json:"session_id,omitempty"`
	Findings    []Finding     `json:"findings,omitempty"`
	MemoryFiles []string      `json:"memory_files,omitempty"`
	Workdir     string        `json:"workdir,omitempty"` // set when workdirs are kept
	Error       string        `json:"error,omitempty"`
	SkipReason  string        `json:"skip_reason,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// statusFor derives a scenario status from its findings.
func statusFor(findings []Finding, strict bool) Status {
	status := StatusPassed
	for _, f := range findings {
		if f.Passed {
			continue
		}
		if f.Hard || strict {
			return StatusFailed
		}
		status = StatusWarned
	}
	return status
}

// Report collects the results of one probe run.
type Report struct {
	RunID   string           `json:"run_id"`
	Results []ScenarioResult `json:"results"`
}

// Failed reports whether any scenario failed.
func (r *Report) Failed() bool {
	return r.Count(StatusFailed) > 0
}

// Count returns the number of scenarios with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Result returns the result for a scenario name.
func (r *Report) Result(name string) (ScenarioResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return ScenarioResult{}, false
}

// WriteText writes a human-readable report. Passing findings are listed only
// when verbose is set.
func (r *Report) WriteText(w io.Writer, verbose bool) error {
	for _, res := range r.Results {
		label := map[Status]string{
			StatusPassed:  "PASS",
			StatusWarned:  "WARN",
			StatusFailed:  "FAIL",
			StatusSkipped: "SKIP",
		}[res.Status]

		if _, err := fmt.Fprintf(w, "%s  %-26s %s\n", label, res.Name, res.Duration.Round(time.Millisecond)); err != nil {
			return err
		}

		switch {
		case res.SkipReason != "":
			if _, err := fmt.Fprintf(w, "      - %s\n", res.SkipReason); err != nil {
				return err
			}
		case res.Error != "":
			if _, err := fmt.Fprintf(w, "      - %s\n", res.Error); err != nil {
				return err
			}
		}

		for _, f := range res.Findings {
			if f.Passed && !verbose {
				continue
			}
			mark := "ok"
			if !f.Passed {
				mark = "missed"
			}
			line := fmt.Sprintf("      - %s %s", f.Expectation, mark)
			if f.Detail != "" {
				line += ": " + f.Detail
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "\n%d scenarios: %d passed, %d warned, %d failed, %d skipped\n",
		len(r.Results), r.Count(StatusPassed), r.Count(StatusWarned), r.Count(StatusFailed), r.Count(StatusSkipped))
	return err
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
