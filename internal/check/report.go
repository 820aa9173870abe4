package check

import (
	"encoding/json"
	"fmt"
	"io"
)

// Report collects the results of one run.
type Report struct {
	Plugin  string   `json:"plugin,omitempty"`
	Results []Result `json:"results"`
}

// Failed reports whether any error-severity check failed.
func (r *Report) Failed() bool {
	return len(r.Errors()) > 0
}

// Errors returns the failed error-severity results.
func (r *Report) Errors() []Result {
	return r.failed(SeverityError)
}

// Warnings returns the failed warning-severity results.
func (r *Report) Warnings() []Result {
	return r.failed(SeverityWarning)
}

func (r *Report) failed(sev Severity) []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed && res.Severity == sev {
			out = append(out, res)
		}
	}
	return out
}

// Result returns the result for a check ID.
func (r *Report) Result(id string) (Result, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return Result{}, false
}

// WriteText writes a human-readable report. Passing checks are listed only
// when verbose is set.
func (r *Report) WriteText(w io.Writer, verbose bool) error {
	passed := 0
	for _, res := range r.Results {
		if res.Passed {
			passed++
			if verbose {
				if _, err := fmt.Fprintf(w, "PASS  %-24s %s\n", res.ID, res.Description); err != nil {
					return err
				}
			}
			continue
		}

		label := "FAIL"
		if res.Severity == SeverityWarning {
			label = "WARN"
		}
		if _, err := fmt.Fprintf(w, "%s  %-24s %s\n", label, res.ID, res.Description); err != nil {
			return err
		}
		for _, p := range res.Problems {
			if _, err := fmt.Fprintf(w, "      - %s\n", p); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "\n%d/%d checks passed (%d errors, %d warnings)\n",
		passed, len(r.Results), len(r.Errors()), len(r.Warnings()))
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
