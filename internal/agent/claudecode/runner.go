package claudecode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// ErrBinaryNotFound is returned when the Claude Code executable is missing.
var ErrBinaryNotFound = errors.New("claude code binary not found")

// Process describes one CLI invocation.
type Process struct {
	Path  string
	Args  []string
	Dir   string
	Env   []string
	Stdin string
}

// Runner starts a process and exposes its stdout. wait blocks until the
// process exits and must be called exactly once after stdout is drained.
type Runner interface {
	Start(ctx context.Context, p Process) (stdout io.ReadCloser, wait func() error, err error)
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// Start launches the process. Cancelling ctx kills it.
func (ExecRunner) Start(ctx context.Context, p Process) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Dir = p.Dir
	cmd.Env = p.Env
	cmd.Stdin = strings.NewReader(p.Stdin)

	stderr := &tailBuffer{max: 4096}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start %s: %w", p.Path, err)
	}

	wait := func() error {
		if err := cmd.Wait(); err != nil {
			if tail := strings.TrimSpace(stderr.String()); tail != "" {
				return fmt.Errorf("%s exited: %w: %s", p.Path, err, tail)
			}
			return fmt.Errorf("%s exited: %w", p.Path, err)
		}
		return nil
	}
	return stdout, wait, nil
}

// LookPath resolves binary on PATH.
func LookPath(binary string) (string, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, binary)
	}
	return path, nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}
