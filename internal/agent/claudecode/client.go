package claudecode

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
)

var errStopped = errors.New("consumer stopped")

// Client runs queries against the Claude Code CLI.
type Client struct {
	runner  Runner
	logger  *zap.Logger
	environ func() []string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRunner replaces the process runner.
func WithRunner(r Runner) ClientOption {
	return func(c *Client) {
		c.runner = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithEnviron replaces the base environment inherited by child processes.
func WithEnviron(fn func() []string) ClientOption {
	return func(c *Client) {
		c.environ = fn
	}
}

// NewClient creates a Client that runs the CLI with os/exec.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		runner:  ExecRunner{},
		logger:  zap.NewNop(),
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query sends prompt to a new session and streams the decoded messages.
// The message channel closes when the process output ends; the error channel
// then yields at most one error and closes. Cancelling ctx kills the process.
func (c *Client) Query(ctx context.Context, prompt string, opts Options) (<-chan Message, <-chan error) {
	msgCh := make(chan Message)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(msgCh)

		proc := Process{
			Path:  opts.binary(),
			Args:  opts.Args(),
			Dir:   opts.Cwd,
			Env:   opts.EnvList(c.environ()),
			Stdin: prompt,
		}

		c.logger.Debug("starting claude code session",
			zap.String("binary", proc.Path),
			zap.Strings("args", proc.Args),
			zap.String("cwd", proc.Dir))

		stdout, wait, err := c.runner.Start(ctx, proc)
		if err != nil {
			errCh <- err
			return
		}

		readErr := ReadStream(stdout, func(msg Message) error {
			select {
			case msgCh <- msg:
				return nil
			case <-ctx.Done():
				return errStopped
			}
		})
		_ = stdout.Close()
		waitErr := wait()

		switch {
		case ctx.Err() != nil:
			errCh <- fmt.Errorf("query cancelled: %w", ctx.Err())
		case readErr != nil && !errors.Is(readErr, errStopped):
			errCh <- readErr
		case waitErr != nil:
			errCh <- waitErr
		}
	}()

	return msgCh, errCh
}

// Run sends prompt and collects the whole session.
func (c *Client) Run(ctx context.Context, prompt string, opts Options) (*Response, error) {
	msgs, errs := c.Query(ctx, prompt, opts)
	return Collect(msgs, errs)
}
