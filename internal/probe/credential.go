package probe

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/andywolf/handoff/internal/agent/claudecode"
	"github.com/andywolf/handoff/internal/cloud/gcp"
)

// Environment variables consulted for credentials and CI detection.
const (
	EnvAPIKey        = "ANTHROPIC_API_KEY"
	EnvAltAPIKey     = "CLAUDE_API_KEY"
	EnvGitHubActions = "GITHUB_ACTIONS"
)

// ErrMissingCredential is returned when no Anthropic API key can be found.
var ErrMissingCredential = errors.New("no Anthropic API key configured")

// Credential is the API key handed to probe sessions.
type Credential struct {
	APIKey string
	Source string
}

// Env returns the child environment entries carrying the key. The key is
// always exported as ANTHROPIC_API_KEY, whatever its source.
func (c Credential) Env() map[string]string {
	if c.APIKey == "" {
		return nil
	}
	return map[string]string{EnvAPIKey: c.APIKey}
}

// CredentialResolver looks up the API key: ANTHROPIC_API_KEY, then
// CLAUDE_API_KEY, then SecretPath in GCP Secret Manager.
type CredentialResolver struct {
	Getenv     func(string) string
	SecretPath string
	NewFetcher func(ctx context.Context) (gcp.SecretFetcher, error)
}

func (r CredentialResolver) getenv(key string) string {
	if r.Getenv == nil {
		return os.Getenv(key)
	}
	return r.Getenv(key)
}

// Resolve returns the first credential found, or ErrMissingCredential.
func (r CredentialResolver) Resolve(ctx context.Context) (Credential, error) {
	if v := r.getenv(EnvAPIKey); v != "" {
		return Credential{APIKey: v, Source: EnvAPIKey}, nil
	}
	if v := r.getenv(EnvAltAPIKey); v != "" {
		return Credential{APIKey: v, Source: EnvAltAPIKey}, nil
	}

	if r.SecretPath == "" || r.NewFetcher == nil {
		return Credential{}, ErrMissingCredential
	}

	fetcher, err := r.NewFetcher(ctx)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to create secret fetcher: %w", err)
	}
	defer func() { _ = fetcher.Close() }()

	v, err := fetcher.FetchSecret(ctx, r.SecretPath)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to fetch API key secret: %w", err)
	}
	if v == "" {
		return Credential{}, fmt.Errorf("secret %s is empty: %w", r.SecretPath, ErrMissingCredential)
	}
	return Credential{APIKey: v, Source: "secret:" + r.SecretPath}, nil
}

// Preflight decides whether probes can run. A non-empty skip reason means
// every scenario should be skipped. A missing credential or binary always
// skips; under GitHub Actions the reason says so.
func Preflight(ctx context.Context, binary string, resolver CredentialResolver) (Credential, string, error) {
	cred, err := resolver.Resolve(ctx)
	if err != nil {
		if !errors.Is(err, ErrMissingCredential) {
			return Credential{}, "", err
		}
		if resolver.getenv(EnvGitHubActions) != "" {
			return Credential{}, "API key not configured in GitHub Actions", nil
		}
		return Credential{}, "API key not configured", nil
	}

	if _, err := claudecode.LookPath(binary); err != nil {
		return cred, err.Error(), nil
	}

	return cred, "", nil
}
