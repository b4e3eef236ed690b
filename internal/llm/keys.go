package llm

import (
	"context"
	"os"
)

// KeyProvider supplies the completion-service credential from an external
// secure-storage collaborator. The client never sees how the key is stored.
// An empty key with a nil error means no credential is configured.
type KeyProvider interface {
	RetrieveAPIKey(ctx context.Context) (string, error)
}

// EnvKeyProvider reads the credential from an environment variable.
type EnvKeyProvider struct {
	// Var is the variable name; defaults to ANTHROPIC_API_KEY.
	Var string
}

// RetrieveAPIKey implements KeyProvider.
func (p EnvKeyProvider) RetrieveAPIKey(_ context.Context) (string, error) {
	name := p.Var
	if name == "" {
		name = "ANTHROPIC_API_KEY"
	}
	return os.Getenv(name), nil
}

// StaticKeyProvider returns a fixed key, for tests and CLI flag overrides.
type StaticKeyProvider string

// RetrieveAPIKey implements KeyProvider.
func (p StaticKeyProvider) RetrieveAPIKey(_ context.Context) (string, error) {
	return string(p), nil
}
