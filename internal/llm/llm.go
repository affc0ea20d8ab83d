// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm defines the narrow "submit prompt, receive text" capability
// the review passes depend on, with OpenAI, Anthropic, and fixture backends.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/pdiddy/litreview/pkg/types"
)

// Request is a single-turn completion request.
type Request struct {
	// System is the fixed role instruction.
	System string

	// Prompt is the user content.
	Prompt string

	// Model overrides the client's default model when non-empty.
	Model string

	Temperature float64
}

// Completer sends one request and returns the model's single text response.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// FixtureClient returns the contents of a file instead of calling a model.
// It backs the --debug flag.
type FixtureClient struct {
	Path string
}

// Complete reads the fixture file on every call so edits between runs are picked up.
func (f *FixtureClient) Complete(_ context.Context, _ Request) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading debug fixture %s: %w", f.Path, err)
	}
	return string(data), nil
}

// New builds the Completer described by cfg. Debug mode returns a
// FixtureClient and needs no credential; otherwise an empty APIKey is an error.
func New(cfg types.AIConfig) (Completer, error) {
	if cfg.Debug {
		if cfg.FixturePath == "" {
			return nil, fmt.Errorf("debug mode requires a fixture path")
		}
		return &FixtureClient{Path: cfg.FixturePath}, nil
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", providerOrDefault(cfg.Provider))
	}

	client := &http.Client{Timeout: cfg.Timeout}

	switch providerOrDefault(cfg.Provider) {
	case types.ProviderOpenAI:
		return &OpenAIClient{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.MaxRetries,
			Client:     client,
		}, nil
	case types.ProviderAnthropic:
		return &ClaudeClient{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			UserAgent:  cfg.UserAgent,
			MaxRetries: cfg.MaxRetries,
			Client:     client,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q: use openai or anthropic", cfg.Provider)
	}
}

// CredentialKey returns the secret name holding the API key for p.
func CredentialKey(p types.Provider) string {
	if providerOrDefault(p) == types.ProviderAnthropic {
		return "ANTHROPIC_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func providerOrDefault(p types.Provider) types.Provider {
	if p == "" {
		return types.ProviderOpenAI
	}
	return p
}
