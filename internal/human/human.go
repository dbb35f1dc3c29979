// ABOUTME: Capability interface for routing questions to a human responder.
// ABOUTME: Provides the no-op variant selected when no Slack credentials exist.

package human

import (
	"context"
	"errors"
)

// Sentinel errors surfaced to the tool layer.
var (
	// ErrNotConfigured means no messaging credentials were provided at
	// startup. The wording is part of the tool contract.
	ErrNotConfigured = errors.New("No Human client configured. Provide Slack credentials to enable ask_on_slack")

	// ErrEmptyText means the required text parameter was missing or blank.
	ErrEmptyText = errors.New("missing required text parameter")
)

// Human is the responder capability. The real variant posts to a messaging
// channel and blocks for a correlated reply; the no-op variant fails fast.
// The variant is chosen once at startup from configuration.
type Human interface {
	// Ask posts the question and blocks until a correlated reply arrives
	// or the reply timeout elapses.
	Ask(ctx context.Context, question string) (string, error)

	// Acknowledge posts a one-way message with no reply expected and
	// returns a fixed confirmation.
	Acknowledge(ctx context.Context, text string) (string, error)
}

// Noop is the Human used when credentials are absent. Every call fails
// immediately with ErrNotConfigured and performs zero network calls.
type Noop struct{}

func (Noop) Ask(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Noop) Acknowledge(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
