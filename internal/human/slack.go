// ABOUTME: Slack-backed Human that orchestrates one ask: validate, post, wait.
// ABOUTME: Maps correlator and gateway outcomes onto the tool-call contract.

package human

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rodrigolive/ask-on-slack-mcp/internal/correlator"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/dedupe"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/gateway"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/role"
)

// SlackConfig configures the Slack-backed Human.
type SlackConfig struct {
	Gateway    gateway.Gateway
	Correlator *correlator.Correlator
	Role       role.Profile
	Logger     *slog.Logger
	ChannelID  string

	// ReplyTimeout bounds how long Ask waits for a correlated reply.
	// Zero selects the correlator default.
	ReplyTimeout time.Duration

	// Suppressor, when set, rejects an identical question re-asked inside
	// its window before anything is posted. Nil disables suppression.
	Suppressor *dedupe.Suppressor
}

// Slack asks questions in a Slack channel and waits for the human to answer.
type Slack struct {
	gw           gateway.Gateway
	corr         *correlator.Correlator
	profile      role.Profile
	logger       *slog.Logger
	channelID    string
	replyTimeout time.Duration
	suppressor   *dedupe.Suppressor
}

// NewSlack creates the Slack-backed Human.
func NewSlack(cfg SlackConfig) *Slack {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ReplyTimeout
	if timeout <= 0 {
		timeout = correlator.DefaultTimeout
	}
	return &Slack{
		gw:           cfg.Gateway,
		corr:         cfg.Correlator,
		profile:      cfg.Role,
		logger:       logger,
		channelID:    cfg.ChannelID,
		replyTimeout: timeout,
		suppressor:   cfg.Suppressor,
	}
}

// Ask posts the question into the channel and blocks until the correlator
// finds a qualifying reply or the reply timeout elapses. Every successful
// invocation posts exactly one visible message.
func (h *Slack) Ask(ctx context.Context, question string) (string, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return "", ErrEmptyText
	}

	if h.suppressor != nil && h.suppressor.CheckAndMark(q) {
		return "", fmt.Errorf("duplicate question suppressed: an identical question was just posted, wait for its reply")
	}

	anchor, err := h.post(ctx, q)
	if err != nil {
		return "", err
	}

	deadline := time.Now().Add(h.replyTimeout)
	return h.corr.WaitForReply(ctx, h.channelID, anchor, deadline)
}

// Acknowledge posts the text one-way, skipping the correlator entirely.
func (h *Slack) Acknowledge(ctx context.Context, text string) (string, error) {
	q := strings.TrimSpace(text)
	if q == "" {
		return "", ErrEmptyText
	}
	if _, err := h.post(ctx, q); err != nil {
		return "", err
	}
	return h.profile.AckConfirmation(), nil
}

// post joins the channel best-effort and publishes the text. Join failures
// (already joined, private channel) are logged and ignored.
func (h *Slack) post(ctx context.Context, text string) (string, error) {
	if err := h.gw.JoinChannel(ctx, h.channelID); err != nil {
		h.logger.Debug("channel join skipped", "channel", h.channelID, "error", err)
	}

	anchor, err := h.gw.PostMessage(ctx, h.channelID, text)
	if err != nil {
		return "", fmt.Errorf("posting question: %w", err)
	}
	h.logger.Info("posted question", "channel", h.channelID, "thread_ts", anchor)
	return anchor, nil
}
