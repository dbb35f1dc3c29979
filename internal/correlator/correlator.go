// ABOUTME: Correlates a posted question with a qualifying human reply.
// ABOUTME: Polls thread replies and recent history with backoff, rate-limit, and deadline policy.

package correlator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/rodrigolive/ask-on-slack-mcp/internal/gateway"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/role"
)

// DefaultTimeout is how long a question waits for a reply when the caller
// does not configure a timeout.
const DefaultTimeout = 300 * time.Second

const (
	defaultThreadLimit      = 50
	defaultHistoryLimit     = 10
	defaultInitialBackoff   = 500 * time.Millisecond
	defaultBackoffStep      = 250 * time.Millisecond
	defaultMaxBackoff       = 4000 * time.Millisecond
	defaultErrorPenalty     = 2000 * time.Millisecond
	defaultRateLimitRetries = 3
)

// ErrNoReply is returned when no qualifying reply arrived before the deadline.
var ErrNoReply = errors.New("no qualifying reply before deadline")

// Config configures a Correlator.
type Config struct {
	Gateway gateway.Gateway
	Role    role.Profile
	Logger  *slog.Logger

	// ResponderTag is the user ID whose mention marks a reply that is not
	// nested under the question's thread. Empty disables the mention path.
	ResponderTag string

	ThreadLimit  int
	HistoryLimit int

	InitialBackoff   time.Duration
	BackoffStep      time.Duration
	MaxBackoff       time.Duration
	ErrorPenalty     time.Duration
	RateLimitRetries int
}

// Correlator turns "a question was posted at token T in channel C" into a
// matched reply string or a timeout/failure. Each WaitForReply call owns its
// working state; a Correlator is safe for concurrent use.
type Correlator struct {
	gw           gateway.Gateway
	profile      role.Profile
	logger       *slog.Logger
	responderTag string

	threadLimit  int
	historyLimit int

	initialBackoff   time.Duration
	backoffStep      time.Duration
	maxBackoff       time.Duration
	errorPenalty     time.Duration
	rateLimitRetries int
}

// New creates a Correlator, filling unset tuning knobs with defaults.
func New(cfg Config) *Correlator {
	c := &Correlator{
		gw:               cfg.Gateway,
		profile:          cfg.Role,
		logger:           cfg.Logger,
		responderTag:     cfg.ResponderTag,
		threadLimit:      cfg.ThreadLimit,
		historyLimit:     cfg.HistoryLimit,
		initialBackoff:   cfg.InitialBackoff,
		backoffStep:      cfg.BackoffStep,
		maxBackoff:       cfg.MaxBackoff,
		errorPenalty:     cfg.ErrorPenalty,
		rateLimitRetries: cfg.RateLimitRetries,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.threadLimit <= 0 {
		c.threadLimit = defaultThreadLimit
	}
	if c.historyLimit <= 0 {
		c.historyLimit = defaultHistoryLimit
	}
	if c.initialBackoff <= 0 {
		c.initialBackoff = defaultInitialBackoff
	}
	if c.backoffStep <= 0 {
		c.backoffStep = defaultBackoffStep
	}
	if c.maxBackoff <= 0 {
		c.maxBackoff = defaultMaxBackoff
	}
	if c.errorPenalty <= 0 {
		c.errorPenalty = defaultErrorPenalty
	}
	if c.rateLimitRetries <= 0 {
		c.rateLimitRetries = defaultRateLimitRetries
	}
	return c
}

// WaitForReply polls the channel until a qualifying reply to the question
// anchored at anchor appears, the deadline elapses (ErrNoReply), or ctx is
// cancelled. The first check happens immediately to catch near-instant
// replies; later checks back off gradually to spare API quota.
func (c *Correlator) WaitForReply(ctx context.Context, channelID, anchor string, deadline time.Time) (string, error) {
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	backoff := c.initialBackoff
	rateLimitStreak := 0

	for {
		reply, found, err := c.check(ctx, channelID, anchor)
		switch {
		case err == nil:
			rateLimitStreak = 0
			if found {
				return reply, nil
			}
			if err := sleep(ctx, backoff); err != nil {
				return "", waitErr(ctx)
			}
			backoff = min(backoff+c.backoffStep, c.maxBackoff)

		case ctx.Err() != nil:
			return "", waitErr(ctx)

		case isRateLimited(err):
			rateLimitStreak++
			var rate *gateway.RateLimitError
			errors.As(err, &rate)
			if rateLimitStreak > c.rateLimitRetries {
				return "", fmt.Errorf("abandoning poll after %d consecutive rate limits: %w",
					c.rateLimitRetries, &gateway.APIError{Code: "ratelimited"})
			}
			c.logger.Warn("rate limited while polling",
				"retry_after", rate.RetryAfter,
				"streak", rateLimitStreak,
			)
			if err := sleep(ctx, rate.RetryAfter); err != nil {
				return "", waitErr(ctx)
			}

		default:
			// Transient failure does not terminate the wait.
			c.logger.Error("polling error", "error", err)
			rateLimitStreak = 0
			if err := sleep(ctx, c.errorPenalty); err != nil {
				return "", waitErr(ctx)
			}
		}
	}
}

// check runs one poll cycle: the thread's reply list first, then, when a
// responder tag is configured, the channel's recent history for mentions
// that never got nested under the thread.
func (c *Correlator) check(ctx context.Context, channelID, anchor string) (string, bool, error) {
	replies, err := c.gw.FetchThreadReplies(ctx, channelID, anchor, c.threadLimit)
	if err != nil {
		return "", false, err
	}
	for _, m := range replies {
		if qualifiesInThread(m, anchor) {
			c.logger.Info("thread reply received", "author", m.AuthorID, "ts", m.Timestamp)
			return c.finalize(m.Text), true, nil
		}
	}

	if c.responderTag == "" {
		return "", false, nil
	}

	history, err := c.gw.FetchRecentHistory(ctx, channelID, c.historyLimit)
	if err != nil {
		return "", false, err
	}
	marker := mentionMarker(c.responderTag)
	for _, m := range history {
		if qualifiesAsMention(m, anchor, marker) {
			c.logger.Info("mention reply received", "author", m.AuthorID, "ts", m.Timestamp)
			return c.finalize(m.Text), true, nil
		}
	}
	return "", false, nil
}

// qualifiesInThread applies the thread-reply matching policy: same anchor,
// strictly after the question, human-authored, normal or broadcast subtype.
func qualifiesInThread(m gateway.Message, anchor string) bool {
	if m.FromBot() || m.AuthorID == "" || m.Text == "" {
		return false
	}
	if m.SubType != "" && m.SubType != "thread_broadcast" {
		return false
	}
	if m.ThreadTimestamp != anchor {
		return false
	}
	return tokenAfter(m.Timestamp, anchor)
}

// qualifiesAsMention applies the mention matching policy for top-level
// messages that reply outside the question's thread.
func qualifiesAsMention(m gateway.Message, anchor, marker string) bool {
	if m.FromBot() || m.Text == "" {
		return false
	}
	if !strings.Contains(m.Text, marker) {
		return false
	}
	return tokenAfter(m.Timestamp, anchor)
}

// finalize strips the responder mention from the reply and wraps it with the
// role's continuation instruction.
func (c *Correlator) finalize(text string) string {
	if c.responderTag != "" {
		text = strings.ReplaceAll(text, mentionMarker(c.responderTag), "")
	}
	return c.profile.ReplyWrapper(strings.TrimSpace(text))
}

func mentionMarker(tag string) string {
	return "<@" + tag + ">"
}

// tokenAfter reports whether ts orders strictly after anchor. Tokens are
// decimal second.fraction strings; non-numeric tokens fall back to
// lexicographic order.
func tokenAfter(ts, anchor string) bool {
	a, errA := strconv.ParseFloat(ts, 64)
	b, errB := strconv.ParseFloat(anchor, 64)
	if errA != nil || errB != nil {
		return ts > anchor
	}
	return a > b
}

func isRateLimited(err error) bool {
	var rate *gateway.RateLimitError
	return errors.As(err, &rate)
}

// waitErr maps the loop context's terminal state: an elapsed deadline is a
// timeout for this attempt, anything else is the caller's cancellation.
func waitErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrNoReply
	}
	return ctx.Err()
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
