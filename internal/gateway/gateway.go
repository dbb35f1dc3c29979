// ABOUTME: Messaging-channel boundary consumed by the ask/reply engine.
// ABOUTME: Defines the gateway operations, the message shape, and the error taxonomy.

package gateway

import (
	"context"
	"fmt"
	"time"
)

// Message is one candidate message fetched from the channel. Messages are
// read-only snapshots; a fresh set is fetched on every poll cycle.
type Message struct {
	AuthorID        string
	BotID           string
	Text            string
	Timestamp       string // channel-assigned ordering token
	ThreadTimestamp string // anchor of the parent message, empty for top-level posts
	SubType         string
}

// FromBot reports whether the message was produced by a bot integration.
func (m Message) FromBot() bool {
	return m.BotID != ""
}

// Gateway abstracts the channel API. All calls are synchronous
// request/response and honor context cancellation.
type Gateway interface {
	// PostMessage publishes text into the channel and returns the
	// channel-assigned ordering token of the new message.
	PostMessage(ctx context.Context, channelID, text string) (string, error)

	// JoinChannel joins the channel. Callers treat failures as ignorable
	// (already joined, private channel).
	JoinChannel(ctx context.Context, channelID string) error

	// FetchThreadReplies returns the messages nested under the given
	// thread anchor, including the parent itself.
	FetchThreadReplies(ctx context.Context, channelID, anchor string, limit int) ([]Message, error)

	// FetchRecentHistory returns the most recent top-level channel
	// messages, newest first.
	FetchRecentHistory(ctx context.Context, channelID string, limit int) ([]Message, error)
}

// RateLimitError reports a rate-limited call together with the delay the
// channel asked us to honor before retrying.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// APIError is a non-success, non-rate-limit response from the channel API.
// Code carries the provider's machine-readable error code.
type APIError struct {
	Code string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("slack api error: %s", e.Code)
}
