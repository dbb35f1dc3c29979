// ABOUTME: Tests for the ask orchestrator and the no-op substitution.
// ABOUTME: Verifies post counts, validation, suppression, and error mapping.

package human

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigolive/ask-on-slack-mcp/internal/correlator"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/dedupe"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/gateway"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/role"
)

// countingGateway records posts and serves one scripted thread reply per
// posted question.
type countingGateway struct {
	mu        sync.Mutex
	posts     []string
	joinErr   error
	postErr   error
	reply     string // empty means nobody ever answers
	lastPost  string
	fetchn    int
	joinCalls int
}

func (g *countingGateway) PostMessage(_ context.Context, _, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.postErr != nil {
		return "", g.postErr
	}
	g.posts = append(g.posts, text)
	g.lastPost = "100.00" + strconv.Itoa(len(g.posts))
	return g.lastPost, nil
}

func (g *countingGateway) JoinChannel(context.Context, string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.joinCalls++
	return g.joinErr
}

func (g *countingGateway) FetchThreadReplies(_ context.Context, _, anchor string, _ int) ([]gateway.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchn++
	if g.reply == "" {
		return nil, nil
	}
	return []gateway.Message{
		{AuthorID: "U7", Text: g.reply, Timestamp: anchor + "9", ThreadTimestamp: anchor},
	}, nil
}

func (g *countingGateway) FetchRecentHistory(context.Context, string, int) ([]gateway.Message, error) {
	return nil, nil
}

func (g *countingGateway) postCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.posts)
}

func newTestHuman(gw *countingGateway, timeout time.Duration, sup *dedupe.Suppressor) *Slack {
	profile := role.Get("boss")
	return NewSlack(SlackConfig{
		Gateway: gw,
		Correlator: correlator.New(correlator.Config{
			Gateway: gw,
			Role:    profile,
		}),
		Role:         profile,
		ChannelID:    "C1",
		ReplyTimeout: timeout,
		Suppressor:   sup,
	})
}

func TestAsk_EmptyText(t *testing.T) {
	gw := &countingGateway{}
	h := newTestHuman(gw, time.Second, nil)

	_, err := h.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Zero(t, gw.postCount(), "invalid input must not post")
}

func TestAsk_PostsExactlyOnce(t *testing.T) {
	gw := &countingGateway{reply: "Pong"}
	h := newTestHuman(gw, 5*time.Second, nil)

	got, err := h.Ask(context.Background(), "Ping?")
	require.NoError(t, err)
	assert.Contains(t, got, "Pong")
	assert.Equal(t, 1, gw.postCount())
}

func TestAsk_TimeoutStillPostsOnce(t *testing.T) {
	gw := &countingGateway{}
	h := newTestHuman(gw, 150*time.Millisecond, nil)

	_, err := h.Ask(context.Background(), "Ping?")
	assert.ErrorIs(t, err, correlator.ErrNoReply)
	assert.Equal(t, 1, gw.postCount())
}

func TestAsk_JoinFailureIsSwallowed(t *testing.T) {
	gw := &countingGateway{
		reply:   "Pong",
		joinErr: &gateway.APIError{Code: "method_not_supported_for_channel_type"},
	}
	h := newTestHuman(gw, 5*time.Second, nil)

	got, err := h.Ask(context.Background(), "Ping?")
	require.NoError(t, err)
	assert.Contains(t, got, "Pong")
	assert.Equal(t, 1, gw.joinCalls)
}

func TestAsk_PostFailurePropagates(t *testing.T) {
	gw := &countingGateway{postErr: &gateway.APIError{Code: "channel_not_found"}}
	h := newTestHuman(gw, time.Second, nil)

	_, err := h.Ask(context.Background(), "Ping?")
	var apiErr *gateway.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "channel_not_found", apiErr.Code)
}

func TestAsk_DuplicateSuppressed(t *testing.T) {
	gw := &countingGateway{reply: "Pong"}
	h := newTestHuman(gw, 5*time.Second, dedupe.New(time.Minute, 16))

	_, err := h.Ask(context.Background(), "Ping?")
	require.NoError(t, err)

	_, err = h.Ask(context.Background(), "Ping?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate question")
	assert.Equal(t, 1, gw.postCount(), "the duplicate must not post")
}

func TestAcknowledge_OneWay(t *testing.T) {
	gw := &countingGateway{}
	h := newTestHuman(gw, time.Second, nil)

	got, err := h.Acknowledge(context.Background(), "Thanks!")
	require.NoError(t, err)
	assert.Equal(t, "(the boss heard you)", got)
	assert.Equal(t, 1, gw.postCount())
	assert.Zero(t, gw.fetchn, "acknowledgements never wait for a reply")
}

func TestAcknowledge_EmptyText(t *testing.T) {
	gw := &countingGateway{}
	h := newTestHuman(gw, time.Second, nil)

	_, err := h.Acknowledge(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Zero(t, gw.postCount())
}

func TestNoop_FailsFastWithoutNetwork(t *testing.T) {
	var h Human = Noop{}

	_, err := h.Ask(context.Background(), "Ping?")
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "No Human client configured")

	_, err = h.Acknowledge(context.Background(), "ok")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestNoop_IsImmediate(t *testing.T) {
	start := time.Now()
	_, err := Noop{}.Ask(context.Background(), "Ping?")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
