// ABOUTME: Tests for the Slack gateway adapter against a stub Web API server.
// ABOUTME: Covers message conversion and the rate-limit / API error mapping.

package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a stub Slack Web API and returns a client pointed at it.
func newTestClient(t *testing.T, routes map[string]http.HandlerFunc) *SlackClient {
	t.Helper()
	mux := http.NewServeMux()
	for path, handler := range routes {
		mux.HandleFunc(path, handler)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewSlackClient(SlackConfig{
		BotToken: "xoxb-test",
		APIURL:   srv.URL + "/",
	})
}

func jsonResponse(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestPostMessage_ReturnsTimestamp(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/chat.postMessage": jsonResponse(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`),
	})

	ts, err := client.PostMessage(context.Background(), "C123", "Ping?")
	require.NoError(t, err)
	assert.Equal(t, "1700000000.000100", ts)
}

func TestPostMessage_APIError(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/chat.postMessage": jsonResponse(`{"ok":false,"error":"channel_not_found"}`),
	})

	_, err := client.PostMessage(context.Background(), "C404", "Ping?")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "channel_not_found", apiErr.Code)
}

func TestPostMessage_RateLimited(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/chat.postMessage": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		},
	})

	_, err := client.PostMessage(context.Background(), "C123", "Ping?")
	require.Error(t, err)

	var rate *RateLimitError
	require.True(t, errors.As(err, &rate))
	assert.Equal(t, 7*time.Second, rate.RetryAfter)
}

func TestFetchThreadReplies_ConvertsMessages(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/conversations.replies": jsonResponse(`{
			"ok": true,
			"messages": [
				{"type":"message","user":"UBOT","bot_id":"B001","text":"Ping?","ts":"100.000","thread_ts":"100.000"},
				{"type":"message","user":"UHUMAN","text":"Pong","ts":"100.002","thread_ts":"100.000"}
			]
		}`),
	})

	msgs, err := client.FetchThreadReplies(context.Background(), "C123", "100.000", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.True(t, msgs[0].FromBot())
	assert.Equal(t, "100.000", msgs[0].ThreadTimestamp)

	assert.False(t, msgs[1].FromBot())
	assert.Equal(t, "UHUMAN", msgs[1].AuthorID)
	assert.Equal(t, "Pong", msgs[1].Text)
	assert.Equal(t, "100.002", msgs[1].Timestamp)
}

func TestFetchRecentHistory_ConvertsMessages(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/conversations.history": jsonResponse(`{
			"ok": true,
			"messages": [
				{"type":"message","user":"UHUMAN","text":"<@UBOT> deploy it","ts":"101.000"},
				{"type":"message","user":"UOTHER","text":"unrelated","ts":"100.500","subtype":"channel_join"}
			]
		}`),
	})

	msgs, err := client.FetchRecentHistory(context.Background(), "C123", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "<@UBOT> deploy it", msgs[0].Text)
	assert.Equal(t, "channel_join", msgs[1].SubType)
}

func TestJoinChannel(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/conversations.join": jsonResponse(`{"ok":true,"channel":{"id":"C123"}}`),
	})
	require.NoError(t, client.JoinChannel(context.Background(), "C123"))
}

func TestJoinChannel_AlreadyInChannel(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/conversations.join": jsonResponse(`{"ok":false,"error":"method_not_supported_for_channel_type"}`),
	})

	err := client.JoinChannel(context.Background(), "C123")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "method_not_supported_for_channel_type", apiErr.Code)
}

func TestIdentity(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/auth.test": jsonResponse(`{"ok":true,"url":"https://x.slack.com/","team":"x","user":"askbot","team_id":"T1","user_id":"UBOT"}`),
	})

	id, err := client.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "UBOT", id)
}

func TestIdentity_InvalidAuth(t *testing.T) {
	client := newTestClient(t, map[string]http.HandlerFunc{
		"/auth.test": jsonResponse(`{"ok":false,"error":"invalid_auth"}`),
	})

	_, err := client.Identity(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid_auth", apiErr.Code)
}
