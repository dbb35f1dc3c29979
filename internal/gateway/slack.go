// ABOUTME: Slack implementation of the Gateway interface using slack-go.
// ABOUTME: Maps Slack Web API failures onto the gateway error taxonomy.

package gateway

import (
	"context"
	"errors"
	"log/slog"

	"github.com/slack-go/slack"
)

// SlackConfig configures the Slack gateway client.
type SlackConfig struct {
	BotToken string
	AppToken string
	APIURL   string // override for tests; must end with a slash
	Logger   *slog.Logger
}

// SlackClient implements Gateway against the Slack Web API.
type SlackClient struct {
	api    *slack.Client
	logger *slog.Logger
}

// NewSlackClient creates a Slack gateway from the given configuration.
func NewSlackClient(cfg SlackConfig) *SlackClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []slack.Option{}
	if cfg.AppToken != "" {
		opts = append(opts, slack.OptionAppLevelToken(cfg.AppToken))
	}
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}

	return &SlackClient{
		api:    slack.New(cfg.BotToken, opts...),
		logger: logger,
	}
}

// Identity verifies the bot token and returns the bot's own user ID.
func (c *SlackClient) Identity(ctx context.Context) (string, error) {
	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return "", wrapSlackErr(err)
	}
	return resp.UserID, nil
}

func (c *SlackClient) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return "", wrapSlackErr(err)
	}
	c.logger.Debug("posted message", "channel", channelID, "ts", ts)
	return ts, nil
}

func (c *SlackClient) JoinChannel(ctx context.Context, channelID string) error {
	_, _, _, err := c.api.JoinConversationContext(ctx, channelID)
	if err != nil {
		return wrapSlackErr(err)
	}
	return nil
}

func (c *SlackClient) FetchThreadReplies(ctx context.Context, channelID, anchor string, limit int) ([]Message, error) {
	msgs, _, _, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: anchor,
		Limit:     limit,
	})
	if err != nil {
		return nil, wrapSlackErr(err)
	}
	return convertMessages(msgs), nil
}

func (c *SlackClient) FetchRecentHistory(ctx context.Context, channelID string, limit int) ([]Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
	})
	if err != nil {
		return nil, wrapSlackErr(err)
	}
	return convertMessages(resp.Messages), nil
}

func convertMessages(msgs []slack.Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Message{
			AuthorID:        m.User,
			BotID:           m.BotID,
			Text:            m.Text,
			Timestamp:       m.Timestamp,
			ThreadTimestamp: m.ThreadTimestamp,
			SubType:         m.SubType,
		})
	}
	return out
}

// wrapSlackErr translates slack-go errors into the gateway taxonomy.
// Rate limits keep the advertised retry-after delay so callers can honor it.
func wrapSlackErr(err error) error {
	var rate *slack.RateLimitedError
	if errors.As(err, &rate) {
		return &RateLimitError{RetryAfter: rate.RetryAfter}
	}
	return &APIError{Code: err.Error()}
}
