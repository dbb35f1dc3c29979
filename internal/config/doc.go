// Package config handles configuration loading for ask-on-slack.
//
// # Overview
//
// Configuration merges three layers, later layers winning: a YAML file,
// ASK_SLACK_* environment variables, and command-line flags.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from ASK_SLACK_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/ask-on-slack/config.yaml
//  3. ~/.config/ask-on-slack/config.yaml
//
// Values can reference environment variables with ${VAR_NAME} syntax:
//
//	slack:
//	  bot_token: "${SLACK_BOT_TOKEN}"
//	  app_token: "${SLACK_APP_TOKEN}"
//	  channel_id: "C0123456789"
//	  user_id: "U0123456789"
//
// Duration values use Go's time.ParseDuration syntax:
//
//	ask:
//	  reply_timeout: "300s"
//	  dedupe_window: "0s"
//
// # Credentials
//
// Missing Slack credentials are not an error: the server starts with the
// no-op human and every tool call explains what to configure. With
// credentials present, slack.channel_id becomes required.
package config
