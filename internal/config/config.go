// ABOUTME: Configuration loading for ask-on-slack
// ABOUTME: Merges an optional YAML file, environment variables, and defaults

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Env vars honored for the Slack credential surface. Command-line flags
// take priority over these; these take priority over the YAML file.
const (
	EnvBotToken  = "ASK_SLACK_BOT"
	EnvAppToken  = "ASK_SLACK_APP"
	EnvChannelID = "ASK_SLACK_CHANNEL"
	EnvUserID    = "ASK_SLACK_USER"
	EnvRole      = "ASK_SLACK_ROLE"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFile   = "LOG_FILE"
)

// Config represents the complete ask-on-slack configuration.
type Config struct {
	Slack   SlackConfig   `yaml:"slack"`
	Role    string        `yaml:"role"`
	Ask     AskConfig     `yaml:"ask"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// SlackConfig holds the channel credentials and targets.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`  // Bot User OAuth Token (xoxb-...)
	AppToken  string `yaml:"app_token"`  // App-Level Token (xapp-...)
	ChannelID string `yaml:"channel_id"` // channel the bot posts into (C...)
	UserID    string `yaml:"user_id"`    // responder to mention-match (U...)
}

// AskConfig holds ask/reply engine tuning.
type AskConfig struct {
	ReplyTimeout     time.Duration `yaml:"-"`
	DedupeWindow     time.Duration `yaml:"-"`
	RateLimitRetries int           `yaml:"rate_limit_retries"`

	// Raw string values for YAML unmarshaling
	ReplyTimeoutRaw string `yaml:"reply_timeout"`
	DedupeWindowRaw string `yaml:"dedupe_window"`
}

// ServerConfig holds the HTTP transport address.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"` // when set, logs go to this file instead of stderr
}

// Default returns the configuration used when no file and no overrides exist.
func Default() *Config {
	return &Config{
		Role: "boss",
		Ask: AskConfig{
			ReplyTimeout:     300 * time.Second,
			RateLimitRetries: 3,
		},
		Server: ServerConfig{
			HTTPAddr: ":3000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and merges it over the
// defaults. Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays the original environment variable surface onto the
// config. Only set variables override.
func (c *Config) ApplyEnv() {
	overlay(&c.Slack.BotToken, EnvBotToken)
	overlay(&c.Slack.AppToken, EnvAppToken)
	overlay(&c.Slack.ChannelID, EnvChannelID)
	overlay(&c.Slack.UserID, EnvUserID)
	overlay(&c.Role, EnvRole)
	overlay(&c.Logging.Level, EnvLogLevel)
	overlay(&c.Logging.File, EnvLogFile)
}

func overlay(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// HasSlackCredentials reports whether the minimum credential pair for the
// real Slack human is present. Anything less selects the no-op human.
func (c *Config) HasSlackCredentials() bool {
	return c.Slack.BotToken != "" && c.Slack.AppToken != ""
}

// Validate checks field consistency. Missing credentials are not an error
// here; they downgrade the server to the no-op human instead.
func (c *Config) Validate() error {
	if c.HasSlackCredentials() && c.Slack.ChannelID == "" {
		return fmt.Errorf("slack.channel_id is required when slack credentials are set")
	}
	if c.Ask.ReplyTimeout < 0 {
		return fmt.Errorf("ask.reply_timeout must not be negative")
	}
	if c.Ask.RateLimitRetries < 0 {
		return fmt.Errorf("ask.rate_limit_retries must not be negative")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Ask.ReplyTimeoutRaw != "" {
		cfg.Ask.ReplyTimeout, err = time.ParseDuration(cfg.Ask.ReplyTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing reply_timeout %q: %w", cfg.Ask.ReplyTimeoutRaw, err)
		}
	}

	if cfg.Ask.DedupeWindowRaw != "" {
		cfg.Ask.DedupeWindow, err = time.ParseDuration(cfg.Ask.DedupeWindowRaw)
		if err != nil {
			return fmt.Errorf("parsing dedupe_window %q: %w", cfg.Ask.DedupeWindowRaw, err)
		}
	}

	return nil
}
