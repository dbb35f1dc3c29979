// ABOUTME: Entry point for the ask-on-slack MCP server.
// ABOUTME: Serves the ask/clarify/acknowledge tools over stdio or Streamable HTTP.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rodrigolive/ask-on-slack-mcp/internal/config"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/correlator"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/dedupe"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/gateway"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/human"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/mcp"
	"github.com/rodrigolive/ask-on-slack-mcp/internal/role"
)

// version is reported by the version subcommand and the MCP serverInfo.
var version = "0.1.0"

var (
	flagConfig    string
	flagBotToken  string
	flagAppToken  string
	flagChannelID string
	flagUserID    string
	flagRole      string
	flagLogLevel  string
	flagLogFile   string
)

func main() {
	root := &cobra.Command{
		Use:           "ask-on-slack",
		Short:         "MCP server to ask humans on Slack from AI agents",
		Long:          "ask-on-slack bridges AI agents and humans: it exposes MCP tools that post a question into a Slack channel and block until the human replies.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "path to config.yaml (default: ~/.config/ask-on-slack/config.yaml)")
	pf.StringVar(&flagBotToken, "slack-bot-token", "", "Bot User OAuth Token (xoxb-...) or use "+config.EnvBotToken)
	pf.StringVar(&flagAppToken, "slack-app-token", "", "App-Level Token (xapp-...) or use "+config.EnvAppToken)
	pf.StringVar(&flagChannelID, "slack-channel-id", "", "Channel ID where the bot will operate or use "+config.EnvChannelID)
	pf.StringVar(&flagUserID, "slack-user-id", "", "User ID to mention-match replies against or use "+config.EnvUserID)
	pf.StringVarP(&flagRole, "role", "r", "", "Role for the human (boss, expert, or custom name)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Logging level (debug, info, warn, error)")
	pf.StringVar(&flagLogFile, "log-file", "", "Log file path (logs go to stderr when unset)")

	root.AddCommand(stdioCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func stdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Run the MCP server over stdio transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := setupLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer closeLog()

			tools, err := buildToolSet(ctx, cfg, logger)
			if err != nil {
				return err
			}

			logger.Info("starting ask-on-slack MCP server", "transport", "stdio", "role", cfg.Role)
			srv := mcp.NewStdioServer(tools, logger, os.Stdin, os.Stdout)
			if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over Streamable HTTP transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.HTTPAddr = fmt.Sprintf(":%d", port)
			}
			logger, closeLog, err := setupLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer closeLog()

			tools, err := buildToolSet(ctx, cfg, logger)
			if err != nil {
				return err
			}

			mcpServer, err := mcp.NewServer(mcp.Config{
				Tools:      tools,
				Logger:     logger,
				ServerName: "ask-on-slack-mcp",
				Version:    version,
			})
			if err != nil {
				return err
			}

			mux := http.NewServeMux()
			mcpServer.RegisterRoutes(mux)

			httpServer := &http.Server{
				Addr:              cfg.Server.HTTPAddr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				logger.Info("MCP Streamable HTTP server listening", "addr", cfg.Server.HTTPAddr, "path", "/mcp")
				errc <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return fmt.Errorf("http server: %w", err)
			case <-ctx.Done():
			}

			logger.Info("shutting down server")
			mcpServer.Close()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			logger.Info("server shutdown complete")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default 3000)")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented sample config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if path == "" {
				path = defaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
				return err
			}
			fmt.Printf("%s %s\n", color.GreenString("Wrote"), path)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ask-on-slack %s\n", version)
		},
	}
}

// defaultConfigPath returns the config location when --config is not given.
// Priority: ASK_SLACK_CONFIG env var > XDG_CONFIG_HOME > ~/.config.
func defaultConfigPath() string {
	if envPath := os.Getenv("ASK_SLACK_CONFIG"); envPath != "" {
		return envPath
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "ask-on-slack", "config.yaml")
}

// loadConfig resolves the effective configuration: file, then environment,
// then command-line flags, most specific last.
func loadConfig() (*config.Config, error) {
	path := flagConfig
	explicit := path != ""
	if path == "" {
		path = defaultConfigPath()
	}

	var cfg *config.Config
	if _, err := os.Stat(path); err == nil {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else if explicit {
		return nil, fmt.Errorf("config file not found: %s", path)
	} else {
		cfg = config.Default()
	}

	cfg.ApplyEnv()

	applyFlag(&cfg.Slack.BotToken, flagBotToken)
	applyFlag(&cfg.Slack.AppToken, flagAppToken)
	applyFlag(&cfg.Slack.ChannelID, flagChannelID)
	applyFlag(&cfg.Slack.UserID, flagUserID)
	applyFlag(&cfg.Role, flagRole)
	applyFlag(&cfg.Logging.Level, flagLogLevel)
	applyFlag(&cfg.Logging.File, flagLogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlag(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// buildToolSet selects the Human variant once from configuration and wires
// the engine behind the tool surface.
func buildToolSet(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mcp.ToolSet, error) {
	profile := role.Get(cfg.Role)

	if !cfg.HasSlackCredentials() {
		logger.Warn("Slack not configured, ask tools will return an error if invoked")
		return mcp.NewToolSet(profile, human.Noop{}, logger), nil
	}

	slackClient := gateway.NewSlackClient(gateway.SlackConfig{
		BotToken: cfg.Slack.BotToken,
		AppToken: cfg.Slack.AppToken,
		Logger:   logger,
	})

	// Verify the bot token up front; a bad token should not wait for the
	// first question to surface.
	authCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if botID, err := slackClient.Identity(authCtx); err != nil {
		logger.Warn("slack auth check failed", "error", err)
	} else {
		logger.Info("slack auth verified", "bot_user_id", botID)
	}

	corr := correlator.New(correlator.Config{
		Gateway:          slackClient,
		Role:             profile,
		Logger:           logger,
		ResponderTag:     cfg.Slack.UserID,
		RateLimitRetries: cfg.Ask.RateLimitRetries,
	})

	var suppressor *dedupe.Suppressor
	if cfg.Ask.DedupeWindow > 0 {
		suppressor = dedupe.New(cfg.Ask.DedupeWindow, 256)
	}

	h := human.NewSlack(human.SlackConfig{
		Gateway:      slackClient,
		Correlator:   corr,
		Role:         profile,
		Logger:       logger,
		ChannelID:    cfg.Slack.ChannelID,
		ReplyTimeout: cfg.Ask.ReplyTimeout,
		Suppressor:   suppressor,
	})

	return mcp.NewToolSet(profile, h, logger), nil
}

const sampleConfig = `# ask-on-slack configuration.
# Values support ${VAR} expansion from the environment.

slack:
  bot_token: "${ASK_SLACK_BOT}"     # Bot User OAuth Token (xoxb-...)
  app_token: "${ASK_SLACK_APP}"     # App-Level Token (xapp-...)
  channel_id: "${ASK_SLACK_CHANNEL}" # channel the bot posts into (C...)
  user_id: "${ASK_SLACK_USER}"      # responder to mention-match (U...)

# Role noun used in tool names and prompts: boss, expert, or anything else
# for the generic human profile.
role: "boss"

ask:
  reply_timeout: "300s"    # how long to wait for a reply
  dedupe_window: "0s"      # reject identical re-asked questions inside this window (0 = off)
  rate_limit_retries: 3    # consecutive 429s tolerated while polling

server:
  http_addr: ":3000"       # serve mode only

logging:
  level: "info"            # debug, info, warn, error
  format: "text"           # text, json
  # file: "/var/log/ask-on-slack.log"
`
