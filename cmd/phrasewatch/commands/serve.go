package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"phrasewatch/pkg/phrasewatch/assistant"
	"phrasewatch/pkg/phrasewatch/bot"
	"phrasewatch/pkg/phrasewatch/config"
	"phrasewatch/pkg/phrasewatch/conversations"
	"phrasewatch/pkg/phrasewatch/gateway"
	"phrasewatch/pkg/phrasewatch/heartbeat"
	"phrasewatch/pkg/phrasewatch/phrases"
	"phrasewatch/pkg/phrasewatch/transcription"
)

// newServeCmd creates the `phrasewatch serve` command that starts the
// webhook service.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook service",
		Long: `Start the webhook service: listens for chat and call webhooks,
drives the assistant conversation, and watches transcriptions for
registered trigger phrases.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return err
	}

	// ── Logger ──
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// ── Secrets ──
	cfg.ResolveSecrets(logger)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── Shared state and collaborators ──
	registry := phrases.NewRegistry()
	assistantClient := assistant.NewClient(cfg.Assistant.BaseURL, cfg.Assistant.APIKey, cfg.Assistant.AssistantID, logger)
	platform := conversations.NewClient(cfg.Conversations.BaseURL, cfg.Conversations.Token, logger)

	chatHandler := bot.NewChatHandler(assistantClient, platform, registry, logger)
	matcher := transcription.NewMatcher(registry, platform, logger)

	gw := gateway.New(cfg.Server.Address, chatHandler, matcher, logger)
	gw.Start()

	var hb *heartbeat.Heartbeat
	if cfg.Heartbeat.Enabled {
		hb = heartbeat.New(registry, logger)
		if err := hb.Start(cfg.Heartbeat.Schedule); err != nil {
			logger.Warn("heartbeat disabled", "error", err)
			hb = nil
		}
	}

	logger.Info("phrasewatch running",
		"address", cfg.Server.Address,
		"assistant", cfg.Assistant.AssistantID,
	)

	// ── Wait for shutdown signal ──
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	if hb != nil {
		hb.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return gw.Stop(shutdownCtx)
}
