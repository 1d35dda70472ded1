// Package gateway exposes the two inbound webhook endpoints over HTTP and
// routes decoded events to the chat and transcription handlers.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"phrasewatch/pkg/phrasewatch/conversations"
)

// ChatHandler processes chat webhook events.
type ChatHandler interface {
	HandleMessageNew(ctx context.Context, event *conversations.MessageNewEvent) error
}

// TranscriptionHandler processes live-transcription webhook events.
type TranscriptionHandler interface {
	HandleTranscription(ctx context.Context, event *conversations.TranscriptionEvent) error
}

// Gateway is the webhook HTTP server.
type Gateway struct {
	chat      ChatHandler
	calls     TranscriptionHandler
	server    *http.Server
	logger    *slog.Logger
	startedAt time.Time
}

// New creates a gateway listening on address.
func New(address string, chat ChatHandler, calls TranscriptionHandler, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if address == "" {
		address = ":3110"
	}
	g := &Gateway{
		chat:   chat,
		calls:  calls,
		logger: logger.With("component", "gateway"),
	}
	g.server = &http.Server{
		Addr:              address,
		Handler:           g.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

func (g *Gateway) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Heartbeat("/health"))

	r.Post("/bot/webhook", g.handleChatWebhook)
	r.Post("/calls/webhook", g.handleCallWebhook)
	return r
}

// Start begins serving in a background goroutine.
func (g *Gateway) Start() {
	g.startedAt = time.Now()
	go func() {
		if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.logger.Error("gateway server error", "error", err)
		}
	}()
	g.logger.Info("gateway started", "address", g.server.Addr)
}

// Stop gracefully shuts down the HTTP server.
func (g *Gateway) Stop(ctx context.Context) error {
	g.logger.Info("gateway stopping...")
	return g.server.Shutdown(ctx)
}
