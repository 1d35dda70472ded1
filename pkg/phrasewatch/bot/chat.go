// Package bot implements the chat side of the service: the per-channel
// thread directory and the orchestrator that turns inbound chat messages into
// assistant runs, resolving phrase tool calls against the shared registry.
package bot

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"phrasewatch/pkg/phrasewatch/assistant"
	"phrasewatch/pkg/phrasewatch/conversations"
	"phrasewatch/pkg/phrasewatch/phrases"
)

// AssistantClient is the assistant-service surface the orchestrator needs.
type AssistantClient interface {
	ThreadCreator
	AddUserMessage(ctx context.Context, threadID, text string) error
	StreamRun(ctx context.Context, threadID string, onMessage assistant.MessageHandler) (*assistant.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []assistant.ToolOutput, onMessage assistant.MessageHandler) (*assistant.Run, error)
}

// Messenger delivers assistant replies back to the originating channel.
type Messenger interface {
	SendMessage(ctx context.Context, channelID, text string) error
}

// ChatHandler processes message.new webhook events.
type ChatHandler struct {
	assistant AssistantClient
	messenger Messenger
	threads   *ThreadDirectory
	registry  *phrases.Registry
	logger    *slog.Logger
}

// NewChatHandler creates the orchestrator. The thread directory is owned by
// the handler and backed by the assistant client.
func NewChatHandler(ac AssistantClient, m Messenger, registry *phrases.Registry, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		assistant: ac,
		messenger: m,
		threads:   NewThreadDirectory(ac),
		registry:  registry,
		logger:    logger.With("component", "bot"),
	}
}

// Threads exposes the per-channel thread directory.
func (h *ChatHandler) Threads() *ThreadDirectory { return h.threads }

// runTurn is the bookkeeping for one inbound message: the originating event
// and the reply deliveries spawned while the run streams. Deliveries are
// joined at the end of the turn; an individual failure is logged and does not
// affect its siblings or the turn.
type runTurn struct {
	event  *conversations.MessageNewEvent
	logger *slog.Logger
	wg     sync.WaitGroup
}

func (t *runTurn) deliver(ctx context.Context, m Messenger, text string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		channelID := t.event.Data.Channel.ChannelID
		if err := m.SendMessage(ctx, channelID, text); err != nil {
			t.logger.Error("reply delivery failed", "channel", channelID, "error", err)
		}
	}()
}

func (t *runTurn) wait() { t.wg.Wait() }

// HandleMessageNew runs one chat turn: admission filter, thread resolution,
// message append, then the streamed run with its tool-resolution loop.
func (h *ChatHandler) HandleMessageNew(ctx context.Context, event *conversations.MessageNewEvent) error {
	if !h.processable(event) {
		return nil
	}

	turn := &runTurn{
		event: event,
		logger: h.logger.With(
			"turn", uuid.NewString(),
			"channel", event.Data.Channel.ChannelID,
		),
	}

	threadID, err := h.threads.GetOrCreate(ctx, event.Data.Channel.ChannelID)
	if err != nil {
		return err
	}

	if err := h.assistant.AddUserMessage(ctx, threadID, event.Data.Message.Text); err != nil {
		return err
	}

	onMessage := func(text string) { turn.deliver(ctx, h.messenger, text) }

	run, err := h.assistant.StreamRun(ctx, threadID, onMessage)

	// Resolve tool calls and resume until the run needs no further action.
	for err == nil && run.RequiresToolOutputs() {
		outputs := h.resolveToolCalls(event.Data.Message.User, run.ToolCalls())
		turn.logger.Debug("submitting tool outputs", "run", run.ID, "count", len(outputs))
		run, err = h.assistant.SubmitToolOutputs(ctx, run.ThreadID, run.ID, outputs, onMessage)
	}

	// Join spawned deliveries even when the run failed mid-way; replies that
	// already streamed out should still land.
	turn.wait()

	if err != nil {
		return err
	}
	turn.logger.Info("chat turn complete", "run", run.ID, "status", run.Status)
	return nil
}

// processable is the admission filter: direct (≤2 member) channels only, no
// bot or self messages, regular messages with text.
func (h *ChatHandler) processable(event *conversations.MessageNewEvent) bool {
	if event.Data.Channel.MemberCount > 2 {
		return false
	}
	user := event.Data.Message.User
	if user.Bot || (event.BotID != "" && event.BotID == user.ID) {
		return false
	}
	if event.Data.Message.Type != "regular" {
		return false
	}
	if event.Data.Message.Text == "" {
		return false
	}
	return true
}
