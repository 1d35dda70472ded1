// Package transcription watches live call and conference transcript
// fragments for registered trigger phrases and alerts the phrase owner over
// a direct channel.
package transcription

import (
	"context"
	"fmt"
	"log/slog"

	"phrasewatch/pkg/phrasewatch/conversations"
	"phrasewatch/pkg/phrasewatch/phrases"
)

// Messenger resolves direct channels and delivers alert messages.
type Messenger interface {
	SendMessage(ctx context.Context, channelID, text string) error
	GetOrCreateDirectChannel(ctx context.Context, email string) (string, error)
}

// Matcher processes live-transcription webhook events.
type Matcher struct {
	registry  *phrases.Registry
	messenger Messenger
	logger    *slog.Logger
}

// NewMatcher creates a matcher reading the shared phrase registry.
func NewMatcher(registry *phrases.Registry, messenger Messenger, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		registry:  registry,
		messenger: messenger,
		logger:    logger.With("component", "transcription"),
	}
}

// HandleTranscription matches a finalized fragment against the registry and
// alerts the owner of the first matching phrase. Interim fragments are
// dropped so a transcript that is still stabilizing cannot alert twice.
// Delivery failures propagate to the caller; there is no retry.
func (m *Matcher) HandleTranscription(ctx context.Context, event *conversations.TranscriptionEvent) error {
	if !event.Data.Chunk.IsFinal {
		return nil
	}

	match := m.registry.MatchText(event.Data.Chunk.Text)
	if match == nil {
		return nil
	}

	channelID, err := m.messenger.GetOrCreateDirectChannel(ctx, match.Owner.Email)
	if err != nil {
		return fmt.Errorf("resolving direct channel for %q: %w", match.Owner.Email, err)
	}

	alert := fmt.Sprintf("🚨 %s\n\nText: %s\nMatch: %s",
		event.Data.ParticipantLabel(), event.Data.Chunk.Text, match.Phrase)
	if err := m.messenger.SendMessage(ctx, channelID, alert); err != nil {
		return fmt.Errorf("sending alert: %w", err)
	}

	m.logger.Info("phrase alert sent", "phrase", match.Phrase, "owner", match.Owner.ID)
	return nil
}
