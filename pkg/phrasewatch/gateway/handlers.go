package gateway

import (
	"encoding/json"
	"net/http"

	"phrasewatch/pkg/phrasewatch/conversations"
)

type ackResponse struct {
	Message string `json:"message"`
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("writing response", "error", err)
	}
}

func (g *Gateway) ackSuccess(w http.ResponseWriter) {
	g.writeJSON(w, http.StatusOK, ackResponse{Message: "Webhook processed successfully"})
}

func (g *Gateway) ackError(w http.ResponseWriter) {
	g.writeJSON(w, http.StatusInternalServerError, ackResponse{Message: "Internal server error"})
}

func (g *Gateway) badRequest(w http.ResponseWriter) {
	g.writeJSON(w, http.StatusBadRequest, ackResponse{Message: "Invalid request body"})
}

// handleChatWebhook acknowledges every chat webhook; only message.new events
// reach the chat handler, everything else is ignored.
func (g *Gateway) handleChatWebhook(w http.ResponseWriter, r *http.Request) {
	var event conversations.MessageNewEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		g.logger.Warn("undecodable chat webhook", "error", err)
		g.badRequest(w)
		return
	}

	if event.Type == conversations.EventMessageNew {
		if err := g.chat.HandleMessageNew(r.Context(), &event); err != nil {
			g.logger.Error("chat webhook failed",
				"channel", event.Data.Channel.ChannelID, "error", err)
			g.ackError(w)
			return
		}
	}
	g.ackSuccess(w)
}

// handleCallWebhook routes both call and conference transcription kinds to
// the matcher.
func (g *Gateway) handleCallWebhook(w http.ResponseWriter, r *http.Request) {
	var event conversations.TranscriptionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		g.logger.Warn("undecodable call webhook", "error", err)
		g.badRequest(w)
		return
	}

	if event.Type == conversations.EventCallTranscription ||
		event.Type == conversations.EventConferenceTranscription {
		if err := g.calls.HandleTranscription(r.Context(), &event); err != nil {
			g.logger.Error("call webhook failed", "error", err)
			g.ackError(w)
			return
		}
	}
	g.ackSuccess(w)
}
