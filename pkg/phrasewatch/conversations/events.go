package conversations

// Webhook event kinds delivered to the two gateway endpoints.
const (
	EventMessageNew              = "message.new"
	EventCallTranscription       = "call.live_transcription"
	EventConferenceTranscription = "conference.live_transcription"
)

// User is a messaging-platform user reference as carried in webhook payloads.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Bot   bool   `json:"bot,omitempty"`
}

// Channel describes the channel a chat event originated in.
type Channel struct {
	ChannelID   string `json:"channelId"`
	MemberCount int    `json:"memberCount"`
}

// Message is one chat message inside a message.new event.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
	User User   `json:"user"`
}

// MessageNewEvent is the payload of a message.new chat webhook. BotID is the
// platform id of the bot the webhook is registered for, used to suppress the
// bot's own messages.
type MessageNewEvent struct {
	Type  string         `json:"type"`
	BotID string         `json:"botId"`
	Data  MessageNewData `json:"data"`
}

// MessageNewData carries the channel and message of a message.new event.
type MessageNewData struct {
	Channel Channel `json:"channel"`
	Message Message `json:"message"`
}

// Chunk is one transcript fragment. IsFinal marks it stable; interim chunks
// may still be revised by the transcription service.
type Chunk struct {
	IsFinal bool   `json:"isFinal"`
	Text    string `json:"text"`
}

// Participant is the call participant a transcript chunk belongs to.
type Participant struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// TranscriptionEvent is the payload of a live-transcription webhook, shared
// by call and conference events.
type TranscriptionEvent struct {
	Type string            `json:"type"`
	Data TranscriptionData `json:"data"`
}

// TranscriptionData carries the chunk and optional participant.
type TranscriptionData struct {
	Chunk       Chunk        `json:"chunk"`
	Participant *Participant `json:"participant,omitempty"`
}

// ParticipantLabel returns the display label for a transcript's participant:
// name, then phone, then "unknown".
func (d TranscriptionData) ParticipantLabel() string {
	if d.Participant != nil {
		if d.Participant.Name != "" {
			return d.Participant.Name
		}
		if d.Participant.Phone != "" {
			return d.Participant.Phone
		}
	}
	return "unknown"
}
