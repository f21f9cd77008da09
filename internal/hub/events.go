package hub

import "encoding/json"

// Wire event names. Inbound events carry the same names where the
// protocol reuses them (user:online is both the identify request and
// the resulting broadcast).
const (
	EventUserOnline  = "user:online"
	EventUsersOnline = "users:online"
	EventUserOffline = "user:offline"

	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"

	EventReceiveMessage  = "receive_message"
	EventMessageEdit     = "message:edit"
	EventMessageDelete   = "message:delete"
	EventMessageReaction = "message:reaction"
	EventMessagesRead    = "messages:read"

	EventCallStarted              = "call:started"
	EventCallEnded                = "call:ended"
	EventCallExistingParticipants = "call:existing-participants"
	EventCallUserJoined           = "call:user-joined"
	EventCallUserLeft             = "call:user-left"
	EventCallSignal               = "call:signal"
)

// PresencePayload is the body of user:online and user:offline.
type PresencePayload struct {
	UserID  string          `json:"userId"`
	Profile json.RawMessage `json:"profile,omitempty"`
}

// TypingStartPayload is the body of typing:start.
type TypingStartPayload struct {
	ChannelID string          `json:"channelId"`
	User      json.RawMessage `json:"user"`
}

// TypingStopPayload is the body of typing:stop.
type TypingStopPayload struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
}

// DeletePayload is the body of message:delete.
type DeletePayload struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
}

// ReactionPayload is the body of message:reaction. Action is "added"
// or "removed".
type ReactionPayload struct {
	MessageID string `json:"messageId"`
	ChannelID string `json:"channelId"`
	Emoji     string `json:"emoji"`
	Action    string `json:"action"`
	User      string `json:"user,omitempty"`
}

// ReadPayload is the body of messages:read.
type ReadPayload struct {
	ChannelID      string   `json:"channelId"`
	MessageIDs     []string `json:"messageIds"`
	ReadBy         string   `json:"readBy"`
	ReadByUsername string   `json:"readByUsername"`
}

// CallStartedPayload is the body of call:started.
type CallStartedPayload struct {
	ChannelID string          `json:"channelId"`
	StartedBy json.RawMessage `json:"startedBy"`
	Kind      string          `json:"kind"`
}

// CallEndedPayload is the body of call:ended.
type CallEndedPayload struct {
	ChannelID string `json:"channelId"`
}

// CallParticipant describes one member of a call room. It is the body
// of call:user-joined and call:user-left, and the element type of
// call:existing-participants.
type CallParticipant struct {
	UserID       string          `json:"userId"`
	User         json.RawMessage `json:"user"`
	ConnectionID string          `json:"connectionId"`
}

// CallSignalPayload is the body of call:signal as delivered to the
// target connection. The signal itself is opaque to the coordinator.
type CallSignalPayload struct {
	From             json.RawMessage `json:"from"`
	FromConnectionID string          `json:"fromConnectionId"`
	Signal           json.RawMessage `json:"signal"`
}
