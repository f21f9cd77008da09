package hub

import "encoding/json"

// Typing relays typing indicators to everyone but the sender. It keeps
// no state and enforces no timeout: the coordinator never expires a
// typing indicator, the sender is expected to stop it or disconnect.
type Typing struct {
	registry *Registry
}

// NewTyping creates a Typing broadcaster backed by the registry.
func NewTyping(registry *Registry) *Typing {
	return &Typing{registry: registry}
}

// Start broadcasts typing:start to all connections except the sender.
// Repeated starts produce repeated broadcasts.
func (t *Typing) Start(c *Conn, channelID string, user json.RawMessage) {
	t.registry.BroadcastExcept(c.ID, EventTypingStart, TypingStartPayload{
		ChannelID: channelID,
		User:      user,
	})
}

// Stop broadcasts typing:stop to all connections except the sender.
func (t *Typing) Stop(c *Conn, channelID, userID string) {
	t.registry.BroadcastExcept(c.ID, EventTypingStop, TypingStopPayload{
		ChannelID: channelID,
		UserID:    userID,
	})
}
