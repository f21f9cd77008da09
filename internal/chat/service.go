package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/ethanmarsh/teamline/internal/hub"
)

var (
	// ErrNotFound means the message does not exist in the channel.
	ErrNotFound = errors.New("chat: message not found")

	// ErrEmptyContent means the message body was blank.
	ErrEmptyContent = errors.New("chat: message content is required")

	// ErrContentTooLong means the message body exceeded MaxContentLength.
	ErrContentTooLong = errors.New("chat: message content too long")
)

// Service commits chat writes to the store and then hands the
// finalized record to the relay. This is the hand-off point between
// the persistence boundary and the coordinator: the relay is invoked
// only after a successful write.
type Service struct {
	store MessageStore
	relay *hub.Relay
}

// NewService creates a Service over the given store and relay.
func NewService(store MessageStore, relay *hub.Relay) *Service {
	return &Service{store: store, relay: relay}
}

// Create validates, stores, and broadcasts a new message.
func (s *Service) Create(channelID, userID, username, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	msg := &Message{
		ID:        generateMessageID(),
		ChannelID: channelID,
		UserID:    userID,
		Username:  username,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.store.Append(msg)
	s.relay.MessageCreated(msg)
	return msg, nil
}

// Edit updates a message's content and broadcasts the edit.
func (s *Service) Edit(channelID, id, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}

	msg := s.store.Edit(channelID, id, content)
	if msg == nil {
		return nil, ErrNotFound
	}
	s.relay.MessageEdited(channelID, msg)
	return msg, nil
}

// Delete removes a message and broadcasts the deletion.
func (s *Service) Delete(channelID, id string) error {
	if !s.store.Delete(channelID, id) {
		return ErrNotFound
	}
	s.relay.MessageDeleted(id, channelID)
	return nil
}

// ToggleReaction flips a user's reaction and broadcasts the toggle.
func (s *Service) ToggleReaction(channelID, id, emoji, userID string) (string, error) {
	action, _ := s.store.ToggleReaction(channelID, id, emoji, userID)
	if action == "" {
		return "", ErrNotFound
	}
	s.relay.ReactionToggled(hub.ReactionPayload{
		MessageID: id,
		ChannelID: channelID,
		Emoji:     emoji,
		Action:    action,
		User:      userID,
	})
	return action, nil
}

// MarkRead records read receipts and broadcasts them. The broadcast
// carries the requested message ids even when some were already read.
func (s *Service) MarkRead(channelID string, messageIDs []string, userID, username string) {
	s.store.MarkRead(channelID, messageIDs, userID)
	s.relay.ReadReceipts(hub.ReadPayload{
		ChannelID:      channelID,
		MessageIDs:     messageIDs,
		ReadBy:         userID,
		ReadByUsername: username,
	})
}

// Recent returns the last n messages for a channel.
func (s *Service) Recent(channelID string, n int) []*Message {
	return s.store.Recent(channelID, n)
}
