package chat

import (
	"sync"
	"time"
)

// MessageStore is the interface for message history backends.
type MessageStore interface {
	Append(msg *Message)
	Get(channelID, id string) *Message
	Edit(channelID, id, content string) *Message
	Delete(channelID, id string) bool
	ToggleReaction(channelID, id, emoji, userID string) (string, *Message)
	MarkRead(channelID string, messageIDs []string, userID string) int
	Recent(channelID string, n int) []*Message
	Count(channelID string) int
}

// Store keeps recent messages per channel in memory.
type Store struct {
	mu       sync.RWMutex
	channels map[string][]*Message
	maxSize  int
}

// NewStore creates a store that retains up to maxSize messages per channel.
func NewStore(maxSize int) *Store {
	return &Store{
		channels: make(map[string][]*Message),
		maxSize:  maxSize,
	}
}

// Append adds a message to the channel's history, trimming to maxSize.
func (s *Store) Append(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := append(s.channels[msg.ChannelID], msg.clone())
	if len(msgs) > s.maxSize {
		msgs = msgs[len(msgs)-s.maxSize:]
	}
	s.channels[msg.ChannelID] = msgs
}

// Get returns a copy of the message, or nil if not found.
func (s *Store) Get(channelID, id string) *Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m := s.find(channelID, id); m != nil {
		return m.clone()
	}
	return nil
}

// find must be called with the lock held.
func (s *Store) find(channelID, id string) *Message {
	for _, m := range s.channels[channelID] {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Edit replaces a message's content and stamps EditedAt. Returns a
// copy of the updated record, or nil if the message does not exist.
func (s *Store) Edit(channelID, id, content string) *Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(channelID, id)
	if m == nil {
		return nil
	}
	m.Content = content
	now := time.Now()
	m.EditedAt = &now
	return m.clone()
}

// Delete removes a message. Returns false if it does not exist.
func (s *Store) Delete(channelID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.channels[channelID]
	for i, m := range msgs {
		if m.ID == id {
			s.channels[channelID] = append(msgs[:i], msgs[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleReaction flips a user's reaction on a message. Returns the
// action taken and a copy of the updated record, or "" and nil if the
// message does not exist.
func (s *Store) ToggleReaction(channelID, id, emoji, userID string) (string, *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.find(channelID, id)
	if m == nil {
		return "", nil
	}
	action := m.toggleReaction(emoji, userID)
	return action, m.clone()
}

// MarkRead records read receipts for the user on the given messages.
// Returns the number of messages newly marked.
func (s *Store) MarkRead(channelID string, messageIDs []string, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range messageIDs {
		if m := s.find(channelID, id); m != nil && m.markRead(userID) {
			n++
		}
	}
	return n
}

// Recent returns copies of the last n messages for a channel.
func (s *Store) Recent(channelID string, n int) []*Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.channels[channelID]
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	result := make([]*Message, len(msgs))
	for i, m := range msgs {
		result[i] = m.clone()
	}
	return result
}

// Count returns the number of stored messages for a channel.
func (s *Store) Count(channelID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels[channelID])
}
