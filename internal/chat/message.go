// Package chat is the persistence boundary for channel messages. The
// coordinator never reads or writes here; the HTTP and socket handlers
// commit a write through Service, which then hands the finalized
// record to the relay for fan-out.
package chat

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// MaxContentLength is the longest accepted message body.
const MaxContentLength = 2000

// Message is one channel message record.
type Message struct {
	ID        string     `json:"id"`
	ChannelID string     `json:"channelId"`
	UserID    string     `json:"userId,omitempty"`
	Username  string     `json:"username,omitempty"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`

	// Reactions maps emoji to the user ids that toggled it on.
	Reactions map[string][]string `json:"reactions,omitempty"`

	// ReadBy lists the user ids that have read receipts recorded.
	ReadBy []string `json:"readBy,omitempty"`
}

// clone returns a deep copy so stored records never alias what callers
// hold while the relay is marshalling them.
func (m *Message) clone() *Message {
	c := *m
	if m.Reactions != nil {
		c.Reactions = make(map[string][]string, len(m.Reactions))
		for emoji, users := range m.Reactions {
			c.Reactions[emoji] = append([]string(nil), users...)
		}
	}
	c.ReadBy = append([]string(nil), m.ReadBy...)
	return &c
}

// hasReaction reports whether the user already toggled the emoji on.
func (m *Message) hasReaction(emoji, userID string) bool {
	for _, u := range m.Reactions[emoji] {
		if u == userID {
			return true
		}
	}
	return false
}

// toggleReaction flips the user's reaction and reports the action
// taken, "added" or "removed".
func (m *Message) toggleReaction(emoji, userID string) string {
	if m.hasReaction(emoji, userID) {
		users := m.Reactions[emoji]
		next := make([]string, 0, len(users)-1)
		for _, u := range users {
			if u != userID {
				next = append(next, u)
			}
		}
		if len(next) == 0 {
			delete(m.Reactions, emoji)
		} else {
			m.Reactions[emoji] = next
		}
		return ActionRemoved
	}
	if m.Reactions == nil {
		m.Reactions = make(map[string][]string)
	}
	m.Reactions[emoji] = append(m.Reactions[emoji], userID)
	return ActionAdded
}

// markRead records a read receipt, once per user.
func (m *Message) markRead(userID string) bool {
	for _, u := range m.ReadBy {
		if u == userID {
			return false
		}
	}
	m.ReadBy = append(m.ReadBy, userID)
	return true
}

// Reaction toggle actions.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

func generateMessageID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
