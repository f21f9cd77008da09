package hub

import (
	"encoding/json"
	"sort"
	"sync"
)

// presenceEntry records which connection currently carries a user's
// online status.
type presenceEntry struct {
	connID  string
	profile json.RawMessage
}

// Presence derives online/offline status from identify events. Storage
// is one slot per user: a later identify from another connection
// supersedes the earlier one, and only the connection named by the
// entry can remove it on disconnect.
type Presence struct {
	registry *Registry

	mu     sync.Mutex
	online map[string]presenceEntry
}

// NewPresence creates a Presence tracker backed by the registry.
func NewPresence(registry *Registry) *Presence {
	return &Presence{
		registry: registry,
		online:   make(map[string]presenceEntry),
	}
}

// Identify binds a user identity to a connection. Every call
// rebroadcasts user:online to all other connections, even when the
// user was already online, and answers the identifying connection with
// a snapshot of the user ids that were online before this call.
func (p *Presence) Identify(c *Conn, userID string, profile json.RawMessage) {
	c.setIdentity(userID, profile)

	p.mu.Lock()
	snapshot := make([]string, 0, len(p.online))
	for id := range p.online {
		snapshot = append(snapshot, id)
	}
	p.online[userID] = presenceEntry{connID: c.ID, profile: profile}
	p.mu.Unlock()
	sort.Strings(snapshot)

	p.registry.BroadcastExcept(c.ID, EventUserOnline, PresencePayload{
		UserID:  userID,
		Profile: profile,
	})
	c.Send(EventUsersOnline, snapshot)
}

// Disconnect removes the user's presence entry if this connection
// still owns it and broadcasts user:offline. If the entry was
// superseded by a later identify from another connection, nothing is
// removed and nothing is broadcast.
func (p *Presence) Disconnect(c *Conn) {
	userID, _ := c.Identity()
	if userID == "" {
		return
	}

	p.mu.Lock()
	entry, ok := p.online[userID]
	if !ok || entry.connID != c.ID {
		p.mu.Unlock()
		return
	}
	delete(p.online, userID)
	p.mu.Unlock()

	p.registry.BroadcastExcept(c.ID, EventUserOffline, PresencePayload{
		UserID:  userID,
		Profile: entry.profile,
	})
}

// Online reports whether a presence entry exists for the user.
func (p *Presence) Online(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.online[userID]
	return ok
}

// OnlineUsers returns the sorted ids of all online users.
func (p *Presence) OnlineUsers() []string {
	p.mu.Lock()
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	p.mu.Unlock()
	sort.Strings(ids)
	return ids
}

// Count returns the number of online users.
func (p *Presence) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.online)
}
