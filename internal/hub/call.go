package hub

import (
	"encoding/json"
	"sort"
	"sync"
)

// CallKindVideo is the only call kind this coordinator starts.
const CallKindVideo = "video"

// Session is the existence record for an active call. It exists iff
// the channel's call room has at least one member.
type Session struct {
	StartedBy json.RawMessage
	Kind      string

	// Participants mirrors the room size for observability. The
	// membership set is the source of truth.
	Participants int
}

type roomMember struct {
	userID string
	user   json.RawMessage
}

// channelRoom holds one channel's call-room membership. Its mutex
// serializes the mutate-then-enumerate sequence that decides first
// joiner and last leaver; without it two near-simultaneous joins can
// both observe a single member and double-fire call:started.
type channelRoom struct {
	mu      sync.Mutex
	members map[string]roomMember
	session *Session
}

// CallManager tracks one active call per channel and relays signaling
// payloads between specific connections. Operations on different
// channels never block each other.
type CallManager struct {
	registry *Registry

	mu       sync.RWMutex
	channels map[string]*channelRoom
}

// NewCallManager creates a CallManager backed by the registry.
func NewCallManager(registry *Registry) *CallManager {
	return &CallManager{
		registry: registry,
		channels: make(map[string]*channelRoom),
	}
}

// room returns the channel's room, creating it on first use. Room
// structs outlive their sessions so the per-channel lock can serialize
// a re-join racing the final leave.
func (m *CallManager) room(channelID string) *channelRoom {
	m.mu.RLock()
	r := m.channels[channelID]
	m.mu.RUnlock()
	if r != nil {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r = m.channels[channelID]; r == nil {
		r = &channelRoom{members: make(map[string]roomMember)}
		m.channels[channelID] = r
	}
	return r
}

// Join adds a connection to a channel's call room. The first member
// starts the session and fires call:started to every connection so
// idle channel viewers can ring. The joiner receives a snapshot of the
// other members; existing members are told who joined. A connection
// already in a different channel's call leaves it first.
func (m *CallManager) Join(channelID string, c *Conn, user json.RawMessage) {
	if prev := c.Room(); prev != "" && prev != channelID {
		m.Leave(prev, c)
	}

	r := m.room(channelID)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[c.ID] = roomMember{userID: userIDOf(user, c), user: user}
	c.setRoom(channelID)

	if r.session == nil && len(r.members) == 1 {
		r.session = &Session{StartedBy: user, Kind: CallKindVideo}
		m.registry.Broadcast(EventCallStarted, CallStartedPayload{
			ChannelID: channelID,
			StartedBy: user,
			Kind:      r.session.Kind,
		})
	}
	r.session.Participants = len(r.members)

	others := make([]CallParticipant, 0, len(r.members)-1)
	for id, mem := range r.members {
		if id == c.ID {
			continue
		}
		others = append(others, CallParticipant{
			UserID:       mem.userID,
			User:         mem.user,
			ConnectionID: id,
		})
	}
	sort.Slice(others, func(i, j int) bool { return others[i].ConnectionID < others[j].ConnectionID })
	c.Send(EventCallExistingParticipants, others)

	joined := CallParticipant{UserID: r.members[c.ID].userID, User: user, ConnectionID: c.ID}
	for id := range r.members {
		if id != c.ID {
			m.registry.SendTo(id, EventCallUserJoined, joined)
		}
	}
}

// Leave removes a connection from a channel's call room, notifying the
// remaining members first. The last leaver ends the session and fires
// call:ended to every connection. Unknown channels and non-members are
// no-ops, so the disconnect cascade can call this unconditionally.
func (m *CallManager) Leave(channelID string, c *Conn) {
	m.mu.RLock()
	r := m.channels[channelID]
	m.mu.RUnlock()
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mem, ok := r.members[c.ID]
	if !ok {
		return
	}

	left := CallParticipant{UserID: mem.userID, User: mem.user, ConnectionID: c.ID}
	for id := range r.members {
		if id != c.ID {
			m.registry.SendTo(id, EventCallUserLeft, left)
		}
	}

	delete(r.members, c.ID)
	c.clearRoom(channelID)

	if len(r.members) == 0 {
		if r.session != nil {
			r.session = nil
			m.registry.Broadcast(EventCallEnded, CallEndedPayload{ChannelID: channelID})
		}
		return
	}
	if r.session != nil {
		r.session.Participants = len(r.members)
	}
}

// Signal relays an opaque signaling payload to exactly the target
// connection. If the target has already disconnected the payload is
// silently dropped; the sender learns about the departure through its
// own call:user-left.
func (m *CallManager) Signal(channelID string, from *Conn, targetConnID string, signal json.RawMessage) {
	fromUser := m.memberUser(channelID, from)
	m.registry.SendTo(targetConnID, EventCallSignal, CallSignalPayload{
		From:             fromUser,
		FromConnectionID: from.ID,
		Signal:           signal,
	})
}

// memberUser returns the user object the sender joined the call with,
// falling back to its identify profile.
func (m *CallManager) memberUser(channelID string, c *Conn) json.RawMessage {
	m.mu.RLock()
	r := m.channels[channelID]
	m.mu.RUnlock()
	if r != nil {
		r.mu.Lock()
		mem, ok := r.members[c.ID]
		r.mu.Unlock()
		if ok {
			return mem.user
		}
	}
	_, profile := c.Identity()
	return profile
}

// ActiveSession returns a copy of the channel's session record, or nil
// when no call is active.
func (m *CallManager) ActiveSession(channelID string) *Session {
	m.mu.RLock()
	r := m.channels[channelID]
	m.mu.RUnlock()
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	s := *r.session
	return &s
}

// ActiveCount returns the number of channels with an active call.
func (m *CallManager) ActiveCount() int {
	m.mu.RLock()
	rooms := make([]*channelRoom, 0, len(m.channels))
	for _, r := range m.channels {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	n := 0
	for _, r := range rooms {
		r.mu.Lock()
		if r.session != nil {
			n++
		}
		r.mu.Unlock()
	}
	return n
}

// RoomSize returns the number of members in a channel's call room.
func (m *CallManager) RoomSize(channelID string) int {
	return len(m.RoomMemberIDs(channelID))
}

// RoomMemberIDs returns the connection ids in a channel's call room.
func (m *CallManager) RoomMemberIDs(channelID string) []string {
	m.mu.RLock()
	r := m.channels[channelID]
	m.mu.RUnlock()
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// userIDOf pulls the id field out of an opaque user object, falling
// back to the connection's bound identity.
func userIDOf(user json.RawMessage, c *Conn) string {
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(user, &ref); err == nil && ref.ID != "" {
		return ref.ID
	}
	userID, _ := c.Identity()
	return userID
}
