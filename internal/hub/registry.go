package hub

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// Sink is the outbound half of a connection. The websocket layer
// implements it; coordinator tests substitute an in-memory recorder.
// Send is best-effort: a false return means the payload was dropped.
type Sink interface {
	Send(event string, payload any) bool
}

// Conn is the registry's record of one live connection. Identity is
// optional until the client identifies; a connection holds membership
// in at most one call room.
type Conn struct {
	ID   string
	sink Sink

	mu      sync.Mutex
	userID  string
	profile json.RawMessage
	room    string
}

// Send forwards an event to the connection's sink.
func (c *Conn) Send(event string, payload any) bool {
	return c.sink.Send(event, payload)
}

// Identity returns the bound user id and profile. The user id is empty
// until the connection has identified.
func (c *Conn) Identity() (string, json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.profile
}

func (c *Conn) setIdentity(userID string, profile json.RawMessage) {
	c.mu.Lock()
	c.userID = userID
	c.profile = profile
	c.mu.Unlock()
}

// Room returns the channel id of the call room this connection is in,
// or "" if it is not in a call.
func (c *Conn) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Conn) setRoom(channelID string) {
	c.mu.Lock()
	c.room = channelID
	c.mu.Unlock()
}

// clearRoom resets the room only if it still names channelID, so a
// leave for a superseded membership cannot clobber a newer join.
func (c *Conn) clearRoom(channelID string) {
	c.mu.Lock()
	if c.room == channelID {
		c.room = ""
	}
	c.mu.Unlock()
}

// Registry owns the set of live connections. All coordinator fan-out
// goes through it.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

// Add allocates an unidentified connection for the given sink.
func (r *Registry) Add(sink Sink) *Conn {
	c := &Conn{ID: generateConnID(), sink: sink}
	r.mu.Lock()
	r.conns[c.ID] = c
	r.mu.Unlock()
	return c
}

// Remove deletes a connection and returns its record so callers can
// cascade cleanup. Returns nil if the id is unknown, which makes a
// second remove for the same id a no-op.
func (r *Registry) Remove(id string) *Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[id]
	if !ok {
		return nil
	}
	delete(r.conns, id)
	return c
}

// Get returns the connection with the given id, or nil.
func (r *Registry) Get(id string) *Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conns[id]
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Broadcast sends an event to every live connection.
func (r *Registry) Broadcast(event string, payload any) {
	r.BroadcastExcept("", event, payload)
}

// BroadcastExcept sends an event to every live connection except the
// one with the given id.
func (r *Registry) BroadcastExcept(exceptID, event string, payload any) {
	r.mu.RLock()
	// Copy the set so sends happen outside the lock.
	targets := make([]*Conn, 0, len(r.conns))
	for id, c := range r.conns {
		if id == exceptID {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		c.Send(event, payload)
	}
}

// SendTo delivers an event to a single connection. Returns false if
// the connection no longer exists; the event is silently dropped.
func (r *Registry) SendTo(id, event string, payload any) bool {
	r.mu.RLock()
	c := r.conns[id]
	r.mu.RUnlock()
	if c == nil {
		return false
	}
	return c.Send(event, payload)
}

func generateConnID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
