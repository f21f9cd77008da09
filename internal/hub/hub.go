// Package hub implements the real-time coordinator: it owns the live
// connection set, derives per-user presence, relays typing indicators
// and committed message mutations, and manages call session lifecycle
// with signaling relay. Nothing here is persisted; a process restart
// clears all of it and clients re-identify and re-join.
package hub

// Hub wires the coordinator's components around one shared registry.
type Hub struct {
	Registry *Registry
	Presence *Presence
	Typing   *Typing
	Calls    *CallManager
	Relay    *Relay
}

// New creates a Hub with empty tables.
func New() *Hub {
	registry := NewRegistry()
	calls := NewCallManager(registry)
	return &Hub{
		Registry: registry,
		Presence: NewPresence(registry),
		Typing:   NewTyping(registry),
		Calls:    calls,
		Relay:    NewRelay(registry, calls),
	}
}

// Connect allocates an unidentified connection for the sink.
func (h *Hub) Connect(sink Sink) *Conn {
	return h.Registry.Add(sink)
}

// Disconnect removes the connection and cascades cleanup through the
// call and presence tables. The cascade runs exactly once: a second
// Disconnect for the same id finds nothing in the registry and stops.
func (h *Hub) Disconnect(id string) {
	c := h.Registry.Remove(id)
	if c == nil {
		return
	}
	if room := c.Room(); room != "" {
		h.Calls.Leave(room, c)
	}
	h.Presence.Disconnect(c)
}
