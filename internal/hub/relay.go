package hub

// Relay fans out message mutations that the persistence layer has
// already committed. Delivery is best-effort and unacknowledged: if no
// connections are live when an event fires it is lost, and clients
// reconcile through the history read path. Events go to every
// connection, not just channel members; clients filter by channel id.
type Relay struct {
	registry *Registry
	calls    *CallManager
}

// NewRelay creates a Relay. calls provides the channel-scoped subgroup
// used by MessageEdited.
func NewRelay(registry *Registry, calls *CallManager) *Relay {
	return &Relay{registry: registry, calls: calls}
}

// MessageCreated broadcasts a newly stored message to all connections.
func (r *Relay) MessageCreated(msg any) {
	r.registry.Broadcast(EventReceiveMessage, msg)
}

// MessageEdited broadcasts an edited message. Members of the channel's
// call room receive it twice: once through the room-scoped emission
// and once through the global one. Consumers deduplicate by message id
// plus edit timestamp, so both emissions are kept.
func (r *Relay) MessageEdited(channelID string, msg any) {
	for _, connID := range r.calls.RoomMemberIDs(channelID) {
		r.registry.SendTo(connID, EventMessageEdit, msg)
	}
	r.registry.Broadcast(EventMessageEdit, msg)
}

// MessageDeleted broadcasts a deletion to all connections.
func (r *Relay) MessageDeleted(id, channelID string) {
	r.registry.Broadcast(EventMessageDelete, DeletePayload{
		ID:        id,
		ChannelID: channelID,
	})
}

// ReactionToggled broadcasts a reaction toggle to all connections.
// Events are relayed in the order they arrive, never coalesced.
func (r *Relay) ReactionToggled(p ReactionPayload) {
	r.registry.Broadcast(EventMessageReaction, p)
}

// ReadReceipts broadcasts recorded read receipts to all connections.
func (r *Relay) ReadReceipts(p ReadPayload) {
	r.registry.Broadcast(EventMessagesRead, p)
}
