package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/ethanmarsh/teamline/internal/chat"
	"github.com/ethanmarsh/teamline/internal/hub"
	"nhooyr.io/websocket"
)

// Handler upgrades HTTP requests to WebSockets and runs the per-client
// event loop, dispatching inbound envelopes into the coordinator. The
// protocol has no acknowledgment channel: malformed or incomplete
// payloads are logged and dropped, never answered.
type Handler struct {
	hub      *hub.Hub
	manager  *ConnManager
	messages *chat.Service
}

// NewHandler creates a WebSocket Handler. messages may be nil, in
// which case send_message events are dropped.
func NewHandler(h *hub.Hub, manager *ConnManager, messages *chat.Service) *Handler {
	return &Handler{
		hub:      h,
		manager:  manager,
		messages: messages,
	}
}

// identifyPayload is the inbound body of user:online.
type identifyPayload struct {
	UserID  string          `json:"userId"`
	Profile json.RawMessage `json:"profile"`
}

// typingStartPayload is the inbound body of typing:start.
type typingStartPayload struct {
	ChannelID string          `json:"channelId"`
	User      json.RawMessage `json:"user"`
}

// typingStopPayload is the inbound body of typing:stop.
type typingStopPayload struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
}

// sendMessagePayload is the inbound body of send_message.
type sendMessagePayload struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Content   string `json:"content"`
}

// callJoinPayload is the inbound body of call:join.
type callJoinPayload struct {
	ChannelID string          `json:"channelId"`
	User      json.RawMessage `json:"user"`
}

// callSignalPayload is the inbound body of call:signal.
type callSignalPayload struct {
	ChannelID          string          `json:"channelId"`
	TargetConnectionID string          `json:"targetConnectionId"`
	Signal             json.RawMessage `json:"signal"`
}

// callLeavePayload is the inbound body of call:leave.
type callLeavePayload struct {
	ChannelID string `json:"channelId"`
}

// ServeHTTP upgrades the HTTP connection to a WebSocket, registers the
// client with the coordinator, and runs its read loop. Disconnect is
// the only cancellation signal: when the loop exits, the cascade runs
// the same cleanup path as an explicit leave, exactly once.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow all origins in dev; tighten in production.
	})
	if err != nil {
		log.Printf("ws: accept error: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	client := &Client{conn: conn}
	connCtx := h.manager.Add(client)

	hc := h.hub.Connect(client)
	client.id = hc.ID

	defer h.manager.Remove(client)
	defer h.hub.Disconnect(hc.ID)

	h.readLoop(r.Context(), connCtx, client, hc)
}

// readLoop reads envelopes from the client until the connection closes
// or the connection manager cancels connCtx.
func (h *Handler) readLoop(ctx context.Context, connCtx context.Context, client *Client, hc *hub.Conn) {
	for {
		select {
		case <-connCtx.Done():
			return
		default:
		}

		_, data, err := client.conn.Read(ctx)
		if err != nil {
			// Normal close or context cancelled.
			return
		}

		// Mark activity so idle reaping doesn't close active connections.
		h.manager.TouchActivity(client)

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("ws: invalid envelope from %s: %v", client.id, err)
			continue
		}

		h.dispatch(env, hc)
	}
}

// dispatch routes one inbound envelope to the coordinator component
// that handles it. Unknown event types are ignored.
func (h *Handler) dispatch(env Envelope, hc *hub.Conn) {
	switch env.Type {
	case hub.EventUserOnline:
		var p identifyPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.UserID == "" {
			log.Printf("ws: dropping malformed %s from %s", env.Type, hc.ID)
			return
		}
		h.hub.Presence.Identify(hc, p.UserID, p.Profile)

	case hub.EventTypingStart:
		var p typingStartPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ChannelID == "" {
			log.Printf("ws: dropping malformed %s from %s", env.Type, hc.ID)
			return
		}
		h.hub.Typing.Start(hc, p.ChannelID, p.User)

	case hub.EventTypingStop:
		var p typingStopPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ChannelID == "" {
			log.Printf("ws: dropping malformed %s from %s", env.Type, hc.ID)
			return
		}
		h.hub.Typing.Stop(hc, p.ChannelID, p.UserID)

	case "send_message":
		if h.messages == nil {
			return
		}
		var p sendMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ChannelID == "" {
			log.Printf("ws: dropping malformed %s from %s", env.Type, hc.ID)
			return
		}
		if _, err := h.messages.Create(p.ChannelID, p.UserID, p.Username, p.Content); err != nil {
			log.Printf("ws: dropping send_message from %s: %v", hc.ID, err)
		}

	case "call:join":
		var p callJoinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ChannelID == "" {
			log.Printf("ws: dropping malformed %s from %s", env.Type, hc.ID)
			return
		}
		h.hub.Calls.Join(p.ChannelID, hc, p.User)

	case hub.EventCallSignal:
		var p callSignalPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.TargetConnectionID == "" {
			log.Printf("ws: dropping malformed %s from %s", env.Type, hc.ID)
			return
		}
		h.hub.Calls.Signal(p.ChannelID, hc, p.TargetConnectionID, p.Signal)

	case "call:leave":
		var p callLeavePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.ChannelID == "" {
			log.Printf("ws: dropping malformed %s from %s", env.Type, hc.ID)
			return
		}
		h.hub.Calls.Leave(p.ChannelID, hc)
	}
}
