package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ethanmarsh/teamline/internal/booking"
	"github.com/ethanmarsh/teamline/internal/chat"
)

// defaultHistoryLimit is the number of messages returned when the
// client does not ask for a specific count.
const defaultHistoryLimit = 50

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"connections":  s.manager.Stats(),
		"online_users": s.hub.Presence.Count(),
		"active_calls": s.hub.Calls.ActiveCount(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	// An empty or absent body mints a fresh identity.
	json.NewDecoder(r.Body).Decode(&req)
	writeJSON(w, http.StatusOK, s.identities.GetOrCreate(req.Token))
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	msgs := s.messages.Recent(r.PathValue("channel"), limit)
	if msgs == nil {
		msgs = []*chat.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	msg, err := s.messages.Create(r.PathValue("channel"), req.UserID, req.Username, req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channelId"`
		Content   string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChannelID == "" {
		writeError(w, http.StatusBadRequest, "channelId is required")
		return
	}
	msg, err := s.messages.Edit(req.ChannelID, r.PathValue("id"), req.Content)
	switch {
	case errors.Is(err, chat.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, msg)
	}
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "channel_id is required")
		return
	}
	if err := s.messages.Delete(channelID, r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleReaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channelId"`
		Emoji     string `json:"emoji"`
		UserID    string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChannelID == "" || req.Emoji == "" {
		writeError(w, http.StatusBadRequest, "channelId and emoji are required")
		return
	}
	action, err := s.messages.ToggleReaction(req.ChannelID, r.PathValue("id"), req.Emoji, req.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"action": action})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageIDs     []string `json:"messageIds"`
		ReadBy         string   `json:"readBy"`
		ReadByUsername string   `json:"readByUsername"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.MessageIDs) == 0 {
		writeError(w, http.StatusBadRequest, "messageIds are required")
		return
	}
	s.messages.MarkRead(r.PathValue("channel"), req.MessageIDs, req.ReadBy, req.ReadByUsername)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bookings.Rooms())
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Location string `json:"location"`
		Capacity int    `json:"capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	writeJSON(w, http.StatusCreated, s.bookings.AddRoom(req.Name, req.Location, req.Capacity))
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bookings.Bookings(r.URL.Query().Get("room_id")))
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomID string    `json:"roomId"`
		UserID string    `json:"userId"`
		Title  string    `json:"title"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RoomID == "" {
		writeError(w, http.StatusBadRequest, "roomId is required")
		return
	}
	b, err := s.bookings.Book(req.RoomID, req.UserID, req.Title, req.Start, req.End)
	switch {
	case errors.Is(err, booking.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusCreated, b)
	}
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	if !s.bookings.Cancel(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
