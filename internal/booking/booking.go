// Package booking manages meeting rooms and their reservations. It is
// independent of the real-time coordinator: plain request/response
// CRUD over process-owned, in-memory tables.
package booking

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrRoomNotFound means the room id is unknown.
	ErrRoomNotFound = errors.New("booking: room not found")

	// ErrInvalidRange means the booking's end is not after its start.
	ErrInvalidRange = errors.New("booking: end must be after start")

	// ErrConflict means the slot overlaps an existing booking.
	ErrConflict = errors.New("booking: time slot already booked")
)

// Room is a bookable meeting room.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// Booking reserves a room for a half-open interval [Start, End).
type Booking struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// overlaps reports whether two half-open intervals intersect.
func (b *Booking) overlaps(start, end time.Time) bool {
	return start.Before(b.End) && b.Start.Before(end)
}

// Manager manages rooms and bookings.
type Manager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	bookings map[string]*Booking
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		rooms:    make(map[string]*Room),
		bookings: make(map[string]*Booking),
	}
}

// AddRoom registers a new meeting room.
func (m *Manager) AddRoom(name, location string, capacity int) *Room {
	r := &Room{
		ID:        generateID(),
		Name:      name,
		Location:  location,
		Capacity:  capacity,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.rooms[r.ID] = r
	m.mu.Unlock()
	return r
}

// Room returns a room by id, or nil if not found.
func (m *Manager) Room(id string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[id]
}

// Rooms returns all rooms sorted by name.
func (m *Manager) Rooms() []*Room {
	m.mu.RLock()
	result := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		result = append(result, r)
	}
	m.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Book reserves a room. It rejects unknown rooms, empty or inverted
// time ranges, and any overlap with an existing booking for the same
// room. Back-to-back bookings sharing an endpoint are allowed.
func (m *Manager) Book(roomID, userID, title string, start, end time.Time) (*Booking, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rooms[roomID] == nil {
		return nil, ErrRoomNotFound
	}
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.overlaps(start, end) {
			return nil, ErrConflict
		}
	}

	b := &Booking{
		ID:        generateID(),
		RoomID:    roomID,
		UserID:    userID,
		Title:     title,
		Start:     start,
		End:       end,
		CreatedAt: time.Now(),
	}
	m.bookings[b.ID] = b
	return b, nil
}

// Cancel removes a booking by id. Returns false if it does not exist.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return false
	}
	delete(m.bookings, id)
	return true
}

// Bookings returns a room's bookings sorted by start time. An empty
// roomID returns every booking.
func (m *Manager) Bookings(roomID string) []*Booking {
	m.mu.RLock()
	result := make([]*Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		if roomID == "" || b.RoomID == roomID {
			result = append(result, b)
		}
	}
	m.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Start.Before(result[j].Start) })
	return result
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
