package booking

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func at(h int) time.Time {
	return base.Add(time.Duration(h) * time.Hour)
}

func TestAddRoomAndList(t *testing.T) {
	m := NewManager()

	m.AddRoom("Jupiter", "floor 3", 8)
	m.AddRoom("Apollo", "floor 1", 4)

	rooms := m.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	// Sorted by name.
	if rooms[0].Name != "Apollo" || rooms[1].Name != "Jupiter" {
		t.Errorf("expected [Apollo, Jupiter], got [%s, %s]", rooms[0].Name, rooms[1].Name)
	}
	if rooms[0].ID == "" {
		t.Error("expected a generated room ID")
	}
}

func TestBook(t *testing.T) {
	m := NewManager()
	room := m.AddRoom("Apollo", "", 4)

	b, err := m.Book(room.ID, "user1", "standup", at(0), at(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID == "" {
		t.Error("expected a generated booking ID")
	}
	if b.RoomID != room.ID {
		t.Errorf("expected room %s, got %s", room.ID, b.RoomID)
	}
}

func TestBookUnknownRoom(t *testing.T) {
	m := NewManager()

	if _, err := m.Book("unknown", "user1", "", at(0), at(1)); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestBookInvalidRange(t *testing.T) {
	m := NewManager()
	room := m.AddRoom("Apollo", "", 4)

	if _, err := m.Book(room.ID, "user1", "", at(1), at(0)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for inverted range, got %v", err)
	}
	if _, err := m.Book(room.ID, "user1", "", at(1), at(1)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange for empty range, got %v", err)
	}
}

func TestBookOverlapRejected(t *testing.T) {
	m := NewManager()
	room := m.AddRoom("Apollo", "", 4)

	if _, err := m.Book(room.ID, "user1", "", at(0), at(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"identical", at(0), at(2)},
		{"overlaps start", at(1), at(3)},
		{"contained", base.Add(30 * time.Minute), at(1)},
		{"contains", base.Add(-1 * time.Hour), at(3)},
	}
	for _, tc := range cases {
		if _, err := m.Book(room.ID, "user2", "", tc.start, tc.end); !errors.Is(err, ErrConflict) {
			t.Errorf("%s: expected ErrConflict, got %v", tc.name, err)
		}
	}
}

func TestBookBackToBackAllowed(t *testing.T) {
	m := NewManager()
	room := m.AddRoom("Apollo", "", 4)

	if _, err := m.Book(room.ID, "user1", "", at(0), at(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Shared endpoint does not conflict: intervals are half-open.
	if _, err := m.Book(room.ID, "user2", "", at(1), at(2)); err != nil {
		t.Errorf("expected back-to-back booking to succeed, got %v", err)
	}
}

func TestBookRoomIsolation(t *testing.T) {
	m := NewManager()
	a := m.AddRoom("Apollo", "", 4)
	j := m.AddRoom("Jupiter", "", 8)

	if _, err := m.Book(a.ID, "user1", "", at(0), at(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The same slot in a different room is free.
	if _, err := m.Book(j.ID, "user2", "", at(0), at(1)); err != nil {
		t.Errorf("expected booking in other room to succeed, got %v", err)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	m := NewManager()
	room := m.AddRoom("Apollo", "", 4)
	b, _ := m.Book(room.ID, "user1", "", at(0), at(1))

	if !m.Cancel(b.ID) {
		t.Fatal("expected cancel to succeed")
	}
	if m.Cancel(b.ID) {
		t.Fatal("expected second cancel to fail")
	}
	if _, err := m.Book(room.ID, "user2", "", at(0), at(1)); err != nil {
		t.Errorf("expected freed slot to be bookable, got %v", err)
	}
}

func TestBookingsSortedAndFiltered(t *testing.T) {
	m := NewManager()
	a := m.AddRoom("Apollo", "", 4)
	j := m.AddRoom("Jupiter", "", 8)

	m.Book(a.ID, "user1", "later", at(2), at(3))
	m.Book(a.ID, "user1", "earlier", at(0), at(1))
	m.Book(j.ID, "user2", "other", at(0), at(1))

	all := m.Bookings("")
	if len(all) != 3 {
		t.Fatalf("expected 3 bookings, got %d", len(all))
	}

	forA := m.Bookings(a.ID)
	if len(forA) != 2 {
		t.Fatalf("expected 2 bookings for Apollo, got %d", len(forA))
	}
	if forA[0].Title != "earlier" || forA[1].Title != "later" {
		t.Errorf("expected sorted by start, got [%s, %s]", forA[0].Title, forA[1].Title)
	}
}
