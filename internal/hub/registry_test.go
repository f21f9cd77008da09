package hub

import (
	"encoding/json"
	"sync"
	"testing"
)

type recorded struct {
	event   string
	payload any
}

// recorder is an in-memory Sink for coordinator tests.
type recorder struct {
	mu     sync.Mutex
	events []recorded
}

func (r *recorder) Send(event string, payload any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recorded{event, payload})
	return true
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func (r *recorder) last(event string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].event == event {
			return r.events[i].payload, true
		}
	}
	return nil, false
}

func (r *recorder) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func rawUser(id string) json.RawMessage {
	return json.RawMessage(`{"id":"` + id + `","username":"` + id + `"}`)
}

func TestRegistryAddAllocatesUniqueIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Add(&recorder{})
	b := r.Add(&recorder{})

	if a.ID == "" || b.ID == "" {
		t.Fatal("expected non-empty connection ids")
	}
	if a.ID == b.ID {
		t.Fatal("expected unique connection ids")
	}
	if r.Count() != 2 {
		t.Fatalf("expected 2 connections, got %d", r.Count())
	}
}

func TestRegistryRemoveReturnsRecordOnce(t *testing.T) {
	r := NewRegistry()
	c := r.Add(&recorder{})

	if got := r.Remove(c.ID); got != c {
		t.Fatal("expected the removed record back")
	}
	if got := r.Remove(c.ID); got != nil {
		t.Fatal("expected nil on second remove")
	}
	if r.Count() != 0 {
		t.Fatalf("expected 0 connections, got %d", r.Count())
	}
}

func TestRegistryBroadcastReachesAll(t *testing.T) {
	r := NewRegistry()
	sinks := []*recorder{{}, {}, {}}
	for _, s := range sinks {
		r.Add(s)
	}

	r.Broadcast("ping", "pong")

	for i, s := range sinks {
		if s.count("ping") != 1 {
			t.Errorf("sink %d: expected 1 ping, got %d", i, s.count("ping"))
		}
	}
}

func TestRegistryBroadcastExceptSkipsSender(t *testing.T) {
	r := NewRegistry()
	sender := &recorder{}
	other := &recorder{}
	sc := r.Add(sender)
	r.Add(other)

	r.BroadcastExcept(sc.ID, "ping", nil)

	if sender.count("ping") != 0 {
		t.Error("sender should not receive its own broadcast")
	}
	if other.count("ping") != 1 {
		t.Errorf("expected 1 ping for other, got %d", other.count("ping"))
	}
}

func TestRegistrySendToUnknownConnection(t *testing.T) {
	r := NewRegistry()
	if r.SendTo("nope", "ping", nil) {
		t.Fatal("expected SendTo to report failure for unknown id")
	}
}

func TestConnIdentityBinding(t *testing.T) {
	r := NewRegistry()
	c := r.Add(&recorder{})

	if userID, _ := c.Identity(); userID != "" {
		t.Fatalf("expected unidentified connection, got user %q", userID)
	}

	c.setIdentity("u1", rawUser("u1"))
	userID, profile := c.Identity()
	if userID != "u1" {
		t.Errorf("expected user u1, got %q", userID)
	}
	if len(profile) == 0 {
		t.Error("expected profile to be stored")
	}
}

func TestConnClearRoomOnlyWhenMatching(t *testing.T) {
	r := NewRegistry()
	c := r.Add(&recorder{})

	c.setRoom("chan-1")
	c.clearRoom("chan-2")
	if c.Room() != "chan-1" {
		t.Fatalf("clearRoom for another channel should not clear, got %q", c.Room())
	}
	c.clearRoom("chan-1")
	if c.Room() != "" {
		t.Fatalf("expected empty room, got %q", c.Room())
	}
}
