package hub

import (
	"reflect"
	"testing"
)

func TestIdentifyFirstConnectionGetsEmptySnapshot(t *testing.T) {
	h := New()
	a := &recorder{}
	ca := h.Connect(a)

	h.Presence.Identify(ca, "u1", rawUser("u1"))

	got, ok := a.last(EventUsersOnline)
	if !ok {
		t.Fatal("expected a users:online snapshot")
	}
	if ids := got.([]string); len(ids) != 0 {
		t.Fatalf("expected empty snapshot for first identify, got %v", ids)
	}
	if !h.Presence.Online("u1") {
		t.Fatal("expected u1 to be online")
	}
}

func TestIdentifyBroadcastsToOthersOnly(t *testing.T) {
	h := New()
	a, b := &recorder{}, &recorder{}
	ca := h.Connect(a)
	h.Connect(b)

	h.Presence.Identify(ca, "u1", rawUser("u1"))

	if a.count(EventUserOnline) != 0 {
		t.Error("identifying connection should not receive user:online")
	}
	if b.count(EventUserOnline) != 1 {
		t.Fatalf("expected 1 user:online for b, got %d", b.count(EventUserOnline))
	}
	payload, _ := b.last(EventUserOnline)
	if p := payload.(PresencePayload); p.UserID != "u1" {
		t.Errorf("expected user:online for u1, got %q", p.UserID)
	}
}

func TestIdentifyIsNotIdempotent(t *testing.T) {
	h := New()
	a, b := &recorder{}, &recorder{}
	ca := h.Connect(a)
	h.Connect(b)

	for i := 0; i < 3; i++ {
		h.Presence.Identify(ca, "u1", rawUser("u1"))
	}

	if b.count(EventUserOnline) != 3 {
		t.Fatalf("expected 3 user:online broadcasts, got %d", b.count(EventUserOnline))
	}
}

func TestSnapshotTakenBeforeEntryWritten(t *testing.T) {
	h := New()
	a, b := &recorder{}, &recorder{}
	ca := h.Connect(a)
	cb := h.Connect(b)

	h.Presence.Identify(ca, "u1", rawUser("u1"))
	h.Presence.Identify(cb, "u2", rawUser("u2"))

	got, _ := b.last(EventUsersOnline)
	if ids := got.([]string); !reflect.DeepEqual(ids, []string{"u1"}) {
		t.Fatalf("expected snapshot [u1], got %v", ids)
	}
}

func TestDisconnectBroadcastsOffline(t *testing.T) {
	h := New()
	a, b := &recorder{}, &recorder{}
	ca := h.Connect(a)
	h.Connect(b)

	h.Presence.Identify(ca, "u1", rawUser("u1"))
	h.Disconnect(ca.ID)

	if b.count(EventUserOffline) != 1 {
		t.Fatalf("expected 1 user:offline, got %d", b.count(EventUserOffline))
	}
	payload, _ := b.last(EventUserOffline)
	if p := payload.(PresencePayload); p.UserID != "u1" {
		t.Errorf("expected user:offline for u1, got %q", p.UserID)
	}
	if h.Presence.Online("u1") {
		t.Fatal("expected u1 to be offline")
	}
}

func TestDisconnectOfUnidentifiedConnectionIsSilent(t *testing.T) {
	h := New()
	a, b := &recorder{}, &recorder{}
	ca := h.Connect(a)
	h.Connect(b)

	h.Disconnect(ca.ID)

	if b.count(EventUserOffline) != 0 {
		t.Fatal("unidentified disconnect should not broadcast user:offline")
	}
}

// A second device's identify supersedes the first device's entry. The
// first device's later disconnect must neither clear presence nor
// broadcast offline; the second device's disconnect does both even
// though the first device may still be connected. This single-slot
// behavior is deliberate.
func TestPresenceSecondConnectionSupersedes(t *testing.T) {
	h := New()
	first, second, watcher := &recorder{}, &recorder{}, &recorder{}
	c1 := h.Connect(first)
	c2 := h.Connect(second)
	h.Connect(watcher)

	h.Presence.Identify(c1, "u1", rawUser("u1"))
	h.Presence.Identify(c2, "u1", rawUser("u1"))

	h.Disconnect(c1.ID)
	if !h.Presence.Online("u1") {
		t.Fatal("superseded disconnect should not clear presence")
	}
	if watcher.count(EventUserOffline) != 0 {
		t.Fatal("superseded disconnect should not broadcast offline")
	}

	h.Disconnect(c2.ID)
	if h.Presence.Online("u1") {
		t.Fatal("owning connection's disconnect should clear presence")
	}
	if watcher.count(EventUserOffline) != 1 {
		t.Fatalf("expected 1 user:offline, got %d", watcher.count(EventUserOffline))
	}
}

func TestDoubleDisconnectCascadesOnce(t *testing.T) {
	h := New()
	a, b := &recorder{}, &recorder{}
	ca := h.Connect(a)
	h.Connect(b)

	h.Presence.Identify(ca, "u1", rawUser("u1"))
	h.Disconnect(ca.ID)
	h.Disconnect(ca.ID)

	if b.count(EventUserOffline) != 1 {
		t.Fatalf("expected exactly 1 user:offline, got %d", b.count(EventUserOffline))
	}
}

func TestOnlineUsersSorted(t *testing.T) {
	h := New()
	for _, id := range []string{"zed", "amy", "mia"} {
		c := h.Connect(&recorder{})
		h.Presence.Identify(c, id, rawUser(id))
	}

	got := h.Presence.OnlineUsers()
	want := []string{"amy", "mia", "zed"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if h.Presence.Count() != 3 {
		t.Fatalf("expected 3 online, got %d", h.Presence.Count())
	}
}
