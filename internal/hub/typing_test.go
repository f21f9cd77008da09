package hub

import "testing"

func TestTypingStartExcludesSender(t *testing.T) {
	h := New()
	sender, other := &recorder{}, &recorder{}
	cs := h.Connect(sender)
	h.Connect(other)

	h.Typing.Start(cs, "chan-1", rawUser("u1"))

	if sender.count(EventTypingStart) != 0 {
		t.Error("sender should not receive its own typing:start")
	}
	if other.count(EventTypingStart) != 1 {
		t.Fatalf("expected 1 typing:start, got %d", other.count(EventTypingStart))
	}
	payload, _ := other.last(EventTypingStart)
	if p := payload.(TypingStartPayload); p.ChannelID != "chan-1" {
		t.Errorf("expected channel chan-1, got %q", p.ChannelID)
	}
}

func TestTypingStopExcludesSender(t *testing.T) {
	h := New()
	sender, other := &recorder{}, &recorder{}
	cs := h.Connect(sender)
	h.Connect(other)

	h.Typing.Stop(cs, "chan-1", "u1")

	if sender.count(EventTypingStop) != 0 {
		t.Error("sender should not receive its own typing:stop")
	}
	payload, ok := other.last(EventTypingStop)
	if !ok {
		t.Fatal("expected typing:stop for other")
	}
	p := payload.(TypingStopPayload)
	if p.ChannelID != "chan-1" || p.UserID != "u1" {
		t.Errorf("unexpected payload %+v", p)
	}
}

// The broadcaster keeps no state: repeated starts are relayed
// repeatedly and nothing ever auto-expires.
func TestTypingRepeatedStartsRelayedEachTime(t *testing.T) {
	h := New()
	sender, other := &recorder{}, &recorder{}
	cs := h.Connect(sender)
	h.Connect(other)

	for i := 0; i < 4; i++ {
		h.Typing.Start(cs, "chan-1", rawUser("u1"))
	}

	if other.count(EventTypingStart) != 4 {
		t.Fatalf("expected 4 typing:start broadcasts, got %d", other.count(EventTypingStart))
	}
}
