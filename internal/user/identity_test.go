package user

import "testing"

func TestCreateMintsUniqueIdentities(t *testing.T) {
	s := NewStore()

	a := s.Create()
	b := s.Create()

	if a.Token == "" || a.UserID == "" {
		t.Fatalf("expected non-empty token and user id, got %+v", a)
	}
	if a.Token == b.Token {
		t.Error("expected distinct tokens")
	}
	if a.UserID == b.UserID {
		t.Error("expected distinct user ids")
	}
	if s.Count() != 2 {
		t.Errorf("expected 2 identities, got %d", s.Count())
	}
}

func TestGetReturnsExisting(t *testing.T) {
	s := NewStore()
	id := s.Create()

	if got := s.Get(id.Token); got != id {
		t.Errorf("expected the stored identity, got %+v", got)
	}
	if got := s.Get("unknown"); got != nil {
		t.Errorf("expected nil for unknown token, got %+v", got)
	}
}

func TestGetOrCreateStableAcrossReconnects(t *testing.T) {
	s := NewStore()

	first := s.GetOrCreate("")
	again := s.GetOrCreate(first.Token)
	if again.UserID != first.UserID {
		t.Errorf("expected stable user id, got %q and %q", first.UserID, again.UserID)
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 identity, got %d", s.Count())
	}
}

func TestGetOrCreateUnknownTokenMintsFresh(t *testing.T) {
	s := NewStore()

	id := s.GetOrCreate("stale-token")
	if id.Token == "stale-token" {
		t.Error("expected a fresh token, got the stale one back")
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 identity, got %d", s.Count())
	}
}
