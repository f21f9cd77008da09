// Package user issues anonymous identities. This is the trust
// boundary assumed by the coordinator: a client obtains an identity
// here before identifying over the socket, and the coordinator itself
// performs no authentication.
package user

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Identity is a persistent anonymous user identity. Re-presenting the
// token yields the same user id across page reloads and reconnects.
type Identity struct {
	Token    string    `json:"token"`
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store manages anonymous identities keyed by token.
type Store struct {
	mu         sync.Mutex
	identities map[string]*Identity
}

// NewStore creates an empty identity store.
func NewStore() *Store {
	return &Store{
		identities: make(map[string]*Identity),
	}
}

// Create mints a new identity with a random token and user id.
func (s *Store) Create() *Identity {
	id := &Identity{
		Token:    generateToken(),
		UserID:   generateToken(),
		IssuedAt: time.Now(),
	}
	s.mu.Lock()
	s.identities[id.Token] = id
	s.mu.Unlock()
	return id
}

// Get returns the identity for the given token, or nil if not found.
func (s *Store) Get(token string) *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identities[token]
}

// GetOrCreate returns the identity for the token, minting a fresh one
// when the token is empty or unknown.
func (s *Store) GetOrCreate(token string) *Identity {
	if token != "" {
		if id := s.Get(token); id != nil {
			return id
		}
	}
	return s.Create()
}

// Count returns the number of issued identities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.identities)
}

func generateToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
