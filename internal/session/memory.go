package session

import (
	"sync"
	"time"
)

// MemoryStore holds sessions in RAM behind a mutex. Suitable for a single
// process; sessions are lost on restart, which is acceptable for this
// deployment shape. Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	accountID string
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory session store. Sessions idle longer
// than ttl expire; the expiry slides forward on each Get. A ttl of zero
// disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(token, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{accountID: accountID, expiresAt: s.deadline()}
}

func (s *MemoryStore) Get(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return "", false
	}
	if s.ttl > 0 && s.now().After(e.expiresAt) {
		delete(s.entries, token)
		return "", false
	}
	// Sliding expiry: reading a session keeps it alive.
	e.expiresAt = s.deadline()
	s.entries[token] = e
	return e.accountID, true
}

func (s *MemoryStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
}

// Len reports the number of live (possibly expired but not yet purged)
// sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) deadline() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}
