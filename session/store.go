// Package session tracks per-user dialogue progress. Entries are transient:
// they live in process memory only and expire after a period of inactivity.
package session

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Step identifies a dialogue state machine position.
type Step string

const (
	// StepIdle indicates there is no active conversation with the user.
	StepIdle Step = "idle"
	// StepAwaitingCategory means the category menu was shown and a pick is expected.
	StepAwaitingCategory Step = "awaiting_category"
	// StepAwaitingDetail means the detail menu was shown and a pick is expected.
	StepAwaitingDetail Step = "awaiting_detail"
)

// State records a user's dialogue position. Category is set once the user
// has picked one and the detail step is pending.
type State struct {
	Step     Step
	Category string
}

// Store holds dialogue state keyed by user identifier. Absence is a valid
// state and is equivalent to StepIdle.
//
// Lock serializes the read-decide-write cycle for one user: concurrent
// deliveries for the same user must not interleave, while different users
// proceed independently.
type Store interface {
	Get(userID string) (State, bool)
	Set(userID string, st State)
	Delete(userID string)
	Lock(userID string) (unlock func())
}

// userLock is a per-user mutex with a holder count so the entry can be
// dropped once the last holder releases it.
type userLock struct {
	mu   sync.Mutex
	refs int
}

type memoryStore struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*userLock
}

// NewMemoryStore constructs an in-memory Store. Entries expire after ttl of
// inactivity and expired entries are purged every sweep interval; expiry is
// equivalent to deletion, so a stale conversation simply restarts from idle.
func NewMemoryStore(ttl, sweep time.Duration) Store {
	return &memoryStore{
		cache: cache.New(ttl, sweep),
		locks: make(map[string]*userLock),
	}
}

// Get returns the state for a user if a session exists, otherwise an idle
// state and false.
func (s *memoryStore) Get(userID string) (State, bool) {
	if v, found := s.cache.Get(userID); found {
		return v.(State), true
	}
	return State{Step: StepIdle}, false
}

// Set stores the state for a user, refreshing its expiry.
func (s *memoryStore) Set(userID string, st State) {
	s.cache.Set(userID, st, cache.DefaultExpiration)
}

// Delete removes the session for a user.
func (s *memoryStore) Delete(userID string) {
	s.cache.Delete(userID)
}

// Lock acquires the per-user mutex and returns its release function. Lock
// entries are reference counted and removed when the last holder releases,
// so the map stays bounded by the number of in-flight users.
func (s *memoryStore) Lock(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}
