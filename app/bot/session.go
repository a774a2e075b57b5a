package bot

import (
	"sync"
	"time"

	"github.com/Semior001/headlines/app/sampler"
	cache "github.com/go-pkgz/expirable-cache/v2"
)

// Sessions holds a sampler per chat. A session expires after ttl
// without requests, the least recently used sessions are evicted
// when there are more than maxSessions of them.
type Sessions struct {
	mu      sync.Mutex
	cache   cache.Cache[string, *sampler.Sampler]
	makeNew func(chatID string) *sampler.Sampler
}

// NewSessions makes a new session registry.
func NewSessions(ttl time.Duration, maxSessions int, makeNew func(chatID string) *sampler.Sampler) *Sessions {
	return &Sessions{
		cache: cache.NewCache[string, *sampler.Sampler]().
			WithLRU().
			WithTTL(ttl).
			WithMaxKeys(maxSessions),
		makeNew: makeNew,
	}
}

// Get returns the session of the chat, starting a new one if there is none.
// The second value reports whether the session has just been started.
func (s *Sessions) Get(chatID string) (smp *sampler.Sampler, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	smp, ok := s.cache.Get(chatID)
	if !ok {
		smp = s.makeNew(chatID)
	}

	// prolong the session
	s.cache.Set(chatID, smp, 0)
	return smp, !ok
}

// Peek returns the session of the chat, if any.
func (s *Sessions) Peek(chatID string) (*sampler.Sampler, bool) {
	return s.cache.Peek(chatID)
}

// End drops the session of the chat.
func (s *Sessions) End(chatID string) {
	s.cache.Invalidate(chatID)
}

// Len returns the number of active sessions.
func (s *Sessions) Len() int {
	s.cache.DeleteExpired()
	return s.cache.Len()
}

// Stat returns the statistics of session lookups.
func (s *Sessions) Stat() cache.Stats { return s.cache.Stat() }
