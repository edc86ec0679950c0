package chat

import (
	"sync"
	"time"

	"video-summarizer/internal/models"

	"github.com/patrickmn/go-cache"
)

// Sessions keeps the chat history of each analysis, keyed by context ID.
// Every append refreshes the expiry, so idle conversations age out.
type Sessions struct {
	cache *cache.Cache
	mu    sync.Mutex
}

// NewSessions creates a session cache; ttl <= 0 keeps histories forever.
func NewSessions(ttl time.Duration) *Sessions {
	expiration := ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
	}
	return &Sessions{
		cache: cache.New(expiration, 10*time.Minute),
	}
}

// History returns a copy of the turns recorded for contextID.
func (s *Sessions) History(contextID string) []models.ChatTurn {
	if x, found := s.cache.Get(contextID); found {
		turns := x.([]models.ChatTurn)
		out := make([]models.ChatTurn, len(turns))
		copy(out, turns)
		return out
	}
	return []models.ChatTurn{}
}

func (s *Sessions) Append(contextID string, turns ...models.ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []models.ChatTurn
	if x, found := s.cache.Get(contextID); found {
		history = x.([]models.ChatTurn)
	}
	next := make([]models.ChatTurn, 0, len(history)+len(turns))
	next = append(next, history...)
	next = append(next, turns...)
	s.cache.Set(contextID, next, cache.DefaultExpiration)
}

func (s *Sessions) Clear(contextID string) {
	s.cache.Delete(contextID)
}

func (s *Sessions) Flush() {
	s.cache.Flush()
}

// Count returns the number of live conversations.
func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}
