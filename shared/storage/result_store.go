package storage

import (
	"fmt"
	"time"

	"video-summarizer/internal/models"
	"video-summarizer/shared/logging"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// DefaultMaxEntries bounds the store when no size is configured.
const DefaultMaxEntries = 100

// ContextNotFoundError is returned when a context ID has no cached analysis.
type ContextNotFoundError struct {
	ContextID string
}

func (e *ContextNotFoundError) Error() string {
	return fmt.Sprintf("video analysis %q not found, analyze a video first", e.ContextID)
}

// ResultStore maps context IDs to completed analyses. It is an LRU bounded by
// entry count with optional expiry; a ttl of zero keeps entries until evicted
// or cleared. Stored values are copied on the way in and out, so callers can
// never mutate what the store holds. Safe for concurrent use.
type ResultStore struct {
	cache *expirable.LRU[string, *models.NormalizedAnalysis]
}

func NewResultStore(maxEntries int, ttl time.Duration, logger *zap.Logger) *ResultStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	logger = logging.OrNop(logger)

	onEvict := func(contextID string, _ *models.NormalizedAnalysis) {
		logger.Debug("analysis evicted from cache", zap.String("context_id", contextID))
	}

	return &ResultStore{
		cache: expirable.NewLRU[string, *models.NormalizedAnalysis](maxEntries, onEvict, ttl),
	}
}

// Put stores a copy of analysis under its context ID. Last writer wins.
func (s *ResultStore) Put(analysis *models.NormalizedAnalysis) {
	if analysis == nil || analysis.ContextID == "" {
		return
	}
	s.cache.Add(analysis.ContextID, analysis.Clone())
}

// Get returns a copy of the analysis for contextID.
func (s *ResultStore) Get(contextID string) (*models.NormalizedAnalysis, bool) {
	analysis, ok := s.cache.Get(contextID)
	if !ok {
		return nil, false
	}
	return analysis.Clone(), true
}

// Lookup is Get that fails with *ContextNotFoundError.
func (s *ResultStore) Lookup(contextID string) (*models.NormalizedAnalysis, error) {
	analysis, ok := s.Get(contextID)
	if !ok {
		return nil, &ContextNotFoundError{ContextID: contextID}
	}
	return analysis, nil
}

func (s *ResultStore) Clear() {
	s.cache.Purge()
}

func (s *ResultStore) Size() int {
	return s.cache.Len()
}
