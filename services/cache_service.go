package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"tianboard/models"
)

// CacheTTL is the freshness window: a second request inside it is served
// from the cache with no upstream call, keeping free-tier quota usage to at
// most one call per category per hour.
const CacheTTL = time.Hour

type Fetcher interface {
	Fetch(cat models.Category) (*models.ContentPayload, error)
}

// CacheStore persists the current entry per category so a restarted service
// can serve stale data immediately.
type CacheStore interface {
	SaveCacheEntry(entry *models.CacheEntry) error
	LoadCacheEntries() (map[string]*models.CacheEntry, error)
}

type CacheService struct {
	fetcher Fetcher
	store   CacheStore // may be nil

	mu      sync.RWMutex
	entries map[string]*models.CacheEntry

	ttl time.Duration
	now func() time.Time
}

func NewCacheService(fetcher Fetcher, store CacheStore) *CacheService {
	cs := &CacheService{
		fetcher: fetcher,
		store:   store,
		entries: make(map[string]*models.CacheEntry),
		ttl:     CacheTTL,
		now:     time.Now,
	}

	if store != nil {
		entries, err := store.LoadCacheEntries()
		if err != nil {
			log.Printf("Failed to load persisted cache entries: %v", err)
		} else if len(entries) > 0 {
			cs.entries = entries
			log.Printf("Loaded %d persisted cache entries", len(entries))
		}
	}

	return cs
}

// GetOrFetch returns the category's payload, fetching only when no fresh
// entry exists. A failed fetch falls back to a stale entry when one exists;
// with nothing to fall back on the fetch error is propagated.
func (cs *CacheService) GetOrFetch(cat models.Category) (*models.ContentPayload, error) {
	cs.mu.RLock()
	entry, ok := cs.entries[cat.ID]
	if ok && cs.now().Sub(entry.FetchedAt) < cs.ttl {
		cs.mu.RUnlock()
		return entry.Payload, nil
	}
	cs.mu.RUnlock()

	payload, err := cs.fetcher.Fetch(cat)
	if err != nil {
		if ok {
			// Serve stale rather than failing the sensor update.
			log.Printf("Fetch for %s failed, serving stale entry from %s: %v",
				cat.ID, entry.FetchedAt.Format("2006-01-02 15:04:05"), err)
			return entry.Payload, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrNoCache, err)
	}

	fresh := &models.CacheEntry{
		Category:  cat.ID,
		Payload:   payload,
		FetchedAt: cs.now(),
	}

	cs.mu.Lock()
	cs.entries[cat.ID] = fresh
	cs.mu.Unlock()

	if cs.store != nil {
		if err := cs.store.SaveCacheEntry(fresh); err != nil {
			log.Printf("Failed to persist cache entry for %s: %v", cat.ID, err)
		}
	}

	return payload, nil
}

// Peek returns the current entry without ever triggering a fetch. Selector
// sensors are read-only mirrors and go through this path exclusively.
func (cs *CacheService) Peek(categoryID string) *models.CacheEntry {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.entries[categoryID]
}

// Fresh reports whether the category has an entry inside the TTL window.
func (cs *CacheService) Fresh(categoryID string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	entry, ok := cs.entries[categoryID]
	return ok && cs.now().Sub(entry.FetchedAt) < cs.ttl
}

// Cached reports whether the category has any entry, fresh or stale.
func (cs *CacheService) Cached(categoryID string) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	_, ok := cs.entries[categoryID]
	return ok
}
