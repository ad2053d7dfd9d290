package sqlite

import (
	"sync"
	"time"

	"github.com/adsabs/orcidclaims/internal/types"
)

// profileCache is a small in-process TTL cache over RetrieveProfile reads.
// The check-orcidid stage and the CLI drivers read profiles through it;
// caching avoids round-tripping to SQLite for a profile read again within
// the TTL while staying cheap to invalidate.
type profileCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	entries map[string]cacheEntry
}

type cacheEntry struct {
	profile *types.AuthorProfile
	expires time.Time
}

func newProfileCache(ttl time.Duration) *profileCache {
	return &profileCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *profileCache) get(orcidID string) (*types.AuthorProfile, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[orcidID]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.profile, true
}

func (c *profileCache) put(orcidID string, profile *types.AuthorProfile) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[orcidID] = cacheEntry{profile: profile, expires: c.now().Add(c.ttl)}
}

func (c *profileCache) invalidate(orcidID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orcidID)
}

// clearCaches drops every cached profile. It is reached only through
// Store.ClearCaches; UpsertProfile invalidates its own entry instead.
func (c *profileCache) clearCaches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
