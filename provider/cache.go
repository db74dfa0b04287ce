package provider

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	lookupCacheSize = 64
	lookupCacheTTL  = 10 * time.Minute
)

// lookupCache memoizes the cheap enumeration lookups (categories, tags) per
// provider so repeated UI loads do not hammer the upstream APIs. Entries
// expire on a TTL; a credential change invalidates the provider's entries
// eagerly.
type lookupCache struct {
	categories *lru.LRU[string, []Category]
	tags       *lru.LRU[string, []string]
}

func newLookupCache() *lookupCache {
	return &lookupCache{
		categories: lru.NewLRU[string, []Category](lookupCacheSize, nil, lookupCacheTTL),
		tags:       lru.NewLRU[string, []string](lookupCacheSize, nil, lookupCacheTTL),
	}
}

func (c *lookupCache) Categories(providerID string) ([]Category, bool) {
	return c.categories.Get(providerID)
}

func (c *lookupCache) SetCategories(providerID string, cats []Category) {
	c.categories.Add(providerID, cats)
}

func (c *lookupCache) Tags(providerID string) ([]string, bool) {
	return c.tags.Get(providerID)
}

func (c *lookupCache) SetTags(providerID string, tags []string) {
	c.tags.Add(providerID, tags)
}

func (c *lookupCache) Invalidate(providerID string) {
	c.categories.Remove(providerID)
	c.tags.Remove(providerID)
}
