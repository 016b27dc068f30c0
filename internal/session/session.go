// Package session keeps uploaded datasets in memory under random ids.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/MrJamesThe3rd/spendviz/internal/spend"
)

//go:generate mockgen -source=session.go -destination=store_mock.go -package=session

// DefaultTTL is how long an unused dataset is kept.
const DefaultTTL = 30 * time.Minute

// Store holds datasets between requests.
type Store interface {
	Put(ds *spend.Dataset) uuid.UUID
	Get(id uuid.UUID) (*spend.Dataset, bool)
	Delete(id uuid.UUID)
}

// Cache is a Store whose entries expire after a period without access.
type Cache struct {
	items *cache.Cache
	ttl   time.Duration
}

// NewCache creates a Cache expiring entries ttl after their last access.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		items: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Put stores ds under a new id.
func (c *Cache) Put(ds *spend.Dataset) uuid.UUID {
	id := uuid.New()
	c.items.Set(id.String(), ds, cache.DefaultExpiration)

	return id
}

// Get returns the dataset stored under id and extends its lifetime.
func (c *Cache) Get(id uuid.UUID) (*spend.Dataset, bool) {
	v, found := c.items.Get(id.String())
	if !found {
		return nil, false
	}

	ds, ok := v.(*spend.Dataset)
	if !ok {
		return nil, false
	}

	c.items.Set(id.String(), ds, cache.DefaultExpiration)

	return ds, true
}

// Delete removes the dataset stored under id.
func (c *Cache) Delete(id uuid.UUID) {
	c.items.Delete(id.String())
}

// Len returns the number of stored datasets, expired ones not yet evicted
// included.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}
