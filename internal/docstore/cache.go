package docstore

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/Latacz1/notatnik-treningowy/internal/trainings"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// Cache keeps the latest known document per user. Entries are replaced wholesale.
type Cache struct {
	// serialises the version check in Set
	mu            sync.Mutex
	cache         *freecache.Cache
	expireSeconds int
}

// NewCache creates a cache of sizeMB megabytes (freecache enforces a 512KB minimum).
// Entries expire after expireSeconds, 0 means never.
func NewCache(sizeMB, expireSeconds int) *Cache {
	return &Cache{
		cache:         freecache.NewCache(sizeMB * megabyte),
		expireSeconds: expireSeconds,
	}
}

func (c *Cache) Get(userID string) (trainings.Document, bool) {
	docBytes, err := c.cache.Get([]byte(userID))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("get document cache for %s: %s", userID, err)
		}
		return trainings.Document{}, false
	}

	var doc trainings.Document
	if err := json.Unmarshal(docBytes, &doc); err != nil {
		log.Errorf("unmarshal cached document for %s: %s", userID, err)
		c.Delete(userID)
		return trainings.Document{}, false
	}
	return doc, true
}

// Set keeps doc unless a newer version is already cached.
func (c *Cache) Set(userID string, doc trainings.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, found := c.Get(userID); found && cached.Version > doc.Version {
		return
	}

	docBytes, err := json.Marshal(doc)
	if err != nil {
		log.Errorf("marshal document for cache %s: %s", userID, err)
		return
	}
	if err := c.cache.Set([]byte(userID), docBytes, c.expireSeconds); err != nil {
		// an older entry must not outlive a rejected newer one (freecache refuses
		// entries above 1/1024 of its size)
		c.cache.Del([]byte(userID))
		log.Errorf("set document cache for %s: %s", userID, err)
	}
}

func (c *Cache) Delete(userID string) {
	c.cache.Del([]byte(userID))
}

func (c *Cache) Len() int64 {
	return c.cache.EntryCount()
}
