package ipinfolib

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
)

const (
	DefaultCacheCapacity = 10000

	// a version of cached data. If structure of Result changes in
	// incompatible way, this version has to be bumped.
	cacheKeyVersion = "1"
)

func cacheKey(ip string) string {
	return ip + ":" + cacheKeyVersion
}

// Cache is a fixed capacity LRU cache of results keyed by normalized IP
// address. Both reads and writes mark an entry as recently used.
//
// All operations are serialized with a single mutex: a promotion on read
// has to be atomic with the read itself.
type Cache struct {
	mutex    sync.Mutex
	lru      *simplelru.LRU
	capacity int
}

// Get returns a cached result and marks it as recently used.
func (c *Cache) Get(ip string) (*Result, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value, ok := c.lru.Get(cacheKey(ip))
	if !ok {
		return nil, false
	}

	return value.(*Result), true
}

// Contains checks if address is cached without updating its recency.
func (c *Cache) Contains(ip string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.lru.Contains(cacheKey(ip))
}

// Put inserts or replaces a result, evicting least recently used entry
// if cache is full.
func (c *Cache) Put(ip string, result *Result) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.lru.Add(cacheKey(ip), result)
}

// PutAll stores all given results under a single lock so concurrent
// readers see either none or all of them.
func (c *Cache) PutAll(results map[string]*Result) {
	if len(results) == 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for ip, result := range results {
		c.lru.Add(cacheKey(ip), result)
	}
}

// Len returns a number of cached entries.
func (c *Cache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.lru.Len()
}

// Capacity returns a maximal number of entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// NewCache creates a new cache. onEvict is optional and is called with
// normalized address of every evicted entry.
func NewCache(capacity int, onEvict func(ip string)) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity has to be positive, got %d", capacity)
	}

	var callback simplelru.EvictCallback

	if onEvict != nil {
		suffixLen := len(cacheKey(""))
		callback = func(key interface{}, _ interface{}) {
			value := key.(string)
			onEvict(value[:len(value)-suffixLen])
		}
	}

	lru, err := simplelru.NewLRU(capacity, callback)
	if err != nil {
		return nil, fmt.Errorf("cannot create lru: %w", err)
	}

	return &Cache{
		lru:      lru,
		capacity: capacity,
	}, nil
}
