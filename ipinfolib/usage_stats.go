package ipinfolib

import (
	"sync"
	"time"
)

// UsageSnapshot is a point-in-time copy of UsageStats.
type UsageSnapshot struct {
	LastUsed         time.Time `json:"-"`
	CacheHits        uint64    `json:"cache_hits"`
	CacheMisses      uint64    `json:"cache_misses"`
	BogonAddresses   uint64    `json:"bogon_addresses"`
	InvalidAddresses uint64    `json:"invalid_addresses"`
	FetchedAddresses uint64    `json:"fetched_addresses"`
	FailedAddresses  uint64    `json:"failed_addresses"`
	ChunkRequests    uint64    `json:"chunk_requests"`
	ChunkFailures    uint64    `json:"chunk_failures"`
	CacheSize        int       `json:"cache_size"`
	CacheCapacity    int       `json:"cache_capacity"`
}

// UsageStats accumulates counters of the client. It is safe for
// concurrent use.
type UsageStats struct {
	mutex    sync.Mutex
	snapshot UsageSnapshot
	cache    *Cache
}

func (u *UsageStats) Used(hits, misses, bogons, invalid int) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.snapshot.LastUsed = now
	u.snapshot.CacheHits += uint64(hits)
	u.snapshot.CacheMisses += uint64(misses)
	u.snapshot.BogonAddresses += uint64(bogons)
	u.snapshot.InvalidAddresses += uint64(invalid)
}

// Fetched counts a chunk of remote request. failed is a number of
// addresses of the chunk which have got no result.
func (u *UsageStats) Fetched(size, failed int, err error) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.snapshot.ChunkRequests++
	u.snapshot.FetchedAddresses += uint64(size - failed)
	u.snapshot.FailedAddresses += uint64(failed)

	if err != nil {
		u.snapshot.ChunkFailures++
	}
}

func (u *UsageStats) Snapshot() UsageSnapshot {
	u.mutex.Lock()
	rv := u.snapshot
	u.mutex.Unlock()

	if u.cache != nil {
		rv.CacheSize = u.cache.Len()
		rv.CacheCapacity = u.cache.Capacity()
	}

	return rv
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	snapshot := u.Snapshot()

	var lastUsedTime int64

	if !snapshot.LastUsed.IsZero() {
		lastUsedTime = snapshot.LastUsed.Unix()
	}

	rawStruct := struct {
		UsageSnapshot

		LastUsed int64 `json:"last_used"`
	}{
		UsageSnapshot: snapshot,
		LastUsed:      lastUsedTime,
	}

	return json.Marshal(&rawStruct)
}
