package mosaicdb

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// BlobCacheStats are counters of the read-side payload cache.
type BlobCacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// blobCache is an LRU over tile payloads keyed by the tile primary key.
// Tiles are insert-only, so cached entries never go stale.
type blobCache struct {
	cache     *lru.Cache[int64, []byte]
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func newBlobCache(maxItems int) (*blobCache, error) {
	bc := &blobCache{}
	cache, err := lru.NewWithEvict(maxItems, func(int64, []byte) {
		bc.evictions.Add(1)
	})
	if err != nil {
		return nil, invalidArgumentf("invalid blob cache size: %v", err)
	}
	bc.cache = cache
	return bc, nil
}

func (bc *blobCache) get(pk int64) ([]byte, bool) {
	if bc == nil {
		return nil, false
	}
	data, ok := bc.cache.Get(pk)
	if ok {
		bc.hits.Add(1)
		return data, true
	}
	bc.misses.Add(1)
	return nil, false
}

func (bc *blobCache) put(pk int64, data []byte) {
	if bc == nil {
		return
	}
	// keep a private copy, the source buffer belongs to the statement
	buf := make([]byte, len(data))
	copy(buf, data)
	bc.cache.Add(pk, buf)
}

func (bc *blobCache) stats() BlobCacheStats {
	if bc == nil {
		return BlobCacheStats{}
	}
	return BlobCacheStats{
		Hits:      bc.hits.Load(),
		Misses:    bc.misses.Load(),
		Evictions: bc.evictions.Load(),
		Size:      bc.cache.Len(),
	}
}
