package cas

import (
	"container/list"
	"sync"
)

// LRUCache is a Store wrapper that keeps recently read entries in memory
// using LRU eviction.
type LRUCache struct {
	mu         sync.Mutex
	underlying Store
	cache      map[Hash]*list.Element
	evictList  *list.List
	maxSize    int
	hits       int
	misses     int
}

type cacheEntry struct {
	hash  Hash
	value []byte
}

// NewLRUCache wraps underlying. maxSize is the maximum number of cached
// entries; zero or negative selects the default.
func NewLRUCache(underlying Store, maxSize int) *LRUCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &LRUCache{
		underlying: underlying,
		cache:      make(map[Hash]*list.Element),
		evictList:  list.New(),
		maxSize:    maxSize,
	}
}

func (l *LRUCache) Put(data []byte) (Hash, error) {
	return l.underlying.Put(data)
}

func (l *LRUCache) Has(hash Hash) bool {
	l.mu.Lock()
	_, ok := l.cache[hash]
	l.mu.Unlock()
	return ok || l.underlying.Has(hash)
}

func (l *LRUCache) Get(hash Hash) ([]byte, error) {
	l.mu.Lock()
	if elem, ok := l.cache[hash]; ok {
		l.evictList.MoveToFront(elem)
		l.hits++
		v := elem.Value.(*cacheEntry).value
		l.mu.Unlock()
		return v, nil
	}
	l.misses++
	l.mu.Unlock()

	data, err := l.underlying.Get(hash)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.addToCache(hash, data)
	l.mu.Unlock()
	return data, nil
}

func (l *LRUCache) SetRef(name string, hash Hash) error {
	rs, ok := l.underlying.(RefStore)
	if !ok {
		return ErrRefsUnsupported
	}
	return rs.SetRef(name, hash)
}

func (l *LRUCache) Ref(name string) (Hash, bool, error) {
	rs, ok := l.underlying.(RefStore)
	if !ok {
		return 0, false, ErrRefsUnsupported
	}
	return rs.Ref(name)
}

// addToCache must be called with mu held.
func (l *LRUCache) addToCache(hash Hash, value []byte) {
	if elem, ok := l.cache[hash]; ok {
		l.evictList.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	elem := l.evictList.PushFront(&cacheEntry{hash: hash, value: value})
	l.cache[hash] = elem
	if l.evictList.Len() > l.maxSize {
		l.evictOldest()
	}
}

func (l *LRUCache) evictOldest() {
	elem := l.evictList.Back()
	if elem != nil {
		l.evictList.Remove(elem)
		delete(l.cache, elem.Value.(*cacheEntry).hash)
	}
}

type CacheStats struct {
	Size    int
	MaxSize int
	Hits    int
	Misses  int
}

func (l *LRUCache) Stats() CacheStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return CacheStats{
		Size:    len(l.cache),
		MaxSize: l.maxSize,
		Hits:    l.hits,
		Misses:  l.misses,
	}
}
