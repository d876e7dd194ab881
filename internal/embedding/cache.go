package embedding

import (
	"container/list"
	"sync"
)

// vectorCache is an LRU cache of embeddings keyed by text. ONNX inference on
// repeated blocks (headers, footers, boilerplate) dominates build time without it.
type vectorCache struct {
	capacity int
	entries  map[string]*list.Element
	lru      *list.List
	mu       sync.Mutex
}

type vectorCacheItem struct {
	key    string
	vector []float32
}

func newVectorCache(capacity int) *vectorCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &vectorCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (c *vectorCache) get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*vectorCacheItem).vector, true
}

func (c *vectorCache) put(key string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*vectorCacheItem).vector = vector
		return
	}
	c.entries[key] = c.lru.PushFront(&vectorCacheItem{key: key, vector: vector})
	if c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest != nil {
			c.lru.Remove(oldest)
			delete(c.entries, oldest.Value.(*vectorCacheItem).key)
		}
	}
}

func (c *vectorCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
