package lookup

import (
	"sync"

	"github.com/couchcryptid/zip-dispatch/internal/domain"
)

// cachedResult is one memoized resolution. Misses are stored too, so a
// repeated unknown ZIP does not rescan the index.
type cachedResult struct {
	record domain.IntervalRecord
	found  bool
}

// resultCache is a thread-safe LRU keyed by normalized query digits. Each
// installed scheme gets its own cache, so entries never outlive their index.
type resultCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*node
	head       *node // most recently used
	tail       *node // least recently used
}

type node struct {
	key   string
	value cachedResult
	prev  *node
	next  *node
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*node),
	}
}

func (c *resultCache) get(key string) (cachedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return cachedResult{}, false
	}
	c.touch(n)
	return n.value, true
}

func (c *resultCache) put(key string, value cachedResult) {
	if c.maxEntries <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		c.touch(n)
		return
	}

	n := &node{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)

	for len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *resultCache) touch(n *node) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *resultCache) pushFront(n *node) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *resultCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (c *resultCache) evictOldest() {
	oldest := c.tail
	if oldest == nil {
		return
	}
	c.unlink(oldest)
	delete(c.entries, oldest.key)
}
