package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value      V
	lastUsed   uint64
	expireAt   time.Time
	timer      *time.Timer
	generation uint64
}

// Cache 是带有过期时间和容量上限的内存缓存，容量满时淘汰最久未被访问的条目
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[K]*entry[V]
	generation uint64
	clock      uint64
	epoch      uint64 // 每次 Clear 时加一
	now        func() time.Time
}

func New[K comparable, V any](ttl time.Duration, maxEntries int) *Cache[K, V] {
	return &Cache[K, V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[K]*entry[V]),
		now:        time.Now,
	}
}

func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.put(key, value)
}

// Epoch 返回当前的 epoch，读取数据之前记录下来，写回时交给 PutIfEpoch
func (c *Cache[K, V]) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.epoch
}

// PutIfEpoch 只有在 epoch 之后没有发生过 Clear 时才写入，返回是否写入
func (c *Cache[K, V]) PutIfEpoch(key K, value V, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return false
	}

	c.put(key, value)
	return true
}

// 调用方需要持有锁
func (c *Cache[K, V]) put(key K, value V) {
	if old, ok := c.entries[key]; ok {
		old.timer.Stop()
		delete(c.entries, key)
	} else if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLeastUsed()
	}

	c.generation++
	c.clock++
	generation := c.generation

	e := &entry[V]{
		value:      value,
		lastUsed:   c.clock,
		expireAt:   c.now().Add(c.ttl),
		generation: generation,
	}
	e.timer = time.AfterFunc(c.ttl, func() {
		c.expire(key, generation)
	})
	c.entries[key] = e
}

// Get 返回缓存的值，同时刷新该条目的最近访问时间
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if !c.now().Before(e.expireAt) {
		// 定时器可能还没来得及触发
		e.timer.Stop()
		delete(c.entries, key)
		return zero, false
	}

	c.clock++
	e.lastUsed = c.clock
	return e.value, true
}

func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}

	e.timer.Stop()
	delete(c.entries, key)
	return true
}

// Clear 删除所有条目并停止它们的过期定时器
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	for key, e := range c.entries {
		e.timer.Stop()
		delete(c.entries, key)
	}
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache[K, V]) expire(key K, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 条目在定时器触发之前可能已经被替换
	if e, ok := c.entries[key]; ok && e.generation == generation {
		delete(c.entries, key)
	}
}

// 调用方需要持有锁
func (c *Cache[K, V]) evictLeastUsed() {
	var (
		victim K
		oldest uint64
		found  bool
	)

	for key, e := range c.entries {
		if !found || e.lastUsed < oldest {
			victim = key
			oldest = e.lastUsed
			found = true
		}
	}

	if found {
		c.entries[victim].timer.Stop()
		delete(c.entries, victim)
	}
}
