package utils

import (
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// TTLCache 本地 LRU 缓存，条目带过期时间
type TTLCache[V any] struct {
	lruCache *lru.Cache[string, CacheItem[V]]
	ttl      time.Duration
	now      func() time.Time

	mu  sync.Mutex
	gen uint64 // Delete/Purge 时递增
}

// NewTTLCache 创建容量为 size 的缓存，ttl<=0 时不缓存
func NewTTLCache[V any](size int, ttl time.Duration) *TTLCache[V] {
	l, err := lru.New[string, CacheItem[V]](size)
	if err != nil {
		log.Fatalf("Failed to create LRU cache: %v", err)
	}
	return &TTLCache[V]{lruCache: l, ttl: ttl, now: time.Now}
}

// Set 设置缓存
func (c *TTLCache[V]) Set(key string, data V) {
	if c.ttl <= 0 {
		return
	}
	c.lruCache.Add(key, CacheItem[V]{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
	})
}

// Get 获取缓存，不存在或已过期时 ok 为 false
func (c *TTLCache[V]) Get(key string) (data V, ok bool) {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return data, false
	}

	// 检查过期
	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return data, false
	}

	return val.Data, true
}

// Generation 返回当前失效代数。读库前取一次，写缓存时交给 SetIfCurrent
func (c *TTLCache[V]) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfCurrent stores data only when no Delete or Purge happened since gen was read.
func (c *TTLCache[V]) SetIfCurrent(key string, data V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.Set(key, data)
	return true
}

// Delete 删除指定缓存
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lruCache.Remove(key)
}

// Purge 清空
func (c *TTLCache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lruCache.Purge()
}
