package sketch

import (
	"sync"
	"time"

	"github.com/novvoo/go-cairo/pkg/cairo"
)

// SurfaceCache 图片注释解码后的 cairo surface 缓存，按图片内容哈希索引。
// 超过 maxEntries 时按最近使用时间淘汰，超过 ttl 的条目由后台 goroutine 清理
type SurfaceCache struct {
	mu         sync.Mutex
	entries    map[string]*cachedSurface
	maxEntries int
	ttl        time.Duration
	hits       int64
	misses     int64
	clock      uint64

	stop      chan struct{}
	closeOnce sync.Once
}

type cachedSurface struct {
	surface   cairo.ImageSurface
	createdAt time.Time
	lastUsed  uint64
	bytes     int
}

// NewSurfaceCache 创建缓存；ttl > 0 时启动清理 goroutine，用完需调用 Close
func NewSurfaceCache(maxEntries int, ttl time.Duration) *SurfaceCache {
	c := &SurfaceCache{
		entries:    make(map[string]*cachedSurface),
		maxEntries: maxEntries,
		ttl:        ttl,
		stop:       make(chan struct{}),
	}
	if ttl > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Get 获取缓存的 surface
func (c *SurfaceCache) Get(key string) (cairo.ImageSurface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || (c.ttl > 0 && time.Since(e.createdAt) > c.ttl) {
		c.misses++
		return nil, false
	}
	c.clock++
	e.lastUsed = c.clock
	c.hits++
	return e.surface, true
}

// Set 放入 surface，bytes 为像素数据大小，仅用于统计
func (c *SurfaceCache) Set(key string, surface cairo.ImageSurface, bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.clock++
	c.entries[key] = &cachedSurface{
		surface:   surface,
		createdAt: time.Now(),
		lastUsed:  c.clock,
		bytes:     bytes,
	}
}

// Delete 删除条目
func (c *SurfaceCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear 清空缓存
func (c *SurfaceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cachedSurface)
	c.hits = 0
	c.misses = 0
}

// Stats 命中次数、未命中次数、条目数和像素字节总数
func (c *SurfaceCache) Stats() (hits, misses int64, entries, bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		bytes += e.bytes
	}
	return c.hits, c.misses, len(c.entries), bytes
}

// Close 停止清理 goroutine
func (c *SurfaceCache) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

// evictOldest 淘汰最久未使用的条目（LRU）
func (c *SurfaceCache) evictOldest() {
	var oldestKey string
	var oldest uint64
	for key, e := range c.entries {
		if oldestKey == "" || e.lastUsed < oldest {
			oldestKey = key
			oldest = e.lastUsed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *SurfaceCache) cleanupLoop() {
	ticker := time.NewTicker(c.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *SurfaceCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for key, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

var (
	surfaceCacheMu sync.Mutex
	surfaceCache   *SurfaceCache
)

// DefaultSurfaceCache 全局 surface 缓存，默认 256 个条目、TTL 5 分钟
func DefaultSurfaceCache() *SurfaceCache {
	surfaceCacheMu.Lock()
	defer surfaceCacheMu.Unlock()
	if surfaceCache == nil {
		surfaceCache = NewSurfaceCache(256, 5*time.Minute)
	}
	return surfaceCache
}

// SetDefaultSurfaceCache 替换全局缓存（按配置调整大小），旧缓存会被关闭
func SetDefaultSurfaceCache(c *SurfaceCache) {
	surfaceCacheMu.Lock()
	defer surfaceCacheMu.Unlock()
	if surfaceCache != nil && surfaceCache != c {
		surfaceCache.Close()
	}
	surfaceCache = c
}
