package summary

import (
	"sync"
	"time"
)

// Entry はキャッシュされた要約。
type Entry struct {
	Text        string
	GeneratedAt time.Time
}

// Cache は映画IDをキーとするインメモリの要約キャッシュ。
// 読み書きは並行安全。
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache はCacheの新しいインスタンスを生成する。
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Entry),
	}
}

// Get は指定映画のキャッシュ済み要約を返す。
func (c *Cache) Get(movieID string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[movieID]
	return entry, ok
}

// Set は指定映画の要約を保存する。既存の要約は上書きされる。
func (c *Cache) Set(movieID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[movieID] = Entry{
		Text:        text,
		GeneratedAt: time.Now(),
	}
}

// Len はキャッシュ済みの要約数を返す。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
