package cache

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Cache is the shared cache surface used by services. Values are strings;
// JSON encoding happens on the business side.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEX(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// nilSentinel marks a cached empty result (penetration protection).
const nilSentinel = "\x00nil\x00"

// WrapNil returns the sentinel value when v is true.
func WrapNil(v bool) string {
	if v {
		return nilSentinel
	}
	return ""
}

// IsNilSentinel reports whether the cached value is the empty-result marker.
func IsNilSentinel(v string) bool { return v == nilSentinel }

// JitterTTL spreads expirations by up to 10% to avoid stampedes.
func JitterTTL(base time.Duration) time.Duration {
	if base <= 0 {
		return base
	}
	j := time.Duration(rand.Int63n(int64(base)/10 + 1))
	return base + j
}

// Item 带过期的缓存条目

type Item struct {
	Val interface{}
	Exp time.Time
}

// SimpleCache 线程安全、带 TTL 的进程级缓存 (L1)

type SimpleCache struct {
	mu   sync.RWMutex
	data map[string]Item
	ttl  time.Duration // default TTL, SetWithTTL overrides
}

func New(ttl time.Duration) *SimpleCache { return &SimpleCache{data: make(map[string]Item), ttl: ttl} }

func (c *SimpleCache) getRaw(key string) (interface{}, bool) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !it.Exp.IsZero() && time.Now().After(it.Exp) {
		return nil, false
	}
	return it.Val, true
}

func (c *SimpleCache) setRaw(key string, val interface{}, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = Item{Val: val, Exp: exp}
	c.mu.Unlock()
}

func (c *SimpleCache) delRaw(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.mu.Unlock()
}

func (c *SimpleCache) Flush() { c.mu.Lock(); c.data = make(map[string]Item); c.mu.Unlock() }

func (c *SimpleCache) Keys() []string {
	c.mu.RLock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	c.mu.RUnlock()
	return keys
}

func (c *SimpleCache) Get(key string) (interface{}, bool) { return c.getRaw(key) }
func (c *SimpleCache) Set(key string, val interface{})    { c.setRaw(key, val, c.ttl) }
func (c *SimpleCache) SetWithTTL(key string, val interface{}, ttl time.Duration) {
	c.setRaw(key, val, ttl)
}
func (c *SimpleCache) Del(keys ...string) { c.delRaw(keys...) }

// simpleAdapter exposes SimpleCache through the Cache interface (string values).

type simpleAdapter struct{ c *SimpleCache }

func NewSimpleAdapter(c *SimpleCache) Cache { return &simpleAdapter{c: c} }

func (a *simpleAdapter) Get(_ context.Context, key string) (string, error) {
	if v, ok := a.c.getRaw(key); ok {
		if s, ok2 := v.(string); ok2 {
			return s, nil
		}
	}
	return "", nil
}

func (a *simpleAdapter) SetEX(_ context.Context, key, val string, ttl time.Duration) error {
	a.c.setRaw(key, val, ttl)
	return nil
}

func (a *simpleAdapter) Del(_ context.Context, keys ...string) error {
	a.c.delRaw(keys...)
	return nil
}

// RemainingTTL mirrors the RedisAdapter capability so LayeredCache can carry
// remaining TTL across layers.
func (a *simpleAdapter) RemainingTTL(_ context.Context, key string) (time.Duration, bool) {
	a.c.mu.RLock()
	it, ok := a.c.data[key]
	a.c.mu.RUnlock()
	if !ok || it.Exp.IsZero() || time.Now().After(it.Exp) {
		return 0, false
	}
	return time.Until(it.Exp), true
}
