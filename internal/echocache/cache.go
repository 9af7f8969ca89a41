package echocache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"piriven.moe.gov.lk/web/internal/observability"
)

// Key prefixes of the echoed detail pages.
const (
	NewsPrefix   = "news-preview:"
	NoticePrefix = "notice-preview:"
)

// NewsKey is the echo key of an article.
func NewsKey(slug string) string { return NewsPrefix + slug }

// NoticeKey is the echo key of a notice.
func NoticeKey(id string) string { return NoticePrefix + id }

// Cache is a typed view over a Store for one kind of item.
type Cache[T any] struct {
	store   Store
	kind    string
	metrics *observability.Metrics
	now     func() time.Time
}

// New wraps store for values of type T. kind labels metrics and logs.
func New[T any](store Store, kind string, metrics *observability.Metrics) *Cache[T] {
	return &Cache[T]{store: store, kind: kind, metrics: metrics, now: time.Now}
}

// Load returns the echoed value for key. Store failures and malformed
// payloads are reported as misses.
func (c *Cache[T]) Load(ctx context.Context, key string) (T, bool) {
	var zero T
	if c == nil || c.store == nil {
		return zero, false
	}
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		observability.FromContext(ctx).Warn("echo cache read failed", zap.String("key", key), zap.Error(err))
	}
	if err == nil && ok {
		var v T
		if err := json.Unmarshal(entry.Value, &v); err == nil {
			c.metrics.EchoLookup(c.kind, true)
			return v, true
		}
		observability.FromContext(ctx).Debug("echo cache entry malformed", zap.String("key", key))
	}
	c.metrics.EchoLookup(c.kind, false)
	return zero, false
}

// Save echoes v under key as fetched at fetchedAt. A zero fetchedAt means now.
func (c *Cache[T]) Save(ctx context.Context, key string, v T, fetchedAt time.Time) {
	if c == nil || c.store == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		observability.FromContext(ctx).Debug("echo cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if fetchedAt.IsZero() {
		fetchedAt = c.now()
	}
	if err := c.store.Put(ctx, key, Entry{Value: raw, FetchedAt: fetchedAt, Stale: true}); err != nil {
		observability.FromContext(ctx).Warn("echo cache write failed", zap.String("key", key), zap.Error(err))
	}
}
