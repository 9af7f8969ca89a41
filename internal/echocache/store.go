// Package echocache keeps the last list payload seen for an item so its detail
// page can paint immediately while the fresh copy is fetched.
package echocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an echoed item survives.
const DefaultTTL = 6 * time.Hour

// Entry is one echoed payload.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Stale     bool            `json:"stale"`
}

// Store persists entries. Put keeps whichever entry has the newest FetchedAt.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
}

// Memory is a process-local Store.
type Memory struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	entry   Entry
	expires time.Time
}

// NewMemory returns an in-process store; ttl <= 0 selects DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, items: map[string]memoryItem{}, now: time.Now}
}

// Get returns the entry for key when present and not expired.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || m.now().After(item.expires) {
		return Entry{}, false, nil
	}
	return item.entry, true, nil
}

// Put stores e unless a live entry with a later FetchedAt exists.
func (m *Memory) Put(_ context.Context, key string, e Entry) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.items[key]; ok && now.Before(cur.expires) && cur.entry.FetchedAt.After(e.FetchedAt) {
		return nil
	}
	m.items[key] = memoryItem{entry: e, expires: now.Add(m.ttl)}
	return nil
}

// Redis stores entries as hashes so the newest-fetch guard runs atomically
// on the server.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

const (
	fieldValue   = "value"
	fieldFetched = "fetched"
	fieldStale   = "stale"
)

var putNewest = redis.NewScript(`
	local cur = redis.call("hget", KEYS[1], "fetched")
	if cur and tonumber(cur) > tonumber(ARGV[2]) then
		return 0
	end
	redis.call("hset", KEYS[1], "value", ARGV[1], "fetched", ARGV[2], "stale", ARGV[3])
	redis.call("pexpire", KEYS[1], ARGV[4])
	return 1
`)

// NewRedis returns a Store backed by client. Keys are namespaced by prefix.
func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(k string) string { return r.prefix + k }

// Get reads the hash stored under key.
func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	vals, err := r.client.HGetAll(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("echocache: get %s: %w", key, err)
	}
	raw, ok := vals[fieldValue]
	if !ok {
		return Entry{}, false, nil
	}
	ms, err := strconv.ParseInt(vals[fieldFetched], 10, 64)
	if err != nil {
		return Entry{}, false, nil
	}
	return Entry{
		Value:     json.RawMessage(raw),
		FetchedAt: time.UnixMilli(ms),
		Stale:     vals[fieldStale] == "1",
	}, true, nil
}

// Put writes e unless the stored entry was fetched later.
func (r *Redis) Put(ctx context.Context, key string, e Entry) error {
	stale := "0"
	if e.Stale {
		stale = "1"
	}
	err := putNewest.Run(ctx, r.client, []string{r.key(key)},
		string(e.Value), e.FetchedAt.UnixMilli(), stale, r.ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("echocache: put %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
