package echocache

import (
	"context"
	"time"
)

// State is the lifecycle of a detail view.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Detail tracks one detail fetch. An echoed value pre-fills it while loading
// and survives a failed fetch.
type Detail[T any] struct {
	state    State
	value    T
	hasValue bool
	stale    bool
	err      error
}

// Begin moves Idle to Loading, pre-filling the echoed value when ok.
func (d *Detail[T]) Begin(echo T, ok bool) bool {
	if d.state != Idle {
		return false
	}
	d.state = Loading
	if ok {
		d.value, d.hasValue, d.stale = echo, true, true
	}
	return true
}

// Resolve moves Loading to Loaded with a fresh value.
func (d *Detail[T]) Resolve(v T) bool {
	if d.state != Loading {
		return false
	}
	d.state = Loaded
	d.value, d.hasValue, d.stale, d.err = v, true, false, nil
	return true
}

// Fail moves Loading to Failed, keeping any echoed value.
func (d *Detail[T]) Fail(err error) bool {
	if d.state != Loading {
		return false
	}
	d.state = Failed
	d.err = err
	return true
}

func (d *Detail[T]) State() State { return d.state }

// Value returns the current value and whether one is present.
func (d *Detail[T]) Value() (T, bool) { return d.value, d.hasValue }

// Stale reports whether the value is an echo not yet confirmed by a fetch.
func (d *Detail[T]) Stale() bool { return d.stale }

func (d *Detail[T]) Err() error { return d.err }

// Fetch runs one detail load: echo lookup, fetch, then Resolve or Fail. A
// fresh value is echoed back so later visits pre-paint it.
func Fetch[T any](ctx context.Context, cache *Cache[T], key string, fetch func(context.Context) (T, error)) *Detail[T] {
	d := &Detail[T]{}
	echo, ok := cache.Load(ctx, key)
	d.Begin(echo, ok)
	started := time.Now()
	v, err := fetch(ctx)
	if err != nil {
		d.Fail(err)
		return d
	}
	d.Resolve(v)
	cache.Save(ctx, key, v, started)
	return d
}
