// Package settle runs independent fetches concurrently and reports every
// outcome. One task failing never cancels or alters another.
package settle

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit caps concurrent tasks when New is given a non-positive limit.
const DefaultLimit = 8

// PanicError is recorded for a task that panicked.
type PanicError struct {
	Task  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("settle: task %s panicked: %v", e.Task, e.Value)
}

// Group runs named tasks. The zero value is not usable; call New.
type Group struct {
	ctx context.Context
	eg  errgroup.Group

	mu    sync.Mutex
	names []string
	errs  map[string]error
}

// New returns a Group whose tasks share ctx. Cancelling ctx is the only way
// tasks are cancelled.
func New(ctx context.Context, limit int) *Group {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	g := &Group{ctx: ctx, errs: map[string]error{}}
	g.eg.SetLimit(limit)
	return g
}

// Go starts fn under name. Names should be unique within a group; a repeated
// name overwrites the earlier outcome.
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.mu.Lock()
	g.names = append(g.names, name)
	g.mu.Unlock()

	g.eg.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = &PanicError{Task: name, Value: rec, Stack: debug.Stack()}
			}
			g.record(name, err)
			err = nil
		}()
		return fn(g.ctx)
	})
}

func (g *Group) record(name string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.errs, name)
		return
	}
	g.errs[name] = err
}

// Wait blocks until every task has settled.
func (g *Group) Wait() Results {
	_ = g.eg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	errs := make(map[string]error, len(g.errs))
	for k, v := range g.errs {
		errs[k] = v
	}
	names := append([]string(nil), g.names...)
	return Results{names: names, errs: errs}
}

// Fetch runs fn under name and stores its value in dst on success. dst is
// left untouched on failure.
func Fetch[T any](g *Group, name string, dst *T, fn func(ctx context.Context) (T, error)) {
	g.Go(name, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

// Results is the settled outcome of a Group.
type Results struct {
	names []string
	errs  map[string]error
}

// Err returns the error recorded for name, or nil.
func (r Results) Err(name string) error {
	return r.errs[name]
}

// OK reports whether name ran and succeeded.
func (r Results) OK(name string) bool {
	if r.errs[name] != nil {
		return false
	}
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}

// Failed lists the names of failed tasks in sorted order.
func (r Results) Failed() []string {
	out := make([]string, 0, len(r.errs))
	for name := range r.errs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
