// Package swr resolves what to show for a cached dataset right now, cache
// first, and keeps the cache fresh behind the scenes (stale-while-revalidate).
//
// Resolution order for every Update, first match wins:
//
//	cache (valid entry) -> remote snapshot (usable) -> fallback -> loading
//
// While a cached value is shown, each usable remote snapshot is written to the
// cache on the Hook's Scheduler. The write feeds the next Update; it never
// changes the view being returned.
package swr

import (
	"context"
	"sync"

	pc "github.com/unkn0wn-root/prioritycache"
	c "github.com/unkn0wn-root/prioritycache/codec"
	"github.com/unkn0wn-root/prioritycache/sched"
)

// Source is the remote side of a dataset.
type Source[V any] interface {
	// Snapshot returns the latest value known without blocking; ok is false
	// while the remote has not resolved yet.
	Snapshot() (v V, ok bool)
	// Fetch pulls the current value synchronously.
	Fetch(ctx context.Context) (v V, ok bool, err error)
}

// SourceFunc adapts a snapshot function. Fetch returns the snapshot.
type SourceFunc[V any] func() (V, bool)

func (f SourceFunc[V]) Snapshot() (V, bool) { return f() }
func (f SourceFunc[V]) Fetch(context.Context) (V, bool, error) {
	v, ok := f()
	return v, ok, nil
}

// NonEmpty is the Usable predicate for list-shaped datasets: an empty list
// from the remote does not count as resolved.
func NonEmpty[E any](v []E) bool { return len(v) > 0 }

// NonNil is the Usable predicate for record-shaped datasets held by pointer.
func NonNil[T any](v *T) bool { return v != nil }

// Options configure a Hook. Key and Source are required.
type Options[V any] struct {
	Key         string
	Source      Source[V]
	Fallback    V
	HasFallback bool         // Fallback is only used when set
	Priority    pc.Priority  // "" => medium
	Usable      func(V) bool // nil => every resolved value is usable
	Codec       c.Codec[V]   // nil => JSON
	Scheduler   sched.Scheduler
	Logger      pc.Logger
	Hooks       pc.Hooks
}

// View is what a consumer renders.
type View[V any] struct {
	Data      V     `json:"data"`
	IsLoading bool  `json:"isLoading"`
	Err       error `json:"-"`
	IsCached  bool  `json:"isCached"`
}

// Hook binds one dataset to the cache. It is safe for concurrent use.
type Hook[V any] struct {
	key      string
	src      Source[V]
	fallback V
	hasFB    bool
	prio     pc.Priority
	usable   func(V) bool
	cache    pc.Typed[V]
	sched    sched.Scheduler
	log      pc.Logger
	hooks    pc.Hooks

	mu       sync.Mutex
	data     V
	resolved bool
	err      error
}

// New returns a Hook over m. It panics if Key or Source is missing, like a
// misconfigured accessor table would at init.
func New[V any](m *pc.Manager, opts Options[V]) *Hook[V] {
	if opts.Key == "" || opts.Source == nil {
		panic("swr: Key and Source are required")
	}
	h := &Hook[V]{
		key:      opts.Key,
		src:      opts.Source,
		fallback: opts.Fallback,
		hasFB:    opts.HasFallback,
		prio:     opts.Priority,
		usable:   opts.Usable,
		cache:    pc.Bind(m, opts.Codec),
		sched:    opts.Scheduler,
		log:      opts.Logger,
		hooks:    opts.Hooks,
	}
	if !h.prio.Valid() {
		h.prio = pc.Medium
	}
	if h.usable == nil {
		h.usable = func(V) bool { return true }
	}
	if h.sched == nil {
		h.sched = sched.Go{}
	}
	if h.log == nil {
		h.log = pc.NopLogger{}
	}
	if h.hooks == nil {
		h.hooks = pc.NopHooks{}
	}
	return h
}

// Key is the cache key of the dataset.
func (h *Hook[V]) Key() string { return h.key }

// Priority is the tier entries are written with.
func (h *Hook[V]) Priority() pc.Priority { return h.prio }

// Update runs one resolution pass and the background refresh effect, and
// returns the resulting view. Call it whenever the remote snapshot may have
// changed.
func (h *Hook[V]) Update(ctx context.Context) View[V] {
	h.resolve(ctx)
	h.revalidate(ctx)
	return h.Current(ctx)
}

// Current returns the view without resolving again.
func (h *Hook[V]) Current(ctx context.Context) View[V] {
	h.mu.Lock()
	v := View[V]{Data: h.data, IsLoading: !h.resolved && !h.hasFB, Err: h.err}
	if !h.resolved {
		v.Data = h.fallback
	}
	h.mu.Unlock()
	v.IsCached = h.cache.Manager().Has(ctx, h.key)
	return v
}

func (h *Hook[V]) resolve(ctx context.Context) {
	// cache short-circuits before the remote snapshot is looked at
	if v, ok := h.cache.Get(ctx, h.key); ok {
		h.show(v)
		return
	}
	if v, ok := h.src.Snapshot(); ok && h.usable(v) {
		h.show(v)
		h.write(ctx, v)
		return
	}
	if h.hasFB {
		h.show(h.fallback)
		h.write(ctx, h.fallback)
	}
	// nothing new: keep whatever was shown last, loading if that is nothing
}

// revalidate schedules a cache write of the remote snapshot while a cached
// value is being shown.
func (h *Hook[V]) revalidate(ctx context.Context) {
	if !h.cache.Manager().Has(ctx, h.key) {
		return
	}
	v, ok := h.src.Snapshot()
	if !ok || !h.usable(v) {
		return
	}
	bg := context.WithoutCancel(ctx)
	h.sched.Defer(func() {
		h.write(bg, v)
		h.hooks.BackgroundWrite(h.key)
	})
}

// Refresh pulls from the source synchronously. On success the value replaces
// both the cache entry and the displayed data. On failure the error is kept on
// the view and returned as *prioritycache.RefreshError; data is untouched.
func (h *Hook[V]) Refresh(ctx context.Context) error {
	v, ok, err := h.src.Fetch(ctx)
	if err != nil {
		rerr := &pc.RefreshError{Key: h.key, Err: err}
		h.mu.Lock()
		h.err = rerr
		h.mu.Unlock()
		h.hooks.RefreshFailed(h.key, err)
		h.log.Warn("refresh failed", pc.Fields{"key": h.key, "err": err})
		return rerr
	}
	if !ok || !h.usable(v) {
		return nil
	}
	h.write(ctx, v)
	h.mu.Lock()
	h.data, h.resolved, h.err = v, true, nil
	h.mu.Unlock()
	return nil
}

// Watch runs Update on every signal from changes (and once at start) and
// publishes each view. The returned channel is closed when ctx is done or
// changes is closed. Slow receivers only ever see the latest view.
func (h *Hook[V]) Watch(ctx context.Context, changes <-chan struct{}) <-chan View[V] {
	out := make(chan View[V], 1)
	go func() {
		defer close(out)
		publish := func(v View[V]) {
			select {
			case <-out: // replace an unread view
			default:
			}
			out <- v
		}
		publish(h.Update(ctx))
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				publish(h.Update(ctx))
			}
		}
	}()
	return out
}

func (h *Hook[V]) show(v V) {
	h.mu.Lock()
	h.data, h.resolved = v, true
	h.mu.Unlock()
}

func (h *Hook[V]) write(ctx context.Context, v V) {
	if err := h.cache.Set(ctx, h.key, v, h.prio); err != nil {
		h.log.Warn("cache write failed", pc.Fields{"key": h.key, "err": err})
	}
}
