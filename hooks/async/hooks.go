// Package asynchook dispatches prioritycache hooks off the caller's goroutine.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{DropEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	m, _ := prioritycache.New(ctx, prioritycache.Options{
//	    Backend: store,
//	    Hooks:   hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"github.com/unkn0wn-root/prioritycache"
	"github.com/unkn0wn-root/prioritycache/sched"
)

type Hooks struct {
	inner prioritycache.Hooks
	q     *sched.Queue
}

var _ prioritycache.Hooks = (*Hooks)(nil)

// New wraps inner. Events are dropped when qlen are already pending.
func New(inner prioritycache.Hooks, workers, qlen int) *Hooks {
	return &Hooks{inner: inner, q: sched.NewQueue(workers, qlen)}
}

// Close drains pending events and stops the workers.
func (h *Hooks) Close() { h.q.Close() }

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.q.Dropped() }

func (h *Hooks) EntryDropped(k, r string)           { h.q.Defer(func() { h.inner.EntryDropped(k, r) }) }
func (h *Hooks) PersistFailed(op string, err error) { h.q.Defer(func() { h.inner.PersistFailed(op, err) }) }
func (h *Hooks) BackgroundWrite(k string)           { h.q.Defer(func() { h.inner.BackgroundWrite(k) }) }
func (h *Hooks) RefreshFailed(k string, err error)  { h.q.Defer(func() { h.inner.RefreshFailed(k, err) }) }
