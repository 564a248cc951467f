package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	pc "github.com/unkn0wn-root/prioritycache"
)

// Querier is the part of Client a Feed needs.
type Querier interface {
	Query(ctx context.Context, path string, args any) (json.RawMessage, error)
}

var _ Querier = (*Client)(nil)

type FeedOptions struct {
	Interval   time.Duration // poll period of a healthy subscription; 0 => 30s
	MaxBackoff time.Duration // cap on the retry delay after failures; 0 => 5m
	Logger     pc.Logger     // nil => NopLogger
}

// Feed keeps one subscription per query path up to date.
type Feed struct {
	q          Querier
	interval   time.Duration
	maxBackoff time.Duration
	log        pc.Logger

	mu      sync.Mutex
	subs    map[string]*Subscription
	runCtx  context.Context
	running sync.WaitGroup
}

func NewFeed(q Querier, opts FeedOptions) *Feed {
	f := &Feed{
		q:          q,
		interval:   opts.Interval,
		maxBackoff: opts.MaxBackoff,
		log:        opts.Logger,
		subs:       make(map[string]*Subscription),
	}
	if f.interval <= 0 {
		f.interval = 30 * time.Second
	}
	if f.maxBackoff <= 0 {
		f.maxBackoff = 5 * time.Minute
	}
	if f.log == nil {
		f.log = pc.NopLogger{}
	}
	return f
}

// Subscribe returns the subscription for path, creating it on first use.
// Subscriptions created while Run is active start polling immediately.
func (f *Feed) Subscribe(path string) *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.subs[path]; ok {
		return s
	}
	s := &Subscription{path: path, q: f.q, changes: make(chan struct{}, 1)}
	f.subs[path] = s
	if f.runCtx != nil {
		f.start(f.runCtx, s)
	}
	return s
}

// Run polls every subscription until ctx is done, then waits for the pollers
// to exit. It returns ctx.Err().
func (f *Feed) Run(ctx context.Context) error {
	f.mu.Lock()
	f.runCtx = ctx
	for _, s := range f.subs {
		f.start(ctx, s)
	}
	f.mu.Unlock()

	<-ctx.Done()

	f.mu.Lock()
	f.runCtx = nil
	f.mu.Unlock()
	f.running.Wait()
	return ctx.Err()
}

// start must be called with f.mu held.
func (f *Feed) start(ctx context.Context, s *Subscription) {
	f.running.Add(1)
	go func() {
		defer f.running.Done()
		f.poll(ctx, s)
	}()
}

func (f *Feed) poll(ctx context.Context, s *Subscription) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = f.maxBackoff

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := f.interval
		if _, _, err := s.Fetch(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = b.NextBackOff()
			if wait == backoff.Stop || wait > f.maxBackoff {
				wait = f.maxBackoff
			}
			f.log.Warn("subscription poll failed", pc.Fields{"path": s.path, "retryIn": wait.String(), "err": err})
		} else {
			b.Reset()
		}
		timer.Reset(wait)
	}
}

// Subscription is the latest known value of one query.
type Subscription struct {
	path    string
	q       Querier
	changes chan struct{}

	mu      sync.RWMutex
	val     json.RawMessage
	ok      bool
	err     error
	updated time.Time
}

// Path is the query path.
func (s *Subscription) Path() string { return s.path }

// Snapshot returns the latest value without blocking; ok is false until the
// first successful poll.
func (s *Subscription) Snapshot() (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val, s.ok
}

// Fetch queries the backend now and updates the snapshot on success.
func (s *Subscription) Fetch(ctx context.Context) (json.RawMessage, bool, error) {
	v, err := s.q.Query(ctx, s.path, nil)
	s.mu.Lock()
	if err != nil {
		s.err = err
		s.mu.Unlock()
		return nil, false, err
	}
	changed := !s.ok || !bytes.Equal(s.val, v)
	s.val, s.ok, s.err, s.updated = v, true, nil, time.Now()
	s.mu.Unlock()

	if changed {
		select {
		case s.changes <- struct{}{}:
		default: // a signal is already pending
		}
	}
	return v, true, nil
}

// Changes receives a signal after the value changes. Signals coalesce: one
// pending signal stands for any number of changes.
func (s *Subscription) Changes() <-chan struct{} { return s.changes }

// Err returns the error of the last failed poll, cleared by the next success.
func (s *Subscription) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Updated reports when the snapshot last changed hands.
func (s *Subscription) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}
