package swr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pc "github.com/unkn0wn-root/prioritycache"
	be "github.com/unkn0wn-root/prioritycache/backend"
)

type memBackend struct {
	mu sync.Mutex
	m  map[string][]byte
}

var _ be.Backend = (*memBackend)(nil)

func newMemBackend() *memBackend { return &memBackend{m: make(map[string][]byte)} }

func (b *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *memBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = append([]byte(nil), value...)
	return nil
}

func (b *memBackend) Del(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

func (b *memBackend) Close(context.Context) error { return nil }

// manualScheduler holds deferred tasks until Flush, standing in for "the next
// idle point".
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (s *manualScheduler) Defer(f func()) {
	s.mu.Lock()
	s.tasks = append(s.tasks, f)
	s.mu.Unlock()
}

func (s *manualScheduler) Flush() int {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, f := range tasks {
		f()
	}
	return len(tasks)
}

type item struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// fakeSource is a remote whose snapshot can be set from the test.
type fakeSource struct {
	mu        sync.Mutex
	v         []item
	ok        bool
	fetchErr  error
	snapshots int
}

func (s *fakeSource) set(v []item) {
	s.mu.Lock()
	s.v, s.ok = v, true
	s.mu.Unlock()
}

func (s *fakeSource) Snapshot() ([]item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots++
	return s.v, s.ok
}

func (s *fakeSource) Fetch(context.Context) ([]item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, false, s.fetchErr
	}
	return s.v, s.ok, nil
}

func newManager(t *testing.T, b be.Backend) *pc.Manager {
	t.Helper()
	m, err := pc.New(context.Background(), pc.Options{Backend: b})
	if err != nil {
		t.Fatalf("pc.New: %v", err)
	}
	return m
}

func newListHook(m *pc.Manager, src Source[[]item], s *manualScheduler, fallback []item) *Hook[[]item] {
	return New(m, Options[[]item]{
		Key:         "services",
		Source:      src,
		Fallback:    fallback,
		HasFallback: fallback != nil,
		Priority:    pc.High,
		Usable:      NonEmpty[item],
		Scheduler:   s,
	})
}

func equalItems(a, b []item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ==============================
// Resolution order
// ==============================

func TestCacheWinsOverRemote(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, newMemBackend())
	cached := []item{{ID: "1", Label: "cached"}}
	if err := pc.Bind[[]item](m, nil).Set(ctx, "services", cached, pc.High); err != nil {
		t.Fatalf("seed: %v", err)
	}

	src := &fakeSource{}
	src.set([]item{{ID: "1", Label: "remote"}})
	s := &manualScheduler{}
	h := newListHook(m, src, s, nil)

	v := h.Update(ctx)
	if !equalItems(v.Data, cached) || v.IsLoading || !v.IsCached {
		t.Fatalf("expected cached view, got %+v", v)
	}

	// background refresh queued, not applied to the view
	if n := s.Flush(); n != 1 {
		t.Fatalf("expected one deferred write, got %d", n)
	}
	if cur := h.Current(ctx); !equalItems(cur.Data, cached) {
		t.Fatalf("background write must not change the shown data, got %+v", cur.Data)
	}

	// next pass picks the refreshed entry up
	if v := h.Update(ctx); v.Data[0].Label != "remote" {
		t.Fatalf("expected refreshed cache on next pass, got %+v", v.Data)
	}
}

func TestRemoteAdoptedAndCached(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	m := newManager(t, b)
	want := []item{{ID: "1", Label: "X"}}
	src := &fakeSource{}
	src.set(want)

	v := newListHook(m, src, &manualScheduler{}, nil).Update(ctx)
	if !equalItems(v.Data, want) || v.IsLoading || !v.IsCached {
		t.Fatalf("first resolution: %+v", v)
	}

	// new session over the same persisted store, remote not resolved yet
	m2 := newManager(t, b)
	v2 := newListHook(m2, &fakeSource{}, &manualScheduler{}, nil).Update(ctx)
	if !equalItems(v2.Data, want) || v2.IsLoading || !v2.IsCached {
		t.Fatalf("second session should hit the cache, got %+v", v2)
	}
}

func TestFallbackPrecedence(t *testing.T) {
	ctx := context.Background()
	fb := []item{{ID: "fb", Label: "Ravalement"}}

	m := newManager(t, newMemBackend())
	h := newListHook(m, &fakeSource{}, &manualScheduler{}, fb)
	v := h.Update(ctx)
	if !equalItems(v.Data, fb) || v.IsLoading {
		t.Fatalf("expected fallback, not loading: %+v", v)
	}
	if !v.IsCached {
		t.Fatalf("fallback should be written to the cache")
	}

	m2 := newManager(t, newMemBackend())
	v2 := newListHook(m2, &fakeSource{}, &manualScheduler{}, nil).Update(ctx)
	if !v2.IsLoading || v2.Data != nil || v2.IsCached {
		t.Fatalf("no cache, no remote, no fallback => loading, got %+v", v2)
	}
}

func TestEmptyRemoteListIsNotUsable(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, newMemBackend())
	src := &fakeSource{}
	src.set([]item{})
	fb := []item{{ID: "fb"}}

	v := newListHook(m, src, &manualScheduler{}, fb).Update(ctx)
	if !equalItems(v.Data, fb) {
		t.Fatalf("empty remote list should fall through to fallback, got %+v", v.Data)
	}
}

func TestLoadingUntilRemoteResolves(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, newMemBackend())
	src := &fakeSource{}
	h := newListHook(m, src, &manualScheduler{}, nil)

	if v := h.Update(ctx); !v.IsLoading {
		t.Fatalf("expected loading")
	}
	src.set([]item{{ID: "1"}})
	if v := h.Update(ctx); v.IsLoading || len(v.Data) != 1 {
		t.Fatalf("expected resolved view, got %+v", v)
	}
}

func TestKeepsLastDataWhenCacheExpiresAndRemoteUnresolved(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	m, err := pc.New(ctx, pc.Options{Backend: newMemBackend(), Clock: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("pc.New: %v", err)
	}
	src := &fakeSource{}
	src.set([]item{{ID: "1"}})
	h := newListHook(m, src, &manualScheduler{}, nil)
	h.Update(ctx)

	src.mu.Lock()
	src.ok = false
	src.mu.Unlock()
	now = now.Add(13 * time.Hour) // past the high TTL

	v := h.Update(ctx)
	if v.IsLoading || len(v.Data) != 1 || v.IsCached {
		t.Fatalf("expected stale in-memory data, not cached, not loading: %+v", v)
	}
}

// ==============================
// Refresh
// ==============================

func TestRefreshFailureKeepsData(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, newMemBackend())
	src := &fakeSource{}
	src.set([]item{{ID: "1", Label: "shown"}})
	h := newListHook(m, src, &manualScheduler{}, nil)
	before := h.Update(ctx)

	src.mu.Lock()
	src.fetchErr = errors.New("backend unreachable")
	src.mu.Unlock()

	err := h.Refresh(ctx)
	var rerr *pc.RefreshError
	if !errors.As(err, &rerr) || rerr.Key != "services" {
		t.Fatalf("expected *RefreshError, got %v", err)
	}
	v := h.Current(ctx)
	if !equalItems(v.Data, before.Data) {
		t.Fatalf("refresh failure changed data: %+v", v.Data)
	}
	if v.Err == nil || !strings.Contains(v.Err.Error(), "backend unreachable") {
		t.Fatalf("expected error on view, got %v", v.Err)
	}

	// a later successful refresh clears it
	src.mu.Lock()
	src.fetchErr = nil
	src.v = []item{{ID: "2", Label: "fresh"}}
	src.mu.Unlock()
	if err := h.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	v = h.Current(ctx)
	if v.Err != nil || v.Data[0].ID != "2" {
		t.Fatalf("expected fresh data and no error, got %+v", v)
	}
	if got, _ := pc.Bind[[]item](m, nil).Get(ctx, "services"); got[0].ID != "2" {
		t.Fatalf("refresh should overwrite the cache, got %+v", got)
	}
}

// ==============================
// Scalar datasets and Watch
// ==============================

type hero struct {
	Title string `json:"title"`
}

func TestScalarHookWithNonNil(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, newMemBackend())
	var remote *hero
	h := New(m, Options[*hero]{
		Key:         "site-config:hero",
		Source:      SourceFunc[*hero](func() (*hero, bool) { return remote, true }),
		Fallback:    &hero{Title: "Rénovation de façades"},
		HasFallback: true,
		Priority:    pc.Critical,
		Usable:      NonNil[hero],
		Scheduler:   &manualScheduler{},
	})

	if v := h.Update(ctx); v.Data.Title != "Rénovation de façades" {
		t.Fatalf("nil remote record should fall back, got %+v", v.Data)
	}
	if h.Priority() != pc.Critical || h.Key() != "site-config:hero" {
		t.Fatalf("unexpected hook identity")
	}
}

func TestWatchPublishesOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newManager(t, newMemBackend())
	src := &fakeSource{}
	h := newListHook(m, src, &manualScheduler{}, nil)

	changes := make(chan struct{})
	views := h.Watch(ctx, changes)

	if v := <-views; !v.IsLoading {
		t.Fatalf("initial view should be loading, got %+v", v)
	}
	src.set([]item{{ID: "1"}})
	changes <- struct{}{}
	select {
	case v := <-views:
		if v.IsLoading || len(v.Data) != 1 {
			t.Fatalf("expected resolved view, got %+v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no view after change")
	}

	close(changes)
	for range views {
	}
}

func TestNewPanicsWithoutSource(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(newManager(t, newMemBackend()), Options[int]{Key: "k"})
}
