package prioritycache

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	be "github.com/unkn0wn-root/prioritycache/backend"
	c "github.com/unkn0wn-root/prioritycache/codec"
)

const (
	DefaultStorageKey = "priority-cache"
	DefaultVersion    = "1.0.0"
)

// Options configure a Manager.
// Only Backend is required; others have sensible defaults.
type Options struct {
	// Required
	Backend be.Backend

	StorageKey   string                     // key the blob lives under; "" => "priority-cache"
	Version      string                     // schema version; bump to invalidate everything. "" => "1.0.0"
	Codec        c.Codec[map[string]Entry]  // blob codec; nil => JSON
	MaxBlobBytes int                        // refuse to decode larger blobs; 0 => unlimited
	TTLs         map[Priority]time.Duration // per-tier overrides of DefaultTTL
	Clock        func() time.Time           // nil => time.Now
	Logger       Logger                     // nil => NopLogger
	Hooks        Hooks                      // nil => NopHooks
}

// Manager is the single authority over cached entries. It owns expiry and
// version validation and mirrors every change to the backend.
// A Manager is safe for concurrent use; construct one per process and share it.
type Manager struct {
	mu      sync.Mutex
	entries map[string]Entry

	store   *blobStore
	version string
	ttls    map[Priority]time.Duration
	now     func() time.Time
	log     Logger
	hooks   Hooks
}

// New loads the persisted blob and keeps only the entries that are still
// valid. Dropped entries are not written back until the next change.
func New(ctx context.Context, opts Options) (*Manager, error) {
	if opts.Backend == nil {
		return nil, ErrBackendRequired
	}

	m := &Manager{
		version: coalesce(opts.Version, DefaultVersion),
		now:     opts.Clock,
		log:     coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:   coalesce[Hooks](opts.Hooks, NopHooks{}),
		ttls:    make(map[Priority]time.Duration, 4),
	}
	if m.now == nil {
		m.now = time.Now
	}
	for _, p := range []Priority{Critical, High, Medium, Low} {
		m.ttls[p] = DefaultTTL(p)
		if d, ok := opts.TTLs[p]; ok && d > 0 {
			m.ttls[p] = d
		}
	}

	blob := coalesce[c.Codec[map[string]Entry]](opts.Codec, c.JSON[map[string]Entry]{})
	if opts.MaxBlobBytes > 0 {
		blob = c.Limit[map[string]Entry]{Inner: blob, MaxDecode: opts.MaxBlobBytes}
	}
	m.store = &blobStore{
		backend: opts.Backend,
		key:     coalesce(opts.StorageKey, DefaultStorageKey),
		codec:   blob,
		log:     m.log,
		hooks:   m.hooks,
	}

	loaded := m.store.load(ctx)
	now := m.now()
	m.entries = make(map[string]Entry, len(loaded))
	for k, e := range loaded {
		if !e.wellFormed() {
			m.hooks.EntryDropped(k, ReasonCorrupt)
			continue
		}
		if reason := e.invalidReason(now, m.version); reason != "" {
			m.hooks.EntryDropped(k, reason)
			continue
		}
		m.entries[k] = e
	}
	m.log.Debug("cache loaded", Fields{"loaded": len(loaded), "kept": len(m.entries), "version": m.version})
	return m, nil
}

// Version is the schema version entries are validated against.
func (m *Manager) Version() string { return m.version }

// TTL returns the lifetime an entry written at priority p receives.
func (m *Manager) TTL(p Priority) time.Duration {
	if d, ok := m.ttls[p]; ok {
		return d
	}
	return m.ttls[Medium]
}

// Get returns the cached data for key if the entry is valid. An invalid entry
// is removed from memory and from the persisted blob. A miss on an absent key
// does not write anything.
func (m *Manager) Get(ctx context.Context, key string) (json.RawMessage, bool) {
	e, ok := m.lookup(ctx, key)
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// Has reports whether a valid entry exists for key, with the same side
// effects as Get.
func (m *Manager) Has(ctx context.Context, key string) bool {
	_, ok := m.lookup(ctx, key)
	return ok
}

// Set writes data under key, replacing any previous entry, and persists the
// full map. Persistence failures are logged and swallowed; the entry stays
// available in memory.
func (m *Manager) Set(ctx context.Context, key string, data json.RawMessage, p Priority) error {
	if key == "" {
		return ErrEmptyKey
	}
	if !json.Valid(data) {
		return ErrInvalidData
	}
	if !p.Valid() {
		p = Medium
	}
	e := Entry{
		Data:      append(json.RawMessage(nil), data...),
		Timestamp: m.now().UnixMilli(),
		Version:   m.version,
		TTL:       m.TTL(p).Milliseconds(),
		Priority:  p,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
	// persisted under the lock so blob writes land in map order
	m.store.save(ctx, m.entries)
	return nil
}

// Delete removes key if present.
func (m *Manager) Delete(ctx context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	m.store.save(ctx, m.entries)
}

// Clear empties the cache and erases the persisted blob.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	m.store.erase(ctx)
	m.log.Info("cache cleared", Fields{"storageKey": m.store.key})
}

// EntryStat describes one entry for introspection.
type EntryStat struct {
	Key      string        `json:"key"`
	Priority Priority      `json:"priority"`
	Age      time.Duration `json:"age"`
	TTL      time.Duration `json:"ttl"`
}

// Stats is a point-in-time view of the cache. It is not used for eviction.
type Stats struct {
	Size    int         `json:"size"`
	Keys    []string    `json:"keys"`
	Entries []EntryStat `json:"entries"`
}

// Stats reports every entry currently held, valid or not, sorted by key.
func (m *Manager) Stats() Stats {
	now := m.now()
	m.mu.Lock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	st := Stats{Size: len(keys), Keys: keys, Entries: make([]EntryStat, 0, len(keys))}
	for _, k := range keys {
		e := m.entries[k]
		st.Entries = append(st.Entries, EntryStat{
			Key:      k,
			Priority: e.Priority,
			Age:      e.age(now),
			TTL:      time.Duration(e.TTL) * time.Millisecond,
		})
	}
	m.mu.Unlock()
	return st
}

func (m *Manager) lookup(ctx context.Context, key string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return Entry{}, false
	}
	if reason := e.invalidReason(m.now(), m.version); reason != "" {
		delete(m.entries, key)
		m.store.save(ctx, m.entries)
		m.hooks.EntryDropped(key, reason)
		m.log.Debug("dropped invalid entry", Fields{"key": key, "reason": reason})
		return Entry{}, false
	}
	return e, true
}

// dropIfSame removes key only if it still holds the entry the caller read.
func (m *Manager) dropIfSame(ctx context.Context, key string, seen Entry, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.entries[key]
	if !ok || cur.Timestamp != seen.Timestamp || !bytes.Equal(cur.Data, seen.Data) {
		return
	}
	delete(m.entries, key)
	m.store.save(ctx, m.entries)
	m.hooks.EntryDropped(key, reason)
	m.log.Debug("dropped undecodable entry", Fields{"key": key, "reason": reason})
}

// Close releases the backend.
func (m *Manager) Close(ctx context.Context) error {
	return m.store.backend.Close(ctx)
}
