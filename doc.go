// Package prioritycache implements a persistent, priority-tiered cache for
// site content that is rendered cache-first and refreshed in the background.
//
// Components:
//   - Backend: byte store holding the persisted blob (SQLite, Redis, BigCache,
//     Ristretto).
//   - blob codec: (de)serializes the whole key -> Entry map as one blob under a
//     fixed storage key. JSON by default.
//   - Manager: the in-memory map, sole owner of expiry and version checks.
//
// Entries:
//
//	<key> -> {data, timestamp, version, ttl, priority}
//
// An entry is valid iff now-timestamp < ttl and its version matches the
// Manager's. Invalid entries are dropped lazily on read; nothing sweeps in the
// background and nothing is evicted by size. The key set is one key per
// dataset, so the map stays small.
//
// Persistence is best-effort: a backend that fails to read yields an empty
// cache and a backend that fails to write leaves the cache working in memory.
//
// Typical use:
//
//	m, _ := prioritycache.New(prioritycache.Options{Backend: be})
//	services := prioritycache.Bind(m, codec.JSON[[]Service]{})
//	_ = services.Set(ctx, "services", list, prioritycache.High)
//	list, ok := services.Get(ctx, "services")
package prioritycache
