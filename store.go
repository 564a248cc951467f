package prioritycache

import (
	"context"

	be "github.com/unkn0wn-root/prioritycache/backend"
	c "github.com/unkn0wn-root/prioritycache/codec"
)

// blobStore persists the whole entry map as one blob under a fixed key.
// It never returns errors: persistence is best-effort and a failure must not
// take the cache down with it.
type blobStore struct {
	backend be.Backend
	key     string
	codec   c.Codec[map[string]Entry]
	log     Logger
	hooks   Hooks
}

// load returns the persisted map, or an empty one when the blob is missing,
// unreadable or corrupt.
func (s *blobStore) load(ctx context.Context) map[string]Entry {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("cache blob load failed; starting empty", Fields{"storageKey": s.key, "err": err})
		s.hooks.PersistFailed("load", err)
		return map[string]Entry{}
	}
	if !ok {
		return map[string]Entry{}
	}
	m, err := s.codec.Decode(raw)
	if err != nil {
		s.log.Warn("cache blob unreadable; starting empty", Fields{"storageKey": s.key, "bytes": len(raw), "err": err})
		s.hooks.EntryDropped(s.key, ReasonCorrupt)
		return map[string]Entry{}
	}
	if m == nil {
		return map[string]Entry{}
	}
	return m
}

// save writes m in full. On failure the previous blob stays in place.
func (s *blobStore) save(ctx context.Context, m map[string]Entry) {
	raw, err := s.codec.Encode(m)
	if err != nil {
		s.log.Warn("cache blob encode failed", Fields{"storageKey": s.key, "err": err})
		s.hooks.PersistFailed("save", err)
		return
	}
	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		s.log.Warn("cache blob save failed; continuing in memory", Fields{"storageKey": s.key, "bytes": len(raw), "err": err})
		s.hooks.PersistFailed("save", err)
	}
}

func (s *blobStore) erase(ctx context.Context) {
	if err := s.backend.Del(ctx, s.key); err != nil {
		s.log.Warn("cache blob erase failed", Fields{"storageKey": s.key, "err": err})
		s.hooks.PersistFailed("erase", err)
	}
}
