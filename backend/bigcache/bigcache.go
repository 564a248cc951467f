// Package bigcache keeps the cache blob in an in-process BigCache. Contents
// live as long as the process, which makes it the session-only backend.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	be "github.com/unkn0wn-root/prioritycache/backend"
)

type BigCache struct {
	c *bc.BigCache
}

var _ be.Backend = (*BigCache)(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => 24h; BigCache has no per-entry TTL
	MaxEntrySize       int           // bytes; sizing hint for the shard buffers
	HardMaxCacheSizeMB int           // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*BigCache, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = 24 * time.Hour
	}
	conf := bc.DefaultConfig(life)
	// one blob key: few shards, no cleanup churn
	conf.Shards = 1
	conf.CleanWindow = 0
	conf.MaxEntriesInWindow = 16
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &BigCache{c: c}, nil
}

func (b *BigCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := b.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *BigCache) Set(_ context.Context, key string, value []byte) error {
	return b.c.Set(key, value)
}

func (b *BigCache) Del(_ context.Context, key string) error {
	err := b.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (b *BigCache) Close(_ context.Context) error {
	return b.c.Close()
}
