// Package ristretto keeps the cache blob in a Ristretto cache. Like bigcache it
// is process-lifetime only; it is the backend to pick when the blob should
// share a cost budget with other in-process caches.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	be "github.com/unkn0wn-root/prioritycache/backend"
)

// ErrRejected is returned by Set when Ristretto's admission policy drops the
// write. The cache treats it like any other persistence failure.
var ErrRejected = errors.New("ristretto backend: write rejected")

type Ristretto struct {
	c *rc.Cache
}

var _ be.Backend = (*Ristretto)(nil)

type Config struct {
	NumCounters int64 // 0 => 1e4
	MaxCost     int64 // bytes; 0 => 64MiB
	BufferItems int64 // 0 => 64
	Metrics     bool
}

func New(cfg Config) (*Ristretto, error) {
	if cfg.NumCounters < 0 || cfg.MaxCost < 0 || cfg.BufferItems < 0 {
		return nil, errors.New("ristretto backend: invalid config")
	}
	if cfg.NumCounters == 0 {
		cfg.NumCounters = 1e4
	}
	if cfg.MaxCost == 0 {
		cfg.MaxCost = 64 << 20
	}
	if cfg.BufferItems == 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Ristretto{c: c}, nil
}

func (r *Ristretto) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := r.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		r.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set stores value with its size as cost and waits for the write buffer to
// drain so a following Get observes it.
func (r *Ristretto) Set(_ context.Context, key string, value []byte) error {
	if !r.c.Set(key, value, int64(len(value))) {
		return ErrRejected
	}
	r.c.Wait()
	return nil
}

func (r *Ristretto) Del(_ context.Context, key string) error {
	r.c.Del(key)
	return nil
}

func (r *Ristretto) Close(_ context.Context) error {
	r.c.Wait()
	r.c.Close()
	return nil
}

// Metrics exposes Ristretto's counters when Config.Metrics is set (nil otherwise).
func (r *Ristretto) Metrics() *rc.Metrics { return r.c.Metrics }
