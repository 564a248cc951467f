// Package redis persists the cache blob in Redis so that several processes
// (or restarts of one) share the same warm cache.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	be "github.com/unkn0wn-root/prioritycache/backend"
)

var ErrNilClient = errors.New("redis backend: nil client")

type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var _ be.Backend = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	Prefix      string // prepended to every key, e.g. "site:prod:"
	CloseClient bool   // set true only if this backend exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, prefix: cfg.Prefix, closeClient: cfg.CloseClient}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *Redis) Del(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

// Close releases the underlying redis client only when this backend owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (r *Redis) Close(context.Context) error {
	if r.closeClient {
		if err := r.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
