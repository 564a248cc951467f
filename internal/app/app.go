// Package app wires the sitecache process: configuration, logging, the cache
// backend, the remote feed, the dataset registry and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	pc "github.com/unkn0wn-root/prioritycache"
	be "github.com/unkn0wn-root/prioritycache/backend"
	bcbackend "github.com/unkn0wn-root/prioritycache/backend/bigcache"
	redisbackend "github.com/unkn0wn-root/prioritycache/backend/redis"
	rbackend "github.com/unkn0wn-root/prioritycache/backend/ristretto"
	sqlitebackend "github.com/unkn0wn-root/prioritycache/backend/sqlite"
	c "github.com/unkn0wn-root/prioritycache/codec"
	asynchook "github.com/unkn0wn-root/prioritycache/hooks/async"
	"github.com/unkn0wn-root/prioritycache/internal/config"
	"github.com/unkn0wn-root/prioritycache/internal/httpapi"
	logruslog "github.com/unkn0wn-root/prioritycache/log/logrus"
	sloglog "github.com/unkn0wn-root/prioritycache/log/slog"
	zaplog "github.com/unkn0wn-root/prioritycache/log/zap"
	"github.com/unkn0wn-root/prioritycache/remote"
	"github.com/unkn0wn-root/prioritycache/sched"
	"github.com/unkn0wn-root/prioritycache/sitedata"
	"github.com/unkn0wn-root/prioritycache/sloghooks"
)

const shutdownTimeout = 10 * time.Second

// Run serves until ctx is done, then shuts down in dependency order.
func Run(ctx context.Context, cfg config.Config) error {
	log, sl, syncLog := NewLogger(cfg.LogFormat, cfg.LogLevel)
	defer syncLog()

	store, err := OpenBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}

	hooks := asynchook.New(sloghooks.New(sl, sloghooks.Options{DropEvery: 10, BackgroundWriteEvery: 50}), 1, 1024)
	defer hooks.Close()

	m, err := pc.New(ctx, pc.Options{
		Backend:      store,
		StorageKey:   cfg.StorageKey,
		Version:      cfg.Version,
		Codec:        BlobCodec(cfg.BlobCodec),
		MaxBlobBytes: cfg.MaxBlobBytes,
		Logger:       log,
		Hooks:        hooks,
	})
	if err != nil {
		_ = store.Close(ctx)
		return fmt.Errorf("cache manager: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := m.Close(closeCtx); err != nil {
			log.Warn("close backend failed", pc.Fields{"err": err})
		}
	}()

	client, err := remote.NewClient(remote.ClientOptions{
		BaseURL: cfg.RemoteURL,
		Timeout: cfg.RemoteTimeout,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	feed := remote.NewFeed(client, remote.FeedOptions{Interval: cfg.PollInterval, Logger: log})

	bg := sched.NewQueue(2, 256)
	defer bg.Close()

	reg := sitedata.NewRegistry(m, sitedata.FromFeed(feed), sitedata.RegistryOptions{
		Scheduler: bg,
		Logger:    log,
		Hooks:     hooks,
	})
	if err := reg.WarmUp(ctx); err != nil {
		return fmt.Errorf("warm up: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(reg, m, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(feed.Run(gctx)) })
	g.Go(func() error {
		return ignoreCanceled(reg.Run(gctx, func(v sitedata.View) {
			log.Debug("dataset updated", pc.Fields{"key": v.Key, "cached": v.IsCached})
		}))
	})
	g.Go(func() error {
		log.Info("listening", pc.Fields{"addr": cfg.Addr, "backend": cfg.Backend, "codec": cfg.BlobCodec})
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	err = g.Wait()
	log.Info("stopped", pc.Fields{"droppedBackground": bg.Dropped(), "droppedHooks": hooks.Dropped()})
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// OpenBackend builds the byte store named by cfg.Backend.
func OpenBackend(ctx context.Context, cfg config.Config) (be.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return sqlitebackend.Open(cfg.SQLitePath)
	case config.BackendRedis:
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, err
		}
		return redisbackend.New(redisbackend.Config{Client: rdb, Prefix: cfg.RedisPrefix, CloseClient: true})
	case config.BackendBigCache:
		return bcbackend.New(ctx, bcbackend.Config{MaxEntrySize: 64 << 10})
	case config.BackendRistretto:
		return rbackend.New(rbackend.Config{})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// BlobCodec returns the codec the whole cache map is persisted with. Unknown
// names fall back to JSON.
func BlobCodec(name string) c.Codec[map[string]pc.Entry] {
	switch name {
	case config.CodecCBOR:
		return c.MustCBOR[map[string]pc.Entry](true)
	case config.CodecMsgpack:
		return c.Msgpack[map[string]pc.Entry]{}
	default:
		return c.JSON[map[string]pc.Entry]{}
	}
}

// NewLogger builds the cache logger for format. The returned *slog.Logger
// carries hook events in every format. sync flushes buffered output.
func NewLogger(format, level string) (log pc.Logger, sl *slog.Logger, sync func()) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == config.LogText {
		sl = slog.New(slog.NewTextHandler(os.Stderr, opts))
	} else {
		sl = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	switch format {
	case config.LogZap:
		zc := zap.NewProductionConfig()
		if zl, err := zapcore.ParseLevel(strings.ToLower(level)); err == nil {
			zc.Level = zap.NewAtomicLevelAt(zl)
		}
		z, err := zc.Build()
		if err != nil {
			return sloglog.Logger{L: sl}, sl, func() {}
		}
		return zaplog.New(z), sl, func() { _ = z.Sync() }
	case config.LogLogrus:
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetFormatter(&logrus.JSONFormatter{})
		if ll, err := logrus.ParseLevel(level); err == nil {
			l.SetLevel(ll)
		}
		return logruslog.New(l), sl, func() {}
	default:
		return sloglog.Logger{L: sl}, sl, func() {}
	}
}
