package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SITECACHE_REMOTE_URL", "https://happy-otter-123.convex.cloud")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Backend != BackendSQLite || cfg.BlobCodec != CodecJSON {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.StorageKey != "priority-cache" || cfg.Version != "1.0.0" {
		t.Fatalf("unexpected cache defaults: %+v", cfg)
	}
	if cfg.PollInterval != 30*time.Second || cfg.RemoteTimeout != 10*time.Second {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SITECACHE_REMOTE_URL", "http://localhost:3210")
	t.Setenv("SITECACHE_BACKEND", "redis")
	t.Setenv("SITECACHE_BLOB_CODEC", "cbor")
	t.Setenv("SITECACHE_POLL_INTERVAL", "5s")
	t.Setenv("SITECACHE_VERSION", "2.0.0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendRedis || cfg.BlobCodec != CodecCBOR || cfg.PollInterval != 5*time.Second || cfg.Version != "2.0.0" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("SITECACHE_BACKEND", "memcached")
	t.Setenv("SITECACHE_BLOB_CODEC", "xml")
	t.Setenv("SITECACHE_REMOTE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"SITECACHE_BACKEND", "SITECACHE_BLOB_CODEC", "SITECACHE_REMOTE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %v", want, err)
		}
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("SITECACHE_POLL_INTERVAL", "soon")

	var cfg Config
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
