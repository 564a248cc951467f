package redis

import (
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestNewKeepsPrefix(t *testing.T) {
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	r, err := New(Config{Client: rdb, Prefix: "site:test:"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.prefix != "site:test:" {
		t.Fatalf("prefix=%q", r.prefix)
	}
}
