package bigcache

import (
	"context"
	"testing"
)

func TestRoundTripAndDelete(t *testing.T) {
	ctx := context.Background()
	b, err := New(ctx, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close(ctx)

	if _, ok, err := b.Get(ctx, "blob"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if err := b.Set(ctx, "blob", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := b.Get(ctx, "blob")
	if err != nil || !ok || string(got) != "v1" {
		t.Fatalf("Get: ok=%v err=%v got=%q", ok, err, got)
	}
	if err := b.Del(ctx, "blob"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if err := b.Del(ctx, "blob"); err != nil {
		t.Fatalf("Del missing should be nil, got %v", err)
	}
}
