package prioritycache

import (
	"context"
	"fmt"

	c "github.com/unkn0wn-root/prioritycache/codec"
)

// Typed is a view of a Manager that encodes and decodes V with a value codec.
// The codec must produce JSON since entries are stored inside a JSON document.
type Typed[V any] struct {
	m     *Manager
	codec c.Codec[V]
}

// Bind returns a typed view of m. A nil codec means codec.JSON[V].
func Bind[V any](m *Manager, codec c.Codec[V]) Typed[V] {
	if codec == nil {
		codec = c.JSON[V]{}
	}
	return Typed[V]{m: m, codec: codec}
}

// Manager returns the underlying manager.
func (t Typed[V]) Manager() *Manager { return t.m }

// Get returns the decoded value for key. An entry that no longer decodes into V
// is treated as corrupt: it is removed and reported as a miss.
func (t Typed[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	e, ok := t.m.lookup(ctx, key)
	if !ok {
		return zero, false
	}
	v, err := t.codec.Decode(e.Data)
	if err != nil {
		t.m.dropIfSame(ctx, key, e, ReasonDecode)
		return zero, false
	}
	return v, true
}

// Set encodes v and writes it under key at priority p.
func (t Typed[V]) Set(ctx context.Context, key string, v V, p Priority) error {
	b, err := t.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("prioritycache: encode %q: %w", key, err)
	}
	return t.m.Set(ctx, key, b, p)
}

// Has reports whether key holds a valid entry that decodes into V.
func (t Typed[V]) Has(ctx context.Context, key string) bool {
	_, ok := t.Get(ctx, key)
	return ok
}
