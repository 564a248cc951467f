package sitedata

import (
	"context"
	"encoding/json"

	pc "github.com/unkn0wn-root/prioritycache"
	"github.com/unkn0wn-root/prioritycache/remote"
	"github.com/unkn0wn-root/prioritycache/swr"
)

// RawSource is an undecoded remote subscription. *remote.Subscription
// satisfies it.
type RawSource interface {
	Snapshot() (json.RawMessage, bool)
	Fetch(ctx context.Context) (json.RawMessage, bool, error)
	Changes() <-chan struct{}
}

var _ RawSource = (*remote.Subscription)(nil)

// Subscriber opens one RawSource per query path.
type Subscriber interface {
	Subscribe(query string) RawSource
}

// SubscribeFunc adapts a function to Subscriber.
type SubscribeFunc func(query string) RawSource

func (f SubscribeFunc) Subscribe(query string) RawSource { return f(query) }

// FromFeed subscribes through a polling feed.
func FromFeed(f *remote.Feed) Subscriber {
	return SubscribeFunc(func(query string) RawSource { return f.Subscribe(query) })
}

// jsonSource decodes a RawSource into V. A value that does not decode counts
// as unresolved so the hook keeps what it had.
type jsonSource[V any] struct {
	raw   RawSource
	query string
	log   pc.Logger
}

var _ swr.Source[[]Zone] = jsonSource[[]Zone]{}

func (s jsonSource[V]) Snapshot() (V, bool) {
	b, ok := s.raw.Snapshot()
	if !ok {
		var zero V
		return zero, false
	}
	return s.decode(b)
}

func (s jsonSource[V]) Fetch(ctx context.Context) (V, bool, error) {
	b, ok, err := s.raw.Fetch(ctx)
	if err != nil || !ok {
		var zero V
		return zero, false, err
	}
	v, ok := s.decode(b)
	return v, ok, nil
}

func (s jsonSource[V]) decode(b json.RawMessage) (V, bool) {
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		s.log.Warn("remote value does not decode", pc.Fields{"query": s.query, "err": err})
		var zero V
		return zero, false
	}
	return v, true
}
