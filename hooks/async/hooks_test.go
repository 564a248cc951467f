package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/prioritycache"
)

type countHooks struct {
	prioritycache.NopHooks
	mu     sync.Mutex
	events []string
}

func (c *countHooks) add(s string) {
	c.mu.Lock()
	c.events = append(c.events, s)
	c.mu.Unlock()
}

func (c *countHooks) EntryDropped(k, r string)         { c.add("dropped:" + k + ":" + r) }
func (c *countHooks) PersistFailed(op string, _ error) { c.add("persist:" + op) }
func (c *countHooks) BackgroundWrite(k string)         { c.add("bg:" + k) }
func (c *countHooks) RefreshFailed(k string, _ error)  { c.add("refresh:" + k) }

func TestForwardsAllEvents(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 1, 16)

	h.EntryDropped("zones", prioritycache.ReasonExpired)
	h.PersistFailed("save", errors.New("full"))
	h.BackgroundWrite("services")
	h.RefreshFailed("hero", errors.New("down"))
	h.Close()

	want := []string{"dropped:zones:expired", "persist:save", "bg:services", "refresh:hero"}
	if len(inner.events) != len(want) {
		t.Fatalf("events=%v want %v", inner.events, want)
	}
	for i := range want {
		if inner.events[i] != want[i] {
			t.Fatalf("event %d = %q want %q", i, inner.events[i], want[i])
		}
	}
	if h.Dropped() != 0 {
		t.Fatalf("unexpected drops: %d", h.Dropped())
	}
}
