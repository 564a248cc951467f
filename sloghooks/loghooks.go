package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/prioritycache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	DropEvery            uint64
	BackgroundWriteEvery uint64
	// Optional key redactor. Defaults to the key itself: dataset keys are
	// not sensitive. Set to HashKey for multi-tenant deployments.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	dropCtr atomic.Uint64
	bgCtr   atomic.Uint64
}

var _ prioritycache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

// HashKey redacts k to a short SHA-256 prefix.
func HashKey(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	return k
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) EntryDropped(key, reason string) {
	if h.l == nil || !sample(h.opts.DropEvery, &h.dropCtr) {
		return
	}
	h.l.Debug("prioritycache.entry_dropped",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) PersistFailed(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("prioritycache.persist_failed",
		"op", op,
		"err", err)
}

func (h *Hooks) BackgroundWrite(key string) {
	if h.l == nil || !sample(h.opts.BackgroundWriteEvery, &h.bgCtr) {
		return
	}
	h.l.Debug("prioritycache.background_write",
		"key", h.redact(key))
}

func (h *Hooks) RefreshFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("prioritycache.refresh_failed",
		"key", h.redact(key),
		"err", err)
}
