package prioritycache

import (
	"encoding/json"
	"time"
)

// Priority classifies how critical a dataset is to first paint.
// It only selects the TTL of the entry; nothing is evicted by priority.
type Priority string

const (
	Critical Priority = "critical"
	High     Priority = "high"
	Medium   Priority = "medium"
	Low      Priority = "low"
)

// Valid reports whether p is one of the four known tiers.
func (p Priority) Valid() bool {
	switch p {
	case Critical, High, Medium, Low:
		return true
	}
	return false
}

// DefaultTTL is the TTL table entries are written with unless overridden in
// Options.TTLs. Unknown priorities get the Medium TTL.
func DefaultTTL(p Priority) time.Duration {
	switch p {
	case Critical:
		return 24 * time.Hour
	case High:
		return 12 * time.Hour
	case Low:
		return 2 * time.Hour
	default:
		return 6 * time.Hour
	}
}

// Entry is one cached dataset as persisted in the blob.
// Timestamp and TTL are milliseconds.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Version   string          `json:"version"`
	TTL       int64           `json:"ttl"`
	Priority  Priority        `json:"priority"`
}

// invalidReason returns "" when e is servable at now under version,
// otherwise the reason it must be dropped.
func (e Entry) invalidReason(now time.Time, version string) string {
	if e.Version != version {
		return ReasonVersion
	}
	if now.UnixMilli()-e.Timestamp >= e.TTL {
		return ReasonExpired
	}
	return ""
}

// wellFormed rejects entries that could not have been written by Set.
func (e Entry) wellFormed() bool {
	return e.Version != "" && e.TTL > 0 && e.Priority.Valid() && json.Valid(e.Data)
}

func (e Entry) age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}
