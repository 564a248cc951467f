package prioritycache

// Drop reasons reported through Hooks.EntryDropped.
const (
	ReasonExpired = "expired"
	ReasonVersion = "version"
	ReasonCorrupt = "corrupt"
	ReasonDecode  = "decode"
)

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; wrap slow sinks with
// hooks/async.
type Hooks interface {
	// An entry was removed because it failed validation.
	// reason ∈ {"expired", "version", "corrupt", "decode"}
	EntryDropped(key, reason string)

	// The backend failed to load, save or erase the blob.
	// op ∈ {"load", "save", "erase"}
	PersistFailed(op string, err error)

	// A background refresh wrote a fresher remote value for key.
	BackgroundWrite(key string)

	// A manual refresh of key failed.
	RefreshFailed(key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) EntryDropped(string, string) {}
func (NopHooks) PersistFailed(string, error) {}
func (NopHooks) BackgroundWrite(string)      {}
func (NopHooks) RefreshFailed(string, error) {}
