package codec

import "fmt"

// Limit wraps another codec and refuses to decode payloads larger than
// MaxDecode bytes. Encode is forwarded unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// The manager uses it to treat an oversized persisted blob the same way as a
// corrupt one.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

// ErrTooLarge reports a payload rejected by Limit.
type ErrTooLarge struct {
	Size, Max int
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("payload too large: %d > %d", e.Size, e.Max)
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, &ErrTooLarge{Size: len(b), Max: c.MaxDecode}
	}
	return c.Inner.Decode(b)
}
