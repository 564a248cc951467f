// Package codec converts values to and from the bytes prioritycache keeps.
//
// Two kinds of codecs are used. Value codecs turn a dataset payload into the
// JSON stored in an entry's data field (JSON, ProtoJSON). Blob codecs turn the
// whole key -> entry map into the single blob written to a backend (JSON,
// CBOR, Msgpack), optionally wrapped in Limit.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
