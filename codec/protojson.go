package codec

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ProtoJSON is a value codec for protobuf messages. Payloads are stored in
// their canonical JSON mapping so they can live inside a JSON blob next to
// plain Go structs.
type ProtoJSON[T proto.Message] struct {
	new func() T // constructor for a concrete message, e.g. func() *pb.Hero { return &pb.Hero{} }
	mo  protojson.MarshalOptions
	uo  protojson.UnmarshalOptions
}

// NewProtoJSON builds a ProtoJSON codec. Unknown fields are discarded on
// decode so entries written by a newer schema stay readable.
func NewProtoJSON[T proto.Message](ctor func() T) ProtoJSON[T] {
	return ProtoJSON[T]{
		new: ctor,
		mo:  protojson.MarshalOptions{UseProtoNames: true},
		uo:  protojson.UnmarshalOptions{DiscardUnknown: true},
	}
}

func (c ProtoJSON[T]) Encode(v T) ([]byte, error) {
	return c.mo.Marshal(v)
}

func (c ProtoJSON[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := c.uo.Unmarshal(b, m)
	return m, err
}
