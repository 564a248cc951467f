package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type record struct {
	Title    string          `json:"title"`
	Order    int             `json:"order"`
	Payload  json.RawMessage `json:"payload"`
	Keywords []string        `json:"keywords,omitempty"`
}

func sample() map[string]record {
	return map[string]record{
		"hero":  {Title: "Rénovation de façades", Order: 1, Payload: json.RawMessage(`{"a":1}`)},
		"zones": {Title: "Zones", Order: 2, Payload: json.RawMessage(`[]`), Keywords: []string{"Lyon"}},
	}
}

func roundTrip[V any](t *testing.T, name string, c Codec[V], v V) V {
	t.Helper()
	b, err := c.Encode(v)
	if err != nil {
		t.Fatalf("%s encode: %v", name, err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("%s decode: %v", name, err)
	}
	return out
}

func TestBlobCodecsPreserveMaps(t *testing.T) {
	codecs := map[string]Codec[map[string]record]{
		"json":     JSON[map[string]record]{},
		"cbor":     MustCBOR[map[string]record](false),
		"cbor-det": MustCBOR[map[string]record](true),
		"msgpack":  Msgpack[map[string]record]{},
	}
	for name, c := range codecs {
		got := roundTrip(t, name, c, sample())
		if len(got) != 2 {
			t.Fatalf("%s: expected 2 entries, got %d", name, len(got))
		}
		if h := got["hero"]; h.Title != "Rénovation de façades" || string(h.Payload) != `{"a":1}` {
			t.Fatalf("%s: hero mismatch %+v", name, h)
		}
		if z := got["zones"]; len(z.Keywords) != 1 || z.Keywords[0] != "Lyon" {
			t.Fatalf("%s: zones mismatch %+v", name, z)
		}
	}
}

func TestCBORDeterministicIsStable(t *testing.T) {
	c := MustCBOR[map[string]record](true)
	a, err := c.Encode(sample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 20; i++ {
		b, _ := c.Encode(sample())
		if !bytes.Equal(a, b) {
			t.Fatalf("deterministic encoding changed between runs")
		}
	}
}

func TestMsgpackUsesJSONNames(t *testing.T) {
	b, err := Msgpack[record]{}.Encode(record{Title: "x"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Contains(b, []byte("title")) || bytes.Contains(b, []byte("Title")) {
		t.Fatalf("expected json field names in %q", b)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := (JSON[map[string]record]{}).Decode([]byte("{not json")); err == nil {
		t.Fatalf("json: expected error")
	}
	if _, err := MustCBOR[map[string]record](false).Decode([]byte{0xff, 0x00}); err == nil {
		t.Fatalf("cbor: expected error")
	}
	if _, err := (Msgpack[map[string]record]{}).Decode([]byte{0xc1}); err == nil {
		t.Fatalf("msgpack: expected error")
	}
}

func TestLimit(t *testing.T) {
	c := Limit[map[string]record]{Inner: JSON[map[string]record]{}, MaxDecode: 16}
	b, err := c.Encode(sample())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = c.Decode(b)
	var tl *ErrTooLarge
	if !errors.As(err, &tl) || tl.Size != len(b) || tl.Max != 16 {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	c.MaxDecode = 0
	if _, err := c.Decode(b); err != nil {
		t.Fatalf("unlimited decode: %v", err)
	}
}

func TestProtoJSON(t *testing.T) {
	c := NewProtoJSON(func() *structpb.Struct { return &structpb.Struct{} })
	in, err := structpb.NewStruct(map[string]any{"title": "Nos services", "count": 4})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	b, err := c.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !json.Valid(b) {
		t.Fatalf("protojson output must be JSON: %s", b)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Fields["title"].GetStringValue() != "Nos services" || out.Fields["count"].GetNumberValue() != 4 {
		t.Fatalf("unexpected struct %v", out)
	}

	w := NewProtoJSON(func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })
	got := roundTrip(t, "wrapper", Codec[*wrapperspb.StringValue](w), wrapperspb.String("Lyon"))
	if got.GetValue() != "Lyon" {
		t.Fatalf("wrapper mismatch: %q", got.GetValue())
	}
}
