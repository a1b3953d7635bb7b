package titanium

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// formatTag identifies which [Serializer] encoded a persisted record's
// payload, stored as the single byte right after the PT01 magic in every
// on-disk record header (spec §6) and in the format column of a
// SQLiteStore row.
type formatTag byte

const (
	formatJSON formatTag = 0
	formatGob  formatTag = 1
)

// Serializer converts a task's result value to and from bytes for
// persistence. Record headers carry the [formatTag] a Serializer was
// registered under so a load always knows which one to use, even if the
// store is later reconfigured with a different default.
type Serializer interface {
	Tag() formatTag
	Encode(v any) ([]byte, error)
	Decode(b []byte, out *any) error
}

// JSONSerializer stores results as transparent, human-inspectable JSON,
// the spec's "human-readable" option.
type JSONSerializer struct{}

func (JSONSerializer) Tag() formatTag { return formatJSON }

func (JSONSerializer) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: json encode: %v", ErrStorageError, err)
	}
	return b, nil
}

func (JSONSerializer) Decode(b []byte, out *any) error {
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: json decode: %v", ErrCacheCorruption, err)
	}
	return nil
}

func init() {
	// gob requires every concrete type that flows through an interface{}
	// value to be registered up front. Task results are arbitrary, so
	// register the shapes normalize/concretize itself can produce; a
	// custom result type the caller wants persisted under GobSerializer
	// needs its own gob.Register call, same as any other gob user.
	gob.Register(map[string]any{})
	gob.Register([]any{})
	gob.Register(Tuple{})
	gob.Register(Set{})
	gob.Register(int(0))
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(string(""))
	gob.Register(bool(false))
}

// GobSerializer stores results as opaque binary via stdlib encoding/gob,
// the spec's "opaque binary serializer" option. No pack example imports a
// third-party binary codec (protobuf, msgpack, cbor), so this is built on
// the standard library; see DESIGN.md.
type GobSerializer struct{}

func (GobSerializer) Tag() formatTag { return formatGob }

func (GobSerializer) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, fmt.Errorf("%w: gob encode: %v", ErrStorageError, err)
	}
	return buf.Bytes(), nil
}

func (GobSerializer) Decode(b []byte, out *any) error {
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(out); err != nil {
		return fmt.Errorf("%w: gob decode: %v", ErrCacheCorruption, err)
	}
	return nil
}

func serializerFor(tag formatTag) (Serializer, error) {
	switch tag {
	case formatJSON:
		return JSONSerializer{}, nil
	case formatGob:
		return GobSerializer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown format tag %d", ErrCacheCorruption, tag)
	}
}
