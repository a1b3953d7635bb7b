package titanium

import (
	"errors"
	"testing"
)

func TestJSONSerializerRoundTrip(t *testing.T) {
	ser := JSONSerializer{}
	b, err := ser.Encode(map[string]any{"a": 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out any
	if err := ser.Decode(b, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := out.(map[string]any)
	if !ok || m["a"] != 1.0 {
		t.Errorf("got %#v, want map[a:1]", out)
	}
}

func TestGobSerializerRoundTrip(t *testing.T) {
	ser := GobSerializer{}
	b, err := ser.Encode(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out any
	if err := ser.Decode(b, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 42 {
		t.Errorf("got %v, want 42", out)
	}
}

func TestSerializerForUnknownTagIsCorruption(t *testing.T) {
	_, err := serializerFor(formatTag(99))
	if !errors.Is(err, ErrCacheCorruption) {
		t.Fatalf("got %v, want ErrCacheCorruption", err)
	}
}

func TestJSONDecodeInvalidIsCorruption(t *testing.T) {
	var out any
	err := JSONSerializer{}.Decode([]byte("{not json"), &out)
	if !errors.Is(err, ErrCacheCorruption) {
		t.Fatalf("got %v, want ErrCacheCorruption", err)
	}
}
