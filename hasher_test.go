package titanium

import (
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestHashDeterministic(t *testing.T) {
	h := NewValueHasher()

	a, err := h.HashAny(map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := h.HashAny(map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("map hash depends on insertion order: %016x != %016x", a, b)
	}
}

func TestHashSetOrderInvariant(t *testing.T) {
	h := NewValueHasher()

	a, err := h.HashAny(Set{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := h.HashAny(Set{3, 1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("set hash depends on element order: %016x != %016x", a, b)
	}
}

func TestHashListOrderSensitive(t *testing.T) {
	h := NewValueHasher()

	a, err := h.HashAny([]any{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := h.HashAny([]any{3, 2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Errorf("list hash should depend on element order")
	}
}

func TestHashListVsTupleDiffer(t *testing.T) {
	h := NewValueHasher()

	listHash, err := h.HashAny([]any{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tupleHash, err := h.HashAny(Tuple{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listHash == tupleHash {
		t.Errorf("list and tuple with identical elements should hash differently")
	}
}

func TestHashIgnoredContributesNothing(t *testing.T) {
	h := NewValueHasher()

	v, err := normalize(ignoredValue{raw: "anything at all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ignoredHash, err := h.Hash(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	emptyDigestHash := xxhash.New().Sum64()
	if ignoredHash != emptyDigestHash {
		t.Errorf("ignored value should write nothing to the digest, got %016x want %016x", ignoredHash, emptyDigestHash)
	}
}

func TestHashNilVsZeroInt(t *testing.T) {
	h := NewValueHasher()

	nilHash, err := h.HashAny(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zeroHash, err := h.HashAny(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nilHash == zeroHash {
		t.Errorf("nil and integer zero must hash differently")
	}
}
