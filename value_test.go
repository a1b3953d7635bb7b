package titanium

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeScalars(t *testing.T) {
	type tc struct {
		input    any
		wantKind kind
	}

	tests := map[string]tc{
		"nil":     {input: nil, wantKind: kindNull},
		"bool":    {input: true, wantKind: kindBool},
		"int":     {input: 7, wantKind: kindInt},
		"int64":   {input: int64(7), wantKind: kindInt},
		"float64": {input: 3.14, wantKind: kindFloat},
		"string":  {input: "hi", wantKind: kindString},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := normalize(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.kind != tt.wantKind {
				t.Errorf("got kind %v, want %v", v.kind, tt.wantKind)
			}
		})
	}
}

func TestNormalizeUnhashable(t *testing.T) {
	_, err := normalize(make(chan int))
	if err == nil {
		t.Fatal("expected error for channel value")
	}
	var uerr *UnhashableValueError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected *UnhashableValueError, got %T: %v", err, err)
	}
}

func TestNormalizeListVsTuple(t *testing.T) {
	list, err := normalize([]any{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.kind != kindList {
		t.Errorf("got kind %v, want kindList", list.kind)
	}

	tup, err := normalize(Tuple{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tup.kind != kindTuple {
		t.Errorf("got kind %v, want kindTuple", tup.kind)
	}
}

func TestNormalizeCollectsDependencies(t *testing.T) {
	add := Declare("nt_add", 1, func(_ context.Context, p Params) (any, error) {
		return p.Int("x") + p.Int("y"), nil
	})
	out := add(Plain("x", 1), Plain("y", 2))

	v, err := normalize([]any{out, "other"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.deps[out]; !ok {
		t.Errorf("expected dependency set to contain the nested handle")
	}
}

func TestNormalizeMapKeyOrdering(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	v, err := normalize(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(v.entries))
	}
	for i := 1; i < len(v.entries); i++ {
		if v.entries[i-1].keyCanon >= v.entries[i].keyCanon {
			t.Errorf("entries not sorted: %q >= %q", v.entries[i-1].keyCanon, v.entries[i].keyCanon)
		}
	}
}

func TestConcretizeIgnoredResolvesNestedHandle(t *testing.T) {
	dep := Declare("nt_dep", 1, func(_ context.Context, p Params) (any, error) { return 5, nil })()

	v, err := normalize(ignoredValue{raw: dep})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.kind != kindIgnored {
		t.Fatalf("got kind %v, want kindIgnored", v.kind)
	}

	got := concretize(v, func(l *LazyOutput) any {
		if l != dep {
			t.Fatalf("resolved callback got unexpected handle")
		}
		return 99
	})
	if got != 99 {
		t.Errorf("got %v, want 99 (ignored value should still resolve nested handles)", got)
	}
}
