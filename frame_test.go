package titanium

import "testing"

func TestFrameGetWalksToParent(t *testing.T) {
	parent := child(rootFrame, map[string]any{"timeout": 30, "region": "us"})
	frame := child(parent, map[string]any{"timeout": 60})

	if v, ok := frame.Get("timeout"); !ok || v != 60 {
		t.Errorf("got (%v, %v), want (60, true)", v, ok)
	}
	if v, ok := frame.Get("region"); !ok || v != "us" {
		t.Errorf("got (%v, %v), want (us, true)", v, ok)
	}
	if _, ok := frame.Get("missing"); ok {
		t.Errorf("expected absent key to report ok=false")
	}
}

func TestFrameMergedShadowing(t *testing.T) {
	parent := child(rootFrame, map[string]any{"a": 1, "b": 2})
	frame := child(parent, map[string]any{"b": 99})

	merged := frame.Merged()
	if merged["a"] != 1 {
		t.Errorf("got a=%v, want 1", merged["a"])
	}
	if merged["b"] != 99 {
		t.Errorf("got b=%v, want 99 (child should shadow parent)", merged["b"])
	}
}

func TestFrameEqual(t *testing.T) {
	a := child(rootFrame, map[string]any{"x": 1})
	b := child(rootFrame, map[string]any{"x": 1})
	c := child(rootFrame, map[string]any{"x": 2})

	if !a.Equal(b) {
		t.Errorf("frames with identical merged bindings should be equal")
	}
	if a.Equal(c) {
		t.Errorf("frames with different bindings should not be equal")
	}
}

func TestRootFrameNeverMutated(t *testing.T) {
	before := len(rootFrame.bindings)
	_ = child(rootFrame, map[string]any{"z": 1})
	if len(rootFrame.bindings) != before {
		t.Errorf("constructing a child frame must not mutate the root frame")
	}
}
