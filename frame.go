package titanium

import (
	"fmt"
	"reflect"
)

// Frame is an immutable mapping from setting name to value, with a pointer
// to its parent. Lookup proceeds child-to-root per spec §4.2; a frame never
// mutates once constructed: [Scope] always allocates a new child rather
// than touching an existing one.
type Frame struct {
	parent   *Frame
	bindings map[string]any
}

// rootFrame is the stable, always-present, never-popped bottom of every
// context stack (spec §3: "The context stack's root frame cannot be
// popped.").
var rootFrame = &Frame{bindings: map[string]any{}}

// Get looks up name starting at this frame and walking to the root,
// returning the first binding found. The second return value distinguishes
// "absent" from "present and set to nil", per spec §4.2.
func (f *Frame) Get(name string) (any, bool) {
	for fr := f; fr != nil; fr = fr.parent {
		if v, ok := fr.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Merged flattens the frame chain from root to this frame into one map,
// child bindings shadowing parent ones: the "currently-active frame's
// merged bindings" spec §6's Context API read operation returns.
func (f *Frame) Merged() map[string]any {
	var chain []*Frame
	for fr := f; fr != nil; fr = fr.parent {
		chain = append(chain, fr)
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].bindings {
			out[k] = v
		}
	}
	return out
}

// Equal reports whether two frames have identical merged bindings. Per
// spec §4.2: "Frames are equal iff their deep mappings are equal."
func (f *Frame) Equal(other *Frame) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil {
		return false
	}
	return reflect.DeepEqual(f.Merged(), other.Merged())
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(%v)", f.Merged())
}

func child(parent *Frame, settings map[string]any) *Frame {
	if parent == nil {
		parent = rootFrame
	}
	bindings := make(map[string]any, len(settings))
	for k, v := range settings {
		bindings[k] = v
	}
	return &Frame{parent: parent, bindings: bindings}
}
