package titanium

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// ContextStack is a goroutine-local ordered sequence of [Frame]s with a
// mandatory root frame at the bottom. Go has no built-in thread-local
// storage (the Design Notes call this out explicitly); goroutineID parses
// the running goroutine's id out of runtime.Stack, the standard workaround,
// and the stack keys its current-frame lookup on that id so a scope opened
// on one goroutine is invisible to another, per spec §4.2.
//
// Construct one with [NewContextStack] for test isolation; [Scope] and
// [Declare] use a package-level default instance for ergonomic,
// decorator-less use.
type ContextStack struct {
	mu     sync.Mutex
	frames map[int64]*Frame
}

// NewContextStack creates an empty context stack. Every goroutine starts
// at the (unpoppable) root frame until it pushes its own.
func NewContextStack() *ContextStack {
	return &ContextStack{frames: make(map[int64]*Frame)}
}

var defaultStack = NewContextStack()

// Current returns the frame active on the calling goroutine.
func (s *ContextStack) Current() *Frame {
	gid := goroutineID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.frames[gid]; ok {
		return f
	}
	return rootFrame
}

// Push installs a new child frame, built by merging settings over the
// calling goroutine's currently-visible bindings, and returns a release
// function that pops exactly that frame. Callers defer the release so every
// exit path, normal or panicking, restores the previous frame (spec
// §4.2's "Scope safety").
func (s *ContextStack) Push(settings map[string]any) (release func()) {
	gid := goroutineID()

	s.mu.Lock()
	parent, ok := s.frames[gid]
	if !ok {
		parent = rootFrame
	}
	frame := child(parent, settings)
	s.frames[gid] = frame
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if cur, ok := s.frames[gid]; !ok || cur != frame {
			// Already popped, or popped out of order; nothing to restore
			// onto (restoring here could resurrect a frame a sibling scope
			// already replaced).
			return
		}
		if parent == rootFrame {
			delete(s.frames, gid)
		} else {
			s.frames[gid] = parent
		}
	}
}

// Read returns the currently-active frame's merged bindings, for testing
// and introspection per spec §6's Context API.
func (s *ContextStack) Read() map[string]any {
	return s.Current().Merged()
}

// Scope pushes settings onto the package-level default context stack and
// returns a release function. Tasks declared with [Declare] (rather than
// [DeclareWithStack]) resolve injectable parameters against this stack.
//
//	release := titanium.Scope(map[string]any{"timeout": 30})
//	defer release()
func Scope(settings map[string]any) (release func()) {
	return defaultStack.Push(settings)
}

// ReadContext returns the default context stack's currently-active merged
// bindings.
func ReadContext() map[string]any {
	return defaultStack.Read()
}

// goroutineID parses the calling goroutine's id out of its own stack trace
// header ("goroutine 123 [running]:"). This is the conventional Go
// workaround for the language's deliberate lack of thread-local storage;
// it is only ever used to key the context stack's current-frame map, never
// for scheduling decisions.
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	fields := bytes.Fields(buf)
	if len(fields) < 2 {
		return -1
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
