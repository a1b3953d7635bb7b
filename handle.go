package titanium

import "sync"

// outputState is a [LazyOutput]'s lifecycle, per spec §3: a handle starts
// pending, moves to resolving once the scheduler has committed to running
// (or reusing) its owning task, and finally settles at resolved or failed.
type outputState uint8

const (
	statePending outputState = iota
	stateResolving
	stateResolved
	stateFailed
)

// LazyOutput is a deferred reference to a task's eventual result. Passing
// one as another task's parameter is how pipelines compose: [Declare]d
// tasks return LazyOutputs, and the parameter normalizer (spec §4.3) turns
// every LazyOutput reachable from a call's arguments into a dependency
// edge, never running anything eagerly.
type LazyOutput struct {
	owner *Task

	mu    sync.Mutex
	state outputState
	cond  *sync.Cond
	value any
	err   error
}

func newLazyOutput(owner *Task) *LazyOutput {
	l := &LazyOutput{owner: owner, state: statePending}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Task returns the task instance this handle refers to.
func (l *LazyOutput) Task() *Task { return l.owner }

// Signature returns the owning task's deterministic signature.
func (l *LazyOutput) Signature() uint64 { return l.owner.signature }

// State reports the handle's current lifecycle state.
func (l *LazyOutput) State() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case statePending:
		return "pending"
	case stateResolving:
		return "resolving"
	case stateResolved:
		return "resolved"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// markResolving transitions the handle out of pending. Safe to call more
// than once; only the first call has any effect.
func (l *LazyOutput) markResolving() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == statePending {
		l.state = stateResolving
	}
}

func (l *LazyOutput) markResolved(v any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.state = stateResolved
	l.cond.Broadcast()
}

func (l *LazyOutput) markFailed(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	l.state = stateFailed
	l.cond.Broadcast()
}

// terminal reports whether the handle has already settled, resolved or
// failed, without blocking, returning its stored value/error when so. A
// handle can already be terminal before the scheduler ever sees it (a
// construction-time bind failure from [DeclareWithStack] marks its handle
// failed on the spot) or because it was resolved by an earlier Run sharing
// the same handle instance; either way the scheduler must skip straight to
// the stored result instead of re-executing, per spec §4.6 step 3a.
func (l *LazyOutput) terminal() (value any, err error, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == stateResolved || l.state == stateFailed {
		return l.value, l.err, true
	}
	return nil, nil, false
}

// wait blocks until the handle reaches resolved or failed, then returns its
// terminal value/error. The scheduler is the only caller that drives
// resolution; readers observing the final state (see [Engine.Run]'s
// returned results) never need to call this themselves.
func (l *LazyOutput) wait() (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.state != stateResolved && l.state != stateFailed {
		l.cond.Wait()
	}
	return l.value, l.err
}
