package titanium

import (
	"context"
	"fmt"
)

// BodyFunc is a task's computation. It receives the run's context and the
// concrete, dependency-resolved arguments bound to its declared parameters.
type BodyFunc func(ctx context.Context, p Params) (any, error)

// Task is one instance of a declared computation: a name, a version, a
// frozen set of normalized parameters, the dependency edges those
// parameters carry, and the deterministic signature derived from all three
// (spec §3, §4.5). A Task is immutable once constructed: there is no
// mutation API, matching the Non-goal "task mutation after construction".
type Task struct {
	name    string
	version int
	body    BodyFunc

	params       map[string]value
	dependencies map[*LazyOutput]struct{}
	signature    uint64
	frame        *Frame

	output *LazyOutput
}

// Name returns the task's declared name.
func (t *Task) Name() string { return t.name }

// Version returns the task's declared version.
func (t *Task) Version() int { return t.version }

// Signature returns the task's deterministic 64-bit fingerprint.
func (t *Task) Signature() uint64 { return t.signature }

// Dependencies returns the set of lazy outputs this task's parameters
// reference, in no particular order.
func (t *Task) Dependencies() []*LazyOutput {
	out := make([]*LazyOutput, 0, len(t.dependencies))
	for d := range t.dependencies {
		out = append(out, d)
	}
	return out
}

// TaskDef is a declared task template, returned by [Declare]. Calling it
// with [ParamSpec] arguments constructs one [*Task] instance and returns
// its [*LazyOutput]: the Go stand-in for decorating a function once and
// invoking it many times with different per-call arguments, since Go has
// no decorator syntax to attach that template to the function itself.
type TaskDef func(params ...ParamSpec) *LazyOutput

// Declare registers a named, versioned computation and returns a [TaskDef]
// for constructing instances of it. Instances constructed by the returned
// TaskDef resolve injectable parameters against the package-level default
// context stack; use [DeclareWithStack] for an isolated stack (tests,
// multiple independent engines in one process).
func Declare(name string, version int, body BodyFunc) TaskDef {
	return DeclareWithStack(defaultStack, name, version, body)
}

// DeclareWithStack is [Declare] parameterized on an explicit [ContextStack],
// so injectable parameters resolve against that stack's frames instead of
// the package-level default: the escape hatch the Design Notes call for in
// place of a single hidden global.
func DeclareWithStack(stack *ContextStack, name string, version int, body BodyFunc) TaskDef {
	return func(params ...ParamSpec) *LazyOutput {
		task, err := newTask(stack, name, version, body, params)
		if err != nil {
			// Construction errors (bad bind, unhashable value) have no
			// resolved params to attach, but the handle still needs a
			// non-nil owner: the scheduler discovers and short-circuits
			// this handle via [LazyOutput.terminal] without ever touching
			// the bare task's nil body or dependencies.
			bare := &Task{name: name, version: version}
			failed := newLazyOutput(bare)
			bare.output = failed
			failed.markFailed(err)
			return failed
		}
		return task.output
	}
}

func newTask(stack *ContextStack, name string, version int, body BodyFunc, specs []ParamSpec) (*Task, error) {
	frame := stack.Current()

	params := make(map[string]value, len(specs))
	deps := map[*LazyOutput]struct{}{}
	seen := map[string]bool{}

	for _, spec := range specs {
		if seen[spec.name] {
			return nil, fmt.Errorf("%w: duplicate parameter %q for task %q", ErrBindError, spec.name, name)
		}
		seen[spec.name] = true

		v, err := spec.resolve(frame)
		if err != nil {
			// spec.resolve's error already carries its own sentinel
			// (ErrMissingInjectable, ErrUnhashableValue); wrap with %w so
			// errors.Is keeps working, rather than flattening it behind
			// ErrBindError as if every resolve failure were a bind error.
			return nil, fmt.Errorf("task %q: %w", name, err)
		}
		params[spec.name] = v
		for dep := range v.deps {
			deps[dep] = struct{}{}
		}
	}

	sig, err := computeSignature(name, version, params)
	if err != nil {
		return nil, err
	}

	t := &Task{
		name:         name,
		version:      version,
		body:         body,
		params:       params,
		dependencies: deps,
		signature:    sig,
		frame:        frame,
	}
	t.output = newLazyOutput(t)
	return t, nil
}

// concreteParams rebuilds this task's bound arguments with every dependency
// handle replaced by its resolved value, ready for the body to consume.
func (t *Task) concreteParams(resolved func(*LazyOutput) any) Params {
	values := make(map[string]any, len(t.params))
	for name, v := range t.params {
		values[name] = concretize(v, resolved)
	}
	return newParams(values)
}
