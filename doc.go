// Package titanium is a task-graph pipeline engine for data-processing
// workflows.
//
// Users declare pure computational units ("tasks") with [Declare]. Tasks
// compose by passing one task's output (a [*LazyOutput]) as another
// task's parameter, implicitly forming a directed acyclic graph. Every task
// instance gets a deterministic 64-bit signature computed from its name,
// version, and the parameters that are declared to contribute (see
// [ParamSpec]); two task instances with equal signatures are considered
// interchangeable and share a single execution.
//
// A minimal pipeline:
//
//	add := titanium.Declare("add", 1, func(ctx context.Context, p titanium.Params) (any, error) {
//	    return p.Int("x") + p.Int("y"), nil
//	})
//
//	out := add(titanium.Plain("x", 1), titanium.Plain("y", 2))
//
//	engine := titanium.NewEngine()
//	results, err := engine.Run(context.Background(), out)
//
// Parameters may be sourced from an ambient, scoped context instead of the
// call site. Injectables resolve when the task is constructed, so the
// scope must be open at that point:
//
//	release := titanium.Scope(map[string]any{"timeout": 30})
//	out := fetch(titanium.Plain("data", data), titanium.Injectable[int]("timeout", nil))
//	release()
//
// See [Scope], [Injectable], [Ignore], [NewEngine], and [Store] for the
// rest of the surface.
package titanium
