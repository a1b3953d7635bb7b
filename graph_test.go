package titanium

import (
	"context"
	"testing"
)

func constBody(v any) BodyFunc {
	return func(_ context.Context, _ Params) (any, error) { return v, nil }
}

func TestDiscoverTransitiveClosure(t *testing.T) {
	a := Declare("gt_a", 1, constBody(1))()
	b := Declare("gt_b", 1, func(_ context.Context, p Params) (any, error) { return p.Get("a"), nil })(Plain("a", a))
	c := Declare("gt_c", 1, func(_ context.Context, p Params) (any, error) { return p.Get("b"), nil })(Plain("b", b))

	tasks, err := discover([]*LazyOutput{c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3 (a, b, c)", len(tasks))
	}
	for _, target := range []*LazyOutput{a, b, c} {
		if _, ok := tasks[target.owner]; !ok {
			t.Errorf("expected %s in discovered subgraph", target.owner.name)
		}
	}
}

func TestDiscoverIgnoresUnrelatedBranches(t *testing.T) {
	target := Declare("gt_target", 1, constBody(1))()
	_ = Declare("gt_unrelated", 1, constBody(2))()

	tasks, err := discover([]*LazyOutput{target})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1 (unrelated branches must not be pulled in)", len(tasks))
	}
}

func TestTopoSortLevelsOrdering(t *testing.T) {
	a := Declare("gt_lvl_a", 1, constBody(1))()
	b := Declare("gt_lvl_b", 1, func(_ context.Context, p Params) (any, error) { return p.Get("a"), nil })(Plain("a", a))

	tasks, err := discover([]*LazyOutput{b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	levels, err := topoSortLevels(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("got %d levels, want 2", len(levels))
	}
	if levels[0][0] != a.owner {
		t.Errorf("level 0 should contain only the dependency-free task")
	}
	if levels[1][0] != b.owner {
		t.Errorf("level 1 should contain the dependent task")
	}
}

func TestTopoSortLevelsFanOut(t *testing.T) {
	root := Declare("gt_fan_root", 1, constBody(1))()
	left := Declare("gt_fan_left", 1, func(_ context.Context, p Params) (any, error) { return p.Get("r"), nil })(Plain("r", root))
	right := Declare("gt_fan_right", 1, func(_ context.Context, p Params) (any, error) { return p.Get("r"), nil })(Plain("r", root))

	tasks, err := discover([]*LazyOutput{left, right})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	levels, err := topoSortLevels(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 2 {
		t.Fatalf("got %d levels, want 2", len(levels))
	}
	if len(levels[1]) != 2 {
		t.Fatalf("got %d tasks in level 1, want 2 (left and right run concurrently)", len(levels[1]))
	}
}

func TestDiscoverNilTargetsAreSkipped(t *testing.T) {
	tasks, err := discover([]*LazyOutput{nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks, want 0", len(tasks))
	}
}
