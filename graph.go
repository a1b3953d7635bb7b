package titanium

import (
	"fmt"
	"sort"
)

// discover walks the dependency edges reachable from targets and returns
// the full set of tasks that must run to resolve them, per spec §4.6's
// "live, discovered subgraph" (Purple Titanium has no global task
// registry at all; a [*LazyOutput] already points at its owning [*Task]
// directly).
//
// A cycle is defensively detected even though normal construction cannot
// produce one: a handle can only ever reference a task that already
// existed before it, so no task can depend on itself or a descendant.
func discover(targets []*LazyOutput) (map[*Task]struct{}, error) {
	tasks := map[*Task]struct{}{}
	visiting := map[*Task]bool{}

	var visit func(t *Task) error
	visit = func(t *Task) error {
		if _, done := tasks[t]; done {
			return nil
		}
		if visiting[t] {
			return fmt.Errorf("%w: task %q (sig %016x)", ErrCycleDetected, t.name, t.signature)
		}
		visiting[t] = true
		for dep := range t.dependencies {
			if err := visit(dep.owner); err != nil {
				return err
			}
		}
		visiting[t] = false
		tasks[t] = struct{}{}
		return nil
	}

	for _, target := range targets {
		if target == nil || target.owner == nil {
			continue
		}
		if err := visit(target.owner); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// topoSortLevels groups tasks into execution levels via Kahn's algorithm,
// operating on *Task pointers directly rather than string-keyed node IDs.
// Tasks within a level are sorted by signature for deterministic ordering
// (there's no natural ID to sort on; the signature is as good a stand-in as
// any and, unlike insertion order, is reproducible across runs).
func topoSortLevels(tasks map[*Task]struct{}) ([][]*Task, error) {
	inDegree := make(map[*Task]int, len(tasks))
	dependents := make(map[*Task][]*Task, len(tasks))

	for t := range tasks {
		inDegree[t] = len(t.dependencies)
		for dep := range t.dependencies {
			dependents[dep.owner] = append(dependents[dep.owner], t)
		}
	}

	var current []*Task
	for t, degree := range inDegree {
		if degree == 0 {
			current = append(current, t)
		}
	}

	var levels [][]*Task
	processed := 0

	for len(current) > 0 {
		sort.Slice(current, func(i, j int) bool { return current[i].signature < current[j].signature })
		levels = append(levels, current)
		processed += len(current)

		var next []*Task
		for _, t := range current {
			for _, dependent := range dependents[t] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		current = next
	}

	if processed != len(tasks) {
		return nil, fmt.Errorf("%w: %d of %d tasks unreachable by topological order", ErrCycleDetected, len(tasks)-processed, len(tasks))
	}
	return levels, nil
}
