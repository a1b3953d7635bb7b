package titanium

import (
	"fmt"
	"io"
	"sort"
)

// PrintGraph writes an ASCII rendering of the subgraph reachable from
// targets to w, level by level, walking Purple Titanium's live,
// handle-discovered subgraph rather than a static global registry.
func PrintGraph(w io.Writer, targets ...*LazyOutput) error {
	tasks, err := discover(targets)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks in subgraph")
		return nil
	}

	levels, err := topoSortLevels(tasks)
	if err != nil {
		return err
	}

	for i, level := range levels {
		fmt.Fprintf(w, "Level %d:\n", i)
		for _, t := range level {
			deps := dependencyNames(t)
			if len(deps) == 0 {
				fmt.Fprintf(w, "  %s (sig %016x)\n", t.name, t.signature)
				continue
			}
			fmt.Fprintf(w, "  %s (sig %016x) <- %s\n", t.name, t.signature, joinNames(deps))
		}
	}
	return nil
}

// PrintMermaid writes a Mermaid flowchart of the subgraph reachable from
// targets to w.
func PrintMermaid(w io.Writer, targets ...*LazyOutput) error {
	tasks, err := discover(targets)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "graph TD")
	for t := range tasks {
		for dep := range t.dependencies {
			fmt.Fprintf(w, "    %s_%016x --> %s_%016x\n", dep.owner.name, dep.owner.signature, t.name, t.signature)
		}
	}
	return nil
}

func dependencyNames(t *Task) []string {
	names := make([]string, 0, len(t.dependencies))
	for dep := range t.dependencies {
		names = append(names, fmt.Sprintf("%s(%016x)", dep.owner.name, dep.owner.signature))
	}
	sort.Strings(names)
	return names
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
