package titanium

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestPrintGraphListsLevels(t *testing.T) {
	a := Declare("rt_a", 1, func(_ context.Context, _ Params) (any, error) { return 1, nil })()
	b := Declare("rt_b", 1, func(_ context.Context, p Params) (any, error) { return p.Get("a"), nil })(Plain("a", a))

	var buf bytes.Buffer
	if err := PrintGraph(&buf, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Level 0:") || !strings.Contains(out, "Level 1:") {
		t.Errorf("got %q, want two levels listed", out)
	}
	if !strings.Contains(out, "rt_a") || !strings.Contains(out, "rt_b") {
		t.Errorf("got %q, want both task names present", out)
	}
}

func TestPrintGraphEmptySubgraph(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintGraph(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No tasks") {
		t.Errorf("got %q, want an empty-subgraph message", buf.String())
	}
}

func TestPrintMermaidEdges(t *testing.T) {
	a := Declare("rt_m_a", 1, func(_ context.Context, _ Params) (any, error) { return 1, nil })()
	b := Declare("rt_m_b", 1, func(_ context.Context, p Params) (any, error) { return p.Get("a"), nil })(Plain("a", a))

	var buf bytes.Buffer
	if err := PrintMermaid(&buf, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "graph TD\n") {
		t.Errorf("got %q, want a mermaid flowchart header", out)
	}
	if !strings.Contains(out, "-->") {
		t.Errorf("got %q, want at least one edge", out)
	}
}
