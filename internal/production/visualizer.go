package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/scxml-go/scxml/internal/model"
)

// Visualizer renders a chart for external tooling.
type Visualizer interface {
	ExportDOT(chart *model.Chart, active []string) string
	ExportJSON(chart *model.Chart) ([]byte, error)
}

// DefaultVisualizer generalizes the teacher's DefaultVisualizer from a
// flat compound/atomic tree to the full kind set: parallel states
// render as nested clusters (one sub-cluster per region) and history
// pseudo-states render as dashed nodes, neither of which the teacher's
// original distinguished.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for chart, highlighting
// active states per §3.3's configuration.
func (DefaultVisualizer) ExportDOT(chart *model.Chart, active []string) string {
	activeSet := make(map[string]bool, len(active))
	for _, p := range active {
		activeSet[p] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph Statechart {\n  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n  edge [fontsize=9];\n")
	renderState(&buf, chart.Root, activeSet)
	renderTransitions(&buf, chart.Root)
	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the chart's tree shape to JSON for tooling that
// doesn't speak DOT.
func (DefaultVisualizer) ExportJSON(chart *model.Chart) ([]byte, error) {
	return json.MarshalIndent(jsonState(chart.Root), "", "  ")
}

type jsonNode struct {
	ID       string      `json:"id"`
	Kind     string      `json:"kind"`
	Initial  string      `json:"initial,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

func jsonState(s *model.State) *jsonNode {
	n := &jsonNode{ID: s.Path(), Kind: kindName(s.Kind), Initial: s.Initial}
	for _, c := range s.Children {
		n.Children = append(n.Children, jsonState(c))
	}
	return n
}

func kindName(k model.StateKind) string {
	return strings.ReplaceAll(k.String(), ".", "-")
}

func renderState(buf *bytes.Buffer, s *model.State, active map[string]bool) {
	path := s.Path()

	if s.IsHistory() {
		fmt.Fprintf(buf, "  %q [shape=circle, style=dashed, label=%q];\n", path, historyLabel(s))
		return
	}

	if len(s.Children) == 0 {
		style := ""
		if active[path] {
			style = ", style=\"rounded,filled\", fillcolor=lightgreen"
		}
		fmt.Fprintf(buf, "  %q [label=%q%s];\n", path, s.ID, style)
		return
	}

	clusterID := "cluster_" + path
	fmt.Fprintf(buf, "  subgraph %q {\n", clusterID)
	labelStyle := ""
	if active[path] {
		labelStyle = " style=filled fillcolor=orange"
	}
	if s.Kind == model.Parallel {
		labelStyle += " style=filled fillcolor=lightblue"
	}
	fmt.Fprintf(buf, "    label=%q;%s\n", fmt.Sprintf("%s (%s)", s.ID, kindName(s.Kind)), labelStyle)
	for _, child := range s.Children {
		renderState(buf, child, active)
	}
	buf.WriteString("  }\n")
}

func historyLabel(s *model.State) string {
	if s.Kind == model.DeepHistory {
		return "H*"
	}
	return "H"
}

func renderTransitions(buf *bytes.Buffer, s *model.State) {
	for _, t := range s.Transitions {
		for _, target := range t.Targets {
			label := t.Event
			if label == "" {
				label = "ε"
			}
			fmt.Fprintf(buf, "  %q -> %q [label=%q];\n", s.Path(), target, label)
		}
	}
	for _, child := range s.Children {
		renderTransitions(buf, child)
	}
}
