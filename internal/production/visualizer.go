// Package production provides integrations around a running System: snapshot
// publishing, metrics and definition visualization.
package production

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

// DefaultVisualizer renders compiled definitions as Graphviz DOT or Mermaid.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for def. When active is non-empty the
// states on that dotted path are highlighted.
func (v *DefaultVisualizer) ExportDOT(def *core.Definition, active string) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Statechart {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	fmt.Fprintf(&buf, "  label=%q;\n", def.ID()+" "+def.Version())

	on := activeSet(active)
	cfg := def.Config()
	fmt.Fprintf(&buf, "  %q [shape=point];\n", "__start")
	fmt.Fprintf(&buf, "  %q -> %q;\n", "__start", def.InitialPath())
	for _, s := range cfg.States {
		renderState(&buf, s, s.ID, on, "  ")
	}

	for _, e := range def.Edges() {
		label := e.Event
		if e.Guard != "" {
			label += " [" + e.Guard + "]"
		}
		style := ""
		if e.Kind != "event" {
			style = " style=dashed"
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q%s];\n", e.From, e.To, label, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// activeSet returns every prefix of a dotted path.
func activeSet(path string) map[string]bool {
	active := make(map[string]bool)
	if path == "" {
		return active
	}
	segments := strings.Split(path, ".")
	for i := range segments {
		active[strings.Join(segments[:i+1], ".")] = true
	}
	return active
}

// renderState recursively renders states; compound states become clusters.
func renderState(buf *bytes.Buffer, state *primitives.StateConfig, path string, active map[string]bool, indent string) {
	if len(state.Children) > 0 {
		fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+path)
		style := ""
		if active[path] {
			style = " style=filled fillcolor=orange"
		}
		fmt.Fprintf(buf, "%s  label=%q;%s\n", indent, state.ID, style)
		fmt.Fprintf(buf, "%s  %q [label=%q shape=ellipse];\n", indent, path, state.ID)
		for _, child := range state.Children {
			renderState(buf, child, path+"."+child.ID, active, indent+"  ")
		}
		fmt.Fprintf(buf, "%s}\n", indent)
		return
	}
	attrs := ""
	if state.Type == primitives.Final {
		attrs += " shape=doublecircle"
	}
	if active[path] {
		attrs += " style=filled fillcolor=lightgreen"
	}
	fmt.Fprintf(buf, "%s%q [label=%q%s];\n", indent, path, state.ID, attrs)
}

// ExportMermaid generates a Mermaid stateDiagram-v2 for def.
func (v *DefaultVisualizer) ExportMermaid(def *core.Definition) string {
	var buf bytes.Buffer
	buf.WriteString("stateDiagram-v2\n")
	cfg := def.Config()
	fmt.Fprintf(&buf, "  [*] --> %s\n", mermaidID(cfg.Initial))
	for _, s := range cfg.States {
		renderMermaid(&buf, s, s.ID, "  ")
	}
	for _, e := range def.Edges() {
		label := e.Event
		if e.Guard != "" {
			label += " [" + e.Guard + "]"
		}
		fmt.Fprintf(&buf, "  %s --> %s : %s\n", mermaidID(e.From), mermaidID(e.To), label)
	}
	return buf.String()
}

func renderMermaid(buf *bytes.Buffer, state *primitives.StateConfig, path, indent string) {
	id := mermaidID(path)
	if len(state.Children) == 0 {
		fmt.Fprintf(buf, "%sstate %q as %s\n", indent, state.ID, id)
		if state.Type == primitives.Final {
			fmt.Fprintf(buf, "%s%s --> [*]\n", indent, id)
		}
		return
	}
	fmt.Fprintf(buf, "%sstate %q as %s {\n", indent, state.ID, id)
	fmt.Fprintf(buf, "%s  [*] --> %s\n", indent, mermaidID(path+"."+state.Initial))
	for _, child := range state.Children {
		renderMermaid(buf, child, path+"."+child.ID, indent+"  ")
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

// mermaidID turns a dotted path into a Mermaid-safe identifier.
func mermaidID(path string) string {
	return strings.ReplaceAll(path, ".", "__")
}
