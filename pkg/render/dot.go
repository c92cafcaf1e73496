package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/th3gh0s8/aura/pkg/errors"
	"github.com/th3gh0s8/aura/pkg/resolve"
)

// Graph is the renderable view of a resolution: the three classified
// package sets, in the sorted order the resolution accessors return them.
type Graph struct {
	Build     []resolve.Buildable
	Install   []resolve.Official
	Satisfied []string
}

// FromResolution extracts the renderable view from a finished resolution.
func FromResolution(res *resolve.Resolution) Graph {
	return Graph{
		Build:     res.ToBuild(),
		Install:   res.ToInstall(),
		Satisfied: res.Satisfied(),
	}
}

// Options configures dependency-graph rendering.
type Options struct {
	// Detailed annotates each node with its classification and, for
	// buildable packages, its dependency count. When false, only the
	// package name is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format. Buildable packages are
// drawn as filled boxes, official packages as plain boxes, and
// already-satisfied packages with dashed grey outlines. Edges follow the
// recorded dependencies of the buildable set; official and satisfied
// packages are leaves from the resolver's point of view.
func ToDOT(g Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	known := make(map[string]bool)
	for _, b := range g.Build {
		known[b.Name] = true
		label := b.Name
		if opts.Detailed {
			label = fmt.Sprintf("%s\nbuild (%d deps)", b.Name, len(b.Deps))
		}
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightgoldenrod];\n", b.Name, label)
	}
	for _, o := range g.Install {
		known[o.Name] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", o.Name, strings.Join(nodeAttrs(o.Name, "official", opts), ", "))
	}
	for _, name := range g.Satisfied {
		known[name] = true
		attrs := nodeAttrs(name, "satisfied", opts)
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, b := range g.Build {
		for _, dep := range b.Deps {
			// Deps resolved through a provides alias have no node of
			// their own; skip the dangling edge.
			if !known[dep] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", b.Name, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(name, class string, opts Options) []string {
	label := name
	if opts.Detailed {
		label = name + "\n" + class
	}
	return []string{fmt.Sprintf("label=%q", label)}
}

// SVG renders DOT text to SVG bytes using Graphviz.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	return rasterize(ctx, dot, graphviz.SVG)
}

// PNG renders DOT text to PNG bytes using Graphviz.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return rasterize(ctx, dot, graphviz.PNG)
}

func rasterize(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "initializing graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rendering graph")
	}
	return buf.Bytes(), nil
}
