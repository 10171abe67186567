package codetext

import (
	"errors"
	"fmt"
	"io"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/jward/codetext/internal/store"
)

// ChainGraph converts a traced element tree into a directed graph keyed by
// element name, with an edge from each element to every element it led
// the tracer to.
func ChainGraph(root *store.CodeElement) (graph.Graph[string, *store.CodeElement], error) {
	g := graph.New(func(el *store.CodeElement) string { return el.Name }, graph.Directed())
	if root == nil {
		return g, nil
	}
	if err := addChain(g, root); err != nil {
		return nil, err
	}
	return g, nil
}

func addChain(g graph.Graph[string, *store.CodeElement], el *store.CodeElement) error {
	err := g.AddVertex(el,
		graph.VertexAttribute("label", fmt.Sprintf("%s\n%s:%d-%d", el.Name, el.FilePath, el.StartLine, el.EndLine)),
		graph.VertexAttribute("shape", "box"),
	)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return fmt.Errorf("codetext: add vertex %s: %w", el.Name, err)
	}
	for _, child := range el.NestedElements {
		if err := addChain(g, child); err != nil {
			return err
		}
		err := g.AddEdge(el.Name, child.Name)
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return fmt.Errorf("codetext: add edge %s -> %s: %w", el.Name, child.Name, err)
		}
	}
	return nil
}

// WriteDOT writes the logic chain rooted at root in Graphviz DOT format.
func WriteDOT(w io.Writer, root *store.CodeElement) error {
	g, err := ChainGraph(root)
	if err != nil {
		return err
	}
	return draw.DOT(g, w)
}
