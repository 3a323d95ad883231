// Package irgraph exports a bundle's function map as a normalized
// node/edge graph, the way analyzer/graph_exporter.go normalizes a
// language-specific identifier/data-flow model into a backend-agnostic IR:
// here the nodes are functions and the edges are resolved outgoing calls,
// so the result can be handed to any graph store or visualizer without
// coupling it to bundlescope's own model types.
package irgraph

import (
	"fmt"

	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/tree/parse"
	"github.com/wellofspirit/bundlescope/tree/refs"
	"github.com/wellofspirit/bundlescope/tree/scope"
)

// Node is one function in the graph, identified by its byte offset since
// minified bundles rarely give every function a stable name.
type Node struct {
	ID         string                 `json:"id" yaml:"id"`
	Type       string                 `json:"type" yaml:"type"`
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
}

// Edge is one resolved outgoing call from a function node to a callee.
// Target is the callee's resolved node ID when the callee's declaration was
// found in this bundle, or an external: prefixed pseudo-ID otherwise.
type Edge struct {
	Source     string                 `json:"source" yaml:"source"`
	Target     string                 `json:"target" yaml:"target"`
	Type       string                 `json:"type" yaml:"type"`
	Properties map[string]interface{} `json:"properties" yaml:"properties"`
}

// Graph holds the nodes and edges built from one bundle's function map.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

func nodeID(e model.FunctionEntry) string {
	return fmt.Sprintf("fn:%d:%s", e.Start, e.Name)
}

// Build walks every function entry's outgoing calls and resolves each
// callee name against the declared-name index, producing a call graph over
// the whole bundle. entries should come from funcmap.Build on the same
// tree/arena pair.
func Build(tree *parse.Tree, arena *scope.Arena, entries []model.FunctionEntry) Graph {
	byName := map[string][]model.FunctionEntry{}
	for _, e := range entries {
		if e.Name != model.AnonymousName {
			byName[e.Name] = append(byName[e.Name], e)
		}
	}

	g := Graph{Nodes: make([]Node, 0, len(entries))}
	for _, e := range entries {
		g.Nodes = append(g.Nodes, Node{
			ID:   nodeID(e),
			Type: "function",
			Properties: map[string]interface{}{
				"name":        e.Name,
				"start":       e.Start,
				"end":         e.End,
				"paramCount":  e.ParamCount,
				"isAsync":     e.IsAsync,
				"isGenerator": e.IsGenerator,
				"contentHash": e.ContentHash,
			},
		})
	}

	for _, e := range entries {
		sites, err := refs.OutgoingCalls(tree, arena, e.Start)
		if err != nil {
			continue
		}
		for _, site := range sites {
			targets := byName[site.Name]
			if len(targets) == 0 {
				g.Edges = append(g.Edges, Edge{
					Source:     nodeID(e),
					Target:     "external:" + site.Name,
					Type:       "Call",
					Properties: map[string]interface{}{"count": site.Count},
				})
				continue
			}
			for _, target := range targets {
				g.Edges = append(g.Edges, Edge{
					Source: nodeID(e),
					Target: nodeID(target),
					Type:   "Call",
					Properties: map[string]interface{}{
						"count":      site.Count,
						"ambiguous":  len(targets) > 1,
						"calleeName": site.Name,
					},
				})
			}
		}
	}
	return g
}
