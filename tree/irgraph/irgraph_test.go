package irgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wellofspirit/bundlescope/tree/funcmap"
	"github.com/wellofspirit/bundlescope/tree/parse"
	"github.com/wellofspirit/bundlescope/tree/scope"
)

func TestBuildResolvesInternalCall(t *testing.T) {
	src := []byte(`function helper(){return 1};function caller(){return helper()+helper()}`)
	tree, err := parse.Parse(src, 0)
	assert.NoError(t, err)

	entries := funcmap.Build(tree, false)
	arena := scope.Build(tree)
	graph := Build(tree, arena, entries)

	assert.Len(t, graph.Nodes, 2)

	var callerToHelper *Edge
	for i := range graph.Edges {
		if graph.Edges[i].Properties["calleeName"] == "helper" {
			callerToHelper = &graph.Edges[i]
		}
	}
	if assert.NotNil(t, callerToHelper) {
		assert.Equal(t, 2, callerToHelper.Properties["count"])
		assert.Contains(t, callerToHelper.Target, "helper")
	}
}

func TestBuildMarksUnresolvedCallExternal(t *testing.T) {
	src := []byte(`function caller(){return externalThing()}`)
	tree, err := parse.Parse(src, 0)
	assert.NoError(t, err)

	entries := funcmap.Build(tree, false)
	arena := scope.Build(tree)
	graph := Build(tree, arena, entries)

	if assert.Len(t, graph.Edges, 1) {
		assert.Equal(t, "external:externalThing", graph.Edges[0].Target)
	}
}
