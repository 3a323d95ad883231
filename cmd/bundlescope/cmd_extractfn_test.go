package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wellofspirit/bundlescope/errs"
)

func TestRunExtractFnTightestSpan(t *testing.T) {
	resetChanged(extractFnCmd, "stack", "depth", "no-ast-fallback")
	extractFnStack, extractFnNoASTFallback = false, false
	extractFnHasDepth, extractFnDepth = false, 0

	file := writeTempBundle(t, `function outer(){function inner(){return 1}}`)

	err := runExtractFn(extractFnCmd, []string{file, "30"})
	assert.NoError(t, err)
}

func TestRunExtractFnOffsetOutsideFunction(t *testing.T) {
	resetChanged(extractFnCmd, "stack", "depth", "no-ast-fallback")
	extractFnStack, extractFnNoASTFallback = false, false
	extractFnHasDepth, extractFnDepth = false, 0

	file := writeTempBundle(t, `var a=1`)
	err := runExtractFn(extractFnCmd, []string{file, "3"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.OffsetOutsideFunction))
	}
}

func TestRunExtractFnDepthOutOfRange(t *testing.T) {
	resetChanged(extractFnCmd, "stack", "depth", "no-ast-fallback")
	extractFnStack, extractFnNoASTFallback = false, false

	file := writeTempBundle(t, `function outer(){function inner(){return 1}}`)
	extractFnDepth = 5
	extractFnCmd.Flags().Lookup("depth").Changed = true
	err := runExtractFn(extractFnCmd, []string{file, "30"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.InvalidInput))
	}
}

// TestAstFallbackSpansOrdersTightestFirst covers the AST-fallback nesting
// stack used by extract-fn and decompile when the byte-level scanner's
// locality horizon is exceeded.
func TestAstFallbackSpansOrdersTightestFirst(t *testing.T) {
	src := []byte(`function outer(a,b){function inner(c){return c+1}}`)
	offset := 40 // inside inner's body: "return c+1"

	spans, err := astFallbackSpans(src, offset)
	assert.NoError(t, err)
	if assert.GreaterOrEqual(t, len(spans), 2) {
		assert.Less(t, spans[0].BodyEnd-spans[0].SigStart, spans[1].BodyEnd-spans[1].SigStart,
			"the narrowest enclosing function must come first")
		assert.Equal(t, 0, spans[0].Depth)
		assert.Equal(t, 1, spans[1].Depth)
		assert.Equal(t, 1, spans[0].ParamCount, "inner takes one parameter")
		assert.Equal(t, 2, spans[1].ParamCount, "outer takes two parameters")
	}
}

func TestAstFallbackSpansOffsetOutsideAnyFunction(t *testing.T) {
	src := []byte(`var a=1;function f(){return 2}`)
	spans, err := astFallbackSpans(src, 3)
	assert.NoError(t, err)
	assert.Empty(t, spans)
}
