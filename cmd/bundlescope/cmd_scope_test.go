package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunScopeTightestOnly(t *testing.T) {
	resetChanged(scopeCmd, "all")
	scopeAll = false

	file := writeTempBundle(t, `function outer(){var x=1;function inner(){return x}}`)
	err := runScope(scopeCmd, []string{file, "40"})
	assert.NoError(t, err)
}

func TestRunScopeAllAncestors(t *testing.T) {
	resetChanged(scopeCmd, "all")
	scopeAll = true

	file := writeTempBundle(t, `function outer(){var x=1;function inner(){return x}}`)
	err := runScope(scopeCmd, []string{file, "40"})
	assert.NoError(t, err)

	scopeAll = false
}

func TestRunRefsExternal(t *testing.T) {
	file := writeTempBundle(t, `var g=1;function f(){return g+1}`)
	err := runRefs(refsCmd, []string{file, "25"})
	assert.NoError(t, err)
}

func TestRunCallsOutgoingAndIncoming(t *testing.T) {
	file := writeTempBundle(t, `function helper(){return 1};function caller(){return helper()}`)
	err := runCalls(callsCmd, []string{file, "40"})
	assert.NoError(t, err)
}
