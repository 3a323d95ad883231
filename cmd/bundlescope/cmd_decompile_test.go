package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wellofspirit/bundlescope/errs"
)

func TestRunDecompile(t *testing.T) {
	file := writeTempBundle(t, `function f(e,t){return e+t}`)
	err := runDecompile(decompileCmd, []string{file, "5"})
	assert.NoError(t, err)
}

func TestRunDecompileOffsetOutsideFunction(t *testing.T) {
	file := writeTempBundle(t, `var a=1`)
	err := runDecompile(decompileCmd, []string{file, "3"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.OffsetOutsideFunction))
	}
}
