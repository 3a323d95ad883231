package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wellofspirit/bundlescope/errs"
)

func TestRunSliceDefaultLength(t *testing.T) {
	resetChanged(sliceCmd, "before", "after", "beautify")
	sliceBefore, sliceAfter, sliceBeautify = 0, 0, false

	file := writeTempBundle(t, `function f(a,b){return a+b}`)
	err := runSlice(sliceCmd, []string{file, "0"})
	assert.NoError(t, err)
}

func TestRunSliceExplicitLengthAndBeautify(t *testing.T) {
	resetChanged(sliceCmd, "before", "after", "beautify")
	sliceBefore, sliceAfter, sliceBeautify = 0, 0, true

	file := writeTempBundle(t, `function f(a,b){return a+b}`)
	err := runSlice(sliceCmd, []string{file, "0", "20"})
	assert.NoError(t, err)

	sliceBeautify = false
}

func TestRunSliceEmptyWindowAfterClamp(t *testing.T) {
	resetChanged(sliceCmd, "before", "after", "beautify")
	sliceBefore, sliceAfter, sliceBeautify = 0, 0, false

	file := writeTempBundle(t, `abc`)
	err := runSlice(sliceCmd, []string{file, "10", "5"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.InvalidInput))
	}
}

func TestRunContext(t *testing.T) {
	file := writeTempBundle(t, `function outer(){function inner(){return 1}}`)
	err := runContext(contextCmd, []string{file, "30"})
	assert.NoError(t, err)
}
