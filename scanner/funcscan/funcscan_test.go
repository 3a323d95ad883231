package funcscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wellofspirit/bundlescope/errs"
)

func TestFindEnclosingSimpleFunction(t *testing.T) {
	src := []byte("function f(a,b){return a+b}")
	offset := 20 // inside the body
	spans, err := FindEnclosing(src, offset)
	assert.NoError(t, err)
	if assert.Len(t, spans, 1) {
		s := spans[0]
		assert.Equal(t, 0, s.SigStart)
		assert.Equal(t, []string{"a", "b"}, s.ParameterList)
		assert.Equal(t, 2, s.ParamCount)
		assert.Equal(t, "function f", s.SignatureText)
	}
}

func TestFindEnclosingNesting(t *testing.T) {
	src := []byte("function outer(){function inner(){return 1}}")
	innerBodyOffset := 40 // inside inner's body
	spans, err := FindEnclosing(src, innerBodyOffset)
	assert.NoError(t, err)
	if assert.Len(t, spans, 2) {
		assert.Equal(t, 0, spans[0].Depth)
		assert.Equal(t, 1, spans[1].Depth)
		assert.Less(t, spans[0].Span(), spans[1].Span())
	}
}

func TestFindEnclosingAsyncFunction(t *testing.T) {
	src := []byte("async function f(x){return x}")
	spans, err := FindEnclosing(src, 25)
	assert.NoError(t, err)
	if assert.Len(t, spans, 1) {
		assert.Equal(t, 0, spans[0].SigStart)
		assert.Equal(t, "async function f", spans[0].SignatureText)
	}
}

func TestFindEnclosingArrowFunction(t *testing.T) {
	src := []byte("const f=(a,b)=>{return a+b};")
	spans, err := FindEnclosing(src, 20)
	assert.NoError(t, err)
	assert.Len(t, spans, 1)
}

func TestFindEnclosingDestructuredParams(t *testing.T) {
	src := []byte("function f({a,b}){return a+b}")
	spans, err := FindEnclosing(src, 20)
	assert.NoError(t, err)
	if assert.Len(t, spans, 1) {
		assert.Equal(t, 1, spans[0].ParamCount)
		assert.Equal(t, "{a,b}", spans[0].ParameterList[0])
	}
}

func TestFindEnclosingOffsetOutsideAnyFunction(t *testing.T) {
	src := []byte("var x=1;function f(){return 1}")
	spans, err := FindEnclosing(src, 5)
	assert.NoError(t, err)
	assert.Empty(t, spans)
}

func TestFindEnclosingBoundaryScanExceeded(t *testing.T) {
	src := []byte("function f(){" + string(make([]byte, 200)) + "return 1}")
	_, err := FindEnclosing(src, 50, WithHorizon(10))
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.BoundaryScanExceeded))
	}
}
