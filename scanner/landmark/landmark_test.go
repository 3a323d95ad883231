package landmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBasicStrings(t *testing.T) {
	idx := Build([]byte(`a="hello";b='world'`))
	items := idx.All()
	if assert.Len(t, items, 2) {
		assert.Equal(t, "hello", items[0].Content)
		assert.Equal(t, 2, items[0].Offset)
		assert.Equal(t, "world", items[1].Content)
	}
}

func TestBuildDiscardsInterpolatedTemplates(t *testing.T) {
	idx := Build([]byte("a=`plain`;b=`has ${x} interp`"))
	items := idx.All()
	if assert.Len(t, items, 1) {
		assert.Equal(t, "plain", items[0].Content)
	}
}

func TestBuildIgnoresRegexAndComments(t *testing.T) {
	idx := Build([]byte("x=/ab/;// \"not a string\"\ny=1"))
	assert.Empty(t, idx.All())
}

func TestFilterSubstring(t *testing.T) {
	idx := Build([]byte(`a="foo";b="bar";c="foobar"`))
	got := idx.Filter("foo")
	assert.Len(t, got, 2)
}

func TestNearRadius(t *testing.T) {
	src := []byte(`a="x";` + string(make([]byte, 100)) + `b="y"`)
	idx := Build(src)
	near := idx.Near(0, 10)
	assert.Len(t, near, 1)
	assert.Equal(t, "x", near[0].Content)
}

func TestWithEnclosingFunctionsCap(t *testing.T) {
	items := []struct{ n int }{} // placeholder to keep imports tidy
	_ = items
	idx := Build([]byte(`a="one";b="two"`))
	resolved := WithEnclosingFunctions(idx.All(), func(offset int) string { return "f" })
	for _, it := range resolved {
		assert.Equal(t, "f", it.EnclosingFunction)
	}
}

func TestWithEnclosingFunctionsSkippedOverCap(t *testing.T) {
	var items []struct {
		Offset int
	}
	_ = items
	// build more than EnrichmentCap synthetic items directly
	big := make([]byte, 0, (EnrichmentCap+1)*8)
	for i := 0; i <= EnrichmentCap; i++ {
		big = append(big, []byte(`a="s";`)...)
	}
	idx := Build(big)
	called := false
	resolved := WithEnclosingFunctions(idx.All(), func(offset int) string {
		called = true
		return "f"
	})
	assert.False(t, called)
	assert.Equal(t, "", resolved[0].EnclosingFunction)
}
