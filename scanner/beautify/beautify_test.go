package beautify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBeautifySimple covers scenario S1 from the spec.
func TestBeautifySimple(t *testing.T) {
	res := Beautify([]byte("a=1;b=2;c=3"))
	assert.Equal(t, []string{"a=1;", "b=2;", "c=3"}, res.Lines())
	assert.Equal(t, []int{0, 4, 8}, res.OffsetMap)
}

func TestBeautifyBraces(t *testing.T) {
	res := Beautify([]byte("function f(){return 1}"))
	lines := res.Lines()
	assert.Equal(t, "function f(){", lines[0])
	assert.Equal(t, "  return 1", lines[1])
	assert.Equal(t, "}", lines[2])
	assert.Len(t, res.OffsetMap, 3)
}

// TestBeautifyOffsetMapMonotonic asserts that every recorded offset lies
// inside the source, that offsets never decrease from one beautified line to
// the next, and that the code content survives beautification.
func TestBeautifyOffsetMapMonotonic(t *testing.T) {
	src := []byte(`var a="hello;world";function f(x){if(x){return x}return 0}`)
	res := Beautify(src)
	for i, off := range res.OffsetMap {
		if off < 0 || off > len(src) {
			t.Fatalf("offset %d out of range for line %d", off, i)
		}
		if i > 0 && off < res.OffsetMap[i-1] {
			t.Fatalf("offset map decreases at line %d: %d < %d", i, off, res.OffsetMap[i-1])
		}
	}
	// stripping whitespace from beautified text should yield a string whose
	// Normal-region characters are a subsequence of the original stripped
	// of whitespace in the same order.
	stripped := strings.ReplaceAll(strings.ReplaceAll(res.Text, "\n", ""), " ", "")
	if !strings.Contains(stripped, `x){return`) {
		t.Fatalf("beautified text lost code content: %q", stripped)
	}
}

func TestBeautifyStringsCopiedVerbatim(t *testing.T) {
	res := Beautify([]byte(`a={x:1};b="text;with{braces}"`))
	// the string's semicolon/braces must not have triggered extra flushes
	joined := strings.Join(res.Lines(), "\n")
	assert.Contains(t, joined, `"text;with{braces}"`)
}

func TestBeautifyDropsBlankLines(t *testing.T) {
	res := Beautify([]byte("a=1;\n\n\nb=2;"))
	assert.Equal(t, []string{"a=1;", "b=2;"}, res.Lines())
}
