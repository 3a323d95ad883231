package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wellofspirit/bundlescope/model"
)

// TestCheckUnique and TestCheckAmbiguous cover scenario S4 from the spec.
func TestCheckUnique(t *testing.T) {
	res, err := Check([]byte(`function foo(){return "unique_string"}`), "unique_string", Options{})
	assert.NoError(t, err)
	assert.Equal(t, model.StatusUnique, res.Status)
	assert.Len(t, res.Matches, 1)
}

func TestCheckAmbiguous(t *testing.T) {
	res, err := Check([]byte(`var a="dup";var b="dup"`), "dup", Options{})
	assert.NoError(t, err)
	assert.Equal(t, model.StatusAmbiguous, res.Status)
	assert.Len(t, res.Matches, 2)
}

func TestCheckNotFound(t *testing.T) {
	res, err := Check([]byte(`var a=1`), "missing", Options{})
	assert.NoError(t, err)
	assert.Equal(t, model.StatusNotFound, res.Status)
}

func TestShortIdentifierWarning(t *testing.T) {
	res, _ := Check([]byte(`var ab=1`), "ab", Options{})
	var found bool
	for _, w := range res.Warnings {
		if w.Kind == "short-identifier" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestShortIdentifierReservedWordNotFlagged(t *testing.T) {
	res, _ := Check([]byte(`for(var i=0;i<1;i++){}`), "for", Options{})
	for _, w := range res.Warnings {
		assert.NotEqual(t, "short-identifier", w.Kind)
	}
}

func TestPreviewOnlyOnUnique(t *testing.T) {
	res, _ := Check([]byte(`var a="dup";var b="dup"`), "dup", Options{Replacement: "new", HasReplacement: true})
	assert.Nil(t, res.Preview)

	res, _ = Check([]byte(`var a="unique_string"`), "unique_string", Options{Replacement: "x", HasReplacement: true})
	if assert.NotNil(t, res.Preview) {
		assert.Contains(t, res.Preview.BeforeWindow, "x")
	}
}

func TestPreviewCaptureExpansion(t *testing.T) {
	res, _ := Check([]byte(`foo(a,b)`), `foo\((\w+),(\w+)\)`, Options{
		Regex: true, Replacement: "bar($2,$1)", HasReplacement: true,
	})
	assert.Equal(t, model.StatusUnique, res.Status)
	if assert.NotNil(t, res.Preview) {
		assert.Contains(t, res.Preview.BeforeWindow, "bar(b,a)")
	}
}
