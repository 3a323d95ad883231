package funcmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/tree/parse"
)

func buildMap(t *testing.T, src string, withStrings bool) []model.FunctionEntry {
	t.Helper()
	tree, err := parse.Parse([]byte(src), 0)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return Build(tree, withStrings)
}

func TestBuildNamesFromDeclaratorAndDeclaration(t *testing.T) {
	entries := buildMap(t, `function foo(){return 1}; var bar=function(){return 2}`, false)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "foo")
	assert.Contains(t, names, "bar")
}

// TestDiffSelfIsIdentity covers invariant 6: diff(m,m) is all-unchanged.
func TestDiffSelfIsIdentity(t *testing.T) {
	entries := buildMap(t, `function foo(){return "hello"}`, true)
	result := Diff(entries, entries)
	assert.Len(t, result.Unchanged, 1)
	assert.Empty(t, result.Modified)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
}

// TestDiffUnchangedWithShift covers scenario S6 from the spec.
func TestDiffUnchangedWithShift(t *testing.T) {
	map1 := buildMap(t, `function foo(){return "hello"}`, true)
	map2 := buildMap(t, `var x=1;function foo(){return "hello"}`, true)
	result := Diff(map1, map2)
	assert.Len(t, result.Unchanged, 1)
	assert.Greater(t, result.Unchanged[0].Shift, 0)
	assert.Empty(t, result.Modified)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
}

func TestDiffModifiedByStringSimilarity(t *testing.T) {
	map1 := buildMap(t, `function f(a,b){return ["alpha","beta","gamma"]}`, true)
	map2 := buildMap(t, `function f(a,b){return ["alpha","beta","gamma","delta"]}`, true)
	result := Diff(map1, map2)
	assert.Empty(t, result.Unchanged)
	assert.Len(t, result.Modified, 1)
}

func TestFingerprintStable(t *testing.T) {
	e := model.FunctionEntry{ParamCount: 2, Start: 0, End: 100, StringsUsed: []string{"a", "b"}}
	assert.Equal(t, Fingerprint(e), Fingerprint(e))
}

func TestContentHashStableAndDistinguishesBodies(t *testing.T) {
	entries := buildMap(t, `function foo(){return 1};function bar(){return 2}`, false)
	assert.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].ContentHash)
	assert.NotEqual(t, entries[0].ContentHash, entries[1].ContentHash)

	again := buildMap(t, `function foo(){return 1};function bar(){return 2}`, false)
	assert.Equal(t, entries[0].ContentHash, again[0].ContentHash)
}

func TestStringSetDiffFiltersCodeAndShortStrings(t *testing.T) {
	v1 := []byte(`a="function foo(){return 1}";b="normal string here that is long enough"`)
	v2 := []byte(`a="if(x){y=z;return}";b="different string here that is long enough"`)
	only1, only2, _, _ := StringSetDiff(v1, v2, 20, true, 0)
	for _, s := range only1 {
		assert.NotContains(t, s, "function")
	}
	assert.NotEmpty(t, only1)
	assert.NotEmpty(t, only2)
}

func TestCategorizeVersionBump(t *testing.T) {
	m := model.FunctionModification{AddedStrings: []string{"2.1"}, RemovedStrings: []string{"2.0"}}
	assert.Equal(t, CategoryVersionBump, Categorize(m))
}

func TestCategorizeTelemetry(t *testing.T) {
	m := model.FunctionModification{AddedStrings: []string{"tengu_event_fired"}}
	assert.Equal(t, CategoryTelemetry, Categorize(m))
}
