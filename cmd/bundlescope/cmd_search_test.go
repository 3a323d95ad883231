package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/wellofspirit/bundlescope/errs"
)

// resetChanged clears the Changed bit cobra/pflag leaves set on a singleton
// command's flags after a prior test invoked it directly, so each test starts
// from the flag's zero value regardless of execution order.
func resetChanged(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if f := cmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

func writeTempBundle(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundle.js")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunMatchUniqueSucceeds(t *testing.T) {
	resetChanged(matchCmd, "replace")
	matchReplace = ""

	file := writeTempBundle(t, `function foo(){return "only_once"}`)
	err := runMatch(matchCmd, []string{file, "only_once"})
	assert.NoError(t, err)
}

func TestRunMatchAmbiguousReturnsPatternAmbiguous(t *testing.T) {
	resetChanged(matchCmd, "replace")
	matchReplace = ""

	file := writeTempBundle(t, `var a="dup";var b="dup"`)
	err := runMatch(matchCmd, []string{file, "dup"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.PatternAmbiguous))
		assert.Equal(t, 2, exitCodeFor(err, true),
			"match must exit 2 on an ambiguous pattern")
	}
}

func TestRunMatchNotFoundReturnsPatternNotFound(t *testing.T) {
	resetChanged(matchCmd, "replace")
	matchReplace = ""

	file := writeTempBundle(t, `var a=1`)
	err := runMatch(matchCmd, []string{file, "missing_token"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.PatternNotFound))
		assert.Equal(t, 1, exitCodeFor(err, true))
	}
}

func TestRunPatchCheckNonUniqueIsFailureRegardlessOfStatus(t *testing.T) {
	resetChanged(patchCheckCmd, "regex", "replacement")
	patchCheckRegex = false
	patchCheckReplacement = ""

	file := writeTempBundle(t, `var a="dup";var b="dup"`)
	err := runPatchCheck(patchCheckCmd, []string{file, "dup"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.PatternAmbiguous))
		assert.Equal(t, 1, exitCodeFor(err, false),
			"patch-check is not the match command, so ambiguous still exits 1")
	}

	file2 := writeTempBundle(t, `var a=1`)
	err = runPatchCheck(patchCheckCmd, []string{file2, "missing_token"})
	if assert.Error(t, err) {
		assert.True(t, errs.Is(err, errs.PatternNotFound))
	}
}

func TestRunPatchCheckUniqueSucceeds(t *testing.T) {
	resetChanged(patchCheckCmd, "regex", "replacement")
	patchCheckRegex = false
	patchCheckReplacement = ""

	file := writeTempBundle(t, `function foo(){return "only_once"}`)
	err := runPatchCheck(patchCheckCmd, []string{file, "only_once"})
	assert.NoError(t, err)
}

func TestRunFindLiteralMatches(t *testing.T) {
	resetChanged(findCmd, "regex", "captures", "compact", "near", "count", "limit")
	findRegex, findCaptures, findCompact, findCount = false, false, false, false
	findNear, findLimit = 0, 0

	file := writeTempBundle(t, `function foo(){return "needle"};function bar(){return "needle"}`)
	err := runFind(findCmd, []string{file, "needle"})
	assert.NoError(t, err)
}

func TestRunFindRegexWithCaptures(t *testing.T) {
	resetChanged(findCmd, "regex", "captures", "compact", "near", "count", "limit")
	findRegex, findCaptures, findCompact, findCount = true, true, false, false
	findNear, findLimit = 0, 0

	file := writeTempBundle(t, `foo(a,b)`)
	err := runFind(findCmd, []string{file, `foo\((%V%),(%V%)\)`})
	assert.NoError(t, err)
}
