package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wellofspirit/bundlescope/errs"
)

func TestAtomicWriteFileWritesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	assert.NoError(t, atomicWriteFile(path, []byte("hello")))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1, "no leftover temp file after a successful write")
}

func TestAtomicWriteFileNoPartialOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing-subdir", "out.txt")

	err := atomicWriteFile(path, []byte("hello"))
	assert.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAtomicWriteFileOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	assert.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	assert.NoError(t, atomicWriteFile(path, []byte("new")))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor(nil, true))
	assert.Equal(t, 1, exitCodeFor(errs.New(errs.InvalidInput, "bad"), true))
	assert.Equal(t, 2, exitCodeFor(errs.New(errs.PatternAmbiguous, "dup"), true))
	assert.Equal(t, 1, exitCodeFor(errs.New(errs.PatternAmbiguous, "dup"), false),
		"only the match command should map PatternAmbiguous to exit code 2")
	assert.Equal(t, 1, exitCodeFor(errs.New(errs.PatternNotFound, "missing"), true))
}
