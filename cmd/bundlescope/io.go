package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/wellofspirit/bundlescope/errs"
)

// readSource reads path as the source buffer every command operates on.
func readSource(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.FileIO, "failed to read "+path, err)
	}
	return buf, nil
}

// atomicWriteFile writes data to path via a temp file in the same directory
// followed by a rename, so a crash or error mid-write never leaves a partial
// output file on disk (§7's "no partial output on failure").
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.Wrap(errs.FileIO, "failed to create temp file for "+path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Wrap(errs.FileIO, "failed to write "+path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.FileIO, "failed to close temp file for "+path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.Wrap(errs.FileIO, "failed to rename temp file onto "+path, err)
	}
	return nil
}

// printStructured renders v as JSON or YAML to stdout, per the mutually
// exclusive --json/--yaml flags. Exactly one of the two should be true when
// this is called.
func printStructured(v interface{}, asJSON, asYAML bool) error {
	switch {
	case asJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errs.Wrap(errs.FileIO, "failed to encode JSON output", err)
		}
	case asYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return errs.Wrap(errs.FileIO, "failed to encode YAML output", err)
		}
		fmt.Print(string(out))
	}
	return nil
}

// exitCodeFor maps an error to the process exit code documented in §6/§7: 0
// on nil, 2 only when the caller explicitly flags PatternAmbiguous as the
// match-command special case, 1 for everything else.
func exitCodeFor(err error, matchAmbiguousIsTwo bool) int {
	if err == nil {
		return 0
	}
	if matchAmbiguousIsTwo && errs.Is(err, errs.PatternAmbiguous) {
		return 2
	}
	return 1
}

// fail prints err to stderr and returns the process exit code that main()
// should exit with.
func fail(err error, matchAmbiguousIsTwo bool) int {
	fmt.Fprintln(os.Stderr, err)
	return exitCodeFor(err, matchAmbiguousIsTwo)
}
