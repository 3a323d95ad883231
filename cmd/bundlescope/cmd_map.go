package main

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/tree/funcmap"
	"github.com/wellofspirit/bundlescope/tree/irgraph"
	"github.com/wellofspirit/bundlescope/tree/parse"
	"github.com/wellofspirit/bundlescope/tree/scope"
)

var (
	mapJSON    bool
	mapYAML    bool
	mapStrings bool
	mapGraph   bool
)

var mapCmd = &cobra.Command{
	Use:   "map FILE [--json] [--yaml] [--strings] [--graph]",
	Short: "Build the function map for a bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runMap,
}

func init() {
	mapCmd.Flags().BoolVar(&mapJSON, "json", false, "write FILE.map.json instead of printing a summary")
	mapCmd.Flags().BoolVar(&mapYAML, "yaml", false, "print the function map as YAML instead of a summary")
	mapCmd.Flags().BoolVar(&mapStrings, "strings", false, "include each function's string-literal set")
	mapCmd.Flags().BoolVar(&mapGraph, "graph", false, "also write FILE.graph.json, a node/edge call graph over the function map")
}

func runMap(cmd *cobra.Command, args []string) error {
	if mapJSON && mapYAML {
		return errs.New(errs.InvalidInput, "--json and --yaml are mutually exclusive")
	}

	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	tree, err := parse.Parse(buf, 0)
	if err != nil {
		return err
	}
	entries := funcmap.Build(tree, mapStrings)

	if mapGraph {
		graph := irgraph.Build(tree, scope.Build(tree), entries)
		data, err := json.MarshalIndent(graph, "", "  ")
		if err != nil {
			return errs.Wrap(errs.FileIO, "failed to encode call graph", err)
		}
		path := args[0] + ".graph.json"
		if err := atomicWriteFile(path, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d nodes, %d edges)\n", path, len(graph.Nodes), len(graph.Edges))
	}

	if mapJSON {
		data, err := marshalMapJSON(entries)
		if err != nil {
			return err
		}
		path := args[0] + ".map.json"
		if err := atomicWriteFile(path, data); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d functions)\n", path, len(entries))
		return nil
	}
	if mapYAML {
		return printStructured(entries, false, true)
	}

	for _, e := range entries {
		fmt.Printf("%s @%d..%d (%d params)%s\n", e.Name, e.Start, e.End, e.ParamCount, asyncGenSuffix(e))
	}
	return nil
}

func asyncGenSuffix(e model.FunctionEntry) string {
	suffix := ""
	if e.IsAsync {
		suffix += " async"
	}
	if e.IsGenerator {
		suffix += " generator"
	}
	return suffix
}

func marshalMapJSON(entries []model.FunctionEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.FunctionEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.FileIO, "failed to encode function map", err)
	}
	return data, nil
}

var (
	diffFnsJSON        bool
	diffFnsYAML        bool
	diffFnsLimit       int
	diffFnsAll         bool
	diffFnsName        string
	diffFnsBody        bool
	diffFnsFilter      string
	diffFnsSummary     bool
	diffFnsStringsOnly bool
	diffFnsRaw         bool
)

var diffFnsCmd = &cobra.Command{
	Use:   "diff-fns FILE1 FILE2",
	Short: "Diff the function maps of two bundle versions",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiffFns,
}

func init() {
	diffFnsCmd.Flags().BoolVar(&diffFnsJSON, "json", false, "print the four-list diff result as JSON")
	diffFnsCmd.Flags().BoolVar(&diffFnsYAML, "yaml", false, "print the four-list diff result as YAML")
	diffFnsCmd.Flags().IntVar(&diffFnsLimit, "limit", 20, "cap the number of entries printed per list")
	diffFnsCmd.Flags().BoolVar(&diffFnsAll, "all", false, "print every entry, ignoring --limit")
	diffFnsCmd.Flags().StringVar(&diffFnsName, "name", "", "restrict output to this function name")
	diffFnsCmd.Flags().BoolVar(&diffFnsBody, "body", false, "print each entry's signature prefix")
	diffFnsCmd.Flags().StringVar(&diffFnsFilter, "filter", "", "restrict output to names matching this regex")
	diffFnsCmd.Flags().BoolVar(&diffFnsSummary, "summary", false, "print the advisory categorization summary instead of raw lists")
	diffFnsCmd.Flags().BoolVar(&diffFnsStringsOnly, "strings-only", false, "use the fast string-set-only diff instead of a full tree diff")
	diffFnsCmd.Flags().BoolVar(&diffFnsRaw, "raw", false, "in --strings-only mode, skip the code-like string filter")
}

func runDiffFns(cmd *cobra.Command, args []string) error {
	if diffFnsJSON && diffFnsYAML {
		return errs.New(errs.InvalidInput, "--json and --yaml are mutually exclusive")
	}

	buf1, err := readSource(args[0])
	if err != nil {
		return err
	}
	buf2, err := readSource(args[1])
	if err != nil {
		return err
	}

	if diffFnsStringsOnly {
		only1, only2, d1, d2 := funcmap.StringSetDiff(buf1, buf2, cfg.Defaults.StringsMinLength, !diffFnsRaw, limitOrAll())
		fmt.Printf("only in %s (%d, %d dropped): %v\n", args[0], len(only1), d1, only1)
		fmt.Printf("only in %s (%d, %d dropped): %v\n", args[1], len(only2), d2, only2)
		return nil
	}

	tree1, err := parse.Parse(buf1, 0)
	if err != nil {
		return err
	}
	tree2, err := parse.Parse(buf2, 0)
	if err != nil {
		return err
	}
	map1 := funcmap.Build(tree1, true)
	map2 := funcmap.Build(tree2, true)
	result := funcmap.Diff(map1, map2)

	if diffFnsJSON {
		return printStructured(result, true, false)
	}
	if diffFnsYAML {
		return printStructured(result, false, true)
	}

	var filterRe *regexp.Regexp
	if diffFnsFilter != "" {
		re, err := regexp.Compile(diffFnsFilter)
		if err != nil {
			return errs.Wrap(errs.PatternInvalid, "invalid --filter regex", err)
		}
		filterRe = re
	}

	if diffFnsSummary {
		printDiffSummary(result)
		return nil
	}
	printDiffResult(result, filterRe)
	return nil
}

func limitOrAll() int {
	if diffFnsAll {
		return 0
	}
	return diffFnsLimit
}

func nameMatches(name string, re *regexp.Regexp) bool {
	if diffFnsName != "" && name != diffFnsName {
		return false
	}
	if re != nil && !re.MatchString(name) {
		return false
	}
	return true
}

func printDiffResult(result model.DiffResult, filterRe *regexp.Regexp) {
	limit := limitOrAll()

	fmt.Printf("unchanged (%d):\n", len(result.Unchanged))
	printed := 0
	for _, u := range result.Unchanged {
		if !nameMatches(u.V1.Name, filterRe) {
			continue
		}
		if limit > 0 && printed >= limit {
			fmt.Printf("  ... and %d more\n", len(result.Unchanged)-printed)
			break
		}
		fmt.Printf("  %s shift=%d\n", u.V1.Name, u.Shift)
		if diffFnsBody {
			fmt.Printf("    %s\n", u.V1.SignaturePrefix)
		}
		printed++
	}

	fmt.Printf("modified (%d):\n", len(result.Modified))
	printed = 0
	for _, m := range result.Modified {
		if !nameMatches(m.V1.Name, filterRe) {
			continue
		}
		if limit > 0 && printed >= limit {
			fmt.Printf("  ... and %d more\n", len(result.Modified)-printed)
			break
		}
		fmt.Printf("  %s similarity=%.2f sizeDiff=%d\n", m.V1.Name, m.Similarity, m.SizeDiff)
		fmt.Printf("    category: %s\n", funcmap.Categorize(m))
		if diffFnsBody {
			fmt.Printf("    %s -> %s\n", m.V1.SignaturePrefix, m.V2.SignaturePrefix)
		}
		printed++
	}

	printEntryList("added", result.Added, filterRe, limit)
	printEntryList("removed", result.Removed, filterRe, limit)
}

func printEntryList(label string, entries []model.FunctionEntry, filterRe *regexp.Regexp, limit int) {
	fmt.Printf("%s (%d):\n", label, len(entries))
	printed := 0
	for _, e := range entries {
		if !nameMatches(e.Name, filterRe) {
			continue
		}
		if limit > 0 && printed >= limit {
			fmt.Printf("  ... and %d more\n", len(entries)-printed)
			break
		}
		fmt.Printf("  %s\n", e.Name)
		if diffFnsBody {
			fmt.Printf("    %s\n", e.SignaturePrefix)
		}
		printed++
	}
}

func printDiffSummary(result model.DiffResult) {
	counts := map[funcmap.Category]int{}
	for _, m := range result.Modified {
		counts[funcmap.Categorize(m)]++
	}
	fmt.Printf("unchanged: %d\n", len(result.Unchanged))
	fmt.Printf("added: %d\n", len(result.Added))
	fmt.Printf("removed: %d\n", len(result.Removed))
	fmt.Printf("modified: %d\n", len(result.Modified))
	for cat, n := range counts {
		fmt.Printf("  %s: %d\n", cat, n)
	}
}
