package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/patch"
	"github.com/wellofspirit/bundlescope/scanner/search"
)

var (
	findRegex    bool
	findCaptures bool
	findCompact  bool
	findNear     int
	findCount    bool
	findLimit    int
)

var findCmd = &cobra.Command{
	Use:   "find FILE PATTERN [--regex] [--captures] [--compact] [--near N] [--count] [--limit N]",
	Short: "Search a bundle for a literal or regex pattern",
	Args:  cobra.ExactArgs(2),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().BoolVar(&findRegex, "regex", false, "treat PATTERN as a regex (enables %V%/%S% shorthand)")
	findCmd.Flags().BoolVar(&findCaptures, "captures", false, "print named/positional capture groups")
	findCmd.Flags().BoolVar(&findCompact, "compact", false, "print one match per line as offset: text")
	findCmd.Flags().IntVar(&findNear, "near", 0, "keep only matches within 5000 bytes of this offset")
	findCmd.Flags().BoolVar(&findCount, "count", false, "print a per-function match count instead of matches")
	findCmd.Flags().IntVar(&findLimit, "limit", 0, "cap the number of matches printed (0 = unlimited)")
}

func runFind(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	pattern := args[1]

	opts := search.Options{Regex: findRegex}
	matches, err := search.Find(buf, pattern, opts)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("near") {
		matches = search.Near(matches, findNear, 0)
	}

	if findCount {
		groups := search.GroupByFunction(buf, matches)
		fmt.Print(search.CountPerFunction(groups))
		return nil
	}

	kept, dropped := search.Limit(matches, findLimit)

	if findCompact {
		fmt.Print(search.Compact(kept))
	} else {
		groups := search.GroupByFunction(buf, kept)
		printFindGroups(groups)
	}
	if dropped > 0 {
		fmt.Printf("... and %d more\n", dropped)
	}
	return nil
}

func printFindGroups(groups []search.Group) {
	for _, g := range groups {
		name := "<global>"
		if g.Function != nil {
			name = g.Function.SignatureText
		}
		fmt.Printf("%s:\n", name)
		for _, m := range g.Matches {
			fmt.Printf("  @%d: %s\n", m.Offset, m.MatchText)
			if findCaptures {
				printCaptures(m)
			}
		}
	}
}

func printCaptures(m model.PatchMatch) {
	for i, c := range m.Captures {
		fmt.Printf("    $%d = %q\n", i+1, c)
	}
	for name, val := range m.NamedCaptures {
		fmt.Printf("    %s = %q\n", name, val)
	}
}

var matchReplace string

var matchCmd = &cobra.Command{
	Use:   "match FILE PATTERN [--replace STR]",
	Short: "Regex-match a pattern with captures and a uniqueness check",
	Args:  cobra.ExactArgs(2),
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVar(&matchReplace, "replace", "", "replacement template, expanded with captured groups")
}

func runMatch(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	pattern := args[1]

	opts := patch.Options{Regex: true}
	if cmd.Flags().Changed("replace") {
		opts.Replacement = matchReplace
		opts.HasReplacement = true
	}

	result, err := patch.Check(buf, pattern, opts)
	if err != nil {
		return err
	}

	if err := printPatchResult(result); err != nil {
		return err
	}

	switch result.Status {
	case model.StatusAmbiguous:
		return errs.New(errs.PatternAmbiguous, fmt.Sprintf("pattern matched %d times, expected exactly one", len(result.Matches)))
	case model.StatusNotFound:
		return errs.New(errs.PatternNotFound, "pattern did not match")
	}
	return nil
}

var (
	patchCheckRegex       bool
	patchCheckReplacement string
)

var patchCheckCmd = &cobra.Command{
	Use:   "patch-check FILE PATTERN [--regex] [--replacement STR]",
	Short: "Validate that a patch pattern is safe to apply",
	Args:  cobra.ExactArgs(2),
	RunE:  runPatchCheck,
}

func init() {
	patchCheckCmd.Flags().BoolVar(&patchCheckRegex, "regex", false, "treat PATTERN as a regex")
	patchCheckCmd.Flags().StringVar(&patchCheckReplacement, "replacement", "", "replacement template used to render a preview")
}

func runPatchCheck(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	pattern := args[1]

	opts := patch.Options{Regex: patchCheckRegex}
	if cmd.Flags().Changed("replacement") {
		opts.Replacement = patchCheckReplacement
		opts.HasReplacement = true
	}

	result, err := patch.Check(buf, pattern, opts)
	if err != nil {
		return err
	}
	if err := printPatchResult(result); err != nil {
		return err
	}

	switch result.Status {
	case model.StatusNotFound:
		return errs.New(errs.PatternNotFound, "pattern did not match")
	case model.StatusAmbiguous:
		return errs.New(errs.PatternAmbiguous, fmt.Sprintf("pattern matched %d times, expected exactly one", len(result.Matches)))
	}
	return nil
}

func printPatchResult(r model.PatchResult) error {
	fmt.Printf("status: %s (%d match(es))\n", r.Status, len(r.Matches))
	for _, m := range r.Matches {
		fmt.Printf("  @%d: %s\n", m.Offset, m.MatchText)
	}
	for _, w := range r.Warnings {
		fmt.Printf("warning [%s]: %s\n", w.Kind, w.Message)
	}
	if r.Preview != nil {
		fmt.Println("preview:")
		fmt.Printf("  before: %s\n", r.Preview.BeforeWindow)
		fmt.Printf("  after:  %s\n", r.Preview.AfterWindow)
	}
	return nil
}
