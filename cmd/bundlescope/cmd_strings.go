package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/scanner/funcscan"
	"github.com/wellofspirit/bundlescope/scanner/landmark"
	"github.com/wellofspirit/bundlescope/tree/funcmap"
)

var (
	stringsNear      int
	stringsHasNear   bool
	stringsFilter    string
	stringsDiff      bool
	stringsMinLength int
	stringsLimit     int
	stringsRaw       bool
	stringsAll       bool
)

var stringsCmd = &cobra.Command{
	Use:   "strings FILE [--near N] [--filter S]",
	Short: "List string/template landmarks, or diff the string sets of two bundles",
	Args:  validateStringsArgs,
	RunE:  runStrings,
}

func init() {
	stringsCmd.Flags().IntVar(&stringsNear, "near", 0, "keep only landmarks within 5000 bytes of this offset")
	stringsCmd.Flags().StringVar(&stringsFilter, "filter", "", "restrict to landmarks containing this substring")
	stringsCmd.Flags().BoolVar(&stringsDiff, "diff", false, "diff the string sets of two bundle files instead of listing one")
	stringsCmd.Flags().IntVar(&stringsMinLength, "min-length", 0, "minimum string length kept by --diff (default: config's strings_min_length)")
	stringsCmd.Flags().IntVar(&stringsLimit, "limit", 0, "cap the number of strings printed per side by --diff (0 = unlimited)")
	stringsCmd.Flags().BoolVar(&stringsRaw, "raw", false, "in --diff mode, skip the code-like string filter")
	stringsCmd.Flags().BoolVar(&stringsAll, "all", false, "in --diff mode, print every string, ignoring --limit")
}

func validateStringsArgs(cmd *cobra.Command, args []string) error {
	diff, _ := cmd.Flags().GetBool("diff")
	if diff {
		return cobra.ExactArgs(2)(cmd, args)
	}
	return cobra.ExactArgs(1)(cmd, args)
}

func runStrings(cmd *cobra.Command, args []string) error {
	stringsHasNear = cmd.Flags().Changed("near")
	if stringsDiff {
		return runStringsDiff(args[0], args[1])
	}
	return runStringsList(args[0])
}

func runStringsList(file string) error {
	buf, err := readSource(file)
	if err != nil {
		return err
	}
	idx := landmark.Build(buf)

	items := idx.All()
	if stringsHasNear {
		items = idx.Near(stringsNear, 0)
	}
	if stringsFilter != "" {
		items = idx.Filter(stringsFilter)
	}
	items = landmark.WithEnclosingFunctions(items, func(offset int) string {
		spans, err := funcscan.FindEnclosing(buf, offset)
		if err != nil || len(spans) == 0 {
			return ""
		}
		return spans[0].SignatureText
	})

	for _, it := range items {
		if it.EnclosingFunction != "" {
			fmt.Printf("@%d [%s]: %q\n", it.Offset, it.EnclosingFunction, it.Content)
		} else {
			fmt.Printf("@%d: %q\n", it.Offset, it.Content)
		}
	}
	return nil
}

func runStringsDiff(file1, file2 string) error {
	buf1, err := readSource(file1)
	if err != nil {
		return err
	}
	buf2, err := readSource(file2)
	if err != nil {
		return err
	}

	minLen := stringsMinLength
	if minLen == 0 {
		minLen = cfg.Defaults.StringsMinLength
	}
	limit := stringsLimit
	if stringsAll {
		limit = 0
	}

	only1, only2, dropped1, dropped2 := funcmap.StringSetDiff(buf1, buf2, minLen, !stringsRaw, limit)

	fmt.Printf("only in %s (%d):\n", file1, len(only1))
	for _, s := range only1 {
		fmt.Printf("  %q\n", s)
	}
	if dropped1 > 0 {
		fmt.Printf("  ... and %d more\n", dropped1)
	}
	fmt.Printf("only in %s (%d):\n", file2, len(only2))
	for _, s := range only2 {
		fmt.Printf("  %q\n", s)
	}
	if dropped2 > 0 {
		fmt.Printf("  ... and %d more\n", dropped2)
	}
	return nil
}
