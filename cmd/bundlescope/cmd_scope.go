package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/tree/parse"
	"github.com/wellofspirit/bundlescope/tree/refs"
	"github.com/wellofspirit/bundlescope/tree/scope"
)

var scopeAll bool

var scopeCmd = &cobra.Command{
	Use:   "scope FILE OFFSET [--all]",
	Short: "Show the lexical scope chain containing a byte offset",
	Args:  cobra.ExactArgs(2),
	RunE:  runScope,
}

func init() {
	scopeCmd.Flags().BoolVar(&scopeAll, "all", false, "print every ancestor scope, not only the tightest")
}

func runScope(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}

	_, arena, err := parseAndBuildScope(buf)
	if err != nil {
		return err
	}

	idx := arena.Find(offset)
	if !scopeAll {
		printScope(arena, idx)
		return nil
	}
	for idx >= 0 {
		printScope(arena, idx)
		idx = arena.Scopes[idx].Parent
	}
	return nil
}

func printScope(arena *scope.Arena, idx int) {
	s := arena.Scopes[idx]
	fmt.Printf("[%s] %d..%d (parent=%d)\n", s.Kind, s.Start, s.End, s.Parent)
	for _, b := range s.Bindings {
		fmt.Printf("  %s %s @%d\n", b.Kind, b.Name, b.Offset)
	}
}

var refsCmd = &cobra.Command{
	Use:   "refs FILE OFFSET",
	Short: "Show external identifier references inside the enclosing function",
	Args:  cobra.ExactArgs(2),
	RunE:  runRefs,
}

func runRefs(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}

	tree, arena, err := parseAndBuildScope(buf)
	if err != nil {
		return err
	}

	groups, err := refs.ExternalReferences(tree, arena, offset)
	if err != nil {
		return err
	}
	for _, g := range groups {
		depthLabel := "global"
		if g.Depth >= 0 {
			depthLabel = fmt.Sprintf("depth %d", g.Depth)
		}
		fmt.Printf("%s:\n", depthLabel)
		for _, b := range g.Bindings {
			fmt.Printf("  %s (%s) x%d @%v\n", b.Name, b.DeclarationKind, b.OccurrenceCount, b.OccurrenceOffsets)
		}
	}
	return nil
}

var callsCmd = &cobra.Command{
	Use:   "calls FILE OFFSET",
	Short: "Show outgoing and incoming calls for the enclosing function",
	Args:  cobra.ExactArgs(2),
	RunE:  runCalls,
}

func runCalls(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}

	tree, arena, err := parseAndBuildScope(buf)
	if err != nil {
		return err
	}

	outgoing, err := refs.OutgoingCalls(tree, arena, offset)
	if err != nil {
		return err
	}
	fmt.Println("outgoing:")
	for _, c := range outgoing {
		fmt.Printf("  %s x%d\n", c.Name, c.Count)
	}

	incoming, name, err := refs.IncomingCalls(buf, tree, arena, offset)
	if err != nil {
		return err
	}
	fmt.Printf("incoming (as %s):\n", name)
	for _, c := range incoming {
		ambiguous := ""
		if c.Ambiguous {
			ambiguous = " (ambiguous: short name)"
		}
		fmt.Printf("  from %s @%d%s: %s\n", callerLabel(c), c.CallOffset, ambiguous, c.Context)
	}
	return nil
}

func callerLabel(c refs.IncomingCall) string {
	if c.CallerSignature == "" {
		return model.AnonymousName
	}
	return c.CallerSignature
}

func parseAndBuildScope(buf []byte) (*parse.Tree, *scope.Arena, error) {
	tree, err := parse.Parse(buf, 0)
	if err != nil {
		return nil, nil, err
	}
	return tree, scope.Build(tree), nil
}
