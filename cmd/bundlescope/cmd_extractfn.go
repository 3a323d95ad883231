package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/model"
	"github.com/wellofspirit/bundlescope/scanner/funcscan"
	"github.com/wellofspirit/bundlescope/tree/parse"
)

var (
	extractFnStack         bool
	extractFnDepth         int
	extractFnHasDepth      bool
	extractFnNoASTFallback bool
)

var extractFnCmd = &cobra.Command{
	Use:   "extract-fn FILE OFFSET [--stack] [--depth N] [--no-ast-fallback]",
	Short: "Extract the function form enclosing a byte offset",
	Args:  cobra.ExactArgs(2),
	RunE:  runExtractFn,
}

func init() {
	extractFnCmd.Flags().BoolVar(&extractFnStack, "stack", false, "print the full nesting stack instead of only the tightest function")
	extractFnCmd.Flags().IntVar(&extractFnDepth, "depth", 0, "select one entry of the nesting stack by depth (0 = tightest)")
	extractFnCmd.Flags().BoolVar(&extractFnNoASTFallback, "no-ast-fallback", false, "fail instead of falling back to the full-tree parser when the fast scan's horizon is exceeded")
}

func runExtractFn(cmd *cobra.Command, args []string) error {
	extractFnHasDepth = cmd.Flags().Changed("depth")

	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}

	spans, err := funcscan.FindEnclosing(buf, offset)
	if err != nil {
		if !errs.Is(err, errs.BoundaryScanExceeded) || extractFnNoASTFallback {
			return err
		}
		spans, err = astFallbackSpans(buf, offset)
		if err != nil {
			return err
		}
	}
	if len(spans) == 0 {
		return errs.New(errs.OffsetOutsideFunction, "offset is not inside any function")
	}

	if extractFnStack {
		for _, s := range spans {
			printFunctionSpan(buf, s)
		}
		return nil
	}

	depth := 0
	if extractFnHasDepth {
		depth = extractFnDepth
	}
	if depth < 0 || depth >= len(spans) {
		return errs.New(errs.InvalidInput, fmt.Sprintf("depth %d out of range [0,%d)", depth, len(spans)))
	}
	printFunctionSpan(buf, spans[depth])
	return nil
}

func printFunctionSpan(buf []byte, s model.FunctionSpan) {
	fmt.Printf("[depth %d] %s (%d..%d, %d params)\n", s.Depth, s.SignatureText, s.SigStart, s.BodyEnd, s.ParamCount)
	fmt.Println(string(buf[s.SigStart:s.BodyEnd]))
}

// astFallbackSpans resolves the nesting stack with the full-tree parser when
// the fast boundary scanner's locality horizon was exceeded. It returns the
// same nesting-stack shape as funcscan.FindEnclosing (smallest first).
func astFallbackSpans(buf []byte, offset int) ([]model.FunctionSpan, error) {
	tree, err := parse.Parse(buf, 0)
	if err != nil {
		return nil, err
	}

	var containing []*parse.Node
	parse.Walk(tree.Root(), func(n *parse.Node) bool {
		if n.IsFunctionLike() {
			start, end := n.Span()
			if start <= offset && offset <= end {
				containing = append(containing, n)
			}
		}
		return true
	})
	sort.SliceStable(containing, func(i, j int) bool {
		si, ei := containing[i].Span()
		sj, ej := containing[j].Span()
		return (ei - si) < (ej - sj)
	})

	spans := make([]model.FunctionSpan, 0, len(containing))
	for depth, n := range containing {
		start, end := n.Span()
		sigText := strings.TrimSpace(n.Text(buf))
		if idx := strings.IndexByte(sigText, '{'); idx >= 0 {
			sigText = strings.TrimSpace(sigText[:idx])
		}
		paramCount := 0
		if params := n.ChildByFieldName("parameters"); !params.IsNull() {
			paramCount = params.NamedChildCount()
		} else if p := n.ChildByFieldName("parameter"); !p.IsNull() {
			paramCount = 1
		}
		spans = append(spans, model.FunctionSpan{
			SigStart:      start,
			BodyOpenBrace: start,
			BodyEnd:       end,
			SignatureText: sigText,
			ParamCount:    paramCount,
			Depth:         depth,
		})
	}
	return spans, nil
}
