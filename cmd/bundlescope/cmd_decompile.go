package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/scanner/funcscan"
	"github.com/wellofspirit/bundlescope/tree/decompile"
)

var decompileCmd = &cobra.Command{
	Use:   "decompile FILE OFFSET",
	Short: "Annotate the function at an offset with readable-name proposals",
	Args:  cobra.ExactArgs(2),
	RunE:  runDecompile,
}

func runDecompile(cmd *cobra.Command, args []string) error {
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
		if !errs.Is(err, errs.BoundaryScanExceeded) {
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

	span := spans[0]
	result, err := decompile.Annotate(buf[span.SigStart:span.BodyEnd])
	if err != nil {
		return err
	}

	fmt.Println(result.Source)
	fmt.Printf("confidence: %.2f\n", result.Confidence)
	for _, p := range result.Proposals {
		fmt.Printf("  %s -> %s (%s)\n", p.Identifier, p.Suggested, p.Reason)
	}
	return nil
}
