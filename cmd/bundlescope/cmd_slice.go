package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/scanner/beautify"
	"github.com/wellofspirit/bundlescope/scanner/funcscan"
	"github.com/wellofspirit/bundlescope/scanner/landmark"
)

const defaultSliceLength = 500

var (
	sliceBefore   int
	sliceAfter    int
	sliceBeautify bool
)

var sliceCmd = &cobra.Command{
	Use:   "slice FILE OFFSET [LENGTH] [--before N] [--after N] [--beautify]",
	Short: "Print a byte window of the bundle around an offset",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runSlice,
}

func init() {
	sliceCmd.Flags().IntVar(&sliceBefore, "before", 0, "extend the window N bytes before offset")
	sliceCmd.Flags().IntVar(&sliceAfter, "after", 0, "extend the window N bytes after the window's end")
	sliceCmd.Flags().BoolVar(&sliceBeautify, "beautify", false, "beautify the sliced window before printing")
}

func runSlice(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}
	length := defaultSliceLength
	if len(args) == 3 {
		length, err = parseOffset(args[2])
		if err != nil {
			return err
		}
	}

	start := offset - sliceBefore
	if start < 0 {
		start = 0
	}
	end := offset + length + sliceAfter
	if end > len(buf) {
		end = len(buf)
	}
	if start > end {
		return errs.New(errs.InvalidInput, "slice window is empty after clamping to buffer bounds")
	}

	window := buf[start:end]
	if sliceBeautify {
		fmt.Print(beautify.Beautify(window).Text)
		return nil
	}
	fmt.Println(string(window))
	return nil
}

const contextWindowRadius = 200

var contextCmd = &cobra.Command{
	Use:   "context FILE OFFSET",
	Short: "Show the enclosing function, nearby landmarks, and a marked window",
	Args:  cobra.ExactArgs(2),
	RunE:  runContext,
}

func runContext(cmd *cobra.Command, args []string) error {
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
		return err
	}
	if len(spans) > 0 {
		fmt.Printf("enclosing function: %s\n", spans[0].SignatureText)
	} else {
		fmt.Println("enclosing function: <module scope>")
	}

	radius := landmark.DefaultRadius
	if cfg.Defaults.NearRadius > 0 {
		radius = cfg.Defaults.NearRadius
	}
	idx := landmark.Build(buf)
	nearby := idx.Near(offset, radius)
	fmt.Printf("nearby landmarks (%d):\n", len(nearby))
	for _, l := range nearby {
		fmt.Printf("  @%d: %q\n", l.Offset, l.Content)
	}

	start := offset - contextWindowRadius
	if start < 0 {
		start = 0
	}
	end := offset + contextWindowRadius
	if end > len(buf) {
		end = len(buf)
	}
	result := beautify.Beautify(buf[start:end])
	fmt.Println("window:")
	fmt.Println(markOffsetInBeautified(result, offset-start))
	return nil
}

// markOffsetInBeautified finds the beautified line whose recorded source
// offset is closest to (but not after) localOffset and appends a marker.
func markOffsetInBeautified(result beautify.Result, localOffset int) string {
	lines := result.Lines()
	markLine := -1
	for i, off := range result.OffsetMap {
		if off <= localOffset {
			markLine = i
		} else {
			break
		}
	}
	out := ""
	for i, line := range lines {
		if i == markLine {
			out += line + "  // <-- offset\n"
		} else {
			out += line + "\n"
		}
	}
	return out
}
