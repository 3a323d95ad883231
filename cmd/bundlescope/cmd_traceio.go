package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/scanner/iotrace"
)

var traceIOCmd = &cobra.Command{
	Use:   "trace-io FILE CHANNEL_PATTERN",
	Short: "Trace writers and readers of an I/O channel pattern",
	Args:  cobra.ExactArgs(2),
	RunE:  runTraceIO,
}

func runTraceIO(cmd *cobra.Command, args []string) error {
	buf, err := readSource(args[0])
	if err != nil {
		return err
	}
	trace, err := iotrace.Run(buf, args[1])
	if err != nil {
		return err
	}

	fmt.Printf("writers (%d):\n", len(trace.Writers))
	for _, w := range trace.Writers {
		fmt.Printf("  @%d [%s] in %s\n", w.Offset, w.Transport, w.EnclosingFunction)
	}
	fmt.Printf("readers (%d):\n", len(trace.Readers))
	for _, r := range trace.Readers {
		fmt.Printf("  @%d [%s]\n", r.Offset, r.Kind)
	}
	for _, w := range trace.Warnings {
		fmt.Printf("warning [%s]: %s\n", w.Kind, w.Message)
	}
	return nil
}
