package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/scanner/beautify"
)

var beautifyOutput string

var beautifyCmd = &cobra.Command{
	Use:   "beautify FILE [--output PATH]",
	Short: "Reformat a minified bundle and write a line offset map",
	Args:  cobra.ExactArgs(1),
	RunE:  runBeautify,
}

func init() {
	beautifyCmd.Flags().StringVar(&beautifyOutput, "output", "", "base path for the beautified output (default: FILE)")
}

func runBeautify(cmd *cobra.Command, args []string) error {
	file := args[0]
	buf, err := readSource(file)
	if err != nil {
		return err
	}

	base := file
	if beautifyOutput != "" {
		base = beautifyOutput
	}

	result := beautify.Beautify(buf)

	offsetJSON, err := json.Marshal(result.OffsetMap)
	if err != nil {
		return errs.Wrap(errs.FileIO, "failed to encode offset map", err)
	}

	beautifiedPath := base + ".beautified.js"
	offsetMapPath := base + ".offsetmap.json"

	if err := atomicWriteFile(beautifiedPath, []byte(result.Text)); err != nil {
		return err
	}
	if err := atomicWriteFile(offsetMapPath, offsetJSON); err != nil {
		return err
	}

	fmt.Printf("wrote %s (%d lines) and %s\n", beautifiedPath, len(result.OffsetMap), offsetMapPath)
	return nil
}
