// Package main implements the bundlescope CLI: a single executable exposing
// one subcommand per analysis in this module (beautify, slice, find, match,
// patch-check, extract-fn, context, strings, scope, refs, calls, map,
// diff-fns, trace-io, decompile).
//
// Command implementations are split across cmd_*.go files, one per analysis
// family, mirroring how this repo's source packages are split one-per-component.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/internal/config"
)

var (
	verbose    bool
	configPath string

	cfg    config.Config
	logger *zap.Logger

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "bundlescope",
	Short:   "Inspect and patch minified JavaScript bundles",
	Version: version,
	Long: `bundlescope analyzes a single-line minified JavaScript bundle without a
build step: it locates functions and string landmarks by fast byte-level
scanning, falls back to a full syntax tree for scope/reference/diff analysis,
and validates textual patches before they are applied.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose {
			cfg.Logging.Level = "debug"
		}

		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
		if cfg.Logging.Level == "debug" {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to an optional bundlescope.toml config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging to stderr")

	rootCmd.AddCommand(
		beautifyCmd,
		sliceCmd,
		findCmd,
		matchCmd,
		patchCheckCmd,
		extractFnCmd,
		contextCmd,
		stringsCmd,
		scopeCmd,
		refsCmd,
		callsCmd,
		mapCmd,
		diffFnsCmd,
		traceIOCmd,
		decompileCmd,
	)
}

func main() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	ran, err := rootCmd.ExecuteC()
	if err != nil {
		os.Exit(fail(err, ran == matchCmd))
	}
}

// parseOffset parses a required byte-offset positional argument.
func parseOffset(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Wrap(errs.InvalidInput, "offset must be an integer", err)
	}
	if n < 0 {
		return 0, errs.New(errs.InvalidInput, "offset must not be negative")
	}
	return n, nil
}
