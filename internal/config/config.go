// Package config loads the ambient TOML configuration read by every
// cmd/bundlescope subcommand via the global --config flag. Values not
// present in the file keep their built-in defaults; command-line flags, in
// turn, override whatever Load returns.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wellofspirit/bundlescope/errs"
	"github.com/wellofspirit/bundlescope/scanner/funcscan"
	"github.com/wellofspirit/bundlescope/scanner/landmark"
)

// Defaults holds the built-in numeric/behavioral defaults a subcommand falls
// back to when neither a flag nor the config file sets one explicitly.
type Defaults struct {
	SliceLength      int `toml:"slice_length"`
	NearRadius       int `toml:"near_radius"`
	FuncscanHorizon  int `toml:"funcscan_horizon"`
	StringsMinLength int `toml:"strings_min_length"`
}

// Logging holds the zap logging configuration.
type Logging struct {
	Level string `toml:"level"`
}

// Config is the full ambient configuration document.
type Config struct {
	Defaults Defaults `toml:"defaults"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the built-in configuration, used when no --config flag is
// given and as the base that Load overlays a file onto.
func Default() Config {
	return Config{
		Defaults: Defaults{
			SliceLength:      500,
			NearRadius:       landmark.DefaultRadius,
			FuncscanHorizon:  funcscan.DefaultHorizon,
			StringsMinLength: 20,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads path as TOML over the built-in defaults. An empty path returns
// the defaults unchanged; a missing file is not an error (§6: --config is
// optional ambient configuration, not a required input).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, errs.Wrap(errs.FileIO, "failed to decode config file "+path, err)
	}
	return cfg, nil
}
