// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ccn/internal/errors"
	"github.com/kraklabs/ccn/internal/ui"
	"github.com/kraklabs/ccn/pkg/analyzer"
)

// runInit executes the 'init' CLI command, writing .ccn.yaml to the current
// directory.
//
// Flags:
//   - --force: Overwrite an existing configuration
//   - -C, --ccn-threshold: CCN threshold (default: 15)
//   - -w, --workers: Number of parallel workers (default: 4)
//   - -l, --languages: Languages to scan (default: all)
//   - -x, --exclude: Exclude globs added to the defaults
func runInit(args []string, globals GlobalFlags) {
	defaults := analyzer.DefaultConfig()

	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite existing configuration")
	threshold := fs.IntP("ccn-threshold", "C", defaults.CCNThreshold, "CCN threshold")
	workers := fs.IntP("workers", "w", defaults.Workers, "Number of files analyzed in parallel")
	languages := fs.StringSliceP("languages", "l", nil, "Languages to scan (default: all)")
	exclude := fs.StringSliceP("exclude", "x", nil, "Glob patterns to exclude, added to the defaults")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ccn init [options]

Description:
  Create .ccn.yaml in the current directory. ccn looks for this file in
  the current directory and its parents.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitInput)
	}

	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"This is unexpected. Please report this issue if it persists",
			err,
		), globals.JSON)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		errors.FatalError(errors.NewInputError(
			"Configuration already exists",
			fmt.Sprintf("%s already exists in this directory", configPath),
			"Use 'ccn init --force' to overwrite the existing configuration",
			nil,
		), globals.JSON)
	}

	cfg := DefaultConfig()
	cfg.Scan.CCNThreshold = *threshold
	cfg.Scan.Workers = *workers
	cfg.Scan.Languages = *languages
	if len(*exclude) > 0 {
		cfg.Scan.Exclude = *exclude
	}
	if err := cfg.validate(); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		errors.FatalError(err, globals.JSON)
	}

	if globals.JSON {
		_ = json.NewEncoder(os.Stdout).Encode(map[string]string{"config_path": configPath})
		return
	}
	ui.Successf("Created %s", configPath)
	if !globals.Quiet {
		ui.Info(ui.DimText("Run 'ccn' to scan this directory."))
	}
}
