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
// Package main implements the ccn CLI, which reports the functions of a
// source tree with their cyclomatic complexity.
//
// Usage:
//
//	ccn [paths...]                Scan paths (default: current directory)
//	ccn scan [options] [paths...] Scan with options
//	ccn check [paths...]          Cross-check function counts with Tree-sitter
//	ccn watch [paths...]          Re-scan on file changes
//	ccn languages                 List supported languages
//	ccn init                      Create .ccn.yaml
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ccn/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the global CLI flags that apply to all commands.
type GlobalFlags struct {
	JSON    bool // Output in JSON format (for applicable commands)
	NoColor bool // Disable color output
	Verbose int  // Verbosity level: 0=normal, 1=-v (info), 2=-vv (debug)
	Quiet   bool // Suppress non-essential output (progress, info messages)
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .ccn.yaml (default: searched upward from the current directory)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop at the command name so "scan -C 10" reaches the scan flag set.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `ccn - cyclomatic complexity scanner

ccn finds every function in Go, Java, Rust and C/C++ sources and reports
its cyclomatic complexity (CCN), size and parameters. Functions above the
CCN threshold are reported as warnings and make the scan exit with code 1.

Usage:
  ccn [global options] <command> [options]
  ccn [global options] [paths...]

Commands:
  scan        Scan source files (default command)
  check       Cross-check function counts against Tree-sitter
  watch       Re-scan when files change
  languages   List supported languages
  init        Create .ccn.yaml configuration

Global Options:
  --json            Output in JSON format
  --no-color        Disable color output (respects NO_COLOR env var)
  -v, --verbose     Increase verbosity (-v for info, -vv for debug)
  -q, --quiet       Suppress non-essential output (progress, info messages)
  -c, --config      Path to .ccn.yaml
  -V, --version     Show version and exit

Examples:
  ccn                                Scan the current directory
  ccn scan -C 10 --sort ccn ./pkg    Warn above CCN 10, most complex first
  ccn scan --warnings-only           Only list functions above the threshold
  ccn --json scan ./cmd              Report as JSON
  ccn check ./pkg                    Compare with Tree-sitter

Environment Variables:
  CCN_CONFIG_PATH    Path to the configuration file
  CCN_THRESHOLD      Override the CCN threshold
  CCN_WORKERS        Override the number of workers
  CCN_LANGUAGES      Comma-separated languages to scan
  CCN_METRICS_ADDR   Serve Prometheus metrics on this address

For detailed command help: ccn <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("ccn version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	if *quiet && *verbose > 0 {
		fmt.Fprintf(os.Stderr, "Error: cannot use --quiet and --verbose together\n")
		os.Exit(2)
	}

	// JSON mode auto-enables quiet so progress bars cannot corrupt the output
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}

	ui.InitColors(globals.NoColor)

	args := flag.Args()
	command := "scan"
	if len(args) > 0 && isCommand(args[0]) {
		command, args = args[0], args[1:]
	}

	switch command {
	case "scan":
		runScan(args, *configPath, globals)
	case "check":
		runCheck(args, *configPath, globals)
	case "watch":
		runWatch(args, *configPath, globals)
	case "languages":
		runLanguages(args, globals)
	case "init":
		runInit(args, globals)
	case "help":
		flag.Usage()
	}
}

// isCommand reports whether arg names a command rather than a path to scan.
// A directory called "check" can still be scanned as "./check".
func isCommand(arg string) bool {
	switch arg {
	case "scan", "check", "watch", "languages", "init", "help":
		return true
	}
	return false
}
