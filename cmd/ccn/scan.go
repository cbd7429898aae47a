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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ccn/internal/errors"
	"github.com/kraklabs/ccn/internal/ui"
	"github.com/kraklabs/ccn/pkg/analyzer"
)

// scanFlags holds the flags shared by scan, check and watch.
type scanFlags struct {
	threshold    *int
	workers      *int
	sort         *string
	warningsOnly *bool
	languages    *[]string
	exclude      *[]string
	metricsAddr  *string
	debug        *bool
	trace        *bool
}

func addScanFlags(fs *flag.FlagSet) scanFlags {
	return scanFlags{
		threshold:    fs.IntP("ccn-threshold", "C", 0, "Warn about functions with a CCN above this value (default 15)"),
		workers:      fs.IntP("workers", "w", 0, "Number of files analyzed in parallel (default 4)"),
		sort:         fs.StringP("sort", "s", "", "Sort functions by ccn, nloc, params, name or location"),
		warningsOnly: fs.Bool("warnings-only", false, "Only list functions above the CCN threshold"),
		languages:    fs.StringSliceP("languages", "l", nil, "Only scan these languages (see 'ccn languages')"),
		exclude:      fs.StringSliceP("exclude", "x", nil, "Additional glob patterns to exclude"),
		metricsAddr:  fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)"),
		debug:        fs.Bool("debug", false, "Enable debug logging"),
		trace:        fs.Bool("trace", false, "Log every token with its grammar state (implies --debug)"),
	}
}

// apply overrides cfg with the flags given on the command line.
func (f scanFlags) apply(fs *flag.FlagSet, cfg *Config) {
	if fs.Changed("ccn-threshold") {
		cfg.Scan.CCNThreshold = *f.threshold
	}
	if fs.Changed("workers") {
		cfg.Scan.Workers = *f.workers
	}
	if fs.Changed("sort") {
		cfg.Scan.Sort = *f.sort
	}
	if fs.Changed("languages") {
		cfg.Scan.Languages = *f.languages
	}
	cfg.Scan.Exclude = append(cfg.Scan.Exclude, *f.exclude...)
	if fs.Changed("metrics-addr") {
		cfg.Metrics.Addr = *f.metricsAddr
	}
}

// runScan executes the 'scan' CLI command.
//
// Flags:
//   - -C, --ccn-threshold: CCN above which a function is a warning (default: 15)
//   - -w, --workers: Number of parallel workers (default: 4)
//   - -s, --sort: Sort key for the function list
//   - --warnings-only: Only list functions above the threshold
//   - -l, --languages: Restrict the scan to some languages
//   - -x, --exclude: Additional exclude globs
//   - --metrics-addr: HTTP address for Prometheus metrics (default: disabled)
//   - --debug, --trace: Debug logging, optionally of every token
//
// The process exits with code 1 when any function exceeds the threshold.
func runScan(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	flags := addScanFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ccn scan [options] [paths...]

Description:
  Scan source files and report every function with its cyclomatic
  complexity (CCN), lines of code, token count and parameter count.
  Paths default to the current directory. Directories are walked
  recursively, skipping excluded and unsupported files.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  ccn scan                          Scan the current directory
  ccn scan -C 10 ./pkg ./cmd        Warn above CCN 10
  ccn scan --sort ccn               Most complex functions first
  ccn scan -l go --warnings-only    Only Go, only warnings
  ccn scan --metrics-addr :9090     Expose Prometheus metrics while scanning

Exit Codes:
  0  No function above the threshold
  1  At least one function above the threshold

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(errors.ExitInput)
	}

	cfg := loadScanConfig(fs, flags, configPath, globals)
	logger := newLogger(globals, *flags.debug || *flags.trace)
	metrics := startMetrics(cfg.Metrics.Addr, logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	acfg := cfg.analyzerConfig()
	acfg.Trace = *flags.trace
	a := analyzer.New(acfg, logger, metrics)

	results, failed := scanPaths(ctx, a, pathsOrCwd(fs.Args()), globals)
	if ctx.Err() != nil {
		errors.FatalError(errors.NewInputError(
			"Scan interrupted",
			"The scan was cancelled before all files were analyzed",
			"Run the scan again to get a complete report",
			ctx.Err(),
		), globals.JSON)
	}

	sortKey, _ := analyzer.ParseSortKey(cfg.Scan.Sort)
	report := buildReport(results, failed, acfg.CCNThreshold, sortKey)

	if globals.JSON {
		if err := writeJSONReport(os.Stdout, report, *flags.warningsOnly); err != nil {
			errors.FatalError(errors.NewInternalError("Cannot encode report", "JSON encoding failed", "This is a bug. Please report it", err), true)
		}
	} else {
		printReport(report, *flags.warningsOnly, globals)
	}

	if report.Summary.Warnings > 0 {
		os.Exit(errors.ExitWarnings)
	}
}

// loadScanConfig loads the configuration and applies the command line flags.
func loadScanConfig(fs *flag.FlagSet, flags scanFlags, configPath string, globals GlobalFlags) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	flags.apply(fs, cfg)
	if err := cfg.validate(); err != nil {
		errors.FatalError(err, globals.JSON)
	}
	return cfg
}

// scanPaths discovers the files under paths and analyzes them, drawing a
// progress bar unless quiet.
func scanPaths(ctx context.Context, a *analyzer.Analyzer, paths []string, globals GlobalFlags) ([]*analyzer.FileResult, int) {
	files := discoverAll(paths, a.Config(), globals)

	progressCfg := NewProgressConfig(globals)
	var currentBar *progressbar.ProgressBar
	var currentPhase string
	a.SetProgressCallback(func(current, total int64, phase string) {
		if phase != currentPhase {
			if currentBar != nil {
				_ = currentBar.Finish()
			}
			currentPhase = phase
			currentBar = NewProgressBar(progressCfg, total, phaseDescription(phase))
		}
		if currentBar != nil {
			_ = currentBar.Set64(current)
		}
	})

	results, failed := a.AnalyzeFiles(ctx, files)

	if currentBar != nil {
		_ = currentBar.Finish()
	}
	return results, failed
}

// discoverAll expands every path into its source files, dropping duplicates.
func discoverAll(paths []string, cfg analyzer.Config, globals GlobalFlags) []string {
	var files []string
	seen := make(map[string]bool)
	for _, p := range paths {
		found, err := analyzer.Discover(p, cfg)
		if err != nil {
			if os.IsPermission(err) {
				errors.FatalError(errors.NewPermissionError(
					"Cannot read path",
					fmt.Sprintf("Permission denied while reading %s", p),
					"Check directory permissions or exclude the path with --exclude",
					err,
				), globals.JSON)
			}
			errors.FatalError(errors.NewInputError(
				"Cannot read path",
				fmt.Sprintf("%s does not exist or cannot be walked", p),
				"Check the paths given on the command line",
				err,
			), globals.JSON)
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

func pathsOrCwd(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

// newLogger sets up the process logger on stderr. Warnings are always shown,
// -v adds info and -vv or debug adds debug output.
func newLogger(globals GlobalFlags, debug bool) *slog.Logger {
	logLevel := slog.LevelWarn
	switch {
	case debug || globals.Verbose >= 2:
		logLevel = slog.LevelDebug
	case globals.Verbose == 1:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// startMetrics registers the analyzer metrics and, when addr is set, serves
// them on /metrics.
func startMetrics(addr string, logger *slog.Logger) *analyzer.Metrics {
	metrics := analyzer.NewMetrics(prometheus.DefaultRegisterer)
	if addr == "" {
		return metrics
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics.http.error", "err", err)
		}
	}()
	return metrics
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("shutdown.signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

// printReport prints the text report to stdout.
func printReport(r scanReport, warningsOnly bool, globals GlobalFlags) {
	if !warningsOnly {
		printFunctionTable(os.Stdout, r.Functions, r.Summary.CCNThreshold)
		fmt.Println()
		printFileTable(os.Stdout, r.Files)
		fmt.Println()
	}

	if len(r.Warnings) > 0 {
		ui.SubHeader(fmt.Sprintf("Warnings (cyclomatic complexity > %d):", r.Summary.CCNThreshold))
		printFunctionTable(os.Stdout, r.Warnings, r.Summary.CCNThreshold)
		fmt.Println()
	}

	if globals.Quiet {
		return
	}
	ui.Header("Scan Complete")
	printSummary(os.Stdout, r)
}
