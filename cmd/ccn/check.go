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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ccn/internal/errors"
	"github.com/kraklabs/ccn/internal/ui"
	"github.com/kraklabs/ccn/pkg/analyzer"
	"github.com/kraklabs/ccn/pkg/crosscheck"
)

// checkReport is the outcome of 'ccn check'.
type checkReport struct {
	Checked    int                   `json:"checked"`
	Skipped    int                   `json:"skipped"`
	Mismatches []crosscheck.Mismatch `json:"mismatches"`
}

// runCheck executes the 'check' CLI command: every scanned file is parsed a
// second time with Tree-sitter and files whose function counts differ are
// listed. Exits with code 1 when any file differs.
func runCheck(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	flags := addScanFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ccn check [options] [paths...]

Description:
  Count the functions of every file twice, once with the token grammars
  used by 'ccn scan' and once with a Tree-sitter parser, and list the
  files where the counts differ. Use it to find code the scanner does
  not structure correctly.

Options:
`)
		fs.PrintDefaults()
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

	results, _ := scanPaths(ctx, a, pathsOrCwd(fs.Args()), globals)
	report := crossCheck(ctx, crosscheck.NewChecker(logger), results, logger)

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printCheckReport(os.Stdout, report)
		if !globals.Quiet {
			fmt.Println()
			if len(report.Mismatches) == 0 {
				ui.Successf("%d files agree with Tree-sitter", report.Checked)
			} else {
				ui.Warningf("%d of %d files differ from Tree-sitter", len(report.Mismatches), report.Checked)
			}
		}
	}

	if len(report.Mismatches) > 0 {
		os.Exit(errors.ExitWarnings)
	}
}

// crossCheck compares every result with Tree-sitter. Files of languages
// without a Tree-sitter grammar, or that cannot be read again, are skipped.
func crossCheck(ctx context.Context, checker *crosscheck.Checker, results []*analyzer.FileResult, logger *slog.Logger) checkReport {
	report := checkReport{Mismatches: []crosscheck.Mismatch{}}
	for _, r := range results {
		if ctx.Err() != nil {
			break
		}
		if !crosscheck.Supports(r.Language) {
			report.Skipped++
			continue
		}
		src, err := os.ReadFile(r.Path) //nolint:gosec // G304: path comes from discovery
		if err != nil {
			logger.Warn("check.read.error", "path", r.Path, "err", err)
			report.Skipped++
			continue
		}
		m, differ, err := checker.CheckFile(ctx, r, src)
		if err != nil {
			logger.Warn("check.parse.error", "path", r.Path, "err", err)
			report.Skipped++
			continue
		}
		report.Checked++
		if differ {
			report.Mismatches = append(report.Mismatches, m)
		}
	}
	return report
}

func printCheckReport(w io.Writer, r checkReport) {
	if len(r.Mismatches) == 0 {
		return
	}
	_, _ = ui.Bold.Fprintln(w, "grammar  tree-sitter  syntax_errors  file")
	_, _ = ui.Dim.Fprintln(w, "------------------------------------------")
	for _, m := range r.Mismatches {
		line := fmt.Sprintf("%7d  %11d  %13d  %s", m.Grammar, m.TreeSitter, m.SyntaxErrors, m.Path)
		if m.SyntaxErrors > 0 {
			_, _ = ui.Dim.Fprintln(w, line)
		} else {
			_, _ = ui.Yellow.Fprintln(w, line)
		}
	}
}
