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
	"io"
	"path/filepath"

	"github.com/kraklabs/ccn/internal/ui"
	"github.com/kraklabs/ccn/pkg/analyzer"
)

// scanReport is everything a scan prints, in text or JSON.
type scanReport struct {
	Summary   analyzer.Summary       `json:"summary"`
	Failed    int                    `json:"failed_files"`
	Files     []*analyzer.FileResult `json:"files,omitempty"`
	Functions []analyzer.FunctionRef `json:"-"`
	Warnings  []analyzer.FunctionRef `json:"warnings"`
}

func buildReport(results []*analyzer.FileResult, failed, threshold int, key analyzer.SortKey) scanReport {
	functions := analyzer.Flatten(results, key)
	warnings := []analyzer.FunctionRef{}
	for _, fn := range functions {
		if fn.CCN > threshold {
			warnings = append(warnings, fn)
		}
	}
	return scanReport{
		Summary:   analyzer.Summarize(results, threshold),
		Failed:    failed,
		Files:     results,
		Functions: functions,
		Warnings:  warnings,
	}
}

func writeJSONReport(w io.Writer, r scanReport, warningsOnly bool) error {
	if warningsOnly {
		r.Files = nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// printFunctionTable lists functions one per line. Functions above threshold
// are highlighted.
func printFunctionTable(w io.Writer, functions []analyzer.FunctionRef, threshold int) {
	_, _ = ui.Bold.Fprintln(w, "  NLOC    CCN  token  PARAM  length  location")
	_, _ = ui.Dim.Fprintln(w, "------------------------------------------------")
	for _, fn := range functions {
		line := fmt.Sprintf("%6d %6d %6d %6d %7d  %s@%d-%d@%s",
			fn.NLOC, fn.CCN, fn.TokenCount, fn.ParameterCount(),
			fn.EndLine-fn.StartLine+1, fn.LongName, fn.StartLine, fn.EndLine, fn.Path)
		if fn.CCN > threshold {
			_, _ = ui.Yellow.Fprintln(w, line)
		} else {
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

// printFileTable prints per-file averages.
func printFileTable(w io.Writer, files []*analyzer.FileResult) {
	_, _ = ui.Bold.Fprintln(w, "  NLOC  Avg.NLOC  AvgCCN  Avg.token  function_cnt  file")
	_, _ = ui.Dim.Fprintln(w, "---------------------------------------------------------")
	for _, f := range files {
		var nloc, ccn, tokens float64
		for _, fn := range f.Functions {
			nloc += float64(fn.NLOC)
			ccn += float64(fn.CCN)
			tokens += float64(fn.TokenCount)
		}
		if n := float64(len(f.Functions)); n > 0 {
			nloc, ccn, tokens = nloc/n, ccn/n, tokens/n
		}
		_, _ = fmt.Fprintf(w, "%6d %9.1f %7.1f %10.1f %13d  %s\n",
			f.NLOC, nloc, ccn, tokens, len(f.Functions), filepath.ToSlash(f.Path))
	}
}

func printSummary(w io.Writer, r scanReport) {
	s := r.Summary
	_, _ = fmt.Fprintf(w, "%s %s\n", ui.Label("Files:"), ui.CountText(s.Files))
	_, _ = fmt.Fprintf(w, "%s %s\n", ui.Label("Functions:"), ui.CountText(s.Functions))
	_, _ = fmt.Fprintf(w, "%s %s\n", ui.Label("NLOC:"), ui.CountText(s.NLOC))
	_, _ = fmt.Fprintf(w, "%s %.1f\n", ui.Label("Average CCN:"), s.AverageCCN)
	_, _ = fmt.Fprintf(w, "%s %s\n", ui.Label("Max CCN:"), ui.CountText(s.MaxCCN))
	if s.Unclosed > 0 {
		_, _ = ui.Yellow.Fprintf(w, "Unclosed functions: %d (truncated or unrecognized input)\n", s.Unclosed)
	}
	if r.Failed > 0 {
		_, _ = ui.Yellow.Fprintf(w, "Unreadable files: %d\n", r.Failed)
	}
	if s.Warnings > 0 {
		_, _ = ui.Yellow.Fprintf(w, "%d functions above CCN %d\n", s.Warnings, s.CCNThreshold)
		return
	}
	_, _ = ui.Green.Fprintf(w, "✓ No functions above CCN %d\n", s.CCNThreshold)
}
