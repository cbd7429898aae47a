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

// Package analyzer drives the grammars over source files: it tokenizes each
// file, feeds every token to the language's grammars and to the file's
// scope, and collects per-function complexity results.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kraklabs/ccn/pkg/fsm"
	"github.com/kraklabs/ccn/pkg/lang"
	"github.com/kraklabs/ccn/pkg/lexer"
	"github.com/kraklabs/ccn/pkg/scope"
	"github.com/kraklabs/ccn/pkg/sigparse"
)

// ErrUnsupportedLanguage is returned for files no grammar is registered for.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrFileTooLarge is returned for files above Config.MaxFileSizeBytes.
var ErrFileTooLarge = errors.New("file too large")

// ProgressCallback is called to report progress while analyzing files.
// Parameters:
//   - current: number of files done (1-based)
//   - total: total number of files
//   - phase: current phase name ("analyzing")
type ProgressCallback func(current, total int64, phase string)

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	Path       string               `json:"path"`
	Language   string               `json:"language"`
	Functions  []scope.FunctionInfo `json:"functions"`
	Unclosed   int                  `json:"unclosed"`
	NLOC       int                  `json:"nloc"`
	TokenCount int                  `json:"token_count"`
}

// Warnings returns the functions whose CCN exceeds threshold.
func (r *FileResult) Warnings(threshold int) []scope.FunctionInfo {
	var out []scope.FunctionInfo
	for _, fn := range r.Functions {
		if fn.CCN > threshold {
			out = append(out, fn)
		}
	}
	return out
}

// Analyzer analyzes source files. It is safe for concurrent use; each file
// gets its own grammars and scope.
type Analyzer struct {
	config     Config
	logger     *slog.Logger
	metrics    *Metrics
	onProgress ProgressCallback
}

// New creates an analyzer. A nil logger uses slog.Default and nil metrics
// disables instrumentation.
func New(config Config, logger *slog.Logger, metrics *Metrics) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// SetProgressCallback sets the callback for progress reporting.
// Must be called before AnalyzeFiles.
func (a *Analyzer) SetProgressCallback(cb ProgressCallback) {
	a.onProgress = cb
}

func (a *Analyzer) reportProgress(current, total int64, phase string) {
	if a.onProgress != nil {
		a.onProgress(current, total, phase)
	}
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.config
}

// AnalyzeSource analyzes src as a file of the given language. It never
// fails: input the grammars cannot follow only lowers the accuracy of the
// result, and functions left open at the end are counted in Unclosed.
func (a *Analyzer) AnalyzeSource(path string, language lang.Language, src []byte) *FileResult {
	start := time.Now()

	fc := scope.NewFileContext(path, scope.WithConditions(language.Conditions))
	grammars := language.New(fc)
	if a.config.Trace {
		for _, g := range grammars {
			g.SetTrace(a.traceFunc(path))
		}
	}

	sc := lexer.NewScanner(src, language.Lex)
	for sc.Scan() {
		tok := sc.Token()
		fc.SetLine(tok.Line)
		// observed first so a closing brace still counts for its function
		if !tok.Implicit {
			fc.ObserveToken(tok.Value)
		}
		for _, g := range grammars {
			g.Advance(tok.Value)
		}
	}

	result := &FileResult{
		Path:       path,
		Language:   language.Name,
		Functions:  fc.Functions(),
		Unclosed:   len(fc.Unclosed()),
		NLOC:       fc.NLOC(),
		TokenCount: fc.TokenCount(),
	}
	sort.SliceStable(result.Functions, func(i, j int) bool {
		return result.Functions[i].StartLine < result.Functions[j].StartLine
	})
	for i := range result.Functions {
		fn := &result.Functions[i]
		fn.Signature = sigparse.Parse(language.Name, fn.Parameters)
	}

	if result.Unclosed > 0 {
		a.logger.Debug("analyzer.file.unclosed_functions", "path", path, "count", result.Unclosed)
	}
	a.metrics.observe(result, a.config.CCNThreshold, time.Since(start).Seconds())
	return result
}

func (a *Analyzer) traceFunc(path string) fsm.TraceFunc {
	return func(depth int, state fsm.State, token string) {
		a.logger.Debug("analyzer.token", "path", path, "depth", depth, "state", int(state), "token", token)
	}
}

// AnalyzeFile reads and analyzes the file at path.
func (a *Analyzer) AnalyzeFile(path string) (*FileResult, error) {
	language, ok := a.config.LanguageFor(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedLanguage)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if a.config.MaxFileSizeBytes > 0 && info.Size() > a.config.MaxFileSizeBytes {
		return nil, fmt.Errorf("%s (%d bytes): %w", path, info.Size(), ErrFileTooLarge)
	}

	src, err := os.ReadFile(path) //nolint:gosec // G304: path comes from discovery or the command line
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a.AnalyzeSource(path, language, src), nil
}

// AnalyzeFiles analyzes paths using a worker pool. Results keep the order of
// paths; files that failed are left out and counted in the returned error
// count. Cancelling ctx stops workers between files.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]*FileResult, int) {
	if len(paths) == 0 {
		return nil, 0
	}

	// For small file sets, analyze sequentially
	if len(paths) < 10 || a.config.Workers <= 1 {
		return a.analyzeSequential(ctx, paths)
	}

	jobs := make(chan int, len(paths))
	results := make([]*FileResult, len(paths))

	var errorCount int32
	var progressCount int64
	total := int64(len(paths))

	var wg sync.WaitGroup
	for w := 0; w < a.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				r, err := a.AnalyzeFile(paths[i])
				if err != nil {
					atomic.AddInt32(&errorCount, 1)
					a.metrics.fileError()
					a.logger.Warn("analyzer.file.error", "path", paths[i], "err", err)
				} else {
					results[i] = r
				}
				current := atomic.AddInt64(&progressCount, 1)
				a.reportProgress(current, total, "analyzing")
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return compact(results), int(errorCount)
}

func (a *Analyzer) analyzeSequential(ctx context.Context, paths []string) ([]*FileResult, int) {
	var results []*FileResult
	errorCount := 0
	total := int64(len(paths))

	for i, p := range paths {
		select {
		case <-ctx.Done():
			return results, errorCount
		default:
		}

		r, err := a.AnalyzeFile(p)
		if err != nil {
			errorCount++
			a.metrics.fileError()
			a.logger.Warn("analyzer.file.error", "path", p, "err", err)
		} else {
			results = append(results, r)
		}
		a.reportProgress(int64(i+1), total, "analyzing")
	}
	return results, errorCount
}

func compact(results []*FileResult) []*FileResult {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
