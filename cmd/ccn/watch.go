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
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/ccn/internal/errors"
	"github.com/kraklabs/ccn/internal/ui"
	"github.com/kraklabs/ccn/pkg/analyzer"
)

const watchDebounce = 500 * time.Millisecond

// watchSession keeps the latest result of every watched file.
type watchSession struct {
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
	results  map[string]*analyzer.FileResult
}

func newWatchSession(a *analyzer.Analyzer, logger *slog.Logger, initial []*analyzer.FileResult) *watchSession {
	s := &watchSession{
		analyzer: a,
		logger:   logger,
		results:  make(map[string]*analyzer.FileResult, len(initial)),
	}
	for _, r := range initial {
		s.results[r.Path] = r
	}
	return s
}

// update re-analyzes changed paths. Paths that no longer exist or cannot be
// analyzed are dropped from the session.
func (s *watchSession) update(changed []string) (updated []*analyzer.FileResult, removed int) {
	for _, p := range changed {
		if _, err := os.Stat(p); err != nil {
			if _, ok := s.results[p]; ok {
				delete(s.results, p)
				removed++
			}
			continue
		}
		r, err := s.analyzer.AnalyzeFile(p)
		if err != nil {
			s.logger.Warn("watch.analyze.error", "path", p, "err", err)
			if _, ok := s.results[p]; ok {
				delete(s.results, p)
				removed++
			}
			continue
		}
		s.results[p] = r
		updated = append(updated, r)
	}
	return updated, removed
}

// snapshot returns the current results ordered by path.
func (s *watchSession) snapshot() []*analyzer.FileResult {
	out := make([]*analyzer.FileResult, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// runWatch executes the 'watch' CLI command: an initial scan followed by a
// re-scan of every file that changes, debounced.
func runWatch(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	flags := addScanFlags(fs)
	debounce := fs.Duration("debounce", watchDebounce, "Wait this long after the last change before re-scanning")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: ccn watch [options] [paths...]

Description:
  Scan once, then watch the paths and re-analyze files as they change.
  Each re-scan lists the changed functions above the CCN threshold and
  the updated totals. Stop with Ctrl+C.

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
	sortKey, _ := analyzer.ParseSortKey(cfg.Scan.Sort)

	roots := pathsOrCwd(fs.Args())
	results, failed := scanPaths(ctx, a, roots, globals)
	session := newWatchSession(a, logger, results)
	emitWatchReport(buildReport(session.snapshot(), failed, acfg.CCNThreshold, sortKey), globals)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot watch files",
			"Failed to create a file system watcher",
			"Check the limit on inotify watches (fs.inotify.max_user_watches)",
			err,
		), globals.JSON)
	}
	defer func() { _ = watcher.Close() }()

	for _, root := range roots {
		addWatchDirs(watcher, root, root, acfg, logger)
	}

	watchLoop(ctx, watcher, *debounce, roots, acfg, logger, func(changed []string) {
		updated, removed := session.update(changed)
		logger.Info("watch.rescan", "changed", len(changed), "updated", len(updated), "removed", removed)
		report := buildReport(updated, 0, acfg.CCNThreshold, sortKey)
		report.Summary = analyzer.Summarize(session.snapshot(), acfg.CCNThreshold)
		if !globals.JSON && !globals.Quiet {
			ui.Infof("%s %d files updated, %d removed",
				ui.DimText(time.Now().Format("15:04:05")), len(updated), removed)
		}
		emitWatchReport(report, globals)
	})
}

// watchLoop collects change events for supported files and calls rescan with
// them once no event arrived for the debounce interval.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, roots []string, cfg analyzer.Config, logger *slog.Logger, rescan func([]string)) {
	pending := make(map[string]bool)
	var debounceTimer *time.Timer
	var timerCh <-chan time.Time // nil = no re-scan scheduled

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// "./a.go" from a watch on "." must match the discovered "a.go"
			name := filepath.Clean(event.Name)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(name); err == nil && info.IsDir() {
					addWatchDirs(watcher, rootOf(roots, name), name, cfg, logger)
					continue
				}
			}
			if _, ok := cfg.LanguageFor(name); !ok {
				continue
			}
			logger.Debug("watch.event", "path", name, "op", event.Op.String())
			pending[name] = true
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(debounce)
			timerCh = debounceTimer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch.error", "err", err)
		case <-timerCh:
			timerCh = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			rescan(changed)
		}
	}
}

// addWatchDirs watches start and the directories below it that are neither
// hidden nor excluded relative to root.
func addWatchDirs(watcher *fsnotify.Watcher, root, start string, cfg analyzer.Config, logger *slog.Logger) {
	info, err := os.Stat(start)
	if err != nil {
		logger.Warn("watch.add.error", "path", start, "err", err)
		return
	}
	if !info.IsDir() {
		if err := watcher.Add(start); err != nil {
			logger.Warn("watch.add.error", "path", start, "err", err)
		}
		return
	}

	watched := 0
	_ = filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(root, p); err == nil && rel != "." {
			base := filepath.Base(p)
			if strings.HasPrefix(base, ".") || cfg.Excluded(filepath.ToSlash(rel)) {
				return filepath.SkipDir
			}
		}
		if err := watcher.Add(p); err != nil {
			logger.Warn("watch.add.error", "path", p, "err", err)
			return nil
		}
		watched++
		return nil
	})
	logger.Info("watch.dirs", "root", start, "count", watched)
}

// rootOf returns the watched root containing p.
func rootOf(roots []string, p string) string {
	for _, root := range roots {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			return root
		}
	}
	return filepath.Dir(p)
}

func emitWatchReport(r scanReport, globals GlobalFlags) {
	if globals.JSON {
		_ = writeJSONReport(os.Stdout, r, true)
		return
	}
	if len(r.Warnings) > 0 {
		printFunctionTable(os.Stdout, r.Warnings, r.Summary.CCNThreshold)
	}
	if !globals.Quiet {
		printSummary(os.Stdout, r)
		fmt.Println()
	}
}
