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
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ccn/pkg/analyzer"
	"github.com/kraklabs/ccn/pkg/crosscheck"
)

func writeSource(t *testing.T, p, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(p, []byte(src), 0600))
}

func TestWatchSession_Update(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	writeSource(t, a, "package p\n\nfunc A() {}\n")
	writeSource(t, b, "package p\n\nfunc B() {}\n")

	an := analyzer.New(analyzer.DefaultConfig(), slog.Default(), nil)
	initial, failed := an.AnalyzeFiles(context.Background(), []string{a, b})
	require.Zero(t, failed)
	s := newWatchSession(an, slog.Default(), initial)

	writeSource(t, a, "package p\n\nfunc A(x int) {\n\tif x > 0 {\n\t}\n}\n\nfunc C() {}\n")
	require.NoError(t, os.Remove(b))

	updated, removed := s.update([]string{a, b})

	require.Len(t, updated, 1)
	assert.Equal(t, 1, removed)
	snap := s.snapshot()
	require.Len(t, snap, 1)
	require.Len(t, snap[0].Functions, 2)
	assert.Equal(t, "A", snap[0].Functions[0].Name)
	assert.Equal(t, 2, snap[0].Functions[0].CCN)
}

func TestWatchSession_NewFile(t *testing.T) {
	dir := t.TempDir()
	an := analyzer.New(analyzer.DefaultConfig(), slog.Default(), nil)
	s := newWatchSession(an, slog.Default(), nil)

	p := filepath.Join(dir, "new.go")
	writeSource(t, p, "package p\n\nfunc N() {}\n")

	updated, removed := s.update([]string{p, filepath.Join(dir, "gone.go")})

	assert.Len(t, updated, 1)
	assert.Zero(t, removed)
	assert.Len(t, s.snapshot(), 1)
}

func TestRootOf(t *testing.T) {
	roots := []string{"pkg", "cmd"}

	assert.Equal(t, "cmd", rootOf(roots, "cmd/ccn/new"))
	assert.Equal(t, "pkg", rootOf(roots, "pkg"))
	assert.Equal(t, "other", rootOf(roots, "other/dir"))
}

func TestCrossCheck(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.go")
	writeSource(t, p, "package p\n\nfunc A() {}\n\nfunc B() {\n\tf := func() {}\n\tf()\n}\n")

	an := analyzer.New(analyzer.DefaultConfig(), slog.Default(), nil)
	results, failed := an.AnalyzeFiles(context.Background(), []string{p})
	require.Zero(t, failed)
	results = append(results, &analyzer.FileResult{Path: filepath.Join(dir, "x.kt"), Language: "kotlin"})

	report := crossCheck(context.Background(), crosscheck.NewChecker(slog.Default()), results, slog.Default())

	assert.Equal(t, 1, report.Checked)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Mismatches)
}

func TestListLanguages(t *testing.T) {
	infos := listLanguages()

	names := make([]string, len(infos))
	for i, l := range infos {
		names[i] = l.Name
		assert.True(t, l.CrossCheck, l.Name)
	}
	assert.Equal(t, []string{"go", "java", "rust", "c"}, names)
}
