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

package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ccn/pkg/lang"
	"github.com/kraklabs/ccn/pkg/lexer"
	"github.com/kraklabs/ccn/pkg/sigparse"
)

const goSource = `package main

func simple() {
	return
}

func branchy(a, b int) int {
	if a > 0 && b > 0 {
		return 1
	}
	for i := 0; i < b; i++ {
		switch i {
		case 1:
		case 2:
		}
	}
	return 0
}
`

func goLanguage(t *testing.T) lang.Language {
	t.Helper()
	l, ok := lang.ForName("go")
	require.True(t, ok)
	return l
}

func TestAnalyzeSource_Go(t *testing.T) {
	a := New(DefaultConfig(), nil, nil)

	r := a.AnalyzeSource("main.go", goLanguage(t), []byte(goSource))

	assert.Equal(t, "go", r.Language)
	assert.Zero(t, r.Unclosed)
	require.Len(t, r.Functions, 2)

	simple := r.Functions[0]
	assert.Equal(t, "simple", simple.Name)
	assert.Equal(t, 1, simple.CCN)
	assert.Equal(t, 3, simple.StartLine)
	assert.Equal(t, 5, simple.EndLine)
	assert.Equal(t, 3, simple.NLOC)

	branchy := r.Functions[1]
	assert.Equal(t, "branchy", branchy.Name)
	assert.Equal(t, 6, branchy.CCN)
	assert.Equal(t, 7, branchy.StartLine)
	assert.Equal(t, 18, branchy.EndLine)
	assert.Equal(t, []string{"a", "b int"}, branchy.Parameters)
	assert.Equal(t, []sigparse.Param{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}}, branchy.Signature)
	assert.Empty(t, simple.Signature)

	assert.Equal(t, 16, r.NLOC)
	assert.Len(t, r.Warnings(5), 1)
	assert.Empty(t, r.Warnings(15))
}

func TestAnalyzeSource_NestedLiteral(t *testing.T) {
	src := `package main

func (s *Server) Serve() error {
	go func() {
		if s.ok {
		}
	}()
	return nil
}
`
	a := New(DefaultConfig(), nil, nil)

	r := a.AnalyzeSource("server.go", goLanguage(t), []byte(src))

	require.Len(t, r.Functions, 2)
	assert.Equal(t, "(s *Server)Serve", r.Functions[0].LongName)
	assert.Equal(t, 1, r.Functions[0].CCN)
	assert.Equal(t, "(anonymous)", r.Functions[1].Name)
	assert.Equal(t, 2, r.Functions[1].CCN)
}

func TestAnalyzeSource_GoStatementBoundaries(t *testing.T) {
	src := `package main

type Handlers map[string]func()

var hook func(int)

type (
	prefixFn func() Expr
	infixFn  func(Expr) Expr
)

func InitLexer(io.Reader) *LexerState

type Position struct {
	Line int
}

func run() {
	var res Value
	func() {
		if res.ok {
		}
	}()
}
`
	a := New(DefaultConfig(), nil, nil)

	r := a.AnalyzeSource("lexer.go", goLanguage(t), []byte(src))

	assert.Zero(t, r.Unclosed)
	require.Len(t, r.Functions, 3)

	decl := r.Functions[0]
	assert.Equal(t, "InitLexer", decl.Name)
	assert.Equal(t, 12, decl.StartLine)
	assert.Equal(t, 12, decl.EndLine)

	assert.Equal(t, "run", r.Functions[1].Name)
	assert.Equal(t, 1, r.Functions[1].CCN)

	literal := r.Functions[2]
	assert.Equal(t, "(anonymous)", literal.Name)
	assert.Equal(t, 20, literal.StartLine)
	assert.Equal(t, 2, literal.CCN)

	// inserted statement terminators are not source tokens
	assert.Equal(t, len(lexer.Tokenize([]byte(src), lexer.Options{})), r.TokenCount)
}

func TestAnalyzeSource_Truncated(t *testing.T) {
	a := New(DefaultConfig(), nil, nil)

	r := a.AnalyzeSource("broken.go", goLanguage(t), []byte("func f() {\n\tif x {\n"))

	assert.Empty(t, r.Functions)
	assert.Equal(t, 1, r.Unclosed)
}

func TestAnalyzeSource_Java(t *testing.T) {
	src := `public class Greeter {
    @Override
    public String toString() {
        return name == null ? "anon" : name;
    }
}
`
	l, ok := lang.ForName("java")
	require.True(t, ok)

	r := New(DefaultConfig(), nil, nil).AnalyzeSource("Greeter.java", l, []byte(src))

	require.Len(t, r.Functions, 1)
	assert.Equal(t, "Greeter::toString", r.Functions[0].LongName)
	assert.Equal(t, 2, r.Functions[0].CCN)
}

func TestAnalyzeSource_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	cfg := DefaultConfig()
	cfg.CCNThreshold = 5

	New(cfg, nil, m).AnalyzeSource("main.go", goLanguage(t), []byte(goSource))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesAnalyzed.WithLabelValues("go")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FunctionsFound.WithLabelValues("go")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ThresholdExceeded.WithLabelValues("go")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.UnclosedFunctions.WithLabelValues("go")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FileDuration))
}

func TestAnalyzeFile_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	big := filepath.Join(dir, "big.go")
	require.NoError(t, os.WriteFile(big, make([]byte, 64), 0o600))

	cfg := DefaultConfig()
	cfg.MaxFileSizeBytes = 32
	a := New(cfg, nil, nil)

	_, err := a.AnalyzeFile(txt)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	_, err = a.AnalyzeFile(big)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = a.AnalyzeFile(filepath.Join(dir, "missing.go"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAnalyzeFiles_Parallel(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 12; i++ {
		p := filepath.Join(dir, fmt.Sprintf("f%02d.go", i))
		src := fmt.Sprintf("package p\n\nfunc F%d() {\n}\n", i)
		require.NoError(t, os.WriteFile(p, []byte(src), 0o600))
		paths = append(paths, p)
	}
	paths = append(paths, filepath.Join(dir, "notes.txt"))

	cfg := DefaultConfig()
	cfg.Workers = 4
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	a := New(cfg, nil, m)

	var calls int64
	var last int64
	a.SetProgressCallback(func(current, total int64, phase string) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, int64(13), total)
		assert.Equal(t, "analyzing", phase)
		for {
			prev := atomic.LoadInt64(&last)
			if current <= prev || atomic.CompareAndSwapInt64(&last, prev, current) {
				break
			}
		}
	})

	results, errs := a.AnalyzeFiles(context.Background(), paths)

	assert.Equal(t, 1, errs)
	require.Len(t, results, 12)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		require.Len(t, r.Functions, 1)
		assert.Equal(t, fmt.Sprintf("F%d", i), r.Functions[0].Name)
	}
	assert.Equal(t, int64(13), atomic.LoadInt64(&calls))
	assert.Equal(t, int64(13), atomic.LoadInt64(&last))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FileErrors))
}

func TestAnalyzeFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(p, []byte("package a\nfunc A() {}\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, errs := New(DefaultConfig(), nil, nil).AnalyzeFiles(ctx, []string{p})

	assert.Empty(t, results)
	assert.Zero(t, errs)
}

func TestAnalyzeFiles_Empty(t *testing.T) {
	results, errs := New(DefaultConfig(), nil, nil).AnalyzeFiles(context.Background(), nil)

	assert.Nil(t, results)
	assert.Zero(t, errs)
}
