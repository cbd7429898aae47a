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

package crosscheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ccn/pkg/analyzer"
	"github.com/kraklabs/ccn/pkg/lang"
)

const goSource = `package main

type Server struct{ handlers map[string]func() }

func (s *Server) Serve() error {
	go func() {}()
	return nil
}

func Map[K comparable, V any](m map[K]V, f func(V) V) map[K]V {
	return m
}

func main() {
	defer func() { recover() }()
}
`

func TestCountGoFunctions(t *testing.T) {
	counts, err := CountGoFunctions(context.Background(), []byte(goSource))
	require.NoError(t, err)

	assert.Equal(t, 5, counts.Total)
	assert.Equal(t, 2, counts.ByKind["function_declaration"])
	assert.Equal(t, 1, counts.ByKind["method_declaration"])
	assert.Equal(t, 2, counts.ByKind["func_literal"])
	assert.Zero(t, counts.SyntaxErrors)
}

func TestChecker_AgreesWithGrammar(t *testing.T) {
	l, ok := lang.ForName("go")
	require.True(t, ok)
	r := analyzer.New(analyzer.DefaultConfig(), nil, nil).AnalyzeSource("main.go", l, []byte(goSource))

	m, differ, err := NewChecker(nil).CheckFile(context.Background(), r, []byte(goSource))
	require.NoError(t, err)

	assert.False(t, differ, "grammar=%d tree-sitter=%d", m.Grammar, m.TreeSitter)
	assert.Equal(t, 5, m.Grammar)
}

func TestChecker_AgreesOnBodylessDeclaration(t *testing.T) {
	src := []byte(`package lex

func InitLexer(r io.Reader) *LexerState

type Position struct {
	Line int
}
`)
	l, ok := lang.ForName("go")
	require.True(t, ok)
	r := analyzer.New(analyzer.DefaultConfig(), nil, nil).AnalyzeSource("lex.go", l, src)

	m, differ, err := NewChecker(nil).CheckFile(context.Background(), r, src)
	require.NoError(t, err)

	assert.False(t, differ, "grammar=%d tree-sitter=%d", m.Grammar, m.TreeSitter)
	assert.Equal(t, 1, m.Grammar)
}

func TestChecker_Languages(t *testing.T) {
	tests := []struct {
		language string
		src      string
		want     int
	}{
		{"java", "class A { A() {} void f() { Runnable r = () -> {}; } }", 2},
		{"c", "int f(void) { return 0; }\nint g(int);\n", 1},
		{"rust", "trait T { fn a(&self); }\nfn b() { let c = |x: i32| x; }\n", 1},
	}

	checker := NewChecker(nil)
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			counts, err := checker.Count(context.Background(), tt.language, []byte(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, counts.Total)
		})
	}
}

func TestChecker_Unsupported(t *testing.T) {
	assert.False(t, Supports("cobol"))
	assert.True(t, Supports("go"))

	_, err := NewChecker(nil).Count(context.Background(), "cobol", nil)
	assert.ErrorIs(t, err, analyzer.ErrUnsupportedLanguage)
}

func TestChecker_SyntaxErrors(t *testing.T) {
	counts, err := CountGoFunctions(context.Background(), []byte("package main\nfunc f( {\n"))
	require.NoError(t, err)

	assert.Positive(t, counts.SyntaxErrors)
}

func TestCompare(t *testing.T) {
	r := &analyzer.FileResult{Path: "a.go", Language: "go", Unclosed: 1}

	m, differ := Compare(r, Counts{Total: 1})
	assert.False(t, differ)
	assert.Equal(t, 1, m.Grammar)

	m, differ = Compare(r, Counts{Total: 3, SyntaxErrors: 2})
	assert.True(t, differ)
	assert.Equal(t, Mismatch{Path: "a.go", Language: "go", Grammar: 1, TreeSitter: 3, SyntaxErrors: 2}, m)
}
