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

// Package crosscheck counts functions with Tree-sitter so the token grammars
// can be compared against a real parser. A disagreement points at a file the
// grammars mis-structured.
package crosscheck

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	clang "github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/kraklabs/ccn/pkg/analyzer"
)

// Counts are the function nodes found in one file, by node type.
type Counts struct {
	ByKind       map[string]int `json:"by_kind"`
	Total        int            `json:"total"`
	SyntaxErrors int            `json:"syntax_errors"`
}

// Mismatch describes a file where the grammar and Tree-sitter disagree.
type Mismatch struct {
	Path         string `json:"path"`
	Language     string `json:"language"`
	Grammar      int    `json:"grammar"`
	TreeSitter   int    `json:"tree_sitter"`
	SyntaxErrors int    `json:"syntax_errors"`
}

type grammar struct {
	language  func() *sitter.Language
	functions map[string]bool
}

// Node types counted as functions. They match what the token grammars
// report: Rust closures and Java lambdas are not functions there either.
var grammars = map[string]grammar{
	"go": {
		language:  golang.GetLanguage,
		functions: map[string]bool{"function_declaration": true, "method_declaration": true, "func_literal": true},
	},
	"java": {
		language:  java.GetLanguage,
		functions: map[string]bool{"method_declaration": true, "constructor_declaration": true},
	},
	"c": {
		language:  clang.GetLanguage,
		functions: map[string]bool{"function_definition": true},
	},
	"rust": {
		language:  rust.GetLanguage,
		functions: map[string]bool{"function_item": true},
	},
}

// Checker counts functions with pooled Tree-sitter parsers. It is safe for
// concurrent use.
type Checker struct {
	logger *slog.Logger

	// Language parser pools (parsers are not thread-safe)
	mu    sync.Mutex
	pools map[string]*sync.Pool
}

// NewChecker creates a checker. A nil logger uses slog.Default.
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		logger: logger,
		pools:  make(map[string]*sync.Pool),
	}
}

// Supports reports whether language can be cross-checked.
func Supports(language string) bool {
	_, ok := grammars[language]
	return ok
}

func (c *Checker) pool(language string) *sync.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pools[language]; ok {
		return p
	}
	g := grammars[language]
	p := &sync.Pool{New: func() any {
		parser := sitter.NewParser()
		parser.SetLanguage(g.language())
		return parser
	}}
	c.pools[language] = p
	return p
}

// Count parses src as language and counts its function nodes.
func (c *Checker) Count(ctx context.Context, language string, src []byte) (Counts, error) {
	g, ok := grammars[language]
	if !ok {
		return Counts{}, fmt.Errorf("cross-check %s: %w", language, analyzer.ErrUnsupportedLanguage)
	}

	pool := c.pool(language)
	parser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return Counts{}, fmt.Errorf("invalid parser type from %s pool", language)
	}
	defer pool.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return Counts{}, fmt.Errorf("tree-sitter parse: %w", err)
	}
	defer tree.Close()

	counts := Counts{ByKind: make(map[string]int)}
	root := tree.RootNode()
	if root.HasError() {
		counts.SyntaxErrors = countErrors(root)
	}
	walk(root, g.functions, &counts)
	return counts, nil
}

// CountGoFunctions counts function declarations, method declarations and
// function literals in Go source.
func CountGoFunctions(ctx context.Context, src []byte) (Counts, error) {
	return NewChecker(nil).Count(ctx, "go", src)
}

func walk(node *sitter.Node, functions map[string]bool, counts *Counts) {
	if node == nil {
		return
	}
	if kind := node.Type(); functions[kind] {
		counts.ByKind[kind]++
		counts.Total++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), functions, counts)
	}
}

func countErrors(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	n := 0
	if node.Type() == "ERROR" || node.IsMissing() {
		n++
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		n += countErrors(node.Child(i))
	}
	return n
}

// Compare checks a grammar result against Tree-sitter counts. Functions left
// unclosed by the grammar count as found.
func Compare(r *analyzer.FileResult, counts Counts) (Mismatch, bool) {
	found := len(r.Functions) + r.Unclosed
	m := Mismatch{
		Path:         r.Path,
		Language:     r.Language,
		Grammar:      found,
		TreeSitter:   counts.Total,
		SyntaxErrors: counts.SyntaxErrors,
	}
	return m, found != counts.Total
}

// CheckFile counts the functions of an analyzed file's source and compares
// them with the grammar result.
func (c *Checker) CheckFile(ctx context.Context, r *analyzer.FileResult, src []byte) (Mismatch, bool, error) {
	counts, err := c.Count(ctx, r.Language, src)
	if err != nil {
		return Mismatch{}, false, err
	}
	m, differ := Compare(r, counts)
	if differ {
		c.logger.Debug("crosscheck.mismatch",
			"path", r.Path,
			"grammar", m.Grammar,
			"tree_sitter", m.TreeSitter,
			"syntax_errors", m.SyntaxErrors,
		)
	}
	return m, differ, nil
}
