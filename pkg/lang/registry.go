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

package lang

import (
	"path/filepath"
	"strings"

	"github.com/kraklabs/ccn/pkg/lexer"
	"github.com/kraklabs/ccn/pkg/scope"
)

// Language describes one supported language.
type Language struct {
	// Name is the canonical language name used in reports and config.
	Name string

	// Aliases are alternative names accepted by ForName.
	Aliases []string

	// Extensions are the file extensions, with leading dot, mapped to the language.
	Extensions []string

	// Conditions are the tokens that each add a path to a function's
	// cyclomatic complexity.
	Conditions []string

	// Lex configures the tokenizer for the language.
	Lex lexer.Options

	// New creates the grammars for one file. Every grammar observes the same
	// token stream and reports into the same context.
	New func(ctx scope.Context) []Grammar
}

var (
	cConditions    = []string{"if", "for", "while", "case", "catch", "&&", "||", "?"}
	goConditions   = []string{"if", "for", "case", "&&", "||"}
	rustConditions = []string{"if", "for", "while", "=>", "&&", "||"}
)

var languages = []Language{
	{
		Name:       "go",
		Aliases:    []string{"golang"},
		Extensions: []string{".go"},
		Conditions: goConditions,
		Lex:        lexer.Options{Semicolons: true},
		New: func(ctx scope.Context) []Grammar {
			return []Grammar{NewGo(ctx)}
		},
	},
	{
		Name:       "java",
		Extensions: []string{".java"},
		Conditions: cConditions,
		New: func(ctx scope.Context) []Grammar {
			return []Grammar{NewJava(ctx)}
		},
	},
	{
		Name:       "rust",
		Aliases:    []string{"rs"},
		Extensions: []string{".rs"},
		Conditions: rustConditions,
		Lex:        lexer.Options{Lifetimes: true},
		New: func(ctx scope.Context) []Grammar {
			return []Grammar{NewGoLike(ctx, "fn")}
		},
	},
	{
		Name:       "c",
		Aliases:    []string{"cpp", "c++"},
		Extensions: []string{".c", ".h", ".cc", ".cpp", ".cxx", ".hpp", ".hh"},
		Conditions: cConditions,
		Lex:        lexer.Options{SkipPreprocessor: true},
		New: func(ctx scope.Context) []Grammar {
			return []Grammar{NewCLike(ctx)}
		},
	},
}

var (
	byExtension = map[string]int{}
	byName      = map[string]int{}
)

func init() {
	for i, l := range languages {
		byName[l.Name] = i
		for _, alias := range l.Aliases {
			byName[alias] = i
		}
		for _, ext := range l.Extensions {
			byExtension[ext] = i
		}
	}
}

// Languages returns a copy of the language table in registration order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// ForExtension looks a language up by file extension. The leading dot is
// optional and the match is case-insensitive.
func ForExtension(ext string) (Language, bool) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	i, ok := byExtension[ext]
	if !ok {
		return Language{}, false
	}
	return languages[i], true
}

// ForPath looks a language up by the extension of path.
func ForPath(path string) (Language, bool) {
	ext := filepath.Ext(path)
	if ext == "" {
		return Language{}, false
	}
	return ForExtension(ext)
}

// ForName looks a language up by name or alias, case-insensitively.
func ForName(name string) (Language, bool) {
	i, ok := byName[strings.ToLower(name)]
	if !ok {
		return Language{}, false
	}
	return languages[i], true
}

// Names returns the canonical names of every language.
func Names() []string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.Name
	}
	return names
}
