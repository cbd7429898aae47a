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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func values(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Value
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		want []string
	}{
		{
			name: "go function",
			src:  "func Foo(a int) {}",
			want: []string{"func", "Foo", "(", "a", "int", ")", "{", "}"},
		},
		{
			name: "comments dropped",
			src:  "a // line ( {\n/* block { */ b",
			want: []string{"a", "b"},
		},
		{
			name: "string literals are atomic",
			src:  `x := "{(\"" + '}' + ` + "`raw ) ]`",
			want: []string{"x", ":=", `"{(\""`, "+", "'}'", "+", "`raw ) ]`"},
		},
		{
			name: "nested generics keep single angle brackets",
			src:  "Map<K, List<V>> m",
			want: []string{"Map", "<", "K", ",", "List", "<", "V", ">", ">", "m"},
		},
		{
			name: "multi character operators",
			src:  "a && b || c <- d ... e -> f :: g",
			want: []string{"a", "&&", "b", "||", "c", "<-", "d", "...", "e", "->", "f", "::", "g"},
		},
		{
			name: "numbers",
			src:  "x = 3.14 + 0x1F",
			want: []string{"x", "=", "3.14", "+", "0x1F"},
		},
		{
			name: "annotation",
			src:  "@Override\npublic void run()",
			want: []string{"@", "Override", "public", "void", "run", "(", ")"},
		},
		{
			name: "preprocessor skipped when enabled",
			src:  "#define F(x) \\\n  { x }\nint main() {}",
			opts: Options{SkipPreprocessor: true},
			want: []string{"int", "main", "(", ")", "{", "}"},
		},
		{
			name: "preprocessor kept by default",
			src:  "#[derive(Debug)]",
			want: []string{"#", "[", "derive", "(", "Debug", ")", "]"},
		},
		{
			name: "rust lifetimes",
			src:  "fn f<'a>(x: &'a str) -> char { 'x' }",
			opts: Options{Lifetimes: true},
			want: []string{"fn", "f", "<", "'a", ">", "(", "x", ":", "&", "'a", "str", ")", "->", "char", "{", "'x'", "}"},
		},
		{
			name: "go semicolons after statement ends",
			src:  "x := y\nfunc() {\n\treturn\n}()\nz++ // done\nif a {\n}",
			opts: Options{Semicolons: true},
			want: []string{
				"x", ":=", "y", ";", "func", "(", ")", "{", "return", ";", "}", "(", ")", ";",
				"z", "++", ";", "if", "a", "{", "}", ";",
			},
		},
		{
			name: "go semicolons not inserted after operators and keywords",
			src:  "a = b +\n\tc,\nd\nvar\ntype",
			opts: Options{Semicolons: true},
			want: []string{"a", "=", "b", "+", "c", ",", "d", ";", "var", "type"},
		},
		{
			name: "block comment spanning lines ends a statement",
			src:  "a /* one\ntwo */ b /* same line */ c",
			opts: Options{Semicolons: true},
			want: []string{"a", ";", "b", "c", ";"},
		},
		{
			name: "unterminated string stops at end of line",
			src:  "\"abc\nx",
			want: []string{`"abc`, "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize([]byte(tt.src), tt.opts)
			assert.Equal(t, tt.want, values(got))
		})
	}
}

func TestTokenize_Lines(t *testing.T) {
	src := "func a() {\n\t/* one\n two */\n\tx := `raw\nraw`\n\ty\n}"

	tokens := Tokenize([]byte(src), Options{})

	lines := map[string]int{}
	for _, tok := range tokens {
		lines[tok.Value] = tok.Line
	}
	assert.Equal(t, 1, lines["func"])
	assert.Equal(t, 4, lines["x"])
	assert.Equal(t, 4, lines["`raw\nraw`"])
	assert.Equal(t, 6, lines["y"])
	assert.Equal(t, 7, lines["}"])
}

func TestTokenize_ImplicitSemicolons(t *testing.T) {
	tokens := Tokenize([]byte("var res Value\n\nfunc() {}()\nx; y"), Options{Semicolons: true})

	var implicit []Token
	for _, tok := range tokens {
		if tok.Value == ";" {
			implicit = append(implicit, tok)
		}
	}
	assert.Equal(t, []Token{
		{Value: ";", Line: 1, Implicit: true},
		{Value: ";", Line: 3, Implicit: true},
		{Value: ";", Line: 4},
		{Value: ";", Line: 4, Implicit: true},
	}, implicit)
}

func TestJoin(t *testing.T) {
	tests := []struct {
		tokens []string
		want   string
	}{
		{[]string{"r", "*", "T"}, "r *T"},
		{[]string{"r", "*T"}, "r *T"},
		{[]string{"m", "map", "[", "string", "]", "int"}, "m map[string]int"},
		{[]string{"xs", "[", "]", "int"}, "xs []int"},
		{[]string{"a", "[", "3", "]", "int"}, "a [3]int"},
		{[]string{"s", "*", "Set", "[", "T", "]"}, "s *Set[T]"},
		{[]string{"f", "func", "(", "int", ")", "error"}, "f func(int) error"},
		{[]string{"args", "...", "string"}, "args ...string"},
		{[]string{"List", "<", "String", ">", "xs"}, "List<String> xs"},
		{[]string{"x", ":", "&", "mut", "T"}, "x: &mut T"},
		{[]string{"ctx", "context", ".", "Context"}, "ctx context.Context"},
		{nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Join(tt.tokens))
		})
	}
}
