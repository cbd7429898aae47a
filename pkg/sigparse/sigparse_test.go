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

package sigparse

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		language string
		params   []string
		want     []Param
	}{
		{
			name:     "go simple",
			language: "go",
			params:   []string{"name string", "age int"},
			want:     []Param{{"name", "string"}, {"age", "int"}},
		},
		{
			name:     "go grouped",
			language: "go",
			params:   []string{"a", "b int", "s *Server"},
			want:     []Param{{"a", "int"}, {"b", "int"}, {"s", "Server"}},
		},
		{
			name:     "go qualified and variadic",
			language: "go",
			params:   []string{"ctx context.Context", "args ...string"},
			want:     []Param{{"ctx", "Context"}, {"args", "string"}},
		},
		{
			name:     "go func and map params",
			language: "go",
			params:   []string{"fn func(int) error", "m map[string]int"},
			want:     []Param{{"fn", "func"}, {"m", "map[string]int"}},
		},
		{
			name:     "go channel",
			language: "go",
			params:   []string{"ch <-chan int"},
			want:     []Param{{"ch", "<-chan int"}},
		},
		{
			name:     "go unnamed",
			language: "go",
			params:   []string{"int", "*T"},
			want:     []Param{{"", "int"}, {"", "T"}},
		},
		{
			name:     "rust",
			language: "rust",
			params:   []string{"&mut self", "x: &'a str", "mut buf: Vec<u8>", "p: std::path::PathBuf"},
			want:     []Param{{"self", "Self"}, {"x", "str"}, {"buf", "Vec"}, {"p", "PathBuf"}},
		},
		{
			name:     "rust trait object",
			language: "rust",
			params:   []string{"f: &dyn Fn(i32)", "w: impl Write"},
			want:     []Param{{"f", "Fn(i32)"}, {"w", "Write"}},
		},
		{
			name:     "c",
			language: "c",
			params:   []string{"const char *name", "int a [3]", "struct node *n"},
			want:     []Param{{"name", "char"}, {"a", "int"}, {"n", "node"}},
		},
		{
			name:     "c void",
			language: "c",
			params:   []string{"void"},
			want:     []Param{},
		},
		{
			name:     "c++ reference and default",
			language: "c",
			params:   []string{"const std::string &s", "int n = 0"},
			want:     []Param{{"s", "string"}, {"n", "int"}},
		},
		{
			name:     "java",
			language: "java",
			params:   []string{"final Map<K, V> m", "@Nullable String s", "String ...args", "int[] xs"},
			want:     []Param{{"m", "Map"}, {"s", "String"}, {"args", "String"}, {"xs", "int"}},
		},
		{
			name:     "no params",
			language: "go",
			params:   nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.language, tt.params)
			if len(got) != len(tt.want) {
				t.Fatalf("Parse(%q) returned %d params, want %d: %+v", tt.params, len(got), len(tt.want), got)
			}
			for i, g := range got {
				if g != tt.want[i] {
					t.Errorf("param[%d] = %+v, want %+v", i, g, tt.want[i])
				}
			}
		})
	}
}

// map[K]func() used to make splitParamTokens loop forever: '(' stopped the
// scan without advancing past it.
func TestParse_MapFuncTerminates(t *testing.T) {
	params := [][]string{
		{"handlers map[string]func()"},
		{"handlers map[string]func(ctx context.Context) error"},
		{"m map[string]func(int, int) bool", "name string"},
		{"ch chan func()"},
		{"x interface{ Method() }"},
	}

	for _, p := range params {
		t.Run(p[0], func(t *testing.T) {
			done := make(chan struct{})
			go func() {
				Parse("go", p)
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatalf("Parse(%q) hung", p)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Querier", "Querier"},
		{"*Querier", "Querier"},
		{"[]Querier", "Querier"},
		{"*[]Querier", "Querier"},
		{"tools.Querier", "Querier"},
		{"*tools.Querier", "Querier"},
		{"...string", "string"},
		{"func(int) error", "func"},
		{"interface{}", "interface{}"},
		{"map[string]pkg.T", "map[string]pkg.T"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeType(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
