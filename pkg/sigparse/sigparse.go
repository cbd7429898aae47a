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

// Package sigparse splits the parameters recorded for a function into names
// and base types. Input is one string per formal parameter, as produced by
// the scope package: "a", "b int", "ctx context.Context".
package sigparse

import "strings"

// Param is a parsed parameter. Name is empty for unnamed parameters.
type Param struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// Parse resolves the parameters of a function written in language.
func Parse(language string, params []string) []Param {
	if len(params) == 0 {
		return nil
	}
	switch language {
	case "go":
		return parseGo(params)
	case "rust":
		return parseRust(params)
	default:
		return parseTypeFirst(params)
	}
}

// parseGo applies Go's grouping rule: in "a, b int" the type of a comes from
// the next parameter that has one, so parameters are resolved right to left.
// When no parameter has two parts, they are all unnamed types.
func parseGo(params []string) []Param {
	split := make([][]string, len(params))
	named := false
	for i, p := range params {
		split[i] = splitParamTokens(p)
		if len(split[i]) > 1 {
			named = true
		}
	}

	out := make([]Param, 0, len(params))
	if !named {
		for _, tokens := range split {
			if len(tokens) == 1 {
				out = append(out, Param{Type: NormalizeType(tokens[0])})
			}
		}
		return out
	}

	var pendingType string
	for i := len(split) - 1; i >= 0; i-- {
		tokens := split[i]
		switch len(tokens) {
		case 0:
			continue
		case 1:
			out = append(out, Param{Name: tokens[0], Type: pendingType})
		default:
			pendingType = NormalizeType(strings.Join(tokens[1:], " "))
			out = append(out, Param{Name: tokens[0], Type: pendingType})
		}
	}

	// Reverse to restore left-to-right order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NormalizeType extracts the base type name from a Go type expression.
//
//	"*Querier" → "Querier"
//	"[]Querier" → "Querier"
//	"*tools.Querier" → "Querier"
//	"...string" → "string"
//	"func(int) error" → "func"
func NormalizeType(t string) string {
	t = strings.TrimLeft(t, "*")

	if strings.HasPrefix(t, "[]") {
		t = t[2:]
		t = strings.TrimLeft(t, "*")
	}

	t = strings.TrimPrefix(t, "...")

	if strings.HasPrefix(t, "func") {
		return "func"
	}
	if strings.ContainsAny(t, "[({ ") {
		return t
	}

	if dot := strings.LastIndex(t, "."); dot >= 0 {
		t = t[dot+1:]
	}
	return t
}

// parseRust handles "name: Type", patterns such as "mut x: T" and the self
// receiver forms.
func parseRust(params []string) []Param {
	out := make([]Param, 0, len(params))
	for _, p := range params {
		p = strings.TrimSpace(p)
		colon := rustColon(p)
		if colon < 0 {
			if strings.HasSuffix(p, "self") {
				out = append(out, Param{Name: "self", Type: "Self"})
			} else if p != "" {
				out = append(out, Param{Type: normalizeRust(p)})
			}
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p[:colon]), "mut "))
		out = append(out, Param{Name: name, Type: normalizeRust(p[colon+1:])})
	}
	return out
}

// rustColon returns the index of the first top-level ':' that is not part
// of a '::' path separator, or -1.
func rustColon(p string) int {
	depth := 0
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case ':':
			if depth != 0 {
				continue
			}
			if i+1 < len(p) && p[i+1] == ':' {
				i++
				continue
			}
			return i
		}
	}
	return -1
}

func normalizeRust(t string) string {
	t = strings.TrimSpace(t)
	for {
		switch {
		case strings.HasPrefix(t, "&"):
			t = strings.TrimSpace(t[1:])
		case strings.HasPrefix(t, "'"):
			// lifetime: &'a T
			if sp := strings.IndexByte(t, ' '); sp > 0 {
				t = strings.TrimSpace(t[sp+1:])
			} else {
				return t
			}
		case strings.HasPrefix(t, "mut "), strings.HasPrefix(t, "dyn "):
			t = strings.TrimSpace(t[4:])
		case strings.HasPrefix(t, "impl "):
			t = strings.TrimSpace(t[5:])
		default:
			return baseName(t, "::")
		}
	}
}

// parseTypeFirst handles C-family parameters: "int a", "const char *name",
// "final List<String> xs", "@Nullable String s", "int a[3]".
func parseTypeFirst(params []string) []Param {
	out := make([]Param, 0, len(params))
	for _, p := range params {
		p = strings.TrimSpace(p)
		if eq := topLevelIndex(p, '='); eq >= 0 {
			p = strings.TrimSpace(p[:eq])
		}
		p = trimArraySuffix(p)
		p = dropWords(p, func(w string) bool { return strings.HasPrefix(w, "@") })
		if p == "" || p == "void" {
			continue
		}

		sp := lastTopLevelSpace(p)
		if sp < 0 {
			out = append(out, Param{Type: normalizeC(p)})
			continue
		}
		name := strings.TrimLeft(p[sp+1:], "*&.")
		out = append(out, Param{Name: name, Type: normalizeC(p[:sp])})
	}
	return out
}

var cQualifiers = map[string]bool{
	"const": true, "final": true, "volatile": true, "register": true,
	"struct": true, "enum": true, "class": true, "union": true,
}

func normalizeC(t string) string {
	t = dropWords(t, func(w string) bool { return cQualifiers[w] })
	t = strings.TrimRight(t, " *&.")
	t = strings.TrimSuffix(t, "[]")
	t = strings.TrimSuffix(t, "...")
	t = strings.TrimRight(t, " *&")
	t = baseName(t, "::")
	return baseName(t, ".")
}

// baseName strips generic arguments and returns the last sep-separated
// segment: "std::vector<int>" → "vector".
func baseName(t, sep string) string {
	if lt := strings.IndexByte(t, '<'); lt > 0 {
		t = t[:lt]
	}
	if i := strings.LastIndex(t, sep); i >= 0 && i+len(sep) < len(t) {
		t = t[i+len(sep):]
	}
	return strings.TrimSpace(t)
}

func dropWords(s string, drop func(string) bool) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !drop(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// trimArraySuffix removes trailing array dimensions: "a [3]" → "a".
func trimArraySuffix(s string) string {
	for strings.HasSuffix(s, "]") {
		depth := 0
		cut := -1
		for i := len(s) - 1; i >= 0 && cut < 0; i-- {
			switch s[i] {
			case ']':
				depth++
			case '[':
				depth--
				if depth == 0 {
					cut = i
				}
			}
		}
		if cut <= 0 {
			break
		}
		s = strings.TrimSpace(s[:cut])
	}
	return s
}

func lastTopLevelSpace(s string) int {
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')', ']', '>':
			depth++
		case '(', '[', '<':
			depth--
		case ' ':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func topLevelIndex(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '<', '{':
			depth++
		case ')', ']', '>', '}':
			depth--
		case c:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func findMatchingParen(s string, pos int) int {
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitParamTokens splits a Go parameter into its name and type words. A
// type starting with '*', '[' or func extends to the end.
func splitParamTokens(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var tokens []string
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}

		start := i
		if s[i] == '*' || s[i] == '[' || strings.HasPrefix(s[i:], "func") {
			tokens = append(tokens, s[start:])
			break
		}

		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			if s[i] == '(' {
				end := findMatchingParen(s, i)
				if end == -1 {
					i = len(s)
				} else {
					i = end + 1
				}
			} else {
				i++
			}
		}
		tokens = append(tokens, s[start:i])
	}

	return tokens
}
