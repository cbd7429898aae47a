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

import "strings"

// Join reassembles tokens into readable source text, e.g.
// ["r", "*", "T"] becomes "r *T", ["s", "*", "Set", "[", "T", "]"] becomes
// "s *Set[T]" and ["xs", "[", "]", "int"] becomes "xs []int".
func Join(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			after := ""
			if i+1 < len(tokens) {
				after = tokens[i+1]
			}
			if needsSpace(tokens[i-1], tok, after) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tok)
	}
	return b.String()
}

// needsSpace reports whether a space belongs between prev and next; after is
// the token following next, if any.
func needsSpace(prev, next, after string) bool {
	if prev == "" || next == "" {
		return false
	}
	switch next {
	case ",", ")", "]", ".", "(", "<", ">", ";", ":", "::":
		return false
	case "[":
		// "xs []int" and "a [3]int" are array types, "Set[T]" is an instantiation.
		if prev == "map" {
			return false
		}
		if IsIdentifier(prev) {
			return after == "]" || (after != "" && isDigit(after[0]))
		}
	}
	switch prev[len(prev)-1] {
	case '(', '[', '.', '*', '&', ']', '<', '@':
		return false
	}
	if prev == "::" || prev == "<-" {
		return false
	}
	return true
}
