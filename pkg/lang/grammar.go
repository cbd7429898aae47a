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

// Package lang holds the language grammars built on pkg/fsm and the registry
// that maps file extensions and language names to them.
//
// A grammar turns the token stream of one file into function open, name,
// parameter and close events on a scope.Context. It never fails: input it
// cannot make sense of only lowers the accuracy of that file's result.
package lang

import (
	"github.com/kraklabs/ccn/pkg/fsm"
)

// Grammar consumes the tokens of one file.
type Grammar interface {
	// Advance delivers the next token.
	Advance(token string)

	// Depth returns the current brace nesting depth as seen by the grammar (>= 1).
	Depth() int

	// SetTrace observes every token before it is handled; nil disables it.
	SetTrace(fn fsm.TraceFunc)
}

// keywordSet is a small read-only set of tokens.
type keywordSet map[string]struct{}

func newKeywordSet(words ...string) keywordSet {
	s := make(keywordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s keywordSet) has(token string) bool {
	_, ok := s[token]
	return ok
}
