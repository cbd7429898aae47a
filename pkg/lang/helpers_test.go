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
	"strings"
	"testing"

	"github.com/kraklabs/ccn/pkg/scope"
)

// run feeds space separated tokens to the grammar built by newGrammar and
// returns the recording context.
func run(t *testing.T, newGrammar func(scope.Context) Grammar, tokens string) (*scope.FileContext, Grammar) {
	t.Helper()
	ctx := scope.NewFileContext("test", scope.WithEventLog())
	g := newGrammar(ctx)
	for _, tok := range strings.Fields(tokens) {
		g.Advance(tok)
	}
	return ctx, g
}

func goGrammar(ctx scope.Context) Grammar   { return NewGo(ctx) }
func javaGrammar(ctx scope.Context) Grammar { return NewJava(ctx) }
func cGrammar(ctx scope.Context) Grammar    { return NewCLike(ctx) }

func goLikeGrammar(keyword string) func(scope.Context) Grammar {
	return func(ctx scope.Context) Grammar { return NewGoLike(ctx, keyword) }
}

func names(fns []scope.FunctionInfo) []string {
	out := make([]string, len(fns))
	for i, fn := range fns {
		out[i] = fn.LongName
	}
	return out
}

func ev(kind scope.EventKind, value string) scope.Event {
	return scope.Event{Kind: kind, Value: value}
}
