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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/ccn/pkg/scope"
)

func TestGoLike_Rust(t *testing.T) {
	tests := []struct {
		name   string
		tokens string
		want   []string
		params [][]string
	}{
		{
			name:   "plain function",
			tokens: "fn add ( a : i32 , b : i32 ) -> i32 { a + b }",
			want:   []string{"add"},
			params: [][]string{{"a: i32", "b: i32"}},
		},
		{
			name:   "generic function",
			tokens: "fn id < T > ( x : T ) -> T { x }",
			want:   []string{"id"},
			params: [][]string{{"x: T"}},
		},
		{
			name:   "trait declarations without body are skipped",
			tokens: "trait Shape { fn area ( & self ) -> f64 ; fn name ( & self ) -> String { String :: new ( ) } }",
			want:   []string{"name"},
			params: [][]string{{"&self"}},
		},
		{
			name:   "impl block",
			tokens: "impl Foo { fn new ( ) -> Self { Self { } } }",
			want:   []string{"new"},
			params: [][]string{{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, g := run(t, goLikeGrammar("fn"), tt.tokens)

			fns := ctx.Functions()
			assert.Equal(t, tt.want, names(fns))
			for i, want := range tt.params {
				assert.ElementsMatch(t, want, fns[i].Parameters)
			}
			assert.Equal(t, 1, g.Depth())
		})
	}
}

func TestGoLike_Receiver(t *testing.T) {
	ctx, _ := run(t, goLikeGrammar("func"), "func ( r * T ) Bar ( x int ) { }")

	assert.Equal(t, []scope.Event{
		ev(scope.EventOpen, "Bar"),
		ev(scope.EventQualify, "(r *T)Bar"),
		ev(scope.EventParam, "x"),
		ev(scope.EventParam, "int"),
		ev(scope.EventClose, "Bar"),
	}, ctx.Events())
}

func TestGoLike_AnonymousInsideFunction(t *testing.T) {
	ctx, _ := run(t, goLikeGrammar("func"), "func outer ( ) { f := func ( x int ) { } }")

	fns := ctx.Functions()
	require.Len(t, fns, 2)
	assert.Equal(t, scope.Anonymous, fns[0].Name)
	assert.Equal(t, []string{"x int"}, fns[0].Parameters)
	assert.Equal(t, "outer", fns[1].Name)
}

func TestGoLike_TypeDeclaration(t *testing.T) {
	ctx, g := run(t, goLikeGrammar("func"), "type Foo struct { X int }")

	assert.Empty(t, ctx.Events())
	assert.Equal(t, 1, g.Depth())
}

func TestGoLike_DeclarationWithoutBody(t *testing.T) {
	ctx, _ := run(t, goLikeGrammar("func"), "func f ( ) ; func g ( ) { }")

	assert.Equal(t, []string{"g"}, names(ctx.Functions()))
}
