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

package fsm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stIdle State = iota
	stGeneric
	stAfter
	stParen
	stSeeClose
)

type testLocals struct {
	seen []string
}

// blockGrammar pushes a machine on '{', pops on '}', and records a log line
// for every event so tests can check ordering.
type blockGrammar struct {
	*Engine[testLocals]
	log []string
}

func newBlockGrammar() *blockGrammar {
	g := &blockGrammar{}
	table := Table[testLocals]{
		stIdle: func(m *Machine[testLocals], token string) {
			switch token {
			case "{":
				depth := m.Engine().Depth()
				g.log = append(g.log, "push")
				g.EnterNested(func() {
					g.log = append(g.log, "pop")
					if m.Engine().Depth() != depth {
						g.log = append(g.log, "depth-mismatch")
					}
				})
			case "}":
				g.LeaveNested()
			case "<":
				m.Next(stGeneric, token)
			case "(":
				m.Next(stParen, token)
			default:
				m.Locals.seen = append(m.Locals.seen, token)
			}
		},
		stGeneric: ConsumeBalanced(Balanced[testLocals]{Open: "<", Close: ">", Then: stAfter}),
		stAfter: func(m *Machine[testLocals], token string) {
			g.log = append(g.log, "after:"+token)
			m.Goto(stIdle)
		},
		stParen: ConsumeBalanced(Balanced[testLocals]{
			Open:      "(",
			Close:     ")",
			Then:      stSeeClose,
			Redeliver: true,
			OnToken: func(m *Machine[testLocals], token string) {
				g.log = append(g.log, "inner:"+token)
			},
		}),
		stSeeClose: func(m *Machine[testLocals], token string) {
			g.log = append(g.log, "closer:"+token)
			m.Goto(stIdle)
		},
	}
	g.Engine = New(table, stIdle)
	return g
}

func feed(g interface{ Advance(string) }, src string) {
	for _, tok := range strings.Fields(src) {
		g.Advance(tok)
	}
}

func TestEngine_NestedBlocksAreLIFO(t *testing.T) {
	g := newBlockGrammar()

	feed(g, "{ { } { } }")

	assert.Equal(t, []string{"push", "push", "pop", "push", "pop", "pop"}, g.log)
	assert.Equal(t, 1, g.Depth())
}

func TestEngine_StrayCloseKeepsBaseMachine(t *testing.T) {
	g := newBlockGrammar()

	feed(g, "} } a")

	assert.Equal(t, 1, g.Depth())
	assert.Equal(t, []string{"a"}, g.Top().Locals.seen)
}

func TestEngine_NestedMachineStartsFresh(t *testing.T) {
	g := newBlockGrammar()

	feed(g, "a b { c }")

	require.Equal(t, 1, g.Depth())
	// tokens seen inside the block were recorded on the nested machine only
	assert.Equal(t, []string{"a", "b"}, g.Top().Locals.seen)
}

func TestEngine_TruncatedInputJustStops(t *testing.T) {
	g := newBlockGrammar()

	feed(g, "{ { x")

	assert.Equal(t, 3, g.Depth())
	assert.Equal(t, []string{"push", "push"}, g.log)
}

func TestEngine_LastToken(t *testing.T) {
	g := newBlockGrammar()
	var lastSeen []string
	g.SetTrace(func(depth int, state State, token string) {
		lastSeen = append(lastSeen, g.LastToken())
	})

	feed(g, "a b c")

	assert.Equal(t, []string{"", "a", "b"}, lastSeen)
	assert.Equal(t, "c", g.LastToken())
}

func TestEngine_Trace(t *testing.T) {
	g := newBlockGrammar()
	var depths []int
	g.SetTrace(func(depth int, state State, token string) {
		depths = append(depths, depth)
	})

	feed(g, "{ x }")

	assert.Equal(t, []int{1, 2, 2}, depths)
}
