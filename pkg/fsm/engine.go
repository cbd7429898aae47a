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

// Package fsm provides a token-driven state machine with a stack of nested
// sub-machines, one per open brace-delimited block.
//
// The engine has no language knowledge. A grammar supplies a Table mapping
// each of its states to a Handler and a per-machine locals type L. Every
// machine pushed by EnterNested shares the grammar's table but starts in the
// initial state with zero-valued locals, so the parse progress of a nested
// block never leaks into its parent:
//
//	engine := fsm.New(table, stateGlobal)
//	for _, tok := range tokens {
//		engine.Advance(tok)
//	}
//
// Truncated input simply stops the machine; nothing is reported for blocks or
// bracket runs that never close.
package fsm

// State names how a machine interprets its next token.
type State int

// Handler interprets one token for a machine in a given state.
type Handler[L any] func(m *Machine[L], token string)

// Table maps each state of a grammar to its handler.
// Tables are built once per grammar instance and never mutated afterwards.
type Table[L any] map[State]Handler[L]

// TraceFunc observes every token delivered by Advance before it is handled.
type TraceFunc func(depth int, state State, token string)

// Machine is one active state plus the local buffers its states need.
type Machine[L any] struct {
	// State is the state whose handler receives the next token.
	State State

	// Locals holds grammar-specific scratch data (draft names, collected tokens).
	Locals L

	engine   *Engine[L]
	onDone   func()
	run      *bracketRun
	finished []string
}

// Goto switches the machine to state without consuming anything.
func (m *Machine[L]) Goto(state State) {
	m.State = state
}

// Next switches the machine to state and re-delivers token to it.
func (m *Machine[L]) Next(state State, token string) {
	m.State = state
	m.engine.dispatch(m, token)
}

// Engine returns the engine the machine belongs to.
func (m *Machine[L]) Engine() *Engine[L] {
	return m.engine
}

// Bracketed returns the tokens strictly inside the most recently completed
// balanced run of this machine, outer brackets excluded.
func (m *Machine[L]) Bracketed() []string {
	return m.finished
}

// Engine drives the machine stack.
type Engine[L any] struct {
	table   Table[L]
	initial State
	stack   []*Machine[L]
	last    string
	trace   TraceFunc
}

// New creates an engine with a single base machine in the initial state.
func New[L any](table Table[L], initial State) *Engine[L] {
	e := &Engine[L]{
		table:   table,
		initial: initial,
	}
	e.stack = []*Machine[L]{e.newMachine(nil)}
	return e
}

func (e *Engine[L]) newMachine(onDone func()) *Machine[L] {
	return &Machine[L]{
		State:  e.initial,
		engine: e,
		onDone: onDone,
	}
}

// SetTrace installs fn to observe every token; nil disables tracing.
func (e *Engine[L]) SetTrace(fn TraceFunc) {
	e.trace = fn
}

// Advance delivers one token to the machine on top of the stack.
func (e *Engine[L]) Advance(token string) {
	m := e.Top()
	if e.trace != nil {
		e.trace(len(e.stack), m.State, token)
	}
	e.dispatch(m, token)
	e.last = token
}

func (e *Engine[L]) dispatch(m *Machine[L], token string) {
	if h, ok := e.table[m.State]; ok {
		h(m, token)
	}
}

// EnterNested pushes a fresh machine in the initial state and returns it.
// All subsequent tokens go to the new machine until it calls LeaveNested.
// onDone runs right after the machine is popped and may be nil.
func (e *Engine[L]) EnterNested(onDone func()) *Machine[L] {
	m := e.newMachine(onDone)
	e.stack = append(e.stack, m)
	return m
}

// LeaveNested pops the top machine and runs its completion callback.
// The base machine is never popped: a stray closing brace at file level is
// ignored.
func (e *Engine[L]) LeaveNested() {
	n := len(e.stack)
	if n <= 1 {
		return
	}
	top := e.stack[n-1]
	e.stack[n-1] = nil
	e.stack = e.stack[:n-1]
	if top.onDone != nil {
		top.onDone()
	}
}

// Top returns the machine currently receiving tokens.
func (e *Engine[L]) Top() *Machine[L] {
	return e.stack[len(e.stack)-1]
}

// Depth returns the number of machines on the stack. It is always >= 1.
func (e *Engine[L]) Depth() int {
	return len(e.stack)
}

// LastToken returns the token delivered by the previous call to Advance.
func (e *Engine[L]) LastToken() string {
	return e.last
}
