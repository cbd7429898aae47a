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

// Balanced configures a bracket-balancing handler built by ConsumeBalanced.
type Balanced[L any] struct {
	// Open and Close are the bracket tokens, e.g. "(" and ")".
	Open  string
	Close string

	// Then is the state entered once the run returns to depth zero.
	Then State

	// Redeliver hands the closing bracket to Then as well.
	Redeliver bool

	// OnToken, if set, sees every token strictly inside the outer brackets.
	OnToken func(m *Machine[L], token string)
}

type bracketRun struct {
	depth  int
	tokens []string
}

// ConsumeBalanced returns a handler that swallows one balanced bracket run.
//
// Tokens before the first Open are ignored. The opener sets the depth to 1,
// nested openers increment it and closers decrement it; same-character
// nesting such as A<B<C>> therefore ends exactly at the last '>'. Inner
// tokens are buffered and, after the run completes, available through
// Machine.Bracketed.
func ConsumeBalanced[L any](b Balanced[L]) Handler[L] {
	return func(m *Machine[L], token string) {
		if m.run == nil {
			if token == b.Open {
				m.run = &bracketRun{depth: 1}
			}
			return
		}

		switch token {
		case b.Open:
			m.run.depth++
		case b.Close:
			m.run.depth--
		}

		if m.run.depth == 0 {
			m.finished = m.run.tokens
			m.run = nil
			if b.Redeliver {
				m.Next(b.Then, token)
			} else {
				m.Goto(b.Then)
			}
			return
		}

		m.run.tokens = append(m.run.tokens, token)
		if b.OnToken != nil {
			b.OnToken(m, token)
		}
	}
}
