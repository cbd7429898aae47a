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
	"github.com/kraklabs/ccn/pkg/fsm"
	"github.com/kraklabs/ccn/pkg/scope"
)

const (
	javaAnnotation fsm.State = cLikeStateCount + iota
	javaAfterAnnotation
	javaAnnotationArgs
)

// Java extends the C-family grammar with annotations. "@Name", "@a.b.Name"
// and their argument lists are skipped so that "@Test(timeout = 5)" is not
// read as a function named Test.
type Java struct {
	*CLike
}

// NewJava creates a Java grammar reporting into ctx.
func NewJava(ctx scope.Context) *Java {
	base := &CLike{ctx: ctx}
	j := &Java{CLike: base}

	table := base.table()
	table[cGlobal] = j.global
	table[javaAnnotation] = j.annotation
	table[javaAfterAnnotation] = j.afterAnnotation
	table[javaAnnotationArgs] = fsm.ConsumeBalanced(fsm.Balanced[cLocals]{
		Open: "(", Close: ")", Then: cGlobal,
	})
	base.Engine = fsm.New(table, cGlobal)
	return j
}

func (j *Java) global(m *fsm.Machine[cLocals], token string) {
	if token == "@" {
		m.Locals.candidate = ""
		m.Goto(javaAnnotation)
		return
	}
	j.CLike.global(m, token)
}

func (j *Java) annotation(m *fsm.Machine[cLocals], _ string) {
	m.Goto(javaAfterAnnotation)
}

func (j *Java) afterAnnotation(m *fsm.Machine[cLocals], token string) {
	switch token {
	case ".":
		m.Goto(javaAnnotation)
	case "(":
		m.Next(javaAnnotationArgs, token)
	default:
		m.Next(cGlobal, token)
	}
}
