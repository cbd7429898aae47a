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
	"github.com/kraklabs/ccn/pkg/lexer"
	"github.com/kraklabs/ccn/pkg/scope"
)

// States shared by every Go-family grammar.
const (
	goGlobal fsm.State = iota
	goTypeDefinition
	goAfterTypeName
	goTypeNameParams
	goStructBody
	goInterfaceBody
	goFunctionName
	goExpectFunctionDec
	goGeneric
	goMemberFunction
	goFunctionDec
	goExpectFunctionImpl
	goFunctionImpl
	goTypeGroup

	goLikeStateCount
)

// goLocals is the per-machine draft of the function being declared.
type goLocals struct {
	name      string
	receiver  string
	params    []string
	collected []string
	pending   string

	// package-level var declarations
	group bool
	value bool
	depth int
}

// GoLike is the base grammar for languages shaped like Go: a function
// keyword, an optional parenthesized receiver, a name, optional generic
// parameters, a parameter list, a free-form return type and a braced body.
//
// The function record is drafted on the machine and only reported to the
// context once the body's opening brace is reached, so declarations without
// a body (trait or interface methods ending in ';') produce no events.
type GoLike struct {
	*fsm.Engine[goLocals]

	ctx         scope.Context
	funcKeyword string
}

// NewGoLike creates a Go-family grammar whose functions start with funcKeyword.
func NewGoLike(ctx scope.Context, funcKeyword string) *GoLike {
	g := &GoLike{ctx: ctx, funcKeyword: funcKeyword}
	g.Engine = fsm.New(g.table(), goGlobal)
	return g
}

func (g *GoLike) table() fsm.Table[goLocals] {
	return fsm.Table[goLocals]{
		goGlobal:         g.global,
		goTypeDefinition: g.typeDefinition,
		goAfterTypeName:  g.afterTypeName,
		goTypeNameParams: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "[", Close: "]", Then: goAfterTypeName,
		}),
		goStructBody: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "{", Close: "}", Then: goGlobal,
		}),
		goInterfaceBody: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "{", Close: "}", Then: goGlobal,
		}),
		goFunctionName:      g.functionName,
		goExpectFunctionDec: g.expectFunctionDec,
		goGeneric: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "<", Close: ">", Then: goExpectFunctionDec,
		}),
		goMemberFunction: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "(", Close: ")", Then: goFunctionName,
			OnToken: func(m *fsm.Machine[goLocals], token string) {
				m.Locals.collected = append(m.Locals.collected, token)
			},
		}),
		goFunctionDec: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "(", Close: ")", Then: goExpectFunctionImpl,
			OnToken: func(m *fsm.Machine[goLocals], token string) {
				m.Locals.params = append(m.Locals.params, token)
			},
		}),
		goExpectFunctionImpl: g.expectFunctionImpl,
		goFunctionImpl:       g.functionImpl,
		goTypeGroup: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "(", Close: ")", Then: goGlobal,
		}),
	}
}

func (g *GoLike) global(m *fsm.Machine[goLocals], token string) {
	switch token {
	case g.funcKeyword:
		m.Locals = goLocals{}
		m.Goto(goFunctionName)
	case "type":
		m.Goto(goTypeDefinition)
	case "{":
		g.EnterNested(nil)
	case "}":
		g.LeaveNested()
	}
}

// typeDefinition reads the declared name. A grouped declaration, type ( ... ),
// is skipped whole.
func (g *GoLike) typeDefinition(m *fsm.Machine[goLocals], token string) {
	if token == "(" {
		m.Next(goTypeGroup, token)
		return
	}
	m.Goto(goAfterTypeName)
}

func (g *GoLike) afterTypeName(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "struct":
		m.Goto(goStructBody)
	case "interface":
		m.Goto(goInterfaceBody)
	case "[":
		m.Next(goTypeNameParams, token)
	case "=":
		// alias: the aliased type follows
	default:
		m.Goto(goGlobal)
	}
}

// functionName resolves what follows the function keyword. A '(' is a
// receiver at file level and an anonymous function's parameter list inside
// another function.
func (g *GoLike) functionName(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "(":
		if !g.ctx.EnclosingIsGlobal() {
			m.Locals.name = scope.Anonymous
			m.Next(goFunctionDec, token)
			return
		}
		m.Next(goMemberFunction, token)
	case "{":
		m.Locals.name = scope.Anonymous
		m.Next(goExpectFunctionImpl, token)
	default:
		m.Locals.name = token
		m.Locals.receiver = lexer.Join(m.Locals.collected)
		m.Goto(goExpectFunctionDec)
	}
}

func (g *GoLike) expectFunctionDec(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "(":
		m.Next(goFunctionDec, token)
	case "<":
		m.Next(goGeneric, token)
	default:
		m.Locals = goLocals{}
		m.Goto(goGlobal)
	}
}

func (g *GoLike) expectFunctionImpl(m *fsm.Machine[goLocals], token string) {
	switch {
	case token == "{" && g.LastToken() != "interface":
		m.Next(goFunctionImpl, token)
	case token == ";":
		m.Locals = goLocals{}
		m.Goto(goGlobal)
	}
}

// functionImpl reports the drafted function and enters its body.
func (g *GoLike) functionImpl(m *fsm.Machine[goLocals], _ string) {
	draft := m.Locals
	m.Locals = goLocals{}

	name := draft.name
	if name == "" {
		name = scope.Anonymous
	}
	g.ctx.OpenFunction(name)
	if draft.receiver != "" {
		g.ctx.SetQualifiedName("(" + draft.receiver + ")" + name)
	} else {
		g.ctx.SetQualifiedName(name)
	}
	for _, p := range draft.params {
		g.ctx.AddParameter(p)
	}
	g.enterBody(m)
}

// enterBody pushes a machine for a function body. When the body's closing
// brace pops it, the function is closed and m resumes in the global state.
func (g *GoLike) enterBody(m *fsm.Machine[goLocals]) {
	g.EnterNested(func() {
		g.ctx.CloseFunction()
		m.Goto(goGlobal)
	})
}
