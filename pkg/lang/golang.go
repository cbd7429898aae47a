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

// States added by the Go grammar on top of the Go-family base.
const (
	goAfterFunc fsm.State = goLikeStateCount + iota
	goReceiverOrParams
	goAfterReceiverOrParams
	goCheckForParameters
	goTypeParamList
	goAfterParameters
	goTypeParameters
	goMultiReturn
	goInterfaceReturn
	goStructReturn
	goFunctionTypeReturn
	goArrayReturn
	goReadReturnType
	goFuncType
	goVarSpec
	goVarFuncType
)

// Go is the grammar for Go source.
//
// A '(' right after func is ambiguous: it opens either a method receiver or
// the parameter list of a function literal. Its tokens are buffered and the
// token after the closing ')' decides:
//
//	func (r *T) Bar() {}    // "Bar" followed by "(" confirms a method
//	func (x int) {}         // "{" means a literal with parameters x int
//	func (x int) error {}   // "error" not followed by "(": literal again
type Go struct {
	*GoLike
}

// NewGo creates a Go grammar reporting into ctx.
func NewGo(ctx scope.Context) *Go {
	base := &GoLike{ctx: ctx, funcKeyword: "func"}
	g := &Go{GoLike: base}

	table := base.table()
	for state, h := range g.overrides() {
		table[state] = h
	}
	base.Engine = fsm.New(table, goGlobal)
	return g
}

func (g *Go) overrides() fsm.Table[goLocals] {
	balanced := func(open, close string, then fsm.State) fsm.Handler[goLocals] {
		return fsm.ConsumeBalanced(fsm.Balanced[goLocals]{Open: open, Close: close, Then: then})
	}
	return fsm.Table[goLocals]{
		goGlobal:                g.global,
		goAfterFunc:             g.afterFunc,
		goReceiverOrParams:      balanced("(", ")", goAfterReceiverOrParams),
		goAfterReceiverOrParams: g.afterReceiverOrParams,
		goCheckForParameters:    g.checkForParameters,
		goExpectFunctionDec:     g.expectFunctionDec,
		goTypeParamList:         balanced("[", "]", goExpectFunctionDec),
		goFunctionDec: fsm.ConsumeBalanced(fsm.Balanced[goLocals]{
			Open: "(", Close: ")", Then: goAfterParameters,
			OnToken: func(_ *fsm.Machine[goLocals], token string) {
				g.ctx.AddParameter(token)
			},
		}),
		goAfterParameters:    g.afterParameters,
		goTypeParameters:     balanced("<", ">", goAfterParameters),
		goMultiReturn:        balanced("(", ")", goExpectFunctionImpl),
		goInterfaceReturn:    balanced("{", "}", goExpectFunctionImpl),
		goStructReturn:       balanced("{", "}", goExpectFunctionImpl),
		goFunctionTypeReturn: balanced("(", ")", goExpectFunctionImpl),
		goArrayReturn:        balanced("[", "]", goReadReturnType),
		goReadReturnType:     g.readReturnType,
		goExpectFunctionImpl: g.expectFunctionImpl,
		goFunctionImpl:       g.functionImpl,
		goFuncType:           balanced("(", ")", goGlobal),
		goVarSpec:            g.varSpec,
		goVarFuncType:        balanced("(", ")", goVarSpec),
	}
}

func (g *Go) global(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "func":
		isType := funcFollowsType(g.LastToken())
		if !g.ctx.EnclosingIsGlobal() {
			isType = funcIsType(g.LastToken())
		}
		if isType {
			m.Goto(goFuncType)
			return
		}
		m.Locals = goLocals{}
		m.Goto(goAfterFunc)
	case "var":
		if g.ctx.EnclosingIsGlobal() {
			m.Locals = goLocals{}
			m.Goto(goVarSpec)
		}
	case "struct":
		m.Goto(goStructBody)
	case "interface":
		m.Goto(goInterfaceBody)
	default:
		g.GoLike.global(m, token)
	}
}

// funcFollowsType reports whether prev only ever precedes func when func
// starts a function type: []func(), map[K]func(), *func(), chan func().
func funcFollowsType(prev string) bool {
	switch prev {
	case "]", "*", "...", "chan":
		return true
	}
	return false
}

// funcIsType reports whether a func keyword inside a body, preceded by prev,
// starts a function type (var f func(int), []func(), chan func()) rather
// than a function literal. A literal starting a statement follows the ';'
// ending the previous one.
func funcIsType(prev string) bool {
	if funcFollowsType(prev) {
		return true
	}
	switch prev {
	case "case":
		return true
	case "return", "go", "defer":
		return false
	}
	return lexer.IsIdentifier(prev)
}

// varSpec skips the names and type of a package-level var declaration, where
// func can only start a function type. Values are left to the global state
// so function literals assigned to variables are still found.
func (g *Go) varSpec(m *fsm.Machine[goLocals], token string) {
	l := &m.Locals
	top := 0
	if l.group {
		top = 1
	}
	switch token {
	case "(":
		if l.depth == 0 && g.LastToken() == "var" {
			l.group = true
		}
		l.depth++
	case "[", "{":
		l.depth++
	case ")", "]", "}":
		l.depth--
		if l.depth < 0 || (l.group && l.depth == 0) {
			m.Locals = goLocals{}
			m.Goto(goGlobal)
		}
	case ";", "=":
		if l.depth != top {
			return
		}
		if !l.group {
			m.Locals = goLocals{}
			m.Goto(goGlobal)
			return
		}
		l.value = token == "="
	case "func":
		if l.value {
			m.Locals = goLocals{}
			m.Next(goGlobal, token)
			return
		}
		m.Goto(goVarFuncType)
	}
}

func (g *Go) afterFunc(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "(":
		m.Next(goReceiverOrParams, token)
	case "{":
		g.openAnonymous(nil)
		m.Next(goAfterParameters, token)
	default:
		g.ctx.OpenFunction(token)
		g.ctx.SetQualifiedName(token)
		m.Goto(goExpectFunctionDec)
	}
}

func (g *Go) afterReceiverOrParams(m *fsm.Machine[goLocals], token string) {
	m.Locals.collected = m.Bracketed()
	switch token {
	case "{", "(", ")", "func":
		g.openAnonymous(m.Locals.collected)
		m.Next(goAfterParameters, token)
	default:
		m.Locals.pending = token
		m.Goto(goCheckForParameters)
	}
}

// checkForParameters confirms a method name by the '(' of its parameter
// list. Anything else means the buffered tokens were a literal's parameters.
func (g *Go) checkForParameters(m *fsm.Machine[goLocals], token string) {
	if token == "(" {
		name := m.Locals.pending
		g.ctx.OpenFunction(name)
		if receiver := lexer.Join(m.Locals.collected); receiver != "" {
			g.ctx.SetQualifiedName("(" + receiver + ")" + name)
		} else {
			g.ctx.SetQualifiedName(name)
		}
		m.Next(goFunctionDec, token)
		return
	}
	g.openAnonymous(m.Locals.collected)
	m.Locals.collected = nil
	m.Next(goAfterParameters, token)
}

func (g *Go) openAnonymous(params []string) {
	g.ctx.OpenFunction(scope.Anonymous)
	g.ctx.SetQualifiedName(scope.Anonymous)
	for _, p := range params {
		g.ctx.AddParameter(p)
	}
}

func (g *Go) expectFunctionDec(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "(":
		m.Next(goFunctionDec, token)
	case "<":
		m.Next(goGeneric, token)
	case "[":
		m.Next(goTypeParamList, token)
	default:
		m.Next(goAfterParameters, token)
	}
}

// afterParameters starts the return type, if any.
func (g *Go) afterParameters(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "<":
		m.Next(goTypeParameters, token)
	case "(":
		m.Next(goMultiReturn, token)
	case "{":
		m.Next(goFunctionImpl, token)
	case ";":
		g.endDeclaration(m)
	default:
		m.Next(goReadReturnType, token)
	}
}

func (g *Go) readReturnType(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "{":
		m.Next(goFunctionImpl, token)
	case "(":
		m.Next(goMultiReturn, token)
	case "interface":
		m.Goto(goInterfaceReturn)
	case "struct":
		m.Goto(goStructReturn)
	case "func":
		m.Goto(goFunctionTypeReturn)
	case "[":
		m.Next(goArrayReturn, token)
	case ";":
		g.endDeclaration(m)
	}
}

func (g *Go) expectFunctionImpl(m *fsm.Machine[goLocals], token string) {
	switch token {
	case "interface":
		m.Goto(goInterfaceReturn)
	case "{":
		m.Next(goFunctionImpl, token)
	case ";":
		g.endDeclaration(m)
	}
}

// endDeclaration closes a function declared without a body, such as one
// implemented in assembly.
func (g *Go) endDeclaration(m *fsm.Machine[goLocals]) {
	g.ctx.CloseFunction()
	m.Locals = goLocals{}
	m.Goto(goGlobal)
}

func (g *Go) functionImpl(m *fsm.Machine[goLocals], _ string) {
	g.enterBody(m)
}
