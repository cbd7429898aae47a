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

	"github.com/kraklabs/ccn/pkg/fsm"
	"github.com/kraklabs/ccn/pkg/lexer"
	"github.com/kraklabs/ccn/pkg/scope"
)

// States shared by every C-family grammar.
const (
	cGlobal fsm.State = iota
	cTypeName
	cTypeHead
	cParams
	cDecToImpl
	cInitializer
	cNewExpr
	cNewArgs
	cAfterNew

	cLikeStateCount
)

type cLocals struct {
	// owner qualifies members declared in this machine's block ("Outer::Inner").
	owner     string
	candidate string
	name      string
	params    []string
	typeName  string
}

// notFunctions are identifiers that may precede '(' without naming a function.
var notFunctions = newKeywordSet(
	"if", "for", "while", "switch", "catch", "synchronized", "return", "sizeof",
	"else", "do", "try", "throw", "assert", "case", "new", "delete", "using",
	"typeof", "alignof", "decltype", "static_assert", "foreach", "lock", "when",
)

var typeKeywords = newKeywordSet("class", "struct", "interface", "enum", "record", "namespace", "union")

// CLike is the shared grammar for brace-and-paren languages: a function is
// an identifier followed by a parenthesized parameter list, optional
// qualifiers and a braced body. Class-like bodies qualify the functions
// declared in them, so a method m of class C is reported as "C::m".
type CLike struct {
	*fsm.Engine[cLocals]

	ctx scope.Context
}

// NewCLike creates a C-family grammar reporting into ctx.
func NewCLike(ctx scope.Context) *CLike {
	g := &CLike{ctx: ctx}
	g.Engine = fsm.New(g.table(), cGlobal)
	return g
}

func (g *CLike) table() fsm.Table[cLocals] {
	return fsm.Table[cLocals]{
		cGlobal:   g.global,
		cTypeName: g.typeName,
		cTypeHead: g.typeHead,
		cParams: fsm.ConsumeBalanced(fsm.Balanced[cLocals]{
			Open: "(", Close: ")", Then: cDecToImpl,
			OnToken: func(m *fsm.Machine[cLocals], token string) {
				m.Locals.params = append(m.Locals.params, token)
			},
		}),
		cDecToImpl:   g.decToImpl,
		cInitializer: g.initializer,
		cNewExpr:     g.newExpr,
		cNewArgs: fsm.ConsumeBalanced(fsm.Balanced[cLocals]{
			Open: "(", Close: ")", Then: cAfterNew,
		}),
		cAfterNew: g.afterNew,
	}
}

func (g *CLike) global(m *fsm.Machine[cLocals], token string) {
	l := &m.Locals
	switch {
	case token == "{":
		g.enterBlock(m, l.owner)
	case token == "}":
		g.LeaveNested()
	case token == "(":
		if l.candidate == "" {
			return
		}
		l.name, l.candidate, l.params = l.candidate, "", nil
		m.Next(cParams, token)
	case token == "::":
		if l.candidate != "" && !strings.HasSuffix(l.candidate, "::") {
			l.candidate += token
		} else {
			l.candidate = ""
		}
	case token == "~":
		// destructor: ~Foo or Foo::~Foo
		if strings.HasSuffix(l.candidate, "::") {
			l.candidate += token
		} else {
			l.candidate = token
		}
	case token == "new":
		l.candidate, l.typeName = "", ""
		m.Goto(cNewExpr)
	case typeKeywords.has(token) && g.LastToken() != ".":
		l.candidate = ""
		m.Goto(cTypeName)
	case lexer.IsIdentifier(token) && !notFunctions.has(token):
		if strings.HasSuffix(l.candidate, "::") || strings.HasSuffix(l.candidate, "~") {
			l.candidate += token
		} else {
			l.candidate = token
		}
	default:
		l.candidate = ""
	}
}

// enterBlock pushes a machine for a block that is not a function body.
func (g *CLike) enterBlock(m *fsm.Machine[cLocals], owner string) {
	m.Locals.candidate = ""
	child := g.EnterNested(nil)
	child.Locals.owner = owner
}

func (g *CLike) typeName(m *fsm.Machine[cLocals], token string) {
	if !lexer.IsIdentifier(token) {
		m.Next(cGlobal, token)
		return
	}
	m.Locals.typeName = token
	m.Goto(cTypeHead)
}

// typeHead skips extends/implements/base clauses up to the body. A '(' after
// another identifier means the type was a return type: struct foo *make(...).
func (g *CLike) typeHead(m *fsm.Machine[cLocals], token string) {
	l := &m.Locals
	switch {
	case token == "{":
		m.Goto(cGlobal)
		g.enterBlock(m, qualify(l.owner, l.typeName))
	case token == ";":
		l.candidate = ""
		m.Goto(cGlobal)
	case token == "(":
		if l.candidate != "" {
			m.Next(cGlobal, token)
		}
	case lexer.IsIdentifier(token):
		l.candidate = token
	}
}

func (g *CLike) decToImpl(m *fsm.Machine[cLocals], token string) {
	switch {
	case token == "{":
		g.functionImpl(m)
	case token == ":":
		m.Goto(cInitializer)
	case lexer.IsIdentifier(token):
		// const, throws, noexcept, override, trailing return types
	case token == "->" || token == "::" || token == "*" || token == "&" ||
		token == "<" || token == ">" || token == "," || token == "[" || token == "]":
	default:
		m.Locals.name, m.Locals.params = "", nil
		m.Next(cGlobal, token)
	}
}

// initializer skips a constructor initializer list up to the body.
func (g *CLike) initializer(m *fsm.Machine[cLocals], token string) {
	switch token {
	case "{":
		g.functionImpl(m)
	case ";", "}":
		m.Locals.name, m.Locals.params = "", nil
		m.Next(cGlobal, token)
	}
}

func (g *CLike) functionImpl(m *fsm.Machine[cLocals]) {
	name := m.Locals.name
	params := m.Locals.params
	m.Locals.name, m.Locals.params = "", nil

	g.ctx.OpenFunction(name)
	g.ctx.SetQualifiedName(qualify(m.Locals.owner, name))
	for _, p := range params {
		g.ctx.AddParameter(p)
	}
	m.Goto(cGlobal)
	g.EnterNested(func() {
		g.ctx.CloseFunction()
		m.Goto(cGlobal)
	})
}

// newExpr follows "new T(...)" so an anonymous class body is not mistaken
// for the body of a function named T.
func (g *CLike) newExpr(m *fsm.Machine[cLocals], token string) {
	switch {
	case token == "(":
		m.Next(cNewArgs, token)
	case lexer.IsIdentifier(token):
		m.Locals.typeName = token
	case token == "." || token == "::" || token == "<" || token == ">" || token == ",":
	default:
		m.Next(cGlobal, token)
	}
}

func (g *CLike) afterNew(m *fsm.Machine[cLocals], token string) {
	if token == "{" {
		m.Goto(cGlobal)
		g.enterBlock(m, qualify(m.Locals.owner, m.Locals.typeName))
		return
	}
	m.Next(cGlobal, token)
}

func qualify(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "::" + name
}
