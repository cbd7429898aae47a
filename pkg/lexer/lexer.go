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

// Package lexer turns C-family and Go-family source text into the flat token
// stream the grammars consume.
//
// Comments and whitespace are dropped. Every literal (double-quoted,
// single-quoted, backtick raw string) is emitted as one token so its inner
// punctuation can never disturb bracket balancing. '<' and '>' are always
// single tokens, which keeps nested generics such as Map<K, List<V>>
// balanced.
package lexer

// Token is one lexical unit with the 1-based line it starts on.
type Token struct {
	Value string
	Line  int

	// Implicit marks a ';' inserted by the scanner rather than read from src.
	Implicit bool
}

// Options tunes the scanner for a language.
type Options struct {
	// SkipPreprocessor drops lines starting with '#', including
	// backslash-continued lines (C, C++).
	SkipPreprocessor bool

	// Lifetimes lexes 'a (no closing quote) as a single token (Rust).
	Lifetimes bool

	// Semicolons inserts ';' the way the Go lexer does: at a newline, a
	// comment spanning a newline, or the end of input, when the last token
	// can end a statement.
	Semicolons bool
}

// goKeywords are the Go keywords after which no ';' is inserted.
var goKeywords = map[string]struct{}{
	"case": {}, "chan": {}, "const": {}, "default": {}, "defer": {}, "else": {},
	"for": {}, "func": {}, "go": {}, "goto": {}, "if": {}, "import": {},
	"interface": {}, "map": {}, "package": {}, "range": {}, "select": {},
	"struct": {}, "switch": {}, "type": {}, "var": {},
}

// operators are the multi-character punctuators kept as one token, longest first.
var operators = []string{
	"...", "<<=", ">>=",
	"&&", "||", ":=", "<-", "->", "=>", "==", "!=", "<=", ">=", "::",
	"++", "--", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

// Tokenize scans the whole of src.
func Tokenize(src []byte, opts Options) []Token {
	s := NewScanner(src, opts)
	var tokens []Token
	for s.Scan() {
		tokens = append(tokens, s.Token())
	}
	return tokens
}

// Scanner produces tokens one at a time.
type Scanner struct {
	src         []byte
	pos         int
	line        int
	atLineStart bool
	opts        Options
	tok         Token

	// semi is set when a newline after the last token ends a statement.
	semi bool
}

// NewScanner creates a scanner positioned at the start of src.
func NewScanner(src []byte, opts Options) *Scanner {
	return &Scanner{
		src:         src,
		line:        1,
		atLineStart: true,
		opts:        opts,
	}
}

// Token returns the token found by the last successful Scan.
func (s *Scanner) Token() Token {
	return s.tok
}

// Line returns the line the scanner is currently on.
func (s *Scanner) Line() int {
	return s.line
}

// Scan advances to the next token. It returns false at end of input.
func (s *Scanner) Scan() bool {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n':
			if s.semi {
				s.implicitSemicolon(s.line)
				s.line++
				s.pos++
				s.atLineStart = true
				return true
			}
			s.line++
			s.pos++
			s.atLineStart = true
			continue
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			s.pos++
			continue
		case c == '/' && s.peek(1) == '/':
			s.skipLine()
			continue
		case c == '/' && s.peek(1) == '*':
			line := s.line
			s.skipBlockComment()
			if s.semi && s.line > line {
				s.implicitSemicolon(line)
				return true
			}
			continue
		case c == '#' && s.atLineStart && s.opts.SkipPreprocessor:
			s.skipDirective()
			continue
		}

		start, line := s.pos, s.line
		s.atLineStart = false
		switch {
		case c == '"':
			s.scanQuoted('"')
		case c == '\'':
			if s.opts.Lifetimes && s.isLifetime() {
				s.pos++
				s.scanIdent()
			} else {
				s.scanQuoted('\'')
			}
		case c == '`':
			s.scanRaw()
		case isIdentStart(c):
			s.scanIdent()
		case isDigit(c):
			s.scanNumber()
		default:
			s.scanOperator()
		}
		s.tok = Token{Value: string(s.src[start:s.pos]), Line: line}
		s.semi = s.opts.Semicolons && endsStatement(s.tok.Value)
		return true
	}
	if s.semi {
		s.implicitSemicolon(s.line)
		return true
	}
	return false
}

func (s *Scanner) implicitSemicolon(line int) {
	s.semi = false
	s.tok = Token{Value: ";", Line: line, Implicit: true}
}

// endsStatement reports whether a newline after tok terminates a Go
// statement: identifiers, literals, closing brackets, ++, -- and the
// keywords return, break, continue and fallthrough.
func endsStatement(tok string) bool {
	switch tok {
	case ")", "]", "}", "++", "--":
		return true
	}
	c := tok[0]
	if isIdentStart(c) {
		_, keyword := goKeywords[tok]
		return !keyword
	}
	return isDigit(c) || c == '"' || c == '\'' || c == '`'
}

func (s *Scanner) peek(offset int) byte {
	if s.pos+offset < len(s.src) {
		return s.src[s.pos+offset]
	}
	return 0
}

func (s *Scanner) skipLine() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func (s *Scanner) skipBlockComment() {
	s.pos += 2
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.pos += 2
			return
		}
		if s.src[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
}

func (s *Scanner) skipDirective() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.peek(1) == '\n' {
			s.pos += 2
			s.line++
			continue
		}
		if c == '\n' {
			return
		}
		s.pos++
	}
}

// scanQuoted consumes a quoted literal. An unterminated literal ends at the
// end of its line.
func (s *Scanner) scanQuoted(quote byte) {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch c {
		case '\\':
			if s.peek(1) == '\n' {
				s.line++
			}
			s.pos += 2
			continue
		case '\n':
			return
		case quote:
			s.pos++
			return
		}
		s.pos++
	}
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}

func (s *Scanner) scanRaw() {
	s.pos++
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		s.pos++
		if c == '`' {
			return
		}
		if c == '\n' {
			s.line++
		}
	}
}

// isLifetime reports whether the quote at pos starts 'ident rather than a
// character literal such as 'a' or '\n'.
func (s *Scanner) isLifetime() bool {
	i := s.pos + 1
	if i >= len(s.src) || !isIdentStart(s.src[i]) {
		return false
	}
	for i < len(s.src) && isIdentPart(s.src[i]) {
		i++
	}
	return i >= len(s.src) || s.src[i] != '\''
}

func (s *Scanner) scanIdent() {
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
}

func (s *Scanner) scanNumber() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isIdentPart(c) || (c == '.' && isDigit(s.peek(1))) {
			s.pos++
			continue
		}
		return
	}
}

func (s *Scanner) scanOperator() {
	rest := s.src[s.pos:]
	for _, op := range operators {
		if len(rest) >= len(op) && string(rest[:len(op)]) == op {
			s.pos += len(op)
			return
		}
	}
	s.pos++
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsIdentifier reports whether tok looks like an identifier or keyword.
func IsIdentifier(tok string) bool {
	return tok != "" && isIdentStart(tok[0])
}
