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

package scope

// EventKind identifies a structural event received by a FileContext.
type EventKind string

const (
	EventOpen    EventKind = "open"
	EventQualify EventKind = "qualify"
	EventParam   EventKind = "param"
	EventClose   EventKind = "close"
)

// Event is one entry of the recorded event log.
type Event struct {
	Kind  EventKind
	Value string
}

// Option configures a FileContext.
type Option func(*FileContext)

// WithConditions sets the tokens that each add one to the cyclomatic
// complexity of the current function.
func WithConditions(conditions []string) Option {
	return func(c *FileContext) {
		c.conditions = make(map[string]struct{}, len(conditions))
		for _, cond := range conditions {
			c.conditions[cond] = struct{}{}
		}
	}
}

// WithEventLog records every structural event, see Events.
func WithEventLog() Option {
	return func(c *FileContext) {
		c.record = true
	}
}

// FileContext implements Context for a single source file. It is not safe
// for concurrent use; each file gets its own.
type FileContext struct {
	path       string
	stack      []*FunctionInfo
	functions  []FunctionInfo
	conditions map[string]struct{}
	line       int
	tokens     int
	nloc       int
	lastLine   int
	record     bool
	events     []Event
}

// NewFileContext creates a context whose stack holds only the global sentinel.
func NewFileContext(path string, opts ...Option) *FileContext {
	c := &FileContext{
		path:  path,
		stack: []*FunctionInfo{newFunction(GlobalName, 0)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the file path the context was created for.
func (c *FileContext) Path() string {
	return c.path
}

// SetLine records the line of the token about to be processed.
func (c *FileContext) SetLine(line int) {
	c.line = line
}

// Current returns the innermost open function, or the global sentinel.
func (c *FileContext) Current() *FunctionInfo {
	return c.stack[len(c.stack)-1]
}

func (c *FileContext) OpenFunction(name string) {
	c.log(EventOpen, name)
	c.stack = append(c.stack, newFunction(name, c.line))
}

func (c *FileContext) SetQualifiedName(name string) {
	c.log(EventQualify, name)
	if c.EnclosingIsGlobal() {
		return
	}
	c.Current().LongName = name
}

func (c *FileContext) AddParameter(token string) {
	c.log(EventParam, token)
	if c.EnclosingIsGlobal() {
		return
	}
	c.Current().addParameter(token)
}

// CloseFunction pops the current function. At global level it does nothing.
func (c *FileContext) CloseFunction() {
	if c.EnclosingIsGlobal() {
		return
	}
	c.log(EventClose, c.Current().Name)
	fn := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	fn.EndLine = c.line
	fn.finish()
	c.functions = append(c.functions, *fn)
}

func (c *FileContext) EnclosingIsGlobal() bool {
	return len(c.stack) == 1
}

// ObserveToken attributes one token to the current function, counting
// conditions towards its cyclomatic complexity.
func (c *FileContext) ObserveToken(token string) {
	c.tokens++
	if c.line != c.lastLine {
		c.nloc++
		c.lastLine = c.line
	}

	fn := c.Current()
	fn.TokenCount++
	if c.line != fn.lastLine {
		fn.NLOC++
		fn.lastLine = c.line
	}
	if _, ok := c.conditions[token]; ok {
		fn.CCN++
	}
}

// Functions returns every closed function in closing order.
func (c *FileContext) Functions() []FunctionInfo {
	return c.functions
}

// Unclosed returns the functions still open, outermost first. They are the
// result of truncated input and are not part of Functions.
func (c *FileContext) Unclosed() []FunctionInfo {
	open := make([]FunctionInfo, 0, len(c.stack)-1)
	for _, fn := range c.stack[1:] {
		cp := *fn
		cp.finish()
		open = append(open, cp)
	}
	return open
}

// TokenCount returns the number of tokens observed in the file.
func (c *FileContext) TokenCount() int {
	return c.tokens
}

// NLOC returns the number of distinct lines that carried tokens.
func (c *FileContext) NLOC() int {
	return c.nloc
}

// Events returns the recorded event log; empty unless WithEventLog was used.
func (c *FileContext) Events() []Event {
	return c.events
}

func (c *FileContext) log(kind EventKind, value string) {
	if c.record {
		c.events = append(c.events, Event{Kind: kind, Value: value})
	}
}
