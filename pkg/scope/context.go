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

// Package scope owns the per-file function stack the grammars report into and
// accumulates complexity metrics for each function.
package scope

import (
	"fmt"

	"github.com/kraklabs/ccn/pkg/lexer"
	"github.com/kraklabs/ccn/pkg/sigparse"
)

const (
	// GlobalName names the sentinel entry at the bottom of the function stack.
	GlobalName = "*global*"

	// Anonymous is the reserved name given to function literals.
	Anonymous = "(anonymous)"
)

// Context receives structural events from a grammar.
type Context interface {
	// OpenFunction pushes a new function record; it becomes the current function.
	OpenFunction(name string)

	// SetQualifiedName sets the current function's display name, e.g. "(r *T)Bar".
	SetQualifiedName(name string)

	// AddParameter appends one parameter-list token to the current function.
	AddParameter(token string)

	// CloseFunction finalizes and pops the current function.
	CloseFunction()

	// EnclosingIsGlobal reports whether no function is currently open.
	EnclosingIsGlobal() bool
}

// FunctionInfo is the record kept for every function in a file.
type FunctionInfo struct {
	Name       string   `json:"name"`
	LongName   string   `json:"long_name"`
	Parameters []string `json:"parameters"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	CCN        int      `json:"ccn"`
	TokenCount int      `json:"token_count"`
	NLOC       int      `json:"nloc"`

	// Signature is Parameters split into names and base types. The analyzer
	// fills it in once the language is known.
	Signature []sigparse.Param `json:"signature,omitempty"`

	paramTokens [][]string
	paramDepth  int
	lastLine    int
}

// ParameterCount returns the number of formal parameters.
func (f *FunctionInfo) ParameterCount() int {
	return len(f.Parameters)
}

// Location formats the function as "name@start-end".
func (f *FunctionInfo) Location() string {
	return fmt.Sprintf("%s@%d-%d", f.LongName, f.StartLine, f.EndLine)
}

func (f *FunctionInfo) addParameter(token string) {
	if token == "," && f.paramDepth == 0 {
		f.paramTokens = append(f.paramTokens, nil)
		return
	}
	switch token {
	case "(", "[", "{", "<":
		f.paramDepth++
	case ")", "]", "}", ">":
		if f.paramDepth > 0 {
			f.paramDepth--
		}
	}
	if len(f.paramTokens) == 0 {
		f.paramTokens = append(f.paramTokens, nil)
	}
	last := len(f.paramTokens) - 1
	f.paramTokens[last] = append(f.paramTokens[last], token)
}

func (f *FunctionInfo) finish() {
	f.Parameters = make([]string, 0, len(f.paramTokens))
	for _, group := range f.paramTokens {
		if len(group) == 0 {
			continue
		}
		f.Parameters = append(f.Parameters, lexer.Join(group))
	}
	f.paramTokens = nil
}

func newFunction(name string, line int) *FunctionInfo {
	return &FunctionInfo{
		Name:      name,
		LongName:  name,
		StartLine: line,
		EndLine:   line,
		CCN:       1,
	}
}
