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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kraklabs/ccn/internal/ui"
	"github.com/kraklabs/ccn/pkg/crosscheck"
	"github.com/kraklabs/ccn/pkg/lang"
)

type languageInfo struct {
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases,omitempty"`
	Extensions []string `json:"extensions"`
	CrossCheck bool     `json:"cross_check"`
}

func listLanguages() []languageInfo {
	var out []languageInfo
	for _, l := range lang.Languages() {
		out = append(out, languageInfo{
			Name:       l.Name,
			Aliases:    l.Aliases,
			Extensions: l.Extensions,
			CrossCheck: crosscheck.Supports(l.Name),
		})
	}
	return out
}

// runLanguages executes the 'languages' CLI command.
func runLanguages(_ []string, globals GlobalFlags) {
	infos := listLanguages()
	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(infos)
		return
	}
	ui.Header("Supported Languages")
	printLanguages(os.Stdout, infos)
}

func printLanguages(w io.Writer, infos []languageInfo) {
	for _, l := range infos {
		name := l.Name
		if len(l.Aliases) > 0 {
			name += " " + ui.DimText("("+strings.Join(l.Aliases, ", ")+")")
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", ui.Label(name+":"), strings.Join(l.Extensions, " "))
		if l.CrossCheck {
			_, _ = fmt.Fprintf(w, "  %s\n", ui.DimText("cross-check: tree-sitter"))
		}
	}
}
