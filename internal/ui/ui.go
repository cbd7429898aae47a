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

// Package ui provides colored terminal output for the CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color printers. They honor color.NoColor, see InitColors.
var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

var (
	stdout io.Writer = color.Output
	stderr io.Writer = color.Error
)

// SetOutput redirects ui output; tests use it to capture what is printed.
func SetOutput(out, errOut io.Writer) {
	stdout, stderr = out, errOut
}

// InitColors disables colors when noColor is set or stdout is not a terminal.
func InitColors(noColor bool) {
	if noColor || !IsTerminal(os.Stdout) {
		color.NoColor = true
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Header prints a bold section title followed by a rule.
func Header(title string) {
	_, _ = Bold.Fprintln(stdout, title)
	_, _ = Dim.Fprintln(stdout, strings.Repeat("=", len(title)))
}

// SubHeader prints a bold subsection title.
func SubHeader(title string) {
	_, _ = Bold.Fprintln(stdout, title)
}

// Label formats a field label.
func Label(s string) string {
	return Bold.Sprint(s)
}

// CountText formats a count.
func CountText(n int) string {
	return Cyan.Sprint(n)
}

// DimText formats secondary text.
func DimText(s string) string {
	return Dim.Sprint(s)
}

func Info(msg string) {
	_, _ = fmt.Fprintln(stdout, msg)
}

func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

func Success(msg string) {
	_, _ = Green.Fprintln(stdout, "✓ "+msg)
}

func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}

// Warning prints to stderr.
func Warning(msg string) {
	_, _ = Yellow.Fprintln(stderr, "! "+msg)
}

func Warningf(format string, args ...any) {
	Warning(fmt.Sprintf(format, args...))
}
