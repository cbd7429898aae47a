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

// Package errors defines the user-facing errors of the CLI: each carries a
// title, a detail line, a hint on how to fix it and a process exit code.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/kraklabs/ccn/internal/ui"
)

// Exit codes. ExitWarnings is used when a scan finds functions above the
// complexity threshold.
const (
	ExitSuccess    = 0
	ExitWarnings   = 1
	ExitConfig     = 2
	ExitInput      = 3
	ExitPermission = 4
	ExitInternal   = 5
)

// UserError is an error meant to be shown to the user.
type UserError struct {
	Title    string
	Detail   string
	Hint     string
	Cause    error
	ExitCode int
}

func (e *UserError) Error() string {
	msg := e.Title
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

func newUserError(code int, title, detail, hint string, cause error) *UserError {
	return &UserError{Title: title, Detail: detail, Hint: hint, Cause: cause, ExitCode: code}
}

// NewConfigError reports a missing or invalid configuration.
func NewConfigError(title, detail, hint string, cause error) *UserError {
	return newUserError(ExitConfig, title, detail, hint, cause)
}

// NewInputError reports invalid arguments or unreadable input paths.
func NewInputError(title, detail, hint string, cause error) *UserError {
	return newUserError(ExitInput, title, detail, hint, cause)
}

// NewPermissionError reports a filesystem permission problem.
func NewPermissionError(title, detail, hint string, cause error) *UserError {
	return newUserError(ExitPermission, title, detail, hint, cause)
}

// NewInternalError reports a bug or an unexpected environment failure.
func NewInternalError(title, detail, hint string, cause error) *UserError {
	return newUserError(ExitInternal, title, detail, hint, cause)
}

// exit is replaced in tests.
var exit = os.Exit

// FatalError prints err and exits with its exit code. Errors that are not a
// UserError exit with ExitInternal.
func FatalError(err error, jsonMode bool) {
	if jsonMode {
		WriteJSON(os.Stdout, err)
	} else {
		Write(os.Stderr, err)
	}
	exit(ExitCode(err))
}

// ExitCode returns the exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *UserError
	if stderrors.As(err, &ue) {
		return ue.ExitCode
	}
	return ExitInternal
}

// Write prints err in human readable form.
func Write(w io.Writer, err error) {
	var ue *UserError
	if !stderrors.As(err, &ue) {
		_, _ = ui.Red.Fprintf(w, "Error: %v\n", err)
		return
	}
	_, _ = ui.Red.Fprintf(w, "Error: %s\n", ue.Title)
	if ue.Detail != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", ue.Detail)
	}
	if ue.Cause != nil {
		_, _ = ui.Dim.Fprintf(w, "  Cause: %v\n", ue.Cause)
	}
	if ue.Hint != "" {
		_, _ = ui.Yellow.Fprintf(w, "  Hint: %s\n", ue.Hint)
	}
}

type jsonError struct {
	Error    string `json:"error"`
	Detail   string `json:"detail,omitempty"`
	Hint     string `json:"hint,omitempty"`
	Cause    string `json:"cause,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// WriteJSON prints err as a single JSON object.
func WriteJSON(w io.Writer, err error) {
	out := jsonError{Error: err.Error(), ExitCode: ExitCode(err)}
	var ue *UserError
	if stderrors.As(err, &ue) {
		out.Error = ue.Title
		out.Detail = ue.Detail
		out.Hint = ue.Hint
		if ue.Cause != nil {
			out.Cause = ue.Cause.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
