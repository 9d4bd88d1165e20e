/*
 * errors.go, part of msms-wrapper.
 *
 * Copyright 2026 The msms-wrapper authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package msms

import (
	"errors"
	"fmt"
	"strings"
)

// The error kinds. Every error returned by this package matches exactly one
// of them with errors.Is.
var (
	ErrNotAvailable    = errors.New("msms program not available")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownOption   = errors.New("unknown option")
	ErrExecutionFailed = errors.New("msms execution failed")
	ErrMalformedOutput = errors.New("malformed msms output")
	ErrTimedOut        = errors.New("msms run timed out")
)

// Error is the concrete error type of the package. Besides the kind, it carries
// whatever context is needed to diagnose a failed surface calculation without
// re-running it: the offending file and line for parsing problems, the exit
// status and the captured output for failed runs.
type Error struct {
	kind     error
	message  string
	filename string
	line     int //1-based, 0 if not applicable
	status   int
	output   string
	cause    error
	deco     []string
}

func newError(kind error, message string, deco ...string) *Error {
	return &Error{kind: kind, message: message, deco: deco}
}

// Error returns a string with an error message.
func (err *Error) Error() string {
	var b strings.Builder
	b.WriteString(err.kind.Error())
	if err.filename != "" {
		b.WriteString(" (" + err.filename)
		if err.line > 0 {
			fmt.Fprintf(&b, ":%d", err.line)
		}
		b.WriteString(")")
	}
	if err.message != "" {
		b.WriteString(": " + err.message)
	}
	if err.cause != nil {
		b.WriteString(": " + err.cause.Error())
	}
	if err.kind == ErrExecutionFailed {
		fmt.Fprintf(&b, " [exit status %d]", err.status)
		if out := strings.TrimSpace(err.output); out != "" {
			b.WriteString("\n" + out)
		}
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to see both the kind of the error
// and the underlying cause, if any.
func (err *Error) Unwrap() []error {
	if err.cause == nil {
		return []error{err.kind}
	}
	return []error{err.kind, err.cause}
}

// Decorate adds dec to the list of callers the error went through
// and returns the resulting list. An empty dec just returns the list.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// FileName returns the file associated with the error, or an empty string.
func (err *Error) FileName() string { return err.filename }

// Line returns the 1-based line of FileName where the problem was found,
// or 0.
func (err *Error) Line() int { return err.line }

// ExitStatus returns the exit status of the failed msms process. It is only
// meaningful for ErrExecutionFailed errors.
func (err *Error) ExitStatus() int { return err.status }

// Output returns the combined stdout and stderr captured from msms, if any.
func (err *Error) Output() string { return err.output }

// errDecorate decorates err with caller if it is an *Error, and returns it.
func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}

func malformed(filename string, line int, format string, args ...any) *Error {
	e := newError(ErrMalformedOutput, fmt.Sprintf(format, args...))
	e.filename = filename
	e.line = line
	return e
}
