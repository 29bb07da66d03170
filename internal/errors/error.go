package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Category groups codes by the stage that produced them.
type Category string

const (
	CategoryCompile   Category = "compile"
	CategoryRuntime   Category = "runtime"
	CategoryHydration Category = "hydration"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Location points into a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l *Location) String() string {
	switch {
	case l == nil:
		return ""
	case l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	default:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
}

// SourceLine is one numbered line of the snippet around a Location.
type SourceLine struct {
	Number int
	Text   string
}

// Error is a coded error. Everything but Code and Message is optional.
type Error struct {
	Code     string
	Category Category
	Message  string

	// Detail is printed verbatim when it spans lines, which is how
	// recovered panics carry their stack.
	Detail string

	Location *Location
	Source   []SourceLine

	Suggestion string
	Wrapped    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Wrapped }

// WithLocation records where the error happened and captures the
// surrounding lines of the file, if it can be read.
func (e *Error) WithLocation(file string, line, column int) *Error {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Source = snippet(file, line, 2)
	return e
}

func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

func (e *Error) WithDetailf(format string, args ...any) *Error {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// snippet returns up to radius lines on each side of line.
func snippet(file string, line, radius int) []SourceLine {
	data, err := os.ReadFile(file)
	if err != nil || line < 1 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	first := max(line-radius, 1)
	last := min(line+radius, len(lines))

	out := make([]SourceLine, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, SourceLine{Number: n, Text: lines[n-1]})
	}
	return out
}

// New returns an Error filled from the registered template for code.
func New(code string) *Error {
	t, ok := registry[code]
	if !ok {
		return &Error{Code: code, Message: "Unknown error"}
	}
	return &Error{Code: code, Category: t.Category, Message: t.Message, Detail: t.Detail}
}

// FromError returns the *Error already in err's chain, or wraps err in a
// new one with the given code.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return New(code).Wrap(err)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// HasCode reports whether err carries an *Error with the given code.
func HasCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
