package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiWhite = "\033[37m"
	ansiGray  = "\033[90m"
	ansiBold  = "\033[1m"
)

var noColor atomic.Bool

// DisableColors turns off ANSI styling in Format.
func DisableColors() { noColor.Store(true) }

// EnableColors turns ANSI styling back on.
func EnableColors() { noColor.Store(false) }

func paint(text string, codes ...string) string {
	if noColor.Load() || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + ansiReset
}

// Format renders the error as a multi-line terminal report.
func (e *Error) Format() string {
	var b strings.Builder
	line := func(indent, s string) {
		b.WriteString(indent)
		b.WriteString(s)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if e.Code != "" {
		line("", paint("ERROR ", ansiRed, ansiBold)+paint(e.Code+": ", ansiWhite, ansiBold)+paint(e.Message, ansiWhite))
	} else {
		line("", paint("ERROR: ", ansiRed, ansiBold)+paint(e.Message, ansiWhite))
	}
	b.WriteByte('\n')

	if e.Location != nil {
		line("  ", paint(e.Location.String(), ansiCyan))
		b.WriteByte('\n')
		for _, src := range e.Source {
			gutter := fmt.Sprintf("%4d", src.Number) + paint(" │ ", ansiGray)
			if src.Number != e.Location.Line {
				line("    ", gutter+src.Text)
				continue
			}
			line("  "+paint("→ ", ansiRed), gutter+src.Text)
			if e.Location.Column > 0 {
				line("       ", paint("│ ", ansiGray)+strings.Repeat(" ", e.Location.Column-1)+paint("^", ansiRed))
			}
		}
		if len(e.Source) > 0 {
			b.WriteByte('\n')
		}
	}

	switch {
	case strings.Contains(e.Detail, "\n"):
		for _, l := range strings.Split(strings.TrimRight(e.Detail, "\n"), "\n") {
			line("  ", paint(l, ansiGray))
		}
		b.WriteByte('\n')
	case e.Detail != "":
		for _, l := range wrapText(e.Detail, 70) {
			line("  ", l)
		}
		b.WriteByte('\n')
	}

	if e.Suggestion != "" {
		line("  ", paint("Hint: ", ansiCyan)+e.Suggestion)
		b.WriteByte('\n')
	}
	if e.Wrapped != nil {
		line("  ", paint("Caused by: ", ansiGray)+e.Wrapped.Error())
	}
	return b.String()
}

// FormatCompact renders "file:line: CODE: message" on one line.
func (e *Error) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

type jsonError struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Cause      string        `json:"cause,omitempty"`
}

// FormatJSON renders the error as a single JSON object.
func (e *Error) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Location != nil {
		out.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Error())
	}
	return string(data)
}

// wrapText breaks text on spaces so no line exceeds width, unless a single
// word does.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	lines := []string{words[0]}
	for _, w := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(w) > width {
			lines = append(lines, w)
			continue
		}
		*last += " " + w
	}
	return lines
}

// PrintError writes Format(err) to stderr.
func PrintError(err error) {
	fmt.Fprint(os.Stderr, Format(err))
}

// Format renders any error for a terminal. Errors without an *Error in
// their chain get a plain header.
func Format(err error) string {
	if e, ok := As(err); ok {
		return e.Format()
	}
	return "\n" + paint("ERROR:", ansiRed, ansiBold) + " " + err.Error() + "\n\n"
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// Trace renders err like Format but without color codes, for plain-text
// sinks such as HTTP response bodies.
func Trace(err error) string {
	return strings.TrimSpace(ansiEscape.ReplaceAllString(Format(err), ""))
}
