package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"hydration error", CodeHydrationMismatch, "Hydration mismatch", CategoryHydration},
		{"compile error", CodeTransformParse, "Cannot parse module after removing directive", CategoryCompile},
		{"runtime error", CodeComponentPanic, "Component panicked during render", CategoryRuntime},
		{"unknown error code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeRenderFailed)
	if got, want := err.Error(), "E200: Render failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New(CodeRouteLoadFailed).Wrap(fmt.Errorf("disk gone"))
	if got, want := wrapped.Error(), "E201: Route module failed to load: disk gone"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "no code"}
	if plain.Error() != "no code" {
		t.Errorf("Error() = %q", plain.Error())
	}
}

func TestUnwrapAndFromError(t *testing.T) {
	base := stderrors.New("root cause")
	err := New(CodeRenderFailed).Wrap(base)
	if !stderrors.Is(err, base) {
		t.Error("errors.Is should find the wrapped error")
	}

	chained := fmt.Errorf("outer: %w", err)
	if got := FromError(chained, CodeScanFailed); got != err {
		t.Errorf("FromError should return the *Error in the chain, got %v", got)
	}
	if !HasCode(chained, CodeRenderFailed) || HasCode(chained, CodeScanFailed) {
		t.Error("HasCode mismatch")
	}

	fresh := FromError(base, CodeScanFailed)
	if fresh.Code != CodeScanFailed || fresh.Wrapped != base {
		t.Errorf("FromError(plain) = %+v", fresh)
	}
	if FromError(nil, CodeScanFailed) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestWithLocationReadsContext(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Counter.go")
	src := "package x\n\nvar A = 1\nvar B = 2\nvar C = 3\n"
	if err := os.WriteFile(file, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New(CodeTransformParse).WithLocation(file, 3, 5)
	if err.Location.String() != file+":3:5" {
		t.Errorf("Location = %q", err.Location.String())
	}
	if len(err.Source) != 5 || err.Source[0].Number != 1 || err.Source[2].Text != "var A = 1" {
		t.Errorf("Source = %+v", err.Source)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeComponentPanic).
		WithDetail("goroutine 1 [running]:\nmain.main()").
		WithSuggestion("check the component").
		Wrap(stderrors.New("nil map"))

	out := err.Format()
	for _, want := range []string{
		"ERROR E202: Component panicked during render",
		"goroutine 1 [running]:",
		"main.main()",
		"Hint: check the component",
		"Caused by: nil map",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	if got := Format(stderrors.New("plain")); !strings.Contains(got, "ERROR: plain") {
		t.Errorf("Format(plain) = %q", got)
	}
}

func TestFormatCompactAndJSON(t *testing.T) {
	err := New(CodeTransformParse).Wrap(stderrors.New("expected ';'"))
	err.Location = &Location{File: "a.go", Line: 2}

	if got, want := err.FormatCompact(), "a.go:2: E100: Cannot parse module after removing directive"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
	js := err.FormatJSON()
	for _, want := range []string{`"code":"E100"`, `"category":"compile"`, `"cause":"expected ';'"`} {
		if !strings.Contains(js, want) {
			t.Errorf("FormatJSON() missing %s: %s", want, js)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}

func TestAllCodesRegistered(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
	}
}

func TestTraceHasNoColor(t *testing.T) {
	EnableColors()
	err := New(CodeRenderFailed).WithSuggestion("check the page").Wrap(stderrors.New("boom"))

	out := Trace(err)
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Trace() kept color codes: %q", out)
	}
	for _, want := range []string{"E200", "check the page", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("Trace() = %q, missing %q", out, want)
		}
	}
	if got := Trace(stderrors.New("plain")); got != "ERROR: plain" {
		t.Errorf("Trace(plain) = %q", got)
	}
}
