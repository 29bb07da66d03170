package directive

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/open-rsc/openrsc/internal/errors"
	"github.com/open-rsc/openrsc/pkg/vdom"
)

// VDOMImportPath is the import path the generated registration refers to.
const VDOMImportPath = "github.com/open-rsc/openrsc/pkg/vdom"

// GeneratedMarker precedes the generated registration. A file containing it
// is never transformed again.
const GeneratedMarker = "// openrsc:registration (generated, do not edit)"

// Options configures Transform.
type Options struct {
	// Root is the project root tags are relative to. Defaults to the
	// working directory.
	Root string

	// Extensions lists the file extensions the tagger applies to.
	// Defaults to [".go"].
	Extensions []string
}

func (o Options) withDefaults() (Options, error) {
	if o.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return o, fmt.Errorf("resolving working directory: %w", err)
		}
		o.Root = wd
	}
	if len(o.Extensions) == 0 {
		o.Extensions = []string{".go"}
	}
	return o, nil
}

func (o Options) applies(path string) bool {
	if strings.HasSuffix(path, "_test.go") {
		return false
	}
	return slices.Contains(o.Extensions, filepath.Ext(path))
}

// Registration records which export of which module was tagged.
type Registration struct {
	ModuleID string `json:"moduleId"`
	Export   string `json:"export"`
	Package  string `json:"package"`
	File     string `json:"file"`
}

// Result is the outcome of Transform.
type Result struct {
	// Code is the output source. It equals the input when Changed is false.
	Code []byte

	// Changed reports whether the source was rewritten.
	Changed bool

	// Registration is set when the module's export is (or already was)
	// tagged.
	Registration *Registration

	// Warnings are non-fatal findings, such as a directive without any
	// export to tag.
	Warnings []string
}

// Transform tags a client module. If src contains the client directive it
// is removed and an init function registering the module's default export
// under its module ID is appended. Sources without the directive, files
// with other extensions and already-tagged files are returned unchanged.
func Transform(src []byte, path string, opts Options) (Result, error) {
	unchanged := Result{Code: src}

	opts, err := opts.withDefaults()
	if err != nil {
		return unchanged, err
	}
	if !opts.applies(path) {
		return unchanged, nil
	}

	if bytes.Contains(src, []byte(GeneratedMarker)) {
		unchanged.Registration = existingRegistration(src, path)
		return unchanged, nil
	}
	if !vdom.ContainsDirective(string(src)) {
		return unchanged, nil
	}

	moduleID, err := ModuleID(opts.Root, path)
	if err != nil {
		return unchanged, err
	}

	stripped := stripDirective(src)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, stripped, parser.ParseComments)
	if err != nil {
		return unchanged, parseError(path, err)
	}

	export := defaultExport(file)
	if export == "" {
		out, err := format.Source(stripped)
		if err != nil {
			out = stripped
		}
		return Result{
			Code:     out,
			Changed:  true,
			Warnings: []string{fmt.Sprintf("%s: client directive found but no exported package-level variable to tag", path)},
		}, nil
	}

	qualifier := ensureVDOMImport(fset, file)

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return unchanged, errors.New(errors.CodeTransformParse).
			WithDetailf("printing %s failed", path).
			Wrap(err)
	}
	buf.WriteString("\n")
	buf.WriteString(GeneratedMarker)
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "func init() { %sTag(%s, %s) }\n", qualifier, export, strconv.Quote(moduleID))

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return unchanged, parseError(path, err)
	}

	return Result{
		Code:    out,
		Changed: true,
		Registration: &Registration{
			ModuleID: moduleID,
			Export:   export,
			Package:  file.Name.Name,
			File:     path,
		},
	}, nil
}

// ModuleID returns the tag for the file at path: its path relative to root
// with forward slashes and a leading "/".
func ModuleID(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", fmt.Errorf("relating %q to %q: %w", path, root, err)
	}
	return "/" + filepath.ToSlash(rel), nil
}

// stripDirective removes the first occurrence of each quoted spelling of the
// directive. A line left holding nothing but "//" or ";" is dropped.
func stripDirective(src []byte) []byte {
	out := src
	for _, lit := range vdom.DirectiveLiterals {
		i := bytes.Index(out, []byte(lit))
		if i < 0 {
			continue
		}
		lineStart := bytes.LastIndexByte(out[:i], '\n') + 1
		lineEnd := len(out)
		if j := bytes.IndexByte(out[i:], '\n'); j >= 0 {
			lineEnd = i + j + 1
		}

		rest := make([]byte, 0, len(out))
		rest = append(rest, out[:i]...)
		rest = append(rest, out[i+len(lit):]...)

		line := bytes.TrimSpace(rest[lineStart : lineEnd-len(lit)])
		if len(line) == 0 || bytes.Equal(line, []byte("//")) || bytes.Equal(line, []byte(";")) {
			rest = append(rest[:lineStart], rest[lineEnd-len(lit):]...)
		}
		out = rest
	}
	return out
}

// defaultExport picks the variable to tag: Default if this file declares
// it, otherwise the first exported package-level variable.
func defaultExport(file *ast.File) string {
	first := ""
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, name := range vs.Names {
				if name.Name == "Default" {
					return name.Name
				}
				if first == "" && name.IsExported() {
					first = name.Name
				}
			}
		}
	}
	return first
}

// ensureVDOMImport returns the qualifier (with trailing dot) for the vdom
// package, adding the import when the file lacks it.
func ensureVDOMImport(fset *token.FileSet, file *ast.File) string {
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != VDOMImportPath {
			continue
		}
		if imp.Name == nil {
			return "vdom."
		}
		switch imp.Name.Name {
		case ".":
			return ""
		case "_":
			continue
		default:
			return imp.Name.Name + "."
		}
	}
	astutil.AddImport(fset, file, VDOMImportPath)
	return "vdom."
}

// existingRegistration recovers the registration from an already-tagged file.
func existingRegistration(src []byte, path string) *Registration {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return nil
	}
	var reg *Registration
	ast.Inspect(file, func(n ast.Node) bool {
		if reg != nil {
			return false
		}
		fn, ok := n.(*ast.FuncDecl)
		if ok && fn.Name.Name == "init" && fn.Recv == nil && fn.Body != nil {
			reg = registrationIn(fn.Body)
			if reg != nil {
				reg.Package = file.Name.Name
				reg.File = path
			}
			return false
		}
		return true
	})
	return reg
}

func registrationIn(body *ast.BlockStmt) *Registration {
	for _, stmt := range body.List {
		es, ok := stmt.(*ast.ExprStmt)
		if !ok {
			continue
		}
		call, ok := es.X.(*ast.CallExpr)
		if !ok || len(call.Args) != 2 {
			continue
		}
		var fnName string
		switch f := call.Fun.(type) {
		case *ast.SelectorExpr:
			fnName = f.Sel.Name
		case *ast.Ident:
			fnName = f.Name
		}
		export, ok1 := call.Args[0].(*ast.Ident)
		lit, ok2 := call.Args[1].(*ast.BasicLit)
		if fnName != "Tag" || !ok1 || !ok2 || lit.Kind != token.STRING {
			continue
		}
		id, err := strconv.Unquote(lit.Value)
		if err != nil {
			continue
		}
		return &Registration{ModuleID: id, Export: export.Name}
	}
	return nil
}

func parseError(path string, err error) error {
	e := errors.New(errors.CodeTransformParse).
		WithSuggestion(`Put the directive in a comment of its own, e.g. //"use client"`).
		Wrap(err)
	var list scanner.ErrorList
	if stderrors.As(err, &list) && len(list) > 0 {
		e.Location = &errors.Location{File: path, Line: list[0].Pos.Line, Column: list[0].Pos.Column}
	}
	return e
}
