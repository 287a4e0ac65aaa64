// Package golang renders syntax trees as Go source using Jennifer.
//
// Swift-shaped constructs are lowered to Go idioms: static members become
// package-level identifiers prefixed with their type name, initializers
// become New<Type> constructors, protocols become interfaces, test suites
// become a struct plus a single Test<Suite> runner, and do/catch and try
// become explicit error checks. Constructs with no Go equivalent are
// rejected with a *syntax.RenderError.
package golang

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/syssam/forge/compiler/naming"
	"github.com/syssam/forge/compiler/syntax"
)

// Import paths of the packages the lowered code refers to.
const (
	assertPkg  = "github.com/stretchr/testify/assert"
	embedPkg   = "embed"
	fmtPkg     = "fmt"
	pathPkg    = "path"
	runtimePkg = "runtime"
	slicesPkg  = "slices"
	syncPkg    = "sync"
	testingPkg = "testing"
)

// Backend renders files as Go source.
type Backend struct {
	pkg     string
	modules map[string]string
}

// New returns a Go back end emitting package pkg. The modules table maps
// logical module names to import paths; types of unmapped modules are
// referenced as declared in pkg itself.
func New(pkg string, modules map[string]string) *Backend {
	m := make(map[string]string, len(modules))
	for k, v := range modules {
		m[k] = v
	}
	return &Backend{pkg: pkg, modules: m}
}

// Name returns the language name.
func (*Backend) Name() string { return "go" }

// Ext returns the source file extension.
func (*Backend) Ext() string { return ".go" }

// Render serializes f. Declared imports of f are ignored; imports are
// derived from qualified references.
func (b *Backend) Render(f *syntax.File) ([]byte, error) {
	if err := syntax.Check(f); err != nil {
		return nil, err
	}
	r := newRenderer(b, f)
	jf := jen.NewFile(b.pkg)
	if f.Header != nil {
		lines := make([]string, len(f.Header.Lines))
		for i, l := range f.Header.Lines {
			lines[i] = strings.TrimSpace("// " + l)
		}
		jf.HeaderComment(strings.Join(lines, "\n"))
	}
	for _, d := range f.Decls {
		r.decl(jf.Group, d)
	}
	if r.resources {
		r.resourceHelper(jf.Group)
	}
	if r.err != nil {
		return nil, r.err
	}
	var buf bytes.Buffer
	if err := jf.Render(&buf); err != nil {
		return nil, syntax.Errorf("file "+f.Name, "format: %v", err)
	}
	out, err := imports.Process(f.Name, buf.Bytes(), nil)
	if err != nil {
		return nil, syntax.Errorf("file "+f.Name, "imports: %v", err)
	}
	if out, err = separateDecls(f.Name, out); err != nil {
		return nil, syntax.Errorf("file "+f.Name, "parse: %v", err)
	}
	return out, nil
}

// separateDecls inserts a blank line before every top-level declaration
// (and its doc comment) that directly follows the previous one.
func separateDecls(name string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	af, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	tf := fset.File(af.Pos())
	var at []int
	for i, d := range af.Decls {
		if i == 0 {
			continue
		}
		start := d.Pos()
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
		case *ast.GenDecl:
			if d.Doc != nil {
				start = d.Doc.Pos()
			}
		}
		line := tf.Line(start)
		if line < 2 {
			continue
		}
		prev := src[tf.Offset(tf.LineStart(line-1)):tf.Offset(tf.LineStart(line))]
		if len(bytes.TrimSpace(prev)) > 0 {
			at = append(at, tf.Offset(tf.LineStart(line)))
		}
	}
	if len(at) == 0 {
		return src, nil
	}
	out := make([]byte, 0, len(src)+len(at))
	last := 0
	for _, off := range at {
		out = append(out, src[last:off]...)
		out = append(out, '\n')
		last = off
	}
	return append(out, src[last:]...), nil
}

// typeInfo holds a type declared in the rendered file with the members of
// its declaration and of its extensions.
type typeInfo struct {
	decl    *syntax.TypeDecl
	members map[string]syntax.Decl
	init    bool
}

func (t *typeInfo) suite() bool { return t != nil && t.decl.Kind == syntax.KindTestSuite }

// member returns the member declared as name, or nil.
func (t *typeInfo) member(name string) syntax.Decl {
	if t == nil {
		return nil
	}
	return t.members[name]
}

type renderer struct {
	b     *Backend
	types map[string]*typeInfo
	// resources is set once a resource lookup is rendered.
	resources bool
	err       error
}

func newRenderer(b *Backend, f *syntax.File) *renderer {
	r := &renderer{b: b, types: make(map[string]*typeInfo)}
	for _, d := range f.Decls {
		if t, ok := d.(*syntax.TypeDecl); ok {
			info := &typeInfo{decl: t, members: make(map[string]syntax.Decl)}
			r.types[t.Name] = info
			r.addMembers(info, t.Members)
		}
	}
	for _, d := range f.Decls {
		if e, ok := d.(*syntax.ExtensionDecl); ok {
			if info := r.local(e.Of); info != nil {
				r.addMembers(info, e.Members)
			}
		}
	}
	return r
}

func (r *renderer) addMembers(info *typeInfo, members []syntax.Decl) {
	for _, m := range members {
		switch m := m.(type) {
		case *syntax.FuncDecl:
			if m.IsInit {
				info.init = true
				continue
			}
			info.members[m.Name] = m
		case *syntax.PropertyDecl:
			info.members[m.Name] = m
		}
	}
}

// local returns the declaration of t when t is declared in the rendered file.
func (r *renderer) local(t *syntax.Type) *typeInfo {
	if t == nil || t.Module != "" && r.b.modules[t.Module] != "" || t.Name == "" {
		return nil
	}
	return r.types[t.Name]
}

// fail records the first error; rendering continues with placeholder code
// so that callers need no error plumbing.
func (r *renderer) fail(node, format string, args ...any) *jen.Statement {
	if r.err == nil {
		r.err = syntax.Errorf(node, format, args...)
	}
	return jen.Null()
}

// Identifier helpers.

var keywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

// localName returns the Go spelling of a local variable or parameter.
func localName(name string) string {
	switch {
	case name == syntax.ErrName:
		return "err"
	case keywords[name]:
		return name + "_"
	}
	return name
}

func exported(name string) string {
	if s := naming.Pascal(name); s != "" {
		return s
	}
	return name
}

func unexported(name string) string {
	if s := naming.Camel(name); s != "" && !keywords[s] {
		return s
	}
	return localName(name)
}

// memberName returns the Go name of a member with the given access.
func memberName(name string, a syntax.Access) string {
	if a == syntax.Private {
		return unexported(name)
	}
	return exported(name)
}

// staticName returns the package-level name of a static member of owner.
func staticName(owner, member string, a syntax.Access) string {
	full := owner + exported(member)
	if a == syntax.Private {
		return unexported(full)
	}
	return full
}
