// Package swift renders syntax trees as Swift source.
package swift

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/syssam/forge/compiler/syntax"
)

// Logical modules the back end imports on its own.
const (
	// Foundation provides Data and Bundle.
	Foundation = "foundation"
	// XCTest provides XCTestCase and the assertions.
	XCTest = "xctest"
)

// DefaultModules maps the logical modules of the back end itself.
var DefaultModules = map[string]string{
	Foundation: "Foundation",
	XCTest:     "XCTest",
}

// Backend renders files as Swift source with four-space indentation.
type Backend struct {
	modules map[string]string
}

// New returns a Swift back end. The modules table maps logical module
// names to Swift module names; unmapped modules are imported as named.
func New(modules map[string]string) *Backend {
	m := make(map[string]string, len(DefaultModules)+len(modules))
	for k, v := range DefaultModules {
		m[k] = v
	}
	for k, v := range modules {
		m[k] = v
	}
	return &Backend{modules: m}
}

// Name returns the language name.
func (*Backend) Name() string { return "swift" }

// Ext returns the source file extension.
func (*Backend) Ext() string { return ".swift" }

// Render serializes f. Rendering is pure: the same tree always yields the
// same bytes.
func (b *Backend) Render(f *syntax.File) ([]byte, error) {
	if err := syntax.Check(f); err != nil {
		return nil, err
	}
	p := &printer{}
	if f.Header != nil {
		for _, l := range f.Header.Lines {
			if l == "" {
				p.emitLine("//")
			} else {
				p.emitLine("//  " + l)
			}
		}
		p.emitLine("")
	}
	if imports := b.imports(f); len(imports) > 0 {
		for _, i := range imports {
			p.emitLine(i)
		}
		p.emitLine("")
	}
	var decls []syntax.Decl
	for _, d := range f.Decls {
		if _, ok := d.(*syntax.ImportDecl); !ok {
			decls = append(decls, d)
		}
	}
	for i, d := range decls {
		if i > 0 {
			p.emitLine("")
		}
		p.decl(d, nil)
	}
	if usesResources(f) {
		p.emitLine("")
		p.emitLine("private final class BundleToken {}")
	}
	return []byte(p.sb.String()), nil
}

// imports resolves the import lines of f: declared imports plus the modules
// of referenced types, deduplicated with testable imports taking precedence
// and sorted by module name.
func (b *Backend) imports(f *syntax.File) []string {
	testable := make(map[string]bool)
	add := func(module string, t bool) {
		name := module
		if m, ok := b.modules[module]; ok {
			name = m
		}
		if name == "" {
			return
		}
		testable[name] = testable[name] || t
	}
	for _, i := range f.Imports {
		add(i.Module, i.Testable)
	}
	for _, d := range f.Decls {
		if i, ok := d.(*syntax.ImportDecl); ok {
			add(i.Module, i.Testable)
		}
	}
	for _, m := range syntax.Modules(f) {
		add(m, false)
	}
	if usesResources(f) || slices.ContainsFunc(syntax.Types(f), usesBytes) {
		add(Foundation, false)
	}
	if usesXCTest(f) {
		add(XCTest, false)
	}
	names := make([]string, 0, len(testable))
	for name := range testable {
		names = append(names, name)
	}
	slices.Sort(names)
	lines := make([]string, len(names))
	for i, name := range names {
		if testable[name] {
			lines[i] = "@testable import " + name
		} else {
			lines[i] = "import " + name
		}
	}
	return lines
}

func usesBytes(t *syntax.Type) bool {
	if t == nil {
		return false
	}
	if t.Builtin == syntax.BuiltinBytes {
		return true
	}
	return usesBytes(t.Elem) || slices.ContainsFunc(t.Args, usesBytes)
}

func usesResources(f *syntax.File) bool {
	return syntax.Contains(f, func(n syntax.Node) bool {
		_, ok := n.(*syntax.ResourceExpr)
		return ok
	})
}

func usesXCTest(f *syntax.File) bool {
	return syntax.Contains(f, func(n syntax.Node) bool {
		switch n := n.(type) {
		case *syntax.TypeDecl:
			return n.Kind == syntax.KindTestSuite
		case *syntax.FailStmt, *syntax.AssertStmt:
			return true
		}
		return false
	})
}

type printer struct {
	sb     strings.Builder
	indent int
}

func (p *printer) emitLine(s string) {
	if s == "" {
		p.sb.WriteString("\n")
		return
	}
	p.sb.WriteString(strings.Repeat("    ", p.indent))
	p.sb.WriteString(s)
	p.sb.WriteString("\n")
}

func (p *printer) emitLinef(format string, args ...any) {
	p.emitLine(fmt.Sprintf(format, args...))
}

func (p *printer) incIndent() { p.indent++ }
func (p *printer) decIndent() { p.indent-- }

// block emits head, the body one level deeper, and a closing brace.
func (p *printer) block(head string, body func()) {
	p.emitLine(head + " {")
	p.incIndent()
	body()
	p.decIndent()
	p.emitLine("}")
}

func (p *printer) doc(lines []string) {
	for _, l := range lines {
		p.emitLine(strings.TrimSpace("/// " + l))
	}
}

// decl emits d. Members of protocols are emitted as requirements.
func (p *printer) decl(d syntax.Decl, owner *syntax.TypeDecl) {
	switch d := d.(type) {
	case *syntax.CommentDecl:
		p.comment(d)
	case *syntax.TypeDecl:
		p.typeDecl(d)
	case *syntax.ExtensionDecl:
		p.extension(d)
	case *syntax.FuncDecl:
		p.function(d, owner)
	case *syntax.PropertyDecl:
		p.property(d, owner)
	case *syntax.VariableDecl:
		p.emitLine(p.variable(d))
	}
}

func (p *printer) comment(c *syntax.CommentDecl) {
	for _, l := range c.Lines {
		p.emitLine(strings.TrimSpace("// " + l))
	}
}

func (p *printer) typeDecl(t *syntax.TypeDecl) {
	p.doc(t.Doc)
	var head strings.Builder
	head.WriteString(access(t.Access))
	if t.Final {
		head.WriteString("final ")
	}
	inherits := t.Inherits
	switch t.Kind {
	case syntax.KindClass:
		head.WriteString("class ")
	case syntax.KindTestSuite:
		head.WriteString("class ")
		inherits = append([]*syntax.Type{syntax.Named("XCTestCase")}, inherits...)
	case syntax.KindStruct:
		head.WriteString("struct ")
	case syntax.KindProtocol:
		head.WriteString("protocol ")
	case syntax.KindEnum:
		head.WriteString("enum ")
	}
	head.WriteString(t.Name)
	head.WriteString(inheritance(inherits))
	if len(t.Cases) == 0 && len(t.Members) == 0 {
		p.emitLine(head.String() + " {}")
		return
	}
	p.block(head.String(), func() {
		for _, c := range t.Cases {
			p.emitLine("case " + ident(c))
		}
		for i, m := range t.Members {
			if i > 0 || len(t.Cases) > 0 {
				p.emitLine("")
			}
			p.decl(m, t)
		}
	})
}

func (p *printer) extension(e *syntax.ExtensionDecl) {
	head := access(e.Access) + "extension " + typ(e.Of) + inheritance(e.Inherits)
	if len(e.Where) > 0 {
		clauses := make([]string, len(e.Where))
		for i, w := range e.Where {
			op := " == "
			if w.Kind == syntax.Conforms {
				op = ": "
			}
			clauses[i] = typ(w.Left) + op + typ(w.Right)
		}
		head += " where " + strings.Join(clauses, ", ")
	}
	if len(e.Members) == 0 {
		p.emitLine(head + " {}")
		return
	}
	p.block(head, func() {
		for i, m := range e.Members {
			if i > 0 {
				p.emitLine("")
			}
			p.decl(m, nil)
		}
	})
}

func (p *printer) function(f *syntax.FuncDecl, owner *syntax.TypeDecl) {
	p.doc(f.Doc)
	var head strings.Builder
	head.WriteString(access(f.Access))
	if f.Override {
		head.WriteString("override ")
	}
	if f.Static {
		head.WriteString("static ")
	}
	if f.IsInit {
		head.WriteString("init")
	} else {
		head.WriteString("func " + ident(f.Name))
	}
	params := make([]string, len(f.Params))
	for i, prm := range f.Params {
		params[i] = param(prm)
	}
	head.WriteString("(" + strings.Join(params, ", ") + ")")
	if f.Async {
		head.WriteString(" async")
	}
	if f.Throws {
		head.WriteString(" throws")
	}
	if f.Result != nil && f.Result.Builtin != syntax.BuiltinVoid {
		head.WriteString(" -> " + typ(f.Result))
	}
	if !f.HasBody() || owner != nil && owner.Kind == syntax.KindProtocol {
		p.emitLine(head.String())
		return
	}
	p.block(head.String(), func() { p.stmts(f.Body) })
}

func param(prm syntax.Param) string {
	s := ident(prm.Name) + ": " + typ(prm.Type)
	switch prm.Label {
	case "", prm.Name:
	default:
		s = prm.Label + " " + s
	}
	if prm.Default != nil {
		s += " = " + shorthand(prm.Default)
	}
	return s
}

func (p *printer) property(v *syntax.PropertyDecl, owner *syntax.TypeDecl) {
	p.doc(v.Doc)
	head := access(v.Access)
	if v.Static {
		head += "static "
	}
	decl := ident(v.Name) + ": " + typ(v.Type)
	switch {
	case owner != nil && owner.Kind == syntax.KindProtocol:
		accessors := "{ get }"
		if v.Mutable {
			accessors = "{ get set }"
		}
		p.emitLinef("%svar %s %s", head, decl, accessors)
	case v.Lazy:
		p.emitLinef("%slazy var %s = {", head, decl)
		p.incIndent()
		p.stmts(v.Getter)
		p.decIndent()
		p.emitLine("}()")
	case v.Computed() && v.Setter == nil:
		p.block(head+"var "+decl, func() { p.stmts(v.Getter) })
	case v.Computed():
		p.block(head+"var "+decl, func() {
			p.block("get", func() { p.stmts(v.Getter) })
			p.block("set", func() { p.stmts(v.Setter) })
		})
	default:
		kw := "let "
		if v.Mutable {
			kw = "var "
		}
		line := head + kw + decl
		if v.Value != nil {
			line += " = " + expr(v.Value)
		}
		p.emitLine(line)
	}
}

func (p *printer) variable(v *syntax.VariableDecl) string {
	s := "let "
	if v.Mutable {
		s = "var "
	}
	s += ident(v.Name)
	if v.Type != nil {
		s += ": " + typ(v.Type)
	}
	if v.Value != nil {
		s += " = " + expr(v.Value)
	}
	return s
}

func (p *printer) stmts(stmts []syntax.Stmt) {
	for _, s := range stmts {
		p.stmt(s)
	}
}

func (p *printer) stmt(s syntax.Stmt) {
	switch s := s.(type) {
	case *syntax.CommentDecl:
		p.comment(s)
	case *syntax.VariableDecl:
		p.emitLine(p.variable(s))
	case *syntax.ExprStmt:
		p.emitLine(expr(s.X))
	case *syntax.AssignStmt:
		p.emitLine(expr(s.Target) + " = " + expr(s.Value))
	case *syntax.ReturnStmt:
		if s.Value == nil {
			p.emitLine("return")
		} else {
			p.emitLine("return " + expr(s.Value))
		}
	case *syntax.GuardStmt:
		p.block("guard "+expr(s.Cond)+" else", func() { p.stmts(s.Else) })
	case *syntax.GuardLetStmt:
		p.block("guard let "+ident(s.Name)+" = "+expr(s.Value)+" else", func() { p.stmts(s.Else) })
	case *syntax.DoCatchStmt:
		p.emitLine("do {")
		p.incIndent()
		p.stmts(s.Body)
		p.decIndent()
		if s.Err == syntax.ErrName {
			p.emitLine("} catch {")
		} else {
			p.emitLine("} catch let " + ident(s.Err) + " {")
		}
		p.incIndent()
		p.stmts(s.Handler)
		p.decIndent()
		p.emitLine("}")
	case *syntax.ForInStmt:
		p.block("for "+ident(s.Name)+" in "+expr(s.Seq), func() { p.stmts(s.Body) })
	case *syntax.FailStmt:
		p.emitLine("XCTFail(" + expr(s.Message) + ")")
	case *syntax.AssertStmt:
		switch s.Kind {
		case syntax.AssertEqualKind:
			p.emitLinef("XCTAssertEqual(%s, %s)", expr(s.Got), expr(s.Want))
		case syntax.AssertFalseKind:
			p.emitLinef("XCTAssertFalse(%s)", expr(s.Got))
		}
	case *syntax.FanOutStmt:
		p.fanOut(s)
	}
}

// fanOut emits a task group: every task runs as a child task, the group
// is awaited as a whole and each outcome is folded into the accumulator.
func (p *printer) fanOut(s *syntax.FanOutStmt) {
	acc := ident(s.Var)
	p.emitLinef("var %s = %s", acc, expr(s.Initial))
	p.emitLinef("await withTaskGroup(of: %s.self) { group in", typ(s.Outcome))
	p.incIndent()
	for _, t := range s.Tasks {
		p.emitLinef("group.addTask { %s }", expr(t))
	}
	outcome := "outcome"
	if s.Label != "" {
		outcome = s.Label + ": outcome"
	}
	p.block("for await outcome in group", func() {
		p.emitLinef("%s = %s.%s(%s)", acc, acc, s.Method, outcome)
	})
	p.decIndent()
	p.emitLine("}")
}

func access(a syntax.Access) string {
	switch a {
	case syntax.Private:
		return "private "
	case syntax.Public:
		return "public "
	}
	return ""
}

func inheritance(types []*syntax.Type) string {
	if len(types) == 0 {
		return ""
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = typ(t)
	}
	return ": " + strings.Join(names, ", ")
}

var builtins = [...]string{
	syntax.BuiltinString: "String",
	syntax.BuiltinInt:    "Int",
	syntax.BuiltinBool:   "Bool",
	syntax.BuiltinBytes:  "Data",
	syntax.BuiltinVoid:   "Void",
	syntax.BuiltinError:  "Error",
}

func typ(t *syntax.Type) string {
	var s string
	switch {
	case t.Elem != nil:
		s = "[" + typ(t.Elem) + "]"
	case t.Builtin != syntax.NotBuiltin:
		s = builtins[t.Builtin]
	default:
		s = t.Name
		if len(t.Args) > 0 {
			args := make([]string, len(t.Args))
			for i, a := range t.Args {
				args[i] = typ(a)
			}
			s += "<" + strings.Join(args, ", ") + ">"
		}
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

var keywords = map[string]bool{
	"as": true, "associatedtype": true, "break": true, "case": true, "catch": true,
	"class": true, "continue": true, "default": true, "defer": true, "deinit": true,
	"do": true, "else": true, "enum": true, "extension": true, "fallthrough": true,
	"false": true, "fileprivate": true, "for": true, "func": true, "guard": true,
	"if": true, "import": true, "in": true, "init": true, "inout": true,
	"internal": true, "is": true, "let": true, "nil": true, "operator": true,
	"private": true, "protocol": true, "public": true, "repeat": true,
	"return": true, "self": true, "static": true, "struct": true,
	"subscript": true, "super": true, "switch": true, "throw": true,
	"throws": true, "true": true, "try": true, "typealias": true, "var": true,
	"where": true, "while": true,
}

func ident(name string) string {
	if keywords[name] {
		return "`" + name + "`"
	}
	return name
}

// shorthand renders e, using the implicit member form for enum cases whose
// type is inferred from context.
func shorthand(e syntax.Expr) string {
	if c, ok := e.(*syntax.CaseExpr); ok {
		return "." + c.Name
	}
	return expr(e)
}

func args(as []syntax.Argument) string {
	out := make([]string, len(as))
	for i, a := range as {
		if a.Label != "" {
			out[i] = a.Label + ": " + shorthand(a.Value)
		} else {
			out[i] = shorthand(a.Value)
		}
	}
	return strings.Join(out, ", ")
}

// operand renders e as the target of a postfix member access.
func operand(e syntax.Expr) string {
	switch e.(type) {
	case *syntax.BinaryExpr, *syntax.NotExpr, *syntax.TryExpr, *syntax.AwaitExpr, *syntax.ConcatExpr:
		return "(" + expr(e) + ")"
	}
	return expr(e)
}

func expr(e syntax.Expr) string {
	switch e := e.(type) {
	case *syntax.Ident:
		return ident(e.Name)
	case *syntax.SelfExpr:
		return "self"
	case *syntax.TypeExpr:
		return typ(e.Type)
	case *syntax.LitExpr:
		return literal(e.Value)
	case *syntax.StrExpr:
		var b strings.Builder
		b.WriteByte('"')
		for _, s := range e.Segments {
			if s.Value != nil {
				b.WriteString(`\(` + expr(s.Value) + `)`)
			} else {
				b.WriteString(escape(s.Text))
			}
		}
		b.WriteByte('"')
		return b.String()
	case *syntax.MemberExpr:
		sep := "."
		if e.Optional {
			sep = "?."
		}
		return operand(e.X) + sep + e.Name
	case *syntax.CallExpr:
		as := make([]syntax.Argument, 0, len(e.TypeArgs)+len(e.Args))
		for _, t := range e.TypeArgs {
			as = append(as, syntax.Arg(syntax.MemberAccess(syntax.TypeRef(t), "self")))
		}
		return operand(e.Fun) + "(" + args(append(as, e.Args...)) + ")"
	case *syntax.PipeExpr:
		return operand(e.Fun) + "(" + expr(e.X) + ")"
	case *syntax.TupleExpr:
		return "(" + args(e.Elems) + ")"
	case *syntax.ArrayExpr:
		elems := make([]string, len(e.Elems))
		for i, x := range e.Elems {
			elems[i] = expr(x)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *syntax.BinaryExpr:
		return binaryOperand(e.X) + " " + e.Op + " " + binaryOperand(e.Y)
	case *syntax.NotExpr:
		return "!" + operand(e.X)
	case *syntax.TryExpr:
		if e.Optional {
			return "try? " + expr(e.X)
		}
		return "try " + expr(e.X)
	case *syntax.AwaitExpr:
		return "await " + expr(e.X)
	case *syntax.CaseExpr:
		if e.Enum == nil {
			return "." + e.Name
		}
		return typ(e.Enum) + "." + e.Name
	case *syntax.CountExpr:
		return operand(e.X) + ".count"
	case *syntax.IsEmptyExpr:
		return operand(e.X) + ".isEmpty"
	case *syntax.ConcatExpr:
		return binaryOperand(e.X) + " + " + binaryOperand(e.Y)
	case *syntax.CallerExpr:
		return [...]string{"#file", "#function", "#line"}[e.Kind]
	case *syntax.ResourceExpr:
		return fmt.Sprintf(
			"Bundle(for: BundleToken.self).url(forResource: %s, withExtension: %s).flatMap { try? Data(contentsOf: $0) }",
			expr(e.Name), literal(e.Ext),
		)
	}
	return ""
}

func binaryOperand(e syntax.Expr) string {
	switch e.(type) {
	case *syntax.BinaryExpr, *syntax.ConcatExpr:
		return "(" + expr(e) + ")"
	}
	return expr(e)
}

func literal(v any) string {
	switch v := v.(type) {
	case string:
		return `"` + escape(v) + `"`
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return "nil"
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

func escape(s string) string { return escaper.Replace(s) }
