package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/forge/compiler/naming"
	"github.com/syssam/forge/compiler/syntax"
)

// scope is the context a function body is rendered in.
type scope struct {
	// owner is the local type whose member is rendered.
	owner *typeInfo
	// self is the extended type when rendering an extension of a type
	// declared elsewhere.
	self *syntax.Type
	// recv is the receiver variable, empty in static context.
	recv string
	// test is set when a *testing.T named t is in scope.
	test   bool
	result *syntax.Type
	throws bool
	init   bool
	// void is set when the Go function has no results.
	void bool
	// catch is the enclosing do/catch; inline selects handling in place
	// over the closure form.
	catch   *syntax.DoCatchStmt
	inline  bool
	closure bool
}

func (r *renderer) decl(g *jen.Group, d syntax.Decl) {
	switch d := d.(type) {
	case *syntax.CommentDecl:
		for _, l := range d.Lines {
			g.Comment(l)
		}
	case *syntax.ImportDecl:
	case *syntax.TypeDecl:
		r.typeDecl(g, d)
	case *syntax.ExtensionDecl:
		r.extension(g, d)
	case *syntax.FuncDecl:
		r.function(g, d, scope{}, memberName(d.Name, d.Access))
	case *syntax.PropertyDecl:
		r.packageVar(g, d, scope{}, memberName(d.Name, d.Access))
	case *syntax.VariableDecl:
		g.Var().Id(localName(d.Name)).Do(r.varSpec(scope{}, d.Type, d.Value))
	}
}

func doc(g *jen.Group, lines []string) {
	if len(lines) > 0 {
		g.Comment(strings.Join(lines, "\n"))
	}
}

func (r *renderer) typeDecl(g *jen.Group, t *syntax.TypeDecl) {
	info := r.types[t.Name]
	switch t.Kind {
	case syntax.KindProtocol:
		r.protocol(g, t)
		return
	case syntax.KindEnum:
		if len(t.Cases) > 0 {
			doc(g, t.Doc)
			g.Type().Id(t.Name).Int()
			g.Const().DefsFunc(func(g *jen.Group) {
				for i, c := range t.Cases {
					if i == 0 {
						g.Id(t.Name + exported(c)).Id(t.Name).Op("=").Iota()
					} else {
						g.Id(t.Name + exported(c))
					}
				}
			})
		}
	default:
		doc(g, t.Doc)
		g.Type().Id(t.Name).StructFunc(func(g *jen.Group) {
			for _, m := range t.Members {
				p, ok := m.(*syntax.PropertyDecl)
				if !ok || p.Static || p.Computed() {
					continue
				}
				if p.Lazy {
					g.Id(unexported(p.Name) + "Value").Add(r.typ(p.Type))
					g.Id(unexported(p.Name) + "Loaded").Bool()
					continue
				}
				g.Id(memberName(p.Name, p.Access)).Add(r.typ(p.Type))
			}
		})
	}
	if t.Kind != syntax.KindEnum || len(t.Cases) > 0 {
		r.conformances(g, t.Name, t.Inherits)
	}
	if t.Kind == syntax.KindTestSuite {
		r.suiteRunner(g, t)
	}
	for _, m := range t.Members {
		r.member(g, info, nil, m)
	}
}

// conformances asserts at compile time that name implements each type.
func (r *renderer) conformances(g *jen.Group, name string, inherits []*syntax.Type) {
	for _, p := range inherits {
		g.Var().Id("_").Add(r.baseType(p)).Op("=").Parens(jen.Op("*").Id(name)).Parens(jen.Nil())
	}
}

func (r *renderer) protocol(g *jen.Group, t *syntax.TypeDecl) {
	doc(g, t.Doc)
	g.Type().Id(t.Name).InterfaceFunc(func(g *jen.Group) {
		for _, p := range t.Inherits {
			g.Add(r.baseType(p))
		}
		for _, m := range t.Members {
			switch m := m.(type) {
			case *syntax.FuncDecl:
				params, _ := r.params(scope{}, m)
				g.Id(exported(m.Name)).Params(params...).Add(r.results(m.Result, m.Throws))
			case *syntax.PropertyDecl:
				g.Id(exported(m.Name)).Params().Add(r.typ(m.Type))
				if m.Mutable {
					g.Id("Set" + exported(m.Name)).Params(jen.Id(syntax.NewValue).Add(r.typ(m.Type)))
				}
			}
		}
	})
}

// suiteRunner emits the test function running every test of the suite as
// a subtest of a shared suite value.
func (r *renderer) suiteRunner(g *jen.Group, t *syntax.TypeDecl) {
	recv := naming.Receiver(t.Name)
	g.Func().Id("Test"+t.Name).Params(jen.Id("t").Op("*").Qual(testingPkg, "T")).BlockFunc(func(g *jen.Group) {
		g.Id(recv).Op(":=").Op("&").Id(t.Name).Values()
		for _, m := range t.Members {
			if f, ok := m.(*syntax.FuncDecl); ok && isTest(f) {
				g.Id("t").Dot("Run").Call(jen.Lit(f.Name), jen.Id(recv).Dot(memberName(f.Name, f.Access)))
			}
		}
	})
}

func isTest(f *syntax.FuncDecl) bool {
	return !f.Static && !f.IsInit && len(f.Params) == 0 && strings.HasPrefix(f.Name, "test")
}

func (r *renderer) extension(g *jen.Group, e *syntax.ExtensionDecl) {
	var where []string
	for _, w := range e.Where {
		op := " == "
		if w.Kind == syntax.Conforms {
			op = ": "
		}
		where = append(where, w.Left.String()+op+w.Right.String())
	}
	info := r.local(e.Of)
	if info != nil {
		if len(where) > 0 {
			g.Comment("Extension of " + e.Of.Name + " where " + strings.Join(where, ", ") + ".")
		}
		r.conformances(g, e.Of.Name, e.Inherits)
		for _, m := range e.Members {
			r.member(g, info, nil, m)
		}
		return
	}
	if len(e.Inherits) > 0 {
		r.fail("extension "+e.Of.String(), "conformance of a type declared elsewhere")
		return
	}
	for _, m := range e.Members {
		if len(where) > 0 {
			g.Comment(memberOf(m) + " applies where " + strings.Join(where, ", ") + ".")
		}
		r.member(g, nil, e.Of, m)
	}
}

func memberOf(d syntax.Decl) string {
	switch d := d.(type) {
	case *syntax.FuncDecl:
		return exported(d.Name)
	case *syntax.PropertyDecl:
		return exported(d.Name)
	}
	return ""
}

// member emits a member of a local type (owner) or of an extended type
// declared elsewhere (self).
func (r *renderer) member(g *jen.Group, owner *typeInfo, self *syntax.Type, d syntax.Decl) {
	sc := scope{owner: owner, self: self, test: owner.suite()}
	name := ""
	if owner != nil {
		name = owner.decl.Name
	}
	switch d := d.(type) {
	case *syntax.CommentDecl:
		r.decl(g, d)
	case *syntax.FuncDecl:
		switch {
		case d.IsInit && owner == nil:
			r.fail("extension "+self.String(), "initializer of a type declared elsewhere")
		case d.IsInit:
			r.initializer(g, owner, d)
		case d.Static:
			sc.test = false
			r.function(g, d, sc, staticName(name, d.Name, d.Access))
		default:
			sc.recv = receiverOf(owner, self)
			r.function(g, d, sc, memberName(d.Name, d.Access))
		}
	case *syntax.PropertyDecl:
		switch {
		case d.Static && d.Computed():
			r.accessors(g, d, scope{owner: owner}, staticName(name, d.Name, d.Access), nil)
		case d.Static:
			r.packageVar(g, d, scope{owner: owner}, staticName(name, d.Name, d.Access))
		case d.Lazy && owner == nil:
			r.fail("property "+d.Name, "lazy property on a type declared elsewhere")
		case d.Lazy:
			sc.recv = receiverOf(owner, self)
			r.lazy(g, d, sc)
		case d.Computed():
			sc.recv = receiverOf(owner, self)
			r.accessors(g, d, sc, memberName(d.Name, d.Access), r.receiver(owner, self))
		}
	}
	if owner != nil && owner.decl.Kind == syntax.KindEnum && len(owner.decl.Cases) == 0 && !isStatic(d) {
		r.fail(owner.decl.Kind.String()+" "+name, "instance member %s of a namespace", memberOf(d))
	}
}

func isStatic(d syntax.Decl) bool {
	switch d := d.(type) {
	case *syntax.FuncDecl:
		return d.Static
	case *syntax.PropertyDecl:
		return d.Static
	}
	return true
}

func receiverOf(owner *typeInfo, self *syntax.Type) string {
	if owner != nil {
		return naming.Receiver(owner.decl.Name)
	}
	return naming.Receiver(self.Name)
}

// receiver returns the receiver parameter of a method of owner, or nil for
// extended types declared elsewhere, which take the value as the first
// parameter instead.
func (r *renderer) receiver(owner *typeInfo, self *syntax.Type) jen.Code {
	if owner == nil {
		return nil
	}
	recv := jen.Id(naming.Receiver(owner.decl.Name))
	if isClass(owner.decl) {
		return recv.Op("*").Id(owner.decl.Name)
	}
	return recv.Id(owner.decl.Name)
}

// signature returns the parameters of f, prefixed with the receiver value
// for members of types declared elsewhere and with t inside test suites.
func (r *renderer) signature(sc scope, f *syntax.FuncDecl) ([]jen.Code, []syntax.Param) {
	var params []jen.Code
	if sc.self != nil && sc.recv != "" {
		params = append(params, jen.Id(sc.recv).Add(r.typ(sc.self)))
	}
	if sc.test {
		params = append(params, jen.Id("t").Op("*").Qual(testingPkg, "T"))
	}
	ps, captured := r.params(sc, f)
	return append(params, ps...), captured
}

// params returns the declared parameters of f. Parameters defaulting to a
// call-site capture are returned separately; they are filled in from
// runtime.Caller.
func (r *renderer) params(_ scope, f *syntax.FuncDecl) ([]jen.Code, []syntax.Param) {
	var (
		params   []jen.Code
		captured []syntax.Param
	)
	for _, p := range f.Params {
		if _, ok := p.Default.(*syntax.CallerExpr); ok {
			captured = append(captured, p)
			continue
		}
		params = append(params, jen.Id(localName(p.Name)).Add(r.typ(p.Type)))
	}
	return params, captured
}

func (r *renderer) results(result *syntax.Type, throws bool) jen.Code {
	switch {
	case isVoid(result) && throws:
		return jen.Error()
	case isVoid(result):
		return jen.Null()
	case throws:
		return jen.Parens(jen.List(r.typ(result), jen.Error()))
	}
	return r.typ(result)
}

func (r *renderer) function(g *jen.Group, f *syntax.FuncDecl, sc scope, name string) {
	doc(g, f.Doc)
	params, captured := r.signature(sc, f)
	sc.result, sc.throws = f.Result, f.Throws
	sc.void = isVoid(f.Result) && !f.Throws
	s := g.Func()
	if sc.recv != "" && sc.self == nil {
		s.Params(r.receiver(sc.owner, nil))
	}
	s.Id(name).Params(params...).Add(r.results(f.Result, f.Throws)).BlockFunc(func(g *jen.Group) {
		r.captureCaller(g, captured)
		r.body(g, sc, f.Body, true)
	})
}

// captureCaller binds captured call-site parameters from the caller frame.
func (r *renderer) captureCaller(g *jen.Group, captured []syntax.Param) {
	if len(captured) == 0 {
		return
	}
	vars := map[syntax.CallerKind]string{}
	for _, p := range captured {
		vars[p.Default.(*syntax.CallerExpr).Kind] = localName(p.Name)
	}
	or := func(k syntax.CallerKind, pc bool) jen.Code {
		if _, ok := vars[k]; ok && pc {
			return jen.Id("pc")
		}
		if v, ok := vars[k]; ok {
			return jen.Id(v)
		}
		return jen.Id("_")
	}
	g.List(or(syntax.CallerFunctionKind, true), or(syntax.CallerFileKind, false), or(syntax.CallerLineKind, false), jen.Id("_")).
		Op(":=").Qual(runtimePkg, "Caller").Call(jen.Lit(1))
	if v, ok := vars[syntax.CallerFunctionKind]; ok {
		g.Id(v).Op(":=").Qual(runtimePkg, "FuncForPC").Call(jen.Id("pc")).Dot("Name").Call()
	}
}

// initializer emits New<Type>, allocating the value and running the body
// against it.
func (r *renderer) initializer(g *jen.Group, owner *typeInfo, f *syntax.FuncDecl) {
	name := owner.decl.Name
	recv := naming.Receiver(name)
	sc := scope{owner: owner, recv: recv, init: true, throws: f.Throws}
	params, _ := r.params(sc, f)
	result := syntax.Named(name)
	doc(g, f.Doc)
	g.Func().Id(memberName("new"+name, f.Access)).Params(params...).Add(r.results(result, f.Throws)).BlockFunc(func(g *jen.Group) {
		if isClass(owner.decl) {
			g.Id(recv).Op(":=").Op("&").Id(name).Values()
		} else {
			g.Id(recv).Op(":=").Id(name).Values()
		}
		r.body(g, sc, f.Body, false)
		if f.Throws {
			g.Return(jen.Id(recv), jen.Nil())
		} else {
			g.Return(jen.Id(recv))
		}
	})
}

// accessors emits the getter and, when present, the setter of a computed
// property. recv is nil for static properties.
func (r *renderer) accessors(g *jen.Group, p *syntax.PropertyDecl, sc scope, name string, recv jen.Code) {
	doc(g, p.Doc)
	sc.result = p.Type
	var params []jen.Code
	if sc.self != nil {
		params = append(params, jen.Id(sc.recv).Add(r.typ(sc.self)))
	}
	get := g.Func()
	if recv != nil {
		get.Params(recv)
	}
	get.Id(name).Params(params...).Add(r.typ(p.Type)).BlockFunc(func(g *jen.Group) {
		r.body(g, sc, p.Getter, false)
	})
	if p.Setter == nil {
		return
	}
	set := g.Func()
	if recv != nil {
		set.Params(r.receiver(sc.owner, sc.self))
	}
	sc.result = nil
	sc.void = true
	setter := "Set" + exported(name)
	if p.Access == syntax.Private {
		setter = "set" + exported(name)
	}
	set.Id(setter).Params(append(params, jen.Id(syntax.NewValue).Add(r.typ(p.Type)))...).BlockFunc(func(g *jen.Group) {
		r.body(g, sc, p.Setter, true)
	})
}

// lazy emits a cached accessor: the initializer body runs on first access.
func (r *renderer) lazy(g *jen.Group, p *syntax.PropertyDecl, sc scope) {
	field := unexported(p.Name)
	recv := jen.Id(sc.recv)
	var params []jen.Code
	if sc.test {
		params = append(params, jen.Id("t").Op("*").Qual(testingPkg, "T"))
	}
	doc(g, p.Doc)
	g.Func().Params(r.receiver(sc.owner, nil)).Id(memberName(p.Name, p.Access)).Params(params...).Add(r.typ(p.Type)).BlockFunc(func(g *jen.Group) {
		g.If(jen.Op("!").Add(recv).Dot(field + "Loaded")).BlockFunc(func(g *jen.Group) {
			load := sc
			load.result = p.Type
			g.Add(recv).Dot(field+"Value").Op("=").Func().Params().Add(r.typ(p.Type)).BlockFunc(func(g *jen.Group) {
				r.body(g, load, p.Getter, false)
			}).Call()
			g.Add(recv).Dot(field + "Loaded").Op("=").True()
		})
		g.Return(jen.Add(recv).Dot(field + "Value"))
	})
}

func (r *renderer) packageVar(g *jen.Group, p *syntax.PropertyDecl, sc scope, name string) {
	doc(g, p.Doc)
	g.Var().Id(name).Do(r.varSpec(sc, p.Type, p.Value))
}

// varSpec returns the type and initializer of a var declaration.
func (r *renderer) varSpec(sc scope, t *syntax.Type, v syntax.Expr) func(*jen.Statement) {
	return func(s *jen.Statement) {
		switch {
		case v == nil:
			s.Add(r.typ(t))
		case t == nil:
			s.Op("=").Add(r.expr(sc, v))
		default:
			s.Add(r.typ(t)).Op("=").Add(r.expr(sc, v))
		}
	}
}

// resourceHelper emits the embedded resource set and its lookup function.
func (r *renderer) resourceHelper(g *jen.Group) {
	g.Comment("//go:embed testdata")
	g.Var().Id("resources").Qual(embedPkg, "FS")
	g.Comment("resourceData returns the bundled resource name.ext, or nil if it does not exist.")
	g.Func().Id("resourceData").Params(jen.List(jen.Id("name"), jen.Id("ext")).String()).Index().Byte().Block(
		jen.List(jen.Id("data"), jen.Err()).Op(":=").Id("resources").Dot("ReadFile").Call(
			jen.Qual(pathPkg, "Join").Call(jen.Lit("testdata"), jen.Id("name").Op("+").Lit(".").Op("+").Id("ext")),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Id("data")),
	)
}
