package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/forge/compiler/syntax"
)

func (r *renderer) expr(sc scope, e syntax.Expr) *jen.Statement {
	switch e := e.(type) {
	case *syntax.Ident:
		return jen.Id(localName(e.Name))
	case *syntax.SelfExpr:
		if sc.recv == "" {
			return r.fail("self", "self in static context")
		}
		return jen.Id(sc.recv)
	case *syntax.TypeExpr:
		return r.baseType(e.Type)
	case *syntax.LitExpr:
		if e.Value == nil {
			return jen.Nil()
		}
		return jen.Lit(e.Value)
	case *syntax.StrExpr:
		if !hasValues(e) {
			var b strings.Builder
			for _, s := range e.Segments {
				b.WriteString(s.Text)
			}
			return jen.Lit(b.String())
		}
		format, args := r.format(sc, e)
		return jen.Qual(fmtPkg, "Sprintf").Call(append([]jen.Code{jen.Lit(format)}, args...)...)
	case *syntax.MemberExpr:
		return r.memberExpr(sc, e)
	case *syntax.CallExpr:
		return r.call(sc, e)
	case *syntax.PipeExpr:
		return r.operand(sc, e.Fun).Call(r.expr(sc, e.X))
	case *syntax.TupleExpr:
		if len(e.Elems) == 1 {
			return jen.Parens(r.expr(sc, e.Elems[0].Value))
		}
		return jen.List(r.args(sc, e.Elems)...)
	case *syntax.ArrayExpr:
		elems := make([]jen.Code, len(e.Elems))
		for i, x := range e.Elems {
			elems[i] = r.expr(sc, x)
		}
		return jen.Index().Add(r.typ(e.Elem)).Values(elems...)
	case *syntax.BinaryExpr:
		return r.operand(sc, e.X).Op(e.Op).Add(r.operand(sc, e.Y))
	case *syntax.NotExpr:
		return jen.Op("!").Add(r.operand(sc, e.X))
	case *syntax.TryExpr:
		return r.fail("try", "try must be the whole value of a statement")
	case *syntax.AwaitExpr:
		return r.expr(sc, e.X)
	case *syntax.CaseExpr:
		if e.Enum == nil {
			return r.fail("case "+e.Name, "case without enum type")
		}
		return r.named(e.Enum.Module, e.Enum.Name+exported(e.Name))
	case *syntax.CountExpr:
		return jen.Len(r.expr(sc, e.X))
	case *syntax.IsEmptyExpr:
		return jen.Len(r.expr(sc, e.X)).Op("==").Lit(0)
	case *syntax.ConcatExpr:
		return jen.Qual(slicesPkg, "Concat").Call(r.expr(sc, e.X), r.expr(sc, e.Y))
	case *syntax.CallerExpr:
		return r.fail("caller", "call-site capture outside a parameter default")
	case *syntax.ResourceExpr:
		r.resources = true
		return jen.Id("resourceData").Call(r.expr(sc, e.Name), jen.Lit(e.Ext))
	}
	return r.fail("expression", "unsupported expression %T", e)
}

// operand renders e parenthesized when it is an operator expression.
func (r *renderer) operand(sc scope, e syntax.Expr) *jen.Statement {
	switch e.(type) {
	case *syntax.BinaryExpr, *syntax.IsEmptyExpr:
		return jen.Parens(r.expr(sc, e))
	}
	return r.expr(sc, e)
}

func (r *renderer) args(sc scope, args []syntax.Argument) []jen.Code {
	out := make([]jen.Code, len(args))
	for i, a := range args {
		out[i] = r.expr(sc, a.Value)
	}
	return out
}

func hasValues(s *syntax.StrExpr) bool {
	for _, seg := range s.Segments {
		if seg.Value != nil {
			return true
		}
	}
	return false
}

// format returns the fmt format string and arguments of s.
func (r *renderer) format(sc scope, s *syntax.StrExpr) (string, []jen.Code) {
	var (
		b    strings.Builder
		args []jen.Code
	)
	for _, seg := range s.Segments {
		if seg.Value == nil {
			b.WriteString(strings.ReplaceAll(seg.Text, "%", "%%"))
			continue
		}
		b.WriteString("%v")
		args = append(args, r.expr(sc, seg.Value))
	}
	return b.String(), args
}

func (r *renderer) memberExpr(sc scope, m *syntax.MemberExpr) *jen.Statement {
	if m.Optional {
		return r.fail("member "+m.Name, "optional chaining outside a call statement")
	}
	switch x := m.X.(type) {
	case *syntax.TypeExpr:
		return r.staticRef(x.Type, m.Name, m.Computed)
	case *syntax.SelfExpr:
		return r.selfRef(sc, m.Name, m.Computed)
	}
	s := r.operand(sc, m.X).Dot(exported(m.Name))
	if m.Computed {
		s = s.Call()
	}
	return s
}

// staticRef resolves a static member of t.
func (r *renderer) staticRef(t *syntax.Type, name string, computed bool) *jen.Statement {
	if t.Elem != nil || t.Builtin != syntax.NotBuiltin {
		return r.fail("member "+name, "static member of %s", t)
	}
	switch d := r.local(t).member(name).(type) {
	case *syntax.PropertyDecl:
		id := jen.Id(staticName(t.Name, name, d.Access))
		if d.Computed() {
			return id.Call()
		}
		return id
	case *syntax.FuncDecl:
		return jen.Id(staticName(t.Name, name, d.Access))
	}
	id := r.named(t.Module, t.Name+exported(name))
	if computed {
		id = id.Call()
	}
	return id
}

// selfRef resolves a member of the receiver.
func (r *renderer) selfRef(sc scope, name string, computed bool) *jen.Statement {
	if sc.recv == "" {
		return r.fail("self", "self in static context")
	}
	recv := jen.Id(sc.recv)
	switch d := sc.owner.member(name).(type) {
	case *syntax.PropertyDecl:
		s := recv.Dot(memberName(name, d.Access))
		switch {
		case d.Lazy && sc.owner.suite():
			return s.Call(jen.Id("t"))
		case d.Lazy, d.Computed():
			return s.Call()
		}
		return s
	case *syntax.FuncDecl:
		return recv.Dot(memberName(name, d.Access))
	}
	s := recv.Dot(exported(name))
	if computed {
		s = s.Call()
	}
	return s
}

func (r *renderer) call(sc scope, c *syntax.CallExpr) *jen.Statement {
	switch fun := c.Fun.(type) {
	case *syntax.TypeExpr:
		return r.construct(sc, fun.Type, c, false)
	case *syntax.MemberExpr:
		if fun.Optional {
			return r.fail("member "+fun.Name, "optional call outside a statement")
		}
		if len(c.TypeArgs) > 0 {
			return r.genericCall(sc, fun, c)
		}
		args := r.args(sc, c.Args)
		if _, ok := fun.X.(*syntax.SelfExpr); ok && sc.owner.suite() {
			if f, ok := sc.owner.member(fun.Name).(*syntax.FuncDecl); ok && !f.Static {
				args = append([]jen.Code{jen.Id("t")}, args...)
			}
		}
		return r.memberExpr(sc, fun).Call(args...)
	}
	if len(c.TypeArgs) > 0 {
		return r.operand(sc, c.Fun).Types(r.typeList(c.TypeArgs)...).Call(r.args(sc, c.Args)...)
	}
	return r.operand(sc, c.Fun).Call(r.args(sc, c.Args)...)
}

func (r *renderer) typeList(ts []*syntax.Type) []jen.Code {
	out := make([]jen.Code, len(ts))
	for i, t := range ts {
		out[i] = r.typ(t)
	}
	return out
}

// genericCall renders a generic method call as a call of a package-level
// generic function taking the receiver first; Go methods have no type
// parameters.
func (r *renderer) genericCall(sc scope, fun *syntax.MemberExpr, c *syntax.CallExpr) *jen.Statement {
	args := r.args(sc, c.Args)
	switch x := fun.X.(type) {
	case *syntax.TypeExpr:
		return r.staticRef(x.Type, fun.Name, false).Types(r.typeList(c.TypeArgs)...).Call(args...)
	case *syntax.SelfExpr:
		module := ""
		if sc.self != nil {
			module = sc.self.Module
		}
		if sc.recv == "" {
			return r.fail("self", "self in static context")
		}
		args = append([]jen.Code{jen.Id(sc.recv)}, args...)
		return r.named(module, exported(fun.Name)).Types(r.typeList(c.TypeArgs)...).Call(args...)
	}
	args = append([]jen.Code{r.expr(sc, fun.X)}, args...)
	return jen.Id(exported(fun.Name)).Types(r.typeList(c.TypeArgs)...).Call(args...)
}

// tried renders the expression under a try; initializer calls become
// calls of the throwing constructor.
func (r *renderer) tried(sc scope, x syntax.Expr) *jen.Statement {
	if c, ok := x.(*syntax.CallExpr); ok {
		if t, ok := c.Fun.(*syntax.TypeExpr); ok {
			return r.construct(sc, t.Type, c, true)
		}
	}
	return r.expr(sc, x)
}

// construct renders an initializer call of t. Types with a declared
// initializer and throwing initializers use the New<Type> constructor;
// labelled arguments otherwise become a composite literal.
func (r *renderer) construct(sc scope, t *syntax.Type, c *syntax.CallExpr, throwing bool) *jen.Statement {
	args := r.args(sc, c.Args)
	switch {
	case t.Elem != nil && len(args) == 0:
		return jen.Index().Add(r.typ(t.Elem)).Values()
	case t.Elem != nil:
		return r.fail("type "+t.String(), "array initializer with arguments")
	case t.Builtin != syntax.NotBuiltin && len(args) == 0:
		if t.Builtin == syntax.BuiltinBytes {
			return jen.Index().Byte().Values()
		}
		return jen.Add(r.zero(t))
	case t.Builtin != syntax.NotBuiltin && len(args) == 1:
		return r.baseType(t).Call(args...)
	case t.Builtin != syntax.NotBuiltin:
		return r.fail("type "+t.String(), "conversion takes one argument")
	}
	info := r.local(t)
	ctor := func() *jen.Statement {
		s := r.named(t.Module, "New"+t.Name)
		if len(t.Args) > 0 {
			s = s.Types(r.typeList(t.Args)...)
		}
		return s.Call(args...)
	}
	if throwing || info != nil && info.init {
		return ctor()
	}
	if len(args) > 0 && !c.AllLabeled() {
		return ctor()
	}
	lit := r.named(t.Module, t.Name)
	if len(t.Args) > 0 {
		lit = lit.Types(r.typeList(t.Args)...)
	}
	lit = lit.ValuesFunc(func(g *jen.Group) {
		for i, a := range c.Args {
			g.Id(exported(a.Label)).Op(":").Add(args[i])
		}
	})
	if info != nil && isClass(info.decl) {
		return jen.Op("&").Add(lit)
	}
	return lit
}
