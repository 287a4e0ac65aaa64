package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/forge/compiler/syntax"
)

// body renders stmts into g. top is set for the outermost statement list
// of a function, where a trailing do/catch may be rendered in place.
func (r *renderer) body(g *jen.Group, sc scope, stmts []syntax.Stmt, top bool) {
	for i, s := range stmts {
		r.stmt(g, sc, s, top && i == len(stmts)-1)
	}
}

// nested renders a block below the function level.
func (r *renderer) nested(sc scope, stmts []syntax.Stmt) func(*jen.Group) {
	return func(g *jen.Group) {
		r.body(g, sc, stmts, false)
	}
}

func (r *renderer) stmt(g *jen.Group, sc scope, s syntax.Stmt, tail bool) {
	switch s := s.(type) {
	case *syntax.CommentDecl:
		for _, l := range s.Lines {
			g.Comment(l)
		}
	case *syntax.VariableDecl:
		r.variable(g, sc, s)
	case *syntax.ExprStmt:
		if x, optional, ok := tryOf(s.X); ok {
			if optional {
				g.List(jen.Id("_"), jen.Id("_")).Op("=").Add(r.tried(sc, x))
				return
			}
			g.If(jen.Err().Op(":=").Add(r.tried(sc, x)), jen.Err().Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
				r.onError(g, sc)
			})
			return
		}
		if r.optionalCall(g, sc, s.X) {
			return
		}
		g.Add(r.expr(sc, s.X))
	case *syntax.AssignStmt:
		if x, _, ok := tryOf(s.Value); ok {
			r.try(g, sc, "value", x)
			r.assign(g, sc, s.Target, jen.Id("value"))
			return
		}
		r.assign(g, sc, s.Target, r.expr(sc, s.Value))
	case *syntax.ReturnStmt:
		r.ret(g, sc, s.Value)
	case *syntax.GuardStmt:
		var cond jen.Code
		if n, ok := s.Cond.(*syntax.NotExpr); ok {
			cond = r.expr(sc, n.X)
		} else {
			cond = jen.Op("!").Add(r.operand(sc, s.Cond))
		}
		g.If(cond).BlockFunc(r.nested(sc, s.Else))
	case *syntax.GuardLetStmt:
		name := localName(s.Name)
		if t, ok := s.Value.(*syntax.TryExpr); ok && t.Optional {
			g.List(jen.Id(name), jen.Err()).Op(":=").Add(r.tried(sc, t.X))
			g.If(jen.Err().Op("!=").Nil()).BlockFunc(r.nested(sc, s.Else))
			return
		}
		g.Id(name).Op(":=").Add(r.expr(sc, s.Value))
		g.If(jen.Id(name).Op("==").Nil()).BlockFunc(r.nested(sc, s.Else))
	case *syntax.DoCatchStmt:
		r.doCatch(g, sc, s, tail)
	case *syntax.ForInStmt:
		g.For(jen.List(jen.Id("_"), jen.Id(localName(s.Name))).Op(":=").Range().Add(r.expr(sc, s.Seq))).
			BlockFunc(r.nested(sc, s.Body))
	case *syntax.FailStmt:
		r.testFailure(g, sc, s)
	case *syntax.AssertStmt:
		if !sc.test {
			r.fail("assertion", "assertion outside a test suite")
			return
		}
		switch s.Kind {
		case syntax.AssertEqualKind:
			g.Qual(assertPkg, "Equal").Call(jen.Id("t"), r.expr(sc, s.Want), r.expr(sc, s.Got))
		case syntax.AssertFalseKind:
			g.Qual(assertPkg, "False").Call(jen.Id("t"), r.expr(sc, s.Got))
		}
	case *syntax.FanOutStmt:
		r.fanOut(g, sc, s)
	}
}

// tryOf unwraps a try expression, looking through await on either side.
func tryOf(e syntax.Expr) (x syntax.Expr, optional, ok bool) {
	if a, isAwait := e.(*syntax.AwaitExpr); isAwait {
		e = a.X
	}
	t, ok := e.(*syntax.TryExpr)
	if !ok {
		return nil, false, false
	}
	x = t.X
	if a, isAwait := x.(*syntax.AwaitExpr); isAwait {
		x = a.X
	}
	return x, t.Optional, true
}

func (r *renderer) variable(g *jen.Group, sc scope, v *syntax.VariableDecl) {
	name := localName(v.Name)
	if x, optional, ok := tryOf(v.Value); ok {
		if optional {
			g.List(jen.Id(name), jen.Id("_")).Op(":=").Add(r.tried(sc, x))
			return
		}
		r.try(g, sc, name, x)
		return
	}
	switch {
	case v.Value == nil:
		g.Var().Id(name).Add(r.typ(v.Type))
	case v.Type != nil:
		g.Var().Id(name).Add(r.typ(v.Type)).Op("=").Add(r.expr(sc, v.Value))
	default:
		g.Id(name).Op(":=").Add(r.expr(sc, v.Value))
	}
}

// try binds the result of a throwing call to name and handles its error.
func (r *renderer) try(g *jen.Group, sc scope, name string, x syntax.Expr) {
	g.List(jen.Id(name), jen.Err()).Op(":=").Add(r.tried(sc, x))
	g.If(jen.Err().Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
		r.onError(g, sc)
	})
}

// onError renders the handling of a non-nil err raised by a try.
func (r *renderer) onError(g *jen.Group, sc scope) {
	switch {
	case sc.catch != nil && sc.inline:
		d := sc.catch
		outer := sc
		outer.catch, outer.inline = nil, false
		if name := localName(d.Err); name != "err" {
			g.Id(name).Op(":=").Err()
		}
		r.body(g, outer, d.Handler, false)
		if !exits(d.Handler) {
			g.Return()
		}
	case sc.catch != nil:
		g.Return(jen.Err())
	case sc.init && sc.throws:
		g.Return(jen.Nil(), jen.Err())
	case sc.throws && isVoid(sc.result):
		g.Return(jen.Err())
	case sc.throws:
		g.Return(r.zero(sc.result), jen.Err())
	default:
		r.fail("try", "error is neither caught nor thrown")
	}
}

func exits(stmts []syntax.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*syntax.ReturnStmt)
	return ok
}

// doCatch renders a do/catch. A trailing do/catch of a function without
// results handles errors in place; otherwise the body runs in a closure
// returning the first error.
func (r *renderer) doCatch(g *jen.Group, sc scope, d *syntax.DoCatchStmt, tail bool) {
	if tail && sc.void && sc.catch == nil && !sc.closure {
		inner := sc
		inner.catch, inner.inline = d, true
		r.body(g, inner, d.Body, false)
		return
	}
	inner := sc
	inner.catch, inner.inline, inner.closure = d, false, true
	run := jen.Func().Params().Error().BlockFunc(func(g *jen.Group) {
		r.body(g, inner, d.Body, false)
		g.Return(jen.Nil())
	}).Call()
	g.If(jen.Err().Op(":=").Add(run), jen.Err().Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
		if name := localName(d.Err); name != "err" {
			g.Id(name).Op(":=").Err()
		}
		r.body(g, sc, d.Handler, false)
	})
}

func (r *renderer) ret(g *jen.Group, sc scope, v syntax.Expr) {
	switch {
	case sc.closure:
		r.fail("return", "return inside a do body rendered as a closure")
		return
	case sc.init && sc.throws:
		g.Return(jen.Id(sc.recv), jen.Nil())
		return
	case sc.init:
		g.Return(jen.Id(sc.recv))
		return
	case v == nil && sc.throws:
		g.Return(jen.Nil())
		return
	case v == nil:
		g.Return()
		return
	}
	if x, optional, ok := tryOf(v); ok && !optional {
		if sc.throws && sc.catch == nil {
			g.Return(r.tried(sc, x))
			return
		}
		r.try(g, sc, "value", x)
		v = syntax.Id("value")
	}
	if sc.throws {
		g.Return(r.expr(sc, v), jen.Nil())
		return
	}
	g.Return(r.expr(sc, v))
}

// assign renders target = value, calling setters of computed properties.
func (r *renderer) assign(g *jen.Group, sc scope, target syntax.Expr, value jen.Code) {
	if m, ok := target.(*syntax.MemberExpr); ok {
		switch x := m.X.(type) {
		case *syntax.TypeExpr:
			if info := r.local(x.Type); info != nil {
				if p, ok := info.members[m.Name].(*syntax.PropertyDecl); ok && p.Computed() {
					g.Id(setterName(staticName(x.Type.Name, p.Name, p.Access), p.Access)).Call(value)
					return
				}
			}
		case *syntax.SelfExpr:
			if p, ok := sc.owner.member(m.Name).(*syntax.PropertyDecl); ok && p.Computed() && sc.recv != "" {
				g.Id(sc.recv).Dot(setterName(memberName(p.Name, p.Access), p.Access)).Call(value)
				return
			}
		}
	}
	g.Add(r.expr(sc, target)).Op("=").Add(value)
}

func setterName(name string, a syntax.Access) string {
	if a == syntax.Private {
		return "set" + exported(name)
	}
	return "Set" + exported(name)
}

// optionalCall renders a call through an optional member as a nil check.
func (r *renderer) optionalCall(g *jen.Group, sc scope, e syntax.Expr) bool {
	c, ok := e.(*syntax.CallExpr)
	if !ok {
		return false
	}
	m, ok := c.Fun.(*syntax.MemberExpr)
	if !ok || !m.Optional {
		return false
	}
	g.If(jen.Id("v").Op(":=").Add(r.expr(sc, m.X)), jen.Id("v").Op("!=").Nil()).Block(
		jen.Id("v").Dot(exported(m.Name)).Call(r.args(sc, c.Args)...),
	)
	return true
}

func (r *renderer) testFailure(g *jen.Group, sc scope, s *syntax.FailStmt) {
	if !sc.test {
		r.fail("failure", "test failure outside a test suite")
		return
	}
	if str, ok := s.Message.(*syntax.StrExpr); ok && hasValues(str) {
		format, args := r.format(sc, str)
		g.Id("t").Dot("Errorf").Call(append([]jen.Code{jen.Lit(format)}, args...)...)
		return
	}
	g.Id("t").Dot("Error").Call(r.expr(sc, s.Message))
}

// fanOut runs each task in its own goroutine, then folds the outcomes into
// the accumulator in task order.
func (r *renderer) fanOut(g *jen.Group, sc scope, f *syntax.FanOutStmt) {
	acc := localName(f.Var)
	g.Id(acc).Op(":=").Add(r.expr(sc, f.Initial))
	if len(f.Tasks) == 0 {
		return
	}
	n := len(f.Tasks)
	g.Id("outcomes").Op(":=").Make(jen.Index().Add(r.typ(f.Outcome)), jen.Lit(n))
	g.Var().Id("wg").Qual(syncPkg, "WaitGroup")
	g.Id("wg").Dot("Add").Call(jen.Lit(n))
	for i, t := range f.Tasks {
		g.Go().Func().Params().Block(
			jen.Defer().Id("wg").Dot("Done").Call(),
			jen.Id("outcomes").Index(jen.Lit(i)).Op("=").Add(r.expr(sc, t)),
		).Call()
	}
	g.Id("wg").Dot("Wait").Call()
	g.For(jen.List(jen.Id("_"), jen.Id("outcome")).Op(":=").Range().Id("outcomes")).Block(
		jen.Id(acc).Op("=").Id(acc).Dot(r.methodName(f.Outcome, f.Method)).Call(jen.Id("outcome")),
	)
}

// methodName returns the Go name of method name of t.
func (r *renderer) methodName(t *syntax.Type, name string) string {
	if f, ok := r.local(t).member(name).(*syntax.FuncDecl); ok {
		return memberName(f.Name, f.Access)
	}
	return exported(name)
}
