package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/forge/compiler/syntax"
)

// typ returns the Go type of t. Optional types are pointers unless the
// underlying Go type is already nillable. Classes are used by pointer.
func (r *renderer) typ(t *syntax.Type) jen.Code {
	base := r.baseType(t)
	if r.nillable(t) {
		return base
	}
	if t.Nullable {
		return jen.Op("*").Add(base)
	}
	return base
}

func (r *renderer) baseType(t *syntax.Type) *jen.Statement {
	switch {
	case t.Elem != nil:
		return jen.Index().Add(r.typ(t.Elem))
	case t.Builtin != syntax.NotBuiltin:
		switch t.Builtin {
		case syntax.BuiltinString:
			return jen.String()
		case syntax.BuiltinInt:
			return jen.Int()
		case syntax.BuiltinBool:
			return jen.Bool()
		case syntax.BuiltinBytes:
			return jen.Index().Byte()
		case syntax.BuiltinError:
			return jen.Error()
		}
		return jen.Struct()
	}
	s := r.named(t.Module, t.Name)
	if len(t.Args) > 0 {
		args := make([]jen.Code, len(t.Args))
		for i, a := range t.Args {
			args[i] = r.typ(a)
		}
		s = s.Types(args...)
	}
	if info := r.local(t); info != nil && isClass(info.decl) {
		return jen.Op("*").Add(s)
	}
	return s
}

// named returns a reference to a package-level identifier of module.
func (r *renderer) named(module, name string) *jen.Statement {
	if path := r.b.modules[module]; module != "" && path != "" {
		return jen.Qual(path, name)
	}
	return jen.Id(name)
}

// nillable reports whether the Go type of t has nil as a value.
func (r *renderer) nillable(t *syntax.Type) bool {
	switch {
	case t.Elem != nil:
		return true
	case t.Builtin == syntax.BuiltinBytes, t.Builtin == syntax.BuiltinError:
		return true
	}
	info := r.local(t)
	return info != nil && (info.decl.Kind == syntax.KindProtocol || isClass(info.decl))
}

// zero returns the zero value of t.
func (r *renderer) zero(t *syntax.Type) jen.Code {
	switch {
	case r.nillable(t), t.Nullable:
		return jen.Nil()
	case t.Builtin == syntax.BuiltinString:
		return jen.Lit("")
	case t.Builtin == syntax.BuiltinInt:
		return jen.Lit(0)
	case t.Builtin == syntax.BuiltinBool:
		return jen.False()
	}
	return jen.Op("*").New(r.baseType(t))
}

func isVoid(t *syntax.Type) bool {
	return t == nil || t.Builtin == syntax.BuiltinVoid
}

func isClass(t *syntax.TypeDecl) bool {
	return t.Kind == syntax.KindClass || t.Kind == syntax.KindTestSuite
}
