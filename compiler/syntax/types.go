package syntax

import "slices"

// Builtin identifies the primitive types every back end maps natively.
type Builtin int

const (
	NotBuiltin Builtin = iota
	BuiltinString
	BuiltinInt
	BuiltinBool
	BuiltinBytes
	BuiltinVoid
	BuiltinError
)

// Type is a reference to a type.
type Type struct {
	// Name of a named type or generic parameter. Empty for builtins and arrays.
	Name    string
	Builtin Builtin
	// Module is the logical module declaring the type. Back ends derive
	// imports from it.
	Module string
	// Args are generic arguments of a named type.
	Args []*Type
	// Elem is set for array types.
	Elem     *Type
	Nullable bool
}

// Builtin types.
var (
	StringType = &Type{Builtin: BuiltinString}
	IntType    = &Type{Builtin: BuiltinInt}
	BoolType   = &Type{Builtin: BuiltinBool}
	BytesType  = &Type{Builtin: BuiltinBytes}
	VoidType   = &Type{Builtin: BuiltinVoid}
	ErrorType  = &Type{Builtin: BuiltinError}
)

// Named returns a reference to the named type with optional generic arguments.
func Named(name string, args ...*Type) *Type {
	return &Type{Name: name, Args: slices.Clone(args)}
}

// ArrayOf returns an array type of elem.
func ArrayOf(elem *Type) *Type {
	return &Type{Elem: elem}
}

// Optional returns the optional form of t.
func (t *Type) Optional() *Type {
	c := t.clone()
	c.Nullable = true
	return c
}

// In returns t declared in the given logical module.
func (t *Type) In(module string) *Type {
	c := t.clone()
	c.Module = module
	return c
}

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool { return t.Elem != nil }

// IsBuiltin reports whether t is a builtin type.
func (t *Type) IsBuiltin() bool { return t.Builtin != NotBuiltin }

// Modules returns the logical modules referenced by t and its arguments.
func (t *Type) Modules() []string {
	if t == nil {
		return nil
	}
	var mods []string
	if t.Module != "" {
		mods = append(mods, t.Module)
	}
	for _, a := range t.Args {
		mods = append(mods, a.Modules()...)
	}
	return append(mods, t.Elem.Modules()...)
}

func (t *Type) clone() *Type {
	c := *t
	c.Args = slices.Clone(t.Args)
	return &c
}

// String returns a debug representation of t.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var s string
	switch {
	case t.Elem != nil:
		s = "[" + t.Elem.String() + "]"
	case t.Builtin != NotBuiltin:
		s = [...]string{"", "String", "Int", "Bool", "Bytes", "Void", "Error"}[t.Builtin]
	default:
		s = t.Name
		if len(t.Args) > 0 {
			s += "<"
			for i, a := range t.Args {
				if i > 0 {
					s += ", "
				}
				s += a.String()
			}
			s += ">"
		}
	}
	if t.Nullable {
		s += "?"
	}
	return s
}
