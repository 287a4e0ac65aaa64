package syntax

import (
	"fmt"
	"slices"
)

// Expr is an expression.
type Expr interface {
	Node
	expr()
}

type (
	// Ident is a reference to a local name.
	Ident struct {
		Name string
	}

	// SelfExpr is the receiver of the enclosing member.
	SelfExpr struct{}

	// TypeExpr is a type used in expression position, as the target of a
	// static member access or an initializer call.
	TypeExpr struct {
		Type *Type
	}

	// LitExpr is a string, int, bool or nil literal.
	LitExpr struct {
		Value any
	}

	// StrSegment is one part of an interpolated string. Exactly one of
	// Text and Value is set.
	StrSegment struct {
		Text  string
		Value Expr
	}

	// StrExpr is an interpolated string literal.
	StrExpr struct {
		Segments []StrSegment
	}

	// MemberExpr selects a member of X.
	MemberExpr struct {
		X    Expr
		Name string
		// Optional marks optional chaining: the access yields nil when X is nil.
		Optional bool
		// Computed marks a computed property of a type declared elsewhere.
		// Back ends that lower computed properties to methods need it.
		Computed bool
	}

	// Argument is a call argument with an optional label.
	Argument struct {
		Label string
		Value Expr
	}

	// CallExpr calls Fun with the given arguments. TypeArgs are explicit
	// generic arguments.
	CallExpr struct {
		Fun      Expr
		Args     []Argument
		TypeArgs []*Type
	}

	// PipeExpr passes X as the single argument of Fun.
	PipeExpr struct {
		X   Expr
		Fun Expr
	}

	// TupleExpr is a parenthesized list of values.
	TupleExpr struct {
		Elems []Argument
	}

	// ArrayExpr is an array literal of Elem typed values.
	ArrayExpr struct {
		Elem  *Type
		Elems []Expr
	}

	// BinaryExpr is X Op Y.
	BinaryExpr struct {
		Op   string
		X, Y Expr
	}

	// NotExpr is the logical negation of X.
	NotExpr struct {
		X Expr
	}

	// TryExpr evaluates a throwing expression. With Optional set, a thrown
	// error yields nil instead of propagating.
	TryExpr struct {
		X        Expr
		Optional bool
	}

	// AwaitExpr waits for an asynchronous expression.
	AwaitExpr struct {
		X Expr
	}

	// CaseExpr is an enum case value.
	CaseExpr struct {
		Enum *Type
		Name string
	}

	// CountExpr is the number of elements in a collection.
	CountExpr struct {
		X Expr
	}

	// IsEmptyExpr reports whether a collection has no elements.
	IsEmptyExpr struct {
		X Expr
	}

	// ConcatExpr is the concatenation of two collections.
	ConcatExpr struct {
		X, Y Expr
	}

	// CallerExpr is the source location of the call site, valid only as a
	// parameter default.
	CallerExpr struct {
		Kind CallerKind
	}

	// ResourceExpr loads a bundled resource and yields optional bytes.
	ResourceExpr struct {
		Name Expr
		Ext  string
	}
)

// CallerKind selects the captured call-site property.
type CallerKind int

const (
	CallerFileKind CallerKind = iota
	CallerFunctionKind
	CallerLineKind
)

// Binary operators accepted by Binary.
var BinaryOps = []string{"==", "!=", "<", "<=", ">", ">=", "&&", "||", "+", "-", "*", "/"}

// Id returns a reference to a local name.
func Id(name string) *Ident { return &Ident{Name: name} }

// Self returns the receiver of the enclosing member.
func Self() *SelfExpr { return &SelfExpr{} }

// TypeRef returns t in expression position.
func TypeRef(t *Type) *TypeExpr { return &TypeExpr{Type: t} }

// Lit returns a literal. Valid values are string, int, bool and nil.
func Lit(v any) *LitExpr { return &LitExpr{Value: v} }

// Str returns an interpolated string. Each part is either literal text
// (string) or an interpolated value (Expr); other values are formatted
// as text.
func Str(parts ...any) *StrExpr {
	s := &StrExpr{}
	for _, p := range parts {
		switch p := p.(type) {
		case string:
			s.Segments = append(s.Segments, StrSegment{Text: p})
		case Expr:
			s.Segments = append(s.Segments, StrSegment{Value: p})
		default:
			s.Segments = append(s.Segments, StrSegment{Text: fmt.Sprint(p)})
		}
	}
	return s
}

// MemberAccess returns x.name.
func MemberAccess(x Expr, name string) *MemberExpr {
	return &MemberExpr{X: x, Name: name}
}

// OptionalMember returns x?.name.
func OptionalMember(x Expr, name string) *MemberExpr {
	return &MemberExpr{X: x, Name: name, Optional: true}
}

// AsComputed returns the access marked as reading a computed property.
func (m *MemberExpr) AsComputed() *MemberExpr {
	n := *m
	n.Computed = true
	return &n
}

// Arg returns an unlabelled argument.
func Arg(v Expr) Argument { return Argument{Value: v} }

// Labeled returns a labelled argument.
func Labeled(label string, v Expr) Argument { return Argument{Label: label, Value: v} }

// Call returns a call of fun. Plain expressions are accepted as
// unlabelled arguments.
func Call(fun Expr, args ...any) *CallExpr {
	return &CallExpr{Fun: fun, Args: arguments(args)}
}

// WithTypeArgs returns c with explicit generic arguments.
func (c *CallExpr) WithTypeArgs(types ...*Type) *CallExpr {
	n := *c
	n.Args = slices.Clone(c.Args)
	n.TypeArgs = append(slices.Clone(c.TypeArgs), types...)
	return &n
}

// AllLabeled reports whether c has arguments and all of them are labelled.
func (c *CallExpr) AllLabeled() bool {
	if len(c.Args) == 0 {
		return false
	}
	for _, a := range c.Args {
		if a.Label == "" {
			return false
		}
	}
	return true
}

// PipeInto returns fun applied to x.
func PipeInto(x, fun Expr) *PipeExpr { return &PipeExpr{X: x, Fun: fun} }

// Tuple returns a tuple of the given values.
func Tuple(elems ...any) *TupleExpr { return &TupleExpr{Elems: arguments(elems)} }

// ArrayLit returns an array literal.
func ArrayLit(elem *Type, elems ...Expr) *ArrayExpr {
	return &ArrayExpr{Elem: elem, Elems: slices.Clone(elems)}
}

// Binary returns x op y.
func Binary(x Expr, op string, y Expr) *BinaryExpr { return &BinaryExpr{Op: op, X: x, Y: y} }

// Not returns !x.
func Not(x Expr) *NotExpr { return &NotExpr{X: x} }

// Try returns a throwing evaluation of x.
func Try(x Expr) *TryExpr { return &TryExpr{X: x} }

// TryOptional returns an evaluation of x that yields nil on error.
func TryOptional(x Expr) *TryExpr { return &TryExpr{X: x, Optional: true} }

// Await returns x awaited.
func Await(x Expr) *AwaitExpr { return &AwaitExpr{X: x} }

// CaseOf returns the named case of enum.
func CaseOf(enum *Type, name string) *CaseExpr { return &CaseExpr{Enum: enum, Name: name} }

// Count returns the element count of x.
func Count(x Expr) *CountExpr { return &CountExpr{X: x} }

// IsEmpty reports whether x has no elements.
func IsEmpty(x Expr) *IsEmptyExpr { return &IsEmptyExpr{X: x} }

// Concat returns x followed by y.
func Concat(x, y Expr) *ConcatExpr { return &ConcatExpr{X: x, Y: y} }

// CallerFile is the file name of the call site.
func CallerFile() *CallerExpr { return &CallerExpr{Kind: CallerFileKind} }

// CallerFunction is the function name of the call site.
func CallerFunction() *CallerExpr { return &CallerExpr{Kind: CallerFunctionKind} }

// CallerLine is the line number of the call site.
func CallerLine() *CallerExpr { return &CallerExpr{Kind: CallerLineKind} }

// ResourceData returns the bytes of the bundled resource name.ext, or nil.
func ResourceData(name Expr, ext string) *ResourceExpr {
	return &ResourceExpr{Name: name, Ext: ext}
}

func arguments(args []any) []Argument {
	out := make([]Argument, 0, len(args))
	for _, a := range args {
		switch a := a.(type) {
		case Argument:
			out = append(out, a)
		case Expr:
			out = append(out, Argument{Value: a})
		default:
			// Check reports the nil value.
			out = append(out, Argument{})
		}
	}
	return out
}

func (*Ident) node() {}
func (*SelfExpr) node() {}
func (*TypeExpr) node() {}
func (*LitExpr) node() {}
func (*StrExpr) node() {}
func (*MemberExpr) node() {}
func (*CallExpr) node() {}
func (*PipeExpr) node() {}
func (*TupleExpr) node() {}
func (*ArrayExpr) node() {}
func (*BinaryExpr) node() {}
func (*NotExpr) node() {}
func (*TryExpr) node() {}
func (*AwaitExpr) node() {}
func (*CaseExpr) node() {}
func (*CountExpr) node() {}
func (*IsEmptyExpr) node() {}
func (*ConcatExpr) node() {}
func (*CallerExpr) node() {}
func (*ResourceExpr) node() {}

func (*Ident) expr() {}
func (*SelfExpr) expr() {}
func (*TypeExpr) expr() {}
func (*LitExpr) expr() {}
func (*StrExpr) expr() {}
func (*MemberExpr) expr() {}
func (*CallExpr) expr() {}
func (*PipeExpr) expr() {}
func (*TupleExpr) expr() {}
func (*ArrayExpr) expr() {}
func (*BinaryExpr) expr() {}
func (*NotExpr) expr() {}
func (*TryExpr) expr() {}
func (*AwaitExpr) expr() {}
func (*CaseExpr) expr() {}
func (*CountExpr) expr() {}
func (*IsEmptyExpr) expr() {}
func (*ConcatExpr) expr() {}
func (*CallerExpr) expr() {}
func (*ResourceExpr) expr() {}
