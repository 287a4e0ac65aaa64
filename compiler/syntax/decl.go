package syntax

import "slices"

// Node is any element of a syntax tree.
type Node interface {
	node()
}

// Decl is a declaration: a type, extension, function, property, variable,
// comment or import.
type Decl interface {
	Node
	decl()
}

// Access is the visibility of a declaration.
type Access int

const (
	Internal Access = iota
	Private
	Public
)

// TypeKind is the kind of a type declaration.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindStruct
	KindProtocol
	KindEnum
	// KindTestSuite is a class holding test functions and fixtures.
	KindTestSuite
)

// String returns the kind name.
func (k TypeKind) String() string {
	return [...]string{"class", "struct", "protocol", "enum", "test suite"}[k]
}

// File is the root of a tree.
type File struct {
	Name    string
	Header  *CommentDecl
	Imports []*ImportDecl
	Decls   []Decl
}

// NewFile returns an empty file with the given name.
func NewFile(name string) *File {
	return &File{Name: name}
}

// WithHeader returns f with the given header comment.
func (f *File) WithHeader(c *CommentDecl) *File {
	n := f.clone()
	n.Header = c
	return n
}

// AddImport returns f with the given imports appended.
func (f *File) AddImport(imports ...*ImportDecl) *File {
	n := f.clone()
	n.Imports = append(n.Imports, imports...)
	return n
}

// Add returns f with the given declarations appended.
func (f *File) Add(decls ...Decl) *File {
	n := f.clone()
	n.Decls = append(n.Decls, decls...)
	return n
}

func (f *File) clone() *File {
	n := *f
	n.Imports = slices.Clone(f.Imports)
	n.Decls = slices.Clone(f.Decls)
	return &n
}

// CommentDecl is a line comment block. It is both a declaration and a
// statement.
type CommentDecl struct {
	Lines []string
}

// Comment returns a comment block with one line per argument.
func Comment(lines ...string) *CommentDecl {
	return &CommentDecl{Lines: slices.Clone(lines)}
}

// ImportDecl imports a module by its logical name.
type ImportDecl struct {
	Module   string
	Testable bool
}

// Import returns an import of the given logical module.
func Import(module string) *ImportDecl {
	return &ImportDecl{Module: module}
}

// AsTestable returns the import with internal symbols exposed to tests.
func (i *ImportDecl) AsTestable() *ImportDecl {
	n := *i
	n.Testable = true
	return &n
}

// TypeDecl declares a class, struct, protocol, enum or test suite.
type TypeDecl struct {
	Kind     TypeKind
	Name     string
	Access   Access
	Final    bool
	Inherits []*Type
	// Cases of an enum, in declaration order.
	Cases   []string
	Members []Decl
	Doc     []string
}

func newType(kind TypeKind, name string) *TypeDecl {
	return &TypeDecl{Kind: kind, Name: name}
}

// Class declares a reference type.
func Class(name string) *TypeDecl { return newType(KindClass, name) }

// Struct declares a value type.
func Struct(name string) *TypeDecl { return newType(KindStruct, name) }

// Protocol declares an interface type. Its functions have no bodies.
func Protocol(name string) *TypeDecl { return newType(KindProtocol, name) }

// Enum declares an enumeration. An enum without cases is a namespace for
// static members.
func Enum(name string) *TypeDecl { return newType(KindEnum, name) }

// TestSuite declares a class holding test functions.
func TestSuite(name string) *TypeDecl { return newType(KindTestSuite, name) }

// WithAccess returns t with the given access level.
func (t *TypeDecl) WithAccess(a Access) *TypeDecl {
	n := t.clone()
	n.Access = a
	return n
}

// AsFinal returns t marked final.
func (t *TypeDecl) AsFinal() *TypeDecl {
	n := t.clone()
	n.Final = true
	return n
}

// Inherit returns t with the given inherited types appended.
func (t *TypeDecl) Inherit(types ...*Type) *TypeDecl {
	n := t.clone()
	n.Inherits = append(n.Inherits, types...)
	return n
}

// AddCase returns t with the given enum cases appended.
func (t *TypeDecl) AddCase(names ...string) *TypeDecl {
	n := t.clone()
	n.Cases = append(n.Cases, names...)
	return n
}

// AddMember returns t with the given members appended.
func (t *TypeDecl) AddMember(members ...Decl) *TypeDecl {
	n := t.clone()
	n.Members = append(n.Members, members...)
	return n
}

// Documented returns t with the given doc comment.
func (t *TypeDecl) Documented(lines ...string) *TypeDecl {
	n := t.clone()
	n.Doc = slices.Clone(lines)
	return n
}

// Ref returns a reference to the declared type.
func (t *TypeDecl) Ref() *Type { return Named(t.Name) }

func (t *TypeDecl) clone() *TypeDecl {
	n := *t
	n.Inherits = slices.Clone(t.Inherits)
	n.Cases = slices.Clone(t.Cases)
	n.Members = slices.Clone(t.Members)
	return &n
}

// ConstraintKind is the relation of a generic constraint.
type ConstraintKind int

const (
	// SameType binds a generic parameter to a concrete type (A == B).
	SameType ConstraintKind = iota
	// Conforms requires a generic parameter to conform to a type (A: B).
	Conforms
)

// Constraint is a where-clause requirement.
type Constraint struct {
	Kind        ConstraintKind
	Left, Right *Type
}

// ExtensionDecl adds members and conformances to an existing type.
type ExtensionDecl struct {
	Of       *Type
	Access   Access
	Inherits []*Type
	Where    []Constraint
	Members  []Decl
}

// Extend returns an extension of the given type.
func Extend(of *Type) *ExtensionDecl {
	return &ExtensionDecl{Of: of}
}

// Inherit returns e with the given conformances appended.
func (e *ExtensionDecl) Inherit(types ...*Type) *ExtensionDecl {
	n := e.clone()
	n.Inherits = append(n.Inherits, types...)
	return n
}

// WhereEqual returns e constrained by left == right.
func (e *ExtensionDecl) WhereEqual(left, right *Type) *ExtensionDecl {
	n := e.clone()
	n.Where = append(n.Where, Constraint{Kind: SameType, Left: left, Right: right})
	return n
}

// WhereConforms returns e constrained by left: right.
func (e *ExtensionDecl) WhereConforms(left, right *Type) *ExtensionDecl {
	n := e.clone()
	n.Where = append(n.Where, Constraint{Kind: Conforms, Left: left, Right: right})
	return n
}

// AddMember returns e with the given members appended.
func (e *ExtensionDecl) AddMember(members ...Decl) *ExtensionDecl {
	n := e.clone()
	n.Members = append(n.Members, members...)
	return n
}

func (e *ExtensionDecl) clone() *ExtensionDecl {
	n := *e
	n.Inherits = slices.Clone(e.Inherits)
	n.Where = slices.Clone(e.Where)
	n.Members = slices.Clone(e.Members)
	return &n
}

// Param is a function parameter. An empty Label means the argument label
// equals the name, and "_" means the argument is unlabelled.
type Param struct {
	Label   string
	Name    string
	Type    *Type
	Default Expr
}

// ArgLabel returns the label used at call sites, or "" when unlabelled.
func (p Param) ArgLabel() string {
	switch p.Label {
	case "":
		return p.Name
	case "_":
		return ""
	}
	return p.Label
}

// FuncDecl declares a function, method or initializer.
type FuncDecl struct {
	Name     string
	Access   Access
	Static   bool
	Override bool
	Async    bool
	Throws   bool
	// IsInit marks an initializer.
	IsInit bool
	Params []Param
	Result *Type
	// Body is nil for requirements declared inside protocols.
	Body []Stmt
	Doc  []string
}

// Func declares a function with the given name.
func Func(name string) *FuncDecl {
	return &FuncDecl{Name: name}
}

// Init declares an initializer.
func Init() *FuncDecl {
	return &FuncDecl{Name: "init", IsInit: true}
}

// WithAccess returns f with the given access level.
func (f *FuncDecl) WithAccess(a Access) *FuncDecl {
	n := f.clone()
	n.Access = a
	return n
}

// AsStatic returns f as a type-level function.
func (f *FuncDecl) AsStatic() *FuncDecl {
	n := f.clone()
	n.Static = true
	return n
}

// AsOverride returns f marked as overriding an inherited function.
func (f *FuncDecl) AsOverride() *FuncDecl {
	n := f.clone()
	n.Override = true
	return n
}

// AsAsync returns f marked asynchronous.
func (f *FuncDecl) AsAsync() *FuncDecl {
	n := f.clone()
	n.Async = true
	return n
}

// AsThrowing returns f marked as throwing.
func (f *FuncDecl) AsThrowing() *FuncDecl {
	n := f.clone()
	n.Throws = true
	return n
}

// Param returns f with a parameter appended.
func (f *FuncDecl) Param(label, name string, t *Type) *FuncDecl {
	return f.ParamDefault(label, name, t, nil)
}

// ParamDefault returns f with a parameter carrying a default value appended.
func (f *FuncDecl) ParamDefault(label, name string, t *Type, def Expr) *FuncDecl {
	n := f.clone()
	n.Params = append(n.Params, Param{Label: label, Name: name, Type: t, Default: def})
	return n
}

// Returns returns f with the given result type.
func (f *FuncDecl) Returns(t *Type) *FuncDecl {
	n := f.clone()
	n.Result = t
	return n
}

// WithBody returns f with the given body. An empty call still gives f an
// (empty) body.
func (f *FuncDecl) WithBody(stmts ...Stmt) *FuncDecl {
	n := f.clone()
	n.Body = append([]Stmt{}, stmts...)
	return n
}

// Documented returns f with the given doc comment.
func (f *FuncDecl) Documented(lines ...string) *FuncDecl {
	n := f.clone()
	n.Doc = slices.Clone(lines)
	return n
}

// HasBody reports whether f is a definition rather than a requirement.
func (f *FuncDecl) HasBody() bool { return f.Body != nil }

func (f *FuncDecl) clone() *FuncDecl {
	n := *f
	n.Params = slices.Clone(f.Params)
	n.Body = slices.Clone(f.Body)
	return &n
}

// PropertyDecl declares a stored, computed or lazy property.
type PropertyDecl struct {
	Name    string
	Type    *Type
	Access  Access
	Static  bool
	Mutable bool
	Lazy    bool
	// Value is the initial value of a stored property.
	Value Expr
	// Getter is the body of a computed property or the initializer body of
	// a lazy property.
	Getter []Stmt
	// Setter is the body of a computed property setter; the assigned value
	// is bound to NewValue.
	Setter []Stmt
	Doc    []string
}

// NewValue is the identifier bound to the assigned value inside setters.
const NewValue = "newValue"

// Prop declares a property of the given type.
func Prop(name string, t *Type) *PropertyDecl {
	return &PropertyDecl{Name: name, Type: t}
}

// WithAccess returns p with the given access level.
func (p *PropertyDecl) WithAccess(a Access) *PropertyDecl {
	n := p.clone()
	n.Access = a
	return n
}

// AsStatic returns p as a type-level property.
func (p *PropertyDecl) AsStatic() *PropertyDecl {
	n := p.clone()
	n.Static = true
	return n
}

// AsMutable returns p as a variable property.
func (p *PropertyDecl) AsMutable() *PropertyDecl {
	n := p.clone()
	n.Mutable = true
	return n
}

// AsLazy returns p as a lazily initialized property whose initializer is
// the given body.
func (p *PropertyDecl) AsLazy(body ...Stmt) *PropertyDecl {
	n := p.clone()
	n.Lazy = true
	n.Mutable = true
	n.Getter = append([]Stmt{}, body...)
	return n
}

// Initial returns p with the given initial value.
func (p *PropertyDecl) Initial(v Expr) *PropertyDecl {
	n := p.clone()
	n.Value = v
	return n
}

// Get returns p as a computed property with the given getter body.
func (p *PropertyDecl) Get(body ...Stmt) *PropertyDecl {
	n := p.clone()
	n.Getter = append([]Stmt{}, body...)
	return n
}

// Set returns p with the given setter body.
func (p *PropertyDecl) Set(body ...Stmt) *PropertyDecl {
	n := p.clone()
	n.Setter = append([]Stmt{}, body...)
	return n
}

// Documented returns p with the given doc comment.
func (p *PropertyDecl) Documented(lines ...string) *PropertyDecl {
	n := p.clone()
	n.Doc = slices.Clone(lines)
	return n
}

// Computed reports whether p is a computed property.
func (p *PropertyDecl) Computed() bool { return !p.Lazy && p.Getter != nil }

func (p *PropertyDecl) clone() *PropertyDecl {
	n := *p
	n.Getter = slices.Clone(p.Getter)
	n.Setter = slices.Clone(p.Setter)
	return &n
}

// VariableDecl is a local or file-level binding. It is both a declaration
// and a statement.
type VariableDecl struct {
	Name    string
	Type    *Type
	Value   Expr
	Mutable bool
}

// Let binds an immutable variable.
func Let(name string, value Expr) *VariableDecl {
	return &VariableDecl{Name: name, Value: value}
}

// Var binds a mutable variable.
func Var(name string, value Expr) *VariableDecl {
	return &VariableDecl{Name: name, Value: value, Mutable: true}
}

// Typed returns v with an explicit type annotation.
func (v *VariableDecl) Typed(t *Type) *VariableDecl {
	n := *v
	n.Type = t
	return &n
}

func (*CommentDecl) node() {}
func (*ImportDecl) node() {}
func (*TypeDecl) node() {}
func (*ExtensionDecl) node() {}
func (*FuncDecl) node() {}
func (*PropertyDecl) node() {}
func (*VariableDecl) node() {}

func (*CommentDecl) decl() {}
func (*ImportDecl) decl() {}
func (*TypeDecl) decl() {}
func (*ExtensionDecl) decl() {}
func (*FuncDecl) decl() {}
func (*PropertyDecl) decl() {}
func (*VariableDecl) decl() {}
