package syntax

import (
	"fmt"
	"reflect"
	"slices"
)

func (*File) node() {}

// Walk traverses the tree rooted at n in depth-first source order, calling
// fn for each node. Children of a node are skipped when fn returns false.
// Nil nodes are not visited.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}
	for _, c := range children(n) {
		Walk(c, fn)
	}
}

// Types returns every type referenced in the tree rooted at n, in source
// order. Generic arguments and array elements are not expanded.
func Types(n Node) []*Type {
	var types []*Type
	Walk(n, func(n Node) bool {
		for _, t := range typesOf(n) {
			if t != nil {
				types = append(types, t)
			}
		}
		return true
	})
	return types
}

// Modules returns the sorted, deduplicated logical modules of the types
// referenced in the tree rooted at n.
func Modules(n Node) []string {
	var mods []string
	for _, t := range Types(n) {
		mods = append(mods, t.Modules()...)
	}
	slices.Sort(mods)
	return slices.Compact(mods)
}

// Contains reports whether the tree rooted at n holds a node matching fn.
func Contains(n Node, fn func(Node) bool) (found bool) {
	Walk(n, func(n Node) bool {
		if found || fn(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Check reports the first construct in the tree rooted at n that no back
// end can serialize: dangling (nil) nodes, empty identifiers, guards whose
// else branch does not leave the scope, incomplete fan-outs and misplaced
// nodes. It returns a *RenderError or nil.
func Check(n Node) error {
	if isNil(n) {
		return Errorf("", "dangling nil node")
	}
	c := &checker{}
	if err := c.check(n, nil); err != nil {
		return err
	}
	return nil
}

type checker struct {
	// defaults counts the parameter defaults being checked.
	defaults int
}

func (c *checker) check(n, parent Node) *RenderError {
	if isNil(n) {
		return Errorf(describe(parent), "dangling nil node")
	}
	if err := c.node(n, parent); err != nil {
		return err
	}
	for _, t := range typesOf(n) {
		if err := checkType(n, t); err != nil {
			return err
		}
	}
	if f, ok := n.(*FuncDecl); ok {
		for _, p := range f.Params {
			if p.Default == nil {
				continue
			}
			c.defaults++
			err := c.check(p.Default, n)
			c.defaults--
			if err != nil {
				return err
			}
		}
	}
	for _, ch := range children(n) {
		if f, ok := n.(*FuncDecl); ok && isDefault(f, ch) {
			continue
		}
		if err := c.check(ch, n); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) node(n, parent Node) *RenderError {
	empty := func(name string) *RenderError {
		if name == "" {
			return Errorf(describe(parent), "%s with empty identifier", kindOf(n))
		}
		return nil
	}
	switch n := n.(type) {
	case *ImportDecl:
		return empty(n.Module)
	case *TypeDecl:
		if err := empty(n.Name); err != nil {
			return err
		}
		if len(n.Cases) > 0 && n.Kind != KindEnum {
			return Errorf(describe(n), "cases declared on a non-enum type")
		}
		for _, m := range n.Members {
			if f, ok := m.(*FuncDecl); ok && n.Kind == KindProtocol && f.HasBody() {
				return Errorf(describe(f), "protocol requirement has a body")
			}
		}
	case *ExtensionDecl:
		if n.Of == nil {
			return Errorf("extension", "missing extended type")
		}
	case *FuncDecl:
		if err := empty(n.Name); err != nil {
			return err
		}
		if !n.HasBody() {
			if p, ok := parent.(*TypeDecl); !ok || p.Kind != KindProtocol {
				return Errorf(describe(n), "missing body")
			}
		}
		for _, p := range n.Params {
			if p.Name == "" {
				return Errorf(describe(n), "parameter with empty identifier")
			}
			if p.Type == nil {
				return Errorf(describe(n), "parameter %s has no type", p.Name)
			}
		}
	case *PropertyDecl:
		if err := empty(n.Name); err != nil {
			return err
		}
		if n.Type == nil {
			return Errorf(describe(n), "missing type")
		}
		if n.Setter != nil && n.Getter == nil {
			return Errorf(describe(n), "setter without getter")
		}
	case *VariableDecl:
		if err := empty(n.Name); err != nil {
			return err
		}
		if n.Value == nil && n.Type == nil {
			return Errorf(describe(n), "variable has neither type nor value")
		}
	case *Ident:
		return empty(n.Name)
	case *MemberExpr:
		return empty(n.Name)
	case *LitExpr:
		switch n.Value.(type) {
		case nil, string, int, bool:
		default:
			return Errorf(describe(parent), "unsupported literal of type %T", n.Value)
		}
	case *BinaryExpr:
		if !slices.Contains(BinaryOps, n.Op) {
			return Errorf(describe(parent), "unsupported operator %q", n.Op)
		}
	case *CaseExpr:
		return empty(n.Name)
	case *CallerExpr:
		if c.defaults == 0 {
			return Errorf(describe(parent), "call-site capture outside a parameter default")
		}
	case *ResourceExpr:
		return empty(n.Ext)
	case *GuardStmt:
		if !exits(n.Else) {
			return Errorf("guard", "else branch does not exit the scope")
		}
	case *GuardLetStmt:
		if err := empty(n.Name); err != nil {
			return err
		}
		if !exits(n.Else) {
			return Errorf("guard let "+n.Name, "else branch does not exit the scope")
		}
	case *DoCatchStmt:
		return empty(n.Err)
	case *ForInStmt:
		return empty(n.Name)
	case *AssertStmt:
		if n.Kind == AssertEqualKind && n.Want == nil {
			return Errorf(describe(parent), "equality assertion without expected value")
		}
	case *FanOutStmt:
		switch {
		case n.Var == "":
			return Errorf("fan-out", "missing accumulator name")
		case n.Initial == nil:
			return Errorf("fan-out "+n.Var, "missing initial accumulator")
		case n.Method == "":
			return Errorf("fan-out "+n.Var, "missing merge method")
		case n.Outcome == nil:
			return Errorf("fan-out "+n.Var, "missing outcome type")
		}
	}
	return nil
}

func checkType(n Node, t *Type) *RenderError {
	if t == nil {
		return nil
	}
	switch {
	case t.Elem != nil:
		return checkType(n, t.Elem)
	case t.Builtin == NotBuiltin && t.Name == "":
		return Errorf(describe(n), "type with empty name")
	}
	for _, a := range t.Args {
		if a == nil {
			return Errorf(describe(n), "nil generic argument of %s", t.Name)
		}
		if err := checkType(n, a); err != nil {
			return err
		}
	}
	return nil
}

// exits reports whether a statement list leaves the enclosing scope.
func exits(stmts []Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ReturnStmt)
	return ok
}

func isDefault(f *FuncDecl, n Node) bool {
	for _, p := range f.Params {
		if p.Default != nil && Node(p.Default) == n {
			return true
		}
	}
	return false
}

// children returns the direct children of n in source order. Required
// children are always present, nil or not; optional ones only when set.
func children(n Node) []Node {
	var out []Node
	add := func(ns ...Node) { out = append(out, ns...) }
	opt := func(e Expr) {
		if e != nil {
			out = append(out, e)
		}
	}
	stmts := func(ss []Stmt) {
		for _, s := range ss {
			out = append(out, s)
		}
	}
	decls := func(ds []Decl) {
		for _, d := range ds {
			out = append(out, d)
		}
	}
	args := func(as []Argument) {
		for _, a := range as {
			out = append(out, a.Value)
		}
	}
	switch n := n.(type) {
	case *File:
		if n.Header != nil {
			add(n.Header)
		}
		for _, i := range n.Imports {
			add(i)
		}
		decls(n.Decls)
	case *TypeDecl:
		decls(n.Members)
	case *ExtensionDecl:
		decls(n.Members)
	case *FuncDecl:
		for _, p := range n.Params {
			opt(p.Default)
		}
		stmts(n.Body)
	case *PropertyDecl:
		opt(n.Value)
		stmts(n.Getter)
		stmts(n.Setter)
	case *VariableDecl:
		opt(n.Value)
	case *StrExpr:
		for _, s := range n.Segments {
			if s.Value != nil {
				add(s.Value)
			}
		}
	case *MemberExpr:
		add(n.X)
	case *CallExpr:
		add(n.Fun)
		args(n.Args)
	case *PipeExpr:
		add(n.X, n.Fun)
	case *TupleExpr:
		args(n.Elems)
	case *ArrayExpr:
		for _, e := range n.Elems {
			add(e)
		}
	case *BinaryExpr:
		add(n.X, n.Y)
	case *NotExpr:
		add(n.X)
	case *TryExpr:
		add(n.X)
	case *AwaitExpr:
		add(n.X)
	case *CountExpr:
		add(n.X)
	case *IsEmptyExpr:
		add(n.X)
	case *ConcatExpr:
		add(n.X, n.Y)
	case *ResourceExpr:
		add(n.Name)
	case *ExprStmt:
		add(n.X)
	case *AssignStmt:
		add(n.Target, n.Value)
	case *ReturnStmt:
		opt(n.Value)
	case *GuardStmt:
		add(n.Cond)
		stmts(n.Else)
	case *GuardLetStmt:
		add(n.Value)
		stmts(n.Else)
	case *DoCatchStmt:
		stmts(n.Body)
		stmts(n.Handler)
	case *ForInStmt:
		add(n.Seq)
		stmts(n.Body)
	case *FailStmt:
		add(n.Message)
	case *AssertStmt:
		add(n.Got)
		opt(n.Want)
	case *FanOutStmt:
		opt(n.Initial)
		for _, t := range n.Tasks {
			add(t)
		}
	}
	return out
}

// typesOf returns the types referenced directly by n.
func typesOf(n Node) []*Type {
	switch n := n.(type) {
	case *TypeDecl:
		return n.Inherits
	case *ExtensionDecl:
		types := append([]*Type{n.Of}, n.Inherits...)
		for _, w := range n.Where {
			types = append(types, w.Left, w.Right)
		}
		return types
	case *FuncDecl:
		var types []*Type
		for _, p := range n.Params {
			types = append(types, p.Type)
		}
		return append(types, n.Result)
	case *PropertyDecl:
		return []*Type{n.Type}
	case *VariableDecl:
		return []*Type{n.Type}
	case *TypeExpr:
		return []*Type{n.Type}
	case *ArrayExpr:
		return []*Type{n.Elem}
	case *CaseExpr:
		return []*Type{n.Enum}
	case *CallExpr:
		return n.TypeArgs
	case *FanOutStmt:
		return []*Type{n.Outcome}
	}
	return nil
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func kindOf(n Node) string {
	switch n.(type) {
	case *ImportDecl:
		return "import"
	case *TypeDecl:
		return "type"
	case *FuncDecl:
		return "func"
	case *PropertyDecl:
		return "property"
	case *VariableDecl:
		return "variable"
	case *Ident:
		return "identifier"
	case *MemberExpr:
		return "member access"
	case *CaseExpr:
		return "enum case"
	case *ResourceExpr:
		return "resource"
	case *DoCatchStmt:
		return "catch binding"
	case *ForInStmt:
		return "loop variable"
	case *GuardLetStmt:
		return "guard binding"
	}
	return fmt.Sprintf("%T", n)
}

// describe returns a short description of n for error messages.
func describe(n Node) string {
	if isNil(n) {
		return ""
	}
	switch n := n.(type) {
	case *File:
		return "file " + n.Name
	case *TypeDecl:
		return n.Kind.String() + " " + n.Name
	case *ExtensionDecl:
		return "extension " + n.Of.String()
	case *FuncDecl:
		return "func " + n.Name
	case *PropertyDecl:
		return "property " + n.Name
	case *VariableDecl:
		return "variable " + n.Name
	case *MemberExpr:
		return "member " + n.Name
	case *CallExpr:
		return "call"
	case *GuardLetStmt:
		return "guard let " + n.Name
	case *FanOutStmt:
		return "fan-out " + n.Var
	}
	return kindOf(n)
}
