package syntax

import "slices"

// Stmt is a statement. *VariableDecl and *CommentDecl are statements too.
type Stmt interface {
	Node
	stmt()
}

type (
	// ExprStmt evaluates X for its effect.
	ExprStmt struct {
		X Expr
	}

	// AssignStmt assigns Value to Target.
	AssignStmt struct {
		Target Expr
		Value  Expr
	}

	// ReturnStmt returns Value, or nothing when Value is nil.
	ReturnStmt struct {
		Value Expr
	}

	// GuardStmt runs Else when Cond is false. Else must exit the scope.
	GuardStmt struct {
		Cond Expr
		Else []Stmt
	}

	// GuardLetStmt binds Name to the non-nil value of Value, running Else
	// when it is nil. Else must exit the scope.
	GuardLetStmt struct {
		Name  string
		Value Expr
		Else  []Stmt
	}

	// DoCatchStmt runs Body and, when a try in Body fails, Handler with the
	// error bound to Err.
	DoCatchStmt struct {
		Body    []Stmt
		Err     string
		Handler []Stmt
	}

	// ForInStmt runs Body once for each element of Seq bound to Name.
	ForInStmt struct {
		Name string
		Seq  Expr
		Body []Stmt
	}

	// FailStmt fails the running test with Message and continues.
	FailStmt struct {
		Message Expr
	}

	// AssertStmt is a test assertion.
	AssertStmt struct {
		Kind AssertKind
		// Got is the asserted value; Want is set for equality assertions.
		Got  Expr
		Want Expr
	}

	// FanOutStmt runs each task concurrently, waits for all of them and
	// folds every outcome into the accumulator Var, starting from Initial,
	// with Var = Var.Method(Label: outcome). No task is cancelled and no
	// outcome is dropped.
	FanOutStmt struct {
		Var     string
		Outcome *Type
		Initial Expr
		Method  string
		Label   string
		Tasks   []Expr
	}
)

// AssertKind selects an assertion.
type AssertKind int

const (
	AssertEqualKind AssertKind = iota
	AssertFalseKind
)

// ErrName is the identifier bound to the caught error by default.
const ErrName = "error"

// Do returns a statement evaluating x.
func Do(x Expr) *ExprStmt { return &ExprStmt{X: x} }

// Assign returns target = value.
func Assign(target, value Expr) *AssignStmt { return &AssignStmt{Target: target, Value: value} }

// Return returns a return statement. A nil value returns nothing.
func Return(v Expr) *ReturnStmt { return &ReturnStmt{Value: v} }

// Guard returns a guard running elseBody when cond is false.
func Guard(cond Expr, elseBody ...Stmt) *GuardStmt {
	return &GuardStmt{Cond: cond, Else: slices.Clone(elseBody)}
}

// GuardLet returns a guard binding name to the unwrapped value.
func GuardLet(name string, value Expr, elseBody ...Stmt) *GuardLetStmt {
	return &GuardLetStmt{Name: name, Value: value, Else: slices.Clone(elseBody)}
}

// DoCatch returns a do/catch statement with an empty catch clause binding
// the error to ErrName.
func DoCatch(body ...Stmt) *DoCatchStmt {
	return &DoCatchStmt{Body: slices.Clone(body), Err: ErrName}
}

// Catch returns d with the given catch clause.
func (d *DoCatchStmt) Catch(body ...Stmt) *DoCatchStmt {
	n := *d
	n.Body = slices.Clone(d.Body)
	n.Handler = slices.Clone(body)
	return &n
}

// CatchAs returns d binding the caught error to name.
func (d *DoCatchStmt) CatchAs(name string) *DoCatchStmt {
	n := *d
	n.Body = slices.Clone(d.Body)
	n.Handler = slices.Clone(d.Handler)
	n.Err = name
	return &n
}

// ForIn returns a loop over seq.
func ForIn(name string, seq Expr, body ...Stmt) *ForInStmt {
	return &ForInStmt{Name: name, Seq: seq, Body: slices.Clone(body)}
}

// Fail returns a statement failing the running test.
func Fail(message Expr) *FailStmt { return &FailStmt{Message: message} }

// AssertEqual asserts got equals want.
func AssertEqual(got, want Expr) *AssertStmt {
	return &AssertStmt{Kind: AssertEqualKind, Got: got, Want: want}
}

// AssertFalse asserts got is false.
func AssertFalse(got Expr) *AssertStmt {
	return &AssertStmt{Kind: AssertFalseKind, Got: got}
}

// FanOutJoin returns a fan-out folding outcomes of type outcome into the
// accumulator variable name. Start and Merge must be set before rendering.
func FanOutJoin(name string, outcome *Type) *FanOutStmt {
	return &FanOutStmt{Var: name, Outcome: outcome}
}

// Start returns f with the initial accumulator value.
func (f *FanOutStmt) Start(initial Expr) *FanOutStmt {
	n := f.clone()
	n.Initial = initial
	return n
}

// Merge returns f folding outcomes with the given method of the
// accumulator, passing the outcome under label.
func (f *FanOutStmt) Merge(method, label string) *FanOutStmt {
	n := f.clone()
	n.Method = method
	n.Label = label
	return n
}

// Task returns f with the given task expressions appended.
func (f *FanOutStmt) Task(tasks ...Expr) *FanOutStmt {
	n := f.clone()
	n.Tasks = append(n.Tasks, tasks...)
	return n
}

func (f *FanOutStmt) clone() *FanOutStmt {
	n := *f
	n.Tasks = slices.Clone(f.Tasks)
	return &n
}

func (*ExprStmt) node() {}
func (*AssignStmt) node() {}
func (*ReturnStmt) node() {}
func (*GuardStmt) node() {}
func (*GuardLetStmt) node() {}
func (*DoCatchStmt) node() {}
func (*ForInStmt) node() {}
func (*FailStmt) node() {}
func (*AssertStmt) node() {}
func (*FanOutStmt) node() {}

func (*ExprStmt) stmt() {}
func (*AssignStmt) stmt() {}
func (*ReturnStmt) stmt() {}
func (*GuardStmt) stmt() {}
func (*GuardLetStmt) stmt() {}
func (*DoCatchStmt) stmt() {}
func (*ForInStmt) stmt() {}
func (*FailStmt) stmt() {}
func (*AssertStmt) stmt() {}
func (*FanOutStmt) stmt() {}
func (*VariableDecl) stmt() {}
func (*CommentDecl) stmt() {}
