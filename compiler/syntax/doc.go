// Package syntax is the target-agnostic intermediate representation used by
// the forge generators to build source files without string concatenation.
//
// A tree is made of declarations (Decl), expressions (Expr) and statements
// (Stmt) rooted at a File. Nodes are persistent values: every builder method
// returns a new node and never modifies the receiver, so a node that was
// attached to a parent can not be altered or moved through the builder API
// afterwards.
//
//	cleanup := syntax.Class("CoreManagerCleanup").
//	    WithAccess(syntax.Public).
//	    AsFinal().
//	    Inherit(syntax.Named("LocalDataCleaning")).
//	    AddMember(syntax.Prop("managers", syntax.Named("CoreManagerContainer")).
//	        WithAccess(syntax.Private))
//
// Expressions are composed with explicitly named functions rather than
// operators:
//
//	syntax.Call(
//	    syntax.MemberAccess(syntax.TypeRef(syntax.Named("JSONFactory")), "loadJSON"),
//	    syntax.Labeled("named", syntax.Lit("cars_fetch_all")),
//	)
//
// A File carries no target language. It is turned into text by a back end
// (see compiler/gen/swift and compiler/gen/golang) which first runs Check to
// reject trees that cannot be serialized.
//
// Fields of the node types are exported for the back ends and must be
// treated as read-only.
package syntax
