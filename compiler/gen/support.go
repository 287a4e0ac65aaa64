package gen

import (
	"github.com/syssam/forge/compiler/naming"
	"github.com/syssam/forge/compiler/syntax"
	"github.com/syssam/forge/schema"
)

// LogLevels are the cases of the generated LogType.
var LogLevels = []string{"debug", "info", "warning", "error"}

// SupportUtilities returns the logger facade and the local data cleanup
// types. CoreManagerCleanup erases the local store of every persisted
// entity concurrently and merges the outcomes once all of them completed.
func SupportUtilities(d *schema.Descriptions, flags Flags) (*syntax.File, error) {
	f := flags.SupportTypes().imports(syntax.NewFile("SupportUtilities"))
	f = f.Add(loggerDecls()...)
	f = f.Add(cleanupDecls(d.EntitiesWhere(func(e schema.Entity) bool { return e.Persist }))...)
	return f, nil
}

func loggerDecls() []syntax.Decl {
	logFunc := func() *syntax.FuncDecl {
		return syntax.Func("log").
			Param("_", "level", logType).
			Param("_", "message", syntax.StringType)
	}
	logTypeDecl := syntax.Enum(logType.Name).AddCase(LogLevels...)
	loggingDecl := syntax.Protocol(logging.Name).AddMember(
		logFunc().
			Param("", "file", syntax.StringType).
			Param("", "function", syntax.StringType).
			Param("", "line", syntax.IntType),
	)
	slot := syntax.MemberAccess(syntax.TypeRef(logger), "sharedLogger")
	shared := syntax.MemberAccess(syntax.TypeRef(logger), "shared").AsComputed()
	loggerDecl := syntax.Enum(logger.Name).AddMember(
		syntax.Prop("sharedLogger", logging.Optional()).
			WithAccess(syntax.Private).
			AsStatic().
			AsMutable(),
		syntax.Prop("shared", logging.Optional()).
			AsStatic().
			Get(syntax.Return(slot)).
			Set(syntax.Assign(slot, syntax.Id(syntax.NewValue))),
		logFunc().AsStatic().
			ParamDefault("", "file", syntax.StringType, syntax.CallerFile()).
			ParamDefault("", "function", syntax.StringType, syntax.CallerFunction()).
			ParamDefault("", "line", syntax.IntType, syntax.CallerLine()).
			WithBody(syntax.Do(syntax.Call(syntax.OptionalMember(shared, "log"),
				syntax.Id("level"),
				syntax.Id("message"),
				syntax.Labeled("file", syntax.Id("file")),
				syntax.Labeled("function", syntax.Id("function")),
				syntax.Labeled("line", syntax.Id("line")),
			))),
	)
	return []syntax.Decl{logTypeDecl, loggingDecl, loggerDecl}
}

func cleanupDecls(persisted []schema.Entity) []syntax.Decl {
	errorsOf := func(x syntax.Expr) syntax.Expr { return syntax.MemberAccess(x, "errors") }
	result := func(errs syntax.Expr) syntax.Expr {
		return syntax.Call(syntax.TypeRef(cleanupResult), syntax.Labeled("errors", errs))
	}
	cleanupErrorDecl := syntax.Struct(cleanupError.Name).AddMember(
		syntax.Prop("entityType", syntax.StringType),
		syntax.Prop("message", syntax.StringType),
	)
	cleanupResultDecl := syntax.Struct(cleanupResult.Name).AddMember(
		syntax.Prop("errors", syntax.ArrayOf(cleanupError)),
		syntax.Prop("success", cleanupResult).
			AsStatic().
			Initial(result(syntax.ArrayLit(cleanupError))),
		syntax.Func("failure").AsStatic().
			Param("_", "errors", syntax.ArrayOf(cleanupError)).
			Returns(cleanupResult).
			WithBody(syntax.Return(result(syntax.Id("errors")))),
		syntax.Prop("isSuccess", syntax.BoolType).
			Get(syntax.Return(syntax.IsEmpty(errorsOf(syntax.Self())))),
		syntax.Func("merged").
			Param("with", "other", cleanupResult).
			Returns(cleanupResult).
			WithBody(syntax.Return(result(syntax.Concat(errorsOf(syntax.Self()), errorsOf(syntax.Id("other")))))),
	)
	removeAll := func() *syntax.FuncDecl {
		return syntax.Func("removeAllLocalData").AsAsync().Returns(syntax.ArrayOf(cleanupError))
	}
	cleaningDecl := syntax.Protocol(localDataCleaning.Name).AddMember(removeAll())

	join := syntax.FanOutJoin("result", cleanupResult).
		Start(syntax.MemberAccess(syntax.TypeRef(cleanupResult), "success")).
		Merge("merged", "with")
	managers := syntax.MemberAccess(syntax.Self(), "managers")
	for _, e := range persisted {
		manager := syntax.MemberAccess(managers, naming.Variable(e.Name)+"Manager").AsComputed()
		join = join.Task(result(syntax.Await(syntax.Call(syntax.MemberAccess(manager, "removeAllLocalData")))))
	}
	orchestratorDecl := syntax.Class(coreManagerCleanup.Name).AsFinal().
		Inherit(localDataCleaning).
		AddMember(
			syntax.Prop("managers", managerContainer).WithAccess(syntax.Private),
			syntax.Init().
				Param("", "managers", managerContainer).
				WithBody(syntax.Assign(managers, syntax.Id("managers"))),
			removeAll().WithBody(
				join,
				syntax.Return(errorsOf(syntax.Id("result"))),
			),
		)
	return []syntax.Decl{cleanupErrorDecl, cleanupResultDecl, cleaningDecl, orchestratorDecl}
}
