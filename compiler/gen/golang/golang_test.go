package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/forge/compiler/syntax"
)

func render(t *testing.T, f *syntax.File) string {
	t.Helper()
	out, err := New("app", nil).Render(f)
	require.NoError(t, err)
	return string(out)
}

func TestRenderPackageAndHeader(t *testing.T) {
	f := syntax.NewFile("factories.go").
		WithHeader(syntax.Comment("Code generated by forge. DO NOT EDIT.")).
		Add(syntax.Enum("EntityFactory").AddMember(syntax.Func("reset").AsStatic().WithBody()))

	out := render(t, f)
	assert.Contains(t, out, "// Code generated by forge. DO NOT EDIT.")
	assert.Contains(t, out, "package app")
	assert.Contains(t, out, "func EntityFactoryReset()")
}

func TestRenderEnum(t *testing.T) {
	f := syntax.NewFile("log.go").Add(syntax.Enum("LogType").AddCase("debug", "info"))

	out := render(t, f)
	assert.Contains(t, out, "type LogType int")
	assert.Contains(t, out, "LogTypeDebug LogType = iota")
	assert.Contains(t, out, "LogTypeInfo")
}

func TestRenderProtocol(t *testing.T) {
	f := syntax.NewFile("cleanup.go").Add(
		syntax.Protocol("LocalDataCleaning").AddMember(
			syntax.Func("removeAllLocalData").AsAsync().Returns(syntax.ArrayOf(syntax.Named("CleanupError"))),
		),
		syntax.Struct("CleanupError").AddMember(syntax.Prop("message", syntax.StringType)),
	)

	out := render(t, f)
	assert.Contains(t, out, "type LocalDataCleaning interface {")
	assert.Contains(t, out, "RemoveAllLocalData() []CleanupError")
	assert.Contains(t, out, "type CleanupError struct {")
	assert.Contains(t, out, "Message string")
}

func TestRenderManagerAccessor(t *testing.T) {
	car := syntax.Named("Car")
	f := syntax.NewFile("manager_providers.go").Add(
		syntax.Extend(syntax.Named("ManagerProvider").In("runtime")).
			WhereEqual(syntax.Named("Entity"), car).
			AddMember(
				syntax.Prop("carManager", syntax.Named("CoreManaging", car, syntax.Named("AppAnyEntity")).In("runtime")).
					Get(syntax.Return(syntax.Call(syntax.MemberAccess(syntax.Self(), "managing")).WithTypeArgs(car))),
			),
	)

	out := render(t, f)
	assert.Contains(t, out, "// CarManager applies where Entity == Car.")
	assert.Contains(t, out, "func CarManager(mp ManagerProvider) CoreManaging[Car, AppAnyEntity] {")
	assert.Contains(t, out, "return Managing[Car](mp)")
}

func TestRenderPayloadSuite(t *testing.T) {
	decode := syntax.Try(syntax.Call(syntax.TypeRef(syntax.Named("EndpointResultPayload")),
		syntax.Labeled("from", syntax.MemberAccess(syntax.Self(), "carsFetchAllPayload")),
		syntax.Labeled("endpoint", syntax.CaseOf(syntax.Named("Endpoint"), "cars")),
	))
	suite := syntax.TestSuite("CarsEndpointPayloadTests").AsFinal().AddMember(
		syntax.Prop("carsFetchAllPayload", syntax.BytesType).
			WithAccess(syntax.Private).
			AsLazy(
				syntax.GuardLet("data", syntax.Id("fixture"),
					syntax.Fail(syntax.Lit("Could not find resource cars_fetch_all.json")),
					syntax.Return(syntax.Call(syntax.TypeRef(syntax.BytesType))),
				),
				syntax.Return(syntax.Id("data")),
			),
		syntax.Func("test_fetch_all_cars_car").WithBody(
			syntax.DoCatch(
				syntax.Let("result", decode),
				syntax.AssertEqual(syntax.Count(syntax.MemberAccess(syntax.Id("result"), "cars")), syntax.Lit(2)),
			).Catch(syntax.Fail(syntax.Str("Unexpected error: ", syntax.Id(syntax.ErrName)))),
		),
		syntax.Func("test_fetch_all_cars_truck").WithBody(
			syntax.DoCatch(
				syntax.Let("result", decode),
				syntax.AssertFalse(syntax.IsEmpty(syntax.MemberAccess(syntax.Id("result"), "trucks"))),
			).Catch(syntax.Fail(syntax.Str("Unexpected error: ", syntax.Id(syntax.ErrName)))),
		),
	)
	f := syntax.NewFile("cars_payload_test.go").Add(
		syntax.Var("fixture", nil).Typed(syntax.BytesType),
		suite,
	)

	out := render(t, f)
	for _, want := range []string{
		"type CarsEndpointPayloadTests struct {",
		"func TestCarsEndpointPayloadTests(t *testing.T) {",
		`t.Run("test_fetch_all_cars_car", cept.TestFetchAllCarsCar)`,
		`t.Run("test_fetch_all_cars_truck", cept.TestFetchAllCarsTruck)`,
		"func (cept *CarsEndpointPayloadTests) TestFetchAllCarsCar(t *testing.T) {",
		"result, err := NewEndpointResultPayload(cept.carsFetchAllPayload(t), EndpointCars)",
		`t.Errorf("Unexpected error: %v", err)`,
		"assert.Equal(t, 2, len(result.Cars))",
		"assert.False(t, len(result.Trucks) == 0)",
		`t.Error("Could not find resource cars_fetch_all.json")`,
		`"github.com/stretchr/testify/assert"`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderFanOut(t *testing.T) {
	result := syntax.Named("CleanupResult")
	f := syntax.NewFile("support_utilities.go").Add(
		syntax.Struct("CleanupResult").AddMember(
			syntax.Prop("errors", syntax.ArrayOf(syntax.StringType)),
			syntax.Func("merged").
				Param("with", "other", result).
				Returns(result).
				WithBody(syntax.Return(syntax.Call(syntax.TypeRef(result),
					syntax.Labeled("errors", syntax.Concat(
						syntax.MemberAccess(syntax.Self(), "errors"),
						syntax.MemberAccess(syntax.Id("other"), "errors"),
					)),
				))),
		),
		syntax.Func("removeAll").
			Param("", "a", result).
			Param("", "b", result).
			Returns(syntax.ArrayOf(syntax.StringType)).
			WithBody(
				syntax.FanOutJoin("acc", result).
					Start(syntax.Call(syntax.TypeRef(result), syntax.Labeled("errors", syntax.ArrayLit(syntax.StringType)))).
					Merge("merged", "with").
					Task(syntax.Id("a"), syntax.Id("b")),
				syntax.Return(syntax.MemberAccess(syntax.Id("acc"), "errors")),
			),
	)

	out := render(t, f)
	for _, want := range []string{
		"acc := CleanupResult{Errors: []string{}}",
		"outcomes := make([]CleanupResult, 2)",
		"var wg sync.WaitGroup",
		"wg.Add(2)",
		"defer wg.Done()",
		"outcomes[0] = a",
		"outcomes[1] = b",
		"wg.Wait()",
		"acc = acc.Merged(outcome)",
		"return CleanupResult{Errors: slices.Concat(cr.Errors, other.Errors)}",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    *syntax.File
		message string
	}{
		{
			name: "assertion outside a test suite",
			file: syntax.NewFile("a.go").Add(
				syntax.Func("check").WithBody(syntax.AssertFalse(syntax.Lit(true))),
			),
			message: "assertion outside a test suite",
		},
		{
			name: "uncaught try",
			file: syntax.NewFile("b.go").Add(
				syntax.Func("load").WithBody(syntax.Do(syntax.Try(syntax.Call(syntax.Id("fetch"))))),
			),
			message: "neither caught nor thrown",
		},
		{
			name: "instance member of a namespace",
			file: syntax.NewFile("c.go").Add(
				syntax.Enum("Logger").AddMember(syntax.Func("log").WithBody()),
			),
			message: "namespace",
		},
		{
			name: "invalid tree",
			file: syntax.NewFile("d.go").Add(
				syntax.Func("g").WithBody(syntax.Guard(syntax.Id("ok"))),
			),
			message: "does not exit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("app", nil).Render(tt.file)
			require.Error(t, err)
			assert.True(t, syntax.IsRenderError(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRenderThrowingFunction(t *testing.T) {
	loader := syntax.Named("Loader")
	f := syntax.NewFile("load.go").Add(
		syntax.Enum("Loader").AddMember(
			syntax.Func("fetch").AsStatic().AsThrowing().Returns(syntax.IntType).WithBody(syntax.Return(syntax.Lit(1))),
			syntax.Func("load").AsStatic().AsThrowing().Returns(syntax.IntType).WithBody(
				syntax.Let("n", syntax.Try(syntax.Call(syntax.MemberAccess(syntax.TypeRef(loader), "fetch")))),
				syntax.Return(syntax.Id("n")),
			),
		),
	)

	out := render(t, f)
	assert.Contains(t, out, "func LoaderFetch() (int, error) {")
	assert.Contains(t, out, "return 1, nil")
	assert.Contains(t, out, "func LoaderLoad() (int, error) {")
	assert.Contains(t, out, "n, err := LoaderFetch()")
	assert.Contains(t, out, "return 0, err")
	assert.Contains(t, out, "return n, nil")
}

func TestRenderSeparatesDeclarations(t *testing.T) {
	car := syntax.Named("Car")
	f := syntax.NewFile("decls.go").Add(
		syntax.Enum("LogType").AddCase("debug", "info"),
		syntax.Enum("Loader").AddMember(
			syntax.Func("fetch").AsStatic().Returns(syntax.IntType).WithBody(syntax.Return(syntax.Lit(1))),
			syntax.Func("load").AsStatic().Returns(syntax.IntType).WithBody(syntax.Return(syntax.Lit(2))),
		),
		syntax.Extend(syntax.Named("ManagerProvider").In("runtime")).
			WhereEqual(syntax.Named("Entity"), car).
			AddMember(
				syntax.Prop("carManager", syntax.Named("CoreManaging", car, syntax.Named("AppAnyEntity")).In("runtime")).
					Get(syntax.Return(syntax.Call(syntax.MemberAccess(syntax.Self(), "managing")).WithTypeArgs(car))),
			),
	)

	out := render(t, f)
	assert.Contains(t, out, "type LogType int\n\nconst (")
	assert.Contains(t, out, "return 1\n}\n\nfunc LoaderLoad() int {")
	assert.Contains(t, out, "}\n\n// CarManager applies where Entity == Car.\nfunc CarManager(")
	assert.NotContains(t, out, "}\nfunc ")
	assert.NotContains(t, out, "\n\n\n")
}

func TestRenderQualifiedModules(t *testing.T) {
	f := syntax.NewFile("m.go").Add(
		syntax.Struct("Holder").AddMember(
			syntax.Prop("manager", syntax.Named("CoreManaging").In("runtime")),
		),
	)
	out, err := New("app", map[string]string{"runtime": "example.com/garage/managers"}).Render(f)
	require.NoError(t, err)

	assert.Contains(t, string(out), `"example.com/garage/managers"`)
	assert.Contains(t, string(out), "Manager managers.CoreManaging")
}

func TestRenderIsDeterministic(t *testing.T) {
	f := syntax.NewFile("d.go").Add(
		syntax.Enum("LogType").AddCase("debug", "info", "warning", "error"),
		syntax.Struct("CleanupError").AddMember(syntax.Prop("message", syntax.StringType)),
	)
	b := New("app", nil)

	first, err := b.Render(f)
	require.NoError(t, err)
	for range 10 {
		again, err := b.Render(f)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
