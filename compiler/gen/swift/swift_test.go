package swift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/syssam/forge/compiler/syntax"
)

func render(t *testing.T, f *File) string {
	t.Helper()
	out, err := New(nil).Render(f)
	require.NoError(t, err)
	return string(out)
}

func TestRenderResourceLoader(t *testing.T) {
	f := NewFile("Factories.swift").Add(
		Enum("JSONFactory").AddMember(
			Func("loadJSON").AsStatic().
				Param("named", "name", StringType).
				Returns(BytesType.Optional()).
				WithBody(Return(ResourceData(Id("name"), "json"))),
		),
	)

	assert.Equal(t, `import Foundation

enum JSONFactory {
    static func loadJSON(named name: String) -> Data? {
        return Bundle(for: BundleToken.self).url(forResource: name, withExtension: "json").flatMap { try? Data(contentsOf: $0) }
    }
}

private final class BundleToken {}
`, render(t, f))
}

func TestRenderHeader(t *testing.T) {
	f := NewFile("Factories.swift").
		WithHeader(Comment("", "Factories.swift", "", "Code generated by forge. DO NOT EDIT.", "")).
		Add(Enum("EntityFactory"))

	assert.Equal(t, `//
//  Factories.swift
//
//  Code generated by forge. DO NOT EDIT.
//

enum EntityFactory {}
`, render(t, f))
}

func TestRenderImports(t *testing.T) {
	t.Run("testable import wins and imports are sorted", func(t *testing.T) {
		f := NewFile("Suite.swift").
			AddImport(Import("app"), Import("app").AsTestable(), Import("runtime")).
			Add(Struct("Holder").AddMember(Prop("manager", Named("CoreManaging").In("runtime"))))
		out, err := New(map[string]string{"app": "Garage", "runtime": "GarageKit"}).Render(f)
		require.NoError(t, err)

		assert.Contains(t, string(out), "@testable import Garage\nimport GarageKit\n")
		assert.NotContains(t, string(out), "import Garage\n@testable")
	})

	t.Run("modules mapped to empty names are skipped", func(t *testing.T) {
		f := NewFile("ManagerProviders.swift").
			AddImport(Import("combine"), Import("runtime")).
			Add(Enum("Empty"))
		out, err := New(map[string]string{"combine": "", "runtime": "GarageKit"}).Render(f)
		require.NoError(t, err)

		assert.Equal(t, "import GarageKit\n\nenum Empty {}\n", string(out))
	})

	t.Run("test suites import XCTest", func(t *testing.T) {
		out := render(t, NewFile("S.swift").Add(TestSuite("CarsTests").AsFinal()))

		assert.Equal(t, "import XCTest\n\nfinal class CarsTests: XCTestCase {}\n", out)
	})
}

func TestRenderExtension(t *testing.T) {
	car := Named("Car")
	f := NewFile("ManagerProviders.swift").Add(
		Extend(Named("ManagerProvider")).
			WhereEqual(Named("Entity"), car).
			AddMember(
				Prop("carManager", Named("CoreManaging", car, Named("AppAnyEntity"))).
					Get(Return(Call(MemberAccess(Self(), "managing")).WithTypeArgs(car))),
			),
	)

	assert.Equal(t, `extension ManagerProvider where Entity == Car {
    var carManager: CoreManaging<Car, AppAnyEntity> {
        return self.managing(Car.self)
    }
}
`, render(t, f))
}

func TestRenderPayloadTest(t *testing.T) {
	decode := Try(Call(TypeRef(Named("EndpointResultPayload")),
		Labeled("from", MemberAccess(Self(), "carsFetchAllPayload")),
		Labeled("endpoint", CaseOf(Named("Endpoint"), "cars")),
	))
	suite := TestSuite("CarsEndpointPayloadTests").AsFinal().AddMember(
		Prop("carsFetchAllPayload", BytesType).
			WithAccess(Private).
			AsLazy(
				GuardLet("data", Call(MemberAccess(TypeRef(Named("JSONFactory")), "loadJSON"), Labeled("named", Lit("cars_fetch_all"))),
					Fail(Lit("Could not find resource cars_fetch_all.json")),
					Return(Call(TypeRef(BytesType))),
				),
				Return(Id("data")),
			),
		Func("test_fetch_all_cars_car").WithBody(
			DoCatch(
				Let("result", decode),
				AssertEqual(Count(MemberAccess(Id("result"), "cars")), Lit(2)),
			).Catch(Fail(Str("Unexpected error: ", Id(ErrName)))),
		),
	)
	f := NewFile("CarsEndpointPayloadTests.swift").AddImport(Import("app").AsTestable()).Add(suite)

	out, err := New(map[string]string{"app": "App"}).Render(f)
	require.NoError(t, err)
	assert.Equal(t, `@testable import App
import Foundation
import XCTest

final class CarsEndpointPayloadTests: XCTestCase {
    private lazy var carsFetchAllPayload: Data = {
        guard let data = JSONFactory.loadJSON(named: "cars_fetch_all") else {
            XCTFail("Could not find resource cars_fetch_all.json")
            return Data()
        }
        return data
    }()

    func test_fetch_all_cars_car() {
        do {
            let result = try EndpointResultPayload(from: self.carsFetchAllPayload, endpoint: .cars)
            XCTAssertEqual(result.cars.count, 2)
        } catch {
            XCTFail("Unexpected error: \(error)")
        }
    }
}
`, string(out))
}

func TestRenderFanOut(t *testing.T) {
	result := Named("CleanupResult")
	task := func(manager string) Expr {
		return Call(TypeRef(result), Labeled("errors",
			Await(Call(MemberAccess(MemberAccess(MemberAccess(Self(), "managers"), manager).AsComputed(), "removeAllLocalData")))))
	}
	f := NewFile("SupportUtilities.swift").Add(
		Func("removeAllLocalData").AsAsync().Returns(ArrayOf(Named("CleanupError"))).WithBody(
			FanOutJoin("result", result).
				Start(MemberAccess(TypeRef(result), "success")).
				Merge("merged", "with").
				Task(task("carManager"), task("truckManager")),
			Return(MemberAccess(Id("result"), "errors")),
		),
	)

	assert.Equal(t, `func removeAllLocalData() async -> [CleanupError] {
    var result = CleanupResult.success
    await withTaskGroup(of: CleanupResult.self) { group in
        group.addTask { CleanupResult(errors: await self.managers.carManager.removeAllLocalData()) }
        group.addTask { CleanupResult(errors: await self.managers.truckManager.removeAllLocalData()) }
        for await outcome in group {
            result = result.merged(with: outcome)
        }
    }
    return result.errors
}
`, render(t, f))
}

func TestRenderLogger(t *testing.T) {
	logging := Named("Logging")
	slot := MemberAccess(TypeRef(Named("Logger")), "sharedLogger")
	f := NewFile("SupportUtilities.swift").Add(
		Enum("Logger").AddMember(
			Prop("sharedLogger", logging.Optional()).WithAccess(Private).AsStatic().AsMutable(),
			Prop("shared", logging.Optional()).AsStatic().
				Get(Return(slot)).
				Set(Assign(slot, Id(NewValue))),
			Func("log").AsStatic().
				Param("_", "message", StringType).
				ParamDefault("", "line", IntType, CallerLine()).
				WithBody(Do(Call(OptionalMember(MemberAccess(TypeRef(Named("Logger")), "shared"), "log"),
					Id("message"), Labeled("line", Id("line"))))),
		),
	)

	assert.Equal(t, `enum Logger {
    private static var sharedLogger: Logging?

    static var shared: Logging? {
        get {
            return Logger.sharedLogger
        }
        set {
            Logger.sharedLogger = newValue
        }
    }

    static func log(_ message: String, line: Int = #line) {
        Logger.shared?.log(message, line: line)
    }
}
`, render(t, f))
}

func TestRenderEscaping(t *testing.T) {
	f := NewFile("E.swift").Add(
		Struct("Flags").AddMember(
			Prop("default", BoolType).Initial(Lit(true)),
			Prop("quote", StringType).Initial(Lit("say \"hi\"\n")),
		),
	)

	out := render(t, f)
	assert.Contains(t, out, "let `default`: Bool = true")
	assert.Contains(t, out, `let quote: String = "say \"hi\"\n"`)
}

func TestRenderRejectsInvalidTrees(t *testing.T) {
	f := NewFile("Bad.swift").Add(
		Func("load").WithBody(GuardLet("data", Id("x"), Fail(Lit("missing")))),
	)

	_, err := New(nil).Render(f)
	require.Error(t, err)
	assert.True(t, IsRenderError(err))
	assert.Contains(t, err.Error(), "does not exit")
}

func TestRenderIsDeterministic(t *testing.T) {
	f := NewFile("M.swift").
		AddImport(Import("runtime"), Import("combine"), Import("app").AsTestable()).
		Add(Enum("A"), Enum("B"))
	b := New(nil)

	first, err := b.Render(f)
	require.NoError(t, err)
	for range 10 {
		again, err := b.Render(f)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
