package gen

import (
	"fmt"

	"github.com/syssam/forge/compiler/naming"
	"github.com/syssam/forge/compiler/syntax"
	"github.com/syssam/forge/schema"
)

// PayloadSuiteName returns the name of the payload test suite of endpoint.
func PayloadSuiteName(endpoint schema.Endpoint) string {
	return endpoint.TransformedName() + "EndpointPayloadTests"
}

// ResourceName returns the fixture resource name of a test of endpoint.
func ResourceName(endpoint schema.Endpoint, test schema.EndpointPayloadTest) string {
	return naming.Snake(endpoint.Name, naming.PathSeparators...) + "_" + naming.Snake(test.Name, naming.PathSeparators...)
}

// TestName returns the name of the test function of one combination.
func TestName(test schema.EndpointPayloadTest, alias, entity string) string {
	return test.FunctionName(alias, entity)
}

// PayloadTestSuite returns the test suite decoding the fixtures of the named
// endpoint. Every test of the endpoint expands to one test function per
// endpoint alias and expected entity; fixtures are loaded once per resource.
func PayloadTestSuite(d *schema.Descriptions, endpoint string, _ Flags) (*syntax.File, error) {
	ep, err := d.Endpoint(endpoint)
	if err != nil {
		return nil, err
	}
	suite := syntax.TestSuite(PayloadSuiteName(ep)).AsFinal()
	var (
		fixtures []syntax.Decl
		tests    []syntax.Decl
		seen     = make(map[string]bool)
	)
	for _, test := range ep.Tests {
		resource := ResourceName(ep, test)
		fixture := naming.Variable(resource) + "Payload"
		if !seen[resource] {
			seen[resource] = true
			fixtures = append(fixtures, fixtureProperty(fixture, resource))
		}
		for _, alias := range test.Endpoints {
			for _, a := range test.Entities {
				e, err := d.Entity(a.Entity)
				if err != nil {
					return nil, fmt.Errorf("test %q of endpoint %q: %w", test.Name, ep.Name, err)
				}
				tests = append(tests, payloadTest(TestName(test, alias, e.Name), fixture, alias, e, a))
			}
		}
	}
	suite = suite.AddMember(fixtures...).AddMember(tests...)
	f := syntax.NewFile(suite.Name).
		AddImport(syntax.Import(ModuleApp).AsTestable()).
		Add(suite)
	return f, nil
}

// fixtureProperty loads resource once; a missing resource fails the test
// and yields an empty buffer.
func fixtureProperty(name, resource string) *syntax.PropertyDecl {
	load := syntax.Call(syntax.MemberAccess(syntax.TypeRef(jsonFactory), "loadJSON"), syntax.Labeled("named", syntax.Lit(resource)))
	return syntax.Prop(name, syntax.BytesType).
		WithAccess(syntax.Private).
		AsLazy(
			syntax.GuardLet("data", load,
				syntax.Fail(syntax.Lit("Could not find resource "+resource+".json")),
				syntax.Return(syntax.Call(syntax.TypeRef(syntax.BytesType))),
			),
			syntax.Return(syntax.Id("data")),
		)
}

func payloadTest(name, fixture, alias string, e schema.Entity, a schema.EntityAssertion) *syntax.FuncDecl {
	decode := syntax.Try(syntax.Call(syntax.TypeRef(resultPayload),
		syntax.Labeled("from", syntax.MemberAccess(syntax.Self(), fixture)),
		syntax.Labeled("endpoint", syntax.CaseOf(endpointType, naming.Camel(alias, naming.PathSeparators...))),
	))
	collection := syntax.MemberAccess(syntax.Id("result"), naming.PluralVariable(e.Name))
	var assertion syntax.Stmt
	if a.HasCount() {
		assertion = syntax.AssertEqual(syntax.Count(collection), syntax.Lit(*a.Count))
	} else {
		assertion = syntax.AssertFalse(syntax.IsEmpty(collection))
	}
	return syntax.Func(name).WithBody(
		syntax.DoCatch(
			syntax.Let("result", decode),
			assertion,
		).Catch(
			syntax.Fail(syntax.Str("Unexpected error: ", syntax.Id(syntax.ErrName))),
		),
	)
}
