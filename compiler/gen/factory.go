package gen

import (
	"github.com/syssam/forge/compiler/naming"
	"github.com/syssam/forge/compiler/syntax"
	"github.com/syssam/forge/schema"
)

// Factories returns the EntityFactory namespace resetting the factory of
// every remote entity with an identifier, and the JSONFactory namespace
// loading bundled JSON fixtures.
func Factories(d *schema.Descriptions, _ Flags) (*syntax.File, error) {
	var resets []syntax.Stmt
	for _, e := range d.EntitiesWhere(func(e schema.Entity) bool { return e.Remote && !e.HasVoidIdentifier }) {
		factory := syntax.Named(naming.TypeName(e.Name) + "Factory")
		resets = append(resets, syntax.Do(syntax.Call(syntax.MemberAccess(syntax.TypeRef(factory), "reset"))))
	}
	reset := syntax.Enum(entityFactory.Name).AddMember(
		syntax.Func("reset").AsStatic().WithBody(resets...),
	)
	load := syntax.Enum(jsonFactory.Name).AddMember(
		syntax.Func("loadJSON").AsStatic().
			Param("named", "name", syntax.StringType).
			Returns(syntax.BytesType.Optional()).
			WithBody(syntax.Return(syntax.ResourceData(syntax.Id("name"), "json"))),
	)
	return syntax.NewFile("Factories").Add(reset, load), nil
}
