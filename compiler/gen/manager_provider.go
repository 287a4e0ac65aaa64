package gen

import (
	"github.com/syssam/forge/compiler/naming"
	"github.com/syssam/forge/compiler/syntax"
	"github.com/syssam/forge/schema"
)

// ManagerProviders returns one extension of ManagerProvider per entity,
// bound to the entity type, exposing <entity>Manager.
func ManagerProviders(d *schema.Descriptions, flags Flags) (*syntax.File, error) {
	st := flags.SupportTypes()
	f := st.imports(syntax.NewFile("ManagerProviders"))
	for _, e := range d.Entities() {
		entity := syntax.Named(naming.TypeName(e.Name))
		accessor := syntax.Prop(naming.Variable(e.Name)+"Manager", st.ManagerOf(entity)).
			Get(syntax.Return(syntax.Call(syntax.MemberAccess(syntax.Self(), "managing")).WithTypeArgs(entity)))
		f = f.Add(syntax.Extend(managerProvider).
			WhereEqual(syntax.Named("Entity"), entity).
			AddMember(accessor))
	}
	return f, nil
}
