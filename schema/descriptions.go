package schema

import (
	"fmt"
	"slices"

	"github.com/syssam/forge/compiler/naming"
)

// The following types describe the application model handed to the
// generators.
type (
	// Entity is a domain record type.
	Entity struct {
		// Name is the identity key of the entity, e.g. "Car".
		Name string
		// Attributes in declaration order.
		Attributes []Attribute
		// Relationships to other entities in declaration order.
		Relationships []Relationship
		// Remote indicates the entity is fetched over the network.
		Remote bool
		// Persist indicates the entity is cached to local storage.
		Persist bool
		// HasVoidIdentifier indicates the entity has no meaningful primary key.
		HasVoidIdentifier bool
	}

	// Attribute is a single property of an entity.
	Attribute struct {
		Name     string
		Type     string
		Optional bool
	}

	// Relationship points from an entity to another entity by name.
	Relationship struct {
		Name   string
		Entity string
		Many   bool
	}

	// Endpoint is a named network operation and its payload fixtures.
	Endpoint struct {
		Name  string
		Tests []EndpointPayloadTest
	}

	// EndpointPayloadTest is one fixture-backed test scenario.
	EndpointPayloadTest struct {
		// Name of the test, also used to derive the fixture resource name.
		Name string
		// Endpoints holds the endpoint aliases the payload is decoded with.
		Endpoints []string
		// Entities holds the expected entity collections in the result.
		Entities []EntityAssertion
	}

	// EntityAssertion expects a collection of Entity in a decoded payload.
	// A nil Count asserts the collection is not empty.
	EntityAssertion struct {
		Entity string
		Count  *int
	}
)

// Count returns a pointer to n for use in EntityAssertion literals.
func Count(n int) *int { return &n }

// TransformedName returns the type-cased display name of the endpoint.
func (e Endpoint) TransformedName() string {
	return naming.Pascal(e.Name, naming.PathSeparators...)
}

// FunctionName returns the name of the test function of the combination of
// t with an endpoint alias and an entity.
func (t EndpointPayloadTest) FunctionName(alias, entity string) string {
	return fmt.Sprintf("test_%s_%s_%s",
		naming.Snake(t.Name, naming.PathSeparators...),
		naming.Snake(alias, naming.PathSeparators...),
		naming.Snake(entity),
	)
}

// HasCount reports whether the assertion expects an exact count.
func (a EntityAssertion) HasCount() bool { return a.Count != nil }

// Combinations returns the number of test functions the test expands to.
func (t EndpointPayloadTest) Combinations() int {
	return len(t.Endpoints) * len(t.Entities)
}

// Descriptions is the read-only aggregate of entities and endpoints.
type Descriptions struct {
	entities  []Entity
	endpoints []Endpoint
	entityIdx map[string]int
	endpoIdx  map[string]int
}

// New validates the given entities and endpoints and indexes them by name.
// The order of both slices is preserved and used as the canonical
// generation order.
func New(entities []Entity, endpoints []Endpoint) (*Descriptions, error) {
	d := &Descriptions{
		entities:  make([]Entity, len(entities)),
		endpoints: make([]Endpoint, len(endpoints)),
		entityIdx: make(map[string]int, len(entities)),
		endpoIdx:  make(map[string]int, len(endpoints)),
	}
	for i, e := range entities {
		d.entities[i] = e.clone()
	}
	for i, ep := range endpoints {
		d.endpoints[i] = ep.clone()
	}
	// Generated identifiers derived from names must not collide either.
	types := make(map[string]string, len(entities))
	vars := make(map[string]string, len(entities))
	for i, e := range d.entities {
		if e.Name == "" {
			return nil, NewValidationError("entity", "", fmt.Sprintf("entity at position %d has no name", i))
		}
		if _, ok := d.entityIdx[e.Name]; ok {
			return nil, NewValidationError("entity", e.Name, "duplicate entity name")
		}
		if err := claim(types, naming.TypeName(e.Name), "entity", e.Name, "type name"); err != nil {
			return nil, err
		}
		if err := claim(vars, naming.Variable(e.Name), "entity", e.Name, "variable name"); err != nil {
			return nil, err
		}
		d.entityIdx[e.Name] = i
	}
	suites := make(map[string]string, len(endpoints))
	files := make(map[string]string, len(endpoints))
	for i, ep := range d.endpoints {
		if ep.Name == "" {
			return nil, NewValidationError("endpoint", "", fmt.Sprintf("endpoint at position %d has no name", i))
		}
		if _, ok := d.endpoIdx[ep.Name]; ok {
			return nil, NewValidationError("endpoint", ep.Name, "duplicate endpoint name")
		}
		if err := claim(suites, ep.TransformedName(), "endpoint", ep.Name, "type name"); err != nil {
			return nil, err
		}
		if err := claim(files, naming.Snake(ep.Name, naming.PathSeparators...), "endpoint", ep.Name, "file name"); err != nil {
			return nil, err
		}
		if err := validateTests(ep); err != nil {
			return nil, err
		}
		d.endpoIdx[ep.Name] = i
	}
	return d, nil
}

// claim records that name derives the generated identifier id, failing if
// another name already derives it.
func claim(ids map[string]string, id, kind, name, what string) error {
	if prev, ok := ids[id]; ok {
		return NewValidationError(kind, name, fmt.Sprintf("%s %s is also derived from %s %q", what, id, kind, prev))
	}
	ids[id] = name
	return nil
}

// MustNew is like New but panics on invalid input.
func MustNew(entities []Entity, endpoints []Endpoint) *Descriptions {
	d, err := New(entities, endpoints)
	if err != nil {
		panic(err)
	}
	return d
}

func validateTests(ep Endpoint) error {
	funcs := make(map[string]string)
	for _, t := range ep.Tests {
		switch {
		case t.Name == "":
			return NewValidationError("test", ep.Name, "payload test has no name")
		case len(t.Endpoints) == 0:
			return NewValidationError("test", t.Name, "payload test declares no endpoint alias")
		case len(t.Entities) == 0:
			return NewValidationError("test", t.Name, "payload test declares no entity")
		}
		for _, a := range t.Entities {
			if a.Entity == "" {
				return NewValidationError("test", t.Name, "entity assertion has no entity name")
			}
			if a.Count != nil && *a.Count < 0 {
				return NewValidationError("test", t.Name, fmt.Sprintf("negative expected count %d for %s", *a.Count, a.Entity))
			}
		}
		for _, alias := range t.Endpoints {
			for _, a := range t.Entities {
				name := t.FunctionName(alias, a.Entity)
				if _, ok := funcs[name]; ok {
					return NewValidationError("test", t.Name, fmt.Sprintf("test function %s of endpoint %q is declared twice", name, ep.Name))
				}
				funcs[name] = t.Name
			}
		}
	}
	return nil
}

// Entity returns the entity with the given name.
func (d *Descriptions) Entity(name string) (Entity, error) {
	i, ok := d.entityIdx[name]
	if !ok {
		return Entity{}, NewNotFoundError("entity", name)
	}
	return d.entities[i].clone(), nil
}

// Endpoint returns the endpoint with the given name.
func (d *Descriptions) Endpoint(name string) (Endpoint, error) {
	i, ok := d.endpoIdx[name]
	if !ok {
		return Endpoint{}, NewNotFoundError("endpoint", name)
	}
	return d.endpoints[i].clone(), nil
}

// Entities returns all entities in declaration order.
func (d *Descriptions) Entities() []Entity {
	out := make([]Entity, len(d.entities))
	for i, e := range d.entities {
		out[i] = e.clone()
	}
	return out
}

// Endpoints returns all endpoints in declaration order.
func (d *Descriptions) Endpoints() []Endpoint {
	out := make([]Endpoint, len(d.endpoints))
	for i, ep := range d.endpoints {
		out[i] = ep.clone()
	}
	return out
}

// EntitiesWhere returns the entities matching fn in declaration order.
func (d *Descriptions) EntitiesWhere(fn func(Entity) bool) []Entity {
	var out []Entity
	for _, e := range d.entities {
		if fn(e) {
			out = append(out, e.clone())
		}
	}
	return out
}

func (e Entity) clone() Entity {
	e.Attributes = slices.Clone(e.Attributes)
	e.Relationships = slices.Clone(e.Relationships)
	return e
}

func (ep Endpoint) clone() Endpoint {
	if ep.Tests == nil {
		return ep
	}
	tests := make([]EndpointPayloadTest, len(ep.Tests))
	for i, t := range ep.Tests {
		t.Endpoints = slices.Clone(t.Endpoints)
		if t.Entities != nil {
			entities := make([]EntityAssertion, len(t.Entities))
			for j, a := range t.Entities {
				if a.Count != nil {
					a.Count = Count(*a.Count)
				}
				entities[j] = a
			}
			t.Entities = entities
		}
		tests[i] = t
	}
	ep.Tests = tests
	return ep
}
