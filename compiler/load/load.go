// Package load reads description files into schema.Descriptions.
//
// A description file is YAML (JSON documents are accepted as well):
//
//	entities:
//	  - name: Car
//	    remote: true
//	    persist: true
//	endpoints:
//	  - name: cars
//	    tests:
//	      - name: fetch_all
//	        endpoints: cars
//	        entities:
//	          - Car
//	          - {entity: Truck, count: 0}
package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/syssam/forge/schema"
)

// File is the on-disk form of a description file.
type File struct {
	Entities  []Entity   `yaml:"entities,omitempty"`
	Endpoints []Endpoint `yaml:"endpoints,omitempty"`
}

// Entity mirrors schema.Entity.
type Entity struct {
	Name           string         `yaml:"name"`
	Remote         bool           `yaml:"remote,omitempty"`
	Persist        bool           `yaml:"persist,omitempty"`
	VoidIdentifier bool           `yaml:"void_identifier,omitempty"`
	Attributes     []Attribute    `yaml:"attributes,omitempty"`
	Relationships  []Relationship `yaml:"relationships,omitempty"`
}

// Attribute mirrors schema.Attribute.
type Attribute struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional,omitempty"`
}

// Relationship mirrors schema.Relationship.
type Relationship struct {
	Name   string `yaml:"name"`
	Entity string `yaml:"entity"`
	Many   bool   `yaml:"many,omitempty"`
}

// Endpoint mirrors schema.Endpoint.
type Endpoint struct {
	Name  string `yaml:"name"`
	Tests []Test `yaml:"tests,omitempty"`
}

// Test mirrors schema.EndpointPayloadTest.
type Test struct {
	Name      string      `yaml:"name"`
	Endpoints StringList  `yaml:"endpoints"`
	Entities  []Assertion `yaml:"entities"`
}

// Assertion mirrors schema.EntityAssertion. In YAML it is either an
// entity name or a mapping with an entity and an optional count.
type Assertion struct {
	Entity string `yaml:"entity"`
	Count  *int   `yaml:"count,omitempty"`
}

// UnmarshalYAML implements yaml.Unmarshaler for Assertion.
func (a *Assertion) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*a = Assertion{Entity: node.Value}
		return nil
	case yaml.MappingNode:
		type plain Assertion
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*a = Assertion(p)
		return nil
	default:
		return fmt.Errorf("line %d: expected entity name or mapping", node.Line)
	}
}

// MarshalYAML implements yaml.Marshaler for Assertion.
func (a Assertion) MarshalYAML() (any, error) {
	if a.Count == nil {
		return a.Entity, nil
	}
	type plain Assertion
	return plain(a), nil
}

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// Load reads and validates the description file at path.
func Load(path string) (*schema.Descriptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forge: read descriptions: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a description document. Unknown keys are rejected.
// An empty document yields empty descriptions.
func Parse(data []byte) (*schema.Descriptions, error) {
	f, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return f.Descriptions()
}

// Decode decodes a single description document from r.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("forge: parse descriptions: %w", err)
	}
	return &f, nil
}

// Descriptions converts the file into validated schema.Descriptions.
func (f *File) Descriptions() (*schema.Descriptions, error) {
	entities := make([]schema.Entity, 0, len(f.Entities))
	for _, e := range f.Entities {
		se := schema.Entity{
			Name:              e.Name,
			Remote:            e.Remote,
			Persist:           e.Persist,
			HasVoidIdentifier: e.VoidIdentifier,
		}
		for _, a := range e.Attributes {
			se.Attributes = append(se.Attributes, schema.Attribute(a))
		}
		for _, r := range e.Relationships {
			se.Relationships = append(se.Relationships, schema.Relationship(r))
		}
		entities = append(entities, se)
	}
	endpoints := make([]schema.Endpoint, 0, len(f.Endpoints))
	for _, ep := range f.Endpoints {
		sep := schema.Endpoint{Name: ep.Name}
		for _, t := range ep.Tests {
			st := schema.EndpointPayloadTest{Name: t.Name, Endpoints: []string(t.Endpoints)}
			for _, a := range t.Entities {
				st.Entities = append(st.Entities, schema.EntityAssertion(a))
			}
			sep.Tests = append(sep.Tests, st)
		}
		endpoints = append(endpoints, sep)
	}
	return schema.New(entities, endpoints)
}

// FromDescriptions returns the file form of d.
func FromDescriptions(d *schema.Descriptions) *File {
	f := &File{}
	for _, e := range d.Entities() {
		fe := Entity{
			Name:           e.Name,
			Remote:         e.Remote,
			Persist:        e.Persist,
			VoidIdentifier: e.HasVoidIdentifier,
		}
		for _, a := range e.Attributes {
			fe.Attributes = append(fe.Attributes, Attribute(a))
		}
		for _, r := range e.Relationships {
			fe.Relationships = append(fe.Relationships, Relationship(r))
		}
		f.Entities = append(f.Entities, fe)
	}
	for _, ep := range d.Endpoints() {
		fep := Endpoint{Name: ep.Name}
		for _, t := range ep.Tests {
			ft := Test{Name: t.Name, Endpoints: StringList(t.Endpoints)}
			for _, a := range t.Entities {
				ft.Entities = append(ft.Entities, Assertion(a))
			}
			fep.Tests = append(fep.Tests, ft)
		}
		f.Endpoints = append(f.Endpoints, fep)
	}
	return f
}

// Save writes d to path as YAML.
func Save(path string, d *schema.Descriptions) error {
	data, err := yaml.Marshal(FromDescriptions(d))
	if err != nil {
		return fmt.Errorf("forge: marshal descriptions: %w", err)
	}
	return renameio.WriteFile(path, data, 0o644)
}
