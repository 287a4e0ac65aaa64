// Package schema holds the description model consumed by the forge
// generators: entities, endpoints and the payload test fixtures declared on
// endpoints.
//
// A Descriptions value is built once per generation run with New, which
// validates the input and indexes entities and endpoints by name. It is
// read-only afterwards and safe for concurrent use by any number of
// generators.
//
//	desc, err := schema.New(
//	    []schema.Entity{{Name: "Car", Remote: true, Persist: true}},
//	    []schema.Endpoint{{
//	        Name: "cars",
//	        Tests: []schema.EndpointPayloadTest{{
//	            Name:      "fetch_all",
//	            Endpoints: []string{"cars"},
//	            Entities:  []schema.EntityAssertion{{Entity: "Car", Count: schema.Count(2)}},
//	        }},
//	    }},
//	)
//
// Lookups never return a zero value for an unknown name; they fail with a
// *NotFoundError instead.
package schema
