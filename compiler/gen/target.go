package gen

import (
	"fmt"

	"github.com/syssam/forge/compiler/naming"
	"github.com/syssam/forge/compiler/syntax"
	"github.com/syssam/forge/schema"
)

// TargetKind identifies an artifact family.
type TargetKind int

const (
	ManagerProvidersTarget TargetKind = iota
	PayloadSuiteTarget
	FactoriesTarget
	SupportTarget
)

// String returns the kind name.
func (k TargetKind) String() string {
	switch k {
	case ManagerProvidersTarget:
		return "manager_providers"
	case PayloadSuiteTarget:
		return "payload_suite"
	case FactoriesTarget:
		return "factories"
	case SupportTarget:
		return "support_utilities"
	}
	return fmt.Sprintf("TargetKind(%d)", int(k))
}

// Target is one generated artifact. Endpoint is set for payload suites.
type Target struct {
	Kind     TargetKind
	Endpoint string
}

// String returns a description of the target for logs and errors.
func (t Target) String() string {
	if t.Kind == PayloadSuiteTarget {
		return t.Kind.String() + "(" + t.Endpoint + ")"
	}
	return t.Kind.String()
}

// Targets returns the artifacts of d in generation order: manager
// providers, one payload suite per endpoint declaring tests, factories and
// support utilities.
func Targets(d *schema.Descriptions) []Target {
	targets := []Target{{Kind: ManagerProvidersTarget}}
	for _, ep := range d.Endpoints() {
		if len(ep.Tests) > 0 {
			targets = append(targets, Target{Kind: PayloadSuiteTarget, Endpoint: ep.Name})
		}
	}
	return append(targets, Target{Kind: FactoriesTarget}, Target{Kind: SupportTarget})
}

// Build returns the syntax tree of t without header.
func Build(d *schema.Descriptions, t Target, flags Flags) (*syntax.File, error) {
	switch t.Kind {
	case ManagerProvidersTarget:
		return ManagerProviders(d, flags)
	case PayloadSuiteTarget:
		return PayloadTestSuite(d, t.Endpoint, flags)
	case FactoriesTarget:
		return Factories(d, flags)
	case SupportTarget:
		return SupportUtilities(d, flags)
	}
	return nil, fmt.Errorf("forge: unknown target kind %d", int(t.Kind))
}

// FileName returns the output file name of t for the language lang.
func FileName(d *schema.Descriptions, t Target, lang string) string {
	if lang == LangGo {
		switch t.Kind {
		case ManagerProvidersTarget:
			return "manager_providers.go"
		case PayloadSuiteTarget:
			return naming.Snake(t.Endpoint, naming.PathSeparators...) + "_payload_test.go"
		case FactoriesTarget:
			return "factories.go"
		}
		return "support_utilities.go"
	}
	switch t.Kind {
	case ManagerProvidersTarget:
		return "ManagerProviders.swift"
	case PayloadSuiteTarget:
		name := naming.Pascal(t.Endpoint, naming.PathSeparators...) + "EndpointPayloadTests"
		if ep, err := d.Endpoint(t.Endpoint); err == nil {
			name = PayloadSuiteName(ep)
		}
		return name + ".swift"
	case FactoriesTarget:
		return "Factories.swift"
	}
	return "SupportUtilities.swift"
}
