package gen

import "github.com/syssam/forge/compiler/syntax"

// Logical modules referenced by the generated code. Back ends map them to
// import names or paths through their module tables.
const (
	// ModuleApp is the application under generation.
	ModuleApp = "app"
	// ModuleRuntime provides the core manager types.
	ModuleRuntime = "runtime"
	// ModuleReactive provides the reactive manager types.
	ModuleReactive = "reactive"
	// ModuleCombine is the publisher framework imported next to ModuleRuntime.
	ModuleCombine = "combine"
)

// Flags are the feature flags the generators read.
type Flags struct {
	// Reactive selects the reactive manager types.
	Reactive bool
}

// SupportTypes are the runtime types and imports selected by Flags.
type SupportTypes struct {
	// Manager is the generic manager type, without arguments.
	Manager *syntax.Type
	// Imports are the logical modules imported by files referencing the
	// manager types.
	Imports []string
}

// SupportTypes returns the support types selected by f.
func (f Flags) SupportTypes() SupportTypes {
	if f.Reactive {
		return SupportTypes{
			Manager: syntax.Named("ReactiveCoreManaging").In(ModuleReactive),
			Imports: []string{ModuleReactive},
		}
	}
	return SupportTypes{
		Manager: syntax.Named("CoreManaging").In(ModuleRuntime),
		Imports: []string{ModuleCombine, ModuleRuntime},
	}
}

// ManagerOf returns the manager type of entity.
func (s SupportTypes) ManagerOf(entity *syntax.Type) *syntax.Type {
	return syntax.Named(s.Manager.Name, entity, anyEntity).In(s.Manager.Module)
}

// imports adds the support imports to f.
func (s SupportTypes) imports(f *syntax.File) *syntax.File {
	for _, m := range s.Imports {
		f = f.AddImport(syntax.Import(m))
	}
	return f
}

// Application types the generated code refers to.
var (
	anyEntity          = syntax.Named("AppAnyEntity")
	endpointType       = syntax.Named("Endpoint")
	resultPayload      = syntax.Named("EndpointResultPayload")
	managerProvider    = syntax.Named("ManagerProvider").In(ModuleRuntime)
	managerContainer   = syntax.Named("CoreManagerContainer")
	entityFactory      = syntax.Named("EntityFactory")
	jsonFactory        = syntax.Named("JSONFactory")
	logType            = syntax.Named("LogType")
	logging            = syntax.Named("Logging")
	logger             = syntax.Named("Logger")
	cleanupError       = syntax.Named("CleanupError")
	cleanupResult      = syntax.Named("CleanupResult")
	localDataCleaning  = syntax.Named("LocalDataCleaning")
	coreManagerCleanup = syntax.Named("CoreManagerCleanup")
)
