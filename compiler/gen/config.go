package gen

import (
	"maps"
	"path/filepath"
	"runtime"
	"slices"
)

// Languages supported by the built-in back ends.
const (
	LangSwift = "swift"
	LangGo    = "go"
)

// Defaults applied by DefaultConfig.
const (
	DefaultLanguage      = LangSwift
	DefaultAppModule     = "App"
	DefaultRuntimeModule = "ForgeRuntime"
)

// Config holds the configuration of a generation run.
type Config struct {
	// Target is the output directory.
	Target string

	// Language selects the built-in back end: LangSwift or LangGo.
	Language string

	// Package is the package name of generated Go files. It defaults to
	// the base name of Target.
	Package string

	// AppModule is the module of the application under generation, imported
	// as testable by the payload test suites.
	AppModule string

	// RuntimeModule is the module providing the manager types: a Swift
	// module name, or a Go import path.
	RuntimeModule string

	// Modules maps logical modules to module names (Swift) or import paths
	// (Go). Entries override AppModule and RuntimeModule.
	Modules map[string]string

	// Features holds the enabled feature-flags.
	Features []Feature

	// Workers bounds the number of targets generated concurrently.
	Workers int

	// Header overrides the GeneratedMarker line of file headers.
	Header string
}

// DefaultConfig returns a Config with the default language and modules.
func DefaultConfig() *Config {
	return &Config{
		Language:      DefaultLanguage,
		AppModule:     DefaultAppModule,
		RuntimeModule: DefaultRuntimeModule,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

// FeatureEnabled reports if the given feature name is enabled. Unknown
// names are a ConfigError.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	if _, ok := FeatureByName(name); !ok {
		return false, NewConfigError("Features", name, "unexpected feature name")
	}
	return c.HasFeature(name), nil
}

// HasFeature reports if the feature name is enabled, without validating
// the name.
func (c *Config) HasFeature(name string) bool {
	return slices.ContainsFunc(c.Features, func(f Feature) bool { return f.Name == name })
}

// Flags returns the generator flags of the configuration.
func (c *Config) Flags() Flags {
	return Flags{Reactive: c.HasFeature(FeatureReactive.Name)}
}

// PackageName returns the Go package name of generated files.
func (c *Config) PackageName() string {
	if c.Package != "" {
		return c.Package
	}
	if c.Target != "" {
		if base := filepath.Base(filepath.Clean(c.Target)); base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	return "forge"
}

// ModuleTable returns the logical module table handed to the back end.
// Swift maps the app and runtime modules to module names; Go references
// same-package types for unmapped modules, so only configured paths are
// included.
func (c *Config) ModuleTable() map[string]string {
	m := make(map[string]string)
	switch c.Language {
	case LangGo:
		if c.RuntimeModule != "" && c.RuntimeModule != DefaultRuntimeModule {
			m[ModuleRuntime] = c.RuntimeModule
		}
	default:
		m[ModuleApp] = c.AppModule
		m[ModuleRuntime] = c.RuntimeModule
		m[ModuleReactive] = "Reactive" + c.RuntimeModule
		m[ModuleCombine] = "Combine"
	}
	maps.Copy(m, c.Modules)
	return m
}

// validate checks the configuration before a run.
func (c *Config) validate() error {
	switch c.Language {
	case LangSwift, LangGo:
	default:
		return NewConfigError("Language", c.Language, "unsupported language; use swift or go")
	}
	if c.Workers < 0 {
		return NewConfigError("Workers", c.Workers, "workers cannot be negative")
	}
	return nil
}
