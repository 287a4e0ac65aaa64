package cli

import (
	"github.com/caarlos0/env/v11"

	"github.com/syssam/forge/compiler/gen"
)

// Env holds the defaults read from FORGE_* environment variables. Flags
// given on the command line take precedence.
type Env struct {
	Target        string   `env:"FORGE_TARGET"`
	Language      string   `env:"FORGE_LANGUAGE" envDefault:"swift"`
	Package       string   `env:"FORGE_PACKAGE"`
	AppModule     string   `env:"FORGE_APP_MODULE" envDefault:"App"`
	RuntimeModule string   `env:"FORGE_RUNTIME_MODULE" envDefault:"ForgeRuntime"`
	Features      []string `env:"FORGE_FEATURES" envSeparator:","`
	Workers       int      `env:"FORGE_WORKERS"`
	Header        string   `env:"FORGE_HEADER"`
	Verbose       bool     `env:"FORGE_VERBOSE"`
}

// LoadEnv parses the given environment. A nil map reads the process
// environment.
func LoadEnv(environ map[string]string) (Env, error) {
	var e Env
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, err
	}
	return e, nil
}

// Options returns the generator options equivalent to e.
func (e Env) Options() []gen.Option {
	opts := []gen.Option{
		gen.WithLanguage(e.Language),
		gen.WithAppModule(e.AppModule),
		gen.WithRuntimeModule(e.RuntimeModule),
	}
	if e.Target != "" {
		opts = append(opts, gen.WithTarget(e.Target))
	}
	if e.Package != "" {
		opts = append(opts, gen.WithPackage(e.Package))
	}
	if len(e.Features) > 0 {
		opts = append(opts, gen.WithFeatureNames(e.Features...))
	}
	if e.Workers > 0 {
		opts = append(opts, gen.WithWorkers(e.Workers))
	}
	if e.Header != "" {
		opts = append(opts, gen.WithHeader(e.Header))
	}
	return opts
}
