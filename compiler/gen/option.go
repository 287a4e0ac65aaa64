package gen

import (
	"errors"
	"maps"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the marker line of the file header.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithTarget sets the output directory.
// The directory where generated code will be written.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithLanguage selects the output language.
// Supported languages: "swift", "go".
func WithLanguage(lang string) Option {
	return func(c *Config) error {
		switch lang {
		case LangSwift, LangGo:
			c.Language = lang
			return nil
		default:
			return NewConfigError("Language", lang, "unsupported language; use swift or go")
		}
	}
}

// WithPackage sets the package name of generated Go files.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithAppModule sets the module of the application under generation.
func WithAppModule(module string) Option {
	return func(c *Config) error {
		if module == "" {
			return NewConfigError("AppModule", nil, "app module cannot be empty")
		}
		c.AppModule = module
		return nil
	}
}

// WithRuntimeModule sets the module providing the manager types.
func WithRuntimeModule(module string) Option {
	return func(c *Config) error {
		if module == "" {
			return NewConfigError("RuntimeModule", nil, "runtime module cannot be empty")
		}
		c.RuntimeModule = module
		return nil
	}
}

// WithModules maps logical modules to module names or import paths.
func WithModules(modules map[string]string) Option {
	return func(c *Config) error {
		if c.Modules == nil {
			c.Modules = make(map[string]string, len(modules))
		}
		maps.Copy(c.Modules, modules)
		return nil
	}
}

// WithFeatures enables specific features.
// Features control optional code generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		for _, f := range features {
			if _, ok := FeatureByName(f.Name); !ok {
				return NewConfigError("Features", f.Name, "unexpected feature name")
			}
			if !c.HasFeature(f.Name) {
				c.Features = append(c.Features, f)
			}
		}
		return nil
	}
}

// WithFeatureNames enables features by name.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			f, ok := FeatureByName(name)
			if !ok {
				return NewConfigError("Features", name, "unexpected feature name")
			}
			if !c.HasFeature(f.Name) {
				c.Features = append(c.Features, f)
			}
		}
		return nil
	}
}

// WithWorkers bounds the number of targets generated concurrently.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := DefaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
