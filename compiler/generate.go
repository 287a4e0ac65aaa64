// Package compiler provides the entry point for loading a description file
// and generating code from it.
package compiler

import (
	"context"
	"log/slog"

	"github.com/syssam/forge/compiler/gen"
	"github.com/syssam/forge/compiler/load"
	"github.com/syssam/forge/schema"
)

// LoadDescriptions loads the description file at path.
func LoadDescriptions(path string) (*schema.Descriptions, error) {
	return load.Load(path)
}

// Generate loads the description file at path and runs the generator
// with the given config. A nil config uses gen.DefaultConfig.
func Generate(ctx context.Context, path string, cfg *gen.Config, opts ...gen.GeneratorOption) error {
	d, err := LoadDescriptions(path)
	if err != nil {
		return err
	}
	g, err := gen.NewGenerator(d, cfg, opts...)
	if err != nil {
		return err
	}
	return g.Generate(ctx)
}

// Run is like Generate but builds the config from options.
func Run(ctx context.Context, path string, logger *slog.Logger, opts ...gen.Option) error {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return err
	}
	return Generate(ctx, path, cfg, gen.WithLogger(logger))
}
