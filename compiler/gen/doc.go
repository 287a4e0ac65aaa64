// Package gen generates source files from application descriptions.
//
// # Architecture
//
// The code generation pipeline follows this flow:
//
//	Descriptions (schema)
//	        ↓
//	   Generators (one per artifact family)
//	        ↓
//	   syntax.File (target-agnostic tree)
//	        ↓
//	   Backend (swift, golang)
//	        ↓
//	   Sink (directory, memory)
//
// # Generators
//
// The generators are pure functions of the descriptions and the feature
// flags:
//
//   - ManagerProviders: one ManagerProvider extension per entity
//   - PayloadTestSuite: fixture decoding tests of an endpoint
//   - Factories: entity factory reset and JSON fixture loading
//   - SupportUtilities: logger facade and concurrent local data cleanup
//   - Header: the comment block of every file
//
// # Error Handling
//
// The package uses structured error types:
//
//   - ConfigError: Configuration errors
//   - GenerationError: Failure of one target, wrapping a
//     schema.NotFoundError or a syntax.RenderError
//
// Example error handling:
//
//	if err := g.Generate(ctx); err != nil {
//	    if errors.Is(err, schema.ErrNotFound) {
//	        // a test names an undeclared entity or endpoint
//	    }
//	    if gen.IsGenerationError(err) {
//	        // inspect the failed targets
//	    }
//	}
//
// # Configuration
//
// Use functional options for configuration:
//
//	cfg, err := gen.NewConfig(
//	    gen.WithTarget("./Generated"),
//	    gen.WithLanguage(gen.LangSwift),
//	    gen.WithAppModule("App"),
//	    gen.WithFeatures(gen.FeatureReactive),
//	)
//
// # Features
//
// Feature flags enable optional behavior:
//
//   - FeatureReactive: reference the reactive manager types
//   - FeatureManifest: skip rewriting files whose content did not change
package gen
