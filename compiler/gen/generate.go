package gen

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/forge/compiler/syntax"
	"github.com/syssam/forge/schema"
)

// Generator renders the targets of a Descriptions instance and hands the
// output to a Sink. It holds no state besides its configuration, so
// targets may be rendered in any order and concurrently.
type Generator struct {
	desc    *schema.Descriptions
	cfg     *Config
	backend Backend
	sink    Sink
	log     *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the logger. It defaults to slog.Default.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithSink sets the destination of rendered files. It defaults to a
// DirSink on the configured target, or a MemorySink without target.
func WithSink(s Sink) GeneratorOption {
	return func(g *Generator) {
		if s != nil {
			g.sink = s
		}
	}
}

// WithBackend overrides the back end selected by the configured language.
func WithBackend(b Backend) GeneratorOption {
	return func(g *Generator) {
		if b != nil {
			g.backend = b
		}
	}
}

// NewGenerator returns a Generator for desc.
func NewGenerator(desc *schema.Descriptions, cfg *Config, opts ...GeneratorOption) (*Generator, error) {
	if desc == nil {
		return nil, NewConfigError("Descriptions", nil, "descriptions cannot be nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	g := &Generator{desc: desc, cfg: cfg, log: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	if g.backend == nil {
		b, err := NewBackend(cfg)
		if err != nil {
			return nil, err
		}
		g.backend = b
	}
	if g.sink == nil {
		if cfg.Target == "" {
			g.sink = NewMemorySink()
		} else {
			s, err := NewDirSink(cfg.Target, cfg.HasFeature(FeatureManifest.Name))
			if err != nil {
				return nil, NewConfigError("Target", cfg.Target, err.Error())
			}
			g.sink = s
		}
	}
	return g, nil
}

// Sink returns the destination of rendered files.
func (g *Generator) Sink() Sink { return g.sink }

// Targets returns the targets of the run in deterministic order.
func (g *Generator) Targets() []Target { return Targets(g.desc) }

// FileName returns the output file name of t.
func (g *Generator) FileName(t Target) string {
	return FileName(g.desc, t, g.backend.Name())
}

// File returns the complete syntax tree of t: header, imports and body.
func (g *Generator) File(t Target) (*syntax.File, error) {
	f, err := Build(g.desc, t, g.cfg.Flags())
	if err != nil {
		return nil, NewGenerationError(t.String(), PhaseBuild, "", err)
	}
	name := g.FileName(t)
	header := Header(name)
	if g.cfg.Header != "" {
		header = syntax.Comment("", name, "", g.cfg.Header, "")
	}
	out := syntax.NewFile(name).WithHeader(header).AddImport(f.Imports...).Add(f.Decls...)
	return out, nil
}

// Render returns the rendered content of t. No output is produced for a
// failing target.
func (g *Generator) Render(t Target) ([]byte, error) {
	f, err := g.File(t)
	if err != nil {
		return nil, err
	}
	out, err := g.backend.Render(f)
	if err != nil {
		return nil, NewGenerationError(t.String(), PhaseRender, f.Name, err)
	}
	return out, nil
}

// Generate renders every target and writes it to the sink. Targets run
// concurrently, bounded by the configured workers; a failing target does
// not stop the others, and all failures are returned together.
func (g *Generator) Generate(ctx context.Context) error {
	run := uuid.NewString()
	log := g.log.With("run", run, "language", g.backend.Name())
	start := time.Now()
	targets := g.Targets()

	var (
		mu     sync.Mutex
		result *multierror.Error
		eg     errgroup.Group
	)
	if g.cfg.Workers > 0 {
		eg.SetLimit(g.cfg.Workers)
	}
	for _, t := range targets {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
				return nil
			}
			if err := g.generate(ctx, t); err != nil {
				log.Error("target failed", "target", t.String(), "error", err)
				mu.Lock()
				result = multierror.Append(result, err)
				mu.Unlock()
				return nil
			}
			log.Debug("target generated", "target", t.String(), "file", g.FileName(t))
			return nil
		})
	}
	_ = eg.Wait()

	if f, ok := g.sink.(Flusher); ok {
		if err := f.Flush(run); err != nil {
			result = multierror.Append(result, err)
		}
	}
	// Append flattens the cleanup errors into result.
	if err := g.cleanup(); err != nil {
		result = multierror.Append(result, err)
	}
	failed := 0
	if result != nil {
		failed = len(result.Errors)
	}
	log.Info("generation finished",
		"targets", len(targets),
		"failed", failed,
		"duration", time.Since(start),
	)
	return result.ErrorOrNil()
}

func (g *Generator) generate(ctx context.Context, t Target) error {
	out, err := g.Render(t)
	if err != nil {
		return err
	}
	name := g.FileName(t)
	if err := g.sink.Write(ctx, name, out); err != nil {
		return NewGenerationError(t.String(), PhaseWrite, name, err)
	}
	return nil
}

// cleanup removes the output of disabled features from previous runs.
func (g *Generator) cleanup() error {
	if _, ok := g.sink.(*DirSink); !ok || g.cfg.Target == "" {
		return nil
	}
	var result *multierror.Error
	for _, f := range AllFeatures {
		if f.cleanup == nil || g.cfg.HasFeature(f.Name) {
			continue
		}
		if err := f.cleanup(g.cfg); err != nil {
			result = multierror.Append(result, fmt.Errorf("forge: cleanup feature %s: %w", f.Name, err))
		}
	}
	return result.ErrorOrNil()
}
