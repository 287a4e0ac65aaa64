package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/syssam/forge/compiler"
	"github.com/syssam/forge/compiler/gen"
)

// ErrNoTarget is returned when generate has nowhere to write.
var ErrNoTarget = errors.New("forge: no target directory; use --target or FORGE_TARGET")

type generateFlags struct {
	target        string
	language      string
	pkg           string
	appModule     string
	runtimeModule string
	features      []string
	modules       map[string]string
	workers       int
	header        string
	watch         bool
	dryRun        bool
	verbose       bool
}

// options returns the generator options of the flags set on cmd, applied
// on top of the environment defaults.
func (f *generateFlags) options(cmd *cobra.Command, e Env) []gen.Option {
	opts := e.Options()
	changed := cmd.Flags().Changed
	if changed("target") {
		opts = append(opts, gen.WithTarget(f.target))
	}
	if changed("lang") {
		opts = append(opts, gen.WithLanguage(f.language))
	}
	if changed("package") {
		opts = append(opts, gen.WithPackage(f.pkg))
	}
	if changed("app-module") {
		opts = append(opts, gen.WithAppModule(f.appModule))
	}
	if changed("runtime-module") {
		opts = append(opts, gen.WithRuntimeModule(f.runtimeModule))
	}
	if changed("feature") {
		opts = append(opts, gen.WithFeatureNames(f.features...))
	}
	if changed("module") {
		opts = append(opts, gen.WithModules(f.modules))
	}
	if changed("workers") {
		opts = append(opts, gen.WithWorkers(f.workers))
	}
	if changed("header") {
		opts = append(opts, gen.WithHeader(f.header))
	}
	return opts
}

// GenerateCmd returns the generate command.
func GenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate <descriptions>",
		Short: "Generate code from a description file",
		Long: `Generate the manager providers, endpoint payload test suites, factories
and support utilities described by a YAML or JSON description file.

Defaults are read from FORGE_* environment variables.`,
		Example: `  forge generate descriptions.yaml --target ./Generated
  forge generate descriptions.yaml -t ./garage --lang go --module runtime=example.com/garage/runtime
  forge generate descriptions.yaml -t ./Generated --feature reactive --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := LoadEnv(nil)
			if err != nil {
				return fmt.Errorf("read environment: %w", err)
			}
			cfg, err := gen.NewConfig(f.options(cmd, e)...)
			if err != nil {
				return err
			}
			if cfg.Target == "" && !f.dryRun {
				return ErrNoTarget
			}
			logger := newLogger(cmd.ErrOrStderr(), f.verbose || e.Verbose)
			run := func(ctx context.Context) error {
				return runGenerate(ctx, cmd.OutOrStdout(), args[0], cfg, f.dryRun, logger)
			}
			err = run(cmd.Context())
			if !f.watch {
				return err
			}
			return Watch(cmd.Context(), args[0], logger, run)
		},
	}
	cmd.Flags().StringVarP(&f.target, "target", "t", "", "output directory")
	cmd.Flags().StringVarP(&f.language, "lang", "l", gen.DefaultLanguage, "output language: swift or go")
	cmd.Flags().StringVar(&f.pkg, "package", "", "package name of generated Go files")
	cmd.Flags().StringVar(&f.appModule, "app-module", gen.DefaultAppModule, "module of the application under test")
	cmd.Flags().StringVar(&f.runtimeModule, "runtime-module", gen.DefaultRuntimeModule, "module providing the manager types")
	cmd.Flags().StringSliceVar(&f.features, "feature", nil, "enable a feature: reactive, manifest")
	cmd.Flags().StringToStringVar(&f.modules, "module", nil, "map a logical module to a module name or import path")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "number of files generated concurrently")
	cmd.Flags().StringVar(&f.header, "header", "", "marker line of generated file headers")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "regenerate when the description file changes")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "render without writing and list the files")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "log every generated target")
	return cmd
}

func runGenerate(ctx context.Context, out io.Writer, path string, cfg *gen.Config, dryRun bool, logger *slog.Logger) error {
	var sink gen.Sink
	if dryRun {
		sink = gen.NewMemorySink()
	} else {
		ds, err := gen.NewDirSink(cfg.Target, cfg.HasFeature(gen.FeatureManifest.Name))
		if err != nil {
			return err
		}
		sink = ds
	}
	err := compiler.Generate(ctx, path, cfg, gen.WithSink(sink), gen.WithLogger(logger))
	report(out, sink, err)
	return err
}

// report prints the result line of a run.
func report(out io.Writer, sink gen.Sink, err error) {
	if err != nil {
		n := 1
		var merr *multierror.Error
		if errors.As(err, &merr) {
			n = len(merr.Errors)
		}
		fmt.Fprintf(out, "%s generation failed with %d error(s)\n", color.New(color.FgRed).Sprint("✗"), n)
		return
	}
	ok := color.New(color.FgGreen).Sprint("✓")
	switch s := sink.(type) {
	case *gen.MemorySink:
		for _, name := range s.Files() {
			fmt.Fprintf(out, "  %s\n", name)
		}
		fmt.Fprintf(out, "%s would generate %d files\n", ok, len(s.Files()))
	case *gen.DirSink:
		m := s.Metrics()
		fmt.Fprintf(out, "%s generated %d files in %s", ok, m.FilesWritten, s.Dir())
		if m.FilesSkipped > 0 {
			fmt.Fprintf(out, " (%s)", color.New(color.FgYellow).Sprintf("%d unchanged", m.FilesSkipped))
		}
		fmt.Fprintln(out)
	}
}
