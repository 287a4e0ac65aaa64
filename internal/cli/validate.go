package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/forge/compiler"
	"github.com/syssam/forge/compiler/gen"
	"github.com/syssam/forge/compiler/load"
	"github.com/syssam/forge/schema"
)

// ValidateCmd returns the validate command.
func ValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <descriptions>",
		Short: "Check a description file without generating code",
		Long: `Load a description file, validate it and build every target without
rendering. Unknown entities referenced by payload tests are reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := compiler.LoadDescriptions(args[0])
			if err != nil {
				return err
			}
			for _, t := range gen.Targets(d) {
				if _, err := gen.Build(d, t, gen.Flags{}); err != nil {
					return fmt.Errorf("%s: %w", t, err)
				}
			}
			tests := 0
			for _, ep := range d.Endpoints() {
				for _, t := range ep.Tests {
					tests += t.Combinations()
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d entities, %d endpoints, %d payload test cases\n",
				color.New(color.FgGreen).Sprint("✓"), len(d.Entities()), len(d.Endpoints()), tests)
			return nil
		},
	}
}

// TargetsCmd returns the targets command.
func TargetsCmd() *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "targets <descriptions>",
		Short: "List the files a description file generates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := gen.NewConfig(gen.WithLanguage(language)); err != nil {
				return err
			}
			d, err := compiler.LoadDescriptions(args[0])
			if err != nil {
				return err
			}
			for _, t := range gen.Targets(d) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", t, gen.FileName(d, t, language))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", gen.DefaultLanguage, "output language: swift or go")
	return cmd
}

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter description file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "descriptions.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create directory: %w", err)
				}
			}
			if err := load.Save(path, starter()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Description file created at %s\n", color.New(color.FgGreen).Sprint("✓"), path)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintf(out, "  forge validate %s\n", path)
			fmt.Fprintf(out, "  forge generate %s --target ./Generated\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func starter() *schema.Descriptions {
	return schema.MustNew(
		[]schema.Entity{
			{
				Name:    "Car",
				Remote:  true,
				Persist: true,
				Attributes: []schema.Attribute{
					{Name: "id", Type: "String"},
					{Name: "model", Type: "String", Optional: true},
				},
				Relationships: []schema.Relationship{{Name: "driver", Entity: "Driver"}},
			},
			{Name: "Driver", Remote: true, Persist: true},
		},
		[]schema.Endpoint{
			{
				Name: "cars",
				Tests: []schema.EndpointPayloadTest{
					{
						Name:      "fetch_all",
						Endpoints: []string{"cars"},
						Entities: []schema.EntityAssertion{
							{Entity: "Car", Count: schema.Count(2)},
							{Entity: "Driver"},
						},
					},
				},
			},
		},
	)
}
