// Package cli implements the forge command tree.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootCmd returns the forge command with all subcommands attached.
func RootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "forge",
		Short:   "forge - generate client support code from entity and endpoint descriptions",
		Version: version,
		Long: `forge reads a description file of entities and endpoints and generates
manager accessors, endpoint payload tests, fixture factories and support
utilities for Swift or Go.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(GenerateCmd())
	root.AddCommand(ValidateCmd())
	root.AddCommand(TargetsCmd())
	root.AddCommand(InitCmd())
	return root
}

// newLogger returns a text logger writing to w.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
