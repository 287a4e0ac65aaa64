package gen

import (
	"github.com/syssam/forge/compiler/gen/golang"
	"github.com/syssam/forge/compiler/gen/swift"
	"github.com/syssam/forge/compiler/syntax"
)

// Backend serializes syntax trees in one target language.
type Backend interface {
	// Name returns the language name.
	Name() string
	// Ext returns the file extension including the dot.
	Ext() string
	// Render serializes a file. It returns a *syntax.RenderError for trees
	// that cannot be rendered.
	Render(*syntax.File) ([]byte, error)
}

var (
	_ Backend = (*swift.Backend)(nil)
	_ Backend = (*golang.Backend)(nil)
)

// NewBackend returns the built-in back end for the configured language.
func NewBackend(c *Config) (Backend, error) {
	switch c.Language {
	case LangSwift:
		return swift.New(c.ModuleTable()), nil
	case LangGo:
		return golang.New(c.PackageName(), c.ModuleTable()), nil
	}
	return nil, NewConfigError("Language", c.Language, "unsupported language; use swift or go")
}
