package syntax

import (
	"errors"
	"fmt"
)

// ErrRender is the sentinel matched by every RenderError.
var ErrRender = errors.New("forge: render failed")

// RenderError reports a tree that cannot be serialized to valid output.
type RenderError struct {
	// Node describes the offending node, e.g. "func removeAllLocalData".
	Node    string
	Message string
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.Node == "" {
		return "forge: render error: " + e.Message
	}
	return fmt.Sprintf("forge: render error in %s: %s", e.Node, e.Message)
}

// Is reports whether the target matches the sentinel error for RenderError.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// Errorf creates a RenderError for the given node description.
func Errorf(node, format string, args ...any) *RenderError {
	return &RenderError{Node: node, Message: fmt.Sprintf(format, args...)}
}

// IsRenderError reports whether the error is a RenderError.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}
