package gen

import "github.com/syssam/forge/compiler/syntax"

// GeneratedMarker marks generated files. It follows the Go convention so
// that tools skip the output.
const GeneratedMarker = "Code generated by forge. DO NOT EDIT."

// Header returns the comment block placed at the top of the file name.
func Header(filename string) *syntax.CommentDecl {
	return syntax.Comment("", filename, "", GeneratedMarker, "")
}
