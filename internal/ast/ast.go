// Package ast provides the source-position types shared by the IR, type
// checker, and transforms. The surface-language AST itself (parser output)
// is out of scope for this repository; only the position records it would
// have attached survive into the IR.
package ast

import "fmt"

// Pos identifies a single point in source text.
type Pos struct {
	Line   int
	Column int
	File   string
	Offset int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// NoPos is the zero Pos, used for synthetic nodes minted by the
// transforms (fresh variables, continuation bindings) that have no
// corresponding source location.
var NoPos = Pos{}

// Span is a half-open range between two positions.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
