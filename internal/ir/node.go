// Package ir defines the intermediate-representation tree the pipeline's
// three passes operate on (spec §3.2): expressions, patterns, and
// declarations, each carrying a stable node ID, a source position, a
// type annotation, and an effect annotation. It also provides the smart
// constructors (§4.2) the checker and transforms use to build new nodes
// without re-deriving their annotations by hand at every call site.
//
// This package generalizes the teacher's Core AST (the original
// internal/core/core.go, an ANF-with-explicit-recursion tree with no
// type annotations of its own — those lived in a separate typedast
// overlay). This IR's invariant is stronger: every node *is* its own
// typed node, matching spec §3.2 ("An expression is a node carrying: the
// expression variant, a source position, a type annotation, and an
// effect annotation") rather than mirroring an untyped tree with a
// parallel typed one.
package ir

import (
	"github.com/sunholo/actor-ir/internal/ast"
	"github.com/sunholo/actor-ir/internal/types"
)

// Base is embedded in every Expr implementation; it carries the four
// things spec §3.2 says every IR expression must carry.
type Base struct {
	NodeID uint64
	Span   ast.Pos
	Type   types.Type
	Effect types.Effect
}

func (b *Base) ID() uint64          { return b.NodeID }
func (b *Base) Pos() ast.Pos        { return b.Span }
func (b *Base) Typ() types.Type     { return b.Type }
func (b *Base) Eff() types.Effect   { return b.Effect }
func (b *Base) SetTyp(t types.Type) { b.Type = t }

// Expr is the interface every expression-tree node implements.
type Expr interface {
	ID() uint64
	Pos() ast.Pos
	Typ() types.Type
	Eff() types.Effect
	exprNode()
}
